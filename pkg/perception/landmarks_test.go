// Copyright 2025 Fotocabin Systems B.V.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package perception

import (
	"image"

	"github.com/fotocabin/booth-core/pkg/models"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Landmarks", func() {
	var faceBox image.Rectangle

	BeforeEach(func() {
		faceBox = image.Rect(200, 100, 440, 420)
	})

	Describe("NewLandmarks", func() {
		It("accepts a 1.x model with a full mesh", func() {
			points := SyntheticLandmarks(faceBox, NeutralFaceOptions())
			_, err := NewLandmarks(points, "1.4.0")
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects a 2.x model", func() {
			points := SyntheticLandmarks(faceBox, NeutralFaceOptions())
			_, err := NewLandmarks(points, "2.0.0")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("outside supported range"))
		})

		It("rejects an unparseable model version", func() {
			points := SyntheticLandmarks(faceBox, NeutralFaceOptions())
			_, err := NewLandmarks(points, "mesh-v1")
			Expect(err).To(HaveOccurred())
		})

		It("rejects a truncated mesh", func() {
			points := make([]models.Point2D, 68)
			_, err := NewLandmarks(points, "1.4.0")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("468"))
		})
	})

	Describe("geometry helpers", func() {
		It("reports open eyes for a neutral face", func() {
			points := SyntheticLandmarks(faceBox, NeutralFaceOptions())
			lm, err := NewLandmarks(points, "1.4.0")
			Expect(err).NotTo(HaveOccurred())

			Expect(lm.LeftEyeAspectRatio()).To(BeNumerically(">", 0.25))
			Expect(lm.RightEyeAspectRatio()).To(BeNumerically(">", 0.25))
		})

		It("reports near-zero aspect ratio for closed eyes", func() {
			opts := NeutralFaceOptions()
			opts.EyeOpenness = 0.1
			points := SyntheticLandmarks(faceBox, opts)
			lm, err := NewLandmarks(points, "1.4.0")
			Expect(err).NotTo(HaveOccurred())

			Expect(lm.LeftEyeAspectRatio()).To(BeNumerically("<", 0.1))
		})

		It("measures the mouth gap", func() {
			opts := NeutralFaceOptions()
			opts.MouthGap = 12
			points := SyntheticLandmarks(faceBox, opts)
			lm, err := NewLandmarks(points, "1.4.0")
			Expect(err).NotTo(HaveOccurred())

			Expect(lm.MouthGap()).To(BeNumerically("~", 12, 0.001))
		})

		It("detects raised mouth corners", func() {
			opts := NeutralFaceOptions()
			opts.MouthCornerRise = 0.1
			points := SyntheticLandmarks(faceBox, opts)
			lm, err := NewLandmarks(points, "1.4.0")
			Expect(err).NotTo(HaveOccurred())

			Expect(lm.MouthCornerRise()).To(BeNumerically("~", 0.1, 0.001))

			neutral, err := NewLandmarks(SyntheticLandmarks(faceBox, NeutralFaceOptions()), "1.4.0")
			Expect(err).NotTo(HaveOccurred())
			Expect(neutral.MouthCornerRise()).To(BeNumerically("~", 0, 0.001))
		})
	})
})
