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

package validators

import (
	"image"

	"github.com/fotocabin/booth-core/pkg/config"
	"github.com/fotocabin/booth-core/pkg/imaging"
	"github.com/fotocabin/booth-core/pkg/models"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("BrightnessValidator", func() {
	var validator *BrightnessValidator

	BeforeEach(func() {
		validator = NewBrightnessValidator(config.DefaultConfig().Validators.Brightness)
	})

	It("fails a dark frame with TOO_DARK", func() {
		// Mean 20 against the [60, 200] band.
		in := faceless(imaging.UniformGray(640, 480, 20))

		outcome := validator.Evaluate(in)
		Expect(outcome.Passed).To(BeFalse())
		Expect(outcome.Code).To(Equal(models.CodeTooDark))
		Expect(outcome.Score).To(BeNumerically("<", 1))
		Expect(outcome.Details["mean"]).To(Equal(20.0))
	})

	It("fails a blown out frame with TOO_BRIGHT", func() {
		in := faceless(imaging.UniformGray(640, 480, 245))

		outcome := validator.Evaluate(in)
		Expect(outcome.Passed).To(BeFalse())
		Expect(outcome.Code).To(Equal(models.CodeTooBright))
	})

	It("fails when too many pixels are overexposed despite a fine mean", func() {
		img := imaging.UniformGray(640, 480, 120)
		// 20% of the frame at sensor maximum.
		imaging.FillRegion(img, image.Rect(0, 0, 640, 96), 255)

		outcome := validator.Evaluate(faceless(img))
		Expect(outcome.Passed).To(BeFalse())
		Expect(outcome.Code).To(Equal(models.CodeTooBright))
	})

	It("passes a well exposed frame", func() {
		in := compliantInput(neutralOpts())

		outcome := validator.Evaluate(in)
		Expect(outcome.Passed).To(BeTrue())
		Expect(outcome.Code).To(Equal(models.CodeOK))
		Expect(outcome.Score).To(BeNumerically(">", 0.9))
	})

	It("evaluates the face region when a face is present", func() {
		in := compliantInput(neutralOpts())
		// Darken everything except the face; the validator must not care.
		face := imaging.PadRect(in.Perception.BoundingBox, facePadFraction)
		frame := in.Frame.Gray.Bounds()
		imaging.FillRegion(in.Frame.Gray, image.Rect(frame.Min.X, frame.Min.Y, face.Min.X, frame.Max.Y), 5)

		outcome := validator.Evaluate(in)
		Expect(outcome.Passed).To(BeTrue())
	})

	It("is not face dependent", func() {
		Expect(validator.FaceDependent()).To(BeFalse())
		Expect(validator.Required()).To(BeTrue())
	})
})
