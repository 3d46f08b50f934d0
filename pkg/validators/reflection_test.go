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

var _ = Describe("ReflectionValidator", func() {
	var validator *ReflectionValidator

	BeforeEach(func() {
		validator = NewReflectionValidator(config.DefaultConfig().Validators.Reflection)
	})

	It("passes a glare-free face", func() {
		outcome := validator.Evaluate(compliantInput(neutralOpts()))

		Expect(outcome.Passed).To(BeTrue())
		Expect(outcome.Details["highlightClusters"]).To(Equal(0.0))
		Expect(outcome.Score).To(Equal(1.0))
	})

	It("fails glasses glare over one eye", func() {
		in := compliantInput(neutralOpts())

		// A saturated blob on the left eye, lens-sized.
		eye := in.Landmarks.EyeRegion(0)
		blob := image.Rect(eye.Min.X, eye.Min.Y, eye.Min.X+eye.Dx()/3, eye.Max.Y)
		imaging.FillRegion(in.Frame.Gray, blob, 255)

		outcome := validator.Evaluate(in)
		Expect(outcome.Passed).To(BeFalse())
		Expect(outcome.Code).To(Equal(models.CodeReflectionDetected))
		Expect(outcome.Details["highlightRatio"]).To(BeNumerically(">", 0.02))
	})

	It("ignores highlights far from the eyes", func() {
		in := compliantInput(neutralOpts())

		// Saturated corner outside the eye region.
		imaging.FillRegion(in.Frame.Gray, image.Rect(0, 0, 60, 60), 255)

		outcome := validator.Evaluate(in)
		Expect(outcome.Passed).To(BeTrue())
	})
})
