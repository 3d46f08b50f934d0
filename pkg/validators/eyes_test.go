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
	"github.com/fotocabin/booth-core/pkg/config"
	"github.com/fotocabin/booth-core/pkg/models"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("EyeValidator", func() {
	var validator *EyeValidator

	BeforeEach(func() {
		validator = NewEyeValidator(config.DefaultConfig().Validators.Eyes)
	})

	It("passes open, visible eyes", func() {
		// Visibility 0.9 against 0.7, aspect ratio well above 0.22.
		outcome := validator.Evaluate(compliantInput(neutralOpts()))

		Expect(outcome.Passed).To(BeTrue())
		Expect(outcome.Details["leftEyeAspectRatio"]).To(BeNumerically(">", 0.25))
	})

	It("fails when one eye is occluded", func() {
		in := compliantInput(neutralOpts())
		in.Perception.EyeVisibility["right"] = 0.3

		outcome := validator.Evaluate(in)
		Expect(outcome.Passed).To(BeFalse())
		Expect(outcome.Code).To(Equal(models.CodeEyesObstructed))
		// The worst eye drags the score down even though the other is fine.
		Expect(outcome.Score).To(BeNumerically("<", 0.8))
	})

	It("fails closed eyes on geometry alone", func() {
		opts := neutralOpts()
		opts.EyeOpenness = 0.1

		outcome := validator.Evaluate(compliantInput(opts))
		Expect(outcome.Passed).To(BeFalse())
		Expect(outcome.Code).To(Equal(models.CodeEyesObstructed))
	})
})
