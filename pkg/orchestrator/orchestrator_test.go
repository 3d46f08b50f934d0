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

package orchestrator_test

import (
	"context"
	"errors"
	"image"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fotocabin/booth-core/pkg/config"
	"github.com/fotocabin/booth-core/pkg/imaging"
	"github.com/fotocabin/booth-core/pkg/models"
	"github.com/fotocabin/booth-core/pkg/orchestrator"
	"github.com/fotocabin/booth-core/pkg/perception"
	"github.com/fotocabin/booth-core/pkg/validators"
)

// panickyValidator blows up on every frame.
type panickyValidator struct{}

func (panickyValidator) Name() string        { return "Panicky" }
func (panickyValidator) Required() bool      { return true }
func (panickyValidator) FaceDependent() bool { return false }
func (panickyValidator) Evaluate(validators.Input) models.ValidationOutcome {
	panic("synthetic validator failure")
}

var _ = Describe("Orchestrator", func() {
	var (
		registry *validators.Registry
		frame    models.Frame
		faceBox  image.Rectangle
	)

	newFrame := func() models.Frame {
		return models.Frame{
			Gray:      imaging.NoisyGray(640, 480, 150, 25, 7),
			Timestamp: time.Date(2025, 6, 12, 9, 30, 0, 0, time.UTC),
			Seq:       42,
		}
	}

	BeforeEach(func() {
		var err error
		registry, err = validators.NewRegistryFromConfig(config.DefaultConfig().Validators)
		Expect(err).ToNot(HaveOccurred())

		frame = newFrame()
		faceBox = image.Rect(239, 132, 401, 348)
	})

	Context("with a compliant face in view", func() {
		It("produces a passing report with one outcome per active validator", func() {
			adapter := perception.NewMockAdapter().
				WithResult(perception.SyntheticFaceResult(faceBox, perception.NeutralFaceOptions()))

			report, err := orchestrator.NewOrchestrator(registry, adapter).Run(context.Background(), frame)
			Expect(err).ToNot(HaveOccurred())

			Expect(report.Outcomes).To(HaveLen(registry.Len()))
			Expect(report.OverallPassed).To(BeTrue())
			Expect(report.FaceDetected()).To(BeTrue())
			Expect(adapter.PerceiveCalls).To(Equal(1))
		})

		It("stamps the report with the frame timestamp, not the wall clock", func() {
			adapter := perception.NewMockAdapter().
				WithResult(perception.SyntheticFaceResult(faceBox, perception.NeutralFaceOptions()))

			report, err := orchestrator.NewOrchestrator(registry, adapter).Run(context.Background(), frame)
			Expect(err).ToNot(HaveOccurred())
			Expect(report.Timestamp).To(Equal(frame.Timestamp))
		})

		It("is deterministic for identical inputs", func() {
			adapter := perception.NewMockAdapter().
				WithResult(perception.SyntheticFaceResult(faceBox, perception.NeutralFaceOptions()))
			orch := orchestrator.NewOrchestrator(registry, adapter)

			first, err := orch.Run(context.Background(), frame)
			Expect(err).ToNot(HaveOccurred())
			second, err := orch.Run(context.Background(), frame)
			Expect(err).ToNot(HaveOccurred())

			Expect(second).To(Equal(first))
		})

		It("keeps outcomes in registration order", func() {
			adapter := perception.NewMockAdapter().
				WithResult(perception.SyntheticFaceResult(faceBox, perception.NeutralFaceOptions()))

			report, err := orchestrator.NewOrchestrator(registry, adapter).Run(context.Background(), frame)
			Expect(err).ToNot(HaveOccurred())

			for i, v := range registry.ActiveValidators() {
				Expect(report.Outcomes[i].ValidatorName).To(Equal(v.Name()))
			}
		})
	})

	Context("when no face is detected", func() {
		It("degrades face-dependent validators but still evaluates the rest", func() {
			adapter := perception.NewMockAdapter()

			report, err := orchestrator.NewOrchestrator(registry, adapter).Run(context.Background(), frame)
			Expect(err).ToNot(HaveOccurred())

			Expect(report.OverallPassed).To(BeFalse())
			Expect(report.FaceDetected()).To(BeFalse())
			Expect(report.Outcomes).To(HaveLen(registry.Len()))

			for _, o := range report.Outcomes {
				if o.FaceDependent {
					Expect(o.Code).To(Equal(models.CodeFaceNotDetected), o.ValidatorName)
					Expect(o.Passed).To(BeFalse())
				} else {
					Expect(o.Code).ToNot(Equal(models.CodeFaceNotDetected), o.ValidatorName)
				}
			}

			brightness, ok := report.Outcome(validators.NameBrightness)
			Expect(ok).To(BeTrue())
			Expect(brightness.Passed).To(BeTrue())
		})
	})

	Context("when the face geometry fails schema validation", func() {
		It("treats a truncated mesh like a frame without a face", func() {
			result := perception.SyntheticFaceResult(faceBox, perception.NeutralFaceOptions())
			result.Landmarks = result.Landmarks[:68]
			adapter := perception.NewMockAdapter().WithResult(result)

			report, err := orchestrator.NewOrchestrator(registry, adapter).Run(context.Background(), frame)
			Expect(err).ToNot(HaveOccurred())
			Expect(report.FaceDetected()).To(BeFalse())

			eyes, ok := report.Outcome(validators.NameEyes)
			Expect(ok).To(BeTrue())
			Expect(eyes.Code).To(Equal(models.CodeFaceNotDetected))
		})
	})

	Context("when the perception engine is unreachable", func() {
		It("fails the run instead of fabricating a report", func() {
			adapter := perception.NewMockAdapter().WithError(perception.ErrPerceptionUnavailable)

			_, err := orchestrator.NewOrchestrator(registry, adapter).Run(context.Background(), frame)
			Expect(err).To(MatchError(perception.ErrPerceptionUnavailable))
		})

		It("propagates context cancellation as unavailability", func() {
			adapter := perception.NewMockAdapter().WithError(context.DeadlineExceeded)

			_, err := orchestrator.NewOrchestrator(registry, adapter).Run(context.Background(), frame)
			Expect(errors.Is(err, perception.ErrPerceptionUnavailable)).To(BeTrue())
		})
	})

	Context("when a validator panics", func() {
		It("converts the panic into a failed outcome and keeps going", func() {
			reg := validators.NewRegistry()
			Expect(reg.Register(panickyValidator{})).To(Succeed())
			Expect(reg.Register(validators.NewBrightnessValidator(config.DefaultConfig().Validators.Brightness))).To(Succeed())

			adapter := perception.NewMockAdapter().
				WithResult(perception.SyntheticFaceResult(faceBox, perception.NeutralFaceOptions()))

			report, err := orchestrator.NewOrchestrator(reg, adapter).Run(context.Background(), frame)
			Expect(err).ToNot(HaveOccurred())
			Expect(report.Outcomes).To(HaveLen(2))

			broken, ok := report.Outcome("Panicky")
			Expect(ok).To(BeTrue())
			Expect(broken.Passed).To(BeFalse())
			Expect(broken.Code).To(Equal(models.CodeValidatorInternalError))
			Expect(broken.Severity).To(Equal(models.SeverityError))

			brightness, ok := report.Outcome(validators.NameBrightness)
			Expect(ok).To(BeTrue())
			Expect(brightness.Passed).To(BeTrue())
			Expect(report.OverallPassed).To(BeFalse())
		})
	})

	Context("with validators disabled in the configuration", func() {
		It("skips disabled validators entirely", func() {
			cfg := config.DefaultConfig().Validators
			cfg.Background.Disabled = true
			cfg.Headwear.Disabled = true

			reg, err := validators.NewRegistryFromConfig(cfg)
			Expect(err).ToNot(HaveOccurred())

			adapter := perception.NewMockAdapter().
				WithResult(perception.SyntheticFaceResult(faceBox, perception.NeutralFaceOptions()))

			report, err := orchestrator.NewOrchestrator(reg, adapter).Run(context.Background(), frame)
			Expect(err).ToNot(HaveOccurred())

			_, hasBackground := report.Outcome(validators.NameBackground)
			Expect(hasBackground).To(BeFalse())
			_, hasHeadwear := report.Outcome(validators.NameHeadwear)
			Expect(hasHeadwear).To(BeFalse())
		})
	})
})
