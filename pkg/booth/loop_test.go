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

package booth_test

import (
	"context"
	"image"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fotocabin/booth-core/pkg/booth"
	"github.com/fotocabin/booth-core/pkg/capture"
	"github.com/fotocabin/booth-core/pkg/config"
	"github.com/fotocabin/booth-core/pkg/imaging"
	"github.com/fotocabin/booth-core/pkg/models"
	"github.com/fotocabin/booth-core/pkg/perception"
	"github.com/fotocabin/booth-core/pkg/storage"
)

// fastConfig shrinks all loop timings so a full session fits in a test run.
func fastConfig() config.FullConfig {
	cfg := config.DefaultConfig()
	cfg.Booth.TickInterval = config.Duration(time.Millisecond)
	cfg.Booth.EvaluationStride = 1
	cfg.Booth.StablePassCount = 3
	cfg.Booth.StabilityWindow = config.Duration(time.Second)
	cfg.Booth.SessionBudget = config.Duration(10 * time.Second)
	cfg.Booth.ReportWindowSize = 8
	return cfg
}

func compliantFrame() models.Frame {
	return models.Frame{
		Gray:      imaging.NoisyGray(640, 480, 150, 25, 7),
		Timestamp: time.Now(),
	}
}

var _ = Describe("Loop", func() {
	var (
		ctx     context.Context
		cancel  context.CancelFunc
		store   *storage.MemoryStore
		source  *booth.MockFrameSource
		faceBox image.Rectangle
	)

	startLoop := func(cfg config.FullConfig, adapter perception.Adapter) *booth.Loop {
		loop, err := booth.NewLoop(ctx, config.NewMockConfigManager().WithConfig(cfg), source, adapter, store)
		Expect(err).ToNot(HaveOccurred())
		go func() {
			defer GinkgoRecover()
			Expect(loop.Execute(ctx)).To(Succeed())
		}()
		return loop
	}

	BeforeEach(func() {
		ctx, cancel = context.WithCancel(context.Background())
		DeferCleanup(func() { cancel() })

		var err error
		store, err = storage.NewMemoryStore()
		Expect(err).ToNot(HaveOccurred())

		source = booth.NewMockFrameSource(compliantFrame())
		faceBox = image.Rect(239, 132, 401, 348)
	})

	It("captures a compliant subject end to end", func() {
		adapter := perception.NewMockAdapter().
			WithResult(perception.SyntheticFaceResult(faceBox, perception.NeutralFaceOptions()))
		loop := startLoop(fastConfig(), adapter)

		Eventually(func() string {
			return loop.StatusManager().Get().Session.State
		}, "5s", "5ms").Should(Equal(capture.StateCaptured))

		status := loop.StatusManager().Get()
		Expect(status.Session.RecordID).ToNot(BeEmpty())
		Expect(status.Report).ToNot(BeNil())
		Expect(status.Report.OverallPassed).To(BeTrue())
		Expect(store.Len()).To(Equal(1))

		record, err := store.Load(context.Background(), status.Session.RecordID)
		Expect(err).ToNot(HaveOccurred())
		Expect(record.Width).To(Equal(640))
	})

	It("publishes guidance while the subject is missing", func() {
		adapter := perception.NewMockAdapter()
		loop := startLoop(fastConfig(), adapter)

		Eventually(func() []models.GuidanceMessage {
			return loop.StatusManager().Get().Guidance
		}, "5s", "5ms").ShouldNot(BeEmpty())

		guidance := loop.StatusManager().Get().Guidance
		Expect(guidance[0].Code).To(Equal(models.CodeFaceNotDetected))
		Expect(store.Len()).To(BeZero())
	})

	It("times out a session that never stabilizes", func() {
		cfg := fastConfig()
		cfg.Booth.SessionBudget = config.Duration(100 * time.Millisecond)

		adapter := perception.NewMockAdapter()
		loop := startLoop(cfg, adapter)

		Eventually(func() string {
			return loop.StatusManager().Get().Session.State
		}, "5s", "5ms").Should(Equal(capture.StateTimeout))
		Expect(store.Len()).To(BeZero())
	})

	It("aborts the session when perception becomes unreachable", func() {
		adapter := perception.NewMockAdapter().WithError(perception.ErrPerceptionUnavailable)
		loop := startLoop(fastConfig(), adapter)

		Eventually(func() string {
			return loop.StatusManager().Get().Session.State
		}, "5s", "5ms").Should(Equal(capture.StateError))

		Expect(loop.StatusManager().Get().Session.FailureReason).ToNot(BeEmpty())
	})

	It("starts a fresh session on reset", func() {
		cfg := fastConfig()
		cfg.Booth.SessionBudget = config.Duration(100 * time.Millisecond)

		adapter := perception.NewMockAdapter()
		loop := startLoop(cfg, adapter)

		Eventually(func() string {
			return loop.StatusManager().Get().Session.State
		}, "5s", "5ms").Should(Equal(capture.StateTimeout))
		timedOut := loop.StatusManager().Get().Session

		loop.RequestReset()

		Eventually(func() string {
			return loop.StatusManager().Get().Session.ID
		}, "5s", "5ms").ShouldNot(Equal(timedOut.ID))
	})

	It("refuses to start on an invalid configuration", func() {
		manager := config.NewMockConfigManager().WithConfigError(config.ErrValidatorConfig)

		_, err := booth.NewLoop(ctx, manager, source, perception.NewMockAdapter(), store)
		Expect(err).To(MatchError(config.ErrValidatorConfig))
	})

	It("skips evaluation on off-stride ticks", func() {
		cfg := fastConfig()
		cfg.Booth.EvaluationStride = 4

		adapter := perception.NewMockAdapter().
			WithResult(perception.SyntheticFaceResult(faceBox, perception.NeutralFaceOptions()))
		loop := startLoop(cfg, adapter)

		Eventually(func() string {
			return loop.StatusManager().Get().Session.State
		}, "5s", "5ms").Should(Equal(capture.StateCaptured))

		// Stop the loop before inspecting call counters.
		cancel()
		time.Sleep(50 * time.Millisecond)

		// Far fewer perception calls than frames pulled.
		Expect(adapter.PerceiveCalls).To(BeNumerically("<", source.Calls()))
	})
})
