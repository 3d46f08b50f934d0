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

package alerting

import (
	"errors"
	"strings"

	sentrygo "github.com/getsentry/sentry-go"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Event creation", func() {
	BeforeEach(func() {
		EnableTestMode()
	})

	AfterEach(func() {
		DisableTestMode()
	})

	Describe("getMeaningfulErrorTitle", func() {
		It("cuts the title at the first sentence boundary", func() {
			err := errors.New("storage backend unavailable: connection refused")
			Expect(getMeaningfulErrorTitle(err)).To(Equal("storage backend unavailable"))
		})

		It("limits very long titles to 100 characters", func() {
			err := errors.New(strings.Repeat("a", 300))
			title := getMeaningfulErrorTitle(err)
			Expect(len(title)).To(Equal(100))
			Expect(title).To(HaveSuffix("..."))
		})
	})

	Describe("createEventWithContext", func() {
		It("turns simple context values into tags", func() {
			event := createEventWithContext(sentrygo.LevelError, errors.New("boom"), map[string]interface{}{
				"validator": "Brightness",
				"attempt":   3,
			})

			Expect(event.Tags).To(HaveKeyWithValue("validator", "Brightness"))
			Expect(event.Tags).To(HaveKeyWithValue("attempt", "3"))
		})

		It("adds validator tags to the fingerprint", func() {
			event := createEventWithContext(sentrygo.LevelError, errors.New("boom"), map[string]interface{}{
				"validator": "Sharpness",
			})

			Expect(event.Fingerprint).To(ContainElement("validator: Sharpness"))
		})

		It("moves complex values into extra data", func() {
			event := createEventWithContext(sentrygo.LevelWarning, errors.New("boom"), map[string]interface{}{
				"details": map[string]float64{"mean": 20},
			})

			Expect(event.Extra).To(HaveKey("details"))
			Expect(event.Tags).NotTo(HaveKey("details"))
		})
	})

	Describe("getLevelString", func() {
		It("maps sentry levels to strings", func() {
			Expect(getLevelString(sentrygo.LevelFatal)).To(Equal("fatal"))
			Expect(getLevelString(sentrygo.LevelWarning)).To(Equal("warning"))
			Expect(getLevelString(sentrygo.Level("bogus"))).To(Equal("unknown"))
		})
	})
})
