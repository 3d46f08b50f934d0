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

package perception_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fotocabin/booth-core/pkg/imaging"
	"github.com/fotocabin/booth-core/pkg/models"
	"github.com/fotocabin/booth-core/pkg/perception"
)

var _ = Describe("HTTPAdapter", func() {
	var (
		ctx   context.Context
		frame models.Frame
	)

	BeforeEach(func() {
		ctx = context.Background()
		frame = models.Frame{
			Gray:      imaging.UniformGray(64, 48, 128),
			Timestamp: time.Now(),
		}
	})

	It("posts the frame as PGM and decodes the detection", func() {
		var receivedContentType string
		var receivedBody []byte

		engine := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.Method).To(Equal(http.MethodPost))
			Expect(r.URL.Path).To(Equal("/v1/perceive"))
			receivedContentType = r.Header.Get("Content-Type")
			body, readErr := io.ReadAll(r.Body)
			Expect(readErr).ToNot(HaveOccurred())
			receivedBody = body

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"faceFound": true,
				"confidence": 0.93,
				"boundingBox": {"x": 10, "y": 12, "width": 30, "height": 34},
				"landmarks": [{"x": 1, "y": 2}],
				"expressionScores": {"neutral": 0.9},
				"eyeVisibility": {"left": 0.95, "right": 0.94},
				"modelVersion": "1.2.0"
			}`))
		}))
		defer engine.Close()

		adapter := perception.NewHTTPAdapter(engine.URL)
		result, err := adapter.Perceive(ctx, frame)
		Expect(err).ToNot(HaveOccurred())

		Expect(receivedContentType).To(Equal("image/x-portable-graymap"))
		Expect(string(receivedBody[:3])).To(Equal("P5\n"))

		Expect(result.FaceFound).To(BeTrue())
		Expect(result.Confidence).To(BeNumerically("~", 0.93, 1e-9))
		Expect(result.BoundingBox.Min.X).To(Equal(10))
		Expect(result.BoundingBox.Dx()).To(Equal(30))
		Expect(result.ExpressionScores).To(HaveKeyWithValue("neutral", 0.9))
		Expect(adapter.ModelVersion()).To(Equal("1.2.0"))
	})

	It("maps an unreachable engine to ErrPerceptionUnavailable", func() {
		adapter := perception.NewHTTPAdapter("http://127.0.0.1:1")

		_, err := adapter.Perceive(ctx, frame)
		Expect(errors.Is(err, perception.ErrPerceptionUnavailable)).To(BeTrue())
	})

	It("maps a non-200 response to ErrPerceptionUnavailable", func() {
		engine := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer engine.Close()

		_, err := perception.NewHTTPAdapter(engine.URL).Perceive(ctx, frame)
		Expect(errors.Is(err, perception.ErrPerceptionUnavailable)).To(BeTrue())
	})

	It("maps a malformed response to ErrPerceptionUnavailable", func() {
		engine := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}))
		defer engine.Close()

		_, err := perception.NewHTTPAdapter(engine.URL).Perceive(ctx, frame)
		Expect(errors.Is(err, perception.ErrPerceptionUnavailable)).To(BeTrue())
	})

	It("refuses an empty frame without calling the engine", func() {
		called := false
		engine := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		defer engine.Close()

		_, err := perception.NewHTTPAdapter(engine.URL).Perceive(ctx, models.Frame{})
		Expect(errors.Is(err, perception.ErrPerceptionUnavailable)).To(BeTrue())
		Expect(called).To(BeFalse())
	})

	It("honors context cancellation", func() {
		engine := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(time.Second)
		}))
		defer engine.Close()

		cancelled, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
		defer cancel()

		_, err := perception.NewHTTPAdapter(engine.URL).Perceive(cancelled, frame)
		Expect(errors.Is(err, perception.ErrPerceptionUnavailable)).To(BeTrue())
	})
})
