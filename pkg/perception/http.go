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
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/fotocabin/booth-core/pkg/imaging"
	"github.com/fotocabin/booth-core/pkg/logger"
	"github.com/fotocabin/booth-core/pkg/models"
)

const contentTypePGM = "image/x-portable-graymap"

// wireResult is the perception engine's response format. Kept separate from
// models.PerceptionResult so the engine protocol can evolve without leaking
// into the core types.
type wireResult struct {
	FaceFound  bool    `json:"faceFound"`
	Confidence float64 `json:"confidence"`

	BoundingBox struct {
		X      int `json:"x"`
		Y      int `json:"y"`
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"boundingBox"`

	Landmarks        []models.Point2D   `json:"landmarks"`
	ExpressionScores map[string]float64 `json:"expressionScores"`
	EyeVisibility    map[string]float64 `json:"eyeVisibility"`
	HeadPose         models.HeadPose    `json:"headPose"`
	ModelVersion     string             `json:"modelVersion"`
}

// HTTPAdapter talks to the perception engine sidecar over HTTP. The engine
// receives the raw luminance frame as binary PGM and answers with a JSON
// detection result.
//
// Meant to be called from the frame loop only; ModelVersion tracks the last
// response without synchronization.
type HTTPAdapter struct {
	client       *http.Client
	baseURL      string
	logger       *zap.SugaredLogger
	modelVersion string
}

// NewHTTPAdapter connects to the engine at baseURL, e.g.
// "http://127.0.0.1:9091".
func NewHTTPAdapter(baseURL string) *HTTPAdapter {
	return &HTTPAdapter{
		// Per-request deadlines come from the caller's context; the client
		// timeout is only a safety net against a wedged engine.
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
		logger:  logger.For(logger.ComponentPerception),
	}
}

// Perceive implements Adapter.
func (a *HTTPAdapter) Perceive(ctx context.Context, frame models.Frame) (models.PerceptionResult, error) {
	if frame.Empty() {
		return models.PerceptionResult{}, fmt.Errorf("%w: empty frame", ErrPerceptionUnavailable)
	}

	body := bytes.NewReader(imaging.EncodePGM(frame.Gray))
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/perceive", body)
	if err != nil {
		return models.PerceptionResult{}, fmt.Errorf("%w: %s", ErrPerceptionUnavailable, err)
	}
	request.Header.Set("Content-Type", contentTypePGM)

	response, err := a.client.Do(request)
	if err != nil {
		return models.PerceptionResult{}, fmt.Errorf("%w: %s", ErrPerceptionUnavailable, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, response.Body)
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return models.PerceptionResult{}, fmt.Errorf("%w: engine returned status %d", ErrPerceptionUnavailable, response.StatusCode)
	}

	var wire wireResult
	if err := json.NewDecoder(response.Body).Decode(&wire); err != nil {
		return models.PerceptionResult{}, fmt.Errorf("%w: malformed engine response: %s", ErrPerceptionUnavailable, err)
	}

	a.modelVersion = wire.ModelVersion
	return wire.toResult(), nil
}

// ModelVersion implements Adapter. Empty until the first successful call.
func (a *HTTPAdapter) ModelVersion() string {
	return a.modelVersion
}

func (w wireResult) toResult() models.PerceptionResult {
	return models.PerceptionResult{
		FaceFound:  w.FaceFound,
		Confidence: w.Confidence,
		BoundingBox: image.Rect(
			w.BoundingBox.X,
			w.BoundingBox.Y,
			w.BoundingBox.X+w.BoundingBox.Width,
			w.BoundingBox.Y+w.BoundingBox.Height,
		),
		Landmarks:        w.Landmarks,
		ExpressionScores: w.ExpressionScores,
		EyeVisibility:    w.EyeVisibility,
		HeadPose:         w.HeadPose,
		ModelVersion:     w.ModelVersion,
	}
}
