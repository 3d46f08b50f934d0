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
	"context"
	"image"
	"sync"

	"github.com/fotocabin/booth-core/pkg/models"
)

// MockModelVersion is the model version the mock adapter reports.
const MockModelVersion = "1.4.0"

// MockAdapter is a mock implementation of the Adapter interface for testing.
type MockAdapter struct {
	PerceiveFunc func(ctx context.Context, frame models.Frame) (models.PerceptionResult, error)

	Result models.PerceptionResult
	Err    error

	PerceiveCalled bool
	PerceiveCalls  int

	mutex sync.Mutex
}

// NewMockAdapter creates a mock that reports no face until a result is set.
func NewMockAdapter() *MockAdapter {
	return &MockAdapter{
		Result: models.NoFaceDetected(MockModelVersion),
	}
}

// WithResult sets the result returned by Perceive.
func (m *MockAdapter) WithResult(result models.PerceptionResult) *MockAdapter {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.Result = result

	return m
}

// WithError makes Perceive fail with the given error.
func (m *MockAdapter) WithError(err error) *MockAdapter {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.Err = err

	return m
}

// Perceive implements the Adapter interface.
func (m *MockAdapter) Perceive(ctx context.Context, frame models.Frame) (models.PerceptionResult, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.PerceiveCalled = true
	m.PerceiveCalls++

	if m.PerceiveFunc != nil {
		return m.PerceiveFunc(ctx, frame)
	}

	if ctx.Err() != nil {
		return models.PerceptionResult{}, ctx.Err()
	}

	if m.Err != nil {
		return models.PerceptionResult{}, m.Err
	}

	return m.Result, nil
}

// ModelVersion implements the Adapter interface.
func (m *MockAdapter) ModelVersion() string {
	return MockModelVersion
}

// SyntheticFaceOptions tweak the geometry of a generated test face.
type SyntheticFaceOptions struct {
	// EyeOpenness scales the vertical lid distance. 1.0 is a relaxed open
	// eye (aspect ratio ~0.3), 0 a closed one.
	EyeOpenness float64

	// MouthGap is the vertical inner lip distance in pixels.
	MouthGap float64

	// MouthCornerRise shifts the mouth corners up by the given fraction of
	// the mouth width. Positive values produce a smile.
	MouthCornerRise float64
}

// NeutralFaceOptions returns the geometry of a compliant neutral face.
func NeutralFaceOptions() SyntheticFaceOptions {
	return SyntheticFaceOptions{
		EyeOpenness:     1.0,
		MouthGap:        0,
		MouthCornerRise: 0,
	}
}

// SyntheticLandmarks generates a full dense mesh for a face inside the given
// bounding box. Only the named schema indices carry meaningful geometry; the
// remaining points sit on the face center. Good enough for validators, which
// resolve everything through the schema.
func SyntheticLandmarks(bb image.Rectangle, opts SyntheticFaceOptions) []models.Point2D {
	w := float64(bb.Dx())
	h := float64(bb.Dy())
	left := float64(bb.Min.X)
	top := float64(bb.Min.Y)

	center := models.Point2D{X: left + w/2, Y: top + h/2}

	points := make([]models.Point2D, FullSchemaLandmarkCount)
	for i := range points {
		points[i] = center
	}

	points[idxForeheadTop] = models.Point2D{X: left + w/2, Y: top + 0.05*h}
	points[idxNoseTip] = models.Point2D{X: left + w/2, Y: top + 0.55*h}
	points[idxChin] = models.Point2D{X: left + w/2, Y: top + 0.98*h}

	// Eyes at ~40% height, each about a quarter of the face wide.
	eyeY := top + 0.40*h
	eyeHalfHeight := 0.04 * h * opts.EyeOpenness

	points[idxLeftEyeOuter] = models.Point2D{X: left + 0.22*w, Y: eyeY}
	points[idxLeftEyeInner] = models.Point2D{X: left + 0.42*w, Y: eyeY}
	points[idxLeftEyeTop] = models.Point2D{X: left + 0.32*w, Y: eyeY - eyeHalfHeight}
	points[idxLeftEyeBottom] = models.Point2D{X: left + 0.32*w, Y: eyeY + eyeHalfHeight}

	points[idxRightEyeInner] = models.Point2D{X: left + 0.58*w, Y: eyeY}
	points[idxRightEyeOuter] = models.Point2D{X: left + 0.78*w, Y: eyeY}
	points[idxRightEyeTop] = models.Point2D{X: left + 0.68*w, Y: eyeY - eyeHalfHeight}
	points[idxRightEyeBottom] = models.Point2D{X: left + 0.68*w, Y: eyeY + eyeHalfHeight}

	// Mouth at ~78% height.
	mouthY := top + 0.78*h
	mouthWidth := 0.36 * w
	cornerY := mouthY - opts.MouthCornerRise*mouthWidth

	points[idxUpperLipBottom] = models.Point2D{X: left + w/2, Y: mouthY - opts.MouthGap/2}
	points[idxLowerLipTop] = models.Point2D{X: left + w/2, Y: mouthY + opts.MouthGap/2}
	points[idxMouthLeft] = models.Point2D{X: left + w/2 - mouthWidth/2, Y: cornerY}
	points[idxMouthRight] = models.Point2D{X: left + w/2 + mouthWidth/2, Y: cornerY}

	return points
}

// SyntheticFaceResult builds a complete detection result for a neutral,
// compliant face inside the bounding box.
func SyntheticFaceResult(bb image.Rectangle, opts SyntheticFaceOptions) models.PerceptionResult {
	return models.PerceptionResult{
		FaceFound:   true,
		Confidence:  0.98,
		BoundingBox: bb,
		Landmarks:   SyntheticLandmarks(bb, opts),
		ExpressionScores: map[string]float64{
			"neutral": 0.95,
			"happy":   0.03,
		},
		EyeVisibility: map[string]float64{
			"left":  0.97,
			"right": 0.97,
		},
		ModelVersion: MockModelVersion,
	}
}
