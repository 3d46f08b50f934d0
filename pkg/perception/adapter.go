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

// Package perception is the boundary to the face analysis engine. The engine
// itself (detector, landmark model, expression classifier) runs out of
// process; the booth core only consumes its results and treats the model as
// opaque.
package perception

import (
	"context"
	"errors"

	"github.com/fotocabin/booth-core/pkg/models"
)

// ErrPerceptionUnavailable is returned when the face analysis engine cannot
// deliver a result, e.g. the inference process is down or timed out. Distinct
// from a result with FaceFound=false, which is a successful analysis of a
// frame without a face.
var ErrPerceptionUnavailable = errors.New("perception engine unavailable")

// Adapter delivers face analysis results for single frames.
//
// Perceive must be called at most once per frame: results are not cached and
// inference on booth hardware is the most expensive step of an evaluation.
type Adapter interface {
	// Perceive analyzes the frame and returns what the engine saw.
	// A frame without a face is not an error.
	Perceive(ctx context.Context, frame models.Frame) (models.PerceptionResult, error)

	// ModelVersion returns the semantic version of the loaded landmark model.
	ModelVersion() string
}
