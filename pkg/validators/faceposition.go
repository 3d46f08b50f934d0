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
	"math"

	"github.com/fotocabin/booth-core/pkg/config"
	"github.com/fotocabin/booth-core/pkg/models"
)

// Sub-score weighting for face placement: being centered and correctly
// sized matter equally, head tilt (via the box aspect) less so.
const (
	positionCenterWeight = 0.4
	positionSizeWeight   = 0.4
	positionAspectWeight = 0.2
)

// FacePositionValidator checks where and how large the face sits in the
// frame.
type FacePositionValidator struct {
	cfg config.FacePositionConfig
}

// NewFacePositionValidator binds the validator to its thresholds.
func NewFacePositionValidator(cfg config.FacePositionConfig) *FacePositionValidator {
	return &FacePositionValidator{cfg: cfg}
}

func (v *FacePositionValidator) Name() string        { return NameFacePosition }
func (v *FacePositionValidator) Required() bool      { return true }
func (v *FacePositionValidator) FaceDependent() bool { return true }

// Evaluate implements the Validator interface.
func (v *FacePositionValidator) Evaluate(in Input) models.ValidationOutcome {
	frame := in.Frame.Gray.Bounds()
	bb := in.Perception.BoundingBox

	frameW := float64(frame.Dx())
	frameH := float64(frame.Dy())
	faceW := float64(bb.Dx())
	faceH := float64(bb.Dy())

	offsetX := math.Abs((float64(bb.Min.X)+faceW/2)-(float64(frame.Min.X)+frameW/2)) / frameW
	offsetY := math.Abs((float64(bb.Min.Y)+faceH/2)-(float64(frame.Min.Y)+frameH/2)) / frameH
	offset := math.Max(offsetX, offsetY)

	heightRatio := faceH / frameH

	aspect := 0.0
	if faceH > 0 {
		aspect = faceW / faceH
	}

	details := map[string]float64{
		"centerOffset": offset,
		"heightRatio":  heightRatio,
		"aspectRatio":  aspect,
	}

	centerScore := marginBelow(offset, v.cfg.MaxCenterOffset)
	sizeScore := bandScore(heightRatio, v.cfg.MinHeightRatio, v.cfg.MaxHeightRatio)
	aspectScore := bandScore(aspect, v.cfg.MinAspectRatio, v.cfg.MaxAspectRatio)

	score := positionCenterWeight*centerScore + positionSizeWeight*sizeScore + positionAspectWeight*aspectScore

	// Size problems dominate the diagnostic: a too-small face cannot be
	// fixed by re-centering.
	switch {
	case heightRatio < v.cfg.MinHeightRatio:
		return failed(NameFacePosition, models.CodeFaceTooSmall, score, models.SeverityError, true, true, details)
	case heightRatio > v.cfg.MaxHeightRatio:
		return failed(NameFacePosition, models.CodeFaceTooLarge, score, models.SeverityError, true, true, details)
	case offset > v.cfg.MaxCenterOffset:
		return failed(NameFacePosition, models.CodeFaceOffCenter, score, models.SeverityError, true, true, details)
	case aspect < v.cfg.MinAspectRatio || aspect > v.cfg.MaxAspectRatio:
		// A skewed box usually means the head is turned or tilted; from
		// the user's point of view that reads as off-center.
		return failed(NameFacePosition, models.CodeFaceOffCenter, score, models.SeverityError, true, true, details)
	default:
		return passed(NameFacePosition, score, true, true, details)
	}
}
