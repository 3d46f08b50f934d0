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

// EyeValidator checks that both eyes are open and unobstructed, combining
// the perception engine's per-eye visibility confidence with the geometric
// eye aspect ratio from the landmarks.
type EyeValidator struct {
	cfg config.EyeConfig
}

// NewEyeValidator binds the validator to its thresholds.
func NewEyeValidator(cfg config.EyeConfig) *EyeValidator {
	return &EyeValidator{cfg: cfg}
}

func (v *EyeValidator) Name() string        { return NameEyes }
func (v *EyeValidator) Required() bool      { return true }
func (v *EyeValidator) FaceDependent() bool { return true }

// Evaluate implements the Validator interface.
func (v *EyeValidator) Evaluate(in Input) models.ValidationOutcome {
	leftVis := in.Perception.EyeVisibility["left"]
	rightVis := in.Perception.EyeVisibility["right"]
	leftEAR := in.Landmarks.LeftEyeAspectRatio()
	rightEAR := in.Landmarks.RightEyeAspectRatio()

	details := map[string]float64{
		"leftVisibility":      leftVis,
		"rightVisibility":     rightVis,
		"leftEyeAspectRatio":  leftEAR,
		"rightEyeAspectRatio": rightEAR,
	}

	// The worst eye decides.
	worstVis := math.Min(leftVis, rightVis)
	worstEAR := math.Min(leftEAR, rightEAR)

	visScore := marginAbove(worstVis, v.cfg.MinVisibility)
	earScore := marginAbove(worstEAR, v.cfg.MinEyeAspectRatio)
	score := 0.5*visScore + 0.5*earScore

	if worstVis < v.cfg.MinVisibility || worstEAR < v.cfg.MinEyeAspectRatio {
		return failed(NameEyes, models.CodeEyesObstructed, score, models.SeverityError, true, true, details)
	}

	return passed(NameEyes, score, true, true, details)
}
