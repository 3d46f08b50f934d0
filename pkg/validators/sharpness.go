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
	"github.com/fotocabin/booth-core/pkg/imaging"
	"github.com/fotocabin/booth-core/pkg/models"
)

// SharpnessValidator checks focus via the Laplacian variance of the face
// region, or the whole frame when no face is available. Not face-dependent
// for the same reason as brightness: an out-of-focus camera should be
// reported before a face shows up.
type SharpnessValidator struct {
	cfg config.SharpnessConfig
}

// NewSharpnessValidator binds the validator to its thresholds.
func NewSharpnessValidator(cfg config.SharpnessConfig) *SharpnessValidator {
	return &SharpnessValidator{cfg: cfg}
}

func (v *SharpnessValidator) Name() string        { return NameSharpness }
func (v *SharpnessValidator) Required() bool      { return true }
func (v *SharpnessValidator) FaceDependent() bool { return false }

// Evaluate implements the Validator interface.
func (v *SharpnessValidator) Evaluate(in Input) models.ValidationOutcome {
	region := in.Frame.Gray.Bounds()
	if in.Perception.FaceFound {
		region = imaging.PadRect(in.Perception.BoundingBox, facePadFraction)
	}

	variance := imaging.LaplacianVariance(in.Frame.Gray, region)

	details := map[string]float64{
		"laplacianVariance": variance,
	}

	score := marginAbove(variance, v.cfg.MinLaplacianVariance)

	if variance < v.cfg.MinLaplacianVariance {
		return failed(NameSharpness, models.CodeBlurry, score, models.SeverityError, true, false, details)
	}

	return passed(NameSharpness, score, true, false, details)
}
