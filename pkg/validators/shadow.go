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
	"github.com/fotocabin/booth-core/pkg/imaging"
	"github.com/fotocabin/booth-core/pkg/models"
)

// shadowCutoff is the gray value below which a face pixel counts as lying
// in shadow.
const shadowCutoff = 60

// Asymmetry between the face halves is the stronger shadow signal; the raw
// dark pixel ratio backs it up for shadows that hit both halves equally.
const (
	shadowAsymmetryWeight = 0.6
	shadowDarkWeight      = 0.4
)

// ShadowValidator checks for harsh one-sided lighting by comparing the
// luminance of the left and right face halves.
type ShadowValidator struct {
	cfg config.ShadowConfig
}

// NewShadowValidator binds the validator to its thresholds.
func NewShadowValidator(cfg config.ShadowConfig) *ShadowValidator {
	return &ShadowValidator{cfg: cfg}
}

func (v *ShadowValidator) Name() string        { return NameShadow }
func (v *ShadowValidator) Required() bool      { return true }
func (v *ShadowValidator) FaceDependent() bool { return true }

// Evaluate implements the Validator interface.
func (v *ShadowValidator) Evaluate(in Input) models.ValidationOutcome {
	bb := in.Perception.BoundingBox

	left, right := imaging.HalvesMean(in.Frame.Gray, bb)
	darkRatio := imaging.RatioBelow(in.Frame.Gray, bb, shadowCutoff)

	asymmetry := 0.0
	if brighter := math.Max(left, right); brighter > 0 {
		asymmetry = math.Abs(left-right) / brighter
	}

	details := map[string]float64{
		"leftMean":  left,
		"rightMean": right,
		"asymmetry": asymmetry,
		"darkRatio": darkRatio,
	}

	asymmetryScore := marginBelow(asymmetry, v.cfg.MaxAsymmetry)
	darkScore := marginBelow(darkRatio, v.cfg.MaxDarkRatio)
	score := shadowAsymmetryWeight*asymmetryScore + shadowDarkWeight*darkScore

	if asymmetry > v.cfg.MaxAsymmetry || darkRatio > v.cfg.MaxDarkRatio {
		return failed(NameShadow, models.CodeShadowDetected, score, models.SeverityError, true, true, details)
	}

	return passed(NameShadow, score, true, true, details)
}
