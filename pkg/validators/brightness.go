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

// Gray value cutoffs for exposure extremes. Pixels above/below these count
// as blown highlights / crushed shadows regardless of the mean.
const (
	overexposedCutoff  = 240
	underexposedCutoff = 15
)

// Weighting between the mean band score and the exposure extreme score.
const (
	brightnessMeanWeight    = 0.7
	brightnessExtremeWeight = 0.3
)

// facePadFraction grows the face bounding box to include hair and chin when
// a face-adjacent region is evaluated.
const facePadFraction = 0.15

// BrightnessValidator checks the luminance distribution of the face region,
// falling back to the whole frame when no face is available. Not
// face-dependent: lighting feedback is useful before anyone is in position.
type BrightnessValidator struct {
	cfg config.BrightnessConfig
}

// NewBrightnessValidator binds the validator to its thresholds.
func NewBrightnessValidator(cfg config.BrightnessConfig) *BrightnessValidator {
	return &BrightnessValidator{cfg: cfg}
}

func (v *BrightnessValidator) Name() string        { return NameBrightness }
func (v *BrightnessValidator) Required() bool      { return true }
func (v *BrightnessValidator) FaceDependent() bool { return false }

// Evaluate implements the Validator interface.
func (v *BrightnessValidator) Evaluate(in Input) models.ValidationOutcome {
	region := in.Frame.Gray.Bounds()
	if in.Perception.FaceFound {
		region = imaging.PadRect(in.Perception.BoundingBox, facePadFraction)
	}

	stats := imaging.RegionStats(in.Frame.Gray, region)
	overRatio := imaging.RatioAbove(in.Frame.Gray, region, overexposedCutoff)
	underRatio := imaging.RatioBelow(in.Frame.Gray, region, underexposedCutoff)

	details := map[string]float64{
		"mean":              stats.Mean,
		"stdDev":            stats.StdDev,
		"overexposedRatio":  overRatio,
		"underexposedRatio": underRatio,
	}

	meanScore := bandScore(stats.Mean, v.cfg.MinMean, v.cfg.MaxMean)

	extremeScore := 1.0
	if v.cfg.MaxOverexposedRatio > 0 {
		extremeScore = min(extremeScore, 1-clamp01(overRatio/v.cfg.MaxOverexposedRatio-1))
	}
	if v.cfg.MaxUnderexposedRatio > 0 {
		extremeScore = min(extremeScore, 1-clamp01(underRatio/v.cfg.MaxUnderexposedRatio-1))
	}

	score := brightnessMeanWeight*meanScore + brightnessExtremeWeight*extremeScore

	tooDark := stats.Mean < v.cfg.MinMean || underRatio > v.cfg.MaxUnderexposedRatio
	tooBright := stats.Mean > v.cfg.MaxMean || overRatio > v.cfg.MaxOverexposedRatio

	// A spread outside the band means flat or harsh lighting; attribute it
	// to whichever side of the band the mean leans towards.
	if stats.StdDev < v.cfg.MinStdDev || stats.StdDev > v.cfg.MaxStdDev {
		if stats.Mean <= (v.cfg.MinMean+v.cfg.MaxMean)/2 {
			tooDark = true
		} else {
			tooBright = true
		}
	}

	switch {
	case tooDark:
		return failed(NameBrightness, models.CodeTooDark, score, models.SeverityError, true, false, details)
	case tooBright:
		return failed(NameBrightness, models.CodeTooBright, score, models.SeverityError, true, false, details)
	default:
		return passed(NameBrightness, score, true, false, details)
	}
}
