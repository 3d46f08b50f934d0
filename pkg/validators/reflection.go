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

// eyeRegionPad grows the eye strip to cover glasses frames.
const eyeRegionPad = 0.20

// minClusterPixels filters single-pixel sensor noise out of the highlight
// cluster count.
const minClusterPixels = 4

// ReflectionValidator checks for specular highlights in the eye and glasses
// region, the classic glasses glare failure.
type ReflectionValidator struct {
	cfg config.ReflectionConfig
}

// NewReflectionValidator binds the validator to its thresholds.
func NewReflectionValidator(cfg config.ReflectionConfig) *ReflectionValidator {
	return &ReflectionValidator{cfg: cfg}
}

func (v *ReflectionValidator) Name() string        { return NameReflection }
func (v *ReflectionValidator) Required() bool      { return true }
func (v *ReflectionValidator) FaceDependent() bool { return true }

// Evaluate implements the Validator interface.
func (v *ReflectionValidator) Evaluate(in Input) models.ValidationOutcome {
	region := in.Landmarks.EyeRegion(eyeRegionPad)

	ratio := imaging.RatioAbove(in.Frame.Gray, region, v.cfg.HighlightCutoff)
	clusters := imaging.HighlightClusters(in.Frame.Gray, region, v.cfg.HighlightCutoff, minClusterPixels)

	details := map[string]float64{
		"highlightRatio":    ratio,
		"highlightClusters": float64(clusters),
	}

	ratioScore := marginBelow(ratio, v.cfg.MaxHighlightRatio)
	clusterScore := marginBelow(float64(clusters), float64(v.cfg.MaxHighlightClusters))
	score := 0.5*ratioScore + 0.5*clusterScore

	if ratio > v.cfg.MaxHighlightRatio || clusters > v.cfg.MaxHighlightClusters {
		return failed(NameReflection, models.CodeReflectionDetected, score, models.SeverityError, true, true, details)
	}

	return passed(NameReflection, score, true, true, details)
}
