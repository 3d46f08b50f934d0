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
	"image"

	"github.com/fotocabin/booth-core/pkg/config"
	"github.com/fotocabin/booth-core/pkg/imaging"
	"github.com/fotocabin/booth-core/pkg/models"
)

// headwearDarkCutoff is the gray value below which a forehead pixel reads
// as fabric rather than skin.
const headwearDarkCutoff = 80

// HeadwearValidator flags likely hats or caps by measuring how much of the
// band above the forehead is dark. Advisory: religious headwear is allowed
// on passport photos, so this can only ever be a hint, never a blocker.
type HeadwearValidator struct {
	cfg config.HeadwearConfig
}

// NewHeadwearValidator binds the validator to its thresholds.
func NewHeadwearValidator(cfg config.HeadwearConfig) *HeadwearValidator {
	return &HeadwearValidator{cfg: cfg}
}

func (v *HeadwearValidator) Name() string        { return NameHeadwear }
func (v *HeadwearValidator) Required() bool      { return false }
func (v *HeadwearValidator) FaceDependent() bool { return true }

// Evaluate implements the Validator interface.
func (v *HeadwearValidator) Evaluate(in Input) models.ValidationOutcome {
	bb := in.Perception.BoundingBox
	forehead := in.Landmarks.ForeheadTop()

	// Band between the top of the bounding box (plus hair margin) and the
	// topmost forehead landmark.
	bandTop := bb.Min.Y - bb.Dy()/8
	band := image.Rect(bb.Min.X, bandTop, bb.Max.X, int(forehead.Y))

	occlusion := imaging.RatioBelow(in.Frame.Gray, band, headwearDarkCutoff)

	details := map[string]float64{
		"foreheadOcclusion": occlusion,
	}

	score := marginBelow(occlusion, v.cfg.MaxForeheadOcclusion)

	if occlusion > v.cfg.MaxForeheadOcclusion {
		return failed(NameHeadwear, models.CodeHeadwearDetected, score, models.SeverityWarning, false, true, details)
	}

	return passed(NameHeadwear, score, false, true, details)
}
