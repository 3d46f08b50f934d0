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
	"math"

	"github.com/fotocabin/booth-core/pkg/config"
	"github.com/fotocabin/booth-core/pkg/imaging"
	"github.com/fotocabin/booth-core/pkg/models"
)

// BackgroundValidator checks that the area around the face is uniform, as a
// cluttered booth curtain produces rejected photos at the counter. Advisory:
// it feeds guidance but never blocks a capture, since the booth background
// is out of the user's control.
type BackgroundValidator struct {
	cfg config.BackgroundConfig
}

// NewBackgroundValidator binds the validator to its thresholds.
func NewBackgroundValidator(cfg config.BackgroundConfig) *BackgroundValidator {
	return &BackgroundValidator{cfg: cfg}
}

func (v *BackgroundValidator) Name() string        { return NameBackground }
func (v *BackgroundValidator) Required() bool      { return false }
func (v *BackgroundValidator) FaceDependent() bool { return true }

// Evaluate implements the Validator interface.
func (v *BackgroundValidator) Evaluate(in Input) models.ValidationOutcome {
	frame := in.Frame.Gray.Bounds()
	face := imaging.PadRect(in.Perception.BoundingBox, facePadFraction)

	// The background is what remains left, right and above the padded face.
	regions := []image.Rectangle{
		image.Rect(frame.Min.X, frame.Min.Y, face.Min.X, frame.Max.Y),
		image.Rect(face.Max.X, frame.Min.Y, frame.Max.X, frame.Max.Y),
		image.Rect(face.Min.X, frame.Min.Y, face.Max.X, face.Min.Y),
	}

	worst := 0.0
	for _, region := range regions {
		stats := imaging.RegionStats(in.Frame.Gray, region)
		if stats.Pixels > 0 {
			worst = math.Max(worst, stats.StdDev)
		}
	}

	details := map[string]float64{
		"backgroundStdDev": worst,
	}

	score := marginBelow(worst, v.cfg.MaxStdDev)

	if worst > v.cfg.MaxStdDev {
		return failed(NameBackground, models.CodeBackgroundCluttered, score, models.SeverityWarning, false, true, details)
	}

	return passed(NameBackground, score, false, true, details)
}
