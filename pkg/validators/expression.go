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
	"github.com/fotocabin/booth-core/pkg/models"
)

// Classifier confidence and landmark geometry are blended: the classifier
// catches expressions the mouth landmarks cannot (raised brows, squints),
// the landmarks catch a classifier that is confidently wrong.
const (
	expressionClassifierWeight = 0.6
	expressionFeatureWeight    = 0.4
)

// maxMouthCornerRise is the mouth corner elevation (fraction of mouth width)
// above which the geometry reads as a smile even when the classifier calls
// it neutral.
const maxMouthCornerRise = 0.08

// ExpressionValidator checks for the neutral expression passport rules
// demand: classifier confidence plus mouth geometry from the landmarks.
type ExpressionValidator struct {
	cfg config.ExpressionConfig
}

// NewExpressionValidator binds the validator to its thresholds.
func NewExpressionValidator(cfg config.ExpressionConfig) *ExpressionValidator {
	return &ExpressionValidator{cfg: cfg}
}

func (v *ExpressionValidator) Name() string        { return NameExpression }
func (v *ExpressionValidator) Required() bool      { return true }
func (v *ExpressionValidator) FaceDependent() bool { return true }

// Evaluate implements the Validator interface.
func (v *ExpressionValidator) Evaluate(in Input) models.ValidationOutcome {
	neutral := in.Perception.ExpressionScores["neutral"]
	mouthGap := in.Landmarks.MouthGap()
	cornerRise := in.Landmarks.MouthCornerRise()

	details := map[string]float64{
		"neutralConfidence": neutral,
		"mouthGap":          mouthGap,
		"mouthCornerRise":   cornerRise,
	}

	classifierScore := marginAbove(neutral, v.cfg.MinNeutralScore)

	featureScore := marginBelow(mouthGap, v.cfg.MaxMouthGap)
	if cornerRise > maxMouthCornerRise {
		featureScore = min(featureScore, marginBelow(cornerRise, maxMouthCornerRise))
	}

	score := expressionClassifierWeight*classifierScore + expressionFeatureWeight*featureScore

	switch {
	case mouthGap > v.cfg.MaxMouthGap:
		return failed(NameExpression, models.CodeMouthOpen, score, models.SeverityError, true, true, details)
	case neutral < v.cfg.MinNeutralScore || cornerRise > maxMouthCornerRise:
		return failed(NameExpression, models.CodeNonNeutralExpression, score, models.SeverityError, true, true, details)
	default:
		return passed(NameExpression, score, true, true, details)
	}
}
