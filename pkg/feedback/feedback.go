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

// Package feedback turns validation reports into prioritized, human-readable
// guidance for the booth display.
package feedback

import (
	"sort"

	"github.com/fotocabin/booth-core/pkg/models"
)

// guidanceTexts maps diagnostic codes to display instructions. One actionable
// sentence per code; the display shows the top entries only, so the wording
// has to stand alone.
var guidanceTexts = map[models.Code]string{
	models.CodeFaceNotDetected:        "Position your face inside the outline",
	models.CodeTooDark:                "Too dark, move closer to the light",
	models.CodeTooBright:              "Too bright, reduce the lighting",
	models.CodeBlurry:                 "Hold still, the image is blurry",
	models.CodeFaceOffCenter:          "Center your face in the frame",
	models.CodeFaceTooSmall:           "Move closer to the camera",
	models.CodeFaceTooLarge:           "Move back from the camera",
	models.CodeNonNeutralExpression:   "Keep a neutral expression",
	models.CodeMouthOpen:              "Close your mouth",
	models.CodeEyesObstructed:         "Open your eyes, keep them unobstructed",
	models.CodeReflectionDetected:     "Glare on your glasses, tilt or remove them",
	models.CodeShadowDetected:         "Uneven lighting, face the light directly",
	models.CodeBackgroundCluttered:    "A plain background works best",
	models.CodeHeadwearDetected:       "Remove headwear unless worn for religious reasons",
	models.CodeValidatorInternalError: "Hold on, re-checking the image",
}

const fallbackText = "Adjust your position and try again"

// Translator maps a validation report to an ordered guidance list. Stateless:
// the same report always yields the same messages in the same order.
type Translator struct{}

// NewTranslator returns a ready translator.
func NewTranslator() *Translator {
	return &Translator{}
}

// Translate derives guidance from the failing outcomes of a report. A fully
// passing report yields no messages.
//
// Ordering: a missing face always surfaces first, collapsed into a single
// message regardless of how many validators degraded. The remaining failures
// sort by severity, then by the report's validator order, so the display
// leads with the error the subject should fix first.
func (t *Translator) Translate(report models.ValidationReport) []models.GuidanceMessage {
	var messages []models.GuidanceMessage
	faceMissing := false

	type ranked struct {
		outcome models.ValidationOutcome
		index   int
	}
	var failing []ranked

	for i, o := range report.Outcomes {
		if o.Passed {
			continue
		}
		if o.Code == models.CodeFaceNotDetected {
			faceMissing = true
			continue
		}
		failing = append(failing, ranked{outcome: o, index: i})
	}

	sort.SliceStable(failing, func(a, b int) bool {
		if failing[a].outcome.Severity != failing[b].outcome.Severity {
			return failing[a].outcome.Severity > failing[b].outcome.Severity
		}
		return failing[a].index < failing[b].index
	})

	priority := 0
	if faceMissing {
		messages = append(messages, models.GuidanceMessage{
			Code:     models.CodeFaceNotDetected,
			Text:     guidanceTexts[models.CodeFaceNotDetected],
			Severity: models.SeverityError,
			Priority: priority,
		})
		priority++
	}

	for _, f := range failing {
		messages = append(messages, models.GuidanceMessage{
			Code:     f.outcome.Code,
			Text:     textFor(f.outcome.Code),
			Severity: f.outcome.Severity,
			Priority: priority,
		})
		priority++
	}

	return messages
}

func textFor(code models.Code) string {
	if text, ok := guidanceTexts[code]; ok {
		return text
	}
	return fallbackText
}
