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

package models

import (
	"time"

	"github.com/goccy/go-json"
)

// Code identifies a diagnostic condition produced by a validator.
type Code string

const (
	CodeOK Code = "OK"

	// Lighting
	CodeTooDark   Code = "TOO_DARK"
	CodeTooBright Code = "TOO_BRIGHT"

	// Focus
	CodeBlurry Code = "BLURRY"

	// Geometry
	CodeFaceOffCenter Code = "FACE_OFF_CENTER"
	CodeFaceTooSmall  Code = "FACE_TOO_SMALL"
	CodeFaceTooLarge  Code = "FACE_TOO_LARGE"

	// Expression
	CodeNonNeutralExpression Code = "NON_NEUTRAL_EXPRESSION"
	CodeMouthOpen            Code = "MOUTH_OPEN"

	// Eyes
	CodeEyesObstructed Code = "EYES_OBSTRUCTED"

	// Artifacts
	CodeReflectionDetected Code = "REFLECTION_DETECTED"
	CodeShadowDetected     Code = "SHADOW_DETECTED"

	// Advisory supplements
	CodeBackgroundCluttered Code = "BACKGROUND_CLUTTERED"
	CodeHeadwearDetected    Code = "HEADWEAR_DETECTED"

	// Degradation
	CodeFaceNotDetected        Code = "FACE_NOT_DETECTED"
	CodeValidatorInternalError Code = "VALIDATOR_INTERNAL_ERROR"
)

// Severity ranks how strongly an outcome should surface to the subject.
type Severity int

const (
	SeverityAdvisory Severity = iota
	SeverityWarning
	SeverityError
)

// String returns the boundary representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "advisory"
	}
}

// MarshalJSON serializes the severity as its string form.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// ValidationOutcome is the verdict of a single validator for one frame.
type ValidationOutcome struct {
	// ValidatorName is unique within a report.
	ValidatorName string `json:"validator"`

	// Passed is the binary verdict.
	Passed bool `json:"passed"`

	// Score is the normalized margin relative to the threshold in [0,1],
	// suitable for UI progress indicators.
	Score float64 `json:"score"`

	// Code identifies the dominant failure condition, or OK.
	Code Code `json:"code"`

	// Severity of the condition.
	Severity Severity `json:"severity"`

	// Required outcomes participate in the overall conjunction; advisory
	// outcomes do not.
	Required bool `json:"required"`

	// FaceDependent marks outcomes whose validator consumes face geometry.
	// Such outcomes degrade to FACE_NOT_DETECTED when perception finds
	// no face.
	FaceDependent bool `json:"-"`

	// Details carries raw measurements for diagnostics.
	Details map[string]float64 `json:"details,omitempty"`
}

// ValidationReport aggregates the outcomes of all active validators for one
// frame. Immutable once produced.
type ValidationReport struct {
	// Timestamp equals the evaluated frame's timestamp, which keeps two
	// evaluations of the same frame bit-identical.
	Timestamp time.Time `json:"timestamp"`

	// Outcomes in registry order. Order matters only for deterministic
	// feedback priority, not for aggregation.
	Outcomes []ValidationOutcome `json:"perFieldOutcomes"`

	// OverallPassed is the conjunction over all required outcomes.
	OverallPassed bool `json:"overallPassed"`
}

// Outcome returns the outcome for the named validator.
func (r ValidationReport) Outcome(name string) (ValidationOutcome, bool) {
	for _, o := range r.Outcomes {
		if o.ValidatorName == name {
			return o, true
		}
	}
	return ValidationOutcome{}, false
}

// FaceDetected reports whether the frame behind this report had a detected
// face: at least one face-dependent outcome carries a code other than
// FACE_NOT_DETECTED. A report without face-dependent outcomes counts as
// detected; there is nothing to wait for.
func (r ValidationReport) FaceDetected() bool {
	sawFaceDependent := false
	for _, o := range r.Outcomes {
		if !o.FaceDependent {
			continue
		}
		sawFaceDependent = true
		if o.Code != CodeFaceNotDetected {
			return true
		}
	}
	return !sawFaceDependent
}

// Failing returns the failing outcomes in report order.
func (r ValidationReport) Failing() []ValidationOutcome {
	var failing []ValidationOutcome
	for _, o := range r.Outcomes {
		if !o.Passed {
			failing = append(failing, o)
		}
	}
	return failing
}

// Serialize renders the report as the boundary JSON record. No other
// representation of validation results crosses the report boundary.
func (r ValidationReport) Serialize() ([]byte, error) {
	return json.Marshal(r)
}
