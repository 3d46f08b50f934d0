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

// Package validators holds the strategy set deciding whether a frame meets
// the official passport photo requirements. Every validator is a stateless
// value: thresholds are bound at construction and evaluation is a pure
// function of its input, so two evaluations of the same frame with the same
// config are bit-identical.
package validators

import (
	"github.com/fotocabin/booth-core/pkg/models"
	"github.com/fotocabin/booth-core/pkg/perception"
)

// Validator names. Unique within a registry.
const (
	NameBrightness   = "Brightness"
	NameSharpness    = "Sharpness"
	NameFacePosition = "FacePosition"
	NameExpression   = "FacialExpression"
	NameEyes         = "EyeVisibility"
	NameReflection   = "Reflection"
	NameShadow       = "Shadow"
	NameBackground   = "Background"
	NameHeadwear     = "Headwear"
)

// Input bundles everything a validator may look at for one frame. The
// orchestrator resolves perception and the landmark schema once per frame
// and hands the same input to every validator.
type Input struct {
	Frame      models.Frame
	Perception models.PerceptionResult

	// Landmarks is nil when no face was found or the mesh failed schema
	// validation. Face-dependent validators never see a nil value: the
	// orchestrator degrades them to FACE_NOT_DETECTED before Evaluate.
	Landmarks *perception.Landmarks
}

// Validator is a single stateless photo requirement.
type Validator interface {
	// Name returns the unique validator name.
	Name() string

	// Required reports whether this validator takes part in the overall
	// pass decision. Advisory validators only feed guidance.
	Required() bool

	// FaceDependent reports whether the validator needs face geometry.
	// Face-dependent validators are degraded to FACE_NOT_DETECTED instead
	// of being evaluated when the frame has no usable face.
	FaceDependent() bool

	// Evaluate runs the requirement against the input. Must not perform
	// I/O and must not mutate the input or any shared state.
	Evaluate(in Input) models.ValidationOutcome
}

// FaceNotDetectedOutcome is the degraded outcome a face-dependent validator
// reports when the frame carries no usable face geometry.
func FaceNotDetectedOutcome(v Validator) models.ValidationOutcome {
	return models.ValidationOutcome{
		ValidatorName: v.Name(),
		Passed:        false,
		Score:         0,
		Code:          models.CodeFaceNotDetected,
		Severity:      models.SeverityError,
		Required:      v.Required(),
		FaceDependent: true,
	}
}
