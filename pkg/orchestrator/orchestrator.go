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

// Package orchestrator runs the active validator set against a frame and
// aggregates the outcomes into a ValidationReport.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fotocabin/booth-core/pkg/alerting"
	"github.com/fotocabin/booth-core/pkg/constants"
	"github.com/fotocabin/booth-core/pkg/logger"
	"github.com/fotocabin/booth-core/pkg/metrics"
	"github.com/fotocabin/booth-core/pkg/models"
	"github.com/fotocabin/booth-core/pkg/perception"
	"github.com/fotocabin/booth-core/pkg/validators"
)

// Orchestrator invokes perception once per frame and runs every active
// validator, never short-circuiting: the user gets complete, simultaneous
// feedback even when the first check already failed.
type Orchestrator struct {
	registry *validators.Registry
	adapter  perception.Adapter
	logger   *zap.SugaredLogger
}

// NewOrchestrator wires the validator set to a perception adapter.
func NewOrchestrator(registry *validators.Registry, adapter perception.Adapter) *Orchestrator {
	return &Orchestrator{
		registry: registry,
		adapter:  adapter,
		logger:   logger.For(logger.ComponentOrchestrator),
	}
}

// Run evaluates one frame and returns the aggregated report. Deterministic
// for identical (frame, perception result, config).
//
// An unreachable perception engine is the only error: "no face found" is an
// ordinary report where every face-dependent validator is degraded to
// FACE_NOT_DETECTED while frame-level validators still run.
func (o *Orchestrator) Run(ctx context.Context, frame models.Frame) (models.ValidationReport, error) {
	start := time.Now()
	defer func() {
		metrics.ObserveTickTime(metrics.ComponentOrchestrator, "run", time.Since(start))
	}()

	perceiveCtx, cancel := context.WithTimeout(ctx, constants.PerceptionTimeout)
	defer cancel()

	result, err := o.adapter.Perceive(perceiveCtx, frame)
	if err != nil {
		metrics.IncErrorCount(metrics.ComponentPerception, "perceive")
		return models.ValidationReport{}, fmt.Errorf("%w: %s", perception.ErrPerceptionUnavailable, err)
	}

	// Resolve the landmark schema once for all validators. A mesh that
	// fails schema validation (wrong count, unsupported model version) is
	// treated like a frame without a usable face: recoverable, degraded
	// outcomes, never a session abort.
	var landmarks *perception.Landmarks
	if result.FaceFound {
		lm, lmErr := perception.NewLandmarks(result.Landmarks, result.ModelVersion)
		if lmErr != nil {
			o.logger.Warnf("Discarding face geometry: %v", lmErr)
		} else {
			landmarks = &lm
		}
	}

	in := validators.Input{
		Frame:      frame,
		Perception: result,
		Landmarks:  landmarks,
	}

	active := o.registry.ActiveValidators()
	outcomes := make([]models.ValidationOutcome, 0, len(active))
	overall := true

	for _, v := range active {
		var outcome models.ValidationOutcome

		if v.FaceDependent() && landmarks == nil {
			outcome = validators.FaceNotDetectedOutcome(v)
		} else {
			outcome = o.evaluate(v, in)
		}

		metrics.ObserveValidatorOutcome(outcome.ValidatorName, outcome.Passed)

		if outcome.Required && !outcome.Passed {
			overall = false
		}

		outcomes = append(outcomes, outcome)
	}

	return models.ValidationReport{
		Timestamp:     frame.Timestamp,
		Outcomes:      outcomes,
		OverallPassed: overall,
	}, nil
}

// evaluate runs a single validator, converting a panic into a failed outcome
// instead of letting one misbehaving validator take down the whole report.
func (o *Orchestrator) evaluate(v validators.Validator, in validators.Input) (outcome models.ValidationOutcome) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("validator %s panicked: %v", v.Name(), r)
			alerting.ReportValidatorError(o.logger, v.Name(), "evaluate", err)
			metrics.IncErrorCount(metrics.ComponentOrchestrator, v.Name())

			outcome = models.ValidationOutcome{
				ValidatorName: v.Name(),
				Passed:        false,
				Score:         0,
				Code:          models.CodeValidatorInternalError,
				Severity:      models.SeverityError,
				Required:      v.Required(),
				FaceDependent: v.FaceDependent(),
			}
		}
	}()

	return v.Evaluate(in)
}
