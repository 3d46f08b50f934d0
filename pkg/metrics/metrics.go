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

package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fotocabin/booth-core/pkg/logger"
)

const (
	// Component labels.
	ComponentFrameLoop      = "frame_loop"
	ComponentOrchestrator   = "orchestrator"
	ComponentCaptureMachine = "capture_machine"
	ComponentPerception     = "perception"
	ComponentStorage        = "storage"
	ComponentConfigManager  = "config_manager"
	ComponentAPI            = "api"
)

var (
	// Namespace and subsystem for all metrics.
	namespace = "booth"
	subsystem = "core"

	// Error counters.
	errorCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "errors_total",
			Help:      "Total number of errors encountered by component",
		},
		[]string{"component", "instance"},
	)

	// Frame tick timing.
	tickTime = promauto.NewSummaryVec(
		prometheus.SummaryOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "tick_duration_milliseconds",
			Help:      "Time taken to evaluate one frame tick (in milliseconds)",
			Objectives: map[float64]float64{
				0.5:  0.01,
				0.9:  0.01,
				0.95: 0.01,
				0.99: 0.01,
			},
		},
		[]string{"component", "instance"},
	)

	// Per-validator outcomes.
	validatorOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "validator_outcomes_total",
			Help:      "Validation outcomes by validator name and result",
		},
		[]string{"validator", "result"},
	)

	// Session state gauge.
	sessionState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "session_state",
			Help:      "Current capture session state (0=WaitingForFace, 1=Evaluating, 2=StablePass, 3=Captured, 4=Timeout, 5=Error)",
		},
	)

	// Frames and captures.
	framesProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "frames_processed_total",
			Help:      "Total number of frames pulled from the frame source",
		},
	)

	capturesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "captures_total",
			Help:      "Total number of capture attempts by persistence result",
		},
		[]string{"result"},
	)
)

// SetupMetricsEndpoint starts an HTTP server to expose metrics
// This should be called once at application startup.
func SetupMetricsEndpoint(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:        addr,
		Handler:     mux,
		ReadTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.For("metrics").Errorf("Metrics server failed: %v", err)
		}
	}()

	return server
}

// IncErrorCountAndLog increments the error counter for a component and logs a debug message if a logger is provided.
func IncErrorCountAndLog(component, instance string, err error, logger *zap.SugaredLogger) {
	IncErrorCount(component, instance)

	if logger != nil {
		logger.Debugf("Component %s instance %s failed: %v", component, instance, err)
	}
}

// IncErrorCount increments the error counter for a component.
func IncErrorCount(component, instance string) {
	errorCounter.WithLabelValues(component, instance).Inc()
}

// InitErrorCounter initializes the error counter for a component.
func InitErrorCounter(component, instance string) {
	errorCounter.WithLabelValues(component, instance).Add(0)
}

// ObserveTickTime records the time taken for one frame tick.
func ObserveTickTime(component, instance string, duration time.Duration) {
	tickTime.WithLabelValues(component, instance).Observe(float64(duration.Milliseconds()))
}

// ObserveValidatorOutcome counts a single validator verdict.
func ObserveValidatorOutcome(validator string, passed bool) {
	result := "fail"
	if passed {
		result = "pass"
	}
	validatorOutcomes.WithLabelValues(validator, result).Inc()
}

// UpdateSessionState updates the capture session state gauge.
func UpdateSessionState(state string) {
	sessionState.Set(getStateValue(state))
}

// getStateValue converts a state string to a numeric value for the metric.
func getStateValue(state string) float64 {
	switch state {
	case "waiting_for_face":
		return 0
	case "evaluating":
		return 1
	case "stable_pass":
		return 2
	case "captured":
		return 3
	case "timeout":
		return 4
	case "error":
		return 5
	default:
		return -1 // Unknown state
	}
}

// IncFramesProcessed counts a frame pulled from the source.
func IncFramesProcessed() {
	framesProcessed.Inc()
}

// IncCapture counts a capture attempt outcome ("persisted", "retried", "failed").
func IncCapture(result string) {
	capturesTotal.WithLabelValues(result).Inc()
}
