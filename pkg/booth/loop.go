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

// Package booth runs the frame loop: the single-threaded ticker that pulls
// frames, evaluates them, drives the capture session and publishes status for
// the API layer.
package booth

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/fotocabin/booth-core/pkg/alerting"
	"github.com/fotocabin/booth-core/pkg/backoff"
	"github.com/fotocabin/booth-core/pkg/capture"
	"github.com/fotocabin/booth-core/pkg/config"
	"github.com/fotocabin/booth-core/pkg/feedback"
	"github.com/fotocabin/booth-core/pkg/logger"
	"github.com/fotocabin/booth-core/pkg/metrics"
	"github.com/fotocabin/booth-core/pkg/models"
	"github.com/fotocabin/booth-core/pkg/orchestrator"
	"github.com/fotocabin/booth-core/pkg/perception"
	"github.com/fotocabin/booth-core/pkg/storage"
	"github.com/fotocabin/booth-core/pkg/validators"
)

// Loop coordinates one booth. Everything session-related happens on the tick
// goroutine; concurrent consumers read through the StatusManager.
//
// The loop is deliberately tick-driven rather than event-driven: each tick
// does a bounded amount of work under a deadline, so a slow perception engine
// or storage backend degrades frame rate instead of piling up goroutines.
type Loop struct {
	tickerTime time.Duration
	stride     uint64

	configManager config.ConfigManager
	source        FrameSource
	adapter       perception.Adapter
	persister     *storage.Retrier

	orchestrator  *orchestrator.Orchestrator
	translator    *feedback.Translator
	machine       *capture.Machine
	statusManager *StatusManager

	logger        *zap.SugaredLogger
	currentTick   uint64
	validatorsCfg config.ValidatorsConfig

	resetRequested atomic.Bool
}

// NewLoop assembles a booth from its boundaries. The initial configuration is
// fetched through the manager; a configuration that fails validation refuses
// to start the booth.
func NewLoop(
	ctx context.Context,
	configManager config.ConfigManager,
	source FrameSource,
	adapter perception.Adapter,
	store storage.Store,
) (*Loop, error) {
	log := logger.For(logger.ComponentFrameLoop)

	cfg, err := configManager.GetConfig(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load initial config: %w", err)
	}

	registry, err := validators.NewRegistryFromConfig(cfg.Validators)
	if err != nil {
		return nil, fmt.Errorf("failed to build validator registry: %w", err)
	}

	stride := uint64(cfg.Booth.EvaluationStride)
	if stride == 0 {
		stride = 1
	}

	metrics.InitErrorCounter(metrics.ComponentFrameLoop, "main")

	return &Loop{
		tickerTime:    cfg.Booth.TickInterval.AsDuration(),
		stride:        stride,
		configManager: configManager,
		source:        source,
		adapter:       adapter,
		persister:     storage.NewRetrier(store),
		orchestrator:  orchestrator.NewOrchestrator(registry, adapter),
		translator:    feedback.NewTranslator(),
		machine:       capture.NewMachine(cfg.Booth, time.Now()),
		statusManager: NewStatusManager(),
		logger:        log,
		validatorsCfg: cfg.Validators,
	}, nil
}

// StatusManager exposes the published status for the API layer.
func (l *Loop) StatusManager() *StatusManager {
	return l.statusManager
}

// RequestReset asks the loop to start a fresh session on its next tick. Safe
// to call from any goroutine.
func (l *Loop) RequestReset() {
	l.resetRequested.Store(true)
}

// Execute runs the frame loop until the context is cancelled. A tick that
// overruns its deadline is logged and skipped; only a permanently failed
// configuration stops the loop.
func (l *Loop) Execute(ctx context.Context) error {
	ticker := time.NewTicker(l.tickerTime)
	defer ticker.Stop()

	l.currentTick = 0

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			l.currentTick++

			start := time.Now()
			timeoutCtx, cancel := context.WithTimeout(ctx, l.tickerTime)
			err := l.tick(timeoutCtx, l.currentTick, start)
			cancel()

			cycleTime := time.Since(start)
			if cycleTime > l.tickerTime {
				l.logger.Warnf("Tick %d took %s, longer than the ticker interval %s", l.currentTick, cycleTime, l.tickerTime)
			}
			metrics.ObserveTickTime(metrics.ComponentFrameLoop, "tick", cycleTime)

			if err != nil {
				if errors.Is(err, context.DeadlineExceeded) {
					alerting.ReportIssuef(alerting.IssueTypeWarning, l.logger, "Tick %d timed out: %v", l.currentTick, err)
				} else if errors.Is(err, context.Canceled) {
					l.logger.Infof("Frame loop cancelled")
					return nil
				} else {
					metrics.IncErrorCountAndLog(metrics.ComponentFrameLoop, "main", err, l.logger)
					alerting.ReportIssue(err, alerting.IssueTypeError, l.logger)
					return err
				}
			}
		}
	}
}

// tick performs one cycle: config refresh, session timekeeping, frame pull,
// evaluation, capture.
func (l *Loop) tick(ctx context.Context, tick uint64, now time.Time) error {
	if l.resetRequested.Swap(false) {
		l.machine.Reset(now)
		l.publishStatus(tick, nil, nil)
	}

	if err := l.refreshConfig(ctx, tick); err != nil {
		return err
	}

	if err := l.machine.Tick(ctx, now); err != nil {
		return err
	}

	if capture.IsTerminal(l.machine.State()) {
		// Keep publishing the terminal state; the session only moves again
		// on an explicit reset.
		if l.statusManager.Get().Session.State != l.machine.State() {
			l.publishStatus(tick, nil, nil)
		}
		return nil
	}

	frame, err := l.source.NextFrame(ctx)
	if err != nil {
		if errors.Is(err, ErrNoFrame) {
			return nil
		}
		metrics.IncErrorCountAndLog(metrics.ComponentFrameLoop, "frame_source", err, l.logger)
		return nil
	}
	metrics.IncFramesProcessed()

	// Evaluate every stride-th frame only. Perception dominates the tick
	// budget; skipped frames still count toward the session clock.
	if tick%l.stride != 0 {
		return nil
	}

	report, err := l.orchestrator.Run(ctx, frame)
	if err != nil {
		if errors.Is(err, perception.ErrPerceptionUnavailable) {
			if failErr := l.machine.Fail(ctx, err); failErr != nil {
				return failErr
			}
			l.publishStatus(tick, nil, nil)
			return nil
		}
		return err
	}

	if err := l.machine.Observe(ctx, report, now); err != nil {
		return err
	}

	if l.machine.ShouldCapture() {
		if err := l.capture(ctx, frame, report); err != nil {
			return err
		}
	}

	guidance := l.translator.Translate(report)
	l.publishStatus(tick, &report, guidance)
	return nil
}

// refreshConfig re-reads the configuration and swaps the validator set when
// thresholds changed. Temporary read failures skip the refresh; a permanent
// failure stops the loop.
func (l *Loop) refreshConfig(ctx context.Context, tick uint64) error {
	cfg, err := l.configManager.GetConfig(ctx, tick)
	if err != nil {
		if backoff.IsTemporaryBackoffError(err) {
			l.logger.Debugf("Skipping config refresh due to backoff: %v", err)
			return nil
		}
		if backoff.IsPermanentFailureError(err) {
			originalErr := backoff.ExtractOriginalError(err)
			return fmt.Errorf("config permanently failed, booth needs intervention: %w", originalErr)
		}
		alerting.ReportIssuef(alerting.IssueTypeWarning, l.logger, "Config refresh failed, keeping current thresholds: %v", err)
		return nil
	}

	if reflect.DeepEqual(cfg.Validators, l.validatorsCfg) {
		return nil
	}

	registry, err := validators.NewRegistryFromConfig(cfg.Validators)
	if err != nil {
		alerting.ReportIssuef(alerting.IssueTypeError, l.logger, "Rejecting changed validator config: %v", err)
		return nil
	}

	l.logger.Infof("Validator configuration changed, swapping validator set")
	l.validatorsCfg = cfg.Validators
	l.orchestrator = orchestrator.NewOrchestrator(registry, l.adapter)
	return nil
}

// capture persists the earned frame and finishes the session. A persistence
// failure after all retries aborts the session; the subject is asked to start
// over rather than being promised a photo that never hit disk.
func (l *Loop) capture(ctx context.Context, frame models.Frame, report models.ValidationReport) error {
	recordID, err := l.persister.Persist(ctx, frame, report)
	if err != nil {
		return l.machine.Fail(ctx, fmt.Errorf("capture could not be persisted: %w", err))
	}
	l.logger.Infof("Captured frame %d as record %s", frame.Seq, recordID)
	return l.machine.CaptureCompleted(ctx, recordID)
}

func (l *Loop) publishStatus(tick uint64, report *models.ValidationReport, guidance []models.GuidanceMessage) {
	session, err := l.machine.Snapshot()
	if err != nil {
		l.logger.Errorf("Failed to snapshot session: %v", err)
		return
	}

	if report == nil {
		if latest, ok := l.machine.LatestReport(); ok {
			report = &latest
		}
	}

	l.statusManager.Update(Status{
		Tick:     tick,
		Session:  session,
		Report:   report,
		Guidance: guidance,
	})
}
