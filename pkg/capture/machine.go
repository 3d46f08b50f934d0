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

// Package capture drives the photo session through its states. The machine is
// tick-driven and single-threaded: the frame loop feeds it one report at a
// time, and all time-based decisions use the caller's clock so that tests can
// replay a session deterministically.
package capture

import (
	"context"
	"fmt"
	"time"

	"github.com/looplab/fsm"
	"github.com/tiendc/go-deepcopy"
	"go.uber.org/zap"

	"github.com/fotocabin/booth-core/pkg/alerting"
	"github.com/fotocabin/booth-core/pkg/config"
	"github.com/fotocabin/booth-core/pkg/logger"
	"github.com/fotocabin/booth-core/pkg/metrics"
	"github.com/fotocabin/booth-core/pkg/models"
)

// Machine is the capture session state machine.
//
// Capture is a consequence of sustained validity, never of a single frame:
// the machine requires a streak of consecutive overall-passing reports, all
// inside the stability window, before it arms the capture. Any failing report
// clears the streak.
//
// Not safe for concurrent use. The frame loop owns it; other goroutines read
// it through Snapshot.
type Machine struct {
	fsm    *fsm.FSM
	logger *zap.SugaredLogger

	stablePassCount int
	stabilityWindow time.Duration
	sessionBudget   time.Duration

	session     Session
	window      *reportWindow
	streakStart time.Time
}

// NewMachine builds a machine for a fresh session starting at now.
func NewMachine(cfg config.BoothConfig, now time.Time) *Machine {
	m := &Machine{
		logger:          logger.For(logger.ComponentCaptureMachine),
		stablePassCount: cfg.StablePassCount,
		stabilityWindow: cfg.StabilityWindow.AsDuration(),
		sessionBudget:   cfg.SessionBudget.AsDuration(),
		session:         newSession(now),
		window:          newReportWindow(cfg.ReportWindowSize),
	}

	m.fsm = fsm.NewFSM(
		StateWaitingForFace,
		fsm.Events{
			{Name: EventFaceDetected, Src: []string{StateWaitingForFace}, Dst: StateEvaluating},
			{Name: EventFaceLost, Src: []string{StateEvaluating, StateStablePass}, Dst: StateWaitingForFace},

			{Name: EventStable, Src: []string{StateEvaluating}, Dst: StateStablePass},
			{Name: EventUnstable, Src: []string{StateStablePass}, Dst: StateEvaluating},

			{Name: EventCaptureComplete, Src: []string{StateStablePass}, Dst: StateCaptured},

			{Name: EventSessionTimeout, Src: []string{StateWaitingForFace, StateEvaluating, StateStablePass}, Dst: StateTimeout},
			{Name: EventFailure, Src: []string{StateWaitingForFace, StateEvaluating, StateStablePass}, Dst: StateError},
		},
		fsm.Callbacks{
			"enter_state": func(ctx context.Context, e *fsm.Event) {
				m.logger.Debugf("Session %s: %s -> %s (%s)", m.session.ID, e.Src, e.Dst, e.Event)
				m.session.State = e.Dst
				metrics.UpdateSessionState(e.Dst)
			},
		},
	)

	metrics.UpdateSessionState(StateWaitingForFace)
	return m
}

// State returns the current machine state.
func (m *Machine) State() string {
	return m.fsm.Current()
}

// Observe feeds one validation report into the session. Reports arriving in a
// terminal state are recorded but drive no transitions.
func (m *Machine) Observe(ctx context.Context, report models.ValidationReport, now time.Time) error {
	m.window.push(report)
	m.session.FramesObserved++

	if IsTerminal(m.State()) {
		return nil
	}

	if exceeded, err := m.checkBudget(ctx, now); exceeded || err != nil {
		return err
	}

	if !report.FaceDetected() {
		m.clearStreak()
		if m.State() != StateWaitingForFace {
			return m.send(ctx, EventFaceLost)
		}
		return nil
	}

	if m.State() == StateWaitingForFace {
		if err := m.send(ctx, EventFaceDetected); err != nil {
			return err
		}
	}

	if !report.OverallPassed {
		m.clearStreak()
		if m.State() == StateStablePass {
			return m.send(ctx, EventUnstable)
		}
		return nil
	}

	m.extendStreak(now)

	if m.session.ConsecutivePasses >= m.stablePassCount && m.State() == StateEvaluating {
		return m.send(ctx, EventStable)
	}
	return nil
}

// Tick advances time-based checks without a new report. The frame loop calls
// it every tick, so a timeout fires even when the camera stalls.
func (m *Machine) Tick(ctx context.Context, now time.Time) error {
	if IsTerminal(m.State()) {
		return nil
	}
	_, err := m.checkBudget(ctx, now)
	return err
}

// ShouldCapture reports whether the session has earned a capture that has not
// happened yet.
func (m *Machine) ShouldCapture() bool {
	return m.State() == StateStablePass
}

// CaptureCompleted records the persisted capture and finishes the session.
func (m *Machine) CaptureCompleted(ctx context.Context, recordID string) error {
	m.session.RecordID = recordID
	return m.send(ctx, EventCaptureComplete)
}

// Fail aborts the session with an unrecoverable error, e.g. an unreachable
// perception engine.
func (m *Machine) Fail(ctx context.Context, cause error) error {
	if IsTerminal(m.State()) {
		return nil
	}
	m.session.FailureReason = cause.Error()
	alerting.ReportMachineError(m.logger, m.session.ID, m.State(), cause)
	return m.send(ctx, EventFailure)
}

// Reset starts a fresh session: new ID, cleared report window, state back to
// waiting. Valid from any state.
func (m *Machine) Reset(now time.Time) {
	m.logger.Infof("Resetting session %s from state %s", m.session.ID, m.State())
	m.session = newSession(now)
	m.window.reset()
	m.streakStart = time.Time{}
	m.fsm.SetState(StateWaitingForFace)
	metrics.UpdateSessionState(StateWaitingForFace)
}

// Snapshot returns a deep copy of the session record.
func (m *Machine) Snapshot() (Session, error) {
	var snapshot Session
	if err := deepcopy.Copy(&snapshot, &m.session); err != nil {
		return Session{}, fmt.Errorf("failed to snapshot session: %w", err)
	}
	snapshot.State = m.State()
	return snapshot, nil
}

// LatestReport returns the most recent observed report.
func (m *Machine) LatestReport() (models.ValidationReport, bool) {
	return m.window.latest()
}

// RecentReports returns up to n reports, newest first.
func (m *Machine) RecentReports(n int) []models.ValidationReport {
	return m.window.recent(n)
}

// checkBudget fires the timeout transition once the session exceeds its
// budget. Returns true when the session timed out.
func (m *Machine) checkBudget(ctx context.Context, now time.Time) (bool, error) {
	if now.Sub(m.session.StartedAt) < m.sessionBudget {
		return false, nil
	}
	m.logger.Infof("Session %s exceeded budget of %s without a capture", m.session.ID, m.sessionBudget)
	return true, m.send(ctx, EventSessionTimeout)
}

// extendStreak counts a passing report. A streak that outlives the stability
// window restarts from this report: sparse passes spread over too much time
// do not prove a stable subject.
func (m *Machine) extendStreak(now time.Time) {
	if m.session.ConsecutivePasses == 0 || now.Sub(m.streakStart) > m.stabilityWindow {
		m.streakStart = now
		m.session.ConsecutivePasses = 1
		return
	}
	m.session.ConsecutivePasses++
}

func (m *Machine) clearStreak() {
	m.session.ConsecutivePasses = 0
	m.streakStart = time.Time{}
}

func (m *Machine) send(ctx context.Context, event string) error {
	if err := m.fsm.Event(ctx, event); err != nil {
		metrics.IncErrorCount(metrics.ComponentCaptureMachine, event)
		return fmt.Errorf("event %s from state %s: %w", event, m.State(), err)
	}
	return nil
}
