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

package backoff

import (
	"fmt"
	"sync"
	"time"

	exponential "github.com/cenkalti/backoff"
	"go.uber.org/zap"
)

// Config holds the parameters for a BackoffManager.
type Config struct {
	// ID identifies the protected operation in logs and error messages.
	ID string

	// InitialInterval is the first suppression delay after an error.
	InitialInterval time.Duration
	// MaxInterval caps the exponential growth of the suppression delay.
	MaxInterval time.Duration
	// Multiplier is the exponential growth factor between retries.
	Multiplier float64
	// MaxRetries is the number of failed attempts before the manager
	// declares permanent failure. 0 means a single attempt.
	MaxRetries int

	// TickInterval converts suppression delays into tick counts. The booth
	// loop advances one tick per frame interval.
	TickInterval time.Duration

	Logger *zap.SugaredLogger
}

// DefaultConfig returns a backoff configuration suitable for collaborator
// calls inside the frame loop.
func DefaultConfig(id string, logger *zap.SugaredLogger) Config {
	return Config{
		ID:              id,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		Multiplier:      exponential.DefaultMultiplier,
		MaxRetries:      5,
		TickInterval:    100 * time.Millisecond,
		Logger:          logger,
	}
}

// BackoffManager suppresses a failing operation for an exponentially growing
// number of ticks, escalating to permanent failure once the retry budget is
// spent. Delays are tick-based: the single-threaded loop checks
// ShouldSkipOperation on each frame tick instead of sleeping.
type BackoffManager struct {
	cfg Config

	mu sync.Mutex

	expo *exponential.ExponentialBackOff

	lastErr       error
	retries       int
	suppressUntil uint64
	permanent     bool
}

// NewBackoffManager creates a manager with the given configuration.
func NewBackoffManager(cfg Config) *BackoffManager {
	expo := exponential.NewExponentialBackOff()
	expo.InitialInterval = cfg.InitialInterval
	expo.MaxInterval = cfg.MaxInterval
	// Jitter is pointless once delays are quantized into tick counts.
	expo.RandomizationFactor = 0
	if cfg.Multiplier > 0 {
		expo.Multiplier = cfg.Multiplier
	}
	// MaxElapsedTime disabled: the retry budget is counted in attempts,
	// not wall time.
	expo.MaxElapsedTime = 0
	expo.Reset()

	if cfg.TickInterval <= 0 {
		cfg.TickInterval = 100 * time.Millisecond
	}

	return &BackoffManager{
		cfg:  cfg,
		expo: expo,
	}
}

// SetError records a failed attempt at the given tick and returns true if the
// failure is now permanent.
func (m *BackoffManager) SetError(err error, tick uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastErr = err
	m.retries++

	if m.retries > m.cfg.MaxRetries {
		m.permanent = true
		if m.cfg.Logger != nil {
			m.cfg.Logger.Errorf("%s exceeded %d retries, marking as permanently failed: %v",
				m.cfg.ID, m.cfg.MaxRetries, err)
		}
		return true
	}

	delay := m.expo.NextBackOff()
	ticks := uint64(delay / m.cfg.TickInterval)
	if ticks == 0 {
		ticks = 1
	}
	m.suppressUntil = tick + ticks

	if m.cfg.Logger != nil {
		m.cfg.Logger.Debugf("%s failed (attempt %d/%d), suppressed until tick %d: %v",
			m.cfg.ID, m.retries, m.cfg.MaxRetries, m.suppressUntil, err)
	}

	return false
}

// ShouldSkipOperation reports whether the operation should be skipped at the
// given tick, either because the suppression window is still open or because
// the manager is permanently failed.
func (m *BackoffManager) ShouldSkipOperation(tick uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.permanent {
		return true
	}

	return m.lastErr != nil && tick < m.suppressUntil
}

// GetBackoffError returns a structured error describing the current backoff
// state: a temporary backoff error while suppressed, or a permanent failure
// error once the budget is exhausted.
func (m *BackoffManager) GetBackoffError(tick uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.permanent {
		return fmt.Errorf("%s for %s: %w", PermanentFailureError, m.cfg.ID, m.lastErr)
	}
	if m.lastErr != nil && tick < m.suppressUntil {
		return fmt.Errorf("%s for %s (until tick %d): %w",
			TemporaryBackoffError, m.cfg.ID, m.suppressUntil, m.lastErr)
	}

	return nil
}

// IsPermanentlyFailed returns true once the retry budget is exhausted.
func (m *BackoffManager) IsPermanentlyFailed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.permanent
}

// GetLastError returns the most recent recorded error.
func (m *BackoffManager) GetLastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.lastErr
}

// Reset clears the error state after a successful attempt.
func (m *BackoffManager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastErr = nil
	m.retries = 0
	m.suppressUntil = 0
	m.permanent = false
	m.expo.Reset()
}
