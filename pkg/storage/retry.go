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

package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff"
	"go.uber.org/zap"

	"github.com/fotocabin/booth-core/pkg/alerting"
	"github.com/fotocabin/booth-core/pkg/constants"
	"github.com/fotocabin/booth-core/pkg/logger"
	"github.com/fotocabin/booth-core/pkg/metrics"
	"github.com/fotocabin/booth-core/pkg/models"
)

// Retrier wraps a store with bounded exponential retries. A transient
// persistence failure must not lose the capture the subject just earned, so
// the frame stays in flight until the attempts are exhausted.
type Retrier struct {
	store           Store
	logger          *zap.SugaredLogger
	maxAttempts     uint64
	initialInterval time.Duration
}

// NewRetrier wraps the store with the default retry policy.
func NewRetrier(store Store) *Retrier {
	return &Retrier{
		store:           store,
		logger:          logger.For(logger.ComponentStorage),
		maxAttempts:     constants.StorageRetryMaxAttempts,
		initialInterval: constants.StorageRetryInitialInterval,
	}
}

// WithMaxAttempts overrides the attempt budget.
func (r *Retrier) WithMaxAttempts(attempts uint64) *Retrier {
	r.maxAttempts = attempts
	return r
}

// WithInitialInterval overrides the first retry delay.
func (r *Retrier) WithInitialInterval(interval time.Duration) *Retrier {
	r.initialInterval = interval
	return r
}

// Persist writes the capture, retrying transient failures. After the attempt
// budget is exhausted the last error is returned and the failure is reported.
func (r *Retrier) Persist(ctx context.Context, frame models.Frame, report models.ValidationReport) (string, error) {
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = r.initialInterval

	policy := backoff.WithContext(backoff.WithMaxRetries(expo, r.maxAttempts-1), ctx)

	var recordID string
	operation := func() error {
		id, err := r.store.Persist(ctx, frame, report)
		if err != nil {
			return err
		}
		recordID = id
		return nil
	}
	notify := func(err error, wait time.Duration) {
		metrics.IncCapture("retried")
		r.logger.Warnf("Persist failed, retrying in %s: %v", wait, err)
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		metrics.IncCapture("failed")
		alerting.ReportStorageError(r.logger, fmt.Sprintf("%T", r.store), "persist", err)
		return "", err
	}

	metrics.IncCapture("persisted")
	return recordID, nil
}
