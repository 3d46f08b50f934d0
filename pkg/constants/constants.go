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

package constants

import "time"

const (
	// DefaultTickerTime is the interval between frame ticks of the booth loop.
	// Preview cameras deliver ~30 fps; the loop consumes frames at this pace
	// and must finish a full evaluation before the next tick fires.
	DefaultTickerTime = 100 * time.Millisecond

	// DefaultEvaluationStride runs the full validator set on every Nth frame
	// to bound perception cost. Frames in between only advance the clock.
	DefaultEvaluationStride = 2

	// DefaultStablePassCount is the number of consecutive passing reports
	// required before the capture signal fires.
	DefaultStablePassCount = 5

	// DefaultStabilityWindow is the rolling window within which the
	// consecutive passes must occur.
	DefaultStabilityWindow = 3 * time.Second

	// DefaultSessionBudget is the maximum duration of a booth session before
	// it transitions to timeout.
	DefaultSessionBudget = 30 * time.Second

	// DefaultReportWindowSize bounds the per-session report history ring.
	DefaultReportWindowSize = 64
)

const (
	// PerceptionTimeout bounds a single perception invocation. Inference on
	// the booth hardware normally completes in well under a second.
	PerceptionTimeout = 2 * time.Second

	// StorageRetryMaxAttempts bounds how often a captured frame is re-offered
	// to the storage collaborator before the failure is surfaced.
	StorageRetryMaxAttempts = 3

	// StorageRetryInitialInterval is the first retry delay for persistence.
	StorageRetryInitialInterval = 250 * time.Millisecond
)

const (
	// DefaultMetricsPort exposes prometheus metrics.
	DefaultMetricsPort = 8081

	// DefaultAPIPort exposes the report boundary for GUI/CLI consumers.
	DefaultAPIPort = 8080

	// DefaultConfigPath is where the booth expects its threshold configuration.
	DefaultConfigPath = "/data/config.yaml"

	// ConfigGetConfigTimeout bounds a single config read from disk.
	ConfigGetConfigTimeout = 500 * time.Millisecond
)

const (
	// DefaultAppVersion is used when the binary is built without version
	// ldflags, i.e. local development builds.
	DefaultAppVersion = "0.0.0-dev"

	// DefaultDevelopmentEnvironment is the alerting environment for
	// prerelease builds.
	DefaultDevelopmentEnvironment = "development"

	// DefaultProductionEnvironment is the alerting environment for tagged
	// release builds running on booths.
	DefaultProductionEnvironment = "production"
)
