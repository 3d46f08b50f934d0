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

// Package alerting forwards booth failures to Sentry. Booths run unattended
// in public spaces, so a validator crash or a permanently failed storage
// backend must reach the operations team without anyone standing in front of
// the machine.
package alerting

import (
	"fmt"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"github.com/fotocabin/booth-core/pkg/constants"
)

// Package-level state for debouncing errors.
var shouldDebounceErrors = true

// EnableTestMode disables debouncing for testing.
func EnableTestMode() {
	shouldDebounceErrors = false
}

// DisableTestMode restores normal debouncing behavior.
func DisableTestMode() {
	shouldDebounceErrors = true
}

// Init initializes Sentry with the given app version.
// The DSN comes from the BOOTH_SENTRY_DSN environment variable; without it
// alerting is a no-op, which is the desired behavior on developer machines.
// If debounceErrors is true, repeated errors are debounced to avoid spamming
// Sentry from a booth stuck in a failure loop.
func Init(appVersion string, debounceErrors bool) {
	shouldDebounceErrors = debounceErrors

	// Local development builds carry the default version and never report.
	if appVersion == "" || appVersion == constants.DefaultAppVersion {
		zap.S().Debug("Alerting disabled for local development build")

		return
	}

	dsn := os.Getenv("BOOTH_SENTRY_DSN")
	if dsn == "" {
		zap.S().Debug("Alerting disabled, BOOTH_SENTRY_DSN not set")

		return
	}

	environment := constants.DefaultDevelopmentEnvironment

	version, err := semver.NewVersion(appVersion)
	if err != nil {
		zap.S().Errorf("Failed to parse app version, using default environment (development): %s", err)
	} else if version.Prerelease() == "" {
		environment = constants.DefaultProductionEnvironment
	}

	err = sentry.Init(sentry.ClientOptions{
		Dsn:           dsn,
		Environment:   environment,
		Release:       "boothcore@" + appVersion,
		EnableTracing: false,
	})
	if err != nil {
		zap.S().Errorf("Failed to initialize Sentry: %s", err)

		return
	}
}

func getMeaningfulErrorTitle(err error) string {
	message := err.Error()

	// Extract the first sentence or phrase (until period, comma or a colon)
	idx := strings.IndexAny(message, ".,:")
	if idx > 0 {
		message = message[:idx]
	}

	// Limit length of Sentry title
	if len(message) > 100 {
		message = message[:97] + "..."
	}

	return message
}

func createEvent(level sentry.Level, err error) *sentry.Event {
	event := sentry.NewEvent()
	event.Level = level
	event.Message = err.Error()

	exception := sentry.Exception{
		Type:       getMeaningfulErrorTitle(err),
		Value:      err.Error(),
		Stacktrace: sentry.ExtractStacktrace(err),
	}
	event.Exception = []sentry.Exception{exception}

	// Stack trace based fingerprinting with the level as an extra hint.
	event.Fingerprint = []string{
		"{{ default }}",
		"level: " + getLevelString(level),
	}

	return event
}

// createEventWithContext creates a Sentry event with additional context data.
func createEventWithContext(level sentry.Level, err error, context map[string]interface{}) *sentry.Event {
	event := createEvent(level, err)

	if context != nil {
		if event.Tags == nil {
			event.Tags = make(map[string]string)
		}

		for key, value := range context {
			switch convertedValue := value.(type) {
			case string:
				event.Tags[key] = convertedValue
			case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, bool:
				event.Tags[key] = fmt.Sprintf("%v", convertedValue)
			default:
				// Complex types go into the extra data instead.
				if event.Extra == nil {
					event.Extra = make(map[string]interface{})
				}

				event.Extra[key] = convertedValue
			}

			// Validator and state tags group incidents per booth component.
			if key == "validator" || key == "operation" || key == "state" {
				event.Fingerprint = append(event.Fingerprint, fmt.Sprintf("%s: %v", key, value))
			}
		}
	}

	return event
}

// Helper function to convert sentry.Level to string.
func getLevelString(level sentry.Level) string {
	switch level {
	case sentry.LevelDebug:
		return "debug"
	case sentry.LevelInfo:
		return "info"
	case sentry.LevelWarning:
		return "warning"
	case sentry.LevelError:
		return "error"
	case sentry.LevelFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Helper function to send an event to Sentry.
func sendEvent(event *sentry.Event) {
	localHub := sentry.CurrentHub().Clone()
	localHub.CaptureEvent(event)
}
