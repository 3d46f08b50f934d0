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

package alerting

import (
	"runtime/debug"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
)

// debounceInterval is how long identical-severity reports are suppressed.
// A booth stuck in a failure loop retries every tick; one Sentry event per
// interval is enough for the operations team.
const debounceInterval = 15 * time.Minute

// reportFatal sends a fatal error to Sentry, including a stack trace and a message.
// Afterwards it reports the error to the logger and panics.
func reportFatal(err error, log *zap.SugaredLogger) {
	reportFatalWithContext(err, log, nil)
}

func reportFatalWithContext(err error, log *zap.SugaredLogger, context map[string]interface{}) {
	log.Error("The booth core has encountered a fatal error and will now terminate.")
	log.Errorf("Error: %s", err)
	log.Errorf("Stack trace: %s", string(debug.Stack()))

	event := createEventWithContext(sentry.LevelFatal, err, context)
	sendEvent(event)
	sentry.Flush(time.Second * 5)

	log.Panic("Fatal error")
}

var errorLastSent = time.Now().Add(-time.Hour * 24)
var errorLastSentMutex sync.Mutex

// reportError sends an error to Sentry, including a stack trace and a message.
// Afterwards it reports the error to the logger.
func reportError(err error, log *zap.SugaredLogger) {
	reportErrorWithContext(err, log, nil)
}

func reportErrorWithContext(err error, log *zap.SugaredLogger, context map[string]interface{}) {
	errorLastSentMutex.Lock()
	defer errorLastSentMutex.Unlock()

	if shouldDebounceErrors && time.Since(errorLastSent) < debounceInterval {
		log.Error(err)

		return
	}

	log.Error(err)
	event := createEventWithContext(sentry.LevelError, err, context)
	sendEvent(event)
	errorLastSent = time.Now()
}

var warningLastSent = time.Now().Add(-time.Hour * 24)
var warningLastSentMutex sync.Mutex

// reportWarning sends a warning to Sentry.
// Afterwards it reports the warning to the logger.
func reportWarning(err error, log *zap.SugaredLogger) {
	reportWarningWithContext(err, log, nil)
}

func reportWarningWithContext(err error, log *zap.SugaredLogger, context map[string]interface{}) {
	warningLastSentMutex.Lock()
	defer warningLastSentMutex.Unlock()

	if shouldDebounceErrors && time.Since(warningLastSent) < debounceInterval {
		log.Warn(err)

		return
	}

	log.Warn(err)
	event := createEventWithContext(sentry.LevelWarning, err, context)
	sendEvent(event)
	warningLastSent = time.Now()
}
