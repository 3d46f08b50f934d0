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
	"errors"
	"strings"
)

const (
	// TemporaryBackoffError marks errors where the operation is suppressed
	// for a number of ticks and will be retried.
	TemporaryBackoffError = "temporary backoff error"

	// PermanentFailureError marks errors where the retry budget is exhausted
	// and the caller must escalate.
	PermanentFailureError = "permanent failure error"
)

// IsTemporaryBackoffError checks if the error is a temporary backoff error
func IsTemporaryBackoffError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), TemporaryBackoffError)
}

// IsPermanentFailureError checks if the error is a permanent failure error
func IsPermanentFailureError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), PermanentFailureError)
}

// IsBackoffError checks if the error is any type of backoff error
func IsBackoffError(err error) bool {
	return IsTemporaryBackoffError(err) || IsPermanentFailureError(err)
}

// ExtractOriginalError attempts to unwrap all nested errors to get the root cause
func ExtractOriginalError(err error) error {
	if err == nil {
		return nil
	}

	// Keep unwrapping until we can't unwrap anymore
	var unwrapped = err
	for {
		next := errors.Unwrap(unwrapped)
		if next == nil {
			return unwrapped
		}
		unwrapped = next
	}
}
