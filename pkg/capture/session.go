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

package capture

import (
	"time"

	"github.com/google/uuid"
)

// Session is the externally visible record of one capture attempt. Snapshot
// returns a deep copy, so callers can hold it across ticks without racing the
// machine.
type Session struct {
	// ID is regenerated on every Reset.
	ID string `json:"id"`

	// StartedAt anchors the session budget.
	StartedAt time.Time `json:"startedAt"`

	// State is the machine state at snapshot time.
	State string `json:"state"`

	// ConsecutivePasses is the current stable streak length.
	ConsecutivePasses int `json:"consecutivePasses"`

	// FramesObserved counts reports fed into this session.
	FramesObserved uint64 `json:"framesObserved"`

	// RecordID references the persisted capture, empty until captured.
	RecordID string `json:"recordId,omitempty"`

	// FailureReason is set when the session ended in the error state.
	FailureReason string `json:"failureReason,omitempty"`
}

func newSession(now time.Time) Session {
	return Session{
		ID:        uuid.New().String(),
		StartedAt: now,
		State:     StateWaitingForFace,
	}
}
