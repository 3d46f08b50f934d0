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

// Session states. The machine starts in StateWaitingForFace; StateCaptured,
// StateTimeout and StateError are terminal until Reset.
const (
	StateWaitingForFace = "waiting_for_face"
	StateEvaluating     = "evaluating"
	StateStablePass     = "stable_pass"
	StateCaptured       = "captured"
	StateTimeout        = "timeout"
	StateError          = "error"
)

// Events driving the state machine.
const (
	EventFaceDetected    = "face_detected"
	EventFaceLost        = "face_lost"
	EventStable          = "stability_reached"
	EventUnstable        = "stability_broken"
	EventCaptureComplete = "capture_complete"
	EventSessionTimeout  = "session_timeout"
	EventFailure         = "failure"
)

// IsTerminal reports whether the state accepts no further reports.
func IsTerminal(state string) bool {
	switch state {
	case StateCaptured, StateTimeout, StateError:
		return true
	}
	return false
}
