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

package booth

import (
	"sync"

	"github.com/fotocabin/booth-core/pkg/capture"
	"github.com/fotocabin/booth-core/pkg/models"
)

// Status is the externally visible state of the booth, published once per
// evaluated frame. The API layer serves it without touching the loop.
type Status struct {
	// Tick is the loop tick that produced this status.
	Tick uint64 `json:"tick"`

	// Session is the capture session snapshot.
	Session capture.Session `json:"session"`

	// Report is the latest validation report, nil before the first
	// evaluation.
	Report *models.ValidationReport `json:"report,omitempty"`

	// Guidance derived from the latest report, empty when everything
	// passes.
	Guidance []models.GuidanceMessage `json:"guidance"`
}

// StatusManager holds the latest status for concurrent readers. The loop is
// the only writer.
type StatusManager struct {
	mu     sync.RWMutex
	status Status
}

// NewStatusManager returns an empty holder.
func NewStatusManager() *StatusManager {
	return &StatusManager{}
}

// Get returns the latest published status.
func (s *StatusManager) Get() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Update publishes a new status.
func (s *StatusManager) Update(status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}
