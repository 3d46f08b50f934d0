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
	"context"
	"errors"
	"sync"

	"github.com/fotocabin/booth-core/pkg/models"
)

// ErrNoFrame signals that the source has no frame available this tick. The
// loop skips the tick; a stalled camera is handled by the session budget, not
// by the loop.
var ErrNoFrame = errors.New("no frame available")

// FrameSource delivers luminance frames from the booth camera. The
// implementation lives outside the core; the loop only ever pulls.
type FrameSource interface {
	// NextFrame returns the most recent frame. Returns ErrNoFrame when
	// nothing new is available.
	NextFrame(ctx context.Context) (models.Frame, error)
}

// MockFrameSource replays a fixed sequence of frames for tests. When the
// sequence is exhausted it keeps returning the last frame, mimicking a camera
// pointed at a motionless subject.
type MockFrameSource struct {
	// NextFrameFunc overrides the replay behavior entirely.
	NextFrameFunc func(ctx context.Context) (models.Frame, error)

	mu     sync.Mutex
	frames []models.Frame
	pos    int
	calls  int
}

// NewMockFrameSource builds a source replaying the given frames in order.
func NewMockFrameSource(frames ...models.Frame) *MockFrameSource {
	return &MockFrameSource{frames: frames}
}

// NextFrame implements FrameSource.
func (m *MockFrameSource) NextFrame(ctx context.Context) (models.Frame, error) {
	if m.NextFrameFunc != nil {
		return m.NextFrameFunc(ctx)
	}

	if err := ctx.Err(); err != nil {
		return models.Frame{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if len(m.frames) == 0 {
		return models.Frame{}, ErrNoFrame
	}
	frame := m.frames[m.pos]
	if m.pos < len(m.frames)-1 {
		m.pos++
	}
	frame.Seq = uint64(m.calls)
	return frame, nil
}

// Calls returns how many frames were pulled.
func (m *MockFrameSource) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
