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

// Package ctxmutex provides a mutex whose Lock honors context cancellation,
// so a config write blocked behind another writer gives up with the tick
// deadline instead of stalling the frame loop.
package ctxmutex

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// CtxMutex is a mutual-exclusion lock built on a weighted semaphore of
// capacity 1. Unlike sync.Mutex, acquiring it can be abandoned via ctx.
type CtxMutex struct {
	sem *semaphore.Weighted
}

func NewCtxMutex() *CtxMutex {
	return &CtxMutex{sem: semaphore.NewWeighted(1)}
}

// Lock acquires the mutex, returning the context's error if it is cancelled
// while waiting. On a non-nil error the mutex is not held.
func (m *CtxMutex) Lock(ctx context.Context) error {
	return m.sem.Acquire(ctx, 1)
}

// Unlock releases the mutex. It must only be called after a successful Lock.
func (m *CtxMutex) Unlock() {
	m.sem.Release(1)
}
