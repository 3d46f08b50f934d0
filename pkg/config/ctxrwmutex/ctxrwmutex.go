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

// Package ctxrwmutex provides a reader/writer lock whose acquisitions honor
// context cancellation. Config reads from the frame loop take the read side
// under the tick deadline; a file rewrite takes the write side.
package ctxrwmutex

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// readerSlots bounds the number of concurrent readers. A writer acquires
// every slot at once, excluding readers and other writers.
const readerSlots = 100

// CtxRWMutex is a reader/writer lock built on a weighted semaphore. Readers
// acquire one slot each; a writer acquires all of them.
type CtxRWMutex struct {
	sem *semaphore.Weighted
}

func NewCtxRWMutex() *CtxRWMutex {
	return &CtxRWMutex{sem: semaphore.NewWeighted(readerSlots)}
}

// RLock acquires the lock for reading, returning the context's error if it
// is cancelled while waiting. On a non-nil error the lock is not held.
func (m *CtxRWMutex) RLock(ctx context.Context) error {
	return m.sem.Acquire(ctx, 1)
}

// RUnlock releases a read acquisition.
func (m *CtxRWMutex) RUnlock() {
	m.sem.Release(1)
}

// Lock acquires the lock exclusively, waiting for all readers to drain.
func (m *CtxRWMutex) Lock(ctx context.Context) error {
	return m.sem.Acquire(ctx, readerSlots)
}

// Unlock releases an exclusive acquisition.
func (m *CtxRWMutex) Unlock() {
	m.sem.Release(readerSlots)
}
