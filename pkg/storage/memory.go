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

package storage

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/google/uuid"

	"github.com/fotocabin/booth-core/pkg/models"
)

// MemoryStore keeps records in process memory. Frames are still compressed,
// so a kiosk surviving many sessions does not hold raw planes around. Used as
// the default backend and as the test double for the file-backed store.
type MemoryStore struct {
	codec   *frameCodec
	mu      sync.RWMutex
	records map[string]Record

	// FailNext makes the next n Persist calls fail. Test hook for retry
	// behavior.
	FailNext int
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() (*MemoryStore, error) {
	codec, err := newFrameCodec()
	if err != nil {
		return nil, err
	}
	return &MemoryStore{
		codec:   codec,
		records: make(map[string]Record),
	}, nil
}

// Persist implements Store.
func (s *MemoryStore) Persist(ctx context.Context, frame models.Frame, report models.ValidationReport) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %s", ErrStorage, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailNext > 0 {
		s.FailNext--
		return "", fmt.Errorf("%w: injected failure", ErrStorage)
	}

	record, err := s.codec.encode(frame, report)
	if err != nil {
		return "", err
	}
	record.ID = uuid.New().String()
	s.records[record.ID] = record
	return record.ID, nil
}

// Load implements Store.
func (s *MemoryStore) Load(ctx context.Context, id string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, fmt.Errorf("%w: %s", ErrStorage, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	return record, nil
}

// Frame decompresses the stored luminance plane of a record.
func (s *MemoryStore) Frame(ctx context.Context, id string) (*image.Gray, error) {
	record, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.codec.decodeFrame(record)
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
