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
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/fotocabin/booth-core/pkg/models"
	filesystem "github.com/fotocabin/booth-core/pkg/service/filesystem"
)

const recordSuffix = ".capture.json"

// FileStore persists records as one JSON file per capture under a data
// directory. Writes go through a temp file and a rename, so a capture is
// either fully on disk or absent; a crash never leaves a readable half
// record behind.
type FileStore struct {
	codec     *frameCodec
	fsService filesystem.Service
	dir       string
}

// NewFileStore returns a store rooted at dir. The directory is created on
// first persist.
func NewFileStore(dir string, fsService filesystem.Service) (*FileStore, error) {
	codec, err := newFrameCodec()
	if err != nil {
		return nil, err
	}
	return &FileStore{
		codec:     codec,
		fsService: fsService,
		dir:       dir,
	}, nil
}

// Persist implements Store.
func (s *FileStore) Persist(ctx context.Context, frame models.Frame, report models.ValidationReport) (string, error) {
	record, err := s.codec.encode(frame, report)
	if err != nil {
		return "", err
	}
	record.ID = uuid.New().String()

	data, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("%w: failed to marshal record: %s", ErrStorage, err)
	}

	if err := s.fsService.EnsureDirectory(ctx, s.dir); err != nil {
		return "", fmt.Errorf("%w: %s", ErrStorage, err)
	}

	final := s.recordPath(record.ID)
	tmp := final + ".tmp"
	if err := s.fsService.WriteFile(ctx, tmp, data, 0600); err != nil {
		return "", fmt.Errorf("%w: %s", ErrStorage, err)
	}
	if err := s.fsService.Rename(ctx, tmp, final); err != nil {
		return "", fmt.Errorf("%w: %s", ErrStorage, err)
	}
	return record.ID, nil
}

// Load implements Store.
func (s *FileStore) Load(ctx context.Context, id string) (Record, error) {
	path := s.recordPath(id)

	exists, err := s.fsService.PathExists(ctx, path)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %s", ErrStorage, err)
	}
	if !exists {
		return Record{}, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}

	data, err := s.fsService.ReadFile(ctx, path)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %s", ErrStorage, err)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return Record{}, fmt.Errorf("%w: corrupt record %s: %s", ErrStorage, id, err)
	}
	return record, nil
}

// List returns the IDs of all persisted records.
func (s *FileStore) List(ctx context.Context) ([]string, error) {
	ids := []string{}

	exists, err := s.fsService.PathExists(ctx, s.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrStorage, err)
	}
	if !exists {
		// Nothing was captured yet; the directory appears with the first
		// persisted record.
		return ids, nil
	}

	entries, err := s.fsService.ReadDir(ctx, s.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrStorage, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, recordSuffix) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, recordSuffix))
	}
	return ids, nil
}

// Delete removes a persisted record.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := s.fsService.Remove(ctx, s.recordPath(id)); err != nil {
		return fmt.Errorf("%w: %s", ErrStorage, err)
	}
	return nil
}

func (s *FileStore) recordPath(id string) string {
	return filepath.Join(s.dir, id+recordSuffix)
}
