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
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fotocabin/booth-core/pkg/imaging"
	"github.com/fotocabin/booth-core/pkg/logger"
	"github.com/fotocabin/booth-core/pkg/models"
	filesystem "github.com/fotocabin/booth-core/pkg/service/filesystem"
)

const spoolFrameSuffix = ".pgm"

// SpoolSource pulls frames from a spool directory filled by the camera
// daemon. The daemon writes binary PGM files named by capture time; the
// source consumes them oldest first and deletes what it has read. Backlog
// beyond one frame is dropped: a booth only ever cares about the newest view
// of the subject.
type SpoolSource struct {
	fsService filesystem.Service
	dir       string
	logger    *zap.SugaredLogger
	seq       uint64
}

// NewSpoolSource watches dir for spooled frames.
func NewSpoolSource(dir string, fsService filesystem.Service) *SpoolSource {
	return &SpoolSource{
		fsService: fsService,
		dir:       dir,
		logger:    logger.For(logger.ComponentFrameLoop),
	}
}

// NextFrame implements FrameSource. Returns ErrNoFrame when the spool is
// empty.
func (s *SpoolSource) NextFrame(ctx context.Context) (models.Frame, error) {
	exists, err := s.fsService.PathExists(ctx, s.dir)
	if err != nil {
		return models.Frame{}, fmt.Errorf("failed to check spool directory: %w", err)
	}
	if !exists {
		return models.Frame{}, ErrNoFrame
	}

	entries, err := s.fsService.ReadDir(ctx, s.dir)
	if err != nil {
		return models.Frame{}, fmt.Errorf("failed to read spool directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), spoolFrameSuffix) {
			continue
		}
		names = append(names, entry.Name())
	}
	if len(names) == 0 {
		return models.Frame{}, ErrNoFrame
	}
	sort.Strings(names)

	// Drop everything but the newest frame. Stale frames would feed the
	// validators a subject position that no longer exists.
	newest := names[len(names)-1]
	for _, name := range names[:len(names)-1] {
		if err := s.fsService.Remove(ctx, filepath.Join(s.dir, name)); err != nil {
			s.logger.Warnf("Failed to drop stale frame %s: %v", name, err)
		}
	}

	path := filepath.Join(s.dir, newest)
	data, err := s.fsService.ReadFile(ctx, path)
	if err != nil {
		return models.Frame{}, fmt.Errorf("failed to read frame %s: %w", newest, err)
	}

	timestamp := time.Now()
	if info, statErr := s.fsService.Stat(ctx, path); statErr == nil && info != nil {
		timestamp = info.ModTime()
	}

	if err := s.fsService.Remove(ctx, path); err != nil {
		s.logger.Warnf("Failed to remove consumed frame %s: %v", newest, err)
	}

	gray, err := imaging.DecodePGM(data)
	if err != nil {
		return models.Frame{}, fmt.Errorf("frame %s: %w", newest, err)
	}

	s.seq++
	return models.Frame{
		Gray:      gray,
		Timestamp: timestamp,
		Seq:       s.seq,
	}, nil
}
