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

// Package storage persists captured frames together with the report that
// earned the capture.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/fotocabin/booth-core/pkg/models"
)

// ErrStorage marks persistence failures. Callers match it with errors.Is to
// distinguish storage trouble from validation semantics.
var ErrStorage = errors.New("storage failure")

// ErrRecordNotFound is returned when a record ID resolves to nothing.
var ErrRecordNotFound = errors.New("record not found")

// Record is one persisted capture. The frame travels zstd-compressed; the
// report keeps its boundary JSON form so downstream consumers never depend on
// internal types.
type Record struct {
	// ID is the handle returned to the session.
	ID string `json:"id"`

	// CapturedAt is the frame timestamp of the capture.
	CapturedAt time.Time `json:"capturedAt"`

	// Width, Height and Stride describe the raw luminance plane.
	Width  int `json:"width"`
	Height int `json:"height"`
	Stride int `json:"stride"`

	// FrameData holds the zstd-compressed luminance plane.
	FrameData []byte `json:"frameData"`

	// ReportJSON is the serialized validation report.
	ReportJSON []byte `json:"report"`
}

// Store persists captures. Implementations must be safe for concurrent use:
// the frame loop persists while the API layer reads.
type Store interface {
	// Persist writes the capture and returns its record ID.
	Persist(ctx context.Context, frame models.Frame, report models.ValidationReport) (string, error)

	// Load retrieves a persisted record by ID.
	Load(ctx context.Context, id string) (Record, error)
}
