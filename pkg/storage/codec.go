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
	"fmt"
	"image"

	"github.com/klauspost/compress/zstd"

	"github.com/fotocabin/booth-core/pkg/models"
)

// frameCodec compresses luminance planes with zstd. Encoder and decoder are
// created once and reused; EncodeAll/DecodeAll are safe for concurrent use.
type frameCodec struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func newFrameCodec() (*frameCodec, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &frameCodec{encoder: encoder, decoder: decoder}, nil
}

// encode builds a record from a capture. The record ID is assigned by the
// caller.
func (c *frameCodec) encode(frame models.Frame, report models.ValidationReport) (Record, error) {
	if frame.Empty() {
		return Record{}, fmt.Errorf("%w: refusing to persist an empty frame", ErrStorage)
	}

	reportJSON, err := report.Serialize()
	if err != nil {
		return Record{}, fmt.Errorf("%w: failed to serialize report: %s", ErrStorage, err)
	}

	bounds := frame.Gray.Bounds()
	return Record{
		CapturedAt: frame.Timestamp,
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		Stride:     frame.Gray.Stride,
		FrameData:  c.encoder.EncodeAll(frame.Gray.Pix, nil),
		ReportJSON: reportJSON,
	}, nil
}

// decodeFrame restores the luminance plane of a record.
func (c *frameCodec) decodeFrame(record Record) (*image.Gray, error) {
	pix, err := c.decoder.DecodeAll(record.FrameData, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decompress frame %s: %s", ErrStorage, record.ID, err)
	}
	if len(pix) != record.Stride*record.Height {
		return nil, fmt.Errorf("%w: frame %s has %d pixels, expected %d", ErrStorage, record.ID, len(pix), record.Stride*record.Height)
	}
	return &image.Gray{
		Pix:    pix,
		Stride: record.Stride,
		Rect:   image.Rect(0, 0, record.Width, record.Height),
	}, nil
}
