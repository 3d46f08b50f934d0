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

package imaging

import (
	"bytes"
	"fmt"
	"image"
)

// The camera daemon spools frames as binary PGM (P5), the simplest container
// for an 8-bit luminance plane. Only maxval 255 is supported.

// EncodePGM renders a luminance image as a binary PGM file.
func EncodePGM(img *image.Gray) []byte {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "P5\n%d %d\n255\n", w, h)

	if img.Stride == w {
		buf.Write(img.Pix)
		return buf.Bytes()
	}
	for y := 0; y < h; y++ {
		offset := y * img.Stride
		buf.Write(img.Pix[offset : offset+w])
	}
	return buf.Bytes()
}

// DecodePGM parses a binary PGM file into a luminance image.
func DecodePGM(data []byte) (*image.Gray, error) {
	var w, h, maxval int
	reader := bytes.NewReader(data)

	if _, err := fmt.Fscanf(reader, "P5\n%d %d\n%d\n", &w, &h, &maxval); err != nil {
		return nil, fmt.Errorf("malformed PGM header: %w", err)
	}
	if maxval != 255 {
		return nil, fmt.Errorf("unsupported PGM maxval %d, want 255", maxval)
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid PGM dimensions %dx%d", w, h)
	}

	offset := len(data) - reader.Len()
	if len(data)-offset < w*h {
		return nil, fmt.Errorf("truncated PGM: have %d pixel bytes, want %d", len(data)-offset, w*h)
	}

	img := image.NewGray(image.Rect(0, 0, w, h))
	copy(img.Pix, data[offset:offset+w*h])
	return img, nil
}
