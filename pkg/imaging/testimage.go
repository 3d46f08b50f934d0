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
	"image"
	"math/rand"
)

// Deterministic frame generators shared by validator and booth tests.
// They live in the package proper (not _test.go) so other packages can
// build synthetic frames without re-implementing pixel loops.

// UniformGray returns a w x h frame filled with a single gray value.
func UniformGray(w, h int, value uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = value
	}

	return img
}

// NoisyGray returns a frame of uniformly random gray values around a center
// value, seeded deterministically. High spread means strong texture, which
// reads as sharp to the Laplacian.
func NoisyGray(w, h int, center uint8, spread int, seed int64) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	rng := rand.New(rand.NewSource(seed))

	for i := range img.Pix {
		v := int(center) + rng.Intn(2*spread+1) - spread
		if v < 0 {
			v = 0
		}
		if v > 255 {
			v = 255
		}
		img.Pix[i] = uint8(v)
	}

	return img
}

// FillRegion overwrites a clamped region of the frame with a gray value.
func FillRegion(img *image.Gray, region image.Rectangle, value uint8) {
	region = region.Intersect(img.Bounds())
	for y := region.Min.Y; y < region.Max.Y; y++ {
		for x := region.Min.X; x < region.Max.X; x++ {
			img.Pix[(y-img.Rect.Min.Y)*img.Stride+(x-img.Rect.Min.X)] = value
		}
	}
}

// HorizontalGradient returns a frame whose gray value ramps from left to
// right between the two bounds.
func HorizontalGradient(w, h int, from, to uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))

	for x := 0; x < w; x++ {
		v := uint8(int(from) + (int(to)-int(from))*x/max(w-1, 1))
		for y := 0; y < h; y++ {
			img.Pix[y*img.Stride+x] = v
		}
	}

	return img
}
