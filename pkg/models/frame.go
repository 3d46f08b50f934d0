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

package models

import (
	"image"
	"time"
)

// Frame is a single luminance image sample from the booth camera plus a
// monotonic timestamp. Frames are immutable once produced; validators only
// ever read the pixel data.
type Frame struct {
	// Gray holds 8-bit luminance pixels. The frame source converts color
	// camera output before the frame enters the core.
	Gray *image.Gray

	// Timestamp is taken when the frame was acquired.
	Timestamp time.Time

	// Seq is the monotonic frame counter within the session.
	Seq uint64
}

// Bounds returns the pixel bounds of the frame, or the zero rectangle for an
// empty frame.
func (f Frame) Bounds() image.Rectangle {
	if f.Gray == nil {
		return image.Rectangle{}
	}
	return f.Gray.Bounds()
}

// Empty reports whether the frame carries no pixel data.
func (f Frame) Empty() bool {
	return f.Gray == nil || f.Gray.Bounds().Empty()
}
