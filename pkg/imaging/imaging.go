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

// Package imaging holds the grayscale statistics the validators are built
// on. Everything operates on *image.Gray in the frame's pixel coordinates;
// regions outside the frame are clamped, never an error.
package imaging

import (
	"image"
	"math"
)

// Stats summarizes the gray value distribution of a region.
type Stats struct {
	Mean   float64
	StdDev float64
	Pixels int
}

// RegionStats computes mean and standard deviation of the region, clamped to
// the image bounds. An empty intersection yields zero stats.
func RegionStats(img *image.Gray, region image.Rectangle) Stats {
	region = region.Intersect(img.Bounds())
	if region.Empty() {
		return Stats{}
	}

	var sum, sumSq float64
	n := 0

	for y := region.Min.Y; y < region.Max.Y; y++ {
		row := img.Pix[(y-img.Rect.Min.Y)*img.Stride:]
		for x := region.Min.X; x < region.Max.X; x++ {
			v := float64(row[x-img.Rect.Min.X])
			sum += v
			sumSq += v * v
			n++
		}
	}

	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	if variance < 0 {
		variance = 0
	}

	return Stats{
		Mean:   mean,
		StdDev: math.Sqrt(variance),
		Pixels: n,
	}
}

// Histogram counts gray values over the whole image.
func Histogram(img *image.Gray) [256]int {
	var hist [256]int

	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := img.Pix[(y-img.Rect.Min.Y)*img.Stride:]
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			hist[row[x-img.Rect.Min.X]]++
		}
	}

	return hist
}

// RatioAbove returns the fraction of region pixels strictly above the cutoff.
func RatioAbove(img *image.Gray, region image.Rectangle, cutoff uint8) float64 {
	region = region.Intersect(img.Bounds())
	if region.Empty() {
		return 0
	}

	count := 0
	total := 0

	for y := region.Min.Y; y < region.Max.Y; y++ {
		row := img.Pix[(y-img.Rect.Min.Y)*img.Stride:]
		for x := region.Min.X; x < region.Max.X; x++ {
			if row[x-img.Rect.Min.X] > cutoff {
				count++
			}
			total++
		}
	}

	return float64(count) / float64(total)
}

// RatioBelow returns the fraction of region pixels strictly below the cutoff.
func RatioBelow(img *image.Gray, region image.Rectangle, cutoff uint8) float64 {
	region = region.Intersect(img.Bounds())
	if region.Empty() {
		return 0
	}

	count := 0
	total := 0

	for y := region.Min.Y; y < region.Max.Y; y++ {
		row := img.Pix[(y-img.Rect.Min.Y)*img.Stride:]
		for x := region.Min.X; x < region.Max.X; x++ {
			if row[x-img.Rect.Min.X] < cutoff {
				count++
			}
			total++
		}
	}

	return float64(count) / float64(total)
}

// LaplacianVariance measures focus as the variance of the 4-neighbor
// Laplacian over the region. Sharp regions carry strong second derivatives;
// defocused ones collapse towards zero.
func LaplacianVariance(img *image.Gray, region image.Rectangle) float64 {
	region = region.Intersect(img.Bounds())

	// The operator needs a 1px margin inside the region.
	inner := image.Rect(region.Min.X+1, region.Min.Y+1, region.Max.X-1, region.Max.Y-1)
	if inner.Empty() {
		return 0
	}

	at := func(x, y int) float64 {
		return float64(img.Pix[(y-img.Rect.Min.Y)*img.Stride+(x-img.Rect.Min.X)])
	}

	var sum, sumSq float64
	n := 0

	for y := inner.Min.Y; y < inner.Max.Y; y++ {
		for x := inner.Min.X; x < inner.Max.X; x++ {
			lap := at(x-1, y) + at(x+1, y) + at(x, y-1) + at(x, y+1) - 4*at(x, y)
			sum += lap
			sumSq += lap * lap
			n++
		}
	}

	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	if variance < 0 {
		variance = 0
	}

	return variance
}

// PadRect grows the rectangle by the given fraction of its own size on every
// side. Used to include hair and chin context around a face bounding box.
func PadRect(r image.Rectangle, fraction float64) image.Rectangle {
	padX := int(float64(r.Dx()) * fraction)
	padY := int(float64(r.Dy()) * fraction)

	return image.Rect(r.Min.X-padX, r.Min.Y-padY, r.Max.X+padX, r.Max.Y+padY)
}

// HalvesMean returns the mean gray value of the left and right half of the
// region. Used for shadow asymmetry.
func HalvesMean(img *image.Gray, region image.Rectangle) (left, right float64) {
	mid := region.Min.X + region.Dx()/2

	leftStats := RegionStats(img, image.Rect(region.Min.X, region.Min.Y, mid, region.Max.Y))
	rightStats := RegionStats(img, image.Rect(mid, region.Min.Y, region.Max.X, region.Max.Y))

	return leftStats.Mean, rightStats.Mean
}

// HighlightClusters counts connected components of pixels above the cutoff
// inside the region, ignoring clusters smaller than minPixels. 4-connectivity,
// iterative flood fill to keep the stack flat on large frames.
func HighlightClusters(img *image.Gray, region image.Rectangle, cutoff uint8, minPixels int) int {
	region = region.Intersect(img.Bounds())
	if region.Empty() {
		return 0
	}

	w := region.Dx()
	visited := make([]bool, w*region.Dy())

	bright := func(x, y int) bool {
		return img.Pix[(y-img.Rect.Min.Y)*img.Stride+(x-img.Rect.Min.X)] > cutoff
	}

	clusters := 0

	for y := region.Min.Y; y < region.Max.Y; y++ {
		for x := region.Min.X; x < region.Max.X; x++ {
			idx := (y-region.Min.Y)*w + (x - region.Min.X)
			if visited[idx] || !bright(x, y) {
				continue
			}

			// Flood fill this component.
			size := 0
			stack := []image.Point{{X: x, Y: y}}
			visited[idx] = true

			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				size++

				for _, d := range [4]image.Point{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}} {
					nx, ny := p.X+d.X, p.Y+d.Y
					if nx < region.Min.X || nx >= region.Max.X || ny < region.Min.Y || ny >= region.Max.Y {
						continue
					}

					nidx := (ny-region.Min.Y)*w + (nx - region.Min.X)
					if visited[nidx] || !bright(nx, ny) {
						continue
					}

					visited[nidx] = true
					stack = append(stack, image.Point{X: nx, Y: ny})
				}
			}

			if size >= minPixels {
				clusters++
			}
		}
	}

	return clusters
}
