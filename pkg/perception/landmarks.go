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

package perception

import (
	"fmt"
	"image"
	"math"

	"github.com/Masterminds/semver/v3"

	"github.com/fotocabin/booth-core/pkg/models"
)

// FullSchemaLandmarkCount is the number of points the dense face mesh
// delivers per face.
const FullSchemaLandmarkCount = 468

// supportedModelConstraint gates which landmark model versions this build
// understands. The index assignments below are only valid within this range;
// a 2.x model is free to renumber the mesh.
const supportedModelConstraint = ">= 1.0.0, < 2.0.0"

// Dense mesh indices of the named facial features. Fixed by the 1.x landmark
// model schema.
const (
	idxForeheadTop    = 10
	idxNoseTip        = 1
	idxChin           = 152
	idxLeftEyeOuter   = 33
	idxLeftEyeInner   = 133
	idxLeftEyeTop     = 159
	idxLeftEyeBottom  = 145
	idxRightEyeInner  = 362
	idxRightEyeOuter  = 263
	idxRightEyeTop    = 386
	idxRightEyeBottom = 374
	idxUpperLipBottom = 13
	idxLowerLipTop    = 14
	idxMouthLeft      = 61
	idxMouthRight     = 291
)

// Landmarks gives named access to the dense face mesh of a perception
// result. Construction fails for model versions outside the supported range
// or meshes with the wrong point count, so validators never index a mesh
// whose layout they do not understand.
type Landmarks struct {
	points []models.Point2D
}

// NewLandmarks validates the mesh against the model version and wraps it.
func NewLandmarks(points []models.Point2D, modelVersion string) (Landmarks, error) {
	version, err := semver.NewVersion(modelVersion)
	if err != nil {
		return Landmarks{}, fmt.Errorf("failed to parse landmark model version %q: %w", modelVersion, err)
	}

	constraint, err := semver.NewConstraint(supportedModelConstraint)
	if err != nil {
		return Landmarks{}, fmt.Errorf("failed to parse model constraint: %w", err)
	}

	if !constraint.Check(version) {
		return Landmarks{}, fmt.Errorf("landmark model version %s outside supported range %s", modelVersion, supportedModelConstraint)
	}

	if len(points) != FullSchemaLandmarkCount {
		return Landmarks{}, fmt.Errorf("expected %d landmarks, got %d", FullSchemaLandmarkCount, len(points))
	}

	return Landmarks{points: points}, nil
}

func (l Landmarks) ForeheadTop() models.Point2D { return l.points[idxForeheadTop] }
func (l Landmarks) NoseTip() models.Point2D     { return l.points[idxNoseTip] }
func (l Landmarks) Chin() models.Point2D        { return l.points[idxChin] }

// EyeAspectRatio returns the openness of an eye: vertical lid distance over
// horizontal corner distance. Closed eyes approach zero; relaxed open eyes
// sit around 0.3.
func eyeAspectRatio(top, bottom, outer, inner models.Point2D) float64 {
	width := distance(outer, inner)
	if width == 0 {
		return 0
	}

	return distance(top, bottom) / width
}

// LeftEyeAspectRatio returns the openness of the left eye.
func (l Landmarks) LeftEyeAspectRatio() float64 {
	return eyeAspectRatio(l.points[idxLeftEyeTop], l.points[idxLeftEyeBottom], l.points[idxLeftEyeOuter], l.points[idxLeftEyeInner])
}

// RightEyeAspectRatio returns the openness of the right eye.
func (l Landmarks) RightEyeAspectRatio() float64 {
	return eyeAspectRatio(l.points[idxRightEyeTop], l.points[idxRightEyeBottom], l.points[idxRightEyeOuter], l.points[idxRightEyeInner])
}

// MouthGap returns the vertical distance in pixels between the inner lip
// edges. Zero for a closed mouth.
func (l Landmarks) MouthGap() float64 {
	return math.Abs(l.points[idxLowerLipTop].Y - l.points[idxUpperLipBottom].Y)
}

// MouthWidth returns the distance between the mouth corners.
func (l Landmarks) MouthWidth() float64 {
	return distance(l.points[idxMouthLeft], l.points[idxMouthRight])
}

// MouthCornerRise returns how far the mouth corners sit above the inner lip
// line, normalized by mouth width. Positive values indicate a smile.
func (l Landmarks) MouthCornerRise() float64 {
	width := l.MouthWidth()
	if width == 0 {
		return 0
	}

	lipLine := (l.points[idxUpperLipBottom].Y + l.points[idxLowerLipTop].Y) / 2
	cornerLine := (l.points[idxMouthLeft].Y + l.points[idxMouthRight].Y) / 2

	// Image coordinates grow downwards.
	return (lipLine - cornerLine) / width
}

// EyeRegion returns the rectangle spanning both eyes, grown vertically by
// the given fraction of its width. This is where glasses glare shows up.
func (l Landmarks) EyeRegion(pad float64) image.Rectangle {
	corners := []models.Point2D{
		l.points[idxLeftEyeOuter],
		l.points[idxLeftEyeInner],
		l.points[idxRightEyeInner],
		l.points[idxRightEyeOuter],
		l.points[idxLeftEyeTop],
		l.points[idxLeftEyeBottom],
		l.points[idxRightEyeTop],
		l.points[idxRightEyeBottom],
	}

	minX, minY := corners[0].X, corners[0].Y
	maxX, maxY := minX, minY

	for _, p := range corners[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}

	margin := (maxX - minX) * pad

	return image.Rect(
		int(minX-margin), int(minY-margin),
		int(maxX+margin)+1, int(maxY+margin)+1,
	)
}

func distance(a, b models.Point2D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y

	return math.Sqrt(dx*dx + dy*dy)
}
