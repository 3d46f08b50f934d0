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

import "image"

// Point2D is a landmark position in frame pixel coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// HeadPose holds the estimated head orientation in degrees.
type HeadPose struct {
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
	Roll  float64 `json:"roll"`
}

// PerceptionResult is the normalized output of the perception boundary for
// one frame. "No face" is an explicit variant (FaceFound=false), never a nil
// landmark set on a found face.
type PerceptionResult struct {
	// FaceFound distinguishes the no-face variant from a detection.
	FaceFound bool

	// Confidence of the detection in [0,1]. Zero when no face was found.
	Confidence float64

	// BoundingBox of the detected face in frame pixel coordinates.
	BoundingBox image.Rectangle

	// Landmarks is the ordered landmark sequence. Its length is fixed per
	// perception model version; consumers must resolve indices through the
	// landmark schema rather than hard-coding positions.
	Landmarks []Point2D

	// ExpressionScores maps an expression label ("neutral", "happy", ...)
	// to a confidence in [0,1].
	ExpressionScores map[string]float64

	// EyeVisibility maps "left"/"right" to a visibility confidence in [0,1]
	// (occlusion by hair, glasses glare, closed lids).
	EyeVisibility map[string]float64

	// HeadPose angles. Zero values when no face was found.
	HeadPose HeadPose

	// ModelVersion is the semantic version of the perception model that
	// produced this result.
	ModelVersion string
}

// NoFaceDetected constructs the explicit no-face variant for the given model
// version.
func NoFaceDetected(modelVersion string) PerceptionResult {
	return PerceptionResult{
		FaceFound:        false,
		Landmarks:        []Point2D{},
		ExpressionScores: map[string]float64{},
		EyeVisibility:    map[string]float64{},
		ModelVersion:     modelVersion,
	}
}
