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

package validators

import "github.com/fotocabin/booth-core/pkg/models"

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}

	return x
}

// marginAbove scores a higher-is-better measurement against its minimum:
// min(1, measured/threshold). A zero threshold always scores 1.
func marginAbove(measured, threshold float64) float64 {
	if threshold <= 0 {
		return 1
	}

	return clamp01(measured / threshold)
}

// marginBelow scores a lower-is-better measurement against its maximum:
// min(1, threshold/measured). Measurements at or below the threshold score 1.
func marginBelow(measured, threshold float64) float64 {
	if measured <= threshold {
		return 1
	}

	// measured > threshold >= 0 here, so the division is safe.
	return clamp01(threshold / measured)
}

// bandScore scores a measurement against a [lo, hi] band. Inside the band
// the score is 1; outside it degrades proportionally to the overshoot.
func bandScore(measured, lo, hi float64) float64 {
	switch {
	case measured < lo:
		return marginAbove(measured, lo)
	case measured > hi:
		return marginBelow(measured, hi)
	default:
		return 1
	}
}

func passed(name string, score float64, required, faceDependent bool, details map[string]float64) models.ValidationOutcome {
	return models.ValidationOutcome{
		ValidatorName: name,
		Passed:        true,
		Score:         clamp01(score),
		Code:          models.CodeOK,
		Severity:      models.SeverityAdvisory,
		Required:      required,
		FaceDependent: faceDependent,
		Details:       details,
	}
}

func failed(name string, code models.Code, score float64, severity models.Severity, required, faceDependent bool, details map[string]float64) models.ValidationOutcome {
	return models.ValidationOutcome{
		ValidatorName: name,
		Passed:        false,
		Score:         clamp01(score),
		Code:          code,
		Severity:      severity,
		Required:      required,
		FaceDependent: faceDependent,
		Details:       details,
	}
}
