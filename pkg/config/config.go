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

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fotocabin/booth-core/pkg/constants"
)

// ErrValidatorConfig marks a threshold configuration that no validator can
// run with. It is fatal at startup: a booth with a broken threshold set must
// not pretend to validate photos.
var ErrValidatorConfig = errors.New("invalid validator configuration")

// Duration wraps time.Duration so config files can use readable values like
// "3s" or "250ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("failed to parse duration %q: %w", raw, err)
	}

	*d = Duration(parsed)

	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// AsDuration returns the underlying time.Duration.
func (d Duration) AsDuration() time.Duration {
	return time.Duration(d)
}

type FullConfig struct {
	Booth      BoothConfig      `yaml:"booth"`      // Booth loop and session settings, requires restart to take effect
	Validators ValidatorsConfig `yaml:"validators"` // Per-validator thresholds, read once at session start
}

// BoothConfig holds the loop, session and port settings of a booth.
type BoothConfig struct {
	MetricsPort      int      `yaml:"metricsPort"`                // Port to expose prometheus metrics on
	APIPort          int      `yaml:"apiPort"`                    // Port to expose the report API on
	TickInterval     Duration `yaml:"tickInterval,omitempty"`     // Interval between frame ticks
	EvaluationStride int      `yaml:"evaluationStride,omitempty"` // Run validators on every Nth frame
	StablePassCount  int      `yaml:"stablePassCount,omitempty"`  // Consecutive passing reports before capture
	StabilityWindow  Duration `yaml:"stabilityWindow,omitempty"`  // Rolling window for the consecutive passes
	SessionBudget    Duration `yaml:"sessionBudget,omitempty"`    // Maximum session duration before timeout
	ReportWindowSize int      `yaml:"reportWindowSize,omitempty"` // Size of the per-session report history ring
}

// ValidatorsConfig holds the threshold sections of all validators.
// A zero-valued section is filled with defaults; Disabled skips registration
// of that validator entirely.
type ValidatorsConfig struct {
	Brightness   BrightnessConfig   `yaml:"brightness"`
	Sharpness    SharpnessConfig    `yaml:"sharpness"`
	FacePosition FacePositionConfig `yaml:"facePosition"`
	Expression   ExpressionConfig   `yaml:"expression"`
	Eyes         EyeConfig          `yaml:"eyes"`
	Reflection   ReflectionConfig   `yaml:"reflection"`
	Shadow       ShadowConfig       `yaml:"shadow"`
	Background   BackgroundConfig   `yaml:"background"`
	Headwear     HeadwearConfig     `yaml:"headwear"`
}

// BrightnessConfig bounds the global luminance of the frame.
type BrightnessConfig struct {
	Disabled             bool    `yaml:"disabled,omitempty"`
	MinMean              float64 `yaml:"minMean"`              // Minimum acceptable mean gray value (0..255)
	MaxMean              float64 `yaml:"maxMean"`              // Maximum acceptable mean gray value (0..255)
	MinStdDev            float64 `yaml:"minStdDev"`            // Minimum gray value spread; zero disables the lower bound
	MaxStdDev            float64 `yaml:"maxStdDev"`            // Maximum gray value spread
	MaxOverexposedRatio  float64 `yaml:"maxOverexposedRatio"`  // Fraction of pixels allowed above the highlight cutoff
	MaxUnderexposedRatio float64 `yaml:"maxUnderexposedRatio"` // Fraction of pixels allowed below the shadow cutoff
}

// SharpnessConfig bounds the focus quality of the face region.
type SharpnessConfig struct {
	Disabled             bool    `yaml:"disabled,omitempty"`
	MinLaplacianVariance float64 `yaml:"minLaplacianVariance"` // Minimum edge energy of the padded face region
}

// FacePositionConfig bounds where and how large the face sits in the frame.
type FacePositionConfig struct {
	Disabled        bool    `yaml:"disabled,omitempty"`
	MaxCenterOffset float64 `yaml:"maxCenterOffset"` // Maximum offset of the face center from the frame center, as a fraction of the frame dimension
	MinHeightRatio  float64 `yaml:"minHeightRatio"`  // Minimum face height relative to frame height
	MaxHeightRatio  float64 `yaml:"maxHeightRatio"`  // Maximum face height relative to frame height
	MinAspectRatio  float64 `yaml:"minAspectRatio"`  // Minimum face width/height ratio
	MaxAspectRatio  float64 `yaml:"maxAspectRatio"`  // Maximum face width/height ratio
}

// ExpressionConfig bounds how neutral the subject's expression must be.
type ExpressionConfig struct {
	Disabled        bool    `yaml:"disabled,omitempty"`
	MinNeutralScore float64 `yaml:"minNeutralScore"` // Minimum neutral expression confidence (0..1)
	MaxMouthGap     float64 `yaml:"maxMouthGap"`     // Maximum vertical lip gap in pixels
}

// EyeConfig bounds eye openness and visibility.
type EyeConfig struct {
	Disabled          bool    `yaml:"disabled,omitempty"`
	MinEyeAspectRatio float64 `yaml:"minEyeAspectRatio"` // Minimum eye aspect ratio; below this the eye counts as closed
	MinVisibility     float64 `yaml:"minVisibility"`     // Minimum per-eye visibility score (0..1), guards against hair or glasses glare
}

// ReflectionConfig bounds specular highlights on the face.
type ReflectionConfig struct {
	Disabled             bool    `yaml:"disabled,omitempty"`
	HighlightCutoff      uint8   `yaml:"highlightCutoff"` // Gray value above which a pixel counts as a highlight
	MaxHighlightRatio    float64 `yaml:"maxHighlightRatio"`
	MaxHighlightClusters int     `yaml:"maxHighlightClusters"` // Maximum number of connected highlight clusters on the face
}

// ShadowConfig bounds harsh shadows across the face.
type ShadowConfig struct {
	Disabled     bool    `yaml:"disabled,omitempty"`
	MaxDarkRatio float64 `yaml:"maxDarkRatio"` // Fraction of face pixels allowed below the shadow cutoff
	MaxAsymmetry float64 `yaml:"maxAsymmetry"` // Maximum relative luminance difference between the face halves
}

// BackgroundConfig bounds background uniformity. Advisory only.
type BackgroundConfig struct {
	Disabled  bool    `yaml:"disabled,omitempty"`
	MaxStdDev float64 `yaml:"maxStdDev"` // Maximum gray value standard deviation outside the face region
}

// HeadwearConfig flags likely head coverings. Advisory only.
type HeadwearConfig struct {
	Disabled             bool    `yaml:"disabled,omitempty"`
	MaxForeheadOcclusion float64 `yaml:"maxForeheadOcclusion"` // Fraction of the forehead band allowed to deviate from skin luminance
}

// DefaultConfig returns the configuration a booth starts with when no config
// file exists yet. The thresholds follow the ICAO-style portrait guidance the
// product ships with.
func DefaultConfig() FullConfig {
	return FullConfig{
		Booth: BoothConfig{
			MetricsPort:      constants.DefaultMetricsPort,
			APIPort:          constants.DefaultAPIPort,
			TickInterval:     Duration(constants.DefaultTickerTime),
			EvaluationStride: constants.DefaultEvaluationStride,
			StablePassCount:  constants.DefaultStablePassCount,
			StabilityWindow:  Duration(constants.DefaultStabilityWindow),
			SessionBudget:    Duration(constants.DefaultSessionBudget),
			ReportWindowSize: constants.DefaultReportWindowSize,
		},
		Validators: ValidatorsConfig{
			Brightness: BrightnessConfig{
				MinMean:              60,
				MaxMean:              200,
				MinStdDev:            0,
				MaxStdDev:            90,
				MaxOverexposedRatio:  0.10,
				MaxUnderexposedRatio: 0.10,
			},
			Sharpness: SharpnessConfig{
				MinLaplacianVariance: 50,
			},
			FacePosition: FacePositionConfig{
				MaxCenterOffset: 0.15,
				MinHeightRatio:  0.30,
				MaxHeightRatio:  0.60,
				MinAspectRatio:  0.60,
				MaxAspectRatio:  0.90,
			},
			Expression: ExpressionConfig{
				MinNeutralScore: 0.80,
				MaxMouthGap:     5,
			},
			Eyes: EyeConfig{
				MinEyeAspectRatio: 0.22,
				MinVisibility:     0.70,
			},
			Reflection: ReflectionConfig{
				HighlightCutoff:      250,
				MaxHighlightRatio:    0.02,
				MaxHighlightClusters: 3,
			},
			Shadow: ShadowConfig{
				MaxDarkRatio: 0.25,
				MaxAsymmetry: 0.25,
			},
			Background: BackgroundConfig{
				MaxStdDev: 40,
			},
			Headwear: HeadwearConfig{
				MaxForeheadOcclusion: 0.30,
			},
		},
	}
}

// applyDefaults fills zero-valued fields with defaults. Threshold sections
// are replaced wholesale when empty; partially filled sections are left alone
// so Validate can reject them instead of silently patching operator mistakes.
func (c *FullConfig) applyDefaults() {
	def := DefaultConfig()

	if c.Booth.MetricsPort == 0 {
		c.Booth.MetricsPort = def.Booth.MetricsPort
	}

	if c.Booth.APIPort == 0 {
		c.Booth.APIPort = def.Booth.APIPort
	}

	if c.Booth.TickInterval == 0 {
		c.Booth.TickInterval = def.Booth.TickInterval
	}

	if c.Booth.EvaluationStride == 0 {
		c.Booth.EvaluationStride = def.Booth.EvaluationStride
	}

	if c.Booth.StablePassCount == 0 {
		c.Booth.StablePassCount = def.Booth.StablePassCount
	}

	if c.Booth.StabilityWindow == 0 {
		c.Booth.StabilityWindow = def.Booth.StabilityWindow
	}

	if c.Booth.SessionBudget == 0 {
		c.Booth.SessionBudget = def.Booth.SessionBudget
	}

	if c.Booth.ReportWindowSize == 0 {
		c.Booth.ReportWindowSize = def.Booth.ReportWindowSize
	}

	if (c.Validators.Brightness == BrightnessConfig{}) {
		c.Validators.Brightness = def.Validators.Brightness
	}

	if (c.Validators.Sharpness == SharpnessConfig{}) {
		c.Validators.Sharpness = def.Validators.Sharpness
	}

	if (c.Validators.FacePosition == FacePositionConfig{}) {
		c.Validators.FacePosition = def.Validators.FacePosition
	}

	if (c.Validators.Expression == ExpressionConfig{}) {
		c.Validators.Expression = def.Validators.Expression
	}

	if (c.Validators.Eyes == EyeConfig{}) {
		c.Validators.Eyes = def.Validators.Eyes
	}

	if (c.Validators.Reflection == ReflectionConfig{}) {
		c.Validators.Reflection = def.Validators.Reflection
	}

	if (c.Validators.Shadow == ShadowConfig{}) {
		c.Validators.Shadow = def.Validators.Shadow
	}

	if (c.Validators.Background == BackgroundConfig{}) {
		c.Validators.Background = def.Validators.Background
	}

	if (c.Validators.Headwear == HeadwearConfig{}) {
		c.Validators.Headwear = def.Validators.Headwear
	}
}

// Validate checks the config for values no validator can run with.
// All violations are collected so the operator sees the full list at once.
func (c *FullConfig) Validate() error {
	var problems []string

	if c.Booth.EvaluationStride < 1 {
		problems = append(problems, "booth.evaluationStride must be at least 1")
	}

	if c.Booth.StablePassCount < 1 {
		problems = append(problems, "booth.stablePassCount must be at least 1")
	}

	if c.Booth.StabilityWindow <= 0 {
		problems = append(problems, "booth.stabilityWindow must be positive")
	}

	if c.Booth.SessionBudget <= 0 {
		problems = append(problems, "booth.sessionBudget must be positive")
	}

	if c.Booth.ReportWindowSize < c.Booth.StablePassCount {
		problems = append(problems, "booth.reportWindowSize must hold at least stablePassCount reports")
	}

	b := c.Validators.Brightness
	if !b.Disabled {
		if b.MinMean < 0 || b.MaxMean > 255 || b.MinMean >= b.MaxMean {
			problems = append(problems, "validators.brightness: mean band must satisfy 0 <= minMean < maxMean <= 255")
		}

		if b.MinStdDev < 0 || b.MaxStdDev <= b.MinStdDev {
			problems = append(problems, "validators.brightness: stddev band must satisfy 0 <= minStdDev < maxStdDev")
		}

		if b.MaxOverexposedRatio < 0 || b.MaxOverexposedRatio > 1 || b.MaxUnderexposedRatio < 0 || b.MaxUnderexposedRatio > 1 {
			problems = append(problems, "validators.brightness: exposure ratios must be within [0, 1]")
		}
	}

	if s := c.Validators.Sharpness; !s.Disabled && s.MinLaplacianVariance <= 0 {
		problems = append(problems, "validators.sharpness: minLaplacianVariance must be positive")
	}

	fp := c.Validators.FacePosition
	if !fp.Disabled {
		if fp.MaxCenterOffset <= 0 || fp.MaxCenterOffset > 0.5 {
			problems = append(problems, "validators.facePosition: maxCenterOffset must be within (0, 0.5]")
		}

		if fp.MinHeightRatio <= 0 || fp.MaxHeightRatio > 1 || fp.MinHeightRatio >= fp.MaxHeightRatio {
			problems = append(problems, "validators.facePosition: height band must satisfy 0 < minHeightRatio < maxHeightRatio <= 1")
		}

		if fp.MinAspectRatio <= 0 || fp.MinAspectRatio >= fp.MaxAspectRatio {
			problems = append(problems, "validators.facePosition: aspect band must satisfy 0 < minAspectRatio < maxAspectRatio")
		}
	}

	e := c.Validators.Expression
	if !e.Disabled {
		if e.MinNeutralScore <= 0 || e.MinNeutralScore > 1 {
			problems = append(problems, "validators.expression: minNeutralScore must be within (0, 1]")
		}

		if e.MaxMouthGap < 0 {
			problems = append(problems, "validators.expression: maxMouthGap must not be negative")
		}
	}

	ey := c.Validators.Eyes
	if !ey.Disabled {
		if ey.MinEyeAspectRatio <= 0 {
			problems = append(problems, "validators.eyes: minEyeAspectRatio must be positive")
		}

		if ey.MinVisibility <= 0 || ey.MinVisibility > 1 {
			problems = append(problems, "validators.eyes: minVisibility must be within (0, 1]")
		}
	}

	r := c.Validators.Reflection
	if !r.Disabled {
		if r.MaxHighlightRatio < 0 || r.MaxHighlightRatio > 1 {
			problems = append(problems, "validators.reflection: maxHighlightRatio must be within [0, 1]")
		}

		if r.MaxHighlightClusters < 0 {
			problems = append(problems, "validators.reflection: maxHighlightClusters must not be negative")
		}
	}

	sh := c.Validators.Shadow
	if !sh.Disabled {
		if sh.MaxDarkRatio < 0 || sh.MaxDarkRatio > 1 || sh.MaxAsymmetry < 0 || sh.MaxAsymmetry > 1 {
			problems = append(problems, "validators.shadow: ratios must be within [0, 1]")
		}
	}

	if bg := c.Validators.Background; !bg.Disabled && bg.MaxStdDev <= 0 {
		problems = append(problems, "validators.background: maxStdDev must be positive")
	}

	if hw := c.Validators.Headwear; !hw.Disabled && (hw.MaxForeheadOcclusion <= 0 || hw.MaxForeheadOcclusion > 1) {
		problems = append(problems, "validators.headwear: maxForeheadOcclusion must be within (0, 1]")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w:\n  - %s", ErrValidatorConfig, strings.Join(problems, "\n  - "))
	}

	return nil
}
