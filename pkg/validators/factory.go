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

import "github.com/fotocabin/booth-core/pkg/config"

// NewRegistryFromConfig builds the full validator set from the threshold
// configuration, honoring per-validator disable flags. Registration order
// fixes the feedback priority among equally severe failures: placement
// issues are surfaced before lighting details, advisory checks come last.
func NewRegistryFromConfig(cfg config.ValidatorsConfig) (*Registry, error) {
	registry := NewRegistry()

	if !cfg.FacePosition.Disabled {
		if err := registry.Register(NewFacePositionValidator(cfg.FacePosition)); err != nil {
			return nil, err
		}
	}

	if !cfg.Brightness.Disabled {
		if err := registry.Register(NewBrightnessValidator(cfg.Brightness)); err != nil {
			return nil, err
		}
	}

	if !cfg.Sharpness.Disabled {
		if err := registry.Register(NewSharpnessValidator(cfg.Sharpness)); err != nil {
			return nil, err
		}
	}

	if !cfg.Expression.Disabled {
		if err := registry.Register(NewExpressionValidator(cfg.Expression)); err != nil {
			return nil, err
		}
	}

	if !cfg.Eyes.Disabled {
		if err := registry.Register(NewEyeValidator(cfg.Eyes)); err != nil {
			return nil, err
		}
	}

	if !cfg.Reflection.Disabled {
		if err := registry.Register(NewReflectionValidator(cfg.Reflection)); err != nil {
			return nil, err
		}
	}

	if !cfg.Shadow.Disabled {
		if err := registry.Register(NewShadowValidator(cfg.Shadow)); err != nil {
			return nil, err
		}
	}

	if !cfg.Background.Disabled {
		if err := registry.Register(NewBackgroundValidator(cfg.Background)); err != nil {
			return nil, err
		}
	}

	if !cfg.Headwear.Disabled {
		if err := registry.Register(NewHeadwearValidator(cfg.Headwear)); err != nil {
			return nil, err
		}
	}

	return registry, nil
}
