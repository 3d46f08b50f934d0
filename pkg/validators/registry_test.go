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

import (
	"github.com/fotocabin/booth-core/pkg/config"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Registry", func() {
	var registry *Registry

	BeforeEach(func() {
		registry = NewRegistry()
	})

	It("registers validators in order", func() {
		cfg := config.DefaultConfig().Validators

		Expect(registry.Register(NewBrightnessValidator(cfg.Brightness))).To(Succeed())
		Expect(registry.Register(NewSharpnessValidator(cfg.Sharpness))).To(Succeed())

		active := registry.ActiveValidators()
		Expect(active).To(HaveLen(2))
		Expect(active[0].Name()).To(Equal(NameBrightness))
		Expect(active[1].Name()).To(Equal(NameSharpness))
	})

	It("rejects a duplicate registration and keeps the original", func() {
		cfg := config.DefaultConfig().Validators

		original := NewBrightnessValidator(cfg.Brightness)
		Expect(registry.Register(original)).To(Succeed())

		replacement := NewBrightnessValidator(cfg.Brightness)
		err := registry.Register(replacement)
		Expect(err).To(MatchError(ErrDuplicateValidator))
		Expect(err.Error()).To(ContainSubstring(NameBrightness))

		Expect(registry.Len()).To(Equal(1))
		got, ok := registry.Get(NameBrightness)
		Expect(ok).To(BeTrue())
		Expect(got).To(BeIdenticalTo(original))
	})

	It("unregisters by name", func() {
		cfg := config.DefaultConfig().Validators

		Expect(registry.Register(NewBrightnessValidator(cfg.Brightness))).To(Succeed())
		Expect(registry.Register(NewShadowValidator(cfg.Shadow))).To(Succeed())

		registry.Unregister(NameBrightness)

		Expect(registry.Len()).To(Equal(1))
		_, ok := registry.Get(NameBrightness)
		Expect(ok).To(BeFalse())
		Expect(registry.ActiveValidators()[0].Name()).To(Equal(NameShadow))
	})

	It("ignores unregistering an unknown name", func() {
		registry.Unregister("Nonexistent")
		Expect(registry.Len()).To(Equal(0))
	})
})

var _ = Describe("NewRegistryFromConfig", func() {
	It("builds the full validator set", func() {
		registry, err := NewRegistryFromConfig(config.DefaultConfig().Validators)
		Expect(err).NotTo(HaveOccurred())
		Expect(registry.Len()).To(Equal(9))
	})

	It("skips disabled validators", func() {
		cfg := config.DefaultConfig().Validators
		cfg.Headwear.Disabled = true
		cfg.Background.Disabled = true

		registry, err := NewRegistryFromConfig(cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(registry.Len()).To(Equal(7))

		_, ok := registry.Get(NameHeadwear)
		Expect(ok).To(BeFalse())
	})
})
