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

package env_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fotocabin/booth-core/pkg/env"
)

var _ = Describe("Env", func() {
	const key = "BOOTH_ENV_TEST_VALUE"

	Describe("GetAsString", func() {
		It("returns the default when unset", func() {
			value, err := env.GetAsString(key, false, "fallback")
			Expect(err).ToNot(HaveOccurred())
			Expect(value).To(Equal("fallback"))
		})

		It("fails when a required variable is unset", func() {
			_, err := env.GetAsString(key, true, "")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring(key))
		})

		It("returns the set value", func() {
			GinkgoT().Setenv(key, "/data/booth.yaml")
			value, err := env.GetAsString(key, true, "")
			Expect(err).ToNot(HaveOccurred())
			Expect(value).To(Equal("/data/booth.yaml"))
		})
	})

	Describe("GetAsInt", func() {
		It("returns the default when unset", func() {
			value, err := env.GetAsInt(key, false, 8080)
			Expect(err).ToNot(HaveOccurred())
			Expect(value).To(Equal(8080))
		})

		It("parses a set value", func() {
			GinkgoT().Setenv(key, "9090")
			value, err := env.GetAsInt(key, false, 8080)
			Expect(err).ToNot(HaveOccurred())
			Expect(value).To(Equal(9090))
		})

		It("falls back on an unparsable optional value", func() {
			GinkgoT().Setenv(key, "not-a-port")
			value, err := env.GetAsInt(key, false, 8080)
			Expect(err).ToNot(HaveOccurred())
			Expect(value).To(Equal(8080))
		})

		It("fails on an unparsable required value", func() {
			GinkgoT().Setenv(key, "not-a-port")
			_, err := env.GetAsInt(key, true, 0)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("GetAsBool", func() {
		It("returns the default when unset", func() {
			value, err := env.GetAsBool(key, false, true)
			Expect(err).ToNot(HaveOccurred())
			Expect(value).To(BeTrue())
		})

		It("accepts common spellings", func() {
			for spelling, expected := range map[string]bool{
				"true": true, "1": true, "YES": true, "on": true,
				"false": false, "0": false, "No": false, "off": false,
			} {
				GinkgoT().Setenv(key, spelling)
				value, err := env.GetAsBool(key, false, !expected)
				Expect(err).ToNot(HaveOccurred())
				Expect(value).To(Equal(expected), "spelling %q", spelling)
			}
		})

		It("falls back on an unrecognized optional value", func() {
			GinkgoT().Setenv(key, "maybe")
			value, err := env.GetAsBool(key, false, false)
			Expect(err).ToNot(HaveOccurred())
			Expect(value).To(BeFalse())
		})
	})
})
