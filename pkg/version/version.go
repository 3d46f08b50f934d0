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

// Package version exposes the build version of the booth core.
package version

import (
	"github.com/fotocabin/booth-core/pkg/constants"
	"github.com/fotocabin/booth-core/pkg/env"
)

// appVersion is stamped at build time via
// -ldflags "-X github.com/fotocabin/booth-core/pkg/version.appVersion=...".
var appVersion string

// GetAppVersion returns the running version. Precedence: BOOTH_VERSION
// environment variable, build-time stamp, development fallback.
func GetAppVersion() string {
	if v, err := env.GetAsString("BOOTH_VERSION", false, ""); err == nil && v != "" {
		return v
	}
	if appVersion != "" {
		return appVersion
	}
	return constants.DefaultAppVersion
}
