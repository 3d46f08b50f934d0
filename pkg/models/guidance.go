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

// GuidanceMessage is one prioritized, human-readable instruction derived
// from a failing outcome. Lower Priority values surface first.
type GuidanceMessage struct {
	Code     Code     `json:"code"`
	Text     string   `json:"text"`
	Severity Severity `json:"severity"`
	Priority int      `json:"priority"`
}
