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

package capture

import "github.com/fotocabin/booth-core/pkg/models"

// reportWindow is a fixed-size ring over the most recent reports of the
// session. Old entries are overwritten; the window never allocates after
// construction.
type reportWindow struct {
	reports []models.ValidationReport
	next    int
	filled  int
}

func newReportWindow(size int) *reportWindow {
	if size < 1 {
		size = 1
	}
	return &reportWindow{reports: make([]models.ValidationReport, size)}
}

func (w *reportWindow) push(report models.ValidationReport) {
	w.reports[w.next] = report
	w.next = (w.next + 1) % len(w.reports)
	if w.filled < len(w.reports) {
		w.filled++
	}
}

// latest returns the most recent report, if any.
func (w *reportWindow) latest() (models.ValidationReport, bool) {
	if w.filled == 0 {
		return models.ValidationReport{}, false
	}
	idx := (w.next - 1 + len(w.reports)) % len(w.reports)
	return w.reports[idx], true
}

// recent returns up to n reports, newest first.
func (w *reportWindow) recent(n int) []models.ValidationReport {
	if n > w.filled {
		n = w.filled
	}
	out := make([]models.ValidationReport, 0, n)
	for i := 1; i <= n; i++ {
		idx := (w.next - i + len(w.reports)) % len(w.reports)
		out = append(out, w.reports[idx])
	}
	return out
}

func (w *reportWindow) reset() {
	w.next = 0
	w.filled = 0
}
