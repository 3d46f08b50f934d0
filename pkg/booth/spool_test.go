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

package booth_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fotocabin/booth-core/pkg/booth"
	"github.com/fotocabin/booth-core/pkg/imaging"
	filesystem "github.com/fotocabin/booth-core/pkg/service/filesystem"
)

var _ = Describe("SpoolSource", func() {
	var (
		ctx    context.Context
		dir    string
		source *booth.SpoolSource
	)

	spoolFrame := func(name string, value uint8) {
		data := imaging.EncodePGM(imaging.UniformGray(32, 24, value))
		Expect(os.WriteFile(filepath.Join(dir, name), data, 0600)).To(Succeed())
	}

	BeforeEach(func() {
		ctx = context.Background()
		dir = GinkgoT().TempDir()
		source = booth.NewSpoolSource(dir, filesystem.NewDefaultService())
	})

	It("reports an empty spool", func() {
		_, err := source.NextFrame(ctx)
		Expect(errors.Is(err, booth.ErrNoFrame)).To(BeTrue())
	})

	It("reports a missing spool directory", func() {
		source = booth.NewSpoolSource(filepath.Join(dir, "nope"), filesystem.NewDefaultService())
		_, err := source.NextFrame(ctx)
		Expect(errors.Is(err, booth.ErrNoFrame)).To(BeTrue())
	})

	It("consumes a spooled frame", func() {
		spoolFrame("0001.pgm", 90)

		frame, err := source.NextFrame(ctx)
		Expect(err).ToNot(HaveOccurred())
		Expect(frame.Gray.Bounds().Dx()).To(Equal(32))
		Expect(frame.Gray.Pix[0]).To(Equal(uint8(90)))
		Expect(frame.Seq).To(Equal(uint64(1)))

		// The frame is gone after consumption.
		_, err = source.NextFrame(ctx)
		Expect(errors.Is(err, booth.ErrNoFrame)).To(BeTrue())
	})

	It("drops backlog and serves only the newest frame", func() {
		spoolFrame("0001.pgm", 10)
		spoolFrame("0002.pgm", 20)
		spoolFrame("0003.pgm", 30)

		frame, err := source.NextFrame(ctx)
		Expect(err).ToNot(HaveOccurred())
		Expect(frame.Gray.Pix[0]).To(Equal(uint8(30)))

		_, err = source.NextFrame(ctx)
		Expect(errors.Is(err, booth.ErrNoFrame)).To(BeTrue())
	})

	It("ignores files that are not frames", func() {
		Expect(os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0600)).To(Succeed())

		_, err := source.NextFrame(ctx)
		Expect(errors.Is(err, booth.ErrNoFrame)).To(BeTrue())
	})

	It("fails on a corrupt frame", func() {
		Expect(os.WriteFile(filepath.Join(dir, "0001.pgm"), []byte("garbage"), 0600)).To(Succeed())

		_, err := source.NextFrame(ctx)
		Expect(err).To(HaveOccurred())
		Expect(errors.Is(err, booth.ErrNoFrame)).To(BeFalse())
	})
})
