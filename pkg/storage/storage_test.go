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

package storage_test

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fotocabin/booth-core/pkg/imaging"
	"github.com/fotocabin/booth-core/pkg/models"
	filesystem "github.com/fotocabin/booth-core/pkg/service/filesystem"
	"github.com/fotocabin/booth-core/pkg/storage"
)

func captureFixture() (models.Frame, models.ValidationReport) {
	frame := models.Frame{
		Gray:      imaging.NoisyGray(640, 480, 150, 25, 11),
		Timestamp: time.Date(2025, 6, 12, 9, 30, 5, 0, time.UTC),
		Seq:       57,
	}
	report := models.ValidationReport{
		Timestamp: frame.Timestamp,
		Outcomes: []models.ValidationOutcome{
			{ValidatorName: "Brightness", Passed: true, Score: 1, Code: models.CodeOK, Required: true},
		},
		OverallPassed: true,
	}
	return frame, report
}

var _ = Describe("MemoryStore", func() {
	var (
		ctx   context.Context
		store *storage.MemoryStore
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		store, err = storage.NewMemoryStore()
		Expect(err).ToNot(HaveOccurred())
	})

	It("round-trips a capture", func() {
		frame, report := captureFixture()

		id, err := store.Persist(ctx, frame, report)
		Expect(err).ToNot(HaveOccurred())
		Expect(id).ToNot(BeEmpty())

		record, err := store.Load(ctx, id)
		Expect(err).ToNot(HaveOccurred())
		Expect(record.CapturedAt).To(Equal(frame.Timestamp))
		Expect(record.Width).To(Equal(640))
		Expect(record.Height).To(Equal(480))
		Expect(string(record.ReportJSON)).To(ContainSubstring(`"overallPassed":true`))

		restored, err := store.Frame(ctx, id)
		Expect(err).ToNot(HaveOccurred())
		Expect(restored.Pix).To(Equal(frame.Gray.Pix))
	})

	It("compresses the stored frame", func() {
		frame, report := captureFixture()
		frame.Gray = imaging.UniformGray(640, 480, 128)

		id, err := store.Persist(ctx, frame, report)
		Expect(err).ToNot(HaveOccurred())

		record, err := store.Load(ctx, id)
		Expect(err).ToNot(HaveOccurred())
		Expect(len(record.FrameData)).To(BeNumerically("<", len(frame.Gray.Pix)))
	})

	It("assigns a distinct ID per capture", func() {
		frame, report := captureFixture()

		first, err := store.Persist(ctx, frame, report)
		Expect(err).ToNot(HaveOccurred())
		second, err := store.Persist(ctx, frame, report)
		Expect(err).ToNot(HaveOccurred())

		Expect(first).ToNot(Equal(second))
		Expect(store.Len()).To(Equal(2))
	})

	It("refuses an empty frame", func() {
		_, report := captureFixture()

		_, err := store.Persist(ctx, models.Frame{}, report)
		Expect(errors.Is(err, storage.ErrStorage)).To(BeTrue())
	})

	It("reports unknown record IDs", func() {
		_, err := store.Load(ctx, "no-such-record")
		Expect(errors.Is(err, storage.ErrRecordNotFound)).To(BeTrue())
	})

	It("respects context cancellation", func() {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		frame, report := captureFixture()
		_, err := store.Persist(cancelled, frame, report)
		Expect(errors.Is(err, storage.ErrStorage)).To(BeTrue())
	})
})

var _ = Describe("FileStore", func() {
	var (
		ctx    context.Context
		mockFS *filesystem.MockFileSystem
		store  *storage.FileStore
	)

	BeforeEach(func() {
		ctx = context.Background()
		mockFS = filesystem.NewMockFileSystem()
		var err error
		store, err = storage.NewFileStore("/data/captures", mockFS)
		Expect(err).ToNot(HaveOccurred())
	})

	It("round-trips a capture through the filesystem", func() {
		frame, report := captureFixture()

		id, err := store.Persist(ctx, frame, report)
		Expect(err).ToNot(HaveOccurred())

		record, err := store.Load(ctx, id)
		Expect(err).ToNot(HaveOccurred())
		Expect(record.ID).To(Equal(id))
		Expect(record.CapturedAt).To(Equal(frame.Timestamp))
	})

	It("leaves no temp file behind after a persist", func() {
		frame, report := captureFixture()

		id, err := store.Persist(ctx, frame, report)
		Expect(err).ToNot(HaveOccurred())

		tmpExists, err := mockFS.PathExists(ctx, "/data/captures/"+id+".capture.json.tmp")
		Expect(err).ToNot(HaveOccurred())
		Expect(tmpExists).To(BeFalse())
	})

	It("fails the persist when the write fails", func() {
		mockFS.WriteFileFunc = func(ctx context.Context, path string, data []byte, perm os.FileMode) error {
			return errors.New("disk full")
		}

		frame, report := captureFixture()
		_, err := store.Persist(ctx, frame, report)
		Expect(errors.Is(err, storage.ErrStorage)).To(BeTrue())
	})

	It("reports a missing record", func() {
		_, err := store.Load(ctx, "missing")
		Expect(errors.Is(err, storage.ErrRecordNotFound)).To(BeTrue())
	})

	It("surfaces corrupt records as storage failures", func() {
		mockFS.WithFile("/data/captures/broken.capture.json", []byte("{not json"))

		_, err := store.Load(ctx, "broken")
		Expect(errors.Is(err, storage.ErrStorage)).To(BeTrue())
	})

	It("lists persisted record IDs", func() {
		mockFS.ReadDirFunc = func(ctx context.Context, path string) ([]os.DirEntry, error) {
			return []os.DirEntry{
				fakeDirEntry{name: "a1.capture.json"},
				fakeDirEntry{name: "b2.capture.json"},
				fakeDirEntry{name: "notes.txt"},
			}, nil
		}

		frame, report := captureFixture()
		_, err := store.Persist(ctx, frame, report)
		Expect(err).ToNot(HaveOccurred())

		ids, err := store.List(ctx)
		Expect(err).ToNot(HaveOccurred())
		Expect(ids).To(ConsistOf("a1", "b2"))
	})

	It("lists nothing before the first capture", func() {
		ids, err := store.List(ctx)
		Expect(err).ToNot(HaveOccurred())
		Expect(ids).ToNot(BeNil())
		Expect(ids).To(BeEmpty())
	})
})

var _ = Describe("Retrier", func() {
	var (
		ctx   context.Context
		store *storage.MemoryStore
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		store, err = storage.NewMemoryStore()
		Expect(err).ToNot(HaveOccurred())
	})

	It("persists on the first attempt when the store is healthy", func() {
		frame, report := captureFixture()

		id, err := storage.NewRetrier(store).
			WithInitialInterval(time.Millisecond).
			Persist(ctx, frame, report)
		Expect(err).ToNot(HaveOccurred())
		Expect(id).ToNot(BeEmpty())
	})

	It("retries transient failures until the store recovers", func() {
		store.FailNext = 2
		frame, report := captureFixture()

		id, err := storage.NewRetrier(store).
			WithInitialInterval(time.Millisecond).
			Persist(ctx, frame, report)
		Expect(err).ToNot(HaveOccurred())
		Expect(id).ToNot(BeEmpty())
		Expect(store.Len()).To(Equal(1))
	})

	It("gives up after the attempt budget", func() {
		store.FailNext = 10
		frame, report := captureFixture()

		_, err := storage.NewRetrier(store).
			WithMaxAttempts(3).
			WithInitialInterval(time.Millisecond).
			Persist(ctx, frame, report)
		Expect(errors.Is(err, storage.ErrStorage)).To(BeTrue())
		Expect(store.FailNext).To(Equal(7))
	})
})

// fakeDirEntry satisfies os.DirEntry for directory listing tests.
type fakeDirEntry struct {
	name string
}

func (f fakeDirEntry) Name() string               { return f.name }
func (f fakeDirEntry) IsDir() bool                { return false }
func (f fakeDirEntry) Type() fs.FileMode          { return 0 }
func (f fakeDirEntry) Info() (fs.FileInfo, error) { return nil, nil }
