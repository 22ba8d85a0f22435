package organizer_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"rawsort/internal/convert"
	"rawsort/internal/journal"
	"rawsort/internal/logging"
	"rawsort/internal/organizer"
	"rawsort/internal/services"
	"rawsort/internal/testsupport"
)

type fakeDates map[string]time.Time

func (f fakeDates) CaptureDate(_ context.Context, path string) (time.Time, bool) {
	date, ok := f[filepath.Base(path)]
	return date, ok
}

// interruptedDates cancels the run while the first lookup is in flight, the
// way SIGINT kills a running exiftool.
type interruptedDates struct {
	cancel context.CancelFunc
	calls  int
}

func (f *interruptedDates) CaptureDate(_ context.Context, _ string) (time.Time, bool) {
	f.calls++
	f.cancel()
	return time.Time{}, false
}

type fakeConverter struct {
	calls []string
	q     uint8
}

func (f *fakeConverter) Convert(_ context.Context, src, dst string, quality uint8) convert.Result {
	f.calls = append(f.calls, src+" -> "+dst)
	f.q = quality
	if err := os.WriteFile(dst, []byte("jpeg"), 0o644); err != nil {
		return convert.Result{}
	}
	return convert.Result{Output: dst, Bytes: 4}
}

type fakeRecorder struct {
	begun    []journal.Run
	moves    []journal.Move
	finished []journal.Run
	beginErr error
}

func (f *fakeRecorder) BeginRun(_ context.Context, run journal.Run) error {
	if f.beginErr != nil {
		return f.beginErr
	}
	f.begun = append(f.begun, run)
	return nil
}

func (f *fakeRecorder) RecordMove(_ context.Context, move journal.Move) error {
	f.moves = append(f.moves, move)
	return nil
}

func (f *fakeRecorder) FinishRun(_ context.Context, run journal.Run) error {
	f.finished = append(f.finished, run)
	return nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fileLogger(t *testing.T) (string, func() string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.log")
	return path, func() string {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read log: %v", err)
		}
		return string(data)
	}
}

func TestRunMovesDatedFileIntoDateFolder(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "out")
	testsupport.WriteFile(t, filepath.Join(src, "IMG_0001.ARW"), 128)

	org := organizer.New(logging.NewNop(), organizer.WithDateReader(fakeDates{"IMG_0001.ARW": day(2023, 7, 4)}))
	summary, err := org.Run(context.Background(), src, dst)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := filepath.Join(dst, "2023-07-04", "IMG_0001.ARW")
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("expected %s to exist: %v", want, err)
	}
	if _, err := os.Stat(filepath.Join(src, "IMG_0001.ARW")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected source removed, err=%v", err)
	}
	if summary.Moved != 1 || summary.Matched != 1 || summary.Bytes != 128 || !summary.OK() {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.RunID == "" {
		t.Fatal("expected generated run id")
	}
	if summary.Outcomes[0].Destination != want {
		t.Fatalf("unexpected outcome destination %q", summary.Outcomes[0].Destination)
	}
}

func TestRunLeavesUndatedFilesInPlace(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "out")
	testsupport.WriteFile(t, filepath.Join(src, "IMG_0002.ARW"), 8)

	logPath, readLog := fileLogger(t)
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	summary, err := organizer.New(logger, organizer.WithDateReader(fakeDates{})).Run(context.Background(), src, dst)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Undated != 1 || summary.Moved != 0 || !summary.OK() {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if _, err := os.Stat(filepath.Join(src, "IMG_0002.ARW")); err != nil {
		t.Fatalf("expected undated file kept: %v", err)
	}
	if !strings.Contains(readLog(), "could not determine the date") {
		t.Fatalf("expected undated message in log:\n%s", readLog())
	}
}

func TestRunIgnoresOtherExtensions(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "out")
	testsupport.WriteFile(t, filepath.Join(src, "IMG_0003.JPG"), 8)
	testsupport.WriteFile(t, filepath.Join(src, "notes.txt"), 8)

	dates := fakeDates{"IMG_0003.JPG": day(2023, 1, 1), "notes.txt": day(2023, 1, 1)}
	summary, err := organizer.New(logging.NewNop(), organizer.WithDateReader(dates)).Run(context.Background(), src, dst)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Scanned != 2 || summary.Matched != 0 || summary.Moved != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if _, err := os.Stat(dst); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected destination untouched, err=%v", err)
	}
}

func TestRunFolderCreationIsIdempotent(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "out")
	dates := fakeDates{"A.ARW": day(2023, 7, 4), "B.ARW": day(2023, 7, 4)}
	org := organizer.New(logging.NewNop(), organizer.WithDateReader(dates))

	testsupport.WriteFile(t, filepath.Join(src, "A.ARW"), 1)
	if _, err := org.Run(context.Background(), src, dst); err != nil {
		t.Fatalf("first run: %v", err)
	}
	testsupport.WriteFile(t, filepath.Join(src, "B.ARW"), 1)
	summary, err := org.Run(context.Background(), src, dst)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if summary.Moved != 1 || summary.Failed != 0 {
		t.Fatalf("unexpected second summary: %+v", summary)
	}
	entries, err := os.ReadDir(filepath.Join(dst, "2023-07-04"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected both files in the shared folder, got %d", len(entries))
	}
}

func TestRunContinuesAfterFailedMove(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "out")
	testsupport.WriteFile(t, filepath.Join(src, "A.ARW"), 1)
	testsupport.WriteFile(t, filepath.Join(src, "B.ARW"), 1)
	testsupport.WriteFile(t, filepath.Join(dst, "2023-07-04", "A.ARW"), 3)

	dates := fakeDates{"A.ARW": day(2023, 7, 4), "B.ARW": day(2023, 7, 5)}
	summary, err := organizer.New(logging.NewNop(), organizer.WithDateReader(dates)).Run(context.Background(), src, dst)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Failed != 1 || summary.Moved != 1 || summary.OK() {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if _, err := os.Stat(filepath.Join(dst, "2023-07-05", "B.ARW")); err != nil {
		t.Fatalf("expected later file moved: %v", err)
	}
	if _, err := os.Stat(filepath.Join(src, "A.ARW")); err != nil {
		t.Fatalf("expected conflicting file kept in source: %v", err)
	}
	var failed organizer.Outcome
	for _, outcome := range summary.Outcomes {
		if outcome.Status == organizer.StatusFailed {
			failed = outcome
		}
	}
	if failed.Err == nil || !strings.Contains(failed.Err.Error(), "target already exists") {
		t.Fatalf("expected target exists error, got %+v", failed)
	}
}

func TestRunConvertsWithConfiguredQuality(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "out")
	testsupport.WriteFile(t, filepath.Join(src, "IMG_0001.ARW"), 8)

	conv := &fakeConverter{}
	org := organizer.New(logging.NewNop(),
		organizer.WithDateReader(fakeDates{"IMG_0001.ARW": day(2023, 7, 4)}),
		organizer.WithConverter(conv),
		organizer.WithConvert(organizer.ConvertOptions{Enabled: true, Quality: 50, Extension: "jpg"}),
	)
	summary, err := org.Run(context.Background(), src, dst)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	folder := filepath.Join(dst, "2023-07-04")
	if len(conv.calls) != 1 || conv.calls[0] != filepath.Join(folder, "IMG_0001.ARW")+" -> "+filepath.Join(folder, "IMG_0001.jpg") {
		t.Fatalf("unexpected converter calls %v", conv.calls)
	}
	if conv.q != 50 {
		t.Fatalf("expected quality 50, got %d", conv.q)
	}
	if summary.Converted != 1 {
		t.Fatalf("expected converted count, got %+v", summary)
	}
}

func TestRunDryRunTouchesNothing(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "out")
	testsupport.WriteFile(t, filepath.Join(src, "IMG_0001.ARW"), 8)
	rec := &fakeRecorder{}

	org := organizer.New(logging.NewNop(),
		organizer.WithDateReader(fakeDates{"IMG_0001.ARW": day(2023, 7, 4)}),
		organizer.WithRecorder(rec),
		organizer.WithDryRun(true),
	)
	summary, err := org.Run(context.Background(), src, dst)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Moved != 1 || !summary.DryRun || summary.Outcomes[0].Status != organizer.StatusPlanned {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if _, err := os.Stat(filepath.Join(src, "IMG_0001.ARW")); err != nil {
		t.Fatalf("expected source untouched: %v", err)
	}
	if _, err := os.Stat(dst); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected no destination, err=%v", err)
	}
	if len(rec.begun) != 0 {
		t.Fatal("dry run must not write the journal")
	}
}

func TestRunStopsWhenCanceled(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "out")
	testsupport.WriteFile(t, filepath.Join(src, "IMG_0001.ARW"), 8)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	summary, err := organizer.New(logging.NewNop(),
		organizer.WithDateReader(fakeDates{"IMG_0001.ARW": day(2023, 7, 4)}),
	).Run(ctx, src, dst)
	if err == nil || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation error, got %v", err)
	}
	if !summary.Canceled || summary.Moved != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestRunInterruptedDuringDateLookupIsNotUndated(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "out")
	testsupport.WriteFile(t, filepath.Join(src, "IMG_0001.ARW"), 8)
	testsupport.WriteFile(t, filepath.Join(src, "IMG_0002.ARW"), 8)
	logPath, readLog := fileLogger(t)
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	dates := &interruptedDates{cancel: cancel}
	summary, err := organizer.New(logger, organizer.WithDateReader(dates)).Run(ctx, src, dst)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation error, got %v", err)
	}
	if !summary.Canceled || summary.Undated != 0 || len(summary.Outcomes) != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if dates.calls != 1 {
		t.Fatalf("expected one date lookup before stopping, got %d", dates.calls)
	}
	if strings.Contains(readLog(), "could not determine the date") {
		t.Fatal("interrupted lookup must not be reported as undated")
	}
}

func TestRunMissingSourceFails(t *testing.T) {
	_, err := organizer.New(logging.NewNop(), organizer.WithDateReader(fakeDates{})).
		Run(context.Background(), filepath.Join(t.TempDir(), "missing"), t.TempDir())
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRunRecordsJournal(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "out")
	testsupport.WriteFile(t, filepath.Join(src, "A.ARW"), 10)
	testsupport.WriteFile(t, filepath.Join(src, "B.ARW"), 10)
	rec := &fakeRecorder{}

	ctx := services.WithRunID(context.Background(), "run-42")
	summary, err := organizer.New(logging.NewNop(),
		organizer.WithDateReader(fakeDates{"A.ARW": day(2024, 2, 29)}),
		organizer.WithRecorder(rec),
	).Run(ctx, src, dst)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.RunID != "run-42" {
		t.Fatalf("expected run id from context, got %q", summary.RunID)
	}
	if len(rec.begun) != 1 || len(rec.moves) != 1 || len(rec.finished) != 1 {
		t.Fatalf("unexpected recorder calls: %+v", rec)
	}
	if rec.moves[0].Destination != filepath.Join(dst, "2024-02-29", "A.ARW") {
		t.Fatalf("unexpected recorded move %+v", rec.moves[0])
	}
	if fin := rec.finished[0]; fin.Moved != 1 || fin.Undated != 1 || fin.FinishedAt.IsZero() {
		t.Fatalf("unexpected finished run %+v", fin)
	}
}

func TestRunContinuesWhenJournalUnavailable(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "out")
	testsupport.WriteFile(t, filepath.Join(src, "A.ARW"), 1)
	rec := &fakeRecorder{beginErr: errors.New("disk full")}

	summary, err := organizer.New(logging.NewNop(),
		organizer.WithDateReader(fakeDates{"A.ARW": day(2024, 1, 1)}),
		organizer.WithRecorder(rec),
	).Run(context.Background(), src, dst)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Moved != 1 || len(rec.moves) != 0 || len(rec.finished) != 0 {
		t.Fatalf("expected run without journal, summary=%+v rec=%+v", summary, rec)
	}
}
