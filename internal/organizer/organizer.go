package organizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"rawsort/internal/compress"
	"rawsort/internal/config"
	"rawsort/internal/convert"
	"rawsort/internal/fileutil"
	"rawsort/internal/journal"
	"rawsort/internal/logging"
	"rawsort/internal/scan"
	"rawsort/internal/services"
	"rawsort/internal/services/exiftool"
	"rawsort/internal/toolexec"
)

// DateReader resolves capture dates. *exiftool.Client satisfies it.
type DateReader = exiftool.DateReader

// Converter produces a preview image from a relocated raw file.
type Converter interface {
	Convert(ctx context.Context, src, dst string, quality uint8) convert.Result
}

// Recorder receives the run and its moves. *journal.Store satisfies it.
type Recorder interface {
	BeginRun(ctx context.Context, run journal.Run) error
	RecordMove(ctx context.Context, move journal.Move) error
	FinishRun(ctx context.Context, run journal.Run) error
}

// ConvertOptions controls preview generation.
type ConvertOptions struct {
	Enabled   bool
	Quality   uint8
	Extension string
}

// Option configures an Organizer.
type Option func(*Organizer)

// WithDateReader replaces the capture date source.
func WithDateReader(reader DateReader) Option {
	return func(o *Organizer) { o.dates = reader }
}

// WithConverter replaces the preview converter.
func WithConverter(converter Converter) Option {
	return func(o *Organizer) { o.converter = converter }
}

// WithRecorder attaches a journal.
func WithRecorder(recorder Recorder) Option {
	return func(o *Organizer) { o.recorder = recorder }
}

// WithConvert sets preview generation options.
func WithConvert(opts ConvertOptions) Option {
	return func(o *Organizer) { o.convert = opts }
}

// WithExtensions sets the raw extensions to pick up.
func WithExtensions(exts ...string) Option {
	return func(o *Organizer) { o.extensions = exts }
}

// WithDryRun makes Run report planned moves without touching the filesystem.
func WithDryRun(enabled bool) Option {
	return func(o *Organizer) { o.dryRun = enabled }
}

// WithClock overrides time.Now (tests).
func WithClock(now func() time.Time) Option {
	return func(o *Organizer) {
		if now != nil {
			o.now = now
		}
	}
}

// Organizer sorts raw files into date folders.
type Organizer struct {
	dates      DateReader
	converter  Converter
	recorder   Recorder
	convert    ConvertOptions
	extensions []string
	dryRun     bool
	logger     *slog.Logger
	now        func() time.Time
}

// New constructs an organizer. A date reader is required; the default
// extension list is "arw".
func New(logger *slog.Logger, opts ...Option) *Organizer {
	o := &Organizer{
		extensions: []string{"arw"},
		logger:     logging.NewComponentLogger(logger, "organizer"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// NewFromConfig wires the exiftool client, converter, and compressor chain
// described by cfg. Extra options are applied last.
func NewFromConfig(cfg *config.Config, logger *slog.Logger, extra ...Option) *Organizer {
	exec := toolexec.NewCommandExecutor(cfg.ToolTimeout())
	dates := exiftool.New(cfg.Tools.ExifTool, exiftool.WithExecutor(exec), exiftool.WithLogger(logger))
	chain := compress.NewFromConfig(cfg, exec, logger)
	converter := convert.New(cfg.Tools.Dcraw, chain, convert.WithExecutor(exec), convert.WithLogger(logger))

	opts := []Option{
		WithDateReader(dates),
		WithConverter(converter),
		WithExtensions(cfg.Scan.Extensions...),
		WithConvert(ConvertOptions{
			Enabled:   cfg.Convert.Enabled,
			Quality:   cfg.ConvertQuality(),
			Extension: cfg.Convert.Extension,
		}),
	}
	return New(logger, append(opts, extra...)...)
}

// Run organizes every matching file in src into date folders under dst.
// Per-file problems are recorded in the summary; the returned error is
// non-nil only when src cannot be listed or ctx is canceled.
func (o *Organizer) Run(ctx context.Context, src, dst string) (Summary, error) {
	if o.dates == nil {
		return Summary{}, services.Wrap(services.ErrConfiguration, "organize", "run", "no date reader configured", nil)
	}
	runID, ok := services.RunIDFromContext(ctx)
	if !ok {
		runID = uuid.NewString()
		ctx = services.WithRunID(ctx, runID)
	}
	logger := logging.WithContext(ctx, o.logger)

	summary := Summary{
		RunID:       runID,
		Source:      src,
		Destination: dst,
		DryRun:      o.dryRun,
		StartedAt:   o.now(),
	}

	scanCtx := services.WithStage(ctx, "scan")
	listing, err := scan.Dir(src, o.extensions)
	if err != nil {
		return summary, services.Wrap(services.ErrValidation, "scan", "list source", src, err)
	}
	summary.Scanned = listing.Total
	summary.Matched = len(listing.Entries)
	logging.WithContext(scanCtx, o.logger).Info("source scanned",
		logging.String("source", src),
		logging.Int("files", listing.Total),
		logging.Int("matched", len(listing.Entries)),
		logging.String(logging.FieldEventType, "source_scanned"),
	)

	recorder := o.recorder
	if o.dryRun {
		recorder = nil
	}
	if recorder != nil {
		if err := recorder.BeginRun(ctx, o.journalRun(summary)); err != nil {
			logging.WarnWithContext(logger, "journal unavailable for this run", "journal_begin_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check journal.path permissions or run without --journal"),
				logging.String(logging.FieldImpact, "moves of this run are not recorded"),
			)
			recorder = nil
		}
	}

	for _, entry := range listing.Entries {
		if ctx.Err() != nil {
			summary.Canceled = true
			break
		}
		outcome, err := o.processFile(ctx, entry, dst)
		if err != nil {
			summary.Canceled = true
			break
		}
		summary.add(outcome)
		if recorder != nil && outcome.Status == StatusMoved {
			o.record(ctx, recorder, runID, outcome)
		}
	}
	summary.Duration = o.now().Sub(summary.StartedAt)

	if recorder != nil {
		run := o.journalRun(summary)
		run.FinishedAt = summary.StartedAt.Add(summary.Duration)
		if err := recorder.FinishRun(context.WithoutCancel(ctx), run); err != nil {
			logger.Warn("journal run update failed", logging.Error(err),
				logging.String(logging.FieldEventType, "journal_finish_failed"),
				logging.String(logging.FieldErrorHint, "inspect the journal database"),
				logging.String(logging.FieldImpact, "run counts missing from history"),
			)
		}
	}

	logger.Info("organize run complete",
		logging.Int("scanned", summary.Scanned),
		logging.Int("matched", summary.Matched),
		logging.Int("moved", summary.Moved),
		logging.Int("undated", summary.Undated),
		logging.Int("failed", summary.Failed),
		logging.Int("converted", summary.Converted),
		logging.Bool("dry_run", summary.DryRun),
		logging.Bool("canceled", summary.Canceled),
		logging.Duration("duration", summary.Duration),
		logging.String(logging.FieldEventType, "run_complete"),
	)

	if summary.Canceled {
		return summary, fmt.Errorf("organize run interrupted: %w", context.Cause(ctx))
	}
	return summary, nil
}

// processFile returns an error only when ctx was canceled before the file's
// date could be read; the file is then left untouched and not counted.
func (o *Organizer) processFile(ctx context.Context, entry scan.Entry, dst string) (Outcome, error) {
	ctx = services.WithFile(ctx, entry.Name)
	logger := logging.WithContext(ctx, o.logger)
	outcome := Outcome{Source: entry.Path, Bytes: entry.Size}

	date, ok := o.dates.CaptureDate(services.WithStage(ctx, "date"), entry.Path)
	if !ok {
		if err := ctx.Err(); err != nil {
			return outcome, err
		}
		outcome.Status = StatusUndated
		logging.WarnWithContext(logger, "could not determine the date", "date_unknown",
			logging.String("source", entry.Path),
			logging.String(logging.FieldErrorHint, "check the file with exiftool -DateTimeOriginal"),
			logging.String(logging.FieldImpact, "file left in the source directory"),
		)
		return outcome, nil
	}
	outcome.Date = date

	if o.dryRun {
		outcome.Status = StatusPlanned
		outcome.Destination = filepath.Join(DateFolder(dst, date), entry.Name)
		if o.convert.Enabled {
			outcome.Converted = PreviewPath(outcome.Destination, o.convert.Extension)
		}
		logger.Info("would move file",
			logging.String("source", entry.Path),
			logging.String("destination", outcome.Destination),
			logging.String(logging.FieldEventType, "file_planned"),
		)
		return outcome, nil
	}

	relocated, err := o.Relocate(ctx, entry.Path, dst, date)
	if err != nil {
		relocated.Status = StatusFailed
		relocated.Err = err
		relocated.Bytes = entry.Size
		hint := "check destination permissions and free space"
		if errors.Is(err, fileutil.ErrTargetExists) {
			hint = "a file with this name already exists in the date folder; rename or remove it"
		}
		logging.ErrorWithContext(logger, "file relocation failed", "file_move_failed",
			logging.String("source", entry.Path),
			logging.String("destination", relocated.Destination),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, hint),
		)
		return relocated, nil
	}
	relocated.Bytes = entry.Size
	relocated.Status = StatusMoved
	return relocated, nil
}

// Relocate moves src into <root>/<YYYY-MM-DD>/, creating the folder when
// needed, and produces a preview when conversion is enabled. The destination
// file is never overwritten. Filesystem errors are returned; preview problems
// are only logged.
func (o *Organizer) Relocate(ctx context.Context, src, root string, date time.Time) (Outcome, error) {
	ctx = services.WithStage(ctx, "relocate")
	logger := logging.WithContext(ctx, o.logger)

	folder := DateFolder(root, date)
	outcome := Outcome{
		Source:      src,
		Destination: filepath.Join(folder, filepath.Base(src)),
		Date:        date,
	}
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return outcome, fmt.Errorf("create date folder: %w", err)
	}
	if err := fileutil.MoveFile(src, outcome.Destination); err != nil {
		return outcome, fmt.Errorf("move file: %w", err)
	}
	logger.Info("file moved",
		logging.String("source", src),
		logging.String("destination", outcome.Destination),
		logging.String(logging.FieldEventType, "file_moved"),
	)

	if !o.convert.Enabled || o.converter == nil {
		return outcome, nil
	}
	preview := PreviewPath(outcome.Destination, o.convert.Extension)
	if _, err := os.Lstat(preview); err == nil {
		logging.WarnWithContext(logger, "preview already exists", "preview_exists",
			logging.String("output", preview),
			logging.String(logging.FieldErrorHint, "remove the existing preview to regenerate it"),
			logging.String(logging.FieldImpact, "existing preview kept"),
		)
		return outcome, nil
	}
	result := o.converter.Convert(services.WithStage(ctx, "convert"), outcome.Destination, preview, o.convert.Quality)
	outcome.Converted = result.Output
	return outcome, nil
}

func (o *Organizer) record(ctx context.Context, recorder Recorder, runID string, outcome Outcome) {
	err := recorder.RecordMove(context.WithoutCancel(ctx), journal.Move{
		RunID:       runID,
		Source:      outcome.Source,
		Destination: outcome.Destination,
		CaptureDate: outcome.Date,
		Converted:   outcome.Converted,
		Bytes:       outcome.Bytes,
		MovedAt:     o.now(),
	})
	if err != nil {
		logger := logging.WithContext(services.WithFile(ctx, filepath.Base(outcome.Source)), o.logger)
		logging.WarnWithContext(logger, "journal write failed", "journal_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "move not recorded in history"),
		)
	}
}

func (o *Organizer) journalRun(summary Summary) journal.Run {
	run := journal.Run{
		ID:          summary.RunID,
		Source:      summary.Source,
		Destination: summary.Destination,
		Convert:     o.convert.Enabled,
		StartedAt:   summary.StartedAt,
		Scanned:     summary.Scanned,
		Matched:     summary.Matched,
		Moved:       summary.Moved,
		Undated:     summary.Undated,
		Failed:      summary.Failed,
		Converted:   summary.Converted,
		Bytes:       summary.Bytes,
		Canceled:    summary.Canceled,
	}
	if o.convert.Enabled {
		run.Quality = int(o.convert.Quality)
	}
	return run
}
