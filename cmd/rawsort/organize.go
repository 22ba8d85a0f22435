package main

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"rawsort/internal/config"
	"rawsort/internal/deps"
	"rawsort/internal/journal"
	"rawsort/internal/logging"
	"rawsort/internal/organizer"
	"rawsort/internal/preflight"
	"rawsort/internal/services"
)

func runOrganize(cmd *cobra.Command, ctx *commandContext, flags organizeFlags, srcArg, dstArg string, extra []string) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if err := applyFlagOverrides(cmd, cfg, flags); err != nil {
		return err
	}

	runID := uuid.NewString()
	stamp := time.Now().Format("20060102T150405")
	logPath := cfg.RunLogPath(stamp)
	baseLogger, err := logging.NewFromConfig(cfg, cmd.OutOrStdout(), logPath)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger := logging.NewComponentLogger(baseLogger, "cli")
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays, logging.RetentionTarget{
		Dir:     cfg.Paths.LogDir,
		Pattern: "rawsort-*.log",
		Exclude: []string{logPath},
	})
	warnQuality(logger, cmd, flags)
	if len(extra) > 0 {
		logging.WarnWithContext(logger, "ignoring extra arguments", "extra_arguments",
			logging.String("arguments", strings.Join(extra, " ")),
			logging.String(logging.FieldErrorHint, usageLine),
			logging.String(logging.FieldImpact, "only the first two directories are used"),
		)
	}

	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another rawsort run is in progress (lock %s)", cfg.LockPath())
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release run lock", logging.Error(err))
		}
	}()

	src, err := config.ExpandPath(srcArg)
	if err != nil {
		return fmt.Errorf("resolve source: %w", err)
	}
	dst, err := config.ExpandPath(dstArg)
	if err != nil {
		return fmt.Errorf("resolve destination: %w", err)
	}
	if _, err := preflight.Run(src, dst, flags.dryRun); err != nil {
		return err
	}
	warnMissingTools(logger, cfg)

	opts := []organizer.Option{organizer.WithDryRun(flags.dryRun)}
	if cfg.Journal.Enabled && !flags.dryRun {
		store, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			logging.WarnWithContext(logger, "journal unavailable", "journal_open_failed",
				logging.String("path", cfg.Journal.Path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "delete or fix the journal database, or disable journal.enabled"),
				logging.String(logging.FieldImpact, "this run is not recorded in history"),
			)
		} else {
			defer store.Close()
			opts = append(opts, organizer.WithRecorder(store))
		}
	}

	runCtx := services.WithRunID(cmd.Context(), runID)
	logging.WithContext(runCtx, logger).Info("organize run starting",
		logging.String("source", src),
		logging.String("destination", dst),
		logging.Bool("convert", cfg.Convert.Enabled),
		logging.Bool("dry_run", flags.dryRun),
		logging.String("log_file", logPath),
		logging.String(logging.FieldEventType, "run_start"),
	)

	summary, runErr := organizer.NewFromConfig(cfg, baseLogger, opts...).Run(runCtx, src, dst)
	if runErr == nil || summary.Canceled {
		printSummary(cmd.OutOrStdout(), summary)
	}
	if runErr != nil {
		return runErr
	}
	if summary.Failed > 0 {
		hint := ""
		if logPath != "" {
			hint = "; see " + logPath
		}
		return fmt.Errorf("%d of %d files could not be moved%s", summary.Failed, summary.Matched, hint)
	}
	return nil
}

func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config, flags organizeFlags) error {
	if level := strings.ToLower(strings.TrimSpace(flags.logLevel)); level != "" {
		switch level {
		case "debug", "info", "warn", "error":
			cfg.Logging.Level = level
		default:
			return services.Wrap(services.ErrValidation, "cli", "log-level", fmt.Sprintf("unsupported value %q", flags.logLevel), nil)
		}
	}
	if flags.journal {
		cfg.Journal.Enabled = true
	}
	if cmd.Flags().Changed("convert-to-jpg") {
		cfg.Convert.Enabled = true
		cfg.Convert.Quality = int(parseQuality(flags.convert).Value)
	}
	return nil
}

func warnQuality(logger *slog.Logger, cmd *cobra.Command, flags organizeFlags) {
	if !cmd.Flags().Changed("convert-to-jpg") {
		return
	}
	quality := parseQuality(flags.convert)
	switch {
	case quality.Invalid:
		logging.WarnWithContext(logger, "invalid jpeg quality; using default", "quality_fallback",
			logging.String("value", quality.Raw),
			logging.Int("quality", int(quality.Value)),
			logging.String(logging.FieldErrorHint, "pass a whole number between 0 and 100"),
			logging.String(logging.FieldImpact, "previews use the default quality"),
		)
	case quality.Clamped:
		logging.WarnWithContext(logger, "jpeg quality above 100; clamped", "quality_clamped",
			logging.String("value", quality.Raw),
			logging.Int("quality", int(quality.Value)),
			logging.String(logging.FieldErrorHint, "pass a whole number between 0 and 100"),
			logging.String(logging.FieldImpact, "previews use quality 100"),
		)
	}
}

func warnMissingTools(logger *slog.Logger, cfg *config.Config) {
	statuses := deps.CheckBinaries(deps.Requirements(cfg))
	for _, status := range statuses {
		if status.Available || status.Optional {
			continue
		}
		logging.WarnWithContext(logger, "required tool not found", "dependency_missing",
			logging.String("tool", status.Name),
			logging.String("command", status.Command),
			logging.String(logging.FieldErrorHint, "run `rawsort deps` and install the missing tool"),
			logging.String(logging.FieldImpact, impactForMissing(status.Name)),
		)
	}
}

func impactForMissing(name string) string {
	if name == "ExifTool" {
		return "no capture dates can be read; files stay in the source directory"
	}
	return "no jpeg previews will be produced"
}

func printSummary(out io.Writer, summary organizer.Summary) {
	movedLabel := "Moved"
	if summary.DryRun {
		movedLabel = "Would move"
	}
	status := "complete"
	switch {
	case summary.Canceled:
		status = "interrupted"
	case summary.Failed > 0:
		status = "completed with failures"
	}
	rows := [][]string{
		{"Run", summary.RunID},
		{"Status", status},
		{"Source", summary.Source},
		{"Destination", summary.Destination},
		{"Files scanned", fmt.Sprintf("%d", summary.Scanned)},
		{"Raw files", fmt.Sprintf("%d", summary.Matched)},
		{movedLabel, fmt.Sprintf("%d (%s)", summary.Moved, humanize.Bytes(uint64(max(summary.Bytes, 0))))},
		{"Undated", fmt.Sprintf("%d", summary.Undated)},
		{"Failed", fmt.Sprintf("%d", summary.Failed)},
		{"Previews", fmt.Sprintf("%d", summary.Converted)},
		{"Duration", summary.Duration.Round(time.Millisecond).String()},
	}
	fmt.Fprintln(out, renderTable(out, []string{"Summary", ""}, rows, nil))

	var failures [][]string
	for _, outcome := range summary.Outcomes {
		if outcome.Status != organizer.StatusFailed {
			continue
		}
		failures = append(failures, []string{filepath.Base(outcome.Source), failureReason(outcome.Err)})
	}
	if len(failures) > 0 {
		fmt.Fprintln(out, renderTable(out, []string{"Failed file", "Reason"}, failures, nil))
	}
}

func failureReason(err error) string {
	if err == nil {
		return "unknown"
	}
	return err.Error()
}
