package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"rawsort/internal/journal"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List journaled organize runs, or the files moved by one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if _, err := os.Stat(cfg.Journal.Path); errors.Is(err, os.ErrNotExist) {
				fmt.Fprintf(out, "No journal at %s (enable journal.enabled or pass --journal when organizing)\n", cfg.Journal.Path)
				return nil
			}

			store, err := journal.Open(cfg.Journal.Path)
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			defer store.Close()

			if len(args) == 1 {
				return printRunMoves(cmd, out, store, args[0])
			}
			return printRuns(cmd, out, store, limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show (0 for all)")
	return cmd
}

func printRuns(cmd *cobra.Command, out io.Writer, store *journal.Store, limit int) error {
	runs, err := store.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded")
		return nil
	}
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortID(run.ID),
			humanize.Time(run.StartedAt),
			run.Source,
			run.Destination,
			strconv.Itoa(run.Moved),
			strconv.Itoa(run.Undated),
			strconv.Itoa(run.Failed),
			strconv.Itoa(run.Converted),
			humanize.Bytes(uint64(max(run.Bytes, 0))),
			runState(run),
		})
	}
	headers := []string{"Run", "Started", "Source", "Destination", "Moved", "Undated", "Failed", "Previews", "Size", "State"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft}
	fmt.Fprintln(out, renderTable(out, headers, rows, aligns))
	return nil
}

func printRunMoves(cmd *cobra.Command, out io.Writer, store *journal.Store, id string) error {
	run, err := store.GetRun(cmd.Context(), id)
	if err != nil {
		return err
	}
	moves, err := store.ListMoves(cmd.Context(), run.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Run %s (%s): %s -> %s\n", run.ID, runState(run), run.Source, run.Destination)
	if len(moves) == 0 {
		fmt.Fprintln(out, "No files moved")
		return nil
	}
	rows := make([][]string, 0, len(moves))
	for _, move := range moves {
		preview := "-"
		if move.Converted != "" {
			preview = filepath.Base(move.Converted)
		}
		rows = append(rows, []string{
			move.CaptureDate.Format("2006-01-02"),
			filepath.Base(move.Source),
			move.Destination,
			preview,
			humanize.Bytes(uint64(max(move.Bytes, 0))),
		})
	}
	aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight}
	fmt.Fprintln(out, renderTable(out, []string{"Date", "File", "Destination", "Preview", "Size"}, rows, aligns))
	return nil
}

func runState(run journal.Run) string {
	switch {
	case run.FinishedAt.IsZero():
		return "incomplete"
	case run.Canceled:
		return "interrupted"
	case run.Failed > 0:
		return "failures"
	default:
		return "ok"
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
