package main

import (
	"errors"
	"strconv"

	"github.com/spf13/cobra"

	"rawsort/internal/config"
)

const usageLine = "Usage: rawsort <source_directory> <destination_directory> [--convert-to-jpg <quality:0-100>]"

var errUsage = errors.New(usageLine)

type organizeFlags struct {
	convert  string
	dryRun   bool
	journal  bool
	logLevel string
}

func newRootCommand() *cobra.Command {
	var configFlag string
	var flags organizeFlags

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:           "rawsort <source_directory> <destination_directory>",
		Short:         "Sort camera raw files into date folders",
		Long:          "rawsort moves raw files from a source directory into YYYY-MM-DD folders under the destination, using each file's capture date, and can write a compressed JPEG preview beside every moved file.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				return errUsage
			}
			return nil
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrganize(cmd, ctx, flags, args[0], args[1], args[2:])
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Override logging.level (debug, info, warn, error)")

	rootCmd.Flags().StringVar(&flags.convert, "convert-to-jpg", "", "Write a compressed JPEG preview next to each moved file at the given quality (0-100, default 80)")
	rootCmd.Flags().Lookup("convert-to-jpg").NoOptDefVal = strconv.Itoa(int(config.DefaultQuality))
	rootCmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Report where files would go without moving anything")
	rootCmd.Flags().BoolVar(&flags.journal, "journal", false, "Record this run in the move journal (overrides journal.enabled)")

	rootCmd.AddCommand(newDepsCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newLogsCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
