package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"rawsort/internal/deps"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check the external tools rawsort uses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			statuses := deps.CheckBinaries(deps.Requirements(cfg))

			rows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				state := "ok"
				location := status.Path
				if !status.Available {
					state = "missing"
					if status.Optional {
						state = "missing (optional)"
					}
					location = status.Detail
				}
				rows = append(rows, []string{status.Name, status.Command, state, location, status.Description})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(out, []string{"Tool", "Command", "Status", "Location", "Purpose"}, rows, nil))
			fmt.Fprintf(out, "JPEG conversion enabled by default: %s\n", yesNo(cfg.Convert.Enabled))

			if missing := deps.MissingRequired(statuses); len(missing) > 0 {
				return fmt.Errorf("missing required tools: %s", strings.Join(missing, ", "))
			}
			return nil
		},
	}
}
