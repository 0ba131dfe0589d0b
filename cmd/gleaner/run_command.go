package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gleaner/internal/discovery"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var sourceFlags []string
	var notify bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a discovery run",
		Long: "Fetches listings from the configured sources, extracts candidate grants,\n" +
			"scores them, and records anything new for curator review.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(svc *cliServices) error {
				run, err := svc.discovery.Run(cmd.Context(), discovery.RunOptions{
					Sources: sourceFlags,
					Notify:  notify,
				})
				if err != nil {
					return err
				}

				if jsonOutput {
					return writeJSON(cmd, run)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Run %s %s\n", run.ID, run.Status)
				fmt.Fprintf(out, "  Sources checked:   %d\n", run.SourcesChecked)
				fmt.Fprintf(out, "  Grants discovered: %d\n", run.GrantsDiscovered)
				fmt.Fprintf(out, "  Duplicates found:  %d\n", run.DuplicatesFound)
				if run.Errors > 0 {
					fmt.Fprintf(out, "  Errors:            %d (see `gleaner runs show %s`)\n", run.Errors, run.ID)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringArrayVar(&sourceFlags, "source", nil, "Limit the run to a source type (repeatable)")
	cmd.Flags().BoolVar(&notify, "notify", false, "Send a summary notification when grants are discovered")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the run record as JSON")
	return cmd
}
