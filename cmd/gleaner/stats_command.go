package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate discovery statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(svc *cliServices) error {
				stats, err := svc.grants.Stats(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, stats)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Total runs:         %d\n", stats.TotalRuns)
				fmt.Fprintf(out, "Grants discovered:  %d\n", stats.TotalDiscovered)
				fmt.Fprintf(out, "Duplicates flagged: %d\n", stats.TotalDuplicates)
				fmt.Fprintf(out, "Pending review:     %d\n", stats.PendingReview)
				fmt.Fprintf(out, "Approved:           %d\n", stats.Approved)
				fmt.Fprintf(out, "Rejected:           %d\n", stats.Rejected)
				fmt.Fprintf(out, "Marked duplicate:   %d\n", stats.MarkedDuplicate)
				fmt.Fprintf(out, "Avg confidence:     %s\n", formatConfidence(stats.AverageConfidence))
				if stats.LastRunAt != nil {
					fmt.Fprintf(out, "Last run:           %s\n", formatTimestamp(*stats.LastRunAt))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit statistics as JSON")
	return cmd
}
