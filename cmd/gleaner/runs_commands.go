package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect past discovery runs",
	}

	runsCmd.AddCommand(newRunsListCommand(ctx))
	runsCmd.AddCommand(newRunsShowCommand(ctx))

	return runsCmd
}

func newRunsListCommand(ctx *commandContext) *cobra.Command {
	var status string
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(svc *cliServices) error {
				response, err := svc.runs.List(cmd.Context(), status, limit)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, response)
				}
				if len(response.Runs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No discovery runs recorded")
					return nil
				}

				rows := make([][]string, 0, len(response.Runs))
				for _, run := range response.Runs {
					rows = append(rows, []string{
						run.ID,
						formatTimestamp(run.StartedAt),
						run.Status,
						strconv.Itoa(run.SourcesChecked),
						strconv.Itoa(run.GrantsDiscovered),
						strconv.Itoa(run.DuplicatesFound),
						strconv.Itoa(run.Errors),
					})
				}
				table := renderTable(
					[]string{"ID", "Started", "Status", "Sources", "Discovered", "Duplicates", "Errors"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by run status (running, completed, completed_with_errors, failed)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the listing as JSON")
	return cmd
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one run including its error log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(svc *cliServices) error {
				detail, err := svc.runs.Describe(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, detail)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Run %s\n", detail.ID)
				fmt.Fprintf(out, "  Status:            %s\n", detail.Status)
				fmt.Fprintf(out, "  Started:           %s\n", formatTimestamp(detail.StartedAt))
				if detail.CompletedAt != nil {
					fmt.Fprintf(out, "  Completed:         %s\n", formatTimestamp(*detail.CompletedAt))
				}
				fmt.Fprintf(out, "  Sources checked:   %d\n", detail.SourcesChecked)
				fmt.Fprintf(out, "  Grants discovered: %d\n", detail.GrantsDiscovered)
				fmt.Fprintf(out, "  Duplicates found:  %d\n", detail.DuplicatesFound)
				fmt.Fprintf(out, "  Errors:            %d\n", detail.Errors)
				for _, entry := range detail.ErrorLog {
					fmt.Fprintf(out, "    [%s/%s] %s\n", formatOptional(entry.Source), formatOptional(entry.Stage), entry.Error)
					if entry.Item != "" {
						fmt.Fprintf(out, "      item: %s\n", entry.Item)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the run as JSON")
	return cmd
}
