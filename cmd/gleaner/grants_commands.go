package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gleaner/internal/api"
)

func newGrantsCommand(ctx *commandContext) *cobra.Command {
	grantsCmd := &cobra.Command{
		Use:   "grants",
		Short: "Inspect and review discovered grants",
	}

	grantsCmd.AddCommand(newGrantsListCommand(ctx))
	grantsCmd.AddCommand(newGrantsShowCommand(ctx))
	grantsCmd.AddCommand(newGrantsHighConfidenceCommand(ctx))
	grantsCmd.AddCommand(newApproveCommand(ctx))
	grantsCmd.AddCommand(newRejectCommand(ctx))
	grantsCmd.AddCommand(newMarkDuplicateCommand(ctx))

	return grantsCmd
}

func newGrantsListCommand(ctx *commandContext) *cobra.Command {
	var status string
	var minConfidence float64
	var sourceType string
	var search string
	var sort string
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List discovered grants",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(svc *cliServices) error {
				query := api.GrantQuery{
					Status:     status,
					SourceType: sourceType,
					Search:     search,
					Sort:       sort,
					Limit:      limit,
				}
				if cmd.Flags().Changed("min-confidence") {
					query.MinConfidence = &minConfidence
				}
				response, err := svc.grants.List(cmd.Context(), query)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, response)
				}
				printGrantTable(cmd, response.Grants)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", "pending", "Filter by review status (pending, approved, rejected, duplicate)")
	cmd.Flags().Float64Var(&minConfidence, "min-confidence", 0, "Minimum confidence score")
	cmd.Flags().StringVar(&sourceType, "source", "", "Filter by source type")
	cmd.Flags().StringVar(&search, "search", "", "Substring match on name or agency")
	cmd.Flags().StringVar(&sort, "sort", "confidence", "Sort field (confidence, discovered_at, name)")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of grants to list")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the listing as JSON")
	return cmd
}

func printGrantTable(cmd *cobra.Command, grants []api.GrantSummary) {
	out := cmd.OutOrStdout()
	if len(grants) == 0 {
		fmt.Fprintln(out, "No grants matched")
		return
	}

	colorize := shouldColorize(out)
	rows := make([][]string, 0, len(grants))
	for _, grant := range grants {
		confidence := colorizeConfidence(formatConfidence(grant.ConfidenceScore), grant.ConfidenceLabel, colorize)
		rows = append(rows, []string{
			grant.ID,
			truncate(grant.Name, 48),
			grant.SourceType,
			confidence,
			formatOptional(grant.Deadline),
			grant.ReviewStatus,
		})
	}
	table := renderTable(
		[]string{"ID", "Name", "Source", "Confidence", "Deadline", "Status"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
	)
	fmt.Fprintln(out, table)
}

func newGrantsShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <grant-id>",
		Short: "Show one grant in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(svc *cliServices) error {
				detail, err := svc.grants.Describe(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, detail)
				}
				printGrantDetail(cmd, detail)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the grant as JSON")
	return cmd
}

func printGrantDetail(cmd *cobra.Command, detail *api.GrantDetail) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n", detail.Name)
	fmt.Fprintf(out, "  ID:            %s\n", detail.ID)
	fmt.Fprintf(out, "  Source:        %s\n", detail.SourceType)
	fmt.Fprintf(out, "  Confidence:    %s (%s)\n", formatConfidence(detail.ConfidenceScore), detail.ConfidenceLabel)
	fmt.Fprintf(out, "  Review status: %s\n", detail.ReviewStatus)
	fmt.Fprintf(out, "  Jurisdiction:  %s\n", formatOptional(detail.Jurisdiction))
	fmt.Fprintf(out, "  Program type:  %s\n", formatOptional(detail.ProgramType))
	fmt.Fprintf(out, "  Agency:        %s\n", formatOptional(detail.Agency))
	fmt.Fprintf(out, "  Max benefit:   %s\n", formatOptional(detail.MaxBenefit))
	fmt.Fprintf(out, "  Deadline:      %s\n", formatOptional(detail.Deadline))
	fmt.Fprintf(out, "  Phone:         %s\n", formatOptional(detail.Phone))
	fmt.Fprintf(out, "  Email:         %s\n", formatOptional(detail.Email))
	fmt.Fprintf(out, "  Website:       %s\n", formatOptional(detail.Website))
	fmt.Fprintf(out, "  Discovered:    %s\n", formatTimestamp(detail.DiscoveredAt))
	if detail.EligibilitySummary != "" {
		fmt.Fprintf(out, "  Eligibility:   %s\n", truncate(detail.EligibilitySummary, 200))
	}
	if detail.MatchedProgramKey != "" {
		fmt.Fprintf(out, "  Matched program: %s (similarity %.2f)\n", detail.MatchedProgramKey, detail.SimilarityScore)
	}
	if detail.CreatedProgramKey != "" {
		fmt.Fprintf(out, "  Created program: %s\n", detail.CreatedProgramKey)
	}
	if detail.ReviewedBy != "" {
		fmt.Fprintf(out, "  Reviewed by:   %s\n", detail.ReviewedBy)
	}
	if detail.ReviewNotes != "" {
		fmt.Fprintf(out, "  Review notes:  %s\n", detail.ReviewNotes)
	}
}

func newGrantsHighConfidenceCommand(ctx *commandContext) *cobra.Command {
	var minConfidence float64
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "high-confidence",
		Short: "List pending grants at or above the high-confidence threshold",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(svc *cliServices) error {
				grants, err := svc.discovery.HighConfidenceGrants(cmd.Context(), minConfidence)
				if err != nil {
					return err
				}
				summaries := make([]api.GrantSummary, 0, len(grants))
				for _, grant := range grants {
					summaries = append(summaries, api.FromGrant(grant, svc.cfg.Discovery.AutoApproveThreshold))
				}
				if jsonOutput {
					return writeJSON(cmd, api.GrantListResponse{Grants: summaries, Total: len(summaries)})
				}
				printGrantTable(cmd, summaries)
				return nil
			})
		},
	}

	cmd.Flags().Float64Var(&minConfidence, "min-confidence", 0, "Override the configured threshold")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the listing as JSON")
	return cmd
}
