package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gleaner/internal/review"
)

func newApproveCommand(ctx *commandContext) *cobra.Command {
	var reviewedBy string
	var notes string
	var createProgram bool
	var programKey string
	var overrides reviewOverrideFlags

	cmd := &cobra.Command{
		Use:   "approve <grant-id>",
		Short: "Approve a pending grant",
		Long: "Approves a pending grant. With --create-program the grant is published\n" +
			"to the program catalog under a generated (or supplied) program key.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(svc *cliServices) error {
				entry, err := svc.review.Approve(cmd.Context(), review.ApproveRequest{
					GrantID:       args[0],
					ReviewedBy:    reviewedBy,
					Notes:         notes,
					Overrides:     overrides.toOverrides(),
					CreateProgram: createProgram,
					ProgramKey:    programKey,
				})
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if entry != nil {
					fmt.Fprintf(out, "Grant approved; program %s created\n", entry.ProgramKey)
				} else {
					fmt.Fprintln(out, "Grant approved")
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&reviewedBy, "by", "", "Reviewer name recorded on the grant")
	cmd.Flags().StringVar(&notes, "notes", "", "Review notes")
	cmd.Flags().BoolVar(&createProgram, "create-program", false, "Publish a catalog program from the grant")
	cmd.Flags().StringVar(&programKey, "program-key", "", "Program key to use instead of the generated one")
	overrides.register(cmd)
	return cmd
}

func newRejectCommand(ctx *commandContext) *cobra.Command {
	var reviewedBy string
	var reason string

	cmd := &cobra.Command{
		Use:   "reject <grant-id>",
		Short: "Reject a pending grant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(svc *cliServices) error {
				if err := svc.review.Reject(cmd.Context(), args[0], reviewedBy, reason); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Grant rejected")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&reviewedBy, "by", "", "Reviewer name recorded on the grant")
	cmd.Flags().StringVar(&reason, "reason", "", "Rejection reason (required)")
	return cmd
}

func newMarkDuplicateCommand(ctx *commandContext) *cobra.Command {
	var reviewedBy string
	var notes string

	cmd := &cobra.Command{
		Use:   "mark-duplicate <grant-id> <program-key>",
		Short: "Mark a pending grant as a duplicate of an existing program",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(svc *cliServices) error {
				if err := svc.review.MarkDuplicate(cmd.Context(), args[0], args[1], reviewedBy, notes); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Grant marked as duplicate of %s\n", args[1])
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&reviewedBy, "by", "", "Reviewer name recorded on the grant")
	cmd.Flags().StringVar(&notes, "notes", "", "Review notes")
	return cmd
}

// reviewOverrideFlags holds the per-field correction flags for approve.
type reviewOverrideFlags struct {
	name         string
	jurisdiction string
	programType  string
	maxBenefit   string
	deadline     string
	agency       string
	phone        string
	email        string
	website      string
	eligibility  string
}

func (f *reviewOverrideFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "set-name", "", "Override the grant name")
	cmd.Flags().StringVar(&f.jurisdiction, "set-jurisdiction", "", "Override the jurisdiction")
	cmd.Flags().StringVar(&f.programType, "set-program-type", "", "Override the program type")
	cmd.Flags().StringVar(&f.maxBenefit, "set-max-benefit", "", "Override the benefit amount")
	cmd.Flags().StringVar(&f.deadline, "set-deadline", "", "Override the deadline")
	cmd.Flags().StringVar(&f.agency, "set-agency", "", "Override the agency")
	cmd.Flags().StringVar(&f.phone, "set-phone", "", "Override the phone number")
	cmd.Flags().StringVar(&f.email, "set-email", "", "Override the email address")
	cmd.Flags().StringVar(&f.website, "set-website", "", "Override the website")
	cmd.Flags().StringVar(&f.eligibility, "set-eligibility", "", "Override the eligibility summary")
}

func (f *reviewOverrideFlags) toOverrides() review.Overrides {
	return review.Overrides{
		Name:               f.name,
		Jurisdiction:       f.jurisdiction,
		ProgramType:        f.programType,
		MaxBenefit:         f.maxBenefit,
		Deadline:           f.deadline,
		Agency:             f.agency,
		Phone:              f.phone,
		Email:              f.email,
		Website:            f.website,
		EligibilitySummary: f.eligibility,
	}
}
