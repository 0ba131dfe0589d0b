package review

import (
	"context"
	"log/slog"
	"strings"

	"gleaner/internal/catalog"
	"gleaner/internal/ledger"
	"gleaner/internal/logging"
	"gleaner/internal/services"
)

// defaultPriorityRank is the neutral ranking assigned to newly approved
// programs; curators reorder later.
const defaultPriorityRank = 50.0

// Overrides carries curator-supplied field corrections applied to a grant
// before materialization. Empty fields keep the discovered value.
type Overrides struct {
	Name               string
	Jurisdiction       string
	ProgramType        string
	MaxBenefit         string
	Deadline           string
	Agency             string
	Phone              string
	Email              string
	Website            string
	EligibilitySummary string
}

// ApproveRequest describes one approval action.
type ApproveRequest struct {
	GrantID    string
	ReviewedBy string
	Notes      string
	Overrides  Overrides
	// CreateProgram materializes a catalog entry from the approved grant.
	CreateProgram bool
	// ProgramKey overrides the synthesized key when set.
	ProgramKey string
}

// Service implements the curator review state machine. Every transition
// requires the grant to still be pending; the first successful reviewer wins.
type Service struct {
	store   *ledger.Store
	catalog catalog.Service
	logger  *slog.Logger
}

// NewService wires the review workflow.
func NewService(store *ledger.Store, cat catalog.Service, logger *slog.Logger) *Service {
	return &Service{
		store:   store,
		catalog: cat,
		logger:  logging.WithComponent(logger, "review"),
	}
}

// Approve moves a pending grant to approved and, when requested, publishes a
// catalog entry built from the grant plus any overrides. The synthesized
// program key is recorded back on the grant.
func (s *Service) Approve(ctx context.Context, req ApproveRequest) (*catalog.Entry, error) {
	grant, err := s.store.GetGrant(ctx, req.GrantID)
	if err != nil {
		return nil, err
	}
	applyOverrides(grant, req.Overrides)
	if grant.Name == "" {
		return nil, services.Wrap(services.ErrValidation, "review", "approve",
			"grant has no name after overrides", nil)
	}

	var programKey string
	if req.CreateProgram {
		base := strings.TrimSpace(req.ProgramKey)
		if base == "" {
			base = slugify(grant.Name)
		}
		programKey, err = uniqueProgramKey(ctx, s.catalog, base)
		if err != nil {
			return nil, err
		}
	}

	transition := ledger.ReviewTransition{
		GrantID:           req.GrantID,
		Status:            ledger.ReviewApproved,
		ReviewedBy:        req.ReviewedBy,
		Notes:             req.Notes,
		CreatedProgramKey: programKey,
		Overrides:         req.Overrides.toTransition(),
	}
	if err := s.store.TransitionReview(ctx, transition); err != nil {
		return nil, err
	}

	if !req.CreateProgram {
		s.logger.Info("grant approved",
			logging.String("grant_id", req.GrantID),
			logging.String("name", grant.Name))
		return nil, nil
	}

	entry := entryFromGrant(grant, programKey)
	if err := s.catalog.Create(ctx, entry); err != nil {
		s.logger.Error("create program after approval",
			logging.String("grant_id", req.GrantID),
			logging.String("program_key", programKey),
			logging.Error(err))
		return nil, err
	}

	s.logger.Info("grant approved and program created",
		logging.String("grant_id", req.GrantID),
		logging.String("program_key", programKey))
	return entry, nil
}

// Reject moves a pending grant to rejected. A non-empty reason is required
// and is stored as the review notes.
func (s *Service) Reject(ctx context.Context, grantID, reviewedBy, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return services.Wrap(services.ErrValidation, "review", "reject",
			"a rejection reason is required", nil)
	}

	err := s.store.TransitionReview(ctx, ledger.ReviewTransition{
		GrantID:    grantID,
		Status:     ledger.ReviewRejected,
		ReviewedBy: reviewedBy,
		Notes:      reason,
	})
	if err != nil {
		return err
	}

	s.logger.Info("grant rejected",
		logging.String("grant_id", grantID),
		logging.String("reason", reason))
	return nil
}

// MarkDuplicate moves a pending grant to duplicate, pointing it at an
// existing catalog entry. The target key must exist.
func (s *Service) MarkDuplicate(ctx context.Context, grantID, programKey, reviewedBy, notes string) error {
	programKey = strings.TrimSpace(programKey)
	if programKey == "" {
		return services.Wrap(services.ErrValidation, "review", "mark_duplicate",
			"a target program key is required", nil)
	}
	if _, err := s.catalog.FindByKey(ctx, programKey); err != nil {
		return err
	}

	if strings.TrimSpace(notes) == "" {
		notes = "Manually marked as duplicate of " + programKey
	}

	err := s.store.TransitionReview(ctx, ledger.ReviewTransition{
		GrantID:           grantID,
		Status:            ledger.ReviewDuplicate,
		ReviewedBy:        reviewedBy,
		Notes:             notes,
		MatchedProgramKey: programKey,
	})
	if err != nil {
		return err
	}

	s.logger.Info("grant marked duplicate",
		logging.String("grant_id", grantID),
		logging.String("program_key", programKey))
	return nil
}

// toTransition converts the corrections into the form the store persists
// alongside the approval, so the audit row carries the approved values.
func (o Overrides) toTransition() ledger.GrantOverrides {
	trim := strings.TrimSpace
	return ledger.GrantOverrides{
		Name:               trim(o.Name),
		Jurisdiction:       trim(o.Jurisdiction),
		ProgramType:        trim(o.ProgramType),
		MaxBenefit:         trim(o.MaxBenefit),
		Deadline:           trim(o.Deadline),
		Agency:             trim(o.Agency),
		Phone:              trim(o.Phone),
		Email:              trim(o.Email),
		Website:            trim(o.Website),
		EligibilitySummary: trim(o.EligibilitySummary),
	}
}

func applyOverrides(grant *ledger.Grant, overrides Overrides) {
	set := func(target *string, value string) {
		if value = strings.TrimSpace(value); value != "" {
			*target = value
		}
	}
	set(&grant.Name, overrides.Name)
	set(&grant.Jurisdiction, overrides.Jurisdiction)
	set(&grant.ProgramType, overrides.ProgramType)
	set(&grant.MaxBenefit, overrides.MaxBenefit)
	set(&grant.Deadline, overrides.Deadline)
	set(&grant.Agency, overrides.Agency)
	set(&grant.Phone, overrides.Phone)
	set(&grant.Email, overrides.Email)
	set(&grant.Website, overrides.Website)
	set(&grant.EligibilitySummary, overrides.EligibilitySummary)
}

func entryFromGrant(grant *ledger.Grant, programKey string) *catalog.Entry {
	menuCategory := grant.ProgramType
	if menuCategory == "" {
		menuCategory = "GENERAL"
	}
	return &catalog.Entry{
		ProgramKey:         programKey,
		Name:               grant.Name,
		Jurisdiction:       grant.Jurisdiction,
		ProgramType:        grant.ProgramType,
		MaxBenefit:         grant.MaxBenefit,
		Deadline:           grant.Deadline,
		Agency:             grant.Agency,
		Phone:              grant.Phone,
		Email:              grant.Email,
		Website:            grant.Website,
		EligibilitySummary: grant.EligibilitySummary,
		MenuCategory:       menuCategory,
		PriorityRank:       defaultPriorityRank,
		IsActive:           true,
	}
}
