package api

import (
	"context"
	"fmt"
	"strings"

	"gleaner/internal/config"
	"gleaner/internal/ledger"
	"gleaner/internal/services"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// GrantQuery narrows and orders a grant listing. Zero values mean no filter.
type GrantQuery struct {
	Status        string
	MinConfidence *float64
	SourceType    string
	Jurisdiction  string
	Search        string
	Sort          string // confidence, discovered_at, name
	Ascending     bool
	Limit         int
	Offset        int
}

// GrantService exposes read and aggregate views over discovered grants for
// the admin surfaces (HTTP API and CLI).
type GrantService struct {
	store                *ledger.Store
	autoApproveThreshold float64
}

// NewGrantService builds the grant view service.
func NewGrantService(store *ledger.Store, cfg *config.Config) *GrantService {
	return &GrantService{
		store:                store,
		autoApproveThreshold: cfg.Discovery.AutoApproveThreshold,
	}
}

// List returns grant summaries matching the query.
func (s *GrantService) List(ctx context.Context, query GrantQuery) (*GrantListResponse, error) {
	filter, err := s.toFilter(query)
	if err != nil {
		return nil, err
	}

	grants, err := s.store.ListGrants(ctx, filter)
	if err != nil {
		return nil, err
	}

	total, err := s.store.CountGrants(ctx, filter)
	if err != nil {
		return nil, err
	}

	response := &GrantListResponse{Total: total, Grants: make([]GrantSummary, 0, len(grants))}
	for _, grant := range grants {
		response.Grants = append(response.Grants, FromGrant(grant, s.autoApproveThreshold))
	}
	return response, nil
}

// Describe returns the full projection of one grant.
func (s *GrantService) Describe(ctx context.Context, id string) (*GrantDetail, error) {
	grant, err := s.store.GetGrant(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := FromGrantDetail(grant, s.autoApproveThreshold)
	return &detail, nil
}

// Stats returns aggregate discovery counters.
func (s *GrantService) Stats(ctx context.Context) (*StatsResponse, error) {
	stats, err := s.store.GetStats(ctx)
	if err != nil {
		return nil, err
	}
	response := FromStats(stats)
	return &response, nil
}

func (s *GrantService) toFilter(query GrantQuery) (ledger.GrantFilter, error) {
	filter := ledger.GrantFilter{
		MinConfidence: query.MinConfidence,
		SourceType:    strings.TrimSpace(query.SourceType),
		Jurisdiction:  strings.TrimSpace(query.Jurisdiction),
		Search:        strings.TrimSpace(query.Search),
		SortAsc:       query.Ascending,
		Limit:         query.Limit,
		Offset:        query.Offset,
	}

	if status := strings.TrimSpace(query.Status); status != "" {
		parsed, ok := ledger.ParseReviewStatus(status)
		if !ok {
			return ledger.GrantFilter{}, services.Wrap(services.ErrValidation, "api", "list_grants",
				fmt.Sprintf("unknown review status %q", status), nil)
		}
		filter.Status = parsed
	}

	if query.MinConfidence != nil && (*query.MinConfidence < 0 || *query.MinConfidence > 1) {
		return ledger.GrantFilter{}, services.Wrap(services.ErrValidation, "api", "list_grants",
			"min confidence must be within [0, 1]", nil)
	}

	switch query.Sort {
	case "", "discovered_at", "confidence", "name":
		filter.SortBy = query.Sort
	default:
		return ledger.GrantFilter{}, services.Wrap(services.ErrValidation, "api", "list_grants",
			fmt.Sprintf("unknown sort field %q", query.Sort), nil)
	}

	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	return filter, nil
}

// RunService exposes read views over discovery runs.
type RunService struct {
	store *ledger.Store
}

// NewRunService builds the run view service.
func NewRunService(store *ledger.Store) *RunService {
	return &RunService{store: store}
}

// List returns run summaries, newest first, optionally filtered by status.
func (s *RunService) List(ctx context.Context, status string, limit int) (*RunListResponse, error) {
	var runStatus ledger.RunStatus
	if trimmed := strings.TrimSpace(status); trimmed != "" {
		parsed, ok := ledger.ParseRunStatus(trimmed)
		if !ok {
			return nil, services.Wrap(services.ErrValidation, "api", "list_runs",
				fmt.Sprintf("unknown run status %q", trimmed), nil)
		}
		runStatus = parsed
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	runs, err := s.store.ListRuns(ctx, runStatus, limit)
	if err != nil {
		return nil, err
	}
	response := &RunListResponse{Runs: make([]RunSummary, 0, len(runs))}
	for _, run := range runs {
		response.Runs = append(response.Runs, FromRun(run))
	}
	return response, nil
}

// Describe returns one run including its error log.
func (s *RunService) Describe(ctx context.Context, id string) (*RunDetail, error) {
	run, err := s.store.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := FromRunDetail(run)
	return &detail, nil
}
