package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gleaner/internal/services"
)

// InsertGrant persists a newly discovered candidate. The caller supplies the
// ID and discovery metadata; review fields start at their defaults.
func (s *Store) InsertGrant(ctx context.Context, grant *Grant) error {
	ctx = ensureContext(ctx)
	if grant.ID == "" {
		return services.Wrap(services.ErrValidation, "ledger", "insert_grant", "grant id is required", nil)
	}
	if grant.Name == "" {
		return services.Wrap(services.ErrValidation, "ledger", "insert_grant", "grant name is required", nil)
	}
	if grant.DiscoveredAt.IsZero() {
		grant.DiscoveredAt = time.Now().UTC()
	}
	if grant.ReviewStatus == "" {
		grant.ReviewStatus = ReviewPending
	}

	query := fmt.Sprintf(`INSERT INTO discovered_grants (%s) VALUES (%s)`,
		grantColumns, makePlaceholders(24))

	var similarity any
	if grant.SimilarityScore > 0 {
		similarity = grant.SimilarityScore
	}

	_, err := s.execWithRetry(ctx, query,
		grant.ID, grant.SourceType, nullableString(grant.SourceURL),
		nullableString(grant.SourceID), grant.Name,
		nullableString(grant.Jurisdiction), nullableString(grant.ProgramType),
		nullableString(grant.MaxBenefit), nullableString(grant.Deadline),
		nullableString(grant.Agency), nullableString(grant.Phone),
		nullableString(grant.Email), nullableString(grant.Website),
		nullableString(grant.EligibilitySummary), nullableString(grant.RawPayload),
		formatTime(grant.DiscoveredAt), grant.ConfidenceScore,
		string(grant.ReviewStatus), nullableString(grant.ReviewedBy),
		nullableTime(grant.ReviewedAt), nullableString(grant.ReviewNotes),
		nullableString(grant.MatchedProgramKey), similarity,
		nullableString(grant.CreatedProgramKey),
	)
	if err != nil {
		return fmt.Errorf("insert grant: %w", err)
	}
	return nil
}

// GetGrant fetches a single discovered grant by ID.
func (s *Store) GetGrant(ctx context.Context, id string) (*Grant, error) {
	ctx = ensureContext(ctx)
	query := fmt.Sprintf(`SELECT %s FROM discovered_grants WHERE id = ?`, grantColumns)
	grant, err := scanGrant(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "ledger", "get_grant",
			fmt.Sprintf("grant %s not found", id), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("get grant %s: %w", id, err)
	}
	return grant, nil
}

// ListGrants returns grants matching the filter, newest first unless the
// filter requests another ordering.
func (s *Store) ListGrants(ctx context.Context, filter GrantFilter) ([]*Grant, error) {
	ctx = ensureContext(ctx)

	conditions, args := grantFilterConditions(filter)
	query := fmt.Sprintf(`SELECT %s FROM discovered_grants`, grantColumns)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY " + grantOrderClause(filter)
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list grants: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var grants []*Grant
	for rows.Next() {
		grant, scanErr := scanGrant(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan grant: %w", scanErr)
		}
		grants = append(grants, grant)
	}
	return grants, rows.Err()
}

func grantOrderClause(filter GrantFilter) string {
	direction := "DESC"
	if filter.SortAsc {
		direction = "ASC"
	}
	switch filter.SortBy {
	case "confidence":
		return "confidence_score " + direction + ", discovered_at DESC"
	case "name":
		return "name COLLATE NOCASE " + direction
	default:
		return "discovered_at " + direction
	}
}

// grantFilterConditions builds the WHERE fragment shared by listing and
// counting. Limit, offset, and ordering are ignored.
func grantFilterConditions(filter GrantFilter) ([]string, []any) {
	var (
		conditions []string
		args       []any
	)
	if filter.Status != "" {
		conditions = append(conditions, "review_status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.MinConfidence != nil {
		conditions = append(conditions, "confidence_score >= ?")
		args = append(args, *filter.MinConfidence)
	}
	if filter.SourceType != "" {
		conditions = append(conditions, "source_type = ?")
		args = append(args, filter.SourceType)
	}
	if filter.Jurisdiction != "" {
		conditions = append(conditions, "jurisdiction = ?")
		args = append(args, filter.Jurisdiction)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		conditions = append(conditions, "(name LIKE ? OR agency LIKE ?)")
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern)
	}
	return conditions, args
}

// CountGrants returns the number of grants matching the filter so paginated
// listings can report the total across all pages. Limit and offset are
// ignored.
func (s *Store) CountGrants(ctx context.Context, filter GrantFilter) (int, error) {
	ctx = ensureContext(ctx)

	conditions, args := grantFilterConditions(filter)
	query := "SELECT COUNT(1) FROM discovered_grants"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count grants: %w", err)
	}
	return count, nil
}

// GrantOverrides carries curator field corrections persisted together with
// an approval so the stored row reflects the values actually approved. Empty
// fields keep the discovered value.
type GrantOverrides struct {
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

// ReviewTransition captures the single allowed state change for a grant:
// from pending to exactly one terminal status.
type ReviewTransition struct {
	GrantID           string
	Status            ReviewStatus
	ReviewedBy        string
	Notes             string
	MatchedProgramKey string
	CreatedProgramKey string
	Overrides         GrantOverrides
}

// TransitionReview moves a pending grant to a terminal review status. The
// update is guarded on review_status so the first curator wins; a second
// attempt reports conflict, or not found when the grant does not exist.
func (s *Store) TransitionReview(ctx context.Context, transition ReviewTransition) error {
	ctx = ensureContext(ctx)
	if !transition.Status.IsTerminal() {
		return services.Wrap(services.ErrValidation, "ledger", "transition_review",
			fmt.Sprintf("status %s is not terminal", transition.Status), nil)
	}

	now := time.Now().UTC()
	overrides := transition.Overrides
	res, err := s.execWithRetry(ctx, `
		UPDATE discovered_grants
		SET review_status = ?,
		    reviewed_by = ?,
		    reviewed_at = ?,
		    review_notes = ?,
		    matched_program_key = COALESCE(?, matched_program_key),
		    created_program_key = COALESCE(?, created_program_key),
		    name = COALESCE(?, name),
		    jurisdiction = COALESCE(?, jurisdiction),
		    program_type = COALESCE(?, program_type),
		    max_benefit = COALESCE(?, max_benefit),
		    deadline = COALESCE(?, deadline),
		    agency = COALESCE(?, agency),
		    phone = COALESCE(?, phone),
		    email = COALESCE(?, email),
		    website = COALESCE(?, website),
		    eligibility_summary = COALESCE(?, eligibility_summary)
		WHERE id = ? AND review_status = ?`,
		string(transition.Status),
		nullableString(transition.ReviewedBy),
		formatTime(now),
		nullableString(transition.Notes),
		nullableString(transition.MatchedProgramKey),
		nullableString(transition.CreatedProgramKey),
		nullableString(overrides.Name),
		nullableString(overrides.Jurisdiction),
		nullableString(overrides.ProgramType),
		nullableString(overrides.MaxBenefit),
		nullableString(overrides.Deadline),
		nullableString(overrides.Agency),
		nullableString(overrides.Phone),
		nullableString(overrides.Email),
		nullableString(overrides.Website),
		nullableString(overrides.EligibilitySummary),
		transition.GrantID,
		string(ReviewPending),
	)
	if err != nil {
		return fmt.Errorf("transition review: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("transition review rows: %w", err)
	}
	if affected == 0 {
		existing, getErr := s.GetGrant(ctx, transition.GrantID)
		if getErr != nil {
			return getErr
		}
		return services.Wrap(services.ErrConflict, "ledger", "transition_review",
			fmt.Sprintf("grant %s already %s", transition.GrantID, existing.ReviewStatus), nil)
	}
	return nil
}
