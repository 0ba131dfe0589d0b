package ledger

import (
	"context"
	"database/sql"
	"fmt"
)

// GetStats aggregates discovery activity across runs and grants.
func (s *Store) GetStats(ctx context.Context) (*Stats, error) {
	ctx = ensureContext(ctx)
	stats := &Stats{}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(1),
		       COALESCE(SUM(grants_discovered), 0),
		       COALESCE(SUM(duplicates_found), 0)
		FROM discovery_runs`,
	).Scan(&stats.TotalRuns, &stats.TotalDiscovered, &stats.TotalDuplicates)
	if err != nil {
		return nil, fmt.Errorf("run stats: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT review_status, COUNT(1)
		FROM discovered_grants
		GROUP BY review_status`)
	if err != nil {
		return nil, fmt.Errorf("grant stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			status string
			count  int
		)
		if scanErr := rows.Scan(&status, &count); scanErr != nil {
			return nil, fmt.Errorf("scan grant stats: %w", scanErr)
		}
		switch ReviewStatus(status) {
		case ReviewPending:
			stats.PendingReview = count
		case ReviewApproved:
			stats.Approved = count
		case ReviewRejected:
			stats.Rejected = count
		case ReviewDuplicate:
			stats.MarkedDuplicate = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("grant stats rows: %w", err)
	}

	var avg sql.NullFloat64
	err = s.db.QueryRowContext(ctx,
		"SELECT AVG(confidence_score) FROM discovered_grants").Scan(&avg)
	if err != nil {
		return nil, fmt.Errorf("average confidence: %w", err)
	}
	stats.AverageConfidence = avg.Float64

	var lastRun sql.NullString
	err = s.db.QueryRowContext(ctx,
		"SELECT MAX(started_at) FROM discovery_runs").Scan(&lastRun)
	if err != nil {
		return nil, fmt.Errorf("last run: %w", err)
	}
	stats.LastRunAt = parseTimePtr(lastRun)

	return stats, nil
}
