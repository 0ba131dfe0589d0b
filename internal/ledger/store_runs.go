package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gleaner/internal/services"
)

// InsertRun records the start of a discovery run.
func (s *Store) InsertRun(ctx context.Context, run *Run) error {
	ctx = ensureContext(ctx)
	if run.ID == "" {
		return services.Wrap(services.ErrValidation, "ledger", "insert_run", "run id is required", nil)
	}
	if run.Status == "" {
		run.Status = RunRunning
	}

	query := fmt.Sprintf(`INSERT INTO discovery_runs (%s) VALUES (%s)`,
		runColumns, makePlaceholders(9))
	_, err := s.execWithRetry(ctx, query,
		run.ID, formatTime(run.StartedAt), nullableTime(run.CompletedAt),
		string(run.Status), run.SourcesChecked, run.GrantsDiscovered,
		run.DuplicatesFound, run.Errors, encodeErrorLog(run.ErrorLog),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// UpdateRun writes the current counters and status of a run back to the
// database. The orchestrator calls this after each source commit and at
// completion so progress survives a crash.
func (s *Store) UpdateRun(ctx context.Context, run *Run) error {
	ctx = ensureContext(ctx)
	res, err := s.execWithRetry(ctx, `
		UPDATE discovery_runs
		SET completed_at = ?,
		    status = ?,
		    sources_checked = ?,
		    grants_discovered = ?,
		    duplicates_found = ?,
		    errors = ?,
		    error_log = ?
		WHERE id = ?`,
		nullableTime(run.CompletedAt), string(run.Status),
		run.SourcesChecked, run.GrantsDiscovered, run.DuplicatesFound,
		run.Errors, encodeErrorLog(run.ErrorLog), run.ID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update run rows: %w", err)
	}
	if affected == 0 {
		return services.Wrap(services.ErrNotFound, "ledger", "update_run",
			fmt.Sprintf("run %s not found", run.ID), nil)
	}
	return nil
}

// GetRun fetches a single run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	ctx = ensureContext(ctx)
	query := fmt.Sprintf(`SELECT %s FROM discovery_runs WHERE id = ?`, runColumns)
	run, err := scanRun(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "ledger", "get_run",
			fmt.Sprintf("run %s not found", id), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	return run, nil
}

// ListRuns returns runs newest first, up to limit (or all when limit <= 0).
// An empty status matches every run.
func (s *Store) ListRuns(ctx context.Context, status RunStatus, limit int) ([]*Run, error) {
	ctx = ensureContext(ctx)
	query := fmt.Sprintf(`SELECT %s FROM discovery_runs`, runColumns)
	var args []any
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, string(status))
	}
	query += " ORDER BY started_at DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*Run
	for rows.Next() {
		run, scanErr := scanRun(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan run: %w", scanErr)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
