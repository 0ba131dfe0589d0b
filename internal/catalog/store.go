package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gleaner/internal/services"
)

// SQLiteStore implements Service over the shared discovery database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps an open database handle. The handle is owned by the
// ledger store; the catalog never closes it.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const entryColumns = `id, program_key, name, jurisdiction, program_type,
	max_benefit, deadline, agency, phone, email, website,
	eligibility_summary, menu_category, priority_rank, is_active,
	created_at, updated_at`

func (s *SQLiteStore) ListActive(ctx context.Context) ([]*Entry, error) {
	query := fmt.Sprintf(`SELECT %s FROM programs WHERE is_active = 1 ORDER BY name COLLATE NOCASE`, entryColumns)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active programs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []*Entry
	for rows.Next() {
		entry, scanErr := scanEntry(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan program: %w", scanErr)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) FindByKey(ctx context.Context, programKey string) (*Entry, error) {
	query := fmt.Sprintf(`SELECT %s FROM programs WHERE program_key = ?`, entryColumns)
	entry, err := scanEntry(s.db.QueryRowContext(ctx, query, programKey))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "catalog", "find_by_key",
			fmt.Sprintf("program %s not found", programKey), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("find program %s: %w", programKey, err)
	}
	return entry, nil
}

func (s *SQLiteStore) KeyExists(ctx context.Context, programKey string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM programs WHERE program_key = ?", programKey).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check program key: %w", err)
	}
	return count > 0, nil
}

func (s *SQLiteStore) Create(ctx context.Context, entry *Entry) error {
	if entry.ProgramKey == "" {
		return services.Wrap(services.ErrValidation, "catalog", "create", "program key is required", nil)
	}
	if entry.Name == "" {
		return services.Wrap(services.ErrValidation, "catalog", "create", "program name is required", nil)
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now

	exists, err := s.KeyExists(ctx, entry.ProgramKey)
	if err != nil {
		return err
	}
	if exists {
		return services.Wrap(services.ErrConflict, "catalog", "create",
			fmt.Sprintf("program key %s already exists", entry.ProgramKey), nil)
	}

	active := 0
	if entry.IsActive {
		active = 1
	}
	_, err = s.db.ExecContext(ctx, fmt.Sprintf(
		`INSERT INTO programs (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entryColumns),
		entry.ID, entry.ProgramKey, entry.Name,
		nullable(entry.Jurisdiction), nullable(entry.ProgramType),
		nullable(entry.MaxBenefit), nullable(entry.Deadline),
		nullable(entry.Agency), nullable(entry.Phone), nullable(entry.Email),
		nullable(entry.Website), nullable(entry.EligibilitySummary),
		nullable(entry.MenuCategory), entry.PriorityRank, active,
		entry.CreatedAt.Format(time.RFC3339Nano), entry.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("create program: %w", err)
	}
	return nil
}

func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var (
		entry        Entry
		jurisdiction sql.NullString
		programType  sql.NullString
		maxBenefit   sql.NullString
		deadline     sql.NullString
		agency       sql.NullString
		phone        sql.NullString
		email        sql.NullString
		website      sql.NullString
		eligibility  sql.NullString
		menuCategory sql.NullString
		active       int
		createdAt    string
		updatedAt    string
	)

	err := row.Scan(
		&entry.ID, &entry.ProgramKey, &entry.Name, &jurisdiction, &programType,
		&maxBenefit, &deadline, &agency, &phone, &email, &website,
		&eligibility, &menuCategory, &entry.PriorityRank, &active,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	entry.Jurisdiction = jurisdiction.String
	entry.ProgramType = programType.String
	entry.MaxBenefit = maxBenefit.String
	entry.Deadline = deadline.String
	entry.Agency = agency.String
	entry.Phone = phone.String
	entry.Email = email.String
	entry.Website = website.String
	entry.EligibilitySummary = eligibility.String
	entry.MenuCategory = menuCategory.String
	entry.IsActive = active != 0
	entry.CreatedAt = parseTime(createdAt)
	entry.UpdatedAt = parseTime(updatedAt)

	return &entry, nil
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
