// Package catalog manages the published program directory that approved
// grants graduate into. Deduplication matches new candidates against a
// snapshot of the active entries taken at the start of each run.
package catalog

import (
	"context"
	"time"
)

// Entry is a published assistance program.
type Entry struct {
	ID                 string
	ProgramKey         string
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
	MenuCategory       string
	PriorityRank       float64
	IsActive           bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Service exposes the program directory operations the pipeline needs.
type Service interface {
	// ListActive returns every active program. Callers treat the result as
	// an immutable snapshot.
	ListActive(ctx context.Context) ([]*Entry, error)
	// FindByKey looks up a program by its unique key.
	FindByKey(ctx context.Context, programKey string) (*Entry, error)
	// KeyExists reports whether any program (active or not) holds the key.
	KeyExists(ctx context.Context, programKey string) (bool, error)
	// Create publishes a new program entry.
	Create(ctx context.Context, entry *Entry) error
}
