package api

import "time"

// GrantSummary is the list-view projection of a discovered grant.
type GrantSummary struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	SourceType          string    `json:"source_type"`
	Jurisdiction        string    `json:"jurisdiction,omitempty"`
	Agency              string    `json:"agency,omitempty"`
	MaxBenefit          string    `json:"max_benefit,omitempty"`
	Deadline            string    `json:"deadline,omitempty"`
	ConfidenceScore     float64   `json:"confidence_score"`
	ConfidenceLabel     string    `json:"confidence_label"`
	AutoApproveEligible bool      `json:"auto_approve_eligible"`
	ReviewStatus        string    `json:"review_status"`
	DiscoveredAt        time.Time `json:"discovered_at"`
}

// GrantDetail is the full projection of a discovered grant.
type GrantDetail struct {
	GrantSummary
	SourceURL          string     `json:"source_url,omitempty"`
	SourceID           string     `json:"source_id,omitempty"`
	ProgramType        string     `json:"program_type,omitempty"`
	Phone              string     `json:"phone,omitempty"`
	Email              string     `json:"email,omitempty"`
	Website            string     `json:"website,omitempty"`
	EligibilitySummary string     `json:"eligibility_summary,omitempty"`
	ReviewedBy         string     `json:"reviewed_by,omitempty"`
	ReviewedAt         *time.Time `json:"reviewed_at,omitempty"`
	ReviewNotes        string     `json:"review_notes,omitempty"`
	MatchedProgramKey  string     `json:"matched_program_key,omitempty"`
	SimilarityScore    float64    `json:"similarity_score,omitempty"`
	CreatedProgramKey  string     `json:"created_program_key,omitempty"`
}

// RunErrorDetail is one structured entry from a run's error log.
type RunErrorDetail struct {
	Source string `json:"source,omitempty"`
	Stage  string `json:"stage,omitempty"`
	Error  string `json:"error"`
	Item   string `json:"item,omitempty"`
}

// RunSummary describes one discovery run.
type RunSummary struct {
	ID               string     `json:"id"`
	StartedAt        time.Time  `json:"started_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	Status           string     `json:"status"`
	SourcesChecked   int        `json:"sources_checked"`
	GrantsDiscovered int        `json:"grants_discovered"`
	DuplicatesFound  int        `json:"duplicates_found"`
	Errors           int        `json:"errors"`
}

// RunDetail adds the error log to a run summary.
type RunDetail struct {
	RunSummary
	ErrorLog []RunErrorDetail `json:"error_log,omitempty"`
}

// GrantListResponse wraps a grant listing.
type GrantListResponse struct {
	Grants []GrantSummary `json:"grants"`
	Total  int            `json:"total"`
}

// RunListResponse wraps a run listing.
type RunListResponse struct {
	Runs []RunSummary `json:"runs"`
}

// StatsResponse aggregates discovery activity.
type StatsResponse struct {
	TotalRuns         int        `json:"total_runs"`
	TotalDiscovered   int        `json:"total_discovered"`
	TotalDuplicates   int        `json:"total_duplicates"`
	PendingReview     int        `json:"pending_review"`
	Approved          int        `json:"approved"`
	Rejected          int        `json:"rejected"`
	MarkedDuplicate   int        `json:"marked_duplicate"`
	AverageConfidence float64    `json:"average_confidence"`
	LastRunAt         *time.Time `json:"last_run_at,omitempty"`
}

// TriggerRunRequest starts a discovery run over the named sources.
type TriggerRunRequest struct {
	Sources []string `json:"sources,omitempty"`
	Notify  bool     `json:"notify"`
}

// ApproveRequest carries a curator approval.
type ApproveRequest struct {
	ReviewedBy    string            `json:"reviewed_by"`
	Notes         string            `json:"notes,omitempty"`
	CreateProgram bool              `json:"create_program"`
	ProgramKey    string            `json:"program_key,omitempty"`
	Overrides     map[string]string `json:"overrides,omitempty"`
}

// RejectRequest carries a curator rejection. Reason is required.
type RejectRequest struct {
	ReviewedBy string `json:"reviewed_by"`
	Reason     string `json:"reason"`
}

// MarkDuplicateRequest points a grant at an existing catalog program.
type MarkDuplicateRequest struct {
	ProgramKey string `json:"program_key"`
	ReviewedBy string `json:"reviewed_by"`
	Notes      string `json:"notes,omitempty"`
}

// ReviewResponse reports the outcome of a review action.
type ReviewResponse struct {
	Message           string `json:"message"`
	CreatedProgramKey string `json:"created_program_key,omitempty"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}
