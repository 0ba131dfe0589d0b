package ledger

import (
	"strings"
	"time"
)

// ReviewStatus represents the review lifecycle of a discovered grant.
// Transitions are one-way: pending moves to exactly one terminal status and
// terminal rows are never revisited automatically.
type ReviewStatus string

const (
	ReviewPending   ReviewStatus = "pending"
	ReviewApproved  ReviewStatus = "approved"
	ReviewRejected  ReviewStatus = "rejected"
	ReviewDuplicate ReviewStatus = "duplicate"
)

var allReviewStatuses = []ReviewStatus{
	ReviewPending,
	ReviewApproved,
	ReviewRejected,
	ReviewDuplicate,
}

var reviewStatusSet = func() map[ReviewStatus]struct{} {
	set := make(map[ReviewStatus]struct{}, len(allReviewStatuses))
	for _, status := range allReviewStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllReviewStatuses returns the ordered list of known review statuses.
func AllReviewStatuses() []ReviewStatus {
	cp := make([]ReviewStatus, len(allReviewStatuses))
	copy(cp, allReviewStatuses)
	return cp
}

// ParseReviewStatus converts a string into a known ReviewStatus.
func ParseReviewStatus(value string) (ReviewStatus, bool) {
	normalized := ReviewStatus(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := reviewStatusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a review status is final.
func (s ReviewStatus) IsTerminal() bool {
	switch s {
	case ReviewApproved, ReviewRejected, ReviewDuplicate:
		return true
	default:
		return false
	}
}

// RunStatus represents the lifecycle of a discovery run.
type RunStatus string

const (
	RunRunning             RunStatus = "running"
	RunCompleted           RunStatus = "completed"
	RunCompletedWithErrors RunStatus = "completed_with_errors"
	RunFailed              RunStatus = "failed"
)

var runStatusSet = map[RunStatus]struct{}{
	RunRunning:             {},
	RunCompleted:           {},
	RunCompletedWithErrors: {},
	RunFailed:              {},
}

// ParseRunStatus converts a string into a known RunStatus.
func ParseRunStatus(value string) (RunStatus, bool) {
	normalized := RunStatus(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := runStatusSet[normalized]
	return normalized, ok
}

// Grant is a discovered candidate persisted for curator review. Rows are
// kept forever as an audit trail, including duplicates and rejections.
type Grant struct {
	ID                 string
	SourceType         string
	SourceURL          string
	SourceID           string
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
	RawPayload         string
	DiscoveredAt       time.Time
	ConfidenceScore    float64
	ReviewStatus       ReviewStatus
	ReviewedBy         string
	ReviewedAt         *time.Time
	ReviewNotes        string
	MatchedProgramKey  string
	SimilarityScore    float64
	CreatedProgramKey  string
}

// RunError is one structured entry in a run's error log.
type RunError struct {
	Source string `json:"source,omitempty"`
	Stage  string `json:"stage,omitempty"`
	Error  string `json:"error"`
	Item   string `json:"item,omitempty"`
}

// Run records one discovery pipeline execution. Counters increase
// monotonically while the run is in flight and freeze at completion.
type Run struct {
	ID               string
	StartedAt        time.Time
	CompletedAt      *time.Time
	Status           RunStatus
	SourcesChecked   int
	GrantsDiscovered int
	DuplicatesFound  int
	Errors           int
	ErrorLog         []RunError
}

// GrantFilter narrows ListGrants results.
type GrantFilter struct {
	Status        ReviewStatus
	MinConfidence *float64
	SourceType    string
	Jurisdiction  string
	Search        string
	SortBy        string // confidence, discovered_at, name
	SortAsc       bool
	Limit         int
	Offset        int
}

// Stats aggregates discovery activity for the admin surface.
type Stats struct {
	TotalRuns         int
	TotalDiscovered   int
	TotalDuplicates   int
	PendingReview     int
	Approved          int
	Rejected          int
	MarkedDuplicate   int
	AverageConfidence float64
	LastRunAt         *time.Time
}
