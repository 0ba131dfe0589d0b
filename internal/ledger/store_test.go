package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"gleaner/internal/services"
	"gleaner/internal/testsupport"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store, err := Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleGrant(id string) *Grant {
	return &Grant{
		ID:              id,
		SourceType:      "rss_feed",
		SourceURL:       "https://example.org/grants/" + id,
		Name:            "Emergency Roof Repair Grant",
		Agency:          "Onondaga County DSS",
		Jurisdiction:    "Onondaga County",
		MaxBenefit:      "$7,500",
		ConfidenceScore: 0.75,
		DiscoveredAt:    time.Now().UTC(),
	}
}

func TestInsertAndGetGrant(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	grant := sampleGrant("grant-1")
	if err := store.InsertGrant(ctx, grant); err != nil {
		t.Fatalf("insert grant: %v", err)
	}

	got, err := store.GetGrant(ctx, "grant-1")
	if err != nil {
		t.Fatalf("get grant: %v", err)
	}
	if got.Name != grant.Name {
		t.Errorf("expected name %q, got %q", grant.Name, got.Name)
	}
	if got.ReviewStatus != ReviewPending {
		t.Errorf("expected pending status, got %s", got.ReviewStatus)
	}
	if got.ConfidenceScore != 0.75 {
		t.Errorf("expected confidence 0.75, got %f", got.ConfidenceScore)
	}
}

func TestGetGrantNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetGrant(context.Background(), "missing")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestInsertGrantRequiresName(t *testing.T) {
	store := newTestStore(t)

	grant := sampleGrant("grant-noname")
	grant.Name = ""
	err := store.InsertGrant(context.Background(), grant)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListGrantsFilters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	high := sampleGrant("grant-high")
	high.ConfidenceScore = 0.92
	low := sampleGrant("grant-low")
	low.ConfidenceScore = 0.3
	low.SourceType = "web_scrape"
	for _, g := range []*Grant{high, low} {
		if err := store.InsertGrant(ctx, g); err != nil {
			t.Fatalf("insert grant: %v", err)
		}
	}

	minConf := 0.8
	grants, err := store.ListGrants(ctx, GrantFilter{MinConfidence: &minConf})
	if err != nil {
		t.Fatalf("list grants: %v", err)
	}
	if len(grants) != 1 || grants[0].ID != "grant-high" {
		t.Fatalf("expected only grant-high, got %d grants", len(grants))
	}

	grants, err = store.ListGrants(ctx, GrantFilter{SourceType: "web_scrape"})
	if err != nil {
		t.Fatalf("list grants by source: %v", err)
	}
	if len(grants) != 1 || grants[0].ID != "grant-low" {
		t.Fatalf("expected only grant-low, got %d grants", len(grants))
	}
}

func TestListGrantsSortByConfidence(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i, score := range []float64{0.2, 0.9, 0.5} {
		grant := sampleGrant(string(rune('a' + i)))
		grant.ConfidenceScore = score
		if err := store.InsertGrant(ctx, grant); err != nil {
			t.Fatalf("insert grant: %v", err)
		}
	}

	grants, err := store.ListGrants(ctx, GrantFilter{SortBy: "confidence"})
	if err != nil {
		t.Fatalf("list grants: %v", err)
	}
	if len(grants) != 3 {
		t.Fatalf("expected 3 grants, got %d", len(grants))
	}
	if grants[0].ConfidenceScore != 0.9 || grants[2].ConfidenceScore != 0.2 {
		t.Fatalf("expected descending confidence order, got %f, %f, %f",
			grants[0].ConfidenceScore, grants[1].ConfidenceScore, grants[2].ConfidenceScore)
	}
}

func TestTransitionReviewFirstWriterWins(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	grant := sampleGrant("grant-review")
	if err := store.InsertGrant(ctx, grant); err != nil {
		t.Fatalf("insert grant: %v", err)
	}

	first := ReviewTransition{
		GrantID:           "grant-review",
		Status:            ReviewApproved,
		ReviewedBy:        "curator-a",
		CreatedProgramKey: "emergency_roof_repair_grant",
	}
	if err := store.TransitionReview(ctx, first); err != nil {
		t.Fatalf("first transition: %v", err)
	}

	second := ReviewTransition{
		GrantID:    "grant-review",
		Status:     ReviewRejected,
		ReviewedBy: "curator-b",
		Notes:      "not relevant",
	}
	err := store.TransitionReview(ctx, second)
	if !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	got, err := store.GetGrant(ctx, "grant-review")
	if err != nil {
		t.Fatalf("get grant: %v", err)
	}
	if got.ReviewStatus != ReviewApproved {
		t.Errorf("expected approved, got %s", got.ReviewStatus)
	}
	if got.ReviewedBy != "curator-a" {
		t.Errorf("expected curator-a, got %q", got.ReviewedBy)
	}
	if got.CreatedProgramKey != "emergency_roof_repair_grant" {
		t.Errorf("expected created key recorded, got %q", got.CreatedProgramKey)
	}
	if got.ReviewedAt == nil {
		t.Error("expected reviewed_at to be set")
	}
}

func TestTransitionReviewMissingGrant(t *testing.T) {
	store := newTestStore(t)

	err := store.TransitionReview(context.Background(), ReviewTransition{
		GrantID: "missing",
		Status:  ReviewRejected,
	})
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTransitionReviewRejectsNonTerminal(t *testing.T) {
	store := newTestStore(t)

	err := store.TransitionReview(context.Background(), ReviewTransition{
		GrantID: "any",
		Status:  ReviewPending,
	})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRunLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	run := &Run{
		ID:        "run-1",
		StartedAt: time.Now().UTC(),
		Status:    RunRunning,
	}
	if err := store.InsertRun(ctx, run); err != nil {
		t.Fatalf("insert run: %v", err)
	}

	completed := time.Now().UTC()
	run.CompletedAt = &completed
	run.Status = RunCompletedWithErrors
	run.SourcesChecked = 2
	run.GrantsDiscovered = 3
	run.Errors = 1
	run.ErrorLog = []RunError{{Source: "rss_feed", Stage: "fetch", Error: "timeout"}}
	if err := store.UpdateRun(ctx, run); err != nil {
		t.Fatalf("update run: %v", err)
	}

	got, err := store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if got.Status != RunCompletedWithErrors {
		t.Errorf("expected completed_with_errors, got %s", got.Status)
	}
	if got.GrantsDiscovered != 3 || got.SourcesChecked != 2 {
		t.Errorf("unexpected counters: %+v", got)
	}
	if len(got.ErrorLog) != 1 || got.ErrorLog[0].Error != "timeout" {
		t.Errorf("unexpected error log: %+v", got.ErrorLog)
	}
	if got.CompletedAt == nil {
		t.Error("expected completed_at to round-trip")
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 3; i++ {
		run := &Run{
			ID:        string(rune('a' + i)),
			StartedAt: base.Add(time.Duration(i) * time.Minute),
			Status:    RunCompleted,
		}
		if err := store.InsertRun(ctx, run); err != nil {
			t.Fatalf("insert run: %v", err)
		}
	}

	runs, err := store.ListRuns(ctx, "", 2)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != "c" || runs[1].ID != "b" {
		t.Fatalf("expected newest first, got %s then %s", runs[0].ID, runs[1].ID)
	}
}

func TestListRunsStatusFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for id, status := range map[string]RunStatus{
		"r-done":   RunCompleted,
		"r-failed": RunFailed,
	} {
		run := &Run{ID: id, StartedAt: time.Now().UTC(), Status: status}
		if err := store.InsertRun(ctx, run); err != nil {
			t.Fatalf("insert run: %v", err)
		}
	}

	runs, err := store.ListRuns(ctx, RunFailed, 0)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != "r-failed" {
		t.Fatalf("unexpected filtered runs: %+v", runs)
	}
}

func TestGetStats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	approved := sampleGrant("g-approved")
	pending := sampleGrant("g-pending")
	for _, g := range []*Grant{approved, pending} {
		if err := store.InsertGrant(ctx, g); err != nil {
			t.Fatalf("insert grant: %v", err)
		}
	}
	if err := store.TransitionReview(ctx, ReviewTransition{
		GrantID: "g-approved", Status: ReviewApproved,
	}); err != nil {
		t.Fatalf("approve: %v", err)
	}

	run := &Run{ID: "run-stats", StartedAt: time.Now().UTC(), Status: RunCompleted,
		GrantsDiscovered: 2, DuplicatesFound: 1}
	if err := store.InsertRun(ctx, run); err != nil {
		t.Fatalf("insert run: %v", err)
	}

	stats, err := store.GetStats(ctx)
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}
	if stats.TotalRuns != 1 || stats.TotalDiscovered != 2 || stats.TotalDuplicates != 1 {
		t.Errorf("unexpected run aggregates: %+v", stats)
	}
	if stats.PendingReview != 1 || stats.Approved != 1 {
		t.Errorf("unexpected review counts: %+v", stats)
	}
	if stats.LastRunAt == nil {
		t.Error("expected last run timestamp")
	}
}

func TestSchemaVersionPersists(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := Open(cfg)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	_ = reopened.Close()
}
