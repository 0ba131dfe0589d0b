package review

import (
	"context"
	"errors"
	"testing"
	"time"

	"gleaner/internal/catalog"
	"gleaner/internal/ledger"
	"gleaner/internal/logging"
	"gleaner/internal/services"
	"gleaner/internal/testsupport"
)

type harness struct {
	store   *ledger.Store
	catalog *catalog.SQLiteStore
}

func newTestService(t *testing.T) (*Service, *harness) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store, err := ledger.Open(cfg)
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	h := &harness{store: store, catalog: catalog.NewSQLiteStore(store.DB())}
	return NewService(store, h.catalog, logging.NewNop()), h
}

func seedGrant(t *testing.T, store *ledger.Store, id string) *ledger.Grant {
	t.Helper()
	grant := &ledger.Grant{
		ID:              id,
		SourceType:      "rss_feed",
		Name:            "Emergency Roof Repair Grant",
		Agency:          "Onondaga County DSS",
		Jurisdiction:    "Onondaga County",
		ProgramType:     "URGENT SAFETY",
		MaxBenefit:      "$7,500",
		Website:         "https://example.org/roof",
		ConfidenceScore: 0.82,
		DiscoveredAt:    time.Now().UTC(),
	}
	if err := store.InsertGrant(context.Background(), grant); err != nil {
		t.Fatalf("seed grant: %v", err)
	}
	return grant
}

func TestApproveCreatesProgram(t *testing.T) {
	svc, h := newTestService(t)
	ctx := context.Background()
	seedGrant(t, h.store, "grant-1")

	entry, err := svc.Approve(ctx, ApproveRequest{
		GrantID:       "grant-1",
		ReviewedBy:    "curator-a",
		CreateProgram: true,
	})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if entry == nil {
		t.Fatal("expected a created entry")
	}
	if entry.ProgramKey != "emergency_roof_repair_grant" {
		t.Errorf("unexpected key: %q", entry.ProgramKey)
	}
	if entry.PriorityRank != 50.0 {
		t.Errorf("expected neutral priority, got %f", entry.PriorityRank)
	}
	if !entry.IsActive {
		t.Error("expected created program to be active")
	}

	stored, err := h.catalog.FindByKey(ctx, "emergency_roof_repair_grant")
	if err != nil {
		t.Fatalf("find created program: %v", err)
	}
	if stored.Name != "Emergency Roof Repair Grant" {
		t.Errorf("unexpected program name: %q", stored.Name)
	}

	grant, err := h.store.GetGrant(ctx, "grant-1")
	if err != nil {
		t.Fatalf("get grant: %v", err)
	}
	if grant.ReviewStatus != ledger.ReviewApproved {
		t.Errorf("expected approved, got %s", grant.ReviewStatus)
	}
	if grant.CreatedProgramKey != "emergency_roof_repair_grant" {
		t.Errorf("expected created key recorded, got %q", grant.CreatedProgramKey)
	}
	if grant.ReviewedBy != "curator-a" {
		t.Errorf("expected reviewer stamped, got %q", grant.ReviewedBy)
	}
}

func TestApproveWithoutProgramCreation(t *testing.T) {
	svc, h := newTestService(t)
	ctx := context.Background()
	seedGrant(t, h.store, "grant-2")

	entry, err := svc.Approve(ctx, ApproveRequest{GrantID: "grant-2", ReviewedBy: "curator-a"})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if entry != nil {
		t.Fatalf("expected no entry, got %+v", entry)
	}

	grant, err := h.store.GetGrant(ctx, "grant-2")
	if err != nil {
		t.Fatalf("get grant: %v", err)
	}
	if grant.ReviewStatus != ledger.ReviewApproved || grant.CreatedProgramKey != "" {
		t.Errorf("unexpected grant state: %+v", grant)
	}
}

func TestApproveAppliesOverrides(t *testing.T) {
	svc, h := newTestService(t)
	ctx := context.Background()
	seedGrant(t, h.store, "grant-3")

	entry, err := svc.Approve(ctx, ApproveRequest{
		GrantID:       "grant-3",
		ReviewedBy:    "curator-a",
		CreateProgram: true,
		Overrides: Overrides{
			Name:       "Roof Repair Program",
			MaxBenefit: "$10,000",
		},
	})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if entry.Name != "Roof Repair Program" {
		t.Errorf("expected overridden name, got %q", entry.Name)
	}
	if entry.MaxBenefit != "$10,000" {
		t.Errorf("expected overridden benefit, got %q", entry.MaxBenefit)
	}
	if entry.ProgramKey != "roof_repair_program" {
		t.Errorf("expected key from overridden name, got %q", entry.ProgramKey)
	}
	if entry.Agency != "Onondaga County DSS" {
		t.Errorf("expected untouched field preserved, got %q", entry.Agency)
	}
}

func TestApprovePersistsOverridesOnGrant(t *testing.T) {
	svc, h := newTestService(t)
	ctx := context.Background()
	seedGrant(t, h.store, "grant-11")

	_, err := svc.Approve(ctx, ApproveRequest{
		GrantID:    "grant-11",
		ReviewedBy: "curator-a",
		Overrides: Overrides{
			Name:   "Corrected Program Name",
			Agency: "Corrected Agency",
		},
	})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}

	grant, err := h.store.GetGrant(ctx, "grant-11")
	if err != nil {
		t.Fatalf("get grant: %v", err)
	}
	if grant.Name != "Corrected Program Name" {
		t.Errorf("expected stored row to carry overridden name, got %q", grant.Name)
	}
	if grant.Agency != "Corrected Agency" {
		t.Errorf("expected stored row to carry overridden agency, got %q", grant.Agency)
	}
	if grant.MaxBenefit != "$7,500" {
		t.Errorf("expected untouched field preserved on row, got %q", grant.MaxBenefit)
	}
}

func TestApproveKeyCollisionGetsSuffix(t *testing.T) {
	svc, h := newTestService(t)
	ctx := context.Background()

	if err := h.catalog.Create(ctx, &catalog.Entry{
		ProgramKey: "emergency_roof_repair_grant",
		Name:       "Existing Program",
		IsActive:   true,
	}); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
	seedGrant(t, h.store, "grant-4")

	entry, err := svc.Approve(ctx, ApproveRequest{
		GrantID:       "grant-4",
		ReviewedBy:    "curator-a",
		CreateProgram: true,
	})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if entry.ProgramKey != "emergency_roof_repair_grant_2" {
		t.Errorf("expected suffixed key, got %q", entry.ProgramKey)
	}
}

func TestApproveCustomProgramKey(t *testing.T) {
	svc, h := newTestService(t)
	ctx := context.Background()
	seedGrant(t, h.store, "grant-5")

	entry, err := svc.Approve(ctx, ApproveRequest{
		GrantID:       "grant-5",
		ReviewedBy:    "curator-a",
		CreateProgram: true,
		ProgramKey:    "custom_key",
	})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if entry.ProgramKey != "custom_key" {
		t.Errorf("expected custom key, got %q", entry.ProgramKey)
	}
}

func TestSecondReviewConflicts(t *testing.T) {
	svc, h := newTestService(t)
	ctx := context.Background()
	seedGrant(t, h.store, "grant-6")

	if _, err := svc.Approve(ctx, ApproveRequest{GrantID: "grant-6", ReviewedBy: "curator-a"}); err != nil {
		t.Fatalf("approve: %v", err)
	}

	err := svc.Reject(ctx, "grant-6", "curator-b", "changed my mind")
	if !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	grant, err := h.store.GetGrant(ctx, "grant-6")
	if err != nil {
		t.Fatalf("get grant: %v", err)
	}
	if grant.ReviewStatus != ledger.ReviewApproved || grant.ReviewedBy != "curator-a" {
		t.Errorf("state must be unchanged after conflict: %+v", grant)
	}
}

func TestRejectRequiresReason(t *testing.T) {
	svc, h := newTestService(t)
	seedGrant(t, h.store, "grant-7")

	err := svc.Reject(context.Background(), "grant-7", "curator-a", "   ")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRejectStampsReviewer(t *testing.T) {
	svc, h := newTestService(t)
	ctx := context.Background()
	seedGrant(t, h.store, "grant-8")

	if err := svc.Reject(ctx, "grant-8", "curator-a", "not housing related"); err != nil {
		t.Fatalf("reject: %v", err)
	}

	grant, err := h.store.GetGrant(ctx, "grant-8")
	if err != nil {
		t.Fatalf("get grant: %v", err)
	}
	if grant.ReviewStatus != ledger.ReviewRejected {
		t.Errorf("expected rejected, got %s", grant.ReviewStatus)
	}
	if grant.ReviewNotes != "not housing related" {
		t.Errorf("expected reason in notes, got %q", grant.ReviewNotes)
	}
	if grant.ReviewedAt == nil {
		t.Error("expected reviewed_at stamped")
	}
}

func TestMarkDuplicateRequiresExistingKey(t *testing.T) {
	svc, h := newTestService(t)
	seedGrant(t, h.store, "grant-9")

	err := svc.MarkDuplicate(context.Background(), "grant-9", "no_such_program", "curator-a", "")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found for unknown key, got %v", err)
	}
}

func TestMarkDuplicateDefaultNotes(t *testing.T) {
	svc, h := newTestService(t)
	ctx := context.Background()

	if err := h.catalog.Create(ctx, &catalog.Entry{
		ProgramKey: "existing_program",
		Name:       "Existing Program",
		IsActive:   true,
	}); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
	seedGrant(t, h.store, "grant-10")

	if err := svc.MarkDuplicate(ctx, "grant-10", "existing_program", "curator-a", ""); err != nil {
		t.Fatalf("mark duplicate: %v", err)
	}

	grant, err := h.store.GetGrant(ctx, "grant-10")
	if err != nil {
		t.Fatalf("get grant: %v", err)
	}
	if grant.ReviewStatus != ledger.ReviewDuplicate {
		t.Errorf("expected duplicate, got %s", grant.ReviewStatus)
	}
	if grant.MatchedProgramKey != "existing_program" {
		t.Errorf("expected matched key, got %q", grant.MatchedProgramKey)
	}
	if grant.ReviewNotes != "Manually marked as duplicate of existing_program" {
		t.Errorf("unexpected default notes: %q", grant.ReviewNotes)
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"Emergency Roof Repair Grant", "emergency_roof_repair_grant"},
		{"Homeowner's \"Special\" Fund!", "homeowners_special_fund"},
		{"Crédit Rénovation", "credit_renovation"},
		{"  spaced   out  ", "spaced_out"},
	}
	for _, tc := range cases {
		if got := slugify(tc.name); got != tc.want {
			t.Errorf("slugify(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestSlugifyCapsLength(t *testing.T) {
	long := ""
	for i := 0; i < 30; i++ {
		long += "abcdef "
	}
	key := slugify(long)
	if len(key) > 100 {
		t.Errorf("expected key capped at 100 chars, got %d", len(key))
	}
}
