package catalog

import (
	"context"
	"errors"
	"testing"

	"gleaner/internal/ledger"
	"gleaner/internal/services"
	"gleaner/internal/testsupport"
)

func newTestCatalog(t *testing.T) *SQLiteStore {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store, err := ledger.Open(cfg)
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return NewSQLiteStore(store.DB())
}

func sampleEntry(key string) *Entry {
	return &Entry{
		ProgramKey:   key,
		Name:         "Home Heating Assistance",
		Agency:       "Onondaga County DSS",
		Jurisdiction: "Onondaga County",
		PriorityRank: 50.0,
		IsActive:     true,
	}
}

func TestCreateAndFindByKey(t *testing.T) {
	catalog := newTestCatalog(t)
	ctx := context.Background()

	entry := sampleEntry("home_heating_assistance")
	if err := catalog.Create(ctx, entry); err != nil {
		t.Fatalf("create: %v", err)
	}
	if entry.ID == "" {
		t.Error("expected generated id")
	}

	got, err := catalog.FindByKey(ctx, "home_heating_assistance")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Name != entry.Name || !got.IsActive {
		t.Errorf("unexpected entry: %+v", got)
	}
	if got.PriorityRank != 50.0 {
		t.Errorf("expected priority 50.0, got %f", got.PriorityRank)
	}
}

func TestCreateDuplicateKeyConflicts(t *testing.T) {
	catalog := newTestCatalog(t)
	ctx := context.Background()

	if err := catalog.Create(ctx, sampleEntry("dup_key")); err != nil {
		t.Fatalf("first create: %v", err)
	}
	err := catalog.Create(ctx, sampleEntry("dup_key"))
	if !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestFindByKeyNotFound(t *testing.T) {
	catalog := newTestCatalog(t)

	_, err := catalog.FindByKey(context.Background(), "missing")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListActiveExcludesInactive(t *testing.T) {
	catalog := newTestCatalog(t)
	ctx := context.Background()

	active := sampleEntry("active_program")
	inactive := sampleEntry("retired_program")
	inactive.IsActive = false
	for _, e := range []*Entry{active, inactive} {
		if err := catalog.Create(ctx, e); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	entries, err := catalog.ListActive(ctx)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(entries) != 1 || entries[0].ProgramKey != "active_program" {
		t.Fatalf("expected only active program, got %d entries", len(entries))
	}
}

func TestKeyExists(t *testing.T) {
	catalog := newTestCatalog(t)
	ctx := context.Background()

	inactive := sampleEntry("inactive_key")
	inactive.IsActive = false
	if err := catalog.Create(ctx, inactive); err != nil {
		t.Fatalf("create: %v", err)
	}

	exists, err := catalog.KeyExists(ctx, "inactive_key")
	if err != nil {
		t.Fatalf("key exists: %v", err)
	}
	if !exists {
		t.Error("expected inactive program key to count as taken")
	}

	exists, err = catalog.KeyExists(ctx, "never_used")
	if err != nil {
		t.Fatalf("key exists: %v", err)
	}
	if exists {
		t.Error("expected unused key to be free")
	}
}
