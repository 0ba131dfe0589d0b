package dedup

import (
	"testing"

	"gleaner/internal/catalog"
	"gleaner/internal/discovery/extract"
)

func entry(key, name, website, agency, phone, email string) *catalog.Entry {
	return &catalog.Entry{
		ProgramKey: key,
		Name:       name,
		Website:    website,
		Agency:     agency,
		Phone:      phone,
		Email:      email,
		IsActive:   true,
	}
}

func TestURLTierWinsRegardlessOfWordOrder(t *testing.T) {
	candidate := &extract.Candidate{
		Name:    "Syracuse Roof Grant",
		Website: "https://x.org/grant",
	}
	entries := []*catalog.Entry{
		entry("roof_grant", "Roof Grant Syracuse", "https://x.org/grant", "", "", ""),
	}

	match := FindDuplicate(candidate, entries)
	if match.Entry == nil || match.Similarity != 1.0 {
		t.Fatalf("expected URL match with similarity 1.0, got %+v", match)
	}
	if !match.IsDuplicate() {
		t.Error("expected duplicate classification")
	}
}

func TestURLTierCaseInsensitiveTrimmed(t *testing.T) {
	candidate := &extract.Candidate{
		Name:    "Some Grant",
		Website: "  HTTPS://X.ORG/GRANT  ",
	}
	entries := []*catalog.Entry{
		entry("g", "Completely Different Name", "https://x.org/grant", "", "", ""),
	}

	match := FindDuplicate(candidate, entries)
	if match.Similarity != 1.0 {
		t.Fatalf("expected 1.0, got %f", match.Similarity)
	}
}

func TestURLTierBeatsHigherNameScore(t *testing.T) {
	candidate := &extract.Candidate{
		Name:    "Home Heating Assistance",
		Website: "https://x.org/heating",
	}
	// The name-tier entry is an exact name match, but the URL tier must win
	// with the other entry because tier order is fixed.
	entries := []*catalog.Entry{
		entry("exact_name", "Home Heating Assistance", "https://other.org/page", "", "", ""),
		entry("url_match", "Totally Unrelated Listing", "https://x.org/heating", "", "", ""),
	}

	match := FindDuplicate(candidate, entries)
	if match.Entry == nil || match.Entry.ProgramKey != "url_match" {
		t.Fatalf("expected URL tier to win, got %+v", match.Entry)
	}
	if match.Similarity != 1.0 {
		t.Errorf("expected 1.0, got %f", match.Similarity)
	}
}

func TestNameTierWithAgencyCorroboration(t *testing.T) {
	candidate := &extract.Candidate{
		Name:   "Home Heating Assistance",
		Agency: "County Dept. of Social Services",
	}
	entries := []*catalog.Entry{
		entry("heating", "Heating Assistance Program Home", "", "County Dept. of Social Service", "", ""),
	}

	match := FindDuplicate(candidate, entries)
	if match.Entry == nil {
		t.Fatal("expected a name-tier match")
	}
	if !match.IsDuplicate() {
		t.Errorf("expected combined score >= 0.85, got %f", match.Similarity)
	}
}

func TestNameTierAgencyMismatchRejected(t *testing.T) {
	candidate := &extract.Candidate{
		Name:   "Home Heating Assistance",
		Agency: "Salvation Army",
	}
	entries := []*catalog.Entry{
		entry("heating", "Home Heating Assistance", "", "Department of Veterans Affairs", "", ""),
	}

	match := FindDuplicate(candidate, entries)
	if match.Entry != nil {
		t.Fatalf("expected no match with dissimilar agencies, got %+v", match.Entry)
	}
}

func TestNameTierWithoutAgencyAcceptsNameAlone(t *testing.T) {
	candidate := &extract.Candidate{Name: "Lead Paint Removal Program"}
	entries := []*catalog.Entry{
		entry("lead", "Program Lead Paint Removal", "", "", "", ""),
	}

	match := FindDuplicate(candidate, entries)
	if match.Entry == nil || match.Similarity < Threshold {
		t.Fatalf("expected name-only match, got %+v", match)
	}
}

func TestContactTierPhoneCorroboration(t *testing.T) {
	// "Heating Aid" vs "Heating Fund" is similar enough to corroborate a
	// shared phone number but too weak for the name tier on its own.
	candidate := &extract.Candidate{
		Name:  "Heating Aid",
		Phone: "(315) 555-0100",
	}
	entries := []*catalog.Entry{
		entry("heating_fund", "Heating Fund", "", "", "(315) 555-0100", ""),
	}

	match := FindDuplicate(candidate, entries)
	if match.Entry == nil {
		t.Fatal("expected phone-corroborated match")
	}
	if match.Similarity != 0.90 {
		t.Errorf("expected pinned 0.90, got %f", match.Similarity)
	}
}

func TestContactTierEmailCaseInsensitive(t *testing.T) {
	candidate := &extract.Candidate{
		Name:  "Roofing Aid",
		Email: "Grants@Example.org",
	}
	entries := []*catalog.Entry{
		entry("roofing_fund", "Roofing Fund", "", "", "", "grants@example.ORG"),
	}

	match := FindDuplicate(candidate, entries)
	if match.Entry == nil || match.Similarity != 0.90 {
		t.Fatalf("expected email-corroborated 0.90, got %+v", match)
	}
}

func TestContactTierRequiresNameSimilarity(t *testing.T) {
	candidate := &extract.Candidate{
		Name:  "Totally Unrelated Thing",
		Phone: "(315) 555-0100",
	}
	entries := []*catalog.Entry{
		entry("heating", "Home Heating Assistance", "", "", "(315) 555-0100", ""),
	}

	match := FindDuplicate(candidate, entries)
	if match.Entry != nil {
		t.Fatalf("expected no match when names diverge, got %+v", match.Entry)
	}
}

func TestNoMatchReturnsZero(t *testing.T) {
	candidate := &extract.Candidate{Name: "Novel Grant"}
	entries := []*catalog.Entry{
		entry("other", "Different Program Entirely", "", "", "", ""),
	}

	match := FindDuplicate(candidate, entries)
	if match.Entry != nil || match.Similarity != 0.0 {
		t.Fatalf("expected zero match, got %+v", match)
	}
	if match.IsDuplicate() {
		t.Error("zero match must not classify as duplicate")
	}
}

func TestDeterministicAcrossSnapshotOrder(t *testing.T) {
	candidate := &extract.Candidate{Name: "Roof Repair Assistance"}
	a := entry("a", "Roof Repair Assistance", "", "", "", "")
	b := entry("b", "Unrelated Program", "", "", "", "")

	forward := FindDuplicate(candidate, []*catalog.Entry{a, b})
	reversed := FindDuplicate(candidate, []*catalog.Entry{b, a})

	if forward.Entry == nil || reversed.Entry == nil {
		t.Fatal("expected matches in both orders")
	}
	if forward.Entry.ProgramKey != reversed.Entry.ProgramKey ||
		forward.Similarity != reversed.Similarity {
		t.Fatalf("expected order-independent result: %+v vs %+v", forward, reversed)
	}
}

func TestEmptyCatalogSnapshot(t *testing.T) {
	candidate := &extract.Candidate{Name: "Any Grant", Website: "https://x.org"}
	match := FindDuplicate(candidate, nil)
	if match.Entry != nil {
		t.Fatalf("expected no match against empty snapshot, got %+v", match.Entry)
	}
}
