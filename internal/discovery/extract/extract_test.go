package extract

import (
	"strings"
	"testing"

	"gleaner/internal/discovery/sources"
)

func TestExtractFullItem(t *testing.T) {
	item := sources.RawItem{
		Title:       "Syracuse Roof Repair Grant",
		Link:        "https://example.org/roof",
		GUID:        "roof-1",
		Description: "Grant up to $7,500 for homeowners. Deadline: March 15, 2026. Call (315) 555-0100. " + strings.Repeat("Eligibility details. ", 10),
	}

	candidate := Extract(item, sources.TypeFeed)

	if candidate.Name != "Syracuse Roof Repair Grant" {
		t.Errorf("unexpected name: %q", candidate.Name)
	}
	if candidate.MaxBenefit != "$7,500" {
		t.Errorf("expected $7,500, got %q", candidate.MaxBenefit)
	}
	if candidate.Deadline != "March 15, 2026" {
		t.Errorf("expected March 15, 2026, got %q", candidate.Deadline)
	}
	if candidate.Phone != "(315) 555-0100" {
		t.Errorf("expected (315) 555-0100, got %q", candidate.Phone)
	}
	if candidate.Jurisdiction != "City of Syracuse" {
		t.Errorf("expected City of Syracuse, got %q", candidate.Jurisdiction)
	}
	if candidate.Website != "https://example.org/roof" {
		t.Errorf("expected website from link, got %q", candidate.Website)
	}
	if candidate.EligibilitySummary == "" {
		t.Error("expected eligibility summary from long description")
	}
}

func TestBenefitAmountPriorityOrder(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"Maximum of $10,000 available. Also mentions $500 fee.", "$10,000"},
		{"A $2,500 grant for repairs", "$2,500"},
		{"Awards range $1,000-$5,000", "$1,000-$5,000"},
		{"up to $7,500 for homeowners", "$7,500"},
		{"no money mentioned", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := BenefitAmount(tc.text); got != tc.want {
			t.Errorf("BenefitAmount(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestDeadlineFormats(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"Applications due 03/15/2026 sharp", "03/15/2026"},
		{"Closes 2026-03-15 at midnight", "2026-03-15"},
		{"Deadline is March 15, 2026 for all", "March 15, 2026"},
		{"Due Mar 15 2026", "Mar 15, 2026"},
		{"deadline: end of fiscal year", "end of fiscal year"},
		{"no dates here", ""},
	}
	for _, tc := range cases {
		if got := Deadline(tc.text); got != tc.want {
			t.Errorf("Deadline(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestDeadlineLabeledFallbackTruncated(t *testing.T) {
	long := "deadline: " + strings.Repeat("x", 200)
	got := Deadline(long)
	if len(got) != 100 {
		t.Errorf("expected 100-char cap, got %d chars", len(got))
	}
}

func TestPhoneNormalization(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"Call (315) 555-0100 today", "(315) 555-0100"},
		{"Call 315-555-0100 today", "(315) 555-0100"},
		{"Call 315.555.0100 today", "(315) 555-0100"},
		{"Call 315 555 0100 today", "(315) 555-0100"},
		{"no phone", ""},
	}
	for _, tc := range cases {
		if got := Phone(tc.text); got != tc.want {
			t.Errorf("Phone(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestEmailLowercased(t *testing.T) {
	if got := Email("Contact Grants@Example.ORG for info"); got != "grants@example.org" {
		t.Errorf("expected lowercased email, got %q", got)
	}
	if got := Email("nothing here"); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}

func TestAgencyTriggerPhrases(t *testing.T) {
	got := Agency("Roof Grant", "This program is administered by Onondaga County Community Development. Apply soon.")
	if got != "Onondaga County Community Development" {
		t.Errorf("unexpected agency: %q", got)
	}

	got = Agency("Department of Housing Preservation Grant", "")
	if got == "" {
		t.Error("expected agency from Department of trigger")
	}

	long := "administered by " + strings.Repeat("a", 150)
	if got := Agency("", long); got != "" {
		t.Errorf("expected over-length agency rejected, got %q", got)
	}
}

func TestJurisdictionLadder(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"Syracuse and Onondaga County federal program", "City of Syracuse"},
		{"Onondaga County HUD program", "Onondaga County"},
		{"NYS homeowner fund", "New York State"},
		{"HUD national initiative", "Federal"},
		{"Springfield local fund", ""},
	}
	for _, tc := range cases {
		if got := Jurisdiction(tc.text); got != tc.want {
			t.Errorf("Jurisdiction(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestCategoryFirstHitWins(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"Emergency structural repairs", "URGENT SAFETY"},
		{"Lead paint abatement for seniors", "HEALTH HAZARDS"},
		{"Senior accessibility ramps", "AGING IN PLACE"},
		{"Weatherization and insulation help", "ENERGY & BILLS"},
		{"Historic landmark facade work", "HISTORIC RESTORATION"},
		{"Down payment assistance for homebuyers", "BUYING HELP"},
		{"General community fund", CategoryDefault},
	}
	for _, tc := range cases {
		if got := Category(tc.text); got != tc.want {
			t.Errorf("Category(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestExtractShortDescriptionOmitsEligibility(t *testing.T) {
	item := sources.RawItem{
		Title:       "Small Grant",
		Description: "Brief note.",
	}
	candidate := Extract(item, sources.TypeFeed)
	if candidate.EligibilitySummary != "" {
		t.Errorf("expected no eligibility summary, got %q", candidate.EligibilitySummary)
	}
}

func TestExtractLongDescriptionTruncatedTo500(t *testing.T) {
	item := sources.RawItem{
		Title:       "Big Grant",
		Description: strings.Repeat("d", 600),
	}
	candidate := Extract(item, sources.TypeFeed)
	if len(candidate.EligibilitySummary) != 500 {
		t.Errorf("expected 500-char summary, got %d", len(candidate.EligibilitySummary))
	}
}
