package confidence

import (
	"testing"

	"gleaner/internal/discovery/extract"
	"gleaner/internal/discovery/sources"
)

func fullCandidate() *extract.Candidate {
	return &extract.Candidate{
		Name:               "Roof Repair Grant",
		Agency:             "County DSS",
		Website:            "https://example.org/roof",
		Phone:              "(315) 555-0100",
		Email:              "grants@example.org",
		Deadline:           "March 15, 2026",
		MaxBenefit:         "$7,500",
		EligibilitySummary: "Homeowners in the county.",
	}
}

func TestScoreFullCandidate(t *testing.T) {
	got := Score(fullCandidate(), sources.TypeGrantsAPI)
	// 0.2+0.15+0.15+0.1+0.1+0.1+0.1 = 0.90, plus 0.10 api bonus, clamped at 1.0
	if got != 1.0 {
		t.Errorf("expected 1.0, got %f", got)
	}
}

func TestScoreNameOnlyFeed(t *testing.T) {
	candidate := &extract.Candidate{Name: "Some Grant"}
	got := Score(candidate, sources.TypeFeed)
	want := 0.2 + 0.08
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("expected %f, got %f", want, got)
	}
}

func TestScoreMonotonicInCompleteness(t *testing.T) {
	candidate := &extract.Candidate{Name: "Some Grant"}
	base := Score(candidate, sources.TypeFeed)

	candidate.Agency = "County DSS"
	withAgency := Score(candidate, sources.TypeFeed)
	if withAgency <= base {
		t.Errorf("expected agency to raise score: %f -> %f", base, withAgency)
	}

	candidate.Website = "https://example.org"
	withWebsite := Score(candidate, sources.TypeFeed)
	if withWebsite <= withAgency {
		t.Errorf("expected website to raise score: %f -> %f", withAgency, withWebsite)
	}
}

func TestScoreBounds(t *testing.T) {
	if got := Score(&extract.Candidate{}, "unknown_source"); got < 0 || got > 1 {
		t.Errorf("score out of bounds: %f", got)
	}
	if got := Score(fullCandidate(), sources.TypeGrantsAPI); got < 0 || got > 1 {
		t.Errorf("score out of bounds: %f", got)
	}
}

func TestScoreSourceBonusOrdering(t *testing.T) {
	candidate := &extract.Candidate{Name: "Some Grant"}
	api := Score(candidate, sources.TypeGrantsAPI)
	feed := Score(candidate, sources.TypeFeed)
	scrape := Score(candidate, sources.TypeWebScrape)
	unknown := Score(candidate, "carrier_pigeon")

	if !(api > feed && feed > scrape) {
		t.Errorf("expected api > feed > scrape, got %f, %f, %f", api, feed, scrape)
	}
	if unknown != scrape {
		t.Errorf("expected unknown source to score like scrape, got %f vs %f", unknown, scrape)
	}
}

func TestLabel(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{0.95, "High"},
		{0.8, "High"},
		{0.6, "Medium"},
		{0.5, "Medium"},
		{0.2, "Low"},
	}
	for _, tc := range cases {
		if got := Label(tc.score); got != tc.want {
			t.Errorf("Label(%f) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestAutoApproveEligible(t *testing.T) {
	if !AutoApproveEligible(0.92, 0.9) {
		t.Error("expected eligible at threshold")
	}
	if AutoApproveEligible(0.89, 0.9) {
		t.Error("expected ineligible below threshold")
	}
}
