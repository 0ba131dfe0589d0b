// Package dedup matches discovered candidates against a catalog snapshot
// using three ordered tiers. Tier order is fixed: a URL hit is authoritative
// and is never outscored by a later tier.
package dedup

import (
	"strings"

	"gleaner/internal/catalog"
	"gleaner/internal/discovery/extract"
	"gleaner/internal/textmatch"
)

// Matching thresholds. Carried over unchanged from the curator-tuned values.
const (
	// Threshold is the similarity at or above which the orchestrator
	// classifies a candidate as a duplicate.
	Threshold = 0.85

	nameThreshold      = 0.85
	agencyThreshold    = 0.70
	corroborationName  = 0.70
	corroborationScore = 0.90
	nameWeight         = 0.7
	agencyWeight       = 0.3
)

// Match is the outcome of a dedup check.
type Match struct {
	Entry      *catalog.Entry
	Similarity float64
}

// IsDuplicate reports whether the similarity clears the duplicate threshold.
func (m Match) IsDuplicate() bool {
	return m.Entry != nil && m.Similarity >= Threshold
}

// FindDuplicate matches a candidate against the snapshot of active catalog
// entries. The first tier that produces a match wins:
//
//  1. URL exact match (trimmed, case-insensitive), similarity 1.0.
//  2. Token-set name similarity >= 0.85, corroborated by agency character
//     similarity >= 0.70 when both records carry an agency; best-scoring
//     entry accepted at a combined score >= 0.85.
//  3. Exact phone or email match plus name similarity >= 0.70, pinned at 0.90.
//
// No match in any tier returns a zero Match.
func FindDuplicate(candidate *extract.Candidate, entries []*catalog.Entry) Match {
	if match := matchByURL(candidate, entries); match.Entry != nil {
		return match
	}
	if candidate.Name == "" {
		return Match{}
	}
	if match := matchByName(candidate, entries); match.Entry != nil {
		return match
	}
	return matchByContact(candidate, entries)
}

func matchByURL(candidate *extract.Candidate, entries []*catalog.Entry) Match {
	url := normalizeURL(candidate.Website)
	if url == "" {
		return Match{}
	}
	for _, entry := range entries {
		if entry.Website != "" && normalizeURL(entry.Website) == url {
			return Match{Entry: entry, Similarity: 1.0}
		}
	}
	return Match{}
}

func matchByName(candidate *extract.Candidate, entries []*catalog.Entry) Match {
	var (
		best      *catalog.Entry
		bestScore float64
	)

	for _, entry := range entries {
		if entry.Name == "" {
			continue
		}
		nameScore := textmatch.TokenSetRatio(candidate.Name, entry.Name)
		if nameScore < nameThreshold {
			continue
		}

		if candidate.Agency != "" && entry.Agency != "" {
			agencyScore := textmatch.Ratio(candidate.Agency, entry.Agency)
			if agencyScore < agencyThreshold {
				continue
			}
			combined := nameScore*nameWeight + agencyScore*agencyWeight
			if combined > bestScore {
				best = entry
				bestScore = combined
			}
		} else if nameScore > bestScore {
			best = entry
			bestScore = nameScore
		}
	}

	if best != nil && bestScore >= Threshold {
		return Match{Entry: best, Similarity: bestScore}
	}
	return Match{}
}

func matchByContact(candidate *extract.Candidate, entries []*catalog.Entry) Match {
	if phone := strings.TrimSpace(candidate.Phone); phone != "" {
		for _, entry := range entries {
			if entry.Phone == "" || strings.TrimSpace(entry.Phone) != phone {
				continue
			}
			if entry.Name != "" &&
				textmatch.TokenSetRatio(candidate.Name, entry.Name) >= corroborationName {
				return Match{Entry: entry, Similarity: corroborationScore}
			}
		}
	}

	if email := normalizeEmail(candidate.Email); email != "" {
		for _, entry := range entries {
			if entry.Email == "" || normalizeEmail(entry.Email) != email {
				continue
			}
			if entry.Name != "" &&
				textmatch.TokenSetRatio(candidate.Name, entry.Name) >= corroborationName {
				return Match{Entry: entry, Similarity: corroborationScore}
			}
		}
	}

	return Match{}
}

func normalizeURL(url string) string {
	return strings.ToLower(strings.TrimSpace(url))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
