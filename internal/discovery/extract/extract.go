// Package extract normalizes raw source items into candidate grant records.
// Every pass is best-effort: a field that cannot be extracted stays empty and
// never fails the item.
package extract

import (
	"regexp"
	"strings"

	"gleaner/internal/discovery/sources"
)

// Candidate is a normalized grant record before persistence. It has no
// identity until the orchestrator stores it.
type Candidate struct {
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
}

// Extract builds a candidate from a raw item. Name is the only field the
// caller treats as mandatory; its absence means the item is skipped upstream.
func Extract(item sources.RawItem, sourceType string) *Candidate {
	name := strings.TrimSpace(item.Title)
	description := item.Description
	combined := name + " " + description

	candidate := &Candidate{
		SourceType: sourceType,
		SourceURL:  item.Link,
		SourceID:   item.GUID,
		Name:       name,
		Website:    item.Link,
		RawPayload: item.RawEntry,
	}

	candidate.MaxBenefit = BenefitAmount(combined)
	candidate.Deadline = Deadline(description + " " + name)
	candidate.Phone = Phone(description)
	candidate.Email = Email(description)
	candidate.Agency = Agency(name, description)
	candidate.Jurisdiction = Jurisdiction(combined)
	candidate.ProgramType = Category(combined)

	if len(description) > 100 {
		candidate.EligibilitySummary = truncate(description, 500)
	}

	return candidate
}

var benefitPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:up to|maximum of|max|grant of)\s*\$\s*([\d,]+)`),
	regexp.MustCompile(`(?i)\$\s*([\d,]+)\s*(?:grant|assistance|benefit)`),
	regexp.MustCompile(`(?i)\$\s*([\d,]+(?:\s*-\s*\$?\s*[\d,]+)?)`),
}

// BenefitAmount extracts a dollar benefit from text. Patterns are tried in
// priority order so "up to $7,500" beats a bare amount elsewhere in the text.
func BenefitAmount(text string) string {
	if text == "" {
		return ""
	}
	for _, pattern := range benefitPatterns {
		if match := pattern.FindStringSubmatch(text); match != nil {
			return "$" + match[1]
		}
	}
	return ""
}

var (
	numericDateRe = regexp.MustCompile(`\b(\d{1,2}[/-]\d{1,2}[/-]\d{4})\b`)
	isoDateRe     = regexp.MustCompile(`\b(\d{4}-\d{1,2}-\d{1,2})\b`)
	monthDateRe   = regexp.MustCompile(`(?i)\b(January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s+(\d{1,2}),?\s+(\d{4})\b`)
	labeledDateRe = regexp.MustCompile(`(?i)(?:deadline|due|closes|close date|application period ends):\s*([^\n.]+)`)
)

// Deadline extracts a deadline string from text. Structured date formats win
// over the labeled free-text fallback, which is length-capped.
func Deadline(text string) string {
	if text == "" {
		return ""
	}
	if match := numericDateRe.FindStringSubmatch(text); match != nil {
		return match[1]
	}
	if match := isoDateRe.FindStringSubmatch(text); match != nil {
		return match[1]
	}
	if match := monthDateRe.FindStringSubmatch(text); match != nil {
		return match[1] + " " + match[2] + ", " + match[3]
	}
	if match := labeledDateRe.FindStringSubmatch(text); match != nil {
		return truncate(strings.TrimSpace(match[1]), 100)
	}
	return ""
}

var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\((\d{3})\)\s*(\d{3})-(\d{4})`),
	regexp.MustCompile(`(\d{3})-(\d{3})-(\d{4})`),
	regexp.MustCompile(`(\d{3})\.(\d{3})\.(\d{4})`),
	regexp.MustCompile(`(\d{3})\s+(\d{3})\s+(\d{4})`),
}

// Phone extracts a phone number, normalized to "(NNN) NNN-NNNN".
func Phone(text string) string {
	if text == "" {
		return ""
	}
	for _, pattern := range phonePatterns {
		if match := pattern.FindStringSubmatch(text); match != nil {
			return "(" + match[1] + ") " + match[2] + "-" + match[3]
		}
	}
	return ""
}

var emailRe = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

// Email extracts an email address, lowercased.
func Email(text string) string {
	if match := emailRe.FindString(text); match != "" {
		return strings.ToLower(match)
	}
	return ""
}

var agencyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:administered by|offered by|provided by)\s+([^.]+?)(?:\.|$)`),
	regexp.MustCompile(`(?i)(?:Department of|Office of)\s+([^.]+?)(?:\.|$)`),
	regexp.MustCompile(`(?i)(?:HUD|USDA|NYS|State of New York)\s+([^.]+?)(?:\.|$)`),
}

// Agency extracts an administering agency from name or description. Only
// reasonably short captures are accepted.
func Agency(name, description string) string {
	text := name + " " + description
	for _, pattern := range agencyPatterns {
		if match := pattern.FindStringSubmatch(text); match != nil {
			agency := strings.TrimSpace(match[1])
			if len(agency) < 100 {
				return agency
			}
		}
	}
	return ""
}

// Jurisdiction classifies text into a jurisdiction, most specific first.
func Jurisdiction(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "syracuse"):
		return "City of Syracuse"
	case strings.Contains(lower, "onondaga"):
		return "Onondaga County"
	case containsAny(lower, "new york state", "nys", "ny state"):
		return "New York State"
	case containsAny(lower, "federal", "hud", "usda", "national"):
		return "Federal"
	default:
		return ""
	}
}

type categoryRule struct {
	category string
	keywords []string
}

// Scanned in declared order; the first keyword hit wins.
var categoryRules = []categoryRule{
	{"URGENT SAFETY", []string{"emergency", "urgent", "safety", "structural", "hazard", "dangerous"}},
	{"HEALTH HAZARDS", []string{"lead", "asbestos", "mold", "health", "toxic", "contamination"}},
	{"AGING IN PLACE", []string{"senior", "elderly", "aging", "accessibility", "ada", "disabled", "mobility"}},
	{"ENERGY & BILLS", []string{"energy", "weatherization", "efficiency", "insulation", "heating", "utility", "bills", "hvac"}},
	{"HISTORIC RESTORATION", []string{"historic", "heritage", "preservation", "restoration", "landmark"}},
	{"BUYING HELP", []string{"purchase", "down payment", "first-time", "homebuyer", "acquisition", "ownership"}},
}

// CategoryDefault is assigned when no keyword rule matches.
const CategoryDefault = "GENERAL"

// Category assigns a menu category from the fixed keyword table.
func Category(text string) string {
	lower := strings.ToLower(text)
	for _, rule := range categoryRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return rule.category
			}
		}
	}
	return CategoryDefault
}

func containsAny(text string, keywords ...string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit]
}
