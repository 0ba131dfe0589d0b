package ledger

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"
)

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func formatTime(value time.Time) string {
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

func parseTimePtr(value sql.NullString) *time.Time {
	if !value.Valid || value.String == "" {
		return nil
	}
	parsed := parseTimeString(value.String)
	if parsed.IsZero() {
		return nil
	}
	return &parsed
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", count), ", ")
}

func encodeErrorLog(errors []RunError) string {
	if len(errors) == 0 {
		return "[]"
	}
	data, err := json.Marshal(errors)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func decodeErrorLog(raw string) []RunError {
	if raw == "" || raw == "[]" {
		return nil
	}
	var entries []RunError
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil
	}
	return entries
}

type rowScanner interface {
	Scan(dest ...any) error
}

const grantColumns = `id, source_type, source_url, source_id, name, jurisdiction,
	program_type, max_benefit, deadline, agency, phone, email, website,
	eligibility_summary, raw_payload, discovered_at, confidence_score,
	review_status, reviewed_by, reviewed_at, review_notes,
	matched_program_key, similarity_score, created_program_key`

func scanGrant(row rowScanner) (*Grant, error) {
	var (
		grant        Grant
		sourceURL    sql.NullString
		sourceID     sql.NullString
		jurisdiction sql.NullString
		programType  sql.NullString
		maxBenefit   sql.NullString
		deadline     sql.NullString
		agency       sql.NullString
		phone        sql.NullString
		email        sql.NullString
		website      sql.NullString
		eligibility  sql.NullString
		rawPayload   sql.NullString
		discoveredAt string
		reviewStatus string
		reviewedBy   sql.NullString
		reviewedAt   sql.NullString
		reviewNotes  sql.NullString
		matchedKey   sql.NullString
		similarity   sql.NullFloat64
		createdKey   sql.NullString
	)

	err := row.Scan(
		&grant.ID, &grant.SourceType, &sourceURL, &sourceID, &grant.Name,
		&jurisdiction, &programType, &maxBenefit, &deadline, &agency,
		&phone, &email, &website, &eligibility, &rawPayload,
		&discoveredAt, &grant.ConfidenceScore, &reviewStatus,
		&reviewedBy, &reviewedAt, &reviewNotes, &matchedKey, &similarity, &createdKey,
	)
	if err != nil {
		return nil, err
	}

	grant.SourceURL = sourceURL.String
	grant.SourceID = sourceID.String
	grant.Jurisdiction = jurisdiction.String
	grant.ProgramType = programType.String
	grant.MaxBenefit = maxBenefit.String
	grant.Deadline = deadline.String
	grant.Agency = agency.String
	grant.Phone = phone.String
	grant.Email = email.String
	grant.Website = website.String
	grant.EligibilitySummary = eligibility.String
	grant.RawPayload = rawPayload.String
	grant.DiscoveredAt = parseTimeString(discoveredAt)
	grant.ReviewStatus = ReviewStatus(reviewStatus)
	grant.ReviewedBy = reviewedBy.String
	grant.ReviewedAt = parseTimePtr(reviewedAt)
	grant.ReviewNotes = reviewNotes.String
	grant.MatchedProgramKey = matchedKey.String
	grant.SimilarityScore = similarity.Float64
	grant.CreatedProgramKey = createdKey.String

	return &grant, nil
}

const runColumns = `id, started_at, completed_at, status, sources_checked,
	grants_discovered, duplicates_found, errors, error_log`

func scanRun(row rowScanner) (*Run, error) {
	var (
		run         Run
		startedAt   string
		completedAt sql.NullString
		status      string
		errorLog    string
	)

	err := row.Scan(
		&run.ID, &startedAt, &completedAt, &status,
		&run.SourcesChecked, &run.GrantsDiscovered, &run.DuplicatesFound,
		&run.Errors, &errorLog,
	)
	if err != nil {
		return nil, err
	}

	run.StartedAt = parseTimeString(startedAt)
	run.CompletedAt = parseTimePtr(completedAt)
	run.Status = RunStatus(status)
	run.ErrorLog = decodeErrorLog(errorLog)

	return &run, nil
}
