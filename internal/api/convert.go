package api

import (
	"gleaner/internal/discovery/confidence"
	"gleaner/internal/ledger"
)

// FromGrant converts a stored grant into its summary projection. The
// auto-approve flag is computed against the supplied threshold.
func FromGrant(grant *ledger.Grant, autoApproveThreshold float64) GrantSummary {
	return GrantSummary{
		ID:                  grant.ID,
		Name:                grant.Name,
		SourceType:          grant.SourceType,
		Jurisdiction:        grant.Jurisdiction,
		Agency:              grant.Agency,
		MaxBenefit:          grant.MaxBenefit,
		Deadline:            grant.Deadline,
		ConfidenceScore:     grant.ConfidenceScore,
		ConfidenceLabel:     confidence.Label(grant.ConfidenceScore),
		AutoApproveEligible: confidence.AutoApproveEligible(grant.ConfidenceScore, autoApproveThreshold),
		ReviewStatus:        string(grant.ReviewStatus),
		DiscoveredAt:        grant.DiscoveredAt,
	}
}

// FromGrantDetail converts a stored grant into its full projection.
func FromGrantDetail(grant *ledger.Grant, autoApproveThreshold float64) GrantDetail {
	return GrantDetail{
		GrantSummary:       FromGrant(grant, autoApproveThreshold),
		SourceURL:          grant.SourceURL,
		SourceID:           grant.SourceID,
		ProgramType:        grant.ProgramType,
		Phone:              grant.Phone,
		Email:              grant.Email,
		Website:            grant.Website,
		EligibilitySummary: grant.EligibilitySummary,
		ReviewedBy:         grant.ReviewedBy,
		ReviewedAt:         grant.ReviewedAt,
		ReviewNotes:        grant.ReviewNotes,
		MatchedProgramKey:  grant.MatchedProgramKey,
		SimilarityScore:    grant.SimilarityScore,
		CreatedProgramKey:  grant.CreatedProgramKey,
	}
}

// FromRun converts a stored run into its summary projection.
func FromRun(run *ledger.Run) RunSummary {
	return RunSummary{
		ID:               run.ID,
		StartedAt:        run.StartedAt,
		CompletedAt:      run.CompletedAt,
		Status:           string(run.Status),
		SourcesChecked:   run.SourcesChecked,
		GrantsDiscovered: run.GrantsDiscovered,
		DuplicatesFound:  run.DuplicatesFound,
		Errors:           run.Errors,
	}
}

// FromRunDetail converts a stored run including its error log.
func FromRunDetail(run *ledger.Run) RunDetail {
	detail := RunDetail{RunSummary: FromRun(run)}
	for _, entry := range run.ErrorLog {
		detail.ErrorLog = append(detail.ErrorLog, RunErrorDetail{
			Source: entry.Source,
			Stage:  entry.Stage,
			Error:  entry.Error,
			Item:   entry.Item,
		})
	}
	return detail
}

// FromStats converts aggregate counters.
func FromStats(stats *ledger.Stats) StatsResponse {
	return StatsResponse{
		TotalRuns:         stats.TotalRuns,
		TotalDiscovered:   stats.TotalDiscovered,
		TotalDuplicates:   stats.TotalDuplicates,
		PendingReview:     stats.PendingReview,
		Approved:          stats.Approved,
		Rejected:          stats.Rejected,
		MarkedDuplicate:   stats.MarkedDuplicate,
		AverageConfidence: stats.AverageConfidence,
		LastRunAt:         stats.LastRunAt,
	}
}
