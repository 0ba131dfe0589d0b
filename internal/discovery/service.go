package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"gleaner/internal/catalog"
	"gleaner/internal/config"
	"gleaner/internal/discovery/confidence"
	"gleaner/internal/discovery/dedup"
	"gleaner/internal/discovery/extract"
	"gleaner/internal/discovery/sources"
	"gleaner/internal/ledger"
	"gleaner/internal/logging"
	"gleaner/internal/notifications"
	"gleaner/internal/services"
)

const runLockFile = "discovery.lock"

// RunOptions controls a single discovery run.
type RunOptions struct {
	// Sources limits the run to the named source types. Empty means all
	// registered adapters.
	Sources []string
	// Notify sends a summary notification when new grants were discovered.
	Notify bool
}

// Service runs the discovery pipeline. One run executes at a time per data
// directory; a concurrent attempt fails with a conflict.
type Service struct {
	cfg      *config.Config
	store    *ledger.Store
	catalog  catalog.Service
	registry *sources.Registry
	notifier notifications.Service
	logger   *slog.Logger
}

// NewService wires the orchestrator.
func NewService(
	cfg *config.Config,
	store *ledger.Store,
	cat catalog.Service,
	registry *sources.Registry,
	notifier notifications.Service,
	logger *slog.Logger,
) *Service {
	return &Service{
		cfg:      cfg,
		store:    store,
		catalog:  cat,
		registry: registry,
		notifier: notifier,
		logger:   logging.WithComponent(logger, "discovery"),
	}
}

// DefaultRegistry builds the adapter registry from configuration.
func DefaultRegistry(cfg *config.Config, logger *slog.Logger) (*sources.Registry, error) {
	feed := sources.NewFeedAdapter(sources.FeedOptions{
		FeedURLs:     cfg.Discovery.FeedURLs,
		Keywords:     cfg.Discovery.Keywords,
		LookbackDays: cfg.Discovery.LookbackDays,
		FetchTimeout: time.Duration(cfg.Discovery.FetchTimeoutSeconds) * time.Second,
	}, logger)
	return sources.NewRegistry(feed)
}

// Run executes one discovery pass across the requested sources. The returned
// run record carries final counters and the structured error log; Run itself
// errors only when the run could not be recorded or another run holds the
// lock.
func (s *Service) Run(ctx context.Context, opts RunOptions) (*ledger.Run, error) {
	lock := flock.New(filepath.Join(s.cfg.Paths.DataDir, runLockFile))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrConflict, "discovery", "run",
			"another discovery run is in progress", nil)
	}
	defer func() { _ = lock.Unlock() }()

	run := &ledger.Run{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Status:    ledger.RunRunning,
	}
	if err := s.store.InsertRun(ctx, run); err != nil {
		return nil, err
	}
	s.logger.Info("discovery run started",
		logging.String("run_id", run.ID),
		logging.Any("sources", opts.Sources))

	adapters, unknown := s.registry.Resolve(opts.Sources)
	for _, name := range unknown {
		s.logger.Warn("unknown source type requested", logging.String("source", name))
		run.Errors++
		run.ErrorLog = append(run.ErrorLog, ledger.RunError{
			Source: name,
			Stage:  "initialization",
			Error:  "unknown source type",
		})
	}
	if len(adapters) == 0 {
		return s.failRun(ctx, run, "no source adapters resolved")
	}

	snapshot, err := s.catalog.ListActive(ctx)
	if err != nil {
		return s.failRun(ctx, run, fmt.Sprintf("load catalog snapshot: %v", err))
	}
	s.logger.Info("catalog snapshot loaded", logging.Int("programs", len(snapshot)))

	for _, adapter := range adapters {
		s.processSource(ctx, run, adapter, snapshot)
		// Commit after each source so earlier results survive later failures.
		if err := s.store.UpdateRun(ctx, run); err != nil {
			s.logger.Error("persist run progress", logging.Error(err))
		}
	}

	completed := time.Now().UTC()
	run.CompletedAt = &completed
	if run.Errors == 0 {
		run.Status = ledger.RunCompleted
	} else {
		run.Status = ledger.RunCompletedWithErrors
	}
	if err := s.store.UpdateRun(ctx, run); err != nil {
		return run, err
	}

	s.logger.Info("discovery run finished",
		logging.String("run_id", run.ID),
		logging.String("status", string(run.Status)),
		logging.Int("discovered", run.GrantsDiscovered),
		logging.Int("duplicates", run.DuplicatesFound),
		logging.Int("errors", run.Errors))

	if opts.Notify && run.GrantsDiscovered > 0 {
		s.sendSummary(ctx, run)
	}

	return run, nil
}

func (s *Service) failRun(ctx context.Context, run *ledger.Run, message string) (*ledger.Run, error) {
	completed := time.Now().UTC()
	run.CompletedAt = &completed
	run.Status = ledger.RunFailed
	run.Errors++
	run.ErrorLog = append(run.ErrorLog, ledger.RunError{
		Stage: "initialization",
		Error: message,
	})
	s.logger.Error("discovery run failed",
		logging.String("run_id", run.ID),
		logging.String("reason", message))
	if err := s.store.UpdateRun(ctx, run); err != nil {
		return run, err
	}
	return run, nil
}

func (s *Service) processSource(ctx context.Context, run *ledger.Run, adapter sources.Adapter, snapshot []*catalog.Entry) {
	sourceType := adapter.SourceType()
	run.SourcesChecked++

	items, err := adapter.FetchGrants(ctx)
	if err != nil {
		run.Errors++
		run.ErrorLog = append(run.ErrorLog, ledger.RunError{
			Source: sourceType,
			Stage:  "fetch",
			Error:  err.Error(),
		})
		s.logger.Warn("source fetch failed",
			logging.String("source", sourceType), logging.Error(err))
		return
	}
	s.logger.Info("source fetched",
		logging.String("source", sourceType), logging.Int("items", len(items)))

	for _, item := range items {
		s.processItem(ctx, run, sourceType, item, snapshot)
	}
}

func (s *Service) processItem(ctx context.Context, run *ledger.Run, sourceType string, item sources.RawItem, snapshot []*catalog.Entry) {
	candidate := extract.Extract(item, sourceType)
	if candidate.Name == "" {
		s.logger.Debug("skipping nameless item", logging.String("source", sourceType))
		return
	}

	score := confidence.Score(candidate, sourceType)
	grant := grantFromCandidate(candidate, score)

	match := dedup.FindDuplicate(candidate, snapshot)
	if match.IsDuplicate() {
		grant.ReviewStatus = ledger.ReviewDuplicate
		grant.MatchedProgramKey = match.Entry.ProgramKey
		grant.SimilarityScore = match.Similarity
		if err := s.store.InsertGrant(ctx, grant); err != nil {
			s.recordItemError(run, sourceType, item, err)
			return
		}
		run.DuplicatesFound++
		s.logger.Info("duplicate detected",
			logging.String("name", candidate.Name),
			logging.String("matched", match.Entry.ProgramKey),
			logging.Float64("similarity", match.Similarity))
		return
	}

	if err := s.store.InsertGrant(ctx, grant); err != nil {
		s.recordItemError(run, sourceType, item, err)
		return
	}
	run.GrantsDiscovered++
	s.logger.Info("grant discovered",
		logging.String("name", candidate.Name),
		logging.Float64("confidence", score))
}

func (s *Service) recordItemError(run *ledger.Run, sourceType string, item sources.RawItem, err error) {
	run.Errors++
	run.ErrorLog = append(run.ErrorLog, ledger.RunError{
		Source: sourceType,
		Stage:  sourceType,
		Error:  err.Error(),
		Item:   truncateItem(item),
	})
	s.logger.Warn("item processing failed",
		logging.String("source", sourceType), logging.Error(err))
}

func grantFromCandidate(candidate *extract.Candidate, score float64) *ledger.Grant {
	return &ledger.Grant{
		ID:                 uuid.NewString(),
		SourceType:         candidate.SourceType,
		SourceURL:          candidate.SourceURL,
		SourceID:           candidate.SourceID,
		Name:               candidate.Name,
		Jurisdiction:       candidate.Jurisdiction,
		ProgramType:        candidate.ProgramType,
		MaxBenefit:         candidate.MaxBenefit,
		Deadline:           candidate.Deadline,
		Agency:             candidate.Agency,
		Phone:              candidate.Phone,
		Email:              candidate.Email,
		Website:            candidate.Website,
		EligibilitySummary: candidate.EligibilitySummary,
		RawPayload:         candidate.RawPayload,
		DiscoveredAt:       time.Now().UTC(),
		ConfidenceScore:    score,
		ReviewStatus:       ledger.ReviewPending,
	}
}

func truncateItem(item sources.RawItem) string {
	snippet := item.Title + " " + item.Link
	if len(snippet) > 200 {
		snippet = snippet[:200]
	}
	return snippet
}

// sendSummary delivers the single post-run notification. Failures are logged
// and never demote the run status.
func (s *Service) sendSummary(ctx context.Context, run *ledger.Run) {
	high, urgent, err := s.summaryLists(ctx, run)
	if err != nil {
		s.logger.Warn("build notification summary", logging.Error(err))
		return
	}
	if err := s.notifier.NotifyDiscoverySummary(ctx, run, high, urgent); err != nil {
		s.logger.Warn("send discovery notification", logging.Error(err))
	}
}

func (s *Service) summaryLists(ctx context.Context, run *ledger.Run) ([]*ledger.Grant, []notifications.UrgentGrant, error) {
	threshold := s.cfg.Discovery.HighConfidenceThreshold
	grants, err := s.store.ListGrants(ctx, ledger.GrantFilter{
		Status:        ledger.ReviewPending,
		MinConfidence: &threshold,
		SortBy:        "confidence",
	})
	if err != nil {
		return nil, nil, err
	}

	var high []*ledger.Grant
	for _, grant := range grants {
		if grant.DiscoveredAt.Before(run.StartedAt) {
			continue
		}
		high = append(high, grant)
		if len(high) == 10 {
			break
		}
	}

	now := time.Now().UTC()
	var urgent []notifications.UrgentGrant
	for _, grant := range high {
		if grant.Deadline == "" {
			continue
		}
		deadline, ok := parseDeadlineDate(grant.Deadline)
		if !ok {
			continue
		}
		remaining := daysUntil(deadline, now)
		if remaining >= 0 && remaining <= urgentWindowDays {
			urgent = append(urgent, notifications.UrgentGrant{
				Grant:         grant,
				DaysRemaining: remaining,
			})
		}
	}
	sort.Slice(urgent, func(i, j int) bool {
		return urgent[i].DaysRemaining < urgent[j].DaysRemaining
	})

	return high, urgent, nil
}

// SourceTypes lists the registered adapter types.
func (s *Service) SourceTypes() []string {
	return s.registry.Types()
}

// HighConfidenceGrants lists pending grants at or above the given confidence,
// best first. A non-positive threshold falls back to the configured default.
func (s *Service) HighConfidenceGrants(ctx context.Context, minConfidence float64) ([]*ledger.Grant, error) {
	if minConfidence <= 0 {
		minConfidence = s.cfg.Discovery.HighConfidenceThreshold
	}
	return s.store.ListGrants(ctx, ledger.GrantFilter{
		Status:        ledger.ReviewPending,
		MinConfidence: &minConfidence,
		SortBy:        "confidence",
	})
}
