package sources

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"gleaner/internal/logging"
)

// FeedAdapter polls syndication feeds for assistance-program listings. It
// filters entries by a relevance keyword allow-list, drops entries older than
// the lookback window, and dedupes by link within a single fetch.
type FeedAdapter struct {
	feedURLs     []string
	keywords     []string
	lookbackDays int
	fetchTimeout time.Duration
	parser       *gofeed.Parser
	logger       *slog.Logger
	now          func() time.Time
}

// FeedOptions configures a FeedAdapter.
type FeedOptions struct {
	FeedURLs     []string
	Keywords     []string
	LookbackDays int
	FetchTimeout time.Duration
}

// NewFeedAdapter builds a feed adapter. Zero options fall back to sensible
// defaults for the lookback window and timeout.
func NewFeedAdapter(opts FeedOptions, logger *slog.Logger) *FeedAdapter {
	if opts.LookbackDays <= 0 {
		opts.LookbackDays = 30
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 25 * time.Second
	}
	keywords := make([]string, 0, len(opts.Keywords))
	for _, keyword := range opts.Keywords {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword != "" {
			keywords = append(keywords, keyword)
		}
	}
	return &FeedAdapter{
		feedURLs:     opts.FeedURLs,
		keywords:     keywords,
		lookbackDays: opts.LookbackDays,
		fetchTimeout: opts.FetchTimeout,
		parser:       gofeed.NewParser(),
		logger:       logging.WithComponent(logger, "feed-source"),
		now:          time.Now,
	}
}

// SourceType identifies this adapter to the scorer and run bookkeeping.
func (a *FeedAdapter) SourceType() string {
	return TypeFeed
}

// FetchGrants polls every configured feed. A single failing feed is logged
// and skipped; the fetch only errors when no feed could be read at all.
func (a *FeedAdapter) FetchGrants(ctx context.Context) ([]RawItem, error) {
	if len(a.feedURLs) == 0 {
		return nil, nil
	}

	cutoff := a.now().AddDate(0, 0, -a.lookbackDays)
	seenLinks := make(map[string]struct{})
	var (
		items       []RawItem
		feedErrors  []string
		feedsParsed int
	)

	for _, feedURL := range a.feedURLs {
		feed, err := a.parseFeed(ctx, feedURL)
		if err != nil {
			a.logger.Warn("feed fetch failed",
				logging.String("url", feedURL), logging.Error(err))
			feedErrors = append(feedErrors, fmt.Sprintf("%s: %v", feedURL, err))
			continue
		}
		feedsParsed++

		for _, entry := range feed.Items {
			link := strings.TrimSpace(entry.Link)
			if link != "" {
				if _, seen := seenLinks[link]; seen {
					continue
				}
			}

			published := entryTime(entry)
			if published != nil && published.Before(cutoff) {
				continue
			}

			if !a.isRelevant(entry) {
				continue
			}

			item := RawItem{
				Title:       strings.TrimSpace(entry.Title),
				Link:        link,
				GUID:        entry.GUID,
				Description: entryDescription(entry),
				RawEntry:    entry.Title + "\n" + entry.Description,
			}
			if item.GUID == "" {
				item.GUID = link
			}
			if published != nil {
				item.Published = published.UTC().Format(time.RFC3339)
			}

			items = append(items, item)
			if link != "" {
				seenLinks[link] = struct{}{}
			}
		}
	}

	if feedsParsed == 0 {
		return nil, fmt.Errorf("all feeds failed: %s", strings.Join(feedErrors, "; "))
	}

	a.logger.Info("feed fetch complete",
		logging.Int("feeds", feedsParsed),
		logging.Int("items", len(items)))
	return items, nil
}

func (a *FeedAdapter) parseFeed(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, a.fetchTimeout)
	defer cancel()
	return a.parser.ParseURLWithContext(feedURL, fetchCtx)
}

// isRelevant reports whether an entry matches the keyword allow-list. An
// empty allow-list accepts everything.
func (a *FeedAdapter) isRelevant(entry *gofeed.Item) bool {
	if len(a.keywords) == 0 {
		return true
	}
	text := strings.ToLower(entry.Title + " " + entryDescription(entry))
	for _, keyword := range a.keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

func entryTime(entry *gofeed.Item) *time.Time {
	if entry.PublishedParsed != nil {
		return entry.PublishedParsed
	}
	return entry.UpdatedParsed
}

func entryDescription(entry *gofeed.Item) string {
	if entry.Description != "" {
		return entry.Description
	}
	return entry.Content
}
