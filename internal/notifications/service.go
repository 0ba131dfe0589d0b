package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gleaner/internal/config"
	"gleaner/internal/ledger"
)

const userAgent = "Gleaner-Go/0.1.0"

// UrgentGrant pairs a pending grant with the days left before its deadline.
type UrgentGrant struct {
	Grant         *ledger.Grant
	DaysRemaining int
}

// Service defines the notification surface used after a discovery run.
// Delivery is fire-and-forget: a failed notification never changes run state.
type Service interface {
	NotifyDiscoverySummary(ctx context.Context, run *ledger.Run, highConfidence []*ledger.Grant, urgent []UrgentGrant) error
	NotifyRunFailed(ctx context.Context, run *ledger.Run) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyDiscoverySummary(ctx context.Context, run *ledger.Run, highConfidence []*ledger.Grant, urgent []UrgentGrant) error {
	var builder strings.Builder
	fmt.Fprintf(&builder, "Discovery run complete: %d new, %d duplicates, %d sources checked",
		run.GrantsDiscovered, run.DuplicatesFound, run.SourcesChecked)
	if run.Errors > 0 {
		fmt.Fprintf(&builder, " (%d errors)", run.Errors)
	}

	if len(highConfidence) > 0 {
		builder.WriteString("\n\nHigh confidence:")
		for _, grant := range highConfidence {
			fmt.Fprintf(&builder, "\n- %s (%.0f%%)", grant.Name, grant.ConfidenceScore*100)
		}
	}
	if len(urgent) > 0 {
		builder.WriteString("\n\nDeadlines approaching:")
		for _, item := range urgent {
			fmt.Fprintf(&builder, "\n- %s: %s (%d days)",
				item.Grant.Name, item.Grant.Deadline, item.DaysRemaining)
		}
	}

	data := payload{
		title:   "Gleaner - Grants Discovered",
		message: builder.String(),
		tags:    []string{"gleaner", "discovery", "completed"},
	}
	if len(urgent) > 0 {
		data.priority = "high"
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRunFailed(ctx context.Context, run *ledger.Run) error {
	data := payload{
		title:    "Gleaner - Discovery Failed",
		message:  fmt.Sprintf("Discovery run %s failed before any source was checked", run.ID),
		tags:     []string{"gleaner", "discovery", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Gleaner - Test",
		message:  "Notification system test",
		tags:     []string{"gleaner", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyDiscoverySummary(context.Context, *ledger.Run, []*ledger.Grant, []UrgentGrant) error {
	return nil
}
func (noopService) NotifyRunFailed(context.Context, *ledger.Run) error { return nil }
func (noopService) TestNotification(context.Context) error             { return nil }
