package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)

	c.normalizeDiscovery()
	c.normalizeNotifications()
	c.normalizeSchedule()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeDiscovery() {
	if len(c.Discovery.FeedURLs) == 0 {
		c.Discovery.FeedURLs = append([]string{}, defaultFeedURLs...)
	}
	urls := make([]string, 0, len(c.Discovery.FeedURLs))
	seen := make(map[string]struct{}, len(c.Discovery.FeedURLs))
	for _, url := range c.Discovery.FeedURLs {
		trimmed := strings.TrimSpace(url)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		urls = append(urls, trimmed)
	}
	c.Discovery.FeedURLs = urls

	if len(c.Discovery.Keywords) == 0 {
		c.Discovery.Keywords = append([]string{}, defaultKeywords...)
	}
	keywords := make([]string, 0, len(c.Discovery.Keywords))
	for _, keyword := range c.Discovery.Keywords {
		normalized := strings.ToLower(strings.TrimSpace(keyword))
		if normalized == "" {
			continue
		}
		keywords = append(keywords, normalized)
	}
	c.Discovery.Keywords = keywords

	if c.Discovery.LookbackDays <= 0 {
		c.Discovery.LookbackDays = defaultLookbackDays
	}
	if c.Discovery.FetchTimeoutSeconds <= 0 {
		c.Discovery.FetchTimeoutSeconds = defaultFetchTimeoutSeconds
	}
	if c.Discovery.AutoApproveThreshold <= 0 {
		c.Discovery.AutoApproveThreshold = defaultAutoApprove
	}
	if c.Discovery.HighConfidenceThreshold <= 0 {
		c.Discovery.HighConfidenceThreshold = defaultHighConfidence
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("GLEANER_NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeSchedule() {
	c.Schedule.Cron = strings.TrimSpace(c.Schedule.Cron)
	if c.Schedule.Cron == "" {
		c.Schedule.Cron = defaultScheduleCron
	}
	sources := make([]string, 0, len(c.Schedule.Sources))
	for _, source := range c.Schedule.Sources {
		normalized := strings.ToLower(strings.TrimSpace(source))
		if normalized == "" {
			continue
		}
		sources = append(sources, normalized)
	}
	c.Schedule.Sources = sources
}

func (c *Config) normalizeLogging() {
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	switch c.LogFormat {
	case "", "console":
		c.LogFormat = "console"
	case "json":
	default:
		c.LogFormat = defaultLogFormat
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
}
