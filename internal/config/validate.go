package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateDiscovery(); err != nil {
		return err
	}
	if err := c.validateSchedule(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	return nil
}

func (c *Config) validateDiscovery() error {
	for _, raw := range c.Discovery.FeedURLs {
		parsed, err := url.Parse(raw)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("discovery.feed_urls: %q is not a valid URL", raw)
		}
	}
	if c.Discovery.AutoApproveThreshold < 0 || c.Discovery.AutoApproveThreshold > 1 {
		return errors.New("discovery.auto_approve_threshold must be between 0 and 1")
	}
	if c.Discovery.HighConfidenceThreshold < 0 || c.Discovery.HighConfidenceThreshold > 1 {
		return errors.New("discovery.high_confidence_threshold must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateSchedule() error {
	if !c.Schedule.Enabled {
		return nil
	}
	if strings.TrimSpace(c.Schedule.Cron) == "" {
		return errors.New("schedule.cron must be set when schedule.enabled is true")
	}
	return nil
}
