package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultNormalizes(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if strings.HasPrefix(cfg.Paths.DataDir, "~") {
		t.Fatalf("expected expanded data dir, got %q", cfg.Paths.DataDir)
	}
	if cfg.Discovery.LookbackDays != 30 {
		t.Fatalf("expected 30 day lookback, got %d", cfg.Discovery.LookbackDays)
	}
	if cfg.Discovery.FetchTimeoutSeconds != 25 {
		t.Fatalf("expected 25s fetch timeout, got %d", cfg.Discovery.FetchTimeoutSeconds)
	}
}

func TestLoadParsesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
log_level = "debug"

[paths]
data_dir = "` + dir + `/data"
log_dir = "` + dir + `/logs"

[discovery]
feed_urls = ["https://example.org/feed.xml"]
keywords = ["Housing", " ROOF "]
lookback_days = 7
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists || resolved == "" {
		t.Fatal("expected config file to be found")
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected debug level, got %q", cfg.LogLevel)
	}
	if len(cfg.Discovery.FeedURLs) != 1 {
		t.Fatalf("expected one feed URL, got %v", cfg.Discovery.FeedURLs)
	}
	if cfg.Discovery.LookbackDays != 7 {
		t.Fatalf("expected 7 day lookback, got %d", cfg.Discovery.LookbackDays)
	}
	want := []string{"housing", "roof"}
	for i, keyword := range cfg.Discovery.Keywords {
		if keyword != want[i] {
			t.Fatalf("expected lowercased keyword %q, got %q", want[i], keyword)
		}
	}
}

func TestLoadRejectsInvalidFeedURL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[discovery]
feed_urls = ["not a url"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := Load(path); err == nil {
		t.Fatal("expected validation error for invalid feed URL")
	}
}

func TestValidateThresholdBounds(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	cfg.Discovery.AutoApproveThreshold = 1.5
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for out-of-range threshold")
	}
}

func TestMissingFileUsesDefaults(t *testing.T) {
	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected missing config file")
	}
	if cfg.Paths.APIBind != defaultAPIBind {
		t.Fatalf("expected default api bind, got %q", cfg.Paths.APIBind)
	}
}
