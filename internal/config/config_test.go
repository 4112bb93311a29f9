package config

import (
	"os"
	"testing"
	"time"
)

// clearEnv unsets every variable the config reads for the duration of t.
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"GITHUB_TOKEN", "SLACK_MODE", "DEBUG", "CACHE_FILE", "CACHE_TTL",
		"TRENDING_API_URL", "TRENDING_LANGUAGE", "TRENDING_PERIOD", "FALLBACK_SEARCH",
		"MAX_TOTAL", "RAW_MAX_ITEMS", "RAW_MAX_DAYS", "PROCESSED_MAX_ITEMS", "STAGE_TIMEOUT",
		"STORE_BACKEND", "DATA_DIR", "S3_BUCKET_NAME", "S3_OBJECT_KEY", "S3_PREFIX", "AWS_REGION",
		"LISTEN_ADDR", "FULL_UPDATE_SCHEDULE", "CLEANUP_SCHEDULE", "LAMBDA_TASK_ROOT",
	}
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	// Keep a .env file in a developer checkout from leaking into the tests.
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestFromEnvironment_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnvironment()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.GitHubToken != "" {
		t.Errorf("expected empty token, got %q", cfg.GitHubToken)
	}
	if cfg.SlackMode {
		t.Error("expected SlackMode false by default")
	}
	if cfg.DebugMode {
		t.Error("expected DebugMode false by default")
	}
	if cfg.CacheFile == "" {
		t.Error("expected non-empty CacheFile")
	}
	if cfg.CacheTTL != 30*time.Minute {
		t.Errorf("CacheTTL = %v, want 30m", cfg.CacheTTL)
	}
	if cfg.Period != "weekly" {
		t.Errorf("Period = %q, want weekly", cfg.Period)
	}
	if !cfg.FallbackSearch {
		t.Error("expected FallbackSearch true by default")
	}
	if cfg.MaxTotal != 100 || cfg.RawMaxItems != 200 || cfg.RawMaxDays != 30 || cfg.ProcessedMaxItems != 50 {
		t.Errorf("unexpected caps %d/%d/%d/%d", cfg.MaxTotal, cfg.RawMaxItems, cfg.RawMaxDays, cfg.ProcessedMaxItems)
	}
	if cfg.StageTimeout != 5*time.Minute {
		t.Errorf("StageTimeout = %v, want 5m", cfg.StageTimeout)
	}
	if cfg.StoreBackend != BackendFile || cfg.DataDir != "data" {
		t.Errorf("unexpected store %q at %q", cfg.StoreBackend, cfg.DataDir)
	}
	if cfg.FullUpdateSchedule != "@hourly" || cfg.CleanupSchedule != "0 2 * * *" {
		t.Errorf("unexpected schedules %q, %q", cfg.FullUpdateSchedule, cfg.CleanupSchedule)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestFromEnvironment_GitHubToken(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_TOKEN", "ghp_test123")

	cfg, err := FromEnvironment()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.GitHubToken != "ghp_test123" {
		t.Errorf("got %q, want ghp_test123", cfg.GitHubToken)
	}
}

func TestFromEnvironment_SlackMode(t *testing.T) {
	tests := []struct {
		val  string
		want bool
	}{
		{"true", true},
		{"TRUE", true},
		{"1", true},
		{"yes", true},
		{"false", false},
		{"FALSE", false},
		{"0", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run("SLACK_MODE="+tt.val, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("SLACK_MODE", tt.val)
			cfg, err := FromEnvironment()
			if err != nil {
				t.Fatal(err)
			}
			if cfg.SlackMode != tt.want {
				t.Errorf("SLACK_MODE=%q → SlackMode=%v, want %v", tt.val, cfg.SlackMode, tt.want)
			}
		})
	}
}

func TestFromEnvironment_DebugMode(t *testing.T) {
	tests := []struct {
		val  string
		want bool
	}{
		{"true", true},
		{"1", true},
		{"false", false},
		{"False", false},
		{"0", false},
	}
	for _, tt := range tests {
		t.Run("DEBUG="+tt.val, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("DEBUG", tt.val)
			cfg, err := FromEnvironment()
			if err != nil {
				t.Fatal(err)
			}
			if cfg.DebugMode != tt.want {
				t.Errorf("DEBUG=%q → DebugMode=%v, want %v", tt.val, cfg.DebugMode, tt.want)
			}
		})
	}
}

func TestFromEnvironment_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("TRENDING_PERIOD", "Daily")
	t.Setenv("TRENDING_LANGUAGE", "go")
	t.Setenv("MAX_TOTAL", " 250 ")
	t.Setenv("STAGE_TIMEOUT", "300")
	t.Setenv("CACHE_TTL", "1h30m")
	t.Setenv("FALLBACK_SEARCH", "0")
	t.Setenv("STORE_BACKEND", "S3")
	t.Setenv("S3_BUCKET_NAME", "bucket")

	cfg, err := FromEnvironment()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Period != "daily" || cfg.Language != "go" {
		t.Errorf("unexpected period/language %q/%q", cfg.Period, cfg.Language)
	}
	if cfg.MaxTotal != 250 {
		t.Errorf("MaxTotal = %d, want 250", cfg.MaxTotal)
	}
	if cfg.StageTimeout != 300*time.Second {
		t.Errorf("StageTimeout = %v, want 5m0s", cfg.StageTimeout)
	}
	if cfg.CacheTTL != 90*time.Minute {
		t.Errorf("CacheTTL = %v, want 1h30m", cfg.CacheTTL)
	}
	if cfg.FallbackSearch {
		t.Error("expected FallbackSearch disabled")
	}
	if cfg.StoreBackend != BackendS3 {
		t.Errorf("StoreBackend = %q", cfg.StoreBackend)
	}
	if err := cfg.Validate(); err != nil {
		t.Error(err)
	}
}

func TestFromEnvironment_InvalidNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAX_TOTAL", "lots")
	t.Setenv("CACHE_TTL", "soon")

	if _, err := FromEnvironment(); err == nil {
		t.Fatal("expected error for invalid values")
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{
		Period:       "weekly",
		StageTimeout: time.Minute,
		StoreBackend: BackendFile,
		DataDir:      "data",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"bad period", func(c *Config) { c.Period = "yearly" }},
		{"negative cap", func(c *Config) { c.RawMaxItems = -1 }},
		{"zero timeout", func(c *Config) { c.StageTimeout = 0 }},
		{"unknown backend", func(c *Config) { c.StoreBackend = "ftp" }},
		{"file without dir", func(c *Config) { c.DataDir = "" }},
		{"s3 without bucket", func(c *Config) { c.StoreBackend = BackendS3 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.modify(&c)
			if err := c.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestFromEnvironment_LambdaDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("LAMBDA_TASK_ROOT", "/var/task")

	cfg, err := FromEnvironment()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.StoreBackend != BackendS3 {
		t.Errorf("StoreBackend = %q, want %q", cfg.StoreBackend, BackendS3)
	}
	if cfg.DataDir != "/tmp/gh-trending" {
		t.Errorf("DataDir = %q, want /tmp/gh-trending", cfg.DataDir)
	}

	t.Setenv("STORE_BACKEND", "file")
	cfg, err = FromEnvironment()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.StoreBackend != BackendFile {
		t.Errorf("explicit STORE_BACKEND ignored, got %q", cfg.StoreBackend)
	}
}
