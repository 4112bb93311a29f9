package config

import (
	"strconv"
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Store backends.
const (
	BackendFile = "file"
	BackendS3   = "s3"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	GitHubToken string
	SlackMode   bool
	DebugMode   bool
	CacheFile   string
	CacheTTL    time.Duration
	NoCache     bool

	APIURL         string
	Language       string
	Period         string
	FallbackSearch bool

	MaxTotal          int
	RawMaxItems       int
	RawMaxDays        int
	ProcessedMaxItems int
	StageTimeout      time.Duration

	StoreBackend string
	DataDir      string
	S3Bucket     string
	S3ObjectKey  string
	S3Prefix     string
	AWSRegion    string

	ListenAddr         string
	FullUpdateSchedule string
	CleanupSchedule    string
}

var defaults = map[string]any{
	"CACHE_FILE":           "/tmp/gh-trending-cache.gob",
	"CACHE_TTL":            "30m",
	"TRENDING_API_URL":     "https://gh-trending-api.herokuapp.com",
	"TRENDING_PERIOD":      "weekly",
	"FALLBACK_SEARCH":      "true",
	"MAX_TOTAL":            100,
	"RAW_MAX_ITEMS":        200,
	"RAW_MAX_DAYS":         30,
	"PROCESSED_MAX_ITEMS":  50,
	"STAGE_TIMEOUT":        "5m",
	"STORE_BACKEND":        BackendFile,
	"DATA_DIR":             "data",
	"S3_PREFIX":            "",
	"LISTEN_ADDR":          ":8080",
	"FULL_UPDATE_SCHEDULE": "@hourly",
	"CLEANUP_SCHEDULE":     "0 2 * * *",
}

// lambdaDefaults override defaults when LAMBDA_TASK_ROOT is set. Only /tmp
// is writable there.
var lambdaDefaults = map[string]any{
	"STORE_BACKEND": BackendS3,
	"DATA_DIR":      "/tmp/gh-trending",
}

// FromEnvironment creates a Config from environment variables. Values in a
// .env file in the working directory are loaded first; variables already set
// in the environment win.
func FromEnvironment() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	if v.GetString("LAMBDA_TASK_ROOT") != "" {
		for k, d := range lambdaDefaults {
			v.SetDefault(k, d)
		}
	}

	cfg := Config{
		GitHubToken: v.GetString("GITHUB_TOKEN"),
		SlackMode:   parseBool(v.GetString("SLACK_MODE")),
		DebugMode:   parseBool(v.GetString("DEBUG")),
		CacheFile:   v.GetString("CACHE_FILE"),

		APIURL:         v.GetString("TRENDING_API_URL"),
		Language:       v.GetString("TRENDING_LANGUAGE"),
		Period:         strings.ToLower(v.GetString("TRENDING_PERIOD")),
		FallbackSearch: parseBool(v.GetString("FALLBACK_SEARCH")),

		StoreBackend: strings.ToLower(v.GetString("STORE_BACKEND")),
		DataDir:      v.GetString("DATA_DIR"),
		S3Bucket:     v.GetString("S3_BUCKET_NAME"),
		S3ObjectKey:  v.GetString("S3_OBJECT_KEY"),
		S3Prefix:     v.GetString("S3_PREFIX"),
		AWSRegion:    v.GetString("AWS_REGION"),

		ListenAddr:         v.GetString("LISTEN_ADDR"),
		FullUpdateSchedule: v.GetString("FULL_UPDATE_SCHEDULE"),
		CleanupSchedule:    v.GetString("CLEANUP_SCHEDULE"),
	}

	var errs error
	ints := []struct {
		key string
		dst *int
	}{
		{"MAX_TOTAL", &cfg.MaxTotal},
		{"RAW_MAX_ITEMS", &cfg.RawMaxItems},
		{"RAW_MAX_DAYS", &cfg.RawMaxDays},
		{"PROCESSED_MAX_ITEMS", &cfg.ProcessedMaxItems},
	}
	for _, f := range ints {
		n, err := cast.ToIntE(strings.TrimSpace(v.GetString(f.key)))
		if err != nil {
			errs = errors.Append(errs, errors.Errorf("%s: invalid integer %q", f.key, v.GetString(f.key)))
			continue
		}
		*f.dst = n
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"CACHE_TTL", &cfg.CacheTTL},
		{"STAGE_TIMEOUT", &cfg.StageTimeout},
	}
	for _, f := range durations {
		d, err := parseDuration(v.GetString(f.key))
		if err != nil {
			errs = errors.Append(errs, errors.Wrapf(err, "%s", f.key))
			continue
		}
		*f.dst = d
	}

	return cfg, errs
}

// Validate checks the values that cannot be defaulted.
func (c Config) Validate() error {
	switch c.Period {
	case "daily", "weekly", "monthly":
	default:
		return errors.Errorf("TRENDING_PERIOD must be daily, weekly or monthly, got %q", c.Period)
	}
	caps := []struct {
		name string
		n    int
	}{
		{"MAX_TOTAL", c.MaxTotal},
		{"RAW_MAX_ITEMS", c.RawMaxItems},
		{"RAW_MAX_DAYS", c.RawMaxDays},
		{"PROCESSED_MAX_ITEMS", c.ProcessedMaxItems},
	}
	for _, f := range caps {
		if f.n < 0 {
			return errors.Errorf("%s must not be negative, got %d", f.name, f.n)
		}
	}
	if c.StageTimeout <= 0 {
		return errors.New("STAGE_TIMEOUT must be positive")
	}
	switch c.StoreBackend {
	case BackendFile:
		if c.DataDir == "" {
			return errors.New("DATA_DIR must be set for the file store")
		}
	case BackendS3:
		if c.S3Bucket == "" {
			return errors.New("S3_BUCKET_NAME must be set for the s3 store")
		}
	default:
		return errors.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendFile, BackendS3, c.StoreBackend)
	}
	return nil
}

// parseBool treats any non-empty value other than false or 0 as true.
func parseBool(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && strings.ToLower(s) != "false" && s != "0"
}

// parseDuration accepts Go durations and bare numbers of seconds.
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, errors.Errorf("invalid duration %q", s)
	}
	return d, nil
}
