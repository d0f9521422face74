package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config holds all application configuration
type Config struct {
	Extraction    ExtractionConfig
	Storage       StorageConfig
	Report        ReportConfig
	Watch         WatchConfig
	Observability ObservabilityConfig
	Search        SearchConfig

	// IssuersFile is an optional CSV of known sellers (name, tax_id,
	// country, aliases).
	IssuersFile string
}

type ExtractionConfig struct {
	AuditEnabled  bool
	AuditMaxChars int
}

type StorageConfig struct {
	InboxPath  string
	OutboxPath string
}

type ReportConfig struct {
	Format string
}

type WatchConfig struct {
	Enabled  bool
	Schedule string
}

type ObservabilityConfig struct {
	MetricsEnabled bool
	MetricsPort    int
	LogLevel       string
	LogFormat      string
}

type SearchConfig struct {
	// IndexPath is where the audit index lives. Empty keeps it in memory.
	IndexPath string
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first when present; variables already set in
// the environment win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Extraction: ExtractionConfig{
			AuditEnabled:  getEnvAsBool("AUDIT_ENABLED", false),
			AuditMaxChars: getEnvAsInt("AUDIT_MAX_CHARS", 5000),
		},
		Storage: StorageConfig{
			InboxPath:  getEnv("INBOX_PATH", "./data/inbox"),
			OutboxPath: getEnv("OUTBOX_PATH", "./data/outbox"),
		},
		Report: ReportConfig{
			Format: getEnv("REPORT_FORMAT", "xlsx"),
		},
		Watch: WatchConfig{
			Enabled:  getEnvAsBool("WATCH_ENABLED", false),
			Schedule: getEnv("WATCH_SCHEDULE", "*/5 * * * *"),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", false),
			MetricsPort:    getEnvAsInt("METRICS_PORT", 9090),
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			LogFormat:      getEnv("LOG_FORMAT", "text"),
		},
		Search: SearchConfig{
			IndexPath: getEnv("SEARCH_INDEX_PATH", ""),
		},
		IssuersFile: getEnv("ISSUERS_FILE", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the application cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Extraction.AuditMaxChars <= 0 {
		errs = append(errs, errors.New("AUDIT_MAX_CHARS must be positive"))
	}
	if c.Storage.InboxPath == "" {
		errs = append(errs, errors.New("INBOX_PATH is required"))
	}
	if c.Storage.OutboxPath == "" {
		errs = append(errs, errors.New("OUTBOX_PATH is required"))
	}
	switch strings.ToLower(c.Report.Format) {
	case "xlsx", "excel", "csv":
	default:
		errs = append(errs, fmt.Errorf("REPORT_FORMAT %q is not xlsx or csv", c.Report.Format))
	}
	if c.Watch.Enabled {
		if _, err := cron.ParseStandard(c.Watch.Schedule); err != nil {
			errs = append(errs, fmt.Errorf("WATCH_SCHEDULE %q: %w", c.Watch.Schedule, err))
		}
	}
	if c.Observability.MetricsEnabled && (c.Observability.MetricsPort <= 0 || c.Observability.MetricsPort > 65535) {
		errs = append(errs, fmt.Errorf("METRICS_PORT %d is out of range", c.Observability.MetricsPort))
	}
	switch strings.ToLower(c.Observability.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT %q is not text or json", c.Observability.LogFormat))
	}

	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
