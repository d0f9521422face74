package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir switches the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir()) // no .env here

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.Extraction.AuditEnabled)
	assert.Equal(t, 5000, cfg.Extraction.AuditMaxChars)
	assert.Equal(t, "./data/inbox", cfg.Storage.InboxPath)
	assert.Equal(t, "./data/outbox", cfg.Storage.OutboxPath)
	assert.Equal(t, "xlsx", cfg.Report.Format)
	assert.False(t, cfg.Watch.Enabled)
	assert.Equal(t, "*/5 * * * *", cfg.Watch.Schedule)
	assert.Equal(t, 9090, cfg.Observability.MetricsPort)
	assert.Equal(t, "info", cfg.Observability.LogLevel)
	assert.Empty(t, cfg.Search.IndexPath)
	assert.Empty(t, cfg.IssuersFile)
}

func TestLoad_FromEnvironment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("AUDIT_ENABLED", "true")
	t.Setenv("AUDIT_MAX_CHARS", "200")
	t.Setenv("INBOX_PATH", "/srv/facturas/in")
	t.Setenv("REPORT_FORMAT", "csv")
	t.Setenv("WATCH_ENABLED", "1")
	t.Setenv("WATCH_SCHEDULE", "0 * * * *")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("ISSUERS_FILE", "issuers.csv")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Extraction.AuditEnabled)
	assert.Equal(t, 200, cfg.Extraction.AuditMaxChars)
	assert.Equal(t, "/srv/facturas/in", cfg.Storage.InboxPath)
	assert.Equal(t, "csv", cfg.Report.Format)
	assert.True(t, cfg.Watch.Enabled)
	assert.Equal(t, "0 * * * *", cfg.Watch.Schedule)
	assert.Equal(t, "json", cfg.Observability.LogFormat)
	assert.Equal(t, "issuers.csv", cfg.IssuersFile)
}

func TestLoad_MalformedNumbersFallBack(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("AUDIT_MAX_CHARS", "lots")
	t.Setenv("AUDIT_ENABLED", "maybe")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Extraction.AuditMaxChars)
	assert.False(t, cfg.Extraction.AuditEnabled)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Extraction:    ExtractionConfig{AuditMaxChars: 100},
			Storage:       StorageConfig{InboxPath: "in", OutboxPath: "out"},
			Report:        ReportConfig{Format: "xlsx"},
			Watch:         WatchConfig{Schedule: "*/5 * * * *"},
			Observability: ObservabilityConfig{MetricsPort: 9090, LogFormat: "text"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"audit cap", func(c *Config) { c.Extraction.AuditMaxChars = 0 }, "AUDIT_MAX_CHARS"},
		{"format", func(c *Config) { c.Report.Format = "ods" }, "REPORT_FORMAT"},
		{"schedule only checked when watching", func(c *Config) { c.Watch.Schedule = "never" }, ""},
		{"bad schedule", func(c *Config) { c.Watch.Enabled = true; c.Watch.Schedule = "never" }, "WATCH_SCHEDULE"},
		{"metrics port", func(c *Config) {
			c.Observability.MetricsEnabled = true
			c.Observability.MetricsPort = 70000
		}, "METRICS_PORT"},
		{"log format", func(c *Config) { c.Observability.LogFormat = "xml" }, "LOG_FORMAT"},
		{"inbox", func(c *Config) { c.Storage.InboxPath = "" }, "INBOX_PATH"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
