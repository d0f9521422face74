package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/invoice-extractor/internal/domain/invoice/report"
	"github.com/FACorreiaa/invoice-extractor/pkg/config"
	"github.com/FACorreiaa/invoice-extractor/pkg/storage"
)

// textLayer returns the file content as its text.
type textLayer struct{}

func (textLayer) ExtractText(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty document")
	}
	return string(data), nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	return &config.Config{
		Extraction: config.ExtractionConfig{AuditEnabled: true, AuditMaxChars: 500},
		Storage: config.StorageConfig{
			InboxPath:  filepath.Join(root, "inbox"),
			OutboxPath: filepath.Join(root, "outbox"),
		},
		Report:        config.ReportConfig{Format: "xlsx"},
		Observability: config.ObservabilityConfig{MetricsEnabled: true, LogFormat: "text"},
	}
}

func newTestDeps(t *testing.T, cfg *config.Config) *Dependencies {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	deps, err := InitDependencies(cfg, logger, textLayer{})
	require.NoError(t, err)
	t.Cleanup(deps.Cleanup)
	return deps
}

func copyFixture(t *testing.T, inbox, fixture, name string) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "internal", "domain", "invoice", "testdata", fixture))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(inbox, name), data, 0o644))
}

func TestRunner_RunInbox(t *testing.T) {
	cfg := testConfig(t)
	deps := newTestDeps(t, cfg)
	inbox := cfg.Storage.InboxPath

	copyFixture(t, inbox, "siigo.txt", "fe-1234.pdf")
	copyFixture(t, inbox, "tribucr.txt", "tribu-123.pdf")
	require.NoError(t, os.WriteFile(filepath.Join(inbox, "empty.pdf"), nil, 0o644))

	runner := NewRunner(deps, report.FormatXLSX, "", false)
	res, err := runner.RunInbox(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, res.Documents)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Reports, 1)
	assert.Contains(t, filepath.Base(res.Reports[0]), "facturas_"+res.RunID[:8])

	data, err := os.ReadFile(res.Reports[0])
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{report.SheetHeaders, report.SheetLines, report.SheetAudit}, f.GetSheetList())

	rows, err := f.GetRows(report.SheetHeaders)
	require.NoError(t, err)
	assert.Len(t, rows, 4)

	t.Run("audit rows are searchable", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, runner.Search(&out, "cemento", 5))
		assert.Contains(t, out.String(), "fe-1234.pdf")
		assert.Contains(t, out.String(), "SIIGO")
	})

	t.Run("second run skips processed documents", func(t *testing.T) {
		again, err := runner.RunInbox(context.Background())
		require.NoError(t, err)
		assert.Zero(t, again.Documents)
		assert.Empty(t, again.Reports)
	})

	t.Run("new documents are picked up", func(t *testing.T) {
		copyFixture(t, inbox, "alegra.txt", "fv-77.pdf")
		next, err := runner.RunInbox(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, next.Documents)
	})
}

func TestRunner_CSVToOutPath(t *testing.T) {
	cfg := testConfig(t)
	deps := newTestDeps(t, cfg)
	copyFixture(t, cfg.Storage.InboxPath, "generic.txt", "taller.pdf")

	out := filepath.Join(t.TempDir(), "reporte")
	runner := NewRunner(deps, report.FormatCSV, out, true)
	res, err := runner.RunInbox(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(out, "facturas.csv"),
		filepath.Join(out, "lineas.csv"),
		filepath.Join(out, "auditoria.csv"),
	}, res.Reports)

	_, err = os.Stat(filepath.Join(cfg.Storage.InboxPath, storage.ArchiveDir, "taller.pdf"))
	assert.NoError(t, err, "processed documents are archived")
}

func TestRunner_XLSXToOutPath(t *testing.T) {
	cfg := testConfig(t)
	cfg.Extraction.AuditEnabled = false
	deps := newTestDeps(t, cfg)
	copyFixture(t, cfg.Storage.InboxPath, "navatec.txt", "navatec.pdf")

	out := filepath.Join(t.TempDir(), "nested", "facturas.xlsx")
	res, err := NewRunner(deps, report.FormatXLSX, out, false).RunInbox(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{out}, res.Reports)
	assert.FileExists(t, out)
}

func TestRunner_SearchWithoutIndex(t *testing.T) {
	cfg := testConfig(t)
	cfg.Extraction.AuditEnabled = false
	deps := newTestDeps(t, cfg)

	err := NewRunner(deps, report.FormatXLSX, "", false).Search(io.Discard, "x", 1)
	assert.ErrorIs(t, err, errAuditIndexDisabled)
}

func TestInitDependencies_IssuersFile(t *testing.T) {
	cfg := testConfig(t)
	path := filepath.Join(t.TempDir(), "issuers.csv")
	require.NoError(t, os.WriteFile(path, []byte(
		"name,tax_id,country,aliases\nTALLER MECANICO LOS PINOS S.R.L.,3-102-777888,CR,LOS PINOS\n"), 0o644))
	cfg.IssuersFile = path

	deps := newTestDeps(t, cfg)
	known, ok := deps.Issuers.Identify("Cédula Jurídica: 3-102-777888")
	require.True(t, ok)
	assert.Equal(t, "CR", known.Country)

	cfg.IssuersFile = filepath.Join(t.TempDir(), "missing.csv")
	_, err := InitDependencies(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), textLayer{})
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	assert.True(t, newLogger("debug", "json").Enabled(context.Background(), slog.LevelDebug))
	assert.False(t, newLogger("warn", "text").Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, newLogger("", "").Enabled(context.Background(), slog.LevelInfo))
}

func TestParseFlags(t *testing.T) {
	cfg := testConfig(t)
	opts, err := parseFlags([]string{"-format", "csv", "-watch", "-search", "cemento"}, cfg)
	require.NoError(t, err)
	assert.Equal(t, "csv", opts.format)
	assert.True(t, opts.watch)
	assert.Equal(t, "cemento", opts.search)
	assert.Equal(t, cfg.Storage.InboxPath, opts.dir)

	_, err = parseFlags([]string{"-nope"}, cfg)
	assert.Error(t, err)
}
