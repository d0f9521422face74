package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/invoice-extractor/internal/domain/invoice/record"
	"github.com/FACorreiaa/invoice-extractor/internal/domain/invoice/report"
	"github.com/FACorreiaa/invoice-extractor/internal/domain/invoice/service"
)

var errAuditIndexDisabled = errors.New("audit index is not configured: set SEARCH_INDEX_PATH or enable auditing")

var contentTypes = map[string]string{
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".csv":  "text/csv",
}

// RunResult summarizes one inbox run.
type RunResult struct {
	RunID     string
	Documents int
	Failed    int
	Lines     int
	Reports   []string
}

// Runner processes the inbox into reports. Documents already processed by
// this Runner are skipped on later runs unless they change.
type Runner struct {
	deps    *Dependencies
	format  report.Format
	outPath string // overrides the outbox when set
	archive bool

	mu   sync.Mutex
	seen map[string]struct{}
}

// NewRunner creates a runner writing reports in format.
func NewRunner(deps *Dependencies, format report.Format, outPath string, archive bool) *Runner {
	return &Runner{
		deps:    deps,
		format:  format,
		outPath: outPath,
		archive: archive,
		seen:    make(map[string]struct{}),
	}
}

// RunInbox processes every new document in the inbox as one batch. An
// empty inbox is not an error and produces no report.
func (r *Runner) RunInbox(ctx context.Context) (*RunResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	logger := r.deps.Logger

	files, err := r.deps.Storage.List(ctx)
	if err != nil {
		return nil, err
	}

	var (
		docs         []service.Document
		fingerprints []string
	)
	for _, f := range files {
		fp := f.Fingerprint()
		if _, done := r.seen[fp]; done {
			continue
		}
		data, err := r.deps.Storage.Read(ctx, f.Name)
		if err != nil {
			logger.Warn("failed to read document", "document", f.Name, "error", err)
			continue
		}
		docs = append(docs, service.Document{Name: f.Name, Data: data})
		fingerprints = append(fingerprints, fp)
	}

	result := &RunResult{RunID: uuid.NewString()}
	if len(docs) == 0 {
		logger.Info("no new documents in inbox", "inbox", r.deps.Storage.InboxPath())
		return result, nil
	}

	tables := r.deps.Service.ProcessBatch(ctx, docs)
	result.Documents = len(tables.Headers)
	result.Lines = len(tables.Lines)
	for _, h := range tables.Headers {
		if h.Failed() {
			result.Failed++
		}
	}

	paths, err := r.writeReports(ctx, result.RunID, tables)
	if err != nil {
		return nil, err
	}
	result.Reports = paths

	if r.deps.AuditIndex != nil && tables.Audit != nil {
		if err := r.deps.AuditIndex.IndexTables(result.RunID, tables); err != nil {
			logger.Warn("failed to index audit rows", "run_id", result.RunID, "error", err)
		}
	}

	for i, doc := range docs {
		r.seen[fingerprints[i]] = struct{}{}
		if r.archive {
			if err := r.deps.Storage.Archive(ctx, doc.Name); err != nil {
				logger.Warn("failed to archive document", "document", doc.Name, "error", err)
			}
		}
	}

	r.deps.Metrics.ObserveBatch(len(docs), time.Since(start))
	logger.Info("inbox run completed",
		"run_id", result.RunID,
		"documents", result.Documents,
		"failed", result.Failed,
		"lines", result.Lines,
		"reports", strings.Join(result.Reports, ","),
		"elapsed", time.Since(start),
	)
	return result, nil
}

// writeReports renders tables to the -out path when given, otherwise to the
// outbox with the run id in every file name.
func (r *Runner) writeReports(ctx context.Context, runID string, tables record.Tables) ([]string, error) {
	if r.outPath != "" {
		return r.writeToPath(tables)
	}

	files, err := report.Render(r.format, tables)
	if err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	paths := make([]string, 0, len(names))
	for _, name := range names {
		ext := filepath.Ext(name)
		stored := fmt.Sprintf("%s_%s%s", strings.TrimSuffix(name, ext), runID[:8], ext)
		info, err := r.deps.Storage.Write(ctx, stored, contentTypes[ext], bytes.NewReader(files[name]))
		if err != nil {
			return nil, fmt.Errorf("failed to store report: %w", err)
		}
		paths = append(paths, filepath.Join(r.deps.Storage.OutboxPath(), info.Path))
	}
	return paths, nil
}

func (r *Runner) writeToPath(tables record.Tables) ([]string, error) {
	switch r.format {
	case report.FormatCSV:
		return report.WriteCSV(r.outPath, tables)
	case report.FormatXLSX:
		if err := os.MkdirAll(filepath.Dir(r.outPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create report directory: %w", err)
		}
		f, err := os.Create(r.outPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create report: %w", err)
		}
		if err := report.WriteXLSX(f, tables); err != nil {
			f.Close()
			return nil, err
		}
		if err := f.Close(); err != nil {
			return nil, fmt.Errorf("failed to close report: %w", err)
		}
		return []string{r.outPath}, nil
	}
	return nil, fmt.Errorf("%q: %w", r.format, report.ErrUnknownFormat)
}

// Search writes audit index hits for query to w, one per line.
func (r *Runner) Search(w io.Writer, query string, limit int) error {
	if r.deps.AuditIndex == nil {
		return errAuditIndexDisabled
	}
	hits, err := r.deps.AuditIndex.Search(query, limit)
	if err != nil {
		return err
	}
	r.deps.Logger.Info("audit search", "query", query, slog.Int("hits", len(hits)))
	for _, h := range hits {
		fmt.Fprintf(w, "%.3f\t%s\t%s\t%s\t%s\n",
			h.Score, h.Document.ID, h.Document.Method, h.Document.InvoiceNumber, h.Document.Seller)
	}
	return nil
}
