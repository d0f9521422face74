// Package service assembles batches of invoice documents into report tables.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/invoice-extractor/internal/domain/invoice/normalizer"
	"github.com/FACorreiaa/invoice-extractor/internal/domain/invoice/parser"
	"github.com/FACorreiaa/invoice-extractor/internal/domain/invoice/record"
)

const tracerName = "github.com/FACorreiaa/invoice-extractor/internal/domain/invoice/service"

// DefaultAuditMaxChars caps audit text when Options leaves it unset.
const DefaultAuditMaxChars = 5000

// Extraction stages reported by ExtractionError.
const (
	StageText  = "text"
	StageParse = "parse"
)

// TextExtractor turns document bytes into text.
type TextExtractor interface {
	ExtractText(data []byte) (string, error)
}

// Document is one input file, already read into memory.
type Document struct {
	Name string
	Data []byte
}

// Options controls the audit table.
type Options struct {
	AuditEnabled  bool
	AuditMaxChars int
}

// Recorder receives per-document counters. Implemented by pkg/metrics.
type Recorder interface {
	DocumentProcessed(method string)
	DocumentFailed(stage string)
	LinesExtracted(method string, n int)
	LineFlagged(method string)
}

// ExtractionError describes a document that could not be processed.
type ExtractionError struct {
	Document string
	Stage    string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to process %s (%s): %v", e.Document, e.Stage, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Service runs the extraction pipeline over document batches. The registry
// and extractor are shared read-only, so one Service may serve concurrent
// batches.
type Service struct {
	extractor TextExtractor
	registry  *parser.Registry
	opts      Options
	metrics   Recorder
	tracer    trace.Tracer
	logger    *slog.Logger
}

// NewService creates a new assembly service. A nil logger falls back to
// slog.Default().
func NewService(extractor TextExtractor, registry *parser.Registry, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.AuditMaxChars <= 0 {
		opts.AuditMaxChars = DefaultAuditMaxChars
	}
	return &Service{
		extractor: extractor,
		registry:  registry,
		opts:      opts,
		metrics:   nopRecorder{},
		tracer:    otel.Tracer(tracerName),
		logger:    logger,
	}
}

// WithMetrics adds counters to the service.
func (s *Service) WithMetrics(r Recorder) *Service {
	if r != nil {
		s.metrics = r
	}
	return s
}

// ProcessBatch processes docs in input order. Every document contributes
// exactly one header and at least one line; failures become flagged rows.
// ctx only carries tracing spans.
func (s *Service) ProcessBatch(ctx context.Context, docs []Document) record.Tables {
	ctx, span := s.tracer.Start(ctx, "invoice.ProcessBatch",
		trace.WithAttributes(attribute.Int("invoice.documents", len(docs))))
	defer span.End()

	tables := record.Tables{
		Headers: make([]record.InvoiceHeader, 0, len(docs)),
	}
	if s.opts.AuditEnabled {
		tables.Audit = make([]record.AuditRecord, 0, len(docs))
	}

	failed := 0
	for _, doc := range docs {
		h, lines, audit := s.processDocument(ctx, doc)
		if h.Failed() {
			failed++
		}
		tables.Headers = append(tables.Headers, h)
		tables.Lines = append(tables.Lines, lines...)
		if s.opts.AuditEnabled {
			tables.Audit = append(tables.Audit, audit)
		}
	}

	SortLines(tables.Lines)

	span.SetAttributes(
		attribute.Int("invoice.lines", len(tables.Lines)),
		attribute.Int("invoice.failed", failed),
	)
	s.logger.Info("batch processed",
		"documents", len(docs),
		"lines", len(tables.Lines),
		"failed", failed,
	)
	return tables
}

func (s *Service) processDocument(ctx context.Context, doc Document) (h record.InvoiceHeader, lines []record.LineItem, audit record.AuditRecord) {
	_, span := s.tracer.Start(ctx, "invoice.ProcessDocument",
		trace.WithAttributes(attribute.String("invoice.document", doc.Name)))
	defer span.End()

	fail := func(stage string, err error) {
		extErr := &ExtractionError{Document: doc.Name, Stage: stage, Err: err}
		h = record.ErrorHeader(doc.Name, extErr.Err)
		lines = []record.LineItem{record.ErrorPlaceholder(h, extErr.Err)}
		audit = s.auditRecord(doc.Name, record.ErrorMarkerPrefix+h.Error)

		span.RecordError(extErr)
		span.SetStatus(codes.Error, stage)
		s.metrics.DocumentFailed(stage)
		s.logger.Error("failed to process document",
			"document", doc.Name,
			"stage", stage,
			"error", err,
		)
	}

	defer func() {
		if r := recover(); r != nil {
			fail(StageParse, fmt.Errorf("panic: %v", r))
		}
	}()

	raw, err := s.extractor.ExtractText(doc.Data)
	if err != nil {
		fail(StageText, err)
		return h, lines, audit
	}

	text := normalizer.Normalize(raw)
	strategy := s.registry.Select(text)
	span.SetAttributes(attribute.String("invoice.method", strategy.Name))

	h = parser.BackfillCurrency(strategy.Header(text, doc.Name), text)
	lines = strategy.Lines(text, h)
	if len(lines) == 0 {
		lines = []record.LineItem{record.NoLinesPlaceholder(h)}
	} else {
		s.metrics.LinesExtracted(strategy.Name, len(lines))
	}

	for _, l := range lines {
		if l.NeedsReview() {
			s.metrics.LineFlagged(strategy.Name)
			s.logger.Warn("line amounts do not reconcile",
				"document", doc.Name,
				"line", l.LineNumber,
				"raw", l.RawText,
			)
		}
	}

	audit = s.auditRecord(doc.Name, text)
	s.metrics.DocumentProcessed(strategy.Name)
	s.logger.Debug("document processed",
		"document", doc.Name,
		"method", strategy.Name,
		"invoice", h.InvoiceNumber,
		"lines", len(lines),
		"scanned", h.Scanned,
	)
	return h, lines, audit
}

// auditRecord keeps at most AuditMaxChars runes of text. TextLength is the
// full rune count.
func (s *Service) auditRecord(documentID, text string) record.AuditRecord {
	return record.AuditRecord{
		DocumentID: documentID,
		TextLength: utf8.RuneCountInString(text),
		Text:       Truncate(text, s.opts.AuditMaxChars),
	}
}

// Truncate returns the first max runes of s.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}

// SortLines orders lines by invoice number, document id and line number.
// The sort is stable so wrapped items and placeholders keep their relative
// order. Numeric line numbers compare by value.
func SortLines(lines []record.LineItem) {
	sort.SliceStable(lines, func(i, j int) bool {
		a, b := lines[i], lines[j]
		if a.InvoiceNumber != b.InvoiceNumber {
			return a.InvoiceNumber < b.InvoiceNumber
		}
		if a.DocumentID != b.DocumentID {
			return a.DocumentID < b.DocumentID
		}
		return lineNumberLess(a.LineNumber, b.LineNumber)
	})
}

func lineNumberLess(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return na < nb
	}
	return a < b
}

type nopRecorder struct{}

func (nopRecorder) DocumentProcessed(string)   {}
func (nopRecorder) DocumentFailed(string)      {}
func (nopRecorder) LinesExtracted(string, int) {}
func (nopRecorder) LineFlagged(string)         {}
