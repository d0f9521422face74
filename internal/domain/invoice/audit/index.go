// Package audit keeps a full-text index of the raw text behind each
// processed invoice so a reviewer can find the source of a suspicious row.
package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/FACorreiaa/invoice-extractor/internal/domain/invoice/record"
)

const defaultLimit = 10

// Document is one indexed source text.
type Document struct {
	ID            string  `json:"id"`
	RunID         string  `json:"run_id"`
	Method        string  `json:"method"` // template name, generic or ERROR
	Country       string  `json:"country"`
	Seller        string  `json:"seller"`
	InvoiceNumber string  `json:"invoice_number"`
	Text          string  `json:"text"`
	TextLength    float64 `json:"text_length"`
}

// Hit is a search result with its relevance score.
type Hit struct {
	Document Document
	Score    float64
}

// Index is a bleve index over audit documents. Safe for concurrent use.
type Index struct {
	index bleve.Index
	mu    sync.RWMutex
	path  string
}

// NewIndex opens the index at path, creating it when missing. An empty
// path gives an in-memory index.
func NewIndex(path string) (*Index, error) {
	m := buildIndexMapping()

	var (
		idx bleve.Index
		err error
	)
	switch {
	case path == "":
		idx, err = bleve.NewMemOnly(m)
	default:
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			if mkdirErr := os.MkdirAll(filepath.Dir(path), 0o755); mkdirErr != nil {
				return nil, fmt.Errorf("failed to create index directory: %w", mkdirErr)
			}
			idx, err = bleve.New(path, m)
		} else {
			idx, err = bleve.Open(path)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create/open audit index: %w", err)
	}

	return &Index{index: idx, path: path}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	text := bleve.NewTextFieldMapping()
	text.Analyzer = simple.Name

	kw := bleve.NewTextFieldMapping()
	kw.Analyzer = keyword.Name

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("run_id", kw)
	doc.AddFieldMappingsAt("method", kw)
	doc.AddFieldMappingsAt("country", kw)
	doc.AddFieldMappingsAt("invoice_number", kw)
	doc.AddFieldMappingsAt("seller", text)
	doc.AddFieldMappingsAt("text", text)
	doc.AddFieldMappingsAt("text_length", bleve.NewNumericFieldMapping())

	m := bleve.NewIndexMapping()
	m.DefaultMapping = doc
	m.DefaultAnalyzer = simple.Name
	return m
}

// IndexTables adds the audit rows of one batch. Header fields are joined in
// by document id. Re-indexing a document replaces the previous entry.
func (ix *Index) IndexTables(runID string, tables record.Tables) error {
	if len(tables.Audit) == 0 {
		return nil
	}

	headers := make(map[string]record.InvoiceHeader, len(tables.Headers))
	for _, h := range tables.Headers {
		headers[h.DocumentID] = h
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	batch := ix.index.NewBatch()
	for _, a := range tables.Audit {
		h := headers[a.DocumentID]
		doc := Document{
			ID:            a.DocumentID,
			RunID:         runID,
			Method:        h.Method,
			Country:       h.Country,
			Seller:        h.SellerName,
			InvoiceNumber: h.InvoiceNumber,
			Text:          a.Text,
			TextLength:    float64(a.TextLength),
		}
		if err := batch.Index(doc.ID, doc); err != nil {
			return fmt.Errorf("failed to index %s: %w", a.DocumentID, err)
		}
	}

	if err := ix.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to execute batch index: %w", err)
	}
	return nil
}

// Search runs a match query over the text and seller fields with one edit
// of typo tolerance.
func (ix *Index) Search(text string, limit int) ([]Hit, error) {
	q := bleve.NewMatchQuery(text)
	q.SetFuzziness(1)
	return ix.run(q, limit)
}

// SearchQuery accepts the bleve query-string syntax, e.g.
// "+method:SIIGO cemento".
func (ix *Index) SearchQuery(queryString string, limit int) ([]Hit, error) {
	return ix.run(bleve.NewQueryStringQuery(queryString), limit)
}

// ByMethod lists documents extracted with the given method.
func (ix *Index) ByMethod(method string, limit int) ([]Hit, error) {
	q := bleve.NewTermQuery(method)
	q.SetField("method")
	return ix.run(q, limit)
}

func (ix *Index) run(q query.Query, limit int) ([]Hit, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if limit <= 0 {
		limit = defaultLimit
	}

	req := bleve.NewSearchRequest(q)
	req.Size = limit
	req.Fields = []string{"*"}

	res, err := ix.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search audit index: %w", err)
	}
	return convertHits(res), nil
}

func convertHits(res *bleve.SearchResult) []Hit {
	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		doc := Document{ID: h.ID}
		doc.RunID, _ = h.Fields["run_id"].(string)
		doc.Method, _ = h.Fields["method"].(string)
		doc.Country, _ = h.Fields["country"].(string)
		doc.Seller, _ = h.Fields["seller"].(string)
		doc.InvoiceNumber, _ = h.Fields["invoice_number"].(string)
		doc.Text, _ = h.Fields["text"].(string)
		doc.TextLength, _ = h.Fields["text_length"].(float64)
		hits = append(hits, Hit{Document: doc, Score: h.Score})
	}
	return hits
}

// DocumentCount returns the number of indexed documents.
func (ix *Index) DocumentCount() (uint64, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.index.DocCount()
}

// Close closes the index.
func (ix *Index) Close() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.index != nil {
		return ix.index.Close()
	}
	return nil
}
