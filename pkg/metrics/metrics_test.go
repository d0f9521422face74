package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.DocumentProcessed("SIIGO")
	m.DocumentProcessed("SIIGO")
	m.DocumentProcessed("generic")
	m.DocumentFailed("text")
	m.LinesExtracted("SIIGO", 3)
	m.LinesExtracted("SIIGO", 0)
	m.LineFlagged("ALEGRA")
	m.ObserveBatch(4, 120*time.Millisecond)

	assert.InDelta(t, 2, testutil.ToFloat64(m.documents.WithLabelValues("SIIGO")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.documents.WithLabelValues("generic")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.failures.WithLabelValues("text")), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(m.lines.WithLabelValues("SIIGO")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.flagged.WithLabelValues("ALEGRA")), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(m.batchDuration))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.DocumentProcessed("NAVATEC")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `invoice_documents_processed_total{method="NAVATEC"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.DocumentProcessed("SIIGO")
		m.DocumentFailed("parse")
		m.LinesExtracted("SIIGO", 2)
		m.LineFlagged("SIIGO")
		m.ObserveBatch(1, time.Second)
	})
	assert.Nil(t, m.Registry())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 404, rec.Code)
}
