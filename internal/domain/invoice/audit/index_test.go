package audit

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/invoice-extractor/internal/domain/invoice/record"
)

func sampleTables() record.Tables {
	siigo := record.NewHeader("siigo-fe1234.pdf").
		WithMethod("SIIGO", "Reglas SIIGO").
		WithCountry("CO").
		WithSeller("DISTRIBUIDORA ANDINA S.A.S.")
	taller := record.NewHeader("taller.pdf").
		WithMethod(record.MethodGeneric, "Baja - parser generico").
		WithSeller("TALLER MECANICO LOS PINOS S.R.L.")

	return record.Tables{
		Headers: []record.InvoiceHeader{siigo, taller},
		Audit: []record.AuditRecord{
			{DocumentID: "siigo-fe1234.pdf", TextLength: 44, Text: "Cemento gris 50kg Varilla corrugada 3/8"},
			{DocumentID: "taller.pdf", TextLength: 36, Text: "Cambio de aceite Filtro de aire"},
		},
	}
}

func TestIndex_InMemory(t *testing.T) {
	ix, err := NewIndex("")
	require.NoError(t, err)
	defer ix.Close()

	require.NoError(t, ix.IndexTables("run-1", sampleTables()))

	count, err := ix.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)

	t.Run("match on text", func(t *testing.T) {
		hits, err := ix.Search("aceite", 10)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, "taller.pdf", hits[0].Document.ID)
		assert.Equal(t, record.MethodGeneric, hits[0].Document.Method)
		assert.Equal(t, "run-1", hits[0].Document.RunID)
		assert.InDelta(t, 36, hits[0].Document.TextLength, 1e-9)
	})

	t.Run("typo tolerance", func(t *testing.T) {
		hits, err := ix.Search("cemeto", 10)
		require.NoError(t, err)
		require.NotEmpty(t, hits)
		assert.Equal(t, "siigo-fe1234.pdf", hits[0].Document.ID)
	})

	t.Run("by method", func(t *testing.T) {
		hits, err := ix.ByMethod("SIIGO", 10)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, "DISTRIBUIDORA ANDINA S.A.S.", hits[0].Document.Seller)
		assert.Equal(t, "CO", hits[0].Document.Country)
	})

	t.Run("query string", func(t *testing.T) {
		hits, err := ix.SearchQuery("+method:generic filtro", 10)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, "taller.pdf", hits[0].Document.ID)
	})

	t.Run("no hits", func(t *testing.T) {
		hits, err := ix.Search("xylofono", 0)
		require.NoError(t, err)
		assert.Empty(t, hits)
	})
}

func TestIndex_ReindexReplaces(t *testing.T) {
	ix, err := NewIndex("")
	require.NoError(t, err)
	defer ix.Close()

	require.NoError(t, ix.IndexTables("run-1", sampleTables()))
	require.NoError(t, ix.IndexTables("run-2", sampleTables()))

	count, err := ix.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)

	hits, err := ix.Search("aceite", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "run-2", hits[0].Document.RunID)
}

func TestIndex_NoAuditRows(t *testing.T) {
	ix, err := NewIndex("")
	require.NoError(t, err)
	defer ix.Close()

	tables := sampleTables()
	tables.Audit = nil
	require.NoError(t, ix.IndexTables("run-1", tables))

	count, err := ix.DocumentCount()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestIndex_Persistent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit", "index.bleve")

	ix, err := NewIndex(path)
	require.NoError(t, err)
	require.NoError(t, ix.IndexTables("run-1", sampleTables()))
	require.NoError(t, ix.Close())

	reopened, err := NewIndex(path)
	require.NoError(t, err)
	defer reopened.Close()

	count, err := reopened.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
}
