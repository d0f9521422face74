package report

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/invoice-extractor/internal/domain/invoice/record"
)

func sampleTables(withAudit bool) record.Tables {
	h := record.NewHeader("navatec-4503.pdf").WithMethod("NAVATEC", "Reglas NAVATEC").WithCurrency("CRC", "₡")
	h.InvoiceNumber = "4503"
	h.Total = record.Float(837669.95)

	line := record.NewLine(h)
	line.LineNumber = "001"
	line.Description = "EL COCO ALAJUELA"
	line.Total = record.Float(837669.95)

	failed := record.ErrorHeader("broken.pdf", assert.AnError)

	tables := record.Tables{
		Headers: []record.InvoiceHeader{h, failed},
		Lines:   []record.LineItem{record.ErrorPlaceholder(failed, assert.AnError), line},
	}
	if withAudit {
		tables.Audit = []record.AuditRecord{
			{DocumentID: "navatec-4503.pdf", TextLength: 12, Text: "Factura 4503"},
			{DocumentID: "broken.pdf", TextLength: 0, Text: ""},
		}
	}
	return tables
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"xlsx", FormatXLSX, false},
		{" XLSX ", FormatXLSX, false},
		{"excel", FormatXLSX, false},
		{"csv", FormatCSV, false},
		{"pdf", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleTables(true)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetHeaders, SheetLines, SheetAudit}, f.GetSheetList())

	t.Run("headers sheet", func(t *testing.T) {
		rows, err := f.GetRows(SheetHeaders)
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, record.HeaderColumns, rows[0])
		assert.Equal(t, "navatec-4503.pdf", rows[1][0])
		assert.Equal(t, "4503", rows[1][8])

		total, err := f.GetCellValue(SheetHeaders, "S2")
		require.NoError(t, err)
		v, err := strconv.ParseFloat(total, 64)
		require.NoError(t, err)
		assert.InDelta(t, 837669.95, v, 1e-6)

		method, err := f.GetCellValue(SheetHeaders, "AD3")
		require.NoError(t, err)
		assert.Equal(t, record.MethodError, method)
	})

	t.Run("lines sheet", func(t *testing.T) {
		rows, err := f.GetRows(SheetLines)
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, record.LineColumns, rows[0])
		raw, err := f.GetCellValue(SheetLines, "Q2")
		require.NoError(t, err)
		assert.Equal(t, record.ErrorMarkerPrefix+assert.AnError.Error(), raw)
	})

	t.Run("audit sheet", func(t *testing.T) {
		rows, err := f.GetRows(SheetAudit)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(rows), 2)
		assert.Equal(t, record.AuditColumns, rows[0])
		assert.Equal(t, "Factura 4503", rows[1][2])
	})
}

func TestWriteXLSX_NoAuditSheetWhenDisabled(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleTables(false)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{SheetHeaders, SheetLines}, f.GetSheetList())
}

func TestWriteXLSX_EmptyTablesKeepColumns(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, record.Tables{}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetLines)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, record.LineColumns, rows[0])
}

func TestWriteCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	paths, err := WriteCSV(dir, sampleTables(true))
	require.NoError(t, err)
	require.Len(t, paths, 3)
	assert.Equal(t, filepath.Join(dir, "facturas.csv"), paths[0])

	readAll := func(name string) [][]string {
		t.Helper()
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
		require.NoError(t, err)
		return rows
	}

	headers := readAll("facturas.csv")
	require.Len(t, headers, 3)
	assert.Equal(t, record.HeaderColumns, headers[0])
	assert.Equal(t, "4503", headers[1][8])
	assert.Empty(t, headers[1][16], "missing subtotal stays blank")
	v, err := strconv.ParseFloat(headers[1][18], 64)
	require.NoError(t, err)
	assert.InDelta(t, 837669.95, v, 1e-6)
	assert.Equal(t, record.MethodError, headers[2][29])

	lines := readAll("lineas.csv")
	require.Len(t, lines, 3)
	assert.Equal(t, record.LineColumns, lines[0])
	assert.Equal(t, "001", lines[2][2])

	audit := readAll("auditoria.csv")
	assert.Equal(t, record.AuditColumns, audit[0])
}

func TestRender(t *testing.T) {
	t.Run("csv without audit", func(t *testing.T) {
		files, err := Render(FormatCSV, sampleTables(false))
		require.NoError(t, err)
		assert.Len(t, files, 2)
		assert.Contains(t, files, "facturas.csv")
		assert.Contains(t, files, "lineas.csv")
	})

	t.Run("xlsx", func(t *testing.T) {
		files, err := Render(FormatXLSX, sampleTables(false))
		require.NoError(t, err)
		require.Contains(t, files, "facturas.xlsx")
		assert.NotEmpty(t, files["facturas.xlsx"])
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := Render("ods", sampleTables(false))
		assert.ErrorIs(t, err, ErrUnknownFormat)
	})
}
