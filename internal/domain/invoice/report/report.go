// Package report renders batch tables as XLSX workbooks or CSV files.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/invoice-extractor/internal/domain/invoice/record"
)

// Format is an output file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// Sheet names, also used as CSV file stems.
const (
	SheetHeaders = "Facturas"
	SheetLines   = "Lineas"
	SheetAudit   = "Auditoria"
)

// ErrUnknownFormat is returned for formats other than xlsx and csv.
var ErrUnknownFormat = errors.New("unknown report format")

// ParseFormat maps a flag or env value to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatXLSX, "excel":
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownFormat)
}

// Render returns the report files for tables keyed by file name.
func Render(format Format, tables record.Tables) (map[string][]byte, error) {
	switch format {
	case FormatXLSX:
		var buf bytes.Buffer
		if err := WriteXLSX(&buf, tables); err != nil {
			return nil, err
		}
		return map[string][]byte{strings.ToLower(SheetHeaders) + ".xlsx": buf.Bytes()}, nil
	case FormatCSV:
		return MarshalCSV(tables)
	}
	return nil, fmt.Errorf("%q: %w", format, ErrUnknownFormat)
}

type sheet struct {
	name    string
	columns []string
	widths  map[string]float64
	rows    [][]any
}

func sheetsFor(tables record.Tables) []sheet {
	headers := sheet{
		name:    SheetHeaders,
		columns: record.HeaderColumns,
		widths:  map[string]float64{"A": 28, "D": 36, "F": 36, "U": 40},
	}
	for _, h := range tables.Headers {
		headers.rows = append(headers.rows, h.Cells())
	}

	lines := sheet{
		name:    SheetLines,
		columns: record.LineColumns,
		widths:  map[string]float64{"B": 28, "E": 48, "Q": 80},
	}
	for _, l := range tables.Lines {
		lines.rows = append(lines.rows, l.Cells())
	}

	out := []sheet{headers, lines}
	if tables.Audit != nil {
		audit := sheet{
			name:    SheetAudit,
			columns: record.AuditColumns,
			widths:  map[string]float64{"A": 28, "C": 120},
		}
		for _, a := range tables.Audit {
			audit.rows = append(audit.rows, a.Cells())
		}
		out = append(out, audit)
	}
	return out
}

// WriteXLSX writes one workbook with a sheet per table. Every declared column
// is present even when no row has a value for it. The audit sheet is written
// only when tables carries an audit table.
func WriteXLSX(w io.Writer, tables record.Tables) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, s := range sheetsFor(tables) {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.name); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", s.name, err)
		}
		if err := writeSheet(f, s, bold); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write xlsx: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, s sheet, headerStyle int) error {
	header := make([]any, len(s.columns))
	for i, c := range s.columns {
		header[i] = c
	}
	if err := f.SetSheetRow(s.name, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", s.name, err)
	}
	last, _ := excelize.CoordinatesToCellName(len(s.columns), 1)
	_ = f.SetCellStyle(s.name, "A1", last, headerStyle)

	for i, row := range s.rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(s.name, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", s.name, i+2, err)
		}
	}

	for col, width := range s.widths {
		_ = f.SetColWidth(s.name, col, col, width)
	}
	_ = f.SetPanes(s.name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
	return nil
}

// MarshalCSV renders one CSV file per table, keyed by file name.
func MarshalCSV(tables record.Tables) (map[string][]byte, error) {
	files := make(map[string][]byte, 3)

	add := func(stem string, rows any) error {
		var buf bytes.Buffer
		if err := gocsv.Marshal(rows, &buf); err != nil {
			return fmt.Errorf("failed to marshal %s: %w", stem, err)
		}
		files[csvName(stem)] = buf.Bytes()
		return nil
	}

	headers := tables.Headers
	if headers == nil {
		headers = []record.InvoiceHeader{}
	}
	if err := add(SheetHeaders, &headers); err != nil {
		return nil, err
	}
	lines := tables.Lines
	if lines == nil {
		lines = []record.LineItem{}
	}
	if err := add(SheetLines, &lines); err != nil {
		return nil, err
	}
	if tables.Audit != nil {
		audit := tables.Audit
		if err := add(SheetAudit, &audit); err != nil {
			return nil, err
		}
	}
	return files, nil
}

// WriteCSV writes the CSV files into dir and returns their paths.
func WriteCSV(dir string, tables record.Tables) ([]string, error) {
	files, err := MarshalCSV(tables)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	var paths []string
	for _, stem := range []string{SheetHeaders, SheetLines, SheetAudit} {
		data, ok := files[csvName(stem)]
		if !ok {
			continue
		}
		path := filepath.Join(dir, csvName(stem))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func csvName(stem string) string {
	return strings.ToLower(stem) + ".csv"
}
