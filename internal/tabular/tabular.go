// Package tabular decodes uploaded CSV and Excel files into rows keyed by column header.
package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

var (
	ErrUnsupportedFormat = errors.New("file must be CSV or XLSX")
	ErrParse             = errors.New("failed to parse file")
	ErrMissingColumn     = errors.New("missing required column")
)

type format int

const (
	formatCSV format = iota + 1
	formatXLSX
)

var extensions = map[string]format{
	".csv":  formatCSV,
	".xlsx": formatXLSX,
	".xlsm": formatXLSX,
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Row maps a column header to the cell value. Cells missing from a short
// row are absent; present cells are returned verbatim.
type Row map[string]string

// Table is a parsed file: headers in file order and the data rows below them.
// Lines[i] is the 1-based line (CSV) or sheet row (XLSX) Rows[i] came from.
type Table struct {
	Headers []string
	Rows    []Row
	Lines   []int
}

// record is one raw row of cells and the line it was read from.
type record struct {
	line  int
	cells []string
}

// IsSupported reports whether filename carries a recognized tabular extension.
func IsSupported(filename string) bool {
	_, ok := extensions[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// Parse decodes raw according to the extension of filename. The first
// non-empty record is the header row. Empty records are skipped but still
// count toward Lines.
func Parse(raw []byte, filename string) (*Table, error) {
	f, ok := extensions[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return nil, ErrUnsupportedFormat
	}

	var (
		records []record
		err     error
	)
	switch f {
	case formatCSV:
		records, err = readCSV(raw)
	case formatXLSX:
		records, err = readXLSX(raw)
	}
	if err != nil {
		return nil, err
	}
	// Spreadsheets often carry stray cells right of the data; CSV rows wider
	// than the header are malformed.
	return build(records, f == formatCSV)
}

// HasColumn reports whether name is one of the headers.
func (t *Table) HasColumn(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// Require fails with ErrMissingColumn naming every absent column.
func (t *Table) Require(names ...string) error {
	var missing []string
	for _, n := range names {
		if !t.HasColumn(n) {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}

func readCSV(raw []byte) ([]record, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("%w: content is not valid UTF-8", ErrParse)
	}

	r := csv.NewReader(bytes.NewReader(raw))
	r.FieldsPerRecord = -1

	var records []record
	for {
		cells, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		line, _ := r.FieldPos(0)
		records = append(records, record{line: line, cells: cells})
	}
	return records, nil
}

func readXLSX(raw []byte) ([]record, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrParse)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	// GetRows keeps blank rows inside the used range, so the index is the sheet row.
	records := make([]record, len(rows))
	for i, cells := range rows {
		records[i] = record{line: i + 1, cells: cells}
	}
	return records, nil
}

func build(records []record, strictWidth bool) (*Table, error) {
	for len(records) > 0 && len(records[0].cells) == 0 {
		records = records[1:]
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: file is empty", ErrParse)
	}

	header := records[0].cells
	headers := make([]string, 0, len(header))
	// index of each kept header in the record; blank headers are dropped
	positions := make([]int, 0, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == "" {
			continue
		}
		if seen[h] {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrParse, h)
		}
		seen[h] = true
		headers = append(headers, h)
		positions = append(positions, i)
	}
	if len(headers) == 0 {
		return nil, fmt.Errorf("%w: header row is empty", ErrParse)
	}

	table := &Table{Headers: headers}
	for _, rec := range records[1:] {
		if len(rec.cells) == 0 {
			continue
		}
		if strictWidth && len(rec.cells) > len(header) {
			return nil, fmt.Errorf("%w: line %d: expected %d fields, saw %d", ErrParse, rec.line, len(header), len(rec.cells))
		}
		row := make(Row, len(headers))
		for j, pos := range positions {
			if pos < len(rec.cells) {
				row[headers[j]] = rec.cells[pos]
			}
		}
		table.Rows = append(table.Rows, row)
		table.Lines = append(table.Lines, rec.line)
	}

	return table, nil
}
