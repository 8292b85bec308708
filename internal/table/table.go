// Package table is the in-memory tabular arena the pipeline operates
// on. Readers load CSV or XLSX input into a Workbook, the pipeline
// mutates cells in place, and writers serialize the result back out.
// Data rows are 1-based; the header row is held separately and is
// never addressable as row data.
package table

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Workbook is an ordered collection of sheets. A CSV file loads as a
// single-sheet workbook.
type Workbook struct {
	Sheets []*Sheet
}

// Sheet is one rectangular grid of cells under a header row.
type Sheet struct {
	Name   string
	Header []string
	rows   [][]string
}

// AddSheet appends an empty sheet and returns it.
func (w *Workbook) AddSheet(name string, header []string) *Sheet {
	s := &Sheet{Name: name, Header: header}
	w.Sheets = append(w.Sheets, s)
	return s
}

// Sheet returns the sheet with the given name, or nil.
func (w *Workbook) Sheet(name string) *Sheet {
	for _, s := range w.Sheets {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// AppendRow adds one data row, padding or truncating to the header
// width so the grid stays rectangular.
func (s *Sheet) AppendRow(cells []string) {
	row := make([]string, len(s.Header))
	copy(row, cells)
	s.rows = append(s.rows, row)
}

// NumRows is the data row count, excluding the header.
func (s *Sheet) NumRows() int { return len(s.rows) }

// NumCols is the header width.
func (s *Sheet) NumCols() int { return len(s.Header) }

// Cell returns the value at the 1-based (row, col) data position.
func (s *Sheet) Cell(row, col int) (string, error) {
	if err := s.check(row, col); err != nil {
		return "", err
	}
	return s.rows[row-1][col-1], nil
}

// SetCell overwrites the value at the 1-based (row, col) data position.
func (s *Sheet) SetCell(row, col int, value string) error {
	if err := s.check(row, col); err != nil {
		return err
	}
	s.rows[row-1][col-1] = value
	return nil
}

// BlankRow clears every cell in the 1-based data row. Rows are blanked
// rather than removed so positions recorded earlier stay valid.
func (s *Sheet) BlankRow(row int) error {
	if row < 1 || row > len(s.rows) {
		return eris.Errorf("table: row %d out of range on sheet %s", row, s.Name)
	}
	r := s.rows[row-1]
	for i := range r {
		r[i] = ""
	}
	return nil
}

// RowEmpty reports whether every cell in the 1-based data row is blank
// after trimming.
func (s *Sheet) RowEmpty(row int) bool {
	if row < 1 || row > len(s.rows) {
		return true
	}
	for _, v := range s.rows[row-1] {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Row returns a copy of the 1-based data row.
func (s *Sheet) Row(row int) []string {
	if row < 1 || row > len(s.rows) {
		return nil
	}
	out := make([]string, len(s.rows[row-1]))
	copy(out, s.rows[row-1])
	return out
}

// ColumnIndex returns the 1-based index of the named header column, or
// 0 when absent. Matching is case-insensitive on trimmed names.
func (s *Sheet) ColumnIndex(name string) int {
	for i, h := range s.Header {
		if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(name)) {
			return i + 1
		}
	}
	return 0
}

func (s *Sheet) check(row, col int) error {
	if row < 1 || row > len(s.rows) {
		return eris.Errorf("table: row %d out of range on sheet %s", row, s.Name)
	}
	if col < 1 || col > len(s.Header) {
		return eris.Errorf("table: col %d out of range on sheet %s", col, s.Name)
	}
	return nil
}
