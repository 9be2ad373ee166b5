// Package infovis holds the tabular data modules: a table source and a
// scatterplot matrix renderer reporting what it would draw.
package infovis

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chewxy/math32"
)

// ErrMalformedTable marks CSV input that cannot be turned into a table.
var ErrMalformedTable = errors.New("malformed table")

// Column describes one table column.
type Column struct {
	Name string
	Min  float32
	Max  float32
}

// Table is a row-major float table.
type Table struct {
	Columns []Column
	Rows    int
	Values  []float32
}

// NewTable builds a table from rows and computes the column ranges. Every
// row must have len(names) values.
func NewTable(names []string, rows [][]float32) (*Table, error) {
	t := &Table{Rows: len(rows), Values: make([]float32, 0, len(rows)*len(names))}
	for _, name := range names {
		t.Columns = append(t.Columns, Column{Name: name, Min: math32.Inf(1), Max: math32.Inf(-1)})
	}
	for i, row := range rows {
		if len(row) != len(names) {
			return nil, fmt.Errorf("%w: row %d has %d values, expected %d", ErrMalformedTable, i, len(row), len(names))
		}
		for c, v := range row {
			t.Columns[c].Min = min(t.Columns[c].Min, v)
			t.Columns[c].Max = max(t.Columns[c].Max, v)
		}
		t.Values = append(t.Values, row...)
	}
	if t.Rows == 0 {
		for c := range t.Columns {
			t.Columns[c].Min, t.Columns[c].Max = 0, 0
		}
	}
	return t, nil
}

func (t *Table) ColumnCount() int { return len(t.Columns) }

// Value returns the cell at row, col.
func (t *Table) Value(row, col int) float32 { return t.Values[row*len(t.Columns)+col] }

// ColumnIndex resolves a column name, falling back to def.
func (t *Table) ColumnIndex(name string, def int) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return def
}

// ColumnNames lists the column names in order.
func (t *Table) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// ReadCSV reads a table whose first record holds the column names and
// whose remaining records are numbers.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.Comment = '#'
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: missing header", ErrMalformedTable)
		}
		return nil, fmt.Errorf("%w: %w", ErrMalformedTable, err)
	}
	for i, name := range header {
		header[i] = strings.TrimSpace(name)
	}

	var rows [][]float32
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedTable, err)
		}
		row := make([]float32, len(rec))
		for i, field := range rec {
			f, err := strconv.ParseFloat(strings.TrimSpace(field), 32)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d, column '%s': %w", ErrMalformedTable, line, header[i], err)
			}
			row[i] = float32(f)
		}
		rows = append(rows, row)
	}
	return NewTable(header, rows)
}
