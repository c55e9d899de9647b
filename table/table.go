// Package table holds the sample-by-metric matrix that every report in this
// module is assembled into, and the outer-join operations that build it.
package table

import (
	"errors"
	"fmt"

	"gopkg.in/guregu/null.v3"
)

var (
	ErrDuplicateRow    = errors.New("duplicate row label")
	ErrDuplicateColumn = errors.New("duplicate column label")
)

// Value is one cell. An invalid Value is a missing observation, which is
// distinct from an empty string or zero supplied by an artifact.
type Value = null.String

// MissingValue returns the missing Value.
func MissingValue() Value {
	return null.String{}
}

// Observed wraps a string read from an artifact.
func Observed(s string) Value {
	return null.StringFrom(s)
}

// Row is everything extracted from one artifact for one sample. Metrics
// records the order in which the artifact presented its values; Values may
// hold missing entries for metrics that were requested but absent.
type Row struct {
	Sample  string
	Metrics []string
	Values  map[string]Value
}

// NewRow returns an empty row for sample.
func NewRow(sample string) Row {
	return Row{
		Sample: sample,
		Values: make(map[string]Value),
	}
}

// Set records metric for the row, keeping first-seen metric order.
func (r *Row) Set(metric string, v Value) {
	if _, exists := r.Values[metric]; !exists {
		r.Metrics = append(r.Metrics, metric)
	}
	r.Values[metric] = v
}

// Get returns the value for metric, or a missing Value.
func (r Row) Get(metric string) Value {
	return r.Values[metric]
}

// Table is a labeled two-dimensional matrix. Every (row, column) pair that was
// never set reads back as missing.
type Table struct {
	index   []string
	columns []string

	rowPos map[string]int
	colPos map[string]int
	cells  map[string]map[string]Value

	// NumericColumns declares that the columns are labeled by a leading
	// number (e.g. base ranges like "10-19") and must be ordered by it when
	// the table is joined or written.
	NumericColumns bool
}

// New returns an empty table with the given columns.
func New(columns ...string) *Table {
	t := &Table{
		rowPos: make(map[string]int),
		colPos: make(map[string]int),
		cells:  make(map[string]map[string]Value),
	}
	for _, c := range columns {
		t.AddColumn(c)
	}

	return t
}

// Index returns the row labels in order.
func (t *Table) Index() []string {
	return append([]string(nil), t.index...)
}

// Columns returns the column labels in order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.index) }

func (t *Table) HasRow(label string) bool {
	_, exists := t.rowPos[label]
	return exists
}

func (t *Table) HasColumn(label string) bool {
	_, exists := t.colPos[label]
	return exists
}

// AddRow appends a row label if it is not already present.
func (t *Table) AddRow(label string) {
	if t.HasRow(label) {
		return
	}
	t.rowPos[label] = len(t.index)
	t.index = append(t.index, label)
}

// AddColumn appends a column label if it is not already present.
func (t *Table) AddColumn(label string) {
	if t.HasColumn(label) {
		return
	}
	t.colPos[label] = len(t.columns)
	t.columns = append(t.columns, label)
}

// Set stores a cell, adding its row and column as needed.
func (t *Table) Set(row, col string, v Value) {
	t.AddRow(row)
	t.AddColumn(col)

	r, exists := t.cells[row]
	if !exists {
		r = make(map[string]Value)
		t.cells[row] = r
	}
	r[col] = v
}

// Get returns a cell, or a missing Value if it was never set.
func (t *Table) Get(row, col string) Value {
	return t.cells[row][col]
}

// Row returns the cells of one row as a Row, in column order.
func (t *Table) Row(label string) (Row, bool) {
	if !t.HasRow(label) {
		return Row{}, false
	}

	out := NewRow(label)
	for _, c := range t.columns {
		out.Set(c, t.Get(label, c))
	}

	return out, true
}

// AppendRow adds an extracted row. Its metrics become columns, appended in the
// row's own order when the table has not seen them yet. A row label may only
// be added once.
func (t *Table) AppendRow(r Row) error {
	if t.HasRow(r.Sample) {
		return fmt.Errorf("%w: %q", ErrDuplicateRow, r.Sample)
	}

	t.AddRow(r.Sample)
	for _, m := range r.Metrics {
		t.Set(r.Sample, m, r.Values[m])
	}

	return nil
}

// Transpose returns a new table whose rows are t's columns.
func (t *Table) Transpose() *Table {
	out := New(t.index...)
	for _, c := range t.columns {
		out.AddRow(c)
	}

	for r, cols := range t.cells {
		for c, v := range cols {
			out.Set(c, r, v)
		}
	}

	return out
}
