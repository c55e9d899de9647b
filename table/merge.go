package table

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var ErrNotNumeric = errors.New("column label does not start with a number")

// FromRows stacks rows into one table (an outer concatenation): the columns
// are the union of every row's metrics in first-seen order, and a row missing
// a metric that another row carries keeps a missing cell for it.
func FromRows(rows ...Row) (*Table, error) {
	t := New()
	for _, r := range rows {
		if err := t.AppendRow(r); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// Join places the columns of tables side by side, matching rows by label (an
// outer join). Rows appear in first-seen order across tables in argument
// order. Columns keep the order of their table and tables keep argument order;
// tables marked NumericColumns are sorted by SortColumnsNumeric first. A
// column label may only be contributed by one table.
func Join(tables ...*Table) (*Table, error) {
	out := New()

	for _, t := range tables {
		cols := t.columns
		if t.NumericColumns {
			sorted, err := numericOrder(t.columns)
			if err != nil {
				return nil, err
			}
			cols = sorted
		}

		for _, c := range cols {
			if out.HasColumn(c) {
				return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c)
			}
			out.AddColumn(c)
		}

		for _, r := range t.index {
			out.AddRow(r)
		}

		for r, row := range t.cells {
			for c, v := range row {
				out.Set(r, c, v)
			}
		}
	}

	return out, nil
}

// SortColumnsNumeric orders the columns ascending by the number that leads
// each label (the text before the first '-'), so that "2-9" precedes "10-19".
// Labels with the same leading number keep their relative order.
func (t *Table) SortColumnsNumeric() error {
	sorted, err := numericOrder(t.columns)
	if err != nil {
		return err
	}

	t.columns = sorted
	for i, c := range t.columns {
		t.colPos[c] = i
	}
	t.NumericColumns = true

	return nil
}

func numericOrder(labels []string) ([]string, error) {
	keys := make(map[string]float64, len(labels))
	for _, label := range labels {
		key, err := LeadingNumber(label)
		if err != nil {
			return nil, err
		}
		keys[label] = key
	}

	out := append([]string(nil), labels...)
	sort.SliceStable(out, func(i, j int) bool {
		return keys[out[i]] < keys[out[j]]
	})

	return out, nil
}

// LeadingNumber parses the numeric token that starts a range label such as
// "10-19" or "7".
func LeadingNumber(label string) (float64, error) {
	token := strings.TrimSpace(strings.SplitN(label, "-", 2)[0])

	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNotNumeric, label)
	}

	return v, nil
}
