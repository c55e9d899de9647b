package table

import "fmt"

// Extractor turns one artifact into one labeled row. Each artifact format
// implements it, so merging and writing never depend on the input format.
type Extractor interface {
	Extract(path string) (Row, error)
}

// Collect extracts every path in order and stacks the rows. The first
// failure aborts the whole collection.
func Collect(e Extractor, paths []string) (*Table, error) {
	t := New()
	for _, p := range paths {
		r, err := e.Extract(p)
		if err != nil {
			return nil, err
		}

		if err := t.AppendRow(r); err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}

	return t, nil
}
