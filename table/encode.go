package table

import (
	"encoding/csv"
	"io"

	"github.com/carbocation/pfx"
	"github.com/carbocation/qcreport"
)

const (
	// Delim is the character used to delimit the output
	Delim = '\t'
)

// Encoder writes tables as tab-separated text: a header line of column labels
// after IndexLabel, then one line per row in table order.
//
// Quoting follows encoding/csv, so the output reads back with a tab
// csv.Reader: a field is wrapped in double quotes (inner quotes doubled) when
// it contains a tab, a quote, or a line break, or when it starts with a space
// or tab. A value " 12" is written as `" 12"`.
type Encoder struct {
	IndexLabel string
	Missing    Missing
}

// Encode writes t to w.
func (e Encoder) Encode(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	cw.Comma = Delim

	cols := t.columns
	if t.NumericColumns {
		sorted, err := numericOrder(cols)
		if err != nil {
			return err
		}
		cols = sorted
	}

	line := make([]string, 0, len(cols)+1)
	line = append(line, e.IndexLabel)
	line = append(line, cols...)
	if err := cw.Write(line); err != nil {
		return pfx.Err(err)
	}

	missing := e.Missing.Token()
	for _, r := range t.index {
		line = line[:0]
		line = append(line, r)
		for _, c := range cols {
			if v := t.Get(r, c); v.Valid {
				line = append(line, v.String)
			} else {
				line = append(line, missing)
			}
		}
		if err := cw.Write(line); err != nil {
			return pfx.Err(err)
		}
	}

	cw.Flush()

	return pfx.Err(cw.Error())
}

// WriteFile encodes t to path through store. Nothing appears at path unless
// the whole table was written.
func (e Encoder) WriteFile(store qcreport.Store, path string, t *Table) error {
	return store.WriteAtomic(path, func(w io.Writer) error {
		return e.Encode(w, t)
	})
}
