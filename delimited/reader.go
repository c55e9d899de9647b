// Package delimited merges per-sample two-column result tables (a header
// line, then label/value lines) into one label-by-sample table.
package delimited

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/carbocation/qcreport"
	"github.com/carbocation/qcreport/table"
)

var ErrMalformed = errors.New("malformed result table")

// DefaultMinSize is the largest file size, in bytes, that still counts as "no
// results".
const DefaultMinSize = 1

// Reader finds every file in Dir ending with Suffix and reads it as one
// sample's column of results.
type Reader struct {
	Dir    string
	Suffix string

	// Delimiter separates the fields; 0 means tab and
	// qcreport.DetectDelimiter sniffs each file.
	Delimiter rune

	// Files no larger than MinSize bytes are skipped; 0 means DefaultMinSize.
	MinSize int64

	Store qcreport.Store
}

func (r Reader) minSize() int64 {
	if r.MinSize <= 0 {
		return DefaultMinSize
	}
	return r.MinSize
}

// Paths lists the result files, sorted by full path, leaving out files too
// small to hold any result. Those come from stages that produced nothing,
// which is not the same as producing zeros.
func (r Reader) Paths() ([]string, error) {
	entries, err := r.Store.List(r.Dir)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Dir || !strings.HasSuffix(e.Name, r.Suffix) || strings.HasPrefix(e.Name, ".") {
			continue
		}
		if e.Size <= r.minSize() {
			log.Printf("Skipping %s: %d bytes is too small to hold results\n", e.Path, e.Size)
			continue
		}
		out = append(out, e.Path)
	}

	return out, nil
}

// SampleName is the file name with the suffix removed.
func (r Reader) SampleName(path string) string {
	return strings.TrimSuffix(qcreport.BaseName(path), r.Suffix)
}

// ArtifactPath is the inverse of SampleName.
func (r Reader) ArtifactPath(sample string) string {
	return qcreport.JoinPath(r.Dir, sample+r.Suffix)
}

// Extract reads one result file. The header line is discarded; each further
// line contributes its first field as the label and its second as the value.
func (r Reader) Extract(path string) (table.Row, error) {
	content, err := r.Store.ReadAll(path)
	if err != nil {
		return table.Row{}, err
	}

	delim := r.Delimiter
	switch delim {
	case 0:
		delim = '\t'
	case qcreport.DetectDelimiter:
		delim = qcreport.DetermineDelimiter(bytes.NewReader(content))
	}

	row, err := parse(bytes.NewReader(content), delim, r.SampleName(path))
	if err != nil {
		return table.Row{}, fmt.Errorf("%s: %w", path, err)
	}

	return row, nil
}

func parse(rdr io.Reader, delim rune, sample string) (table.Row, error) {
	cr := csv.NewReader(rdr)
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	row := table.NewRow(sample)
	for i := 0; ; i++ {
		cols, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return row, fmt.Errorf("%w: %v", ErrMalformed, err)
		}

		if i == 0 {
			// Skip the header
			continue
		}

		if len(cols) < 2 {
			return row, fmt.Errorf("%w: line %d has %d field(s), expected 2", ErrMalformed, i+1, len(cols))
		}

		if _, exists := row.Values[cols[0]]; exists {
			return row, fmt.Errorf("%w: line %d repeats the label %q", ErrMalformed, i+1, cols[0])
		}

		if cols[1] == "" {
			row.Set(cols[0], table.MissingValue())
		} else {
			row.Set(cols[0], table.Observed(cols[1]))
		}
	}

	return row, nil
}

// Build merges every result file into one table indexed by label, with one
// column per sample. Labels are the union across samples; where a sample has
// no line for a label the cell is missing, which callers conventionally write
// as 0. A file with a header and no data lines is skipped like an empty one.
func (r Reader) Build() (*table.Table, error) {
	paths, err := r.Paths()
	if err != nil {
		return nil, err
	}

	log.Printf("Merging %d result files ending in %q from %s\n", len(paths), r.Suffix, r.Dir)

	rows := make([]table.Row, 0, len(paths))
	for _, p := range paths {
		row, err := r.Extract(p)
		if err != nil {
			return nil, err
		}

		if len(row.Metrics) == 0 {
			log.Printf("Skipping %s: no result lines after the header\n", p)
			continue
		}

		rows = append(rows, row)
	}

	bySample, err := table.FromRows(rows...)
	if err != nil {
		return nil, err
	}

	return bySample.Transpose(), nil
}
