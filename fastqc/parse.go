// Package fastqc extracts per-sample tables from FastQC output folders: the
// pass/warn/fail verdict of every module (summary.txt) and the mean quality at
// each base position (the "Per base sequence quality" module of
// fastqc_data.txt).
package fastqc

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/carbocation/qcreport/table"
	"github.com/gocarina/gocsv"
)

const (
	// DirSuffix marks a FastQC output folder: <sample>_fastqc
	DirSuffix   = "_fastqc"
	SummaryFile = "summary.txt"
	DataFile    = "fastqc_data.txt"

	qualityModule = ">>Per base sequence quality"
	moduleEnd     = ">>END_MODULE"

	baseColumn = "#Base"
	meanColumn = "Mean"
)

var (
	ErrMissingSection = errors.New("per base sequence quality module not found")
	ErrMalformed      = errors.New("malformed fastqc report")
)

// baseQuality is one line of the per base sequence quality module. Only the
// columns used by the report are decoded.
type baseQuality struct {
	Base string `csv:"#Base"`
	Mean string `csv:"Mean"`
}

// SampleName parses the sample name out of a FastQC folder path: the
// folder's base name without its trailing "_fastqc", so that
// JoinPath(dir, SampleName(folder)+DirSuffix) names the folder again.
func SampleName(folder string) string {
	base := strings.TrimSuffix(folder, "/")
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}

	return strings.TrimSuffix(base, DirSuffix)
}

// ParseSummary reads summary.txt, whose lines are verdict, module label and
// (ignored) file name, into a row mapping each label to its verdict.
func ParseSummary(r io.Reader, sample string) (table.Row, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	row := table.NewRow(sample)
	for i := 1; ; i++ {
		cols, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return row, fmt.Errorf("%w: %v", ErrMalformed, err)
		}

		if len(cols) < 2 {
			return row, fmt.Errorf("%w: summary line %d has %d field(s), expected at least 2", ErrMalformed, i, len(cols))
		}

		verdict, label := cols[0], cols[1]
		if _, exists := row.Values[label]; exists {
			return row, fmt.Errorf("%w: summary line %d repeats %q", ErrMalformed, i, label)
		}
		row.Set(label, table.Observed(verdict))
	}

	return row, nil
}

// ParseQuality reads fastqc_data.txt and returns the mean quality at each base
// position. The module must be present and terminated; a report without it
// does not have the expected layout.
func ParseQuality(r io.Reader, sample string) (table.Row, error) {
	section, err := qualitySection(r)
	if err != nil {
		return table.Row{}, err
	}

	cr := csv.NewReader(strings.NewReader(section))
	cr.Comma = '\t'
	cr.LazyQuotes = true
	hr := &headerRecorder{Reader: cr}

	records := []*baseQuality{}
	if err := gocsv.UnmarshalCSV(hr, &records); err != nil {
		return table.Row{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	// gocsv leaves absent columns empty, so check the header it saw.
	if err := requireColumns(hr.header, baseColumn, meanColumn); err != nil {
		return table.Row{}, err
	}

	row := table.NewRow(sample)
	for _, rec := range records {
		if _, exists := row.Values[rec.Base]; exists {
			return row, fmt.Errorf("%w: base %q appears twice", ErrMalformed, rec.Base)
		}
		row.Set(rec.Base, table.Observed(rec.Mean))
	}

	return row, nil
}

// qualitySection returns the lines strictly between the module's opening line
// and the next end-of-module marker.
func qualitySection(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var b strings.Builder
	inside, closed := false, false
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")

		if !inside {
			inside = strings.HasPrefix(line, qualityModule)
			continue
		}

		if strings.HasPrefix(line, moduleEnd) {
			closed = true
			break
		}

		b.WriteString(line)
		b.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}

	if !inside {
		return "", fmt.Errorf("%w: no %q line", ErrMissingSection, qualityModule)
	}
	if !closed {
		return "", fmt.Errorf("%w: %q is not followed by %q", ErrMissingSection, qualityModule, moduleEnd)
	}

	return b.String(), nil
}

// headerRecorder keeps the first record read through it.
type headerRecorder struct {
	*csv.Reader
	header []string
}

func (h *headerRecorder) Read() ([]string, error) {
	rec, err := h.Reader.Read()
	if err == nil && h.header == nil {
		h.header = rec
	}
	return rec, err
}

func (h *headerRecorder) ReadAll() ([][]string, error) {
	recs, err := h.Reader.ReadAll()
	if h.header == nil && len(recs) > 0 {
		h.header = recs[0]
	}
	return recs, err
}

func requireColumns(header []string, names ...string) error {
	have := make(map[string]struct{}, len(header))
	for _, h := range header {
		have[h] = struct{}{}
	}

	for _, name := range names {
		if _, exists := have[name]; !exists {
			return fmt.Errorf("%w: quality table has no %q column (header: %v)", ErrMalformed, name, header)
		}
	}

	return nil
}
