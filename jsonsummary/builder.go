// Package jsonsummary builds report rows from the per-sample JSON summaries
// written by upstream pipeline stages, e.g.
//
//	{"data": {"input": 100, "dropped": 5}}
//
// stored as <dir>/<prefix><sample>.
package jsonsummary

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/carbocation/qcreport"
	"github.com/carbocation/qcreport/table"
)

// Builder extracts a fixed, ordered set of metrics from every summary file in
// Dir whose name starts with Prefix. With no Metrics, every key under "data"
// is extracted in the order the files present them.
type Builder struct {
	Dir     string
	Prefix  string
	Metrics []string
	Store   qcreport.Store
}

// Paths lists the summary files for this builder, sorted by full path. Like a
// shell glob, hidden files only match a prefix that itself starts with a dot.
func (b Builder) Paths() ([]string, error) {
	entries, err := b.Store.List(b.Dir)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if !strings.HasPrefix(e.Name, b.Prefix) {
			continue
		}
		if strings.HasPrefix(e.Name, ".") && !strings.HasPrefix(b.Prefix, ".") {
			continue
		}
		if e.Name == b.Prefix {
			log.Printf("Skipping %s: the file name has no sample after the prefix %q\n", e.Path, b.Prefix)
			continue
		}
		out = append(out, e.Path)
	}

	return out, nil
}

// SampleName is the file name with the prefix removed.
func (b Builder) SampleName(path string) string {
	return strings.TrimPrefix(qcreport.BaseName(path), b.Prefix)
}

// ArtifactPath is the inverse of SampleName.
func (b Builder) ArtifactPath(sample string) string {
	return qcreport.JoinPath(b.Dir, b.Prefix+sample)
}

// Extract reads one summary. A summary that does not exist yields a row in
// which every requested metric is missing, so that sample sets stay aligned
// across stages. Unparseable content is an error.
func (b Builder) Extract(path string) (table.Row, error) {
	sample := b.SampleName(path)

	entry, err := b.Store.Stat(path)
	if errors.Is(err, os.ErrNotExist) || (err == nil && entry.Dir) {
		return b.missingRow(sample), nil
	} else if err != nil {
		return table.Row{}, err
	}

	content, err := b.Store.ReadAll(path)
	if err != nil {
		return table.Row{}, err
	}

	keys, values, err := decodeData(content)
	if err != nil {
		return table.Row{}, fmt.Errorf("%s: %w", path, err)
	}

	metrics := b.Metrics
	if len(metrics) == 0 {
		metrics = keys
	}

	row := table.NewRow(sample)
	for _, m := range metrics {
		row.Set(m, values[m])
	}

	return row, nil
}

func (b Builder) missingRow(sample string) table.Row {
	row := table.NewRow(sample)
	for _, m := range b.Metrics {
		row.Set(m, table.MissingValue())
	}

	return row
}

// Build extracts every summary found by Paths into one sample-indexed table.
func (b Builder) Build() (*table.Table, error) {
	paths, err := b.Paths()
	if err != nil {
		return nil, err
	}

	log.Printf("Reading %d summaries with prefix %q from %s\n", len(paths), b.Prefix, b.Dir)

	return b.build(paths)
}

// BuildSamples extracts the summaries of exactly the given samples, in the
// given order. Samples without a summary file get a row of missing values.
func (b Builder) BuildSamples(samples []string) (*table.Table, error) {
	paths := make([]string, 0, len(samples))
	for _, s := range samples {
		paths = append(paths, b.ArtifactPath(s))
	}

	return b.build(paths)
}

func (b Builder) build(paths []string) (*table.Table, error) {
	t, err := table.Collect(b, paths)
	if err != nil {
		return nil, err
	}

	// Requested metrics are columns even when no file was read.
	for _, m := range b.Metrics {
		t.AddColumn(m)
	}

	return t, nil
}
