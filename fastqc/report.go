package fastqc

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/carbocation/qcreport"
	"github.com/carbocation/qcreport/table"
)

// VerdictExtractor reads summary.txt from a FastQC folder.
type VerdictExtractor struct {
	Store qcreport.Store
}

func (e VerdictExtractor) Extract(folder string) (table.Row, error) {
	p := qcreport.JoinPath(folder, SummaryFile)

	rc, err := e.Store.Open(p)
	if err != nil {
		return table.Row{}, err
	}
	defer rc.Close()

	row, err := ParseSummary(rc, SampleName(folder))
	if err != nil {
		return table.Row{}, fmt.Errorf("%s: %w", p, err)
	}

	return row, nil
}

// QualityExtractor reads fastqc_data.txt from a FastQC folder.
type QualityExtractor struct {
	Store qcreport.Store
}

func (e QualityExtractor) Extract(folder string) (table.Row, error) {
	p := qcreport.JoinPath(folder, DataFile)

	rc, err := e.Store.Open(p)
	if err != nil {
		return table.Row{}, err
	}
	defer rc.Close()

	row, err := ParseQuality(rc, SampleName(folder))
	if err != nil {
		return table.Row{}, fmt.Errorf("%s: %w", p, err)
	}

	return row, nil
}

// Report generates the verdict and quality tables for every FastQC folder
// under InputDir/SubDir (e.g. the before_trim or after_trim results).
type Report struct {
	InputDir   string
	SubDir     string
	OutputDir  string
	OutputBase string

	// IndexLabel heads the sample column; empty means "Samples".
	IndexLabel string
	Missing    table.Missing

	Store qcreport.Store
}

// Folders lists the <sample>_fastqc folders, sorted by full path.
func (r Report) Folders() ([]string, error) {
	dir := r.InputDir
	if r.SubDir != "" {
		dir = qcreport.JoinPath(dir, r.SubDir)
	}

	entries, err := r.Store.List(dir)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Dir && strings.HasSuffix(e.Name, DirSuffix) {
			out = append(out, e.Path)
		}
	}

	return out, nil
}

// Build reads every folder and returns two sample-indexed tables: one column
// per module verdict, and one column per base position holding the mean
// quality. Any unreadable or malformed report fails the whole build.
func (r Report) Build() (verdicts, quality *table.Table, err error) {
	folders, err := r.Folders()
	if err != nil {
		return nil, nil, err
	}

	log.Printf("Reading %d FastQC reports from %s\n", len(folders), qcreport.JoinPath(r.InputDir, r.SubDir))

	verdicts, err = table.Collect(VerdictExtractor{Store: r.Store}, folders)
	if err != nil {
		return nil, nil, err
	}

	// Stacking sample rows yields the base-indexed outer join in its
	// sample-indexed orientation.
	quality, err = table.Collect(QualityExtractor{Store: r.Store}, folders)
	if err != nil {
		return nil, nil, err
	}

	// Base positions are often binned ("10-14"), so order them numerically.
	if err := quality.SortColumnsNumeric(); err != nil {
		return nil, nil, err
	}

	return verdicts, quality, nil
}

// OutputPath builds an output filepath according to the kind of table
// ("summary" or "quality"): <OutputDir>/<OutputBase>_<SubDir>_<kind>.tsv
func (r Report) OutputPath(kind string) string {
	return qcreport.JoinPath(r.OutputDir, strings.Join([]string{r.OutputBase, r.SubDir, kind}, "_")+".tsv")
}

// Write saves the verdict and quality tables built for this report.
func (r Report) Write(verdicts, quality *table.Table) error {
	return writeAll(r.outputs(verdicts, quality))
}

// Run builds both tables and writes them. Nothing is written unless every
// report parsed.
func (r Report) Run() error {
	return RunAll(r)
}

// RunAll builds every report before writing any table, so that one bad report
// (e.g. in after_trim) leaves no output from the others either.
func RunAll(reports ...Report) error {
	var outs []output
	for _, r := range reports {
		verdicts, quality, err := r.Build()
		if err != nil {
			return err
		}
		outs = append(outs, r.outputs(verdicts, quality)...)
	}

	return writeAll(outs)
}

// output is one table bound for one path.
type output struct {
	store qcreport.Store
	path  string
	enc   table.Encoder
	t     *table.Table
}

func (r Report) outputs(verdicts, quality *table.Table) []output {
	label := r.IndexLabel
	if label == "" {
		label = "Samples"
	}
	enc := table.Encoder{IndexLabel: label, Missing: r.Missing}

	return []output{
		{store: r.Store, path: r.OutputPath("summary"), enc: enc, t: verdicts},
		{store: r.Store, path: r.OutputPath("quality"), enc: enc, t: quality},
	}
}

// writeAll encodes every table in memory, then writes them in order. If a
// write fails, the files already written by this call are removed.
func writeAll(outs []output) error {
	encoded := make([][]byte, len(outs))
	for i, out := range outs {
		var buf bytes.Buffer
		if err := out.enc.Encode(&buf, out.t); err != nil {
			return fmt.Errorf("%s: %w", out.path, err)
		}
		encoded[i] = buf.Bytes()
	}

	for i, out := range outs {
		content := encoded[i]
		err := out.store.WriteAtomic(out.path, func(w io.Writer) error {
			_, err := w.Write(content)
			return err
		})
		if err != nil {
			for _, done := range outs[:i] {
				if rmErr := done.store.Remove(done.path); rmErr != nil {
					log.Printf("Could not remove %s after a failed write: %v\n", done.path, rmErr)
				}
			}
			return err
		}
		log.Printf("Wrote %d samples to %s\n", out.t.Len(), out.path)
	}

	return nil
}
