// Package report assembles multi-stage sample reports: each section reads the
// JSON summaries of one pipeline stage, and the sections are joined side by
// side on sample name into a single table.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"log"

	"github.com/carbocation/pfx"
	"github.com/carbocation/qcreport"
	"github.com/carbocation/qcreport/jsonsummary"
	"github.com/carbocation/qcreport/table"
	"gopkg.in/yaml.v3"
)

const DefaultIndexLabel = "Samples"

var ErrInvalidPlan = errors.New("invalid report plan")

// Section is one pipeline stage's contribution to a report.
type Section struct {
	Dir     string   `yaml:"dir"`
	Prefix  string   `yaml:"prefix"`
	Metrics []string `yaml:"metrics,omitempty"`

	// NumericColumns orders this section's columns by their leading number,
	// for metrics named by ranges such as "10-19".
	NumericColumns bool `yaml:"numeric_columns,omitempty"`

	// AlignToFirst reads exactly the samples of the first section instead of
	// listing Dir; samples with no summary here get missing values.
	AlignToFirst bool `yaml:"align_to_first,omitempty"`
}

// Plan describes one report file.
type Plan struct {
	Output     string    `yaml:"output"`
	IndexLabel string    `yaml:"index_label,omitempty"`
	Missing    string    `yaml:"missing,omitempty"`
	Sections   []Section `yaml:"sections"`
}

// LoadPlan reads a YAML plan, e.g.
//
//	output: preprocess_summary.tsv
//	missing: empty
//	sections:
//	  - dir: illqc
//	    prefix: summary-illqc_
//	    metrics: [input, both kept, rev only, dropped, fwd only]
//	  - dir: decontam
//	    prefix: summary-decontam_
//	    metrics: ["true", "false"]
func LoadPlan(store qcreport.Store, path string) (Plan, error) {
	var p Plan

	content, err := store.ReadAll(path)
	if err != nil {
		return p, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return p, pfx.Err(fmt.Errorf("%s: %w", path, err))
	}

	return p, p.Validate()
}

// Validate reports the first problem that would keep the plan from running.
func (p Plan) Validate() error {
	if p.Output == "" {
		return fmt.Errorf("%w: no output path", ErrInvalidPlan)
	}
	if len(p.Sections) == 0 {
		return fmt.Errorf("%w: no sections", ErrInvalidPlan)
	}
	if _, err := table.ParseMissing(p.Missing); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPlan, err)
	}
	for i, s := range p.Sections {
		if s.Dir == "" {
			return fmt.Errorf("%w: section %d has no dir", ErrInvalidPlan, i+1)
		}
	}

	return nil
}

// Build reads every section and joins them on sample name. Columns keep
// section order; samples are the union of all sections.
func (p Plan) Build(store qcreport.Store) (*table.Table, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	tables := make([]*table.Table, 0, len(p.Sections))
	var firstSamples []string

	for i, s := range p.Sections {
		b := jsonsummary.Builder{Dir: s.Dir, Prefix: s.Prefix, Metrics: s.Metrics, Store: store}

		var t *table.Table
		var err error
		if s.AlignToFirst && i > 0 {
			t, err = b.BuildSamples(firstSamples)
		} else {
			t, err = b.Build()
		}
		if err != nil {
			return nil, err
		}

		if i == 0 {
			firstSamples = t.Index()
		}

		if s.NumericColumns {
			if err := t.SortColumnsNumeric(); err != nil {
				return nil, fmt.Errorf("%s%s: %w", s.Dir, s.Prefix, err)
			}
		}

		tables = append(tables, t)
	}

	return table.Join(tables...)
}

// Run builds the report and writes it to Output. Nothing is written if any
// summary fails to parse.
func (p Plan) Run(store qcreport.Store) error {
	t, err := p.Build(store)
	if err != nil {
		return err
	}

	missing, _ := table.ParseMissing(p.Missing)

	label := p.IndexLabel
	if label == "" {
		label = DefaultIndexLabel
	}

	if err := (table.Encoder{IndexLabel: label, Missing: missing}).WriteFile(store, p.Output, t); err != nil {
		return err
	}

	log.Printf("Wrote %d samples and %d columns to %s\n", t.Len(), len(t.Columns()), p.Output)

	return nil
}
