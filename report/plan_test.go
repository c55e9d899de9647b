package report

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/carbocation/qcreport"
	"github.com/carbocation/qcreport/jsonsummary"
	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestPreprocessReport(t *testing.T) {
	root := t.TempDir()
	illqc := filepath.Join(root, "illqc")
	decontam := filepath.Join(root, "decontam")

	writeFile(t, illqc, "summary-illqc_A", `{"data":{"input":100,"both kept":90,"rev only":2,"dropped":5,"fwd only":3}}`)
	writeFile(t, illqc, "summary-illqc_B", `{"data":{"input":80}}`)
	writeFile(t, decontam, "summary-decontam_A", `{"data":{"true":10,"false":80}}`)
	writeFile(t, decontam, "summary-decontam_C", `{"data":{"true":1,"false":2}}`)

	out := filepath.Join(root, "preprocess_summary.tsv")
	p := Preprocess(illqc, IllqcPrefix, decontam, DecontamPrefix, out)
	if err := p.Run(qcreport.Store{}); err != nil {
		t.Fatal(err)
	}

	want := "Samples\tinput\tboth kept\trev only\tdropped\tfwd only\ttrue\tfalse\n" +
		"A\t100\t90\t2\t5\t3\t10\t80\n" +
		"B\t80\t\t\t\t\t\t\n" +
		"C\t\t\t\t\t\t1\t2\n"
	if diff := cmp.Diff(want, readFile(t, out)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestAlignToFirst(t *testing.T) {
	root := t.TempDir()
	decontam := filepath.Join(root, "decontam")
	pathway := filepath.Join(root, "pathway")

	writeFile(t, decontam, "summary-decontam_A", `{"data":{"true":10}}`)
	writeFile(t, decontam, "summary-decontam_B", `{"data":{"true":20}}`)
	writeFile(t, pathway, "summary-pathway_A", `{"data":{"ko_hits":4}}`)
	writeFile(t, pathway, "summary-pathway_Z", `{"data":{"ko_hits":9}}`)

	p := KOAssignment(decontam, DecontamPrefix, pathway, PathwayPrefix, filepath.Join(root, "ko.tsv"))
	p.Sections[1].AlignToFirst = true
	p.Missing = "zero"

	tab, err := p.Build(qcreport.Store{})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"A", "B"}, tab.Index()); diff != "" {
		t.Errorf("index (-want +got):\n%s", diff)
	}

	if err := p.Run(qcreport.Store{}); err != nil {
		t.Fatal(err)
	}
	want := "Samples\ttrue\tko_hits\tmapped_sequences\tunique_prot_hits\tunique_ko_hits\tmapped_sequences_evalue\n" +
		"A\t10\t4\t0\t0\t0\t0\n" +
		"B\t20\t0\t0\t0\t0\t0\n"
	if diff := cmp.Diff(want, readFile(t, p.Output)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestSummaryNumericColumns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "summary-fastqcBefore_A", `{"data":{"10-19":28,"2-9":31,"0-1":30}}`)

	out := filepath.Join(dir, "out.tsv")
	if err := Summary(dir, FastqcSummaryPrefix, out).Run(qcreport.Store{}); err != nil {
		t.Fatal(err)
	}

	want := "Samples\t0-1\t2-9\t10-19\nA\t30\t31\t28\n"
	if diff := cmp.Diff(want, readFile(t, out)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestMalformedSummaryWritesNothing(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "summary-illqc_A", `{"data":{"input":1}}`)
	writeFile(t, root, "summary-decontam_A", `not json`)

	out := filepath.Join(root, "out", "report.tsv")
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		t.Fatal(err)
	}

	err := Preprocess(root, IllqcPrefix, root, DecontamPrefix, out).Run(qcreport.Store{})
	if !errors.Is(err, jsonsummary.ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("report should not exist, stat err = %v", err)
	}
	entries, _ := os.ReadDir(filepath.Dir(out))
	if len(entries) != 0 {
		t.Errorf("unexpected files %v", entries)
	}
}

func TestLoadPlan(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "plan.yaml", `output: report.tsv
index_label: Sample
missing: zero
sections:
  - dir: illqc
    prefix: summary-illqc_
    metrics: [input, both kept]
  - dir: decontam
    prefix: summary-decontam_
    metrics: ["true"]
    align_to_first: true
  - dir: fastqc
    prefix: summary-fastqcBefore_
    numeric_columns: true
`)

	p, err := LoadPlan(qcreport.Store{}, filepath.Join(dir, "plan.yaml"))
	if err != nil {
		t.Fatal(err)
	}

	want := Plan{
		Output:     "report.tsv",
		IndexLabel: "Sample",
		Missing:    "zero",
		Sections: []Section{
			{Dir: "illqc", Prefix: "summary-illqc_", Metrics: []string{"input", "both kept"}},
			{Dir: "decontam", Prefix: "summary-decontam_", Metrics: []string{"true"}, AlignToFirst: true},
			{Dir: "fastqc", Prefix: "summary-fastqcBefore_", NumericColumns: true},
		},
	}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestLoadPlanRejects(t *testing.T) {
	for name, content := range map[string]string{
		"unknown field":  "output: x.tsv\nsection: []\n",
		"no output":      "sections:\n  - dir: a\n",
		"no sections":    "output: x.tsv\n",
		"bad missing":    "output: x.tsv\nmissing: nan\nsections:\n  - dir: a\n",
		"section no dir": "output: x.tsv\nsections:\n  - prefix: a\n",
	} {
		dir := t.TempDir()
		writeFile(t, dir, "plan.yaml", content)
		if _, err := LoadPlan(qcreport.Store{}, filepath.Join(dir, "plan.yaml")); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}
