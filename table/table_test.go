package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/carbocation/qcreport"
	"github.com/google/go-cmp/cmp"
)

func row(sample string, kv ...string) Row {
	r := NewRow(sample)
	for i := 0; i+1 < len(kv); i += 2 {
		r.Set(kv[i], Observed(kv[i+1]))
	}
	return r
}

func encode(t *testing.T, tab *Table, enc Encoder) string {
	t.Helper()
	var buf bytes.Buffer
	if err := enc.Encode(&buf, tab); err != nil {
		t.Fatal(err)
	}
	return buf.String()
}

func TestFromRowsOuterConcat(t *testing.T) {
	a := row("A", "input", "100", "dropped", "5")
	b := row("B", "input", "80")
	b.Set("dropped", MissingValue())
	c := row("C", "extra", "1")

	tab, err := FromRows(a, b, c)
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]string{"A", "B", "C"}, tab.Index()); diff != "" {
		t.Errorf("index mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"input", "dropped", "extra"}, tab.Columns()); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}

	if v := tab.Get("B", "dropped"); v.Valid {
		t.Errorf("B/dropped should be missing, got %q", v.String)
	}
	if v := tab.Get("A", "extra"); v.Valid {
		t.Errorf("A/extra should be missing, got %q", v.String)
	}
	if v := tab.Get("C", "extra"); !v.Valid || v.String != "1" {
		t.Errorf("C/extra = %+v", v)
	}
}

func TestFromRowsDuplicateSample(t *testing.T) {
	_, err := FromRows(row("A", "x", "1"), row("A", "y", "2"))
	if !errors.Is(err, ErrDuplicateRow) {
		t.Fatalf("expected ErrDuplicateRow, got %v", err)
	}
}

func TestJoinUnionOfRowsAndColumns(t *testing.T) {
	illqc, _ := FromRows(row("A", "input", "100"), row("B", "input", "80"))
	decontam, _ := FromRows(row("B", "true", "70"), row("C", "true", "9"))

	joined, err := Join(illqc, decontam)
	if err != nil {
		t.Fatal(err)
	}

	got := encode(t, joined, Encoder{IndexLabel: "Samples"})
	want := "Samples\tinput\ttrue\n" +
		"A\t100\t\n" +
		"B\t80\t70\n" +
		"C\t\t9\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestJoinDuplicateColumn(t *testing.T) {
	a, _ := FromRows(row("A", "true", "1"))
	b, _ := FromRows(row("A", "true", "2"))
	if _, err := Join(a, b); !errors.Is(err, ErrDuplicateColumn) {
		t.Fatalf("expected ErrDuplicateColumn, got %v", err)
	}
}

func TestJoinNumericColumnsStayWithinTheirTable(t *testing.T) {
	first, _ := FromRows(row("A", "zeta", "1", "alpha", "2"))
	ranges, _ := FromRows(row("A", "10-19", "3", "2-9", "4", "0-1", "5"))
	ranges.NumericColumns = true

	joined, err := Join(first, ranges)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"zeta", "alpha", "0-1", "2-9", "10-19"}
	if diff := cmp.Diff(want, joined.Columns()); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
}

func TestSortColumnsNumeric(t *testing.T) {
	for _, v := range []struct {
		in   []string
		want []string
	}{
		{[]string{"10-19", "2-9", "0-1"}, []string{"0-1", "2-9", "10-19"}},
		{[]string{"10", "2", "1"}, []string{"1", "2", "10"}},
		{[]string{"10-14", "10-11", "9"}, []string{"9", "10-14", "10-11"}},
		{[]string{"2.5", "2", "12"}, []string{"2", "2.5", "12"}},
	} {
		tab := New(v.in...)
		if err := tab.SortColumnsNumeric(); err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(v.want, tab.Columns()); diff != "" {
			t.Errorf("%v: (-want +got):\n%s", v.in, diff)
		}
	}
}

func TestSortColumnsNumericRejectsLabels(t *testing.T) {
	tab := New("1-2", "Quality")
	if err := tab.SortColumnsNumeric(); !errors.Is(err, ErrNotNumeric) {
		t.Fatalf("expected ErrNotNumeric, got %v", err)
	}
	if diff := cmp.Diff([]string{"1-2", "Quality"}, tab.Columns()); diff != "" {
		t.Errorf("columns changed after a failed sort:\n%s", diff)
	}
}

func TestTranspose(t *testing.T) {
	tab, _ := FromRows(row("S1", "1", "35.2", "2", "36.0"), row("S2", "1", "30.1"))

	tr := tab.Transpose()
	if diff := cmp.Diff([]string{"1", "2"}, tr.Index()); diff != "" {
		t.Errorf("index mismatch:\n%s", diff)
	}
	if diff := cmp.Diff([]string{"S1", "S2"}, tr.Columns()); diff != "" {
		t.Errorf("columns mismatch:\n%s", diff)
	}
	if v := tr.Get("2", "S1"); v.String != "36.0" {
		t.Errorf("2/S1 = %+v", v)
	}
	if v := tr.Get("2", "S2"); v.Valid {
		t.Errorf("2/S2 should be missing")
	}

	back := tr.Transpose()
	if diff := cmp.Diff(encode(t, tab, Encoder{}), encode(t, back, Encoder{})); diff != "" {
		t.Errorf("double transpose changed the table:\n%s", diff)
	}
}

func TestMissingTokenIsUniform(t *testing.T) {
	a := row("K01", "S1", "3")
	a.Set("S2", MissingValue())
	tab, _ := FromRows(a, row("K02", "S2", "4"))

	for _, v := range []struct {
		missing Missing
		want    string
	}{
		{MissingEmpty, "Term\tS1\tS2\nK01\t3\t\nK02\t\t4\n"},
		{MissingZero, "Term\tS1\tS2\nK01\t3\t0\nK02\t0\t4\n"},
	} {
		got := encode(t, tab, Encoder{IndexLabel: "Term", Missing: v.missing})
		if diff := cmp.Diff(v.want, got); diff != "" {
			t.Errorf("%s: (-want +got):\n%s", v.missing, diff)
		}
	}
}

func TestObservedEmptyIsNotMissing(t *testing.T) {
	tab, _ := FromRows(row("A", "note", ""))
	got := encode(t, tab, Encoder{Missing: MissingZero})
	if want := "\tnote\nA\t\n"; got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestEncodeQuotesFields(t *testing.T) {
	tab, _ := FromRows(row("A", "padded", " 12", "tabbed", "a\tb", "quoted", `say "hi"`, "plain", "12 "))

	got := encode(t, tab, Encoder{IndexLabel: "Samples"})
	want := "Samples\tpadded\ttabbed\tquoted\tplain\n" +
		"A\t\" 12\"\t\"a\tb\"\t\"say \"\"hi\"\"\"\t12 \n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	cr := csv.NewReader(bytes.NewReader([]byte(got)))
	cr.Comma = Delim
	records, err := cr.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"A", " 12", "a\tb", `say "hi"`, "12 "}, records[1]); diff != "" {
		t.Errorf("read back (-want +got):\n%s", diff)
	}
}

func TestParseMissing(t *testing.T) {
	for in, want := range map[string]Missing{"": MissingEmpty, "empty": MissingEmpty, "zero": MissingZero, "0": MissingZero} {
		got, err := ParseMissing(in)
		if err != nil || got != want {
			t.Errorf("ParseMissing(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseMissing("nan"); err == nil {
		t.Error("expected an error for an unknown policy")
	}
}

func TestWriteFileIsAllOrNothing(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "report.tsv")

	good, _ := FromRows(row("A", "input", "1"))
	if err := (Encoder{IndexLabel: "Samples"}).WriteFile(qcreport.Store{}, dest, good); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if want := "Samples\tinput\nA\t1\n"; string(b) != want {
		t.Errorf("got %q want %q", b, want)
	}

	bad, _ := FromRows(row("A", "input", "2", "Quality", "PASS"))
	bad.NumericColumns = true
	if err := (Encoder{}).WriteFile(qcreport.Store{}, dest, bad); !errors.Is(err, ErrNotNumeric) {
		t.Fatalf("expected ErrNotNumeric, got %v", err)
	}

	b, _ = os.ReadFile(dest)
	if want := "Samples\tinput\nA\t1\n"; string(b) != want {
		t.Errorf("failed write replaced the previous report: %q", b)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temporary files were left behind: %v", entries)
	}
}

type staticExtractor map[string]Row

func (s staticExtractor) Extract(path string) (Row, error) {
	r, exists := s[path]
	if !exists {
		return Row{}, os.ErrNotExist
	}
	return r, nil
}

func TestCollect(t *testing.T) {
	e := staticExtractor{
		"p/a": row("A", "x", "1"),
		"p/b": row("B", "y", "2"),
	}

	tab, err := Collect(e, []string{"p/a", "p/b"})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"x", "y"}, tab.Columns()); diff != "" {
		t.Error(diff)
	}

	if _, err := Collect(e, []string{"p/a", "p/missing"}); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected the extractor error, got %v", err)
	}
}
