// tsvreport merges per-sample two-column result tables (e.g. KEGG ortholog
// counts) into one term-by-sample table. Terms a sample did not report are
// written as 0.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/carbocation/qcreport"
	_ "github.com/carbocation/qcreport/compileinfoprint"
	"github.com/carbocation/qcreport/delimited"
	"github.com/carbocation/qcreport/table"
)

func main() {
	var inputDir, inputSuffix, outputFP, delimiter, missing, indexLabel string
	var minSize int64

	flag.StringVar(&inputDir, "input-dir", "", "Directory where the sample results are located (local or gs://)")
	flag.StringVar(&inputSuffix, "input-suffix", "", "Input file suffix; the sample name is the file name without it")
	flag.StringVar(&outputFP, "output-fp", "", "Output report file")
	flag.StringVar(&delimiter, "delimiter", "tab", "Field delimiter of the inputs: tab, comma, or auto")
	flag.StringVar(&missing, "missing", "zero", "How to write terms a sample lacks: zero or empty")
	flag.StringVar(&indexLabel, "index-label", "Term", "Header of the term column")
	flag.Int64Var(&minSize, "min-size", delimited.DefaultMinSize, "Files of at most this many bytes hold no results and are skipped")
	flag.Parse()

	if inputDir == "" || inputSuffix == "" || outputFP == "" {
		flag.PrintDefaults()
		os.Exit(1)
	}

	var delim rune
	switch delimiter {
	case "tab":
		delim = '\t'
	case "comma":
		delim = ','
	case "auto":
		delim = qcreport.DetectDelimiter
	default:
		log.Fatalf("Unknown -delimiter %q. Valid values include: tab, comma, auto\n", delimiter)
	}

	missingPolicy, err := table.ParseMissing(missing)
	if err != nil {
		log.Fatalln(err)
	}

	for _, p := range []*string{&inputDir, &outputFP} {
		expanded, err := qcreport.ExpandHome(*p)
		if err != nil {
			log.Fatalln(err)
		}
		*p = expanded
	}

	store, err := qcreport.StoreFor(inputDir, outputFP)
	if err != nil {
		log.Fatalln(err)
	}

	r := delimited.Reader{
		Dir:       inputDir,
		Suffix:    inputSuffix,
		Delimiter: delim,
		MinSize:   minSize,
		Store:     store,
	}

	merged, err := r.Build()
	if err != nil {
		log.Fatalln(err)
	}

	enc := table.Encoder{IndexLabel: indexLabel, Missing: missingPolicy}
	if err := enc.WriteFile(store, outputFP, merged); err != nil {
		log.Fatalln(err)
	}

	log.Printf("Wrote %d terms across %d samples to %s\n", merged.Len(), len(merged.Columns()), outputFP)
}
