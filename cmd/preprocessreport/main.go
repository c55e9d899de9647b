// preprocessreport compiles the illqc and decontamination summaries of every
// sample into one tab-delimited table.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/carbocation/qcreport"
	_ "github.com/carbocation/qcreport/compileinfoprint"
	"github.com/carbocation/qcreport/report"
)

func main() {
	var illqcDir, decontamDir, illqcPrefix, decontamPrefix, outputFP, missing string

	flag.StringVar(&illqcDir, "illqc-dir", "", "Directory for illqc summary files (local or gs://)")
	flag.StringVar(&decontamDir, "decontam-dir", "", "Directory for decontamination summary files (local or gs://)")
	flag.StringVar(&illqcPrefix, "illqc-prefix", report.IllqcPrefix, "Prefix of the illqc summary files")
	flag.StringVar(&decontamPrefix, "decontam-prefix", report.DecontamPrefix, "Prefix of the decontam summary files")
	flag.StringVar(&outputFP, "output-fp", "", "Output report file")
	flag.StringVar(&missing, "missing", "empty", "How to write metrics a sample lacks: empty or zero")
	flag.Parse()

	if illqcDir == "" || decontamDir == "" || outputFP == "" {
		flag.PrintDefaults()
		os.Exit(1)
	}

	for _, p := range []*string{&illqcDir, &decontamDir, &outputFP} {
		expanded, err := qcreport.ExpandHome(*p)
		if err != nil {
			log.Fatalln(err)
		}
		*p = expanded
	}

	store, err := qcreport.StoreFor(illqcDir, decontamDir, outputFP)
	if err != nil {
		log.Fatalln(err)
	}

	plan := report.Preprocess(illqcDir, illqcPrefix, decontamDir, decontamPrefix, outputFP)
	plan.Missing = missing

	if err := plan.Run(store); err != nil {
		log.Fatalln(err)
	}
}
