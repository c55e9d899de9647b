// koassignmentreport places the decontaminated read count of every sample
// next to its KEGG ortholog assignment statistics.
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
	var pathwayDir, decontamDir, pathwayPrefix, decontamPrefix, outputFP, missing string
	var align bool

	flag.StringVar(&pathwayDir, "pathway-dir", "", "Directory for pathfinder summary files (local or gs://)")
	flag.StringVar(&decontamDir, "decontam-dir", "", "Directory for decontamination summary files (local or gs://)")
	flag.StringVar(&pathwayPrefix, "pathway-prefix", report.PathwayPrefix, "Prefix of the pathfinder summary files")
	flag.StringVar(&decontamPrefix, "decontam-prefix", report.DecontamPrefix, "Prefix of the decontam summary files")
	flag.StringVar(&outputFP, "output-fp", "", "Output report file")
	flag.StringVar(&missing, "missing", "empty", "How to write metrics a sample lacks: empty or zero")
	flag.BoolVar(&align, "align", false, "Report exactly the decontaminated samples, with missing pathway values where a summary is absent")
	flag.Parse()

	if pathwayDir == "" || decontamDir == "" || outputFP == "" {
		flag.PrintDefaults()
		os.Exit(1)
	}

	for _, p := range []*string{&pathwayDir, &decontamDir, &outputFP} {
		expanded, err := qcreport.ExpandHome(*p)
		if err != nil {
			log.Fatalln(err)
		}
		*p = expanded
	}

	store, err := qcreport.StoreFor(pathwayDir, decontamDir, outputFP)
	if err != nil {
		log.Fatalln(err)
	}

	plan := report.KOAssignment(decontamDir, decontamPrefix, pathwayDir, pathwayPrefix, outputFP)
	plan.Missing = missing
	plan.Sections[1].AlignToFirst = align

	if err := plan.Run(store); err != nil {
		log.Fatalln(err)
	}
}
