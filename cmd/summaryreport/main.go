// summaryreport compiles per-sample JSON summaries into one tab-delimited
// table. Either point it at a single stage, in which case every metric is
// reported with range-labeled columns in numeric order, or give it a YAML
// plan that joins several stages.
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
	var config, summaryDir, summaryPrefix, outputFP string

	flag.StringVar(&config, "config", "", "YAML report plan. If set, the other flags are ignored.")
	flag.StringVar(&summaryDir, "summary-dir", "", "Directory for summary files (local or gs://)")
	flag.StringVar(&summaryPrefix, "summary-prefix", report.FastqcSummaryPrefix, "Prefix of the summary files")
	flag.StringVar(&outputFP, "output-fp", "", "Output report file")
	flag.Parse()

	var plan report.Plan

	if config != "" {
		configPath, err := qcreport.ExpandHome(config)
		if err != nil {
			log.Fatalln(err)
		}

		configStore, err := qcreport.StoreFor(configPath)
		if err != nil {
			log.Fatalln(err)
		}

		plan, err = report.LoadPlan(configStore, configPath)
		if err != nil {
			log.Fatalln(err)
		}
	} else {
		if summaryDir == "" || outputFP == "" {
			flag.PrintDefaults()
			os.Exit(1)
		}
		plan = report.Summary(summaryDir, summaryPrefix, outputFP)
	}

	paths := []string{plan.Output}
	for _, s := range plan.Sections {
		paths = append(paths, s.Dir)
	}

	store, err := qcreport.StoreFor(paths...)
	if err != nil {
		log.Fatalln(err)
	}

	if err := plan.Run(store); err != nil {
		log.Fatalln(err)
	}
}
