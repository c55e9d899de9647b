// fastqcreport generates the per-sample verdict and per-base quality tables
// from the FastQC results that illqc writes before and after trimming.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/carbocation/qcreport"
	_ "github.com/carbocation/qcreport/compileinfoprint"
	"github.com/carbocation/qcreport/fastqc"
)

func main() {
	var inputDir, beforeTrim, afterTrim, outputDir, outputBase string

	flag.StringVar(&inputDir, "input-dir", "", "Directory with fastqc results created by illqc (before and after trim; local or gs://)")
	flag.StringVar(&beforeTrim, "before-trim-subfolder-dir", "before_trim", "Subdirectory for before trim fastqc results")
	flag.StringVar(&afterTrim, "after-trim-subfolder-dir", "after_trim", "Subdirectory for after trim fastqc results")
	flag.StringVar(&outputDir, "output-dir", "", "Output directory where the files will be saved")
	flag.StringVar(&outputBase, "output-base", "fastqc", "Base name for the fastqc reports")
	flag.Parse()

	if inputDir == "" || outputDir == "" {
		flag.PrintDefaults()
		os.Exit(1)
	}

	for _, p := range []*string{&inputDir, &outputDir} {
		expanded, err := qcreport.ExpandHome(*p)
		if err != nil {
			log.Fatalln(err)
		}
		*p = expanded
	}

	if !qcreport.IsGoogleStorage(outputDir) {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			log.Fatalln(err)
		}
	}

	store, err := qcreport.StoreFor(inputDir, outputDir)
	if err != nil {
		log.Fatalln(err)
	}

	var reports []fastqc.Report
	for _, sub := range []string{beforeTrim, afterTrim} {
		reports = append(reports, fastqc.Report{
			InputDir:   inputDir,
			SubDir:     sub,
			OutputDir:  outputDir,
			OutputBase: outputBase,
			Store:      store,
		})
	}

	// Both subfolders are parsed before any table is written.
	if err := fastqc.RunAll(reports...); err != nil {
		log.Fatalln(err)
	}
}
