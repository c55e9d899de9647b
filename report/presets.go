package report

// Default summary file prefixes of the upstream pipeline stages.
const (
	IllqcPrefix         = "summary-illqc_"
	DecontamPrefix      = "summary-decontam_"
	PathwayPrefix       = "summary-pathway_"
	FastqcSummaryPrefix = "summary-fastqcBefore_"
)

var (
	IllqcMetrics    = []string{"input", "both kept", "rev only", "dropped", "fwd only"}
	DecontamMetrics = []string{"true", "false"}
	PathwayMetrics  = []string{"ko_hits", "mapped_sequences", "unique_prot_hits", "unique_ko_hits", "mapped_sequences_evalue"}
)

// Preprocess reports read quality control followed by host decontamination.
func Preprocess(illqcDir, illqcPrefix, decontamDir, decontamPrefix, output string) Plan {
	return Plan{
		Output: output,
		Sections: []Section{
			{Dir: illqcDir, Prefix: illqcPrefix, Metrics: IllqcMetrics},
			{Dir: decontamDir, Prefix: decontamPrefix, Metrics: DecontamMetrics},
		},
	}
}

// KOAssignment reports the non-host read count next to the KEGG ortholog
// assignment statistics.
func KOAssignment(decontamDir, decontamPrefix, pathwayDir, pathwayPrefix, output string) Plan {
	return Plan{
		Output: output,
		Sections: []Section{
			{Dir: decontamDir, Prefix: decontamPrefix, Metrics: []string{"true"}},
			{Dir: pathwayDir, Prefix: pathwayPrefix, Metrics: PathwayMetrics},
		},
	}
}

// Summary reports every metric of one stage, with the columns ordered by
// their leading number (per-base-range summaries).
func Summary(dir, prefix, output string) Plan {
	return Plan{
		Output: output,
		Sections: []Section{
			{Dir: dir, Prefix: prefix, NumericColumns: true},
		},
	}
}
