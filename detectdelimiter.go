package qcreport

import (
	"io"

	"github.com/csimplestring/go-csv/detector"
)

// DetectDelimiter is a sentinel delimiter asking readers to sniff the
// delimiter of each artifact with DetermineDelimiter.
const DetectDelimiter rune = -1

// DetermineDelimiter returns the single most likely rune that would delimit the
// values in the reader. Artifacts in this pipeline are tab-delimited unless
// shown otherwise, so tab is the fallback.
func DetermineDelimiter(r io.Reader) rune {
	d := detector.New()
	delimiters := d.DetectDelimiter(r, '"')

	if len(delimiters) > 0 && len(delimiters[0]) > 0 {
		return rune(delimiters[0][0])
	}

	return '\t'
}
