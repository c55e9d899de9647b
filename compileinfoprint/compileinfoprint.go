// compileinfoprint is imported by each report command for the side effect of
// printing the compileinfo to os.StdErr, ahead of any log output.
package compileinfoprint

import "github.com/carbocation/qcreport/compileinfo"

func init() {
	compileinfo.PrintToStdErr()
}
