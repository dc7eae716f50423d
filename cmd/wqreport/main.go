// Command wqreport loads a water-quality sample file once and prints the
// classified records, chart groups, a rendered chart or the dashboard summary.
//
// Usage:
//
//	wqreport records -f samples.csv -c compliance --field verdict --value Non-Compliant
//	wqreport groups  -f samples.csv -c pollutants
//	wqreport chart   -f samples.csv -c pops "THAMES AT TEDDINGTON - 2024-04-10T12:00:00"
//	wqreport chart   -f samples.csv -c litter -o png --panel 1 > litter.png
//	wqreport summary -f samples.csv -o yaml
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
