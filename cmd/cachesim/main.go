// Command cachesim runs the MOESI cache simulator against a trace file
// and prints a statistics report (spec.md §6's CLI surface).
package main

import (
	"os"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
