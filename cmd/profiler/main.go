// Command profiler generates motion profiles from captured actuator samples.
//
//	profiler generate --samples capture.csv --distance 5
//	profiler synth --v-max 2 > capture.csv
//	profiler serve --samples capture.csv --addr :8080
//
// With no --samples flag (and no samples_file in the config), generate reads
// the capture from stdin.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
