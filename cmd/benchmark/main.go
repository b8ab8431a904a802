// Command benchmark runs the rv32mc program library on the cycle-level
// core and cross-checks every run against the functional emulator.
//
// Usage:
//
//	go run ./cmd/benchmark [flags]
//
// Flags:
//
//	-csv         Output results in CSV format (default: human-readable)
//	-json        Output results as JSON
//	-no-dcache   Disable data cache simulation
//	-core        Run only the three core benchmarks
//
// Example:
//
//	# Output CSV for spreadsheet comparison
//	go run ./cmd/benchmark -csv > results.csv
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/rv32mc/benchmarks"
)

func main() {
	// Parse flags
	csvOutput := flag.Bool("csv", false, "Output results in CSV format")
	jsonOutput := flag.Bool("json", false, "Output results as JSON")
	noDCache := flag.Bool("no-dcache", false, "Disable data cache simulation")
	coreOnly := flag.Bool("core", false, "Run only the core benchmarks")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	// Configure harness
	config := benchmarks.DefaultConfig()
	config.EnableDCache = !*noDCache
	config.Output = os.Stdout
	config.Verbose = *verbose

	harness := benchmarks.NewHarness(config)
	if *coreOnly {
		harness.AddBenchmarks(benchmarks.GetCoreBenchmarks())
	} else {
		harness.AddBenchmarks(benchmarks.GetMicrobenchmarks())
	}

	humanReadable := !*csvOutput && !*jsonOutput
	if humanReadable {
		fmt.Println("rv32mc Benchmark Harness")
		fmt.Println("========================")
		fmt.Printf("D-Cache: %v\n", config.EnableDCache)
		fmt.Println("")
	}

	results := harness.RunAll()

	switch {
	case *jsonOutput:
		if err := harness.PrintJSON(results); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing JSON: %v\n", err)
			os.Exit(1)
		}
	case *csvOutput:
		harness.PrintCSV(results)
	default:
		harness.PrintResults(results)
	}

	failed := 0
	for _, r := range results {
		if !r.Passed() {
			failed++
		}
	}
	if humanReadable {
		fmt.Println("=== Summary ===")
		fmt.Printf("%d of %d benchmarks passed\n", len(results)-failed, len(results))
	}
	if failed > 0 {
		os.Exit(1)
	}
}
