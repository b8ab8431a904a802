// Package main provides the entry point for rv32mc.
// rv32mc is a cycle-accurate simulator of a multi-cycle RV32I core.
//
// For the full CLI, use: go run ./cmd/rv32mc
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("rv32mc - multi-cycle RV32I simulator")
	fmt.Println("")
	fmt.Println("Usage: rv32mc [options] <image.hex|program.elf>...")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -config        Path to a JSON or YAML configuration file")
	fmt.Println("  -max-cycles    Stop after this many cycles")
	fmt.Println("  -reset-vector  Override the reset vector")
	fmt.Println("  -trace         Log every cycle")
	fmt.Println("  -progress      Show a cycle progress bar")
	fmt.Println("  -j             Images to simulate concurrently")
	fmt.Println("  -dump-mem      Dump memory words after the run (start:count)")
	fmt.Println("  -v             Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/rv32mc' for the full CLI.")
	fmt.Println("Other tools: ./cmd/imgpad, ./cmd/benchmark, ./cmd/profile")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/rv32mc' instead.")
	}
}
