// Package main provides the imgpad command, which pads hex memory images
// with zero words up to the memory size.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/rv32mc/emu"
	"github.com/sarchlab/rv32mc/loader"
)

var (
	words   = flag.Int("words", emu.DefaultMemoryWords, "Memory size in 32-bit words")
	verbose = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: imgpad [options] <image.hex>...\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	failed := false
	for _, path := range flag.Args() {
		added, err := loader.PadFile(path, *words)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			failed = true
			continue
		}
		if *verbose {
			fmt.Printf("%s: added %d words\n", path, added)
		}
	}

	if failed {
		os.Exit(1)
	}
}
