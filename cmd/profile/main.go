// Package main provides a profiling wrapper for rv32mc to identify performance bottlenecks.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/sarchlab/rv32mc/config"
	"github.com/sarchlab/rv32mc/emu"
	"github.com/sarchlab/rv32mc/loader"
	"github.com/sarchlab/rv32mc/timing/core"
)

var (
	timing      = flag.Bool("timing", false, "Profile the cycle-level core instead of the functional emulator")
	cpuProfile  = flag.String("cpuprofile", "", "write cpu profile to file")
	memProfile  = flag.String("memprofile", "", "write memory profile to file")
	duration    = flag.Duration("duration", 30*time.Second, "max duration to run (for profiling)")
	instruction = flag.Uint64("max-instr", 1000000, "max instructions to execute (0 = unlimited)")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: profile [options] <image.hex|program.elf>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Start CPU profiling if requested
	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error starting CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	programPath := flag.Arg(0)
	cfg := config.Default()

	exe, err := loader.Load(programPath, cfg.MemoryWords)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}
	if exe.HasEntry {
		cfg.ResetVector = exe.EntryPoint
	}

	fmt.Printf("Loaded: %s\n", programPath)
	fmt.Printf("Entry point: 0x%X\n", cfg.ResetVector)

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	start := time.Now()

	var (
		instrCount uint64
		cycles     uint64
		runErr     error
	)
	if *timing {
		instrCount, cycles, runErr = runTimingProfile(ctx, cfg, exe.Words)
	} else {
		instrCount, runErr = runEmulationProfile(ctx, cfg, exe.Words)
	}

	elapsed := time.Since(start)

	// Write memory profile if requested
	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating memory profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.WriteHeapProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing memory profile: %v\n", err)
		}
	}

	fmt.Printf("\nProfiling Results:\n")
	if runErr != nil {
		fmt.Printf("Stopped: %v\n", runErr)
	}
	fmt.Printf("Instructions executed: %d\n", instrCount)
	if *timing {
		fmt.Printf("Cycles simulated: %d\n", cycles)
	}
	fmt.Printf("Elapsed time: %v\n", elapsed)
	if instrCount > 0 {
		fmt.Printf("Instructions/second: %.0f\n", float64(instrCount)/elapsed.Seconds())
	}
	if cycles > 0 {
		fmt.Printf("Cycles/second: %.0f\n", float64(cycles)/elapsed.Seconds())
	}
}

// runEmulationProfile runs the program on the functional emulator. The
// deadline is checked between batches of instructions.
func runEmulationProfile(ctx context.Context, cfg *config.Config, image []uint32) (uint64, error) {
	memory := emu.NewMemory(cfg.MemoryWords)
	if err := memory.LoadWords(image); err != nil {
		return 0, err
	}
	if err := memory.MapDevice(cfg.MMIO.LEDAddr, emu.NewLEDRegister()); err != nil {
		return 0, err
	}

	emulator := emu.NewEmulator(memory,
		emu.WithResetVector(cfg.ResetVector),
		emu.WithMaxInstructions(*instruction),
	)

	for i := 0; ; i++ {
		if i%4096 == 0 && ctx.Err() != nil {
			return emulator.InstructionCount(), ctx.Err()
		}

		result := emulator.Step()
		if errors.Is(result.Err, emu.ErrMaxInstructions) {
			return emulator.InstructionCount(), nil
		}
		if result.Err != nil || result.Halted {
			return emulator.InstructionCount(), result.Err
		}
	}
}

// runTimingProfile runs the program on the cycle-level core until it
// halts, retires the instruction limit or the deadline passes.
func runTimingProfile(ctx context.Context, cfg *config.Config, image []uint32) (uint64, uint64, error) {
	c, _, err := core.NewFromConfig(cfg, core.WithImage(image))
	if err != nil {
		return 0, 0, err
	}

	const batch = 4096
	for {
		reason, err := c.Run(ctx, batch)
		stats := c.Stats()
		if reason != core.StopCycleLimit {
			return stats.Instructions, stats.Cycles, err
		}
		if *instruction > 0 && stats.Instructions >= *instruction {
			return stats.Instructions, stats.Cycles, nil
		}
	}
}
