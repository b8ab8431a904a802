// Package main provides the rv32mc command, which runs memory images and
// RV32 ELF executables on the cycle-level multi-cycle core.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/sarchlab/rv32mc/config"
	"github.com/sarchlab/rv32mc/insts"
	"github.com/sarchlab/rv32mc/loader"
	"github.com/sarchlab/rv32mc/timing/core"
	"github.com/sarchlab/rv32mc/timing/latency"
)

var (
	configPath  = flag.String("config", "", "Path to a JSON or YAML configuration file")
	maxCycles   = flag.Uint64("max-cycles", 0, "Stop after this many cycles (0 keeps the configured limit)")
	resetVector = flag.String("reset-vector", "", "Override the reset vector (e.g. 0x100)")
	verbose     = flag.Bool("v", false, "Verbose output")
	trace       = flag.Bool("trace", false, "Log every cycle")
	progress    = flag.Bool("progress", false, "Show a cycle progress bar when stderr is a terminal")
	jobs        = flag.Int("j", 1, "Number of images to simulate concurrently")
	dumpMem     = flag.String("dump-mem", "", "Dump memory words after the run, as start:count")
)

// progressChunk is the number of cycles simulated between progress updates.
const progressChunk = 10_000

type dumpRange struct {
	start uint32
	count int
}

type runResult struct {
	path   string
	reason core.StopReason
	err    error
	stats  core.Stats
	regs   [32]uint32
	pc     uint32
	led    uint8
	hasLED bool

	dumpStart uint32
	dump      []uint32
}

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: rv32mc [options] <image.hex|program.elf>...\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	logger := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	var dump *dumpRange
	if *dumpMem != "" {
		dump, err = parseDumpRange(*dumpMem)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	paths := flag.Args()
	results := make([]*runResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(*jobs, 1))
	for i, path := range paths {
		g.Go(func() error {
			res, err := runImage(gctx, path, cfg, logger, dump, len(paths) == 1)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}

	exitCode := 0
	for _, res := range results {
		printResult(res)
		if res.reason == core.StopFault {
			exitCode = 2
		}
	}
	os.Exit(exitCode)
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	switch {
	case *trace:
		level = slog.LevelDebug
	case *verbose:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadConfig reads the configuration file, if any, and applies the
// command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			return nil, err
		}
	}

	if *maxCycles != 0 {
		cfg.MaxCycles = *maxCycles
	}
	if *resetVector != "" {
		pc, err := strconv.ParseUint(*resetVector, 0, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid reset vector %q: %w", *resetVector, err)
		}
		cfg.ResetVector = uint32(pc)
	}

	return cfg, cfg.Validate()
}

func parseDumpRange(s string) (*dumpRange, error) {
	startStr, countStr, ok := strings.Cut(s, ":")
	if !ok {
		return nil, fmt.Errorf("invalid dump range %q, want start:count", s)
	}
	start, err := strconv.ParseUint(startStr, 0, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid dump start %q: %w", startStr, err)
	}
	count, err := strconv.Atoi(countStr)
	if err != nil || count < 0 {
		return nil, fmt.Errorf("invalid dump count %q", countStr)
	}
	return &dumpRange{start: uint32(start), count: count}, nil
}

// runImage loads one program and runs it to completion. Only load and
// setup problems are returned as errors; faults are reported in the result.
func runImage(
	ctx context.Context,
	path string,
	cfg *config.Config,
	logger *slog.Logger,
	dump *dumpRange,
	interactive bool,
) (*runResult, error) {
	exe, err := loader.Load(path, cfg.MemoryWords)
	if err != nil {
		return nil, err
	}

	opts := []core.Option{
		core.WithImage(exe.Words),
		core.WithLogger(logger.With("image", path)),
	}
	if exe.HasEntry && *resetVector == "" {
		opts = append(opts, core.WithResetVector(exe.EntryPoint))
	}

	c, board, err := core.NewFromConfig(cfg, opts...)
	if err != nil {
		return nil, err
	}

	logger.Info("loaded program", "image", path, "words", len(exe.Words), "pc", fmt.Sprintf("0x%08X", c.PC()))

	var (
		reason core.StopReason
		runErr error
	)
	if *progress && interactive && cfg.MaxCycles > 0 && term.IsTerminal(int(os.Stderr.Fd())) {
		reason, runErr = runWithProgress(ctx, c, cfg.MaxCycles)
	} else {
		reason, runErr = c.Run(ctx, cfg.MaxCycles)
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) && reason != core.StopFault {
		return nil, runErr
	}

	res := &runResult{
		path:   path,
		reason: reason,
		err:    runErr,
		stats:  c.Stats(),
		pc:     c.PC(),
	}
	for i := range res.regs {
		res.regs[i] = c.ReadRegister(uint8(i))
	}
	if board.LED != nil {
		res.led = board.LED.Value()
		res.hasLED = true
	}
	if dump != nil {
		res.dumpStart = dump.start &^ 3
		res.dump = c.Memory().Dump(dump.start, dump.count)
	}
	return res, nil
}

func runWithProgress(ctx context.Context, c *core.Core, limit uint64) (core.StopReason, error) {
	pb := progressbar.Default(int64(limit), "cycles")
	defer func() { _ = pb.Finish() }()

	var done uint64
	for done < limit {
		chunk := min(uint64(progressChunk), limit-done)
		start := c.Cycles()
		reason, err := c.Run(ctx, chunk)
		ran := c.Cycles() - start
		done += ran
		_ = pb.Add64(int64(ran))

		if reason != core.StopCycleLimit {
			return reason, err
		}
	}
	return core.StopCycleLimit, nil
}

func printResult(res *runResult) {
	stats := res.stats

	fmt.Printf("\n")
	fmt.Printf("Program: %s\n", res.path)
	fmt.Printf("Stopped: %s", res.reason)
	if res.err != nil {
		fmt.Printf(" (%v)", res.err)
	}
	fmt.Printf("\n")
	fmt.Printf("PC: 0x%08X\n", res.pc)
	fmt.Printf("Total Cycles: %d\n", stats.Cycles)
	fmt.Printf("Total Instructions: %d\n", stats.Instructions)
	fmt.Printf("CPI: %.2f\n", stats.CPI())
	if stats.DecodeFaults+stats.MemoryFaults > 0 {
		fmt.Printf("Faults: %d decode, %d memory\n", stats.DecodeFaults, stats.MemoryFaults)
	}
	if res.hasLED {
		fmt.Printf("LED: 0x%02X\n", res.led)
	}

	if *verbose {
		fmt.Printf("\n")
		fmt.Printf("Instruction Mix:\n")
		pathLengths := latency.NewTable().ClassLatencies()
		for _, class := range insts.Classes() {
			if n := stats.ClassCounts[class]; n > 0 {
				fmt.Printf("  %-8s %6d x %d cycles\n", class, n, pathLengths[class])
			}
		}
		fmt.Printf("Branches and jumps: %d (%d branches taken)\n",
			stats.ControlTransfers, stats.TakenBranches)
		if stats.DCache.Reads+stats.DCache.Writes > 0 {
			fmt.Printf("D-cache: %d hits, %d misses (%.1f%% hit rate), %d stall cycles\n",
				stats.DCache.Hits, stats.DCache.Misses, 100*stats.DCache.HitRate(), stats.Stalls)
		}
	}

	fmt.Printf("\n")
	fmt.Printf("Registers:\n")
	for i, v := range res.regs {
		if v != 0 {
			fmt.Printf("  x%-2d = 0x%08X (%d)\n", i, v, int32(v))
		}
	}

	if res.dump != nil {
		fmt.Printf("\n")
		fmt.Printf("Memory:\n")
		for i, w := range res.dump {
			fmt.Printf("  0x%08X: %08x\n", res.dumpStart+uint32(i)*4, w)
		}
	}
}
