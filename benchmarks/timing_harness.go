// Package benchmarks provides a library of small RV32I programs and a
// harness that runs them on the cycle-level core, checks their results
// and cross-checks the core against the functional emulator.
package benchmarks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sarchlab/rv32mc/config"
	"github.com/sarchlab/rv32mc/emu"
	"github.com/sarchlab/rv32mc/timing/core"
)

const (
	// ProgramBase is where benchmark code is placed, the reset vector.
	ProgramBase = emu.DefaultResetVector

	// DataBase is where benchmark data is placed.
	DataBase uint32 = 0x400
)

// BenchmarkResult holds the timing results for a single benchmark run.
type BenchmarkResult struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// Description explains what the benchmark measures
	Description string `json:"description"`

	// Stopped is why the run ended: halted, cycle limit or fault
	Stopped string `json:"stopped"`

	// SimulatedCycles is the total cycle count from the core
	SimulatedCycles uint64 `json:"simulated_cycles"`

	// InstructionsRetired is the number of completed instructions
	InstructionsRetired uint64 `json:"instructions_retired"`

	// CPI is cycles per instruction
	CPI float64 `json:"cpi"`

	// TakenBranches counts conditional branches that were taken
	TakenBranches uint64 `json:"taken_branches"`

	// StallCycles is the estimated data cache stall time
	StallCycles uint64 `json:"stall_cycles"`

	// DCacheHits/Misses (if cache enabled)
	DCacheHits   uint64 `json:"dcache_hits,omitempty"`
	DCacheMisses uint64 `json:"dcache_misses,omitempty"`

	// LED is the final value of the LED register
	LED uint8 `json:"led"`

	// Failures lists unmet expectations and differences from the
	// reference emulator
	Failures []string `json:"failures,omitempty"`

	// Err is the run error, if any
	Err string `json:"error,omitempty"`

	// WallTime is the actual time taken to run the simulation
	WallTime time.Duration `json:"wall_time_ns"`
}

// Passed reports whether the run met every expectation.
func (r BenchmarkResult) Passed() bool {
	return r.Err == "" && len(r.Failures) == 0
}

// Benchmark defines a single benchmark program.
type Benchmark struct {
	// Name identifies the benchmark
	Name string

	// Description explains what the benchmark measures
	Description string

	// Program is the RV32I machine code, placed at ProgramBase
	Program []uint32

	// Data is placed at DataBase
	Data []uint32

	// ExpectedRegs maps registers to their final values
	ExpectedRegs map[uint8]uint32

	// ExpectedMem maps word addresses to their final values
	ExpectedMem map[uint32]uint32

	// ExpectedLED is the final LED value, nil if not checked
	ExpectedLED *uint8

	// ExpectedCycles and ExpectedInstructions are checked when non-zero
	ExpectedCycles       uint64
	ExpectedInstructions uint64
}

// Image returns the benchmark's memory image, words long.
func (b Benchmark) Image(words int) ([]uint32, error) {
	image := make([]uint32, words)

	place := func(base uint32, data []uint32, what string) error {
		if len(data) == 0 {
			return nil
		}
		start := int(base / 4)
		if start+len(data) > words {
			return fmt.Errorf("%s: %s of %d words at 0x%X does not fit in %d words",
				b.Name, what, len(data), base, words)
		}
		copy(image[start:], data)
		return nil
	}

	if err := place(ProgramBase, b.Program, "program"); err != nil {
		return nil, err
	}
	if err := place(DataBase, b.Data, "data"); err != nil {
		return nil, err
	}
	return image, nil
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// EnableDCache enables data cache simulation
	EnableDCache bool

	// MaxCycles bounds each run
	MaxCycles uint64

	// CrossCheck runs every program on the functional emulator too and
	// compares the final state
	CrossCheck bool

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Verbose enables detailed output
	Verbose bool
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		EnableDCache: true,
		MaxCycles:    100_000,
		CrossCheck:   true,
		Output:       os.Stdout,
		Verbose:      false,
	}
}

// Harness runs timing benchmarks and reports results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	return &Harness{
		config:     config,
		benchmarks: []Benchmark{},
	}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll executes all benchmarks and returns results.
func (h *Harness) RunAll() []BenchmarkResult {
	results := make([]BenchmarkResult, 0, len(h.benchmarks))

	for _, bench := range h.benchmarks {
		result := h.runBenchmark(bench)
		results = append(results, result)
	}

	return results
}

// runBenchmark executes a single benchmark.
func (h *Harness) runBenchmark(bench Benchmark) BenchmarkResult {
	result := BenchmarkResult{
		Name:        bench.Name,
		Description: bench.Description,
	}

	cfg := config.Default()
	cfg.DCache.Enabled = h.config.EnableDCache

	image, err := bench.Image(cfg.MemoryWords)
	if err != nil {
		result.Err = err.Error()
		return result
	}

	c, board, err := core.NewFromConfig(cfg, core.WithImage(image))
	if err != nil {
		result.Err = err.Error()
		return result
	}

	// Run simulation and measure time
	start := time.Now()
	reason, runErr := c.Run(context.Background(), h.config.MaxCycles)
	result.WallTime = time.Since(start)

	if runErr != nil {
		result.Err = runErr.Error()
	}

	stats := c.Stats()
	result.Stopped = reason.String()
	result.SimulatedCycles = stats.Cycles
	result.InstructionsRetired = stats.Instructions
	result.CPI = stats.CPI()
	result.TakenBranches = stats.TakenBranches
	result.StallCycles = stats.Stalls
	result.DCacheHits = stats.DCache.Hits
	result.DCacheMisses = stats.DCache.Misses
	if board.LED != nil {
		result.LED = board.LED.Value()
	}

	result.Failures = checkExpectations(bench, c, result)
	if h.config.CrossCheck && result.InstructionsRetired > 0 {
		result.Failures = append(result.Failures, crossCheck(cfg, image, c, result)...)
	}

	return result
}

func checkExpectations(bench Benchmark, c *core.Core, r BenchmarkResult) []string {
	var failures []string

	if r.Stopped != core.StopHalted.String() {
		failures = append(failures, fmt.Sprintf("stopped on %s, want halted", r.Stopped))
	}
	for reg := uint8(0); reg < 32; reg++ {
		want, ok := bench.ExpectedRegs[reg]
		if !ok {
			continue
		}
		if got := c.ReadRegister(reg); got != want {
			failures = append(failures, fmt.Sprintf("x%d = 0x%08X, want 0x%08X", reg, got, want))
		}
	}
	for addr, want := range bench.ExpectedMem {
		got, err := c.ReadMemory(addr, 4)
		if err != nil {
			failures = append(failures, fmt.Sprintf("mem[0x%X]: %v", addr, err))
			continue
		}
		if got != want {
			failures = append(failures, fmt.Sprintf("mem[0x%X] = 0x%08X, want 0x%08X", addr, got, want))
		}
	}
	if bench.ExpectedLED != nil && r.LED != *bench.ExpectedLED {
		failures = append(failures, fmt.Sprintf("LED = 0x%02X, want 0x%02X", r.LED, *bench.ExpectedLED))
	}
	if bench.ExpectedCycles != 0 && r.SimulatedCycles != bench.ExpectedCycles {
		failures = append(failures, fmt.Sprintf("%d cycles, want %d", r.SimulatedCycles, bench.ExpectedCycles))
	}
	if bench.ExpectedInstructions != 0 && r.InstructionsRetired != bench.ExpectedInstructions {
		failures = append(failures, fmt.Sprintf("%d instructions, want %d",
			r.InstructionsRetired, bench.ExpectedInstructions))
	}

	return failures
}

// crossCheck runs the image on the functional emulator for as many
// instructions as the core retired and compares the final state.
func crossCheck(cfg *config.Config, image []uint32, c *core.Core, r BenchmarkResult) []string {
	memory := emu.NewMemory(cfg.MemoryWords)
	if err := memory.LoadWords(image); err != nil {
		return []string{fmt.Sprintf("reference: %v", err)}
	}

	var led *emu.LEDRegister
	if cfg.MMIO.Enabled {
		led = emu.NewLEDRegister()
		if err := memory.MapDevice(cfg.MMIO.LEDAddr, led); err != nil {
			return []string{fmt.Sprintf("reference: %v", err)}
		}
	}

	ref := emu.NewEmulator(memory,
		emu.WithResetVector(cfg.ResetVector),
		emu.WithMaxInstructions(r.InstructionsRetired),
	)
	if err := ref.Run(); err != nil && !errors.Is(err, emu.ErrMaxInstructions) {
		return []string{fmt.Sprintf("reference: %v", err)}
	}

	var failures []string
	if ref.InstructionCount() != r.InstructionsRetired {
		failures = append(failures, fmt.Sprintf("reference retired %d instructions, core %d",
			ref.InstructionCount(), r.InstructionsRetired))
	}
	if c.Halted() && ref.PC() != c.PC() {
		failures = append(failures, fmt.Sprintf("reference PC 0x%08X, core 0x%08X", ref.PC(), c.PC()))
	}
	for reg := uint8(1); reg < 32; reg++ {
		if want, got := ref.RegFile().ReadReg(reg), c.ReadRegister(reg); got != want {
			failures = append(failures, fmt.Sprintf("x%d: reference 0x%08X, core 0x%08X", reg, want, got))
		}
	}

	want := memory.Dump(0, cfg.MemoryWords)
	got := c.Memory().Dump(0, cfg.MemoryWords)
	for i := range want {
		if got[i] != want[i] {
			failures = append(failures, fmt.Sprintf("mem[0x%X]: reference 0x%08X, core 0x%08X",
				i*4, want[i], got[i]))
			break
		}
	}

	if led != nil && led.Value() != r.LED {
		failures = append(failures, fmt.Sprintf("LED: reference 0x%02X, core 0x%02X", led.Value(), r.LED))
	}

	return failures
}

// PrintResults outputs benchmark results in a human-readable format.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output, "=== rv32mc Benchmark Results ===")
	_, _ = fmt.Fprintln(h.config.Output, "")

	for _, r := range results {
		status := "PASS"
		if !r.Passed() {
			status = "FAIL"
		}

		_, _ = fmt.Fprintf(h.config.Output, "Benchmark: %s [%s]\n", r.Name, status)
		_, _ = fmt.Fprintf(h.config.Output, "  Description: %s\n", r.Description)
		_, _ = fmt.Fprintf(h.config.Output, "  Stopped: %s\n", r.Stopped)
		_, _ = fmt.Fprintln(h.config.Output, "  --- Timing ---")
		_, _ = fmt.Fprintf(h.config.Output, "  Simulated Cycles:     %d\n", r.SimulatedCycles)
		_, _ = fmt.Fprintf(h.config.Output, "  Instructions Retired: %d\n", r.InstructionsRetired)
		_, _ = fmt.Fprintf(h.config.Output, "  CPI:                  %.3f\n", r.CPI)
		_, _ = fmt.Fprintf(h.config.Output, "  Taken Branches:       %d\n", r.TakenBranches)

		if r.DCacheHits > 0 || r.DCacheMisses > 0 {
			_, _ = fmt.Fprintln(h.config.Output, "  --- D-Cache ---")
			_, _ = fmt.Fprintf(h.config.Output, "  Hits:   %d\n", r.DCacheHits)
			_, _ = fmt.Fprintf(h.config.Output, "  Misses: %d\n", r.DCacheMisses)
			_, _ = fmt.Fprintf(h.config.Output, "  Stalls: %d\n", r.StallCycles)
		}

		if r.Err != "" {
			_, _ = fmt.Fprintf(h.config.Output, "  Error: %s\n", r.Err)
		}
		for _, f := range r.Failures {
			_, _ = fmt.Fprintf(h.config.Output, "  Failure: %s\n", f)
		}

		if h.config.Verbose {
			_, _ = fmt.Fprintf(h.config.Output, "  Wall Time: %v\n", r.WallTime)
		}
		_, _ = fmt.Fprintln(h.config.Output, "")
	}
}

// PrintCSV outputs benchmark results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,cycles,instructions,cpi,taken_branches,stalls,dcache_hits,dcache_misses,passed")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%.3f,%d,%d,%d,%d,%t\n",
			r.Name,
			r.SimulatedCycles,
			r.InstructionsRetired,
			r.CPI,
			r.TakenBranches,
			r.StallCycles,
			r.DCacheHits,
			r.DCacheMisses,
			r.Passed(),
		)
	}
}

// PrintJSON outputs benchmark results as an indented JSON array.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	enc := json.NewEncoder(h.config.Output)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
