// Package core provides the cycle-accurate model of the multi-cycle RV32I
// core. A Core owns the architectural state and advances it one clock
// cycle per Step, driven by the control FSM.
package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/sarchlab/rv32mc/emu"
	"github.com/sarchlab/rv32mc/insts"
	"github.com/sarchlab/rv32mc/timing/cache"
	"github.com/sarchlab/rv32mc/timing/fsm"
	"github.com/sarchlab/rv32mc/timing/latency"
)

// Stats holds performance statistics for the core.
type Stats struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Instructions is the number of instructions retired.
	Instructions uint64
	// ClassCounts is the number of retired instructions per class.
	ClassCounts map[insts.Class]uint64
	// StateCycles is the number of cycles spent in each FSM state.
	StateCycles map[fsm.State]uint64
	// TakenBranches is the number of conditional branches taken.
	TakenBranches uint64
	// ControlTransfers is the number of retired branches and jumps.
	ControlTransfers uint64
	// DecodeFaults is the number of unrecognized instruction words.
	DecodeFaults uint64
	// MemoryFaults is the number of faulting memory accesses, warnings
	// included.
	MemoryFaults uint64
	// Stalls is the estimated number of stall cycles the data cache
	// would add. It is not part of Cycles.
	Stalls uint64
	// DCache holds data cache statistics when a cache is configured.
	// Dirty lines are flushed, and counted as writebacks, on halt.
	DCache cache.Statistics
}

// CPI returns cycles per retired instruction, or 0 before the first
// instruction retires.
func (s Stats) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// Core represents a cycle-accurate multi-cycle RV32I core.
type Core struct {
	regFile *emu.RegFile
	memory  *emu.Memory
	lsu     *emu.LoadStoreUnit
	decoder *insts.Decoder
	dcache  *cache.Cache
	latency *latency.Table
	logger  *slog.Logger

	// Configuration
	resetVector uint32
	memoryWords int
	image       []uint32
	devices     []emu.DeviceMapping
	dcacheCfg   *cache.Config
	haltOnFault bool

	// Sequential state
	state  fsm.State
	pc     uint32
	pcOld  uint32
	ir     uint32
	inst   *insts.Instruction
	aluOut uint32
	mdr    uint32

	// Halt tracking: set in JUMP when the target equals the
	// instruction's own address, reported when it retires.
	selfJump bool
	halted   bool

	stats Stats
}

// Option is a functional option for configuring the Core.
type Option func(*Core)

// WithResetVector sets the PC loaded on reset.
func WithResetVector(pc uint32) Option {
	return func(c *Core) {
		c.resetVector = pc
	}
}

// WithMemoryWords sets the memory size in 32-bit words.
func WithMemoryWords(words int) Option {
	return func(c *Core) {
		c.memoryWords = words
	}
}

// WithImage sets the memory image loaded at address 0. Reset restores it.
func WithImage(words []uint32) Option {
	return func(c *Core) {
		c.image = append([]uint32(nil), words...)
	}
}

// WithLogger sets the logger used for cycle traces and fault reports.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Core) {
		c.logger = logger
	}
}

// WithDataCache places a data cache tag model in front of loads and
// stores. It only affects statistics.
func WithDataCache(config cache.Config) Option {
	return func(c *Core) {
		c.dcacheCfg = &config
	}
}

// WithDevice maps a memory-mapped device at base. Devices that accept a
// clock (such as emu.MicrosCounter) are attached to the core's cycle
// counter.
func WithDevice(base uint32, dev emu.Device) Option {
	return func(c *Core) {
		c.devices = append(c.devices, emu.DeviceMapping{Base: base, Device: dev})
	}
}

// WithHaltOnFault makes Run stop at the first fault that is not a
// misaligned-access warning.
func WithHaltOnFault(halt bool) Option {
	return func(c *Core) {
		c.haltOnFault = halt
	}
}

// WithTimingConfig sets the timing parameters used for stall estimates.
func WithTimingConfig(config *latency.TimingConfig) Option {
	return func(c *Core) {
		c.latency = latency.NewTableWithConfig(config)
	}
}

type clocked interface {
	Attach(src emu.CycleSource)
}

// NewCore creates a core, builds its memory, maps devices, loads the image
// and resets it.
func NewCore(opts ...Option) (*Core, error) {
	c := &Core{
		regFile:     &emu.RegFile{},
		decoder:     insts.NewDecoder(),
		latency:     latency.NewTable(),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		resetVector: emu.DefaultResetVector,
		memoryWords: emu.DefaultMemoryWords,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.memoryWords <= 0 {
		return nil, fmt.Errorf("memory size must be positive, got %d words", c.memoryWords)
	}
	if len(c.image) > c.memoryWords {
		return nil, fmt.Errorf("image of %d words does not fit in %d words of memory",
			len(c.image), c.memoryWords)
	}

	c.memory = emu.NewMemory(c.memoryWords)
	c.lsu = emu.NewLoadStoreUnit(c.memory)

	for _, d := range c.devices {
		if err := c.memory.MapDevice(d.Base, d.Device); err != nil {
			return nil, fmt.Errorf("failed to map device: %w", err)
		}
		if dev, ok := d.Device.(clocked); ok {
			dev.Attach(c)
		}
	}

	if c.dcacheCfg != nil {
		if err := c.dcacheCfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid data cache config: %w", err)
		}
		c.dcache = cache.New(*c.dcacheCfg)
	}

	c.Reset()
	return c, nil
}

// Reset returns the core to its power-on state: FETCH at the reset
// vector with every register zero and every resettable device cleared. If
// the core was built with an image, memory is restored to it; otherwise
// memory is left untouched.
// Reset is valid in any state.
func (c *Core) Reset() {
	c.regFile.Reset()
	c.state = fsm.ResetState
	c.pc = c.resetVector
	c.pcOld = 0
	c.ir = 0
	c.inst = c.decoder.Decode(0)
	c.aluOut = 0
	c.mdr = 0
	c.selfJump = false
	c.halted = false

	c.stats = Stats{
		ClassCounts: make(map[insts.Class]uint64),
		StateCycles: make(map[fsm.State]uint64),
	}

	if c.image != nil {
		// The image was checked against the memory size in NewCore.
		_ = c.memory.LoadWords(c.image)
	}
	if c.dcache != nil {
		c.dcache.Reset()
	}
	for _, d := range c.devices {
		if dev, ok := d.Device.(emu.Resetter); ok {
			dev.Reset()
		}
	}
}

// Memory returns the core's memory.
func (c *Core) Memory() *emu.Memory {
	return c.memory
}

// PC returns the program counter.
func (c *Core) PC() uint32 {
	return c.pc
}

// State returns the FSM state the next Step will execute.
func (c *Core) State() fsm.State {
	return c.state
}

// Cycles returns the number of cycles simulated since reset. It makes the
// core a clock for memory-mapped timers.
func (c *Core) Cycles() uint64 {
	return c.stats.Cycles
}

// Halted returns true once a jump to its own address has retired.
func (c *Core) Halted() bool {
	return c.halted
}

// Stats returns performance statistics for the core.
func (c *Core) Stats() Stats {
	s := c.stats
	s.ClassCounts = make(map[insts.Class]uint64, len(c.stats.ClassCounts))
	for k, v := range c.stats.ClassCounts {
		s.ClassCounts[k] = v
	}
	s.StateCycles = make(map[fsm.State]uint64, len(c.stats.StateCycles))
	for k, v := range c.stats.StateCycles {
		s.StateCycles[k] = v
	}
	if c.dcache != nil {
		s.DCache = c.dcache.Stats()
	}
	return s
}

// StopReason tells why Run returned.
type StopReason uint8

// Run stop reasons.
const (
	StopHalted StopReason = iota
	StopCycleLimit
	StopFault
	StopCanceled
)

// String returns a short description of the reason.
func (r StopReason) String() string {
	switch r {
	case StopHalted:
		return "halted"
	case StopCycleLimit:
		return "cycle limit"
	case StopFault:
		return "fault"
	case StopCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Run steps the core until the program halts, maxCycles cycles have been
// simulated by this call (0 means no limit), ctx is canceled, or, with
// WithHaltOnFault, a fault occurs. The returned error carries the fault or
// the context error.
func (c *Core) Run(ctx context.Context, maxCycles uint64) (StopReason, error) {
	for n := uint64(0); maxCycles == 0 || n < maxCycles; n++ {
		if c.halted {
			return StopHalted, nil
		}
		if err := ctx.Err(); err != nil {
			return StopCanceled, err
		}

		result := c.Step()
		if c.haltOnFault && result.Faults != nil && !result.OnlyWarnings() {
			return StopFault, result.Faults
		}
	}

	if c.halted {
		return StopHalted, nil
	}
	return StopCycleLimit, nil
}

// RunCycles executes the core for the specified number of cycles.
// Returns true if still running, false if halted.
func (c *Core) RunCycles(cycles uint64) bool {
	for i := uint64(0); i < cycles && !c.halted; i++ {
		c.Step()
	}
	return !c.halted
}
