package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sarchlab/rv32mc/emu"
	"github.com/sarchlab/rv32mc/insts"
	"github.com/sarchlab/rv32mc/timing/fsm"
)

// RegWrite is a committed register file write.
type RegWrite struct {
	Reg   uint8
	Value uint32
}

// MemWrite is a committed memory write.
type MemWrite struct {
	Addr  uint32
	Size  int
	Value uint32
}

// StepResult describes one simulated clock cycle.
type StepResult struct {
	// Cycle is the 1-based number of this cycle since reset.
	Cycle uint64

	// State is the FSM state executed in this cycle.
	State fsm.State

	// Next is the FSM state of the following cycle.
	Next fsm.State

	// Signals are the control signals asserted in this cycle.
	Signals fsm.ControlSignals

	// Inst is the instruction the cycle worked on. In FETCH it is the
	// newly fetched instruction.
	Inst *insts.Instruction

	// PC is the program counter at the start of the cycle.
	PC uint32

	// RegWrite is set if the cycle committed a register write. Writes to
	// x0 are reported even though they are discarded.
	RegWrite *RegWrite

	// MemWrite is set if the cycle committed a memory write.
	MemWrite *MemWrite

	// PCWrite is set if the cycle loaded the PC, and NextPC holds the
	// loaded value.
	PCWrite bool
	NextPC  uint32

	// BranchTaken is set in BRANCH when the condition held.
	BranchTaken bool

	// Retired is set on the last cycle of an instruction.
	Retired bool

	// Halted is set when the retiring instruction jumped to itself.
	Halted bool

	// Faults holds every fault raised in the cycle, joined, or nil.
	Faults error
}

// OnlyWarnings reports whether every fault of the cycle is a
// misaligned-access warning. It is true when there are no faults.
func (r StepResult) OnlyWarnings() bool {
	return allWarnings(r.Faults)
}

func allWarnings(err error) bool {
	if err == nil {
		return true
	}
	if f, ok := err.(*emu.Fault); ok {
		return f.IsWarning()
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, inner := range joined.Unwrap() {
			if !allWarnings(inner) {
				return false
			}
		}
		return true
	}
	return false
}

// Step simulates one clock cycle. All combinational values are computed
// from the committed state first; PC, PC_OLD, IR, ALU_CLOCKED, MDR, the
// register file, memory and the FSM state are then updated together.
func (c *Core) Step() StepResult {
	s := c.state
	inst := c.inst
	sig := fsm.Signals(s, inst.Class)

	result := StepResult{
		Cycle:   c.stats.Cycles + 1,
		State:   s,
		Signals: sig,
		Inst:    inst,
		PC:      c.pc,
	}

	// Combinational phase.
	rs1v := c.regFile.ReadReg(inst.Rs1)
	rs2v := c.regFile.ReadReg(inst.Rs2)

	aluOp := emu.DecodeALUControl(sig.ALUSel, inst.Funct3, inst.Op5(), inst.Funct7b5())
	alu := emu.ExecuteALU(aluOp, c.src1(sig.Src1, rs1v), c.src2(sig.Src2, rs2v, inst.Imm))

	var bus uint32
	switch sig.Result {
	case fsm.ResultALU:
		bus = alu.Value
	case fsm.ResultALUClocked:
		bus = c.aluOut
	case fsm.ResultMemRead:
		bus = c.mdr
	}

	addr := c.pc
	if sig.MemAddr == fsm.AddrResult {
		addr = bus
	}

	var (
		faults  []error
		memData uint32
		memRead bool
	)
	faultPC := c.pcOld
	if s == fsm.StateFetch {
		faultPC = c.pc
	}
	addFault := func(err error) {
		if err == nil {
			return
		}
		var f *emu.Fault
		if errors.As(err, &f) {
			err = f.WithPC(faultPC)
			if !errors.Is(f.Kind, emu.ErrDecodeFault) {
				c.stats.MemoryFaults++
			}
		}
		faults = append(faults, err)
	}

	switch s {
	case fsm.StateFetch:
		word, err := c.memory.Read(addr, 4)
		addFault(err)
		memData, memRead = word, true
	case fsm.StateDecode:
		if _, ok := fsm.Dispatch(inst.Class); !ok {
			c.stats.DecodeFaults++
			addFault(&emu.Fault{Kind: emu.ErrDecodeFault, Op: "decode", Addr: inst.Word})
		}
	case fsm.StateMemRead:
		value, err := c.lsu.Load(addr, inst.Funct3)
		addFault(err)
		memData, memRead = value, true
		c.accessCache(inst, addr)
	}

	taken := sig.Branch && emu.BranchTaken(inst.Funct3, alu)
	next := fsm.Next(s, inst.Class)

	// Commit phase.
	if sig.MemWrEn {
		addFault(c.lsu.Store(addr, inst.Funct3, rs2v))
		c.accessCache(inst, addr)
		if width, ok := emu.StoreWidth(inst.Funct3); ok {
			result.MemWrite = &MemWrite{Addr: addr, Size: int(width), Value: rs2v}
		}
	}

	if sig.RegWrEn {
		c.regFile.WriteReg(inst.Rd, bus)
		result.RegWrite = &RegWrite{Reg: inst.Rd, Value: c.regFile.ReadReg(inst.Rd)}
	}

	if s == fsm.StateJump {
		c.selfJump = bus == c.pcOld
	}

	if sig.PCEn || taken {
		c.pc = bus
		result.PCWrite = true
	}
	result.NextPC = c.pc
	result.BranchTaken = taken

	if sig.InstEn {
		c.ir = memData
		c.pcOld = result.PC
		c.inst = c.decoder.Decode(c.ir)
		result.Inst = c.inst
	}
	if memRead {
		c.mdr = memData
	}
	c.aluOut = alu.Value
	c.state = next
	result.Next = next

	// Bookkeeping.
	c.stats.Cycles++
	c.stats.StateCycles[s]++
	if taken {
		c.stats.TakenBranches++
	}
	if s != fsm.StateFetch && next == fsm.StateFetch {
		result.Retired = true
		c.stats.Instructions++
		c.stats.ClassCounts[inst.Class]++
		if c.latency.IsBranchOp(inst) {
			c.stats.ControlTransfers++
		}
		if inst.Class.IsJump() && c.selfJump {
			c.halted = true
			result.Halted = true
			if c.dcache != nil {
				c.dcache.Flush()
			}
		}
		c.selfJump = false
	}

	result.Faults = errors.Join(faults...)
	c.trace(result)

	return result
}

func (c *Core) src1(sel fsm.Src1Sel, rs1v uint32) uint32 {
	switch sel {
	case fsm.Src1PC:
		return c.pc
	case fsm.Src1PCOld:
		return c.pcOld
	case fsm.Src1Zero:
		return 0
	default:
		return rs1v
	}
}

func (c *Core) src2(sel fsm.Src2Sel, rs2v, imm uint32) uint32 {
	switch sel {
	case fsm.Src2Imm:
		return imm
	case fsm.Src2Four:
		return 4
	default:
		return rs2v
	}
}

// accessCache feeds a data access of inst to the cache model. Device
// registers are uncached.
func (c *Core) accessCache(inst *insts.Instruction, addr uint32) {
	if c.dcache == nil || !c.latency.IsMemoryOp(inst) || c.memory.IsDevice(addr) {
		return
	}

	res := c.dcache.Read
	if c.latency.IsStoreOp(inst) {
		res = c.dcache.Write
	}
	c.stats.Stalls += c.latency.StallCycles(res(addr).Latency)
}

func (c *Core) trace(r StepResult) {
	if r.Faults != nil {
		level := slog.LevelWarn
		if r.OnlyWarnings() {
			level = slog.LevelInfo
		}
		c.logger.Log(context.Background(), level, "fault",
			"cycle", r.Cycle, "state", r.State, "pc", hex(r.PC), "err", r.Faults)
	}

	if !c.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	c.logger.Debug("cycle",
		"cycle", r.Cycle,
		"state", r.State,
		"pc", hex(r.PC),
		"inst", r.Inst.String(),
		"signals", r.Signals.String(),
	)
	if r.Halted {
		c.logger.Debug("halt", "cycle", r.Cycle, "pc", hex(c.pcOld))
	}
}

type hex uint32

func (h hex) LogValue() slog.Value {
	return slog.StringValue(fmt.Sprintf("0x%08X", uint32(h)))
}
