package core

import (
	"fmt"

	"github.com/sarchlab/rv32mc/emu"
	"github.com/sarchlab/rv32mc/timing/fsm"
)

// ArchState is a snapshot of the core's sequential state between two
// cycles.
type ArchState struct {
	// State is the FSM state the next cycle executes.
	State fsm.State
	// PC is the program counter.
	PC uint32
	// PCOld is the address of the instruction in the instruction
	// register.
	PCOld uint32
	// IR is the instruction register.
	IR uint32
	// ALUOut is the ALU output latched at the end of the last cycle.
	ALUOut uint32
	// MDR is the memory data register.
	MDR uint32
	// Regs holds x0-x31.
	Regs [emu.NumRegs]uint32
}

// String renders the snapshot on one line.
func (s ArchState) String() string {
	return fmt.Sprintf("state=%v pc=0x%08X pc_old=0x%08X ir=0x%08X alu_out=0x%08X mdr=0x%08X",
		s.State, s.PC, s.PCOld, s.IR, s.ALUOut, s.MDR)
}

// Snapshot returns a copy of the core's sequential state.
func (c *Core) Snapshot() ArchState {
	return ArchState{
		State:  c.state,
		PC:     c.pc,
		PCOld:  c.pcOld,
		IR:     c.ir,
		ALUOut: c.aluOut,
		MDR:    c.mdr,
		Regs:   c.regFile.X,
	}
}

// ReadRegister returns the committed value of register i. x0 and indices
// outside the register file read as 0.
func (c *Core) ReadRegister(i uint8) uint32 {
	return c.regFile.ReadReg(i)
}

// ReadMemory reads width bytes (1, 2 or 4) at addr, zero-extended,
// without touching any core state. Faults are reported as by emu.Memory.
func (c *Core) ReadMemory(addr uint32, width int) (uint32, error) {
	return c.memory.Read(addr, width)
}

// WriteRegister sets register i. It is meant for test and harness setup
// between cycles.
func (c *Core) WriteRegister(i uint8, value uint32) {
	c.regFile.WriteReg(i, value)
}
