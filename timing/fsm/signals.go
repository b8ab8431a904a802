package fsm

import (
	"fmt"

	"github.com/sarchlab/rv32mc/emu"
)

// Src1Sel selects the first ALU operand.
type Src1Sel uint8

// First operand sources.
const (
	Src1RS1V Src1Sel = iota
	Src1PC
	Src1PCOld
	Src1Zero
)

// String returns the name of the select.
func (s Src1Sel) String() string {
	switch s {
	case Src1RS1V:
		return "RS1V"
	case Src1PC:
		return "PC"
	case Src1PCOld:
		return "PC_OLD"
	case Src1Zero:
		return "ZERO"
	default:
		return "Src1?"
	}
}

// Src2Sel selects the second ALU operand.
type Src2Sel uint8

// Second operand sources.
const (
	Src2RS2V Src2Sel = iota
	Src2Imm
	Src2Four
)

// String returns the name of the select.
func (s Src2Sel) String() string {
	switch s {
	case Src2RS2V:
		return "RS2V"
	case Src2Imm:
		return "IMM"
	case Src2Four:
		return "FOUR"
	default:
		return "Src2?"
	}
}

// ResultSel selects the value driven onto the result bus. The result bus
// feeds the PC, the register file write port and the memory address mux.
type ResultSel uint8

// Result bus sources.
const (
	// ResultALU is the combinational ALU output of the current cycle.
	ResultALU ResultSel = iota
	// ResultALUClocked is the ALU output latched at the end of the
	// previous cycle.
	ResultALUClocked
	// ResultMemRead is the memory data register, extended per funct3.
	ResultMemRead
)

// String returns the name of the select.
func (s ResultSel) String() string {
	switch s {
	case ResultALU:
		return "ALU"
	case ResultALUClocked:
		return "ALU_CLOCKED"
	case ResultMemRead:
		return "MEM_RD"
	default:
		return "Result?"
	}
}

// AddrSel selects the memory address.
type AddrSel uint8

// Memory address sources.
const (
	AddrPC AddrSel = iota
	AddrResult
)

// String returns the name of the select.
func (s AddrSel) String() string {
	switch s {
	case AddrPC:
		return "PC"
	case AddrResult:
		return "RESULT"
	default:
		return "Addr?"
	}
}

// ControlSignals is the full set of datapath controls asserted in one
// cycle. It is a plain value: equal signals compare equal.
type ControlSignals struct {
	Src1    Src1Sel
	Src2    Src2Sel
	ALUSel  emu.ALUSel
	Result  ResultSel
	MemAddr AddrSel

	// RegWrEn writes the result bus to rd at the end of the cycle.
	RegWrEn bool
	// MemWrEn writes rs2 to memory at the end of the cycle.
	MemWrEn bool
	// PCEn loads the result bus into the PC unconditionally.
	PCEn bool
	// InstEn latches the fetched word into the instruction register and
	// the current PC into PC_OLD.
	InstEn bool
	// Branch loads the result bus into the PC when the branch condition
	// holds.
	Branch bool
}

// String renders the signals in a compact form for trace output.
func (c ControlSignals) String() string {
	s := fmt.Sprintf("src1=%v src2=%v alu=%v result=%v addr=%v",
		c.Src1, c.Src2, c.ALUSel, c.Result, c.MemAddr)
	for _, en := range []struct {
		on   bool
		name string
	}{
		{c.RegWrEn, "RegWrEn"},
		{c.MemWrEn, "MemWrEn"},
		{c.PCEn, "PCEn"},
		{c.InstEn, "InstEn"},
		{c.Branch, "Branch"},
	} {
		if en.on {
			s += " " + en.name
		}
	}
	return s
}

// WritesState reports whether the signals commit architectural state
// other than the PC.
func (c ControlSignals) WritesState() bool {
	return c.RegWrEn || c.MemWrEn
}
