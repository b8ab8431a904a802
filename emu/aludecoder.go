package emu

import "github.com/sarchlab/rv32mc/insts"

// ALUSel is the coarse ALU request issued by the control unit.
type ALUSel uint8

// ALU selector values.
const (
	// ALUSelAdd requests an addition (PC and address arithmetic).
	ALUSelAdd ALUSel = iota
	// ALUSelSub requests a subtraction (branch comparison).
	ALUSelSub
	// ALUSelFunct defers to funct3/funct7 (R-type and I-type ALU ops).
	ALUSelFunct
)

// String returns the name of the selector.
func (s ALUSel) String() string {
	switch s {
	case ALUSelAdd:
		return "ADD"
	case ALUSelSub:
		return "SUB"
	case ALUSelFunct:
		return "FUNCT_DEFINED"
	default:
		return "ALUSel?"
	}
}

// DecodeALUControl maps the control unit's selector and the instruction's
// funct fields to an ALU operation. op5 is opcode bit 5 (set for
// register-register instructions) and funct7b5 is instruction bit 30.
// funct3=000 only becomes SUB for register-register instructions: there
// is no SUBI.
func DecodeALUControl(sel ALUSel, funct3 uint8, op5, funct7b5 bool) ALUOp {
	switch sel {
	case ALUSelAdd:
		return ALUAdd
	case ALUSelSub:
		return ALUSub
	}

	switch funct3 {
	case insts.Funct3AddSub:
		if op5 && funct7b5 {
			return ALUSub
		}
		return ALUAdd
	case insts.Funct3AND:
		return ALUAnd
	case insts.Funct3OR:
		return ALUOr
	case insts.Funct3XOR:
		return ALUXor
	case insts.Funct3SLT:
		return ALUSlt
	case insts.Funct3SLTU:
		return ALUSltu
	case insts.Funct3SLL:
		return ALUSll
	default: // insts.Funct3SR
		if funct7b5 {
			return ALUSra
		}
		return ALUSrl
	}
}
