package emu

import "github.com/sarchlab/rv32mc/insts"

// BranchTaken evaluates the funct3-selected branch condition over the
// flags of a SUB comparison. The reserved encodings 010 and 011 are never
// taken.
func BranchTaken(funct3 uint8, cmp ALUResult) bool {
	switch funct3 {
	case insts.Funct3BEQ:
		return cmp.Zero
	case insts.Funct3BNE:
		return !cmp.Zero
	case insts.Funct3BLT:
		return cmp.LessSigned
	case insts.Funct3BGE:
		return !cmp.LessSigned
	case insts.Funct3BLTU:
		return cmp.LessUnsigned
	case insts.Funct3BGEU:
		return !cmp.LessUnsigned
	default:
		return false
	}
}
