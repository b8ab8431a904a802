// Package insts provides RV32I instruction definitions and decoding.
//
// This package turns 32-bit RV32I machine words into structured
// instruction records. It covers:
//   - Field extraction: opcode, rd, rs1, rs2, funct3, funct7
//   - Immediate format classification (I/S/B/U/J) and generation
//   - Opcode family classification used by the control unit
//   - Encoders for hand-assembling test programs
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0x00818113) // addi x2, x3, 8
//	fmt.Printf("Class: %v, Rd: %d, Rs1: %d, Imm: %d\n", inst.Class, inst.Rd, inst.Rs1, inst.Imm)
package insts
