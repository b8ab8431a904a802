package emu

// ALUOp is an operation performed by the ALU.
type ALUOp uint8

// ALU operations.
const (
	ALUAdd ALUOp = iota
	ALUSub
	ALUAnd
	ALUOr
	ALUXor
	ALUSlt
	ALUSltu
	ALUSll
	ALUSrl
	ALUSra
)

var aluOpNames = [...]string{
	ALUAdd:  "ADD",
	ALUSub:  "SUB",
	ALUAnd:  "AND",
	ALUOr:   "OR",
	ALUXor:  "XOR",
	ALUSlt:  "SLT",
	ALUSltu: "SLTU",
	ALUSll:  "SLL",
	ALUSrl:  "SRL",
	ALUSra:  "SRA",
}

// String returns the mnemonic of the operation.
func (op ALUOp) String() string {
	if int(op) < len(aluOpNames) {
		return aluOpNames[op]
	}
	return "ALU?"
}

// ALUResult is the output of one ALU evaluation.
type ALUResult struct {
	// Value is the 32-bit result.
	Value uint32

	// Zero is set when the operands are equal.
	Zero bool

	// LessSigned is set when src1 < src2 as two's complement values.
	LessSigned bool

	// LessUnsigned is set when src1 < src2 as unsigned values.
	LessUnsigned bool
}

// ExecuteALU evaluates op over src1 and src2. The comparison flags are
// produced for every operation; the branch logic reads them after SUB.
// Shifts use the low 5 bits of src2.
func ExecuteALU(op ALUOp, src1, src2 uint32) ALUResult {
	result := ALUResult{
		Zero:         src1 == src2,
		LessSigned:   int32(src1) < int32(src2),
		LessUnsigned: src1 < src2,
	}

	shamt := src2 & 0x1F

	switch op {
	case ALUAdd:
		result.Value = src1 + src2
	case ALUSub:
		result.Value = src1 - src2
	case ALUAnd:
		result.Value = src1 & src2
	case ALUOr:
		result.Value = src1 | src2
	case ALUXor:
		result.Value = src1 ^ src2
	case ALUSlt:
		result.Value = boolToWord(result.LessSigned)
	case ALUSltu:
		result.Value = boolToWord(result.LessUnsigned)
	case ALUSll:
		result.Value = src1 << shamt
	case ALUSrl:
		result.Value = src1 >> shamt
	case ALUSra:
		result.Value = uint32(int32(src1) >> shamt)
	}

	return result
}

func boolToWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
