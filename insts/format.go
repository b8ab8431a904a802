package insts

// Format represents an immediate encoding format.
type Format uint8

// Immediate formats.
const (
	FormatNone  Format = iota // No immediate (register-register)
	FormatIType               // ALU-immediate, loads, JALR
	FormatSType               // Stores
	FormatBType               // Conditional branches
	FormatUType               // LUI, AUIPC
	FormatJType               // JAL
)

// String returns the conventional name of the format.
func (f Format) String() string {
	switch f {
	case FormatIType:
		return "ITYPE"
	case FormatSType:
		return "STYPE"
	case FormatBType:
		return "BTYPE"
	case FormatUType:
		return "UTYPE"
	case FormatJType:
		return "JTYPE"
	default:
		return "NONE"
	}
}

// ClassifyFormat returns the immediate format used by an opcode. The second
// result is false for opcodes that carry no immediate or are not RV32I.
func ClassifyFormat(op Opcode) (Format, bool) {
	switch op {
	case OpcodeOpImm, OpcodeLoad, OpcodeJALR:
		return FormatIType, true
	case OpcodeStore:
		return FormatSType, true
	case OpcodeBranch:
		return FormatBType, true
	case OpcodeLUI, OpcodeAUIPC:
		return FormatUType, true
	case OpcodeJAL:
		return FormatJType, true
	default:
		return FormatNone, false
	}
}

// Immediate extracts the 32-bit immediate of word for the given format.
// I, S, B and J immediates are sign-extended; U immediates keep the upper
// 20 bits and zero the low 12.
func Immediate(word uint32, format Format) uint32 {
	switch format {
	case FormatIType:
		return uint32(int32(word) >> 20)
	case FormatSType:
		imm := (word>>25)<<5 | (word>>7)&0x1F
		return signExtend(imm, 12)
	case FormatBType:
		imm := (word>>31)<<12 |
			((word>>7)&0x1)<<11 |
			((word>>25)&0x3F)<<5 |
			((word>>8)&0xF)<<1
		return signExtend(imm, 13)
	case FormatUType:
		return word & 0xFFFFF000
	case FormatJType:
		imm := (word>>31)<<20 |
			((word>>12)&0xFF)<<12 |
			((word>>20)&0x1)<<11 |
			((word>>21)&0x3FF)<<1
		return signExtend(imm, 21)
	default:
		return 0
	}
}

// signExtend sign-extends the low bits of value to 32 bits.
func signExtend(value uint32, bits uint) uint32 {
	shift := 32 - bits
	return uint32(int32(value<<shift) >> shift)
}
