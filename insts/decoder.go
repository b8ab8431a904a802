package insts

// Opcode is the 7-bit major opcode held in bits [6:0] of an instruction.
type Opcode uint8

// RV32I major opcodes.
const (
	OpcodeLoad   Opcode = 0b0000011
	OpcodeOpImm  Opcode = 0b0010011
	OpcodeAUIPC  Opcode = 0b0010111
	OpcodeStore  Opcode = 0b0100011
	OpcodeOp     Opcode = 0b0110011
	OpcodeLUI    Opcode = 0b0110111
	OpcodeBranch Opcode = 0b1100011
	OpcodeJALR   Opcode = 0b1100111
	OpcodeJAL    Opcode = 0b1101111
)

// Instruction represents a decoded RV32I instruction.
type Instruction struct {
	Word   uint32 // Raw instruction word
	Opcode Opcode // Bits [6:0]
	Class  Class  // Opcode family
	Format Format // Immediate encoding format

	Rd     uint8 // Bits [11:7]
	Rs1    uint8 // Bits [19:15]
	Rs2    uint8 // Bits [24:20]
	Funct3 uint8 // Bits [14:12]
	Funct7 uint8 // Bits [31:25]

	// Imm is the extended immediate. Zero when Format is FormatNone.
	Imm uint32
}

// Op5 reports bit 5 of the opcode, which separates register-register
// operations from their register-immediate counterparts.
func (i *Instruction) Op5() bool {
	return i.Opcode&0b0100000 != 0
}

// Funct7b5 reports bit 5 of funct7 (instruction bit 30).
func (i *Instruction) Funct7b5() bool {
	return i.Funct7&0b0100000 != 0
}

// Known reports whether the opcode belongs to RV32I.
func (i *Instruction) Known() bool {
	return i.Class != ClassUnknown
}

// Decoder decodes RV32I machine words into instructions.
type Decoder struct{}

// NewDecoder creates a new RV32I instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a 32-bit RV32I instruction word. Unknown opcodes yield an
// instruction with ClassUnknown; the fields are still extracted.
func (d *Decoder) Decode(word uint32) *Instruction {
	inst := &Instruction{}
	d.DecodeInto(word, inst)
	return inst
}

// DecodeInto decodes word into inst without allocating.
func (d *Decoder) DecodeInto(word uint32, inst *Instruction) {
	op := Opcode(word & 0x7F)

	*inst = Instruction{
		Word:   word,
		Opcode: op,
		Class:  ClassOf(op),
		Rd:     uint8((word >> 7) & 0x1F),
		Funct3: uint8((word >> 12) & 0x7),
		Rs1:    uint8((word >> 15) & 0x1F),
		Rs2:    uint8((word >> 20) & 0x1F),
		Funct7: uint8((word >> 25) & 0x7F),
	}

	if format, ok := ClassifyFormat(op); ok {
		inst.Format = format
		inst.Imm = Immediate(word, format)
	}
}
