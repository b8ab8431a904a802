package insts

// Funct3 values shared by the encoders and the execution units.
const (
	Funct3AddSub = 0b000
	Funct3SLL    = 0b001
	Funct3SLT    = 0b010
	Funct3SLTU   = 0b011
	Funct3XOR    = 0b100
	Funct3SR     = 0b101
	Funct3OR     = 0b110
	Funct3AND    = 0b111

	Funct3BEQ  = 0b000
	Funct3BNE  = 0b001
	Funct3BLT  = 0b100
	Funct3BGE  = 0b101
	Funct3BLTU = 0b110
	Funct3BGEU = 0b111

	Funct3Byte         = 0b000
	Funct3Half         = 0b001
	Funct3Word         = 0b010
	Funct3ByteUnsigned = 0b100
	Funct3HalfUnsigned = 0b101
)

// Funct7Alt selects SUB and SRA/SRAI.
const Funct7Alt = 0b0100000

// EncodeR assembles a register-register instruction.
func EncodeR(op Opcode, funct7, funct3, rd, rs1, rs2 uint8) uint32 {
	return uint32(funct7&0x7F)<<25 |
		uint32(rs2&0x1F)<<20 |
		uint32(rs1&0x1F)<<15 |
		uint32(funct3&0x7)<<12 |
		uint32(rd&0x1F)<<7 |
		uint32(op&0x7F)
}

// EncodeI assembles an I-type instruction. Only the low 12 bits of imm are
// used.
func EncodeI(op Opcode, funct3, rd, rs1 uint8, imm int32) uint32 {
	return (uint32(imm)&0xFFF)<<20 |
		uint32(rs1&0x1F)<<15 |
		uint32(funct3&0x7)<<12 |
		uint32(rd&0x1F)<<7 |
		uint32(op&0x7F)
}

// EncodeS assembles a store.
func EncodeS(funct3, rs1, rs2 uint8, imm int32) uint32 {
	u := uint32(imm)
	return ((u>>5)&0x7F)<<25 |
		uint32(rs2&0x1F)<<20 |
		uint32(rs1&0x1F)<<15 |
		uint32(funct3&0x7)<<12 |
		(u&0x1F)<<7 |
		uint32(OpcodeStore)
}

// EncodeB assembles a conditional branch. imm is a byte offset; bit 0 is
// dropped.
func EncodeB(funct3, rs1, rs2 uint8, imm int32) uint32 {
	u := uint32(imm)
	return ((u>>12)&0x1)<<31 |
		((u>>5)&0x3F)<<25 |
		uint32(rs2&0x1F)<<20 |
		uint32(rs1&0x1F)<<15 |
		uint32(funct3&0x7)<<12 |
		((u>>1)&0xF)<<8 |
		((u>>11)&0x1)<<7 |
		uint32(OpcodeBranch)
}

// EncodeU assembles LUI or AUIPC. imm holds the 20 upper bits.
func EncodeU(op Opcode, rd uint8, imm uint32) uint32 {
	return (imm&0xFFFFF)<<12 | uint32(rd&0x1F)<<7 | uint32(op&0x7F)
}

// EncodeJ assembles JAL. imm is a byte offset; bit 0 is dropped.
func EncodeJ(rd uint8, imm int32) uint32 {
	u := uint32(imm)
	return ((u>>20)&0x1)<<31 |
		((u>>1)&0x3FF)<<21 |
		((u>>11)&0x1)<<20 |
		((u>>12)&0xFF)<<12 |
		uint32(rd&0x1F)<<7 |
		uint32(OpcodeJAL)
}

// ADD encodes add rd, rs1, rs2.
func ADD(rd, rs1, rs2 uint8) uint32 {
	return EncodeR(OpcodeOp, 0, Funct3AddSub, rd, rs1, rs2)
}

// SUB encodes sub rd, rs1, rs2.
func SUB(rd, rs1, rs2 uint8) uint32 {
	return EncodeR(OpcodeOp, Funct7Alt, Funct3AddSub, rd, rs1, rs2)
}

// AND encodes and rd, rs1, rs2.
func AND(rd, rs1, rs2 uint8) uint32 {
	return EncodeR(OpcodeOp, 0, Funct3AND, rd, rs1, rs2)
}

// OR encodes or rd, rs1, rs2.
func OR(rd, rs1, rs2 uint8) uint32 {
	return EncodeR(OpcodeOp, 0, Funct3OR, rd, rs1, rs2)
}

// XOR encodes xor rd, rs1, rs2.
func XOR(rd, rs1, rs2 uint8) uint32 {
	return EncodeR(OpcodeOp, 0, Funct3XOR, rd, rs1, rs2)
}

// SLT encodes slt rd, rs1, rs2.
func SLT(rd, rs1, rs2 uint8) uint32 {
	return EncodeR(OpcodeOp, 0, Funct3SLT, rd, rs1, rs2)
}

// SLTU encodes sltu rd, rs1, rs2.
func SLTU(rd, rs1, rs2 uint8) uint32 {
	return EncodeR(OpcodeOp, 0, Funct3SLTU, rd, rs1, rs2)
}

// SLL encodes sll rd, rs1, rs2.
func SLL(rd, rs1, rs2 uint8) uint32 {
	return EncodeR(OpcodeOp, 0, Funct3SLL, rd, rs1, rs2)
}

// SRL encodes srl rd, rs1, rs2.
func SRL(rd, rs1, rs2 uint8) uint32 {
	return EncodeR(OpcodeOp, 0, Funct3SR, rd, rs1, rs2)
}

// SRA encodes sra rd, rs1, rs2.
func SRA(rd, rs1, rs2 uint8) uint32 {
	return EncodeR(OpcodeOp, Funct7Alt, Funct3SR, rd, rs1, rs2)
}

// ADDI encodes addi rd, rs1, imm.
func ADDI(rd, rs1 uint8, imm int32) uint32 {
	return EncodeI(OpcodeOpImm, Funct3AddSub, rd, rs1, imm)
}

// ANDI encodes andi rd, rs1, imm.
func ANDI(rd, rs1 uint8, imm int32) uint32 {
	return EncodeI(OpcodeOpImm, Funct3AND, rd, rs1, imm)
}

// ORI encodes ori rd, rs1, imm.
func ORI(rd, rs1 uint8, imm int32) uint32 {
	return EncodeI(OpcodeOpImm, Funct3OR, rd, rs1, imm)
}

// XORI encodes xori rd, rs1, imm.
func XORI(rd, rs1 uint8, imm int32) uint32 {
	return EncodeI(OpcodeOpImm, Funct3XOR, rd, rs1, imm)
}

// SLTI encodes slti rd, rs1, imm.
func SLTI(rd, rs1 uint8, imm int32) uint32 {
	return EncodeI(OpcodeOpImm, Funct3SLT, rd, rs1, imm)
}

// SLTIU encodes sltiu rd, rs1, imm.
func SLTIU(rd, rs1 uint8, imm int32) uint32 {
	return EncodeI(OpcodeOpImm, Funct3SLTU, rd, rs1, imm)
}

// SLLI encodes slli rd, rs1, shamt.
func SLLI(rd, rs1, shamt uint8) uint32 {
	return EncodeI(OpcodeOpImm, Funct3SLL, rd, rs1, int32(shamt&0x1F))
}

// SRLI encodes srli rd, rs1, shamt.
func SRLI(rd, rs1, shamt uint8) uint32 {
	return EncodeI(OpcodeOpImm, Funct3SR, rd, rs1, int32(shamt&0x1F))
}

// SRAI encodes srai rd, rs1, shamt.
func SRAI(rd, rs1, shamt uint8) uint32 {
	return EncodeI(OpcodeOpImm, Funct3SR, rd, rs1, int32(shamt&0x1F)|Funct7Alt<<5)
}

// LB encodes lb rd, imm(rs1).
func LB(rd, rs1 uint8, imm int32) uint32 {
	return EncodeI(OpcodeLoad, Funct3Byte, rd, rs1, imm)
}

// LH encodes lh rd, imm(rs1).
func LH(rd, rs1 uint8, imm int32) uint32 {
	return EncodeI(OpcodeLoad, Funct3Half, rd, rs1, imm)
}

// LW encodes lw rd, imm(rs1).
func LW(rd, rs1 uint8, imm int32) uint32 {
	return EncodeI(OpcodeLoad, Funct3Word, rd, rs1, imm)
}

// LBU encodes lbu rd, imm(rs1).
func LBU(rd, rs1 uint8, imm int32) uint32 {
	return EncodeI(OpcodeLoad, Funct3ByteUnsigned, rd, rs1, imm)
}

// LHU encodes lhu rd, imm(rs1).
func LHU(rd, rs1 uint8, imm int32) uint32 {
	return EncodeI(OpcodeLoad, Funct3HalfUnsigned, rd, rs1, imm)
}

// SB encodes sb rs2, imm(rs1).
func SB(rs2, rs1 uint8, imm int32) uint32 {
	return EncodeS(Funct3Byte, rs1, rs2, imm)
}

// SH encodes sh rs2, imm(rs1).
func SH(rs2, rs1 uint8, imm int32) uint32 {
	return EncodeS(Funct3Half, rs1, rs2, imm)
}

// SW encodes sw rs2, imm(rs1).
func SW(rs2, rs1 uint8, imm int32) uint32 {
	return EncodeS(Funct3Word, rs1, rs2, imm)
}

// BEQ encodes beq rs1, rs2, offset.
func BEQ(rs1, rs2 uint8, offset int32) uint32 {
	return EncodeB(Funct3BEQ, rs1, rs2, offset)
}

// BNE encodes bne rs1, rs2, offset.
func BNE(rs1, rs2 uint8, offset int32) uint32 {
	return EncodeB(Funct3BNE, rs1, rs2, offset)
}

// BLT encodes blt rs1, rs2, offset.
func BLT(rs1, rs2 uint8, offset int32) uint32 {
	return EncodeB(Funct3BLT, rs1, rs2, offset)
}

// BGE encodes bge rs1, rs2, offset.
func BGE(rs1, rs2 uint8, offset int32) uint32 {
	return EncodeB(Funct3BGE, rs1, rs2, offset)
}

// BLTU encodes bltu rs1, rs2, offset.
func BLTU(rs1, rs2 uint8, offset int32) uint32 {
	return EncodeB(Funct3BLTU, rs1, rs2, offset)
}

// BGEU encodes bgeu rs1, rs2, offset.
func BGEU(rs1, rs2 uint8, offset int32) uint32 {
	return EncodeB(Funct3BGEU, rs1, rs2, offset)
}

// LUI encodes lui rd, imm20.
func LUI(rd uint8, imm20 uint32) uint32 {
	return EncodeU(OpcodeLUI, rd, imm20)
}

// AUIPC encodes auipc rd, imm20.
func AUIPC(rd uint8, imm20 uint32) uint32 {
	return EncodeU(OpcodeAUIPC, rd, imm20)
}

// JAL encodes jal rd, offset.
func JAL(rd uint8, offset int32) uint32 {
	return EncodeJ(rd, offset)
}

// JALR encodes jalr rd, imm(rs1).
func JALR(rd, rs1 uint8, imm int32) uint32 {
	return EncodeI(OpcodeJALR, 0, rd, rs1, imm)
}

// NOP encodes addi x0, x0, 0.
func NOP() uint32 {
	return ADDI(0, 0, 0)
}

// HALT encodes jal x0, 0, the self-loop the run loop treats as a halt.
func HALT() uint32 {
	return JAL(0, 0)
}
