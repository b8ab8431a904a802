package insts

import "fmt"

var regRegMnemonics = map[uint8][2]string{
	Funct3AddSub: {"add", "sub"},
	Funct3SLL:    {"sll", "sll"},
	Funct3SLT:    {"slt", "slt"},
	Funct3SLTU:   {"sltu", "sltu"},
	Funct3XOR:    {"xor", "xor"},
	Funct3SR:     {"srl", "sra"},
	Funct3OR:     {"or", "or"},
	Funct3AND:    {"and", "and"},
}

var regImmMnemonics = map[uint8][2]string{
	Funct3AddSub: {"addi", "addi"},
	Funct3SLL:    {"slli", "slli"},
	Funct3SLT:    {"slti", "slti"},
	Funct3SLTU:   {"sltiu", "sltiu"},
	Funct3XOR:    {"xori", "xori"},
	Funct3SR:     {"srli", "srai"},
	Funct3OR:     {"ori", "ori"},
	Funct3AND:    {"andi", "andi"},
}

var loadMnemonics = map[uint8]string{
	Funct3Byte:         "lb",
	Funct3Half:         "lh",
	Funct3Word:         "lw",
	Funct3ByteUnsigned: "lbu",
	Funct3HalfUnsigned: "lhu",
}

var storeMnemonics = map[uint8]string{
	Funct3Byte: "sb",
	Funct3Half: "sh",
	Funct3Word: "sw",
}

var branchMnemonics = map[uint8]string{
	Funct3BEQ:  "beq",
	Funct3BNE:  "bne",
	Funct3BLT:  "blt",
	Funct3BGE:  "bge",
	Funct3BLTU: "bltu",
	Funct3BGEU: "bgeu",
}

// String renders the instruction in assembler syntax.
func (i *Instruction) String() string {
	imm := int32(i.Imm)

	switch i.Class {
	case ClassRegReg:
		alt := 0
		if i.Funct7b5() {
			alt = 1
		}
		return fmt.Sprintf("%s x%d, x%d, x%d", regRegMnemonics[i.Funct3][alt], i.Rd, i.Rs1, i.Rs2)
	case ClassRegImm:
		if i.Funct3 == Funct3SLL || i.Funct3 == Funct3SR {
			alt := 0
			if i.Funct7b5() {
				alt = 1
			}
			return fmt.Sprintf("%s x%d, x%d, %d", regImmMnemonics[i.Funct3][alt], i.Rd, i.Rs1, i.Imm&0x1F)
		}
		return fmt.Sprintf("%s x%d, x%d, %d", regImmMnemonics[i.Funct3][0], i.Rd, i.Rs1, imm)
	case ClassLUI:
		return fmt.Sprintf("lui x%d, 0x%x", i.Rd, i.Imm>>12)
	case ClassAUIPC:
		return fmt.Sprintf("auipc x%d, 0x%x", i.Rd, i.Imm>>12)
	case ClassLoad:
		return fmt.Sprintf("%s x%d, %d(x%d)", mnemonicOr(loadMnemonics, i.Funct3, "l?"), i.Rd, imm, i.Rs1)
	case ClassStore:
		return fmt.Sprintf("%s x%d, %d(x%d)", mnemonicOr(storeMnemonics, i.Funct3, "s?"), i.Rs2, imm, i.Rs1)
	case ClassBranch:
		return fmt.Sprintf("%s x%d, x%d, %d", mnemonicOr(branchMnemonics, i.Funct3, "b?"), i.Rs1, i.Rs2, imm)
	case ClassJAL:
		return fmt.Sprintf("jal x%d, %d", i.Rd, imm)
	case ClassJALR:
		return fmt.Sprintf("jalr x%d, %d(x%d)", i.Rd, imm, i.Rs1)
	default:
		return fmt.Sprintf(".word 0x%08x", i.Word)
	}
}

func mnemonicOr(table map[uint8]string, funct3 uint8, fallback string) string {
	if m, ok := table[funct3]; ok {
		return m
	}
	return fallback
}
