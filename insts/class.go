package insts

// Class groups opcodes that the control unit sequences identically.
type Class uint8

// Opcode families.
const (
	ClassUnknown Class = iota
	ClassRegReg        // OP: add, sub, and, ...
	ClassRegImm        // OP-IMM: addi, andi, ...
	ClassLUI
	ClassAUIPC
	ClassLoad
	ClassStore
	ClassBranch
	ClassJAL
	ClassJALR
)

var classNames = map[Class]string{
	ClassUnknown: "unknown",
	ClassRegReg:  "reg-reg",
	ClassRegImm:  "reg-imm",
	ClassLUI:     "lui",
	ClassAUIPC:   "auipc",
	ClassLoad:    "load",
	ClassStore:   "store",
	ClassBranch:  "branch",
	ClassJAL:     "jal",
	ClassJALR:    "jalr",
}

// String returns a short lowercase name of the class.
func (c Class) String() string {
	if name, ok := classNames[c]; ok {
		return name
	}
	return "unknown"
}

// Classes returns every class, ClassUnknown first.
func Classes() []Class {
	return []Class{
		ClassUnknown, ClassRegReg, ClassRegImm, ClassLUI, ClassAUIPC,
		ClassLoad, ClassStore, ClassBranch, ClassJAL, ClassJALR,
	}
}

// opcodeClasses is the opcode to family mapping.
var opcodeClasses = map[Opcode]Class{
	OpcodeOp:     ClassRegReg,
	OpcodeOpImm:  ClassRegImm,
	OpcodeLUI:    ClassLUI,
	OpcodeAUIPC:  ClassAUIPC,
	OpcodeLoad:   ClassLoad,
	OpcodeStore:  ClassStore,
	OpcodeBranch: ClassBranch,
	OpcodeJAL:    ClassJAL,
	OpcodeJALR:   ClassJALR,
}

// ClassOf returns the family of an opcode, or ClassUnknown.
func ClassOf(op Opcode) Class {
	return opcodeClasses[op]
}

// WritesRegister reports whether instructions of the class commit a value
// to rd.
func (c Class) WritesRegister() bool {
	switch c {
	case ClassRegReg, ClassRegImm, ClassLUI, ClassAUIPC, ClassLoad,
		ClassJAL, ClassJALR:
		return true
	default:
		return false
	}
}

// WritesMemory reports whether instructions of the class commit to memory.
func (c Class) WritesMemory() bool {
	return c == ClassStore
}

// IsJump reports whether the class is an unconditional jump.
func (c Class) IsJump() bool {
	return c == ClassJAL || c == ClassJALR
}
