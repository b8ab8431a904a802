package emu

import "github.com/sarchlab/rv32mc/insts"

// Width is a memory access width in bytes.
type Width int

// Access widths.
const (
	WidthByte Width = 1
	WidthHalf Width = 2
	WidthWord Width = 4
)

// LoadWidth decodes the width and signedness of a load from funct3.
// ok is false for the reserved encodings 011, 110 and 111.
func LoadWidth(funct3 uint8) (width Width, signed bool, ok bool) {
	switch funct3 {
	case insts.Funct3Byte:
		return WidthByte, true, true
	case insts.Funct3Half:
		return WidthHalf, true, true
	case insts.Funct3Word:
		return WidthWord, false, true
	case insts.Funct3ByteUnsigned:
		return WidthByte, false, true
	case insts.Funct3HalfUnsigned:
		return WidthHalf, false, true
	default:
		return 0, false, false
	}
}

// StoreWidth decodes the width of a store from funct3.
func StoreWidth(funct3 uint8) (Width, bool) {
	switch funct3 {
	case insts.Funct3Byte:
		return WidthByte, true
	case insts.Funct3Half:
		return WidthHalf, true
	case insts.Funct3Word:
		return WidthWord, true
	default:
		return 0, false
	}
}

// LoadStoreUnit implements RV32I loads and stores on top of Memory.
type LoadStoreUnit struct {
	memory *Memory
}

// NewLoadStoreUnit creates a new LoadStoreUnit connected to the given
// memory.
func NewLoadStoreUnit(memory *Memory) *LoadStoreUnit {
	return &LoadStoreUnit{memory: memory}
}

// Load reads the funct3-selected width at addr and sign- or zero-extends
// it to 32 bits. Faults follow Memory.Read; a reserved funct3 yields 0 and
// an ErrInvalidWidth fault.
func (lsu *LoadStoreUnit) Load(addr uint32, funct3 uint8) (uint32, error) {
	width, signed, ok := LoadWidth(funct3)
	if !ok {
		return 0, &Fault{Kind: ErrInvalidWidth, Op: "read", Addr: addr}
	}

	value, err := lsu.memory.Read(addr, int(width))

	if signed {
		switch width {
		case WidthByte:
			value = uint32(int32(int8(value)))
		case WidthHalf:
			value = uint32(int32(int16(value)))
		}
	}

	return value, err
}

// Store writes the low funct3-selected bytes of value at addr.
func (lsu *LoadStoreUnit) Store(addr uint32, funct3 uint8, value uint32) error {
	width, ok := StoreWidth(funct3)
	if !ok {
		return &Fault{Kind: ErrInvalidWidth, Op: "write", Addr: addr}
	}
	return lsu.memory.Write(addr, int(width), value)
}
