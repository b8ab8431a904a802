// Package emu provides the RV32I datapath components and a functional
// reference emulator.
package emu

// NumRegs is the number of general-purpose registers.
const NumRegs = 32

// RegFile represents the RV32I integer register file.
// X[0] is hardwired to zero: it always reads as 0 and ignores writes.
type RegFile struct {
	// X holds general-purpose registers x0-x31.
	X [NumRegs]uint32
}

// ReadReg reads a register value. Register 0 and indices >= 32 return 0.
func (r *RegFile) ReadReg(reg uint8) uint32 {
	if reg == 0 || reg >= NumRegs {
		return 0
	}
	return r.X[reg]
}

// WriteReg writes a value to a register. Writes to register 0 and to
// indices >= 32 are ignored.
func (r *RegFile) WriteReg(reg uint8, value uint32) {
	if reg == 0 || reg >= NumRegs {
		return
	}
	r.X[reg] = value
}

// Reset clears every register.
func (r *RegFile) Reset() {
	r.X = [NumRegs]uint32{}
}
