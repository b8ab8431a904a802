package emu

import (
	"errors"
	"fmt"
)

// Fault kinds. All of them are recoverable: the caller decides whether a
// fault stops the simulation.
var (
	// ErrDecodeFault reports an opcode outside RV32I.
	ErrDecodeFault = errors.New("decode fault")

	// ErrMisaligned reports a half or word access that is not naturally
	// aligned. The access still happens byte by byte.
	ErrMisaligned = errors.New("misaligned access")

	// ErrAddressOutOfRange reports an access outside memory and every
	// mapped device. Reads yield zero, writes are dropped.
	ErrAddressOutOfRange = errors.New("address out of range")

	// ErrInvalidWidth reports a reserved load/store funct3 encoding.
	ErrInvalidWidth = errors.New("invalid access width")

	// ErrDeviceAccess reports an access a memory-mapped device refused.
	ErrDeviceAccess = errors.New("device access refused")
)

// Fault describes one fault raised while executing an instruction.
type Fault struct {
	// Kind is one of the Err* sentinels above.
	Kind error

	// Op is "fetch", "read", "write" or "decode".
	Op string

	// Addr is the accessed address (or the instruction word for decode
	// faults).
	Addr uint32

	// Size is the access width in bytes.
	Size int

	// PC is the address of the faulting instruction, when known.
	PC uint32

	// Err carries the device error for ErrDeviceAccess faults.
	Err error
}

// Error implements error.
func (f *Fault) Error() string {
	msg := fmt.Sprintf("%v: %s addr=0x%08X size=%d pc=0x%08X", f.Kind, f.Op, f.Addr, f.Size, f.PC)
	if f.Err != nil {
		msg += ": " + f.Err.Error()
	}
	return msg
}

// Unwrap exposes the fault kind and the device error to errors.Is.
func (f *Fault) Unwrap() []error {
	if f.Err != nil {
		return []error{f.Kind, f.Err}
	}
	return []error{f.Kind}
}

// IsWarning reports whether the fault left architectural state exactly as
// the instruction intended (misaligned accesses are carried out).
func (f *Fault) IsWarning() bool {
	return errors.Is(f.Kind, ErrMisaligned)
}

// WithPC returns a copy of the fault tagged with the faulting PC.
func (f *Fault) WithPC(pc uint32) *Fault {
	c := *f
	c.PC = pc
	return &c
}
