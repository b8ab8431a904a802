package emu

import "errors"

// Default MMIO addresses used by the board software.
const (
	DefaultLEDAddr    uint32 = 0xFFFFFFFF
	DefaultMicrosAddr uint32 = 0xFFFFFFF4
)

// ErrReadOnly is returned by devices that reject writes.
var ErrReadOnly = errors.New("register is read-only")

// Device represents a memory-mapped device.
type Device interface {
	// Read reads size bytes at offset into the device.
	Read(offset uint32, size int) (uint32, error)
	// Write writes size bytes at offset into the device.
	Write(offset uint32, size int, value uint32) error
	// Size returns the size of the device's address space.
	Size() uint32
}

// Resetter is implemented by devices that have power-on state.
type Resetter interface {
	Reset()
}

// LEDRegister is a single byte-wide output register driving a bank of
// eight LEDs.
type LEDRegister struct {
	value  uint8
	writes uint64
}

// NewLEDRegister creates an LED register with every LED off.
func NewLEDRegister() *LEDRegister {
	return &LEDRegister{}
}

// Read implements Device.
func (l *LEDRegister) Read(offset uint32, size int) (uint32, error) {
	return uint32(l.value), nil
}

// Write implements Device.
func (l *LEDRegister) Write(offset uint32, size int, value uint32) error {
	l.value = uint8(value)
	l.writes++
	return nil
}

// Reset turns every LED off and clears the write count.
func (l *LEDRegister) Reset() {
	l.value = 0
	l.writes = 0
}

// Size implements Device.
func (l *LEDRegister) Size() uint32 {
	return 1
}

// Value returns the current LED pattern.
func (l *LEDRegister) Value() uint8 {
	return l.value
}

// Writes returns how many times software wrote the register.
func (l *LEDRegister) Writes() uint64 {
	return l.writes
}

// CycleSource reports the number of elapsed clock cycles.
type CycleSource interface {
	Cycles() uint64
}

// MicrosCounter is a read-only 32-bit free-running microsecond counter
// derived from the core clock.
type MicrosCounter struct {
	source         CycleSource
	cyclesPerMicro uint64
}

// NewMicrosCounter creates a counter that advances once every
// cyclesPerMicro cycles. A zero rate is treated as one.
func NewMicrosCounter(cyclesPerMicro uint64) *MicrosCounter {
	if cyclesPerMicro == 0 {
		cyclesPerMicro = 1
	}
	return &MicrosCounter{cyclesPerMicro: cyclesPerMicro}
}

// Attach connects the counter to a clock.
func (m *MicrosCounter) Attach(src CycleSource) {
	m.source = src
}

// Micros returns the current counter value.
func (m *MicrosCounter) Micros() uint32 {
	if m.source == nil {
		return 0
	}
	return uint32(m.source.Cycles() / m.cyclesPerMicro)
}

// Read implements Device.
func (m *MicrosCounter) Read(offset uint32, size int) (uint32, error) {
	v := m.Micros() >> (8 * offset)
	switch size {
	case 1:
		return v & 0xFF, nil
	case 2:
		return v & 0xFFFF, nil
	default:
		return v, nil
	}
}

// Write implements Device.
func (m *MicrosCounter) Write(offset uint32, size int, value uint32) error {
	return ErrReadOnly
}

// Size implements Device.
func (m *MicrosCounter) Size() uint32 {
	return 4
}
