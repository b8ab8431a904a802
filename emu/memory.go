package emu

import (
	"encoding/binary"
	"fmt"
)

// DefaultMemoryWords is the memory size of the reference configuration.
const DefaultMemoryWords = 2048

// DeviceMapping maps a device to an address range.
type DeviceMapping struct {
	Base   uint32
	Device Device
}

func (d DeviceMapping) contains(addr uint32, size int) bool {
	start := uint64(d.Base)
	end := start + uint64(d.Device.Size())
	return uint64(addr) >= start && uint64(addr)+uint64(size) <= end
}

// Memory is the byte-addressable little-endian store of the core, with
// optional memory-mapped devices layered above it.
type Memory struct {
	data    []byte
	devices []DeviceMapping
}

// NewMemory creates a zeroed memory of the given number of 32-bit words.
func NewMemory(words int) *Memory {
	if words < 0 {
		words = 0
	}
	return &Memory{data: make([]byte, words*4)}
}

// Size returns the size of the RAM in bytes. Devices are not included.
func (m *Memory) Size() uint32 {
	return uint32(len(m.data))
}

// Words returns the size of the RAM in 32-bit words.
func (m *Memory) Words() int {
	return len(m.data) / 4
}

// MapDevice maps dev at base. Mappings may not overlap each other.
func (m *Memory) MapDevice(base uint32, dev Device) error {
	if dev.Size() == 0 {
		return fmt.Errorf("device at 0x%08X has zero size", base)
	}
	if uint64(base)+uint64(dev.Size()) > 1<<32 {
		return fmt.Errorf("device at 0x%08X extends past the address space", base)
	}

	mapping := DeviceMapping{Base: base, Device: dev}
	for _, existing := range m.devices {
		if overlaps(existing, mapping) {
			return fmt.Errorf("device at 0x%08X overlaps device at 0x%08X", base, existing.Base)
		}
	}

	m.devices = append(m.devices, mapping)
	return nil
}

// Devices returns the current device mappings.
func (m *Memory) Devices() []DeviceMapping {
	return m.devices
}

// IsDevice reports whether addr is served by a mapped device.
func (m *Memory) IsDevice(addr uint32) bool {
	_, ok := m.findDevice(addr, 1)
	return ok
}

func overlaps(a, b DeviceMapping) bool {
	aEnd := uint64(a.Base) + uint64(a.Device.Size())
	bEnd := uint64(b.Base) + uint64(b.Device.Size())
	return uint64(a.Base) < bEnd && uint64(b.Base) < aEnd
}

func (m *Memory) findDevice(addr uint32, size int) (DeviceMapping, bool) {
	for _, d := range m.devices {
		if d.contains(addr, size) {
			return d, true
		}
	}
	return DeviceMapping{}, false
}

func (m *Memory) inRange(addr uint32, size int) bool {
	return uint64(addr)+uint64(size) <= uint64(len(m.data))
}

func validSize(size int) bool {
	return size == 1 || size == 2 || size == 4
}

// Read reads size bytes (1, 2 or 4) at addr, zero-extended.
//
// A misaligned access is carried out byte by byte and returns the value
// together with an ErrMisaligned *Fault. An access outside RAM and every
// device returns 0 and an ErrAddressOutOfRange *Fault.
func (m *Memory) Read(addr uint32, size int) (uint32, error) {
	if !validSize(size) {
		return 0, &Fault{Kind: ErrInvalidWidth, Op: "read", Addr: addr, Size: size}
	}

	if d, ok := m.findDevice(addr, size); ok {
		v, err := d.Device.Read(addr-d.Base, size)
		if err != nil {
			return 0, &Fault{Kind: ErrDeviceAccess, Op: "read", Addr: addr, Size: size, Err: err}
		}
		return v, nil
	}

	if !m.inRange(addr, size) {
		return 0, &Fault{Kind: ErrAddressOutOfRange, Op: "read", Addr: addr, Size: size}
	}

	var value uint32
	for i := 0; i < size; i++ {
		value |= uint32(m.data[addr+uint32(i)]) << (8 * i)
	}

	if addr%uint32(size) != 0 {
		return value, &Fault{Kind: ErrMisaligned, Op: "read", Addr: addr, Size: size}
	}
	return value, nil
}

// Write writes the low size bytes (1, 2 or 4) of value at addr, leaving
// neighbouring bytes untouched. Fault reporting follows Read; out-of-range
// writes are dropped.
func (m *Memory) Write(addr uint32, size int, value uint32) error {
	if !validSize(size) {
		return &Fault{Kind: ErrInvalidWidth, Op: "write", Addr: addr, Size: size}
	}

	if d, ok := m.findDevice(addr, size); ok {
		if err := d.Device.Write(addr-d.Base, size, value); err != nil {
			return &Fault{Kind: ErrDeviceAccess, Op: "write", Addr: addr, Size: size, Err: err}
		}
		return nil
	}

	if !m.inRange(addr, size) {
		return &Fault{Kind: ErrAddressOutOfRange, Op: "write", Addr: addr, Size: size}
	}

	for i := 0; i < size; i++ {
		m.data[addr+uint32(i)] = byte(value >> (8 * i))
	}

	if addr%uint32(size) != 0 {
		return &Fault{Kind: ErrMisaligned, Op: "write", Addr: addr, Size: size}
	}
	return nil
}

// LoadWords copies an image of little-endian words to address 0. The
// image may be shorter than memory; the remainder is zeroed.
func (m *Memory) LoadWords(words []uint32) error {
	if len(words) > m.Words() {
		return fmt.Errorf("image of %d words does not fit in %d words of memory", len(words), m.Words())
	}

	m.Clear()
	for i, w := range words {
		binary.LittleEndian.PutUint32(m.data[i*4:], w)
	}
	return nil
}

// Clear zeroes all of RAM. Devices are untouched.
func (m *Memory) Clear() {
	clear(m.data)
}

// Dump returns count words of RAM starting at word-aligned byte address
// start. Words outside RAM are omitted.
func (m *Memory) Dump(start uint32, count int) []uint32 {
	start &^= 3
	var out []uint32
	for i := 0; i < count; i++ {
		addr := uint64(start) + uint64(i)*4
		if addr+4 > uint64(len(m.data)) {
			break
		}
		out = append(out, binary.LittleEndian.Uint32(m.data[addr:]))
	}
	return out
}
