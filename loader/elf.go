// Package loader provides program loading for the simulator: hex memory
// images and bare-metal RV32 ELF executables.
package loader

import (
	"debug/elf"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"
)

// SegmentFlags represents memory protection flags for a segment.
type SegmentFlags uint32

const (
	// SegmentFlagExecute indicates the segment is executable.
	SegmentFlagExecute SegmentFlags = 1 << iota
	// SegmentFlagWrite indicates the segment is writable.
	SegmentFlagWrite
	// SegmentFlagRead indicates the segment is readable.
	SegmentFlagRead
)

// Segment represents a loadable segment from an ELF binary.
type Segment struct {
	// VirtAddr is the address where this segment should be loaded.
	VirtAddr uint32
	// Data contains the segment contents from the file.
	Data []byte
	// MemSize is the size in memory (may be larger than len(Data) for BSS).
	MemSize uint32
	// Flags contains the segment protection flags.
	Flags SegmentFlags
}

// Program represents a loaded ELF program ready for execution.
type Program struct {
	// EntryPoint is the address where execution should begin.
	EntryPoint uint32
	// Segments contains all loadable segments from the ELF file.
	Segments []Segment
}

// LoadELF parses an RV32 little-endian ELF executable.
func LoadELF(path string) (*Program, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ELF file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if f.Class != elf.ELFCLASS32 {
		return nil, fmt.Errorf("not a 32-bit ELF file")
	}
	if f.Machine != elf.EM_RISCV {
		return nil, fmt.Errorf("not a RISC-V ELF file (machine type: %v)", f.Machine)
	}
	if f.Data != elf.ELFDATA2LSB {
		return nil, fmt.Errorf("not a little-endian ELF file")
	}

	prog := &Program{
		EntryPoint: uint32(f.Entry),
	}

	for _, phdr := range f.Progs {
		if phdr.Type != elf.PT_LOAD {
			continue
		}

		data := make([]byte, phdr.Filesz)
		if phdr.Filesz > 0 {
			n, err := phdr.ReadAt(data, 0)
			if err != nil && err != io.EOF {
				return nil, fmt.Errorf("failed to read segment at 0x%x: %w", phdr.Vaddr, err)
			}
			if uint64(n) != phdr.Filesz {
				return nil, fmt.Errorf("short read for segment at 0x%x: got %d bytes, expected %d",
					phdr.Vaddr, n, phdr.Filesz)
			}
		}

		var flags SegmentFlags
		if phdr.Flags&elf.PF_X != 0 {
			flags |= SegmentFlagExecute
		}
		if phdr.Flags&elf.PF_W != 0 {
			flags |= SegmentFlagWrite
		}
		if phdr.Flags&elf.PF_R != 0 {
			flags |= SegmentFlagRead
		}

		prog.Segments = append(prog.Segments, Segment{
			VirtAddr: uint32(phdr.Vaddr),
			Data:     data,
			MemSize:  uint32(phdr.Memsz),
			Flags:    flags,
		})
	}

	return prog, nil
}

// Image renders the program's segments into a memory image of words
// 32-bit words. BSS is zero. Segments reaching past the image are an
// error.
func (p *Program) Image(words int) ([]uint32, error) {
	size := uint64(words) * 4
	mem := make([]byte, size)

	for _, seg := range p.Segments {
		end := uint64(seg.VirtAddr) + uint64(max(seg.MemSize, uint32(len(seg.Data))))
		if end > size {
			return nil, fmt.Errorf("segment at 0x%x ends at 0x%x, past %d bytes of memory",
				seg.VirtAddr, end, size)
		}
		copy(mem[seg.VirtAddr:], seg.Data)
	}

	image := make([]uint32, words)
	for i := range image {
		image[i] = binary.LittleEndian.Uint32(mem[i*4:])
	}
	return image, nil
}

// Executable is a memory image ready for the core.
type Executable struct {
	// Words is the image, padded to the memory size.
	Words []uint32
	// EntryPoint is the ELF entry point; HasEntry is false for hex images.
	EntryPoint uint32
	HasEntry   bool
}

// Load loads path as an ELF executable if it starts with the ELF magic,
// and as a hex image otherwise, and pads it to words.
func Load(path string, words int) (*Executable, error) {
	isELF, err := hasELFMagic(path)
	if err != nil {
		return nil, err
	}

	if isELF {
		prog, err := LoadELF(path)
		if err != nil {
			return nil, err
		}
		image, err := prog.Image(words)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return &Executable{Words: image, EntryPoint: prog.EntryPoint, HasEntry: true}, nil
	}

	raw, err := readHexFile(path, words)
	if err != nil {
		return nil, err
	}
	image, err := PadImage(raw, words)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Executable{Words: image}, nil
}

func hasELFMagic(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	magic := make([]byte, len(elf.ELFMAG))
	n, err := io.ReadFull(f, magic)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return strings.HasPrefix(string(magic[:n]), elf.ELFMAG) && n == len(elf.ELFMAG), nil
}
