package loader_test

import (
	"encoding/binary"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32mc/insts"
	"github.com/sarchlab/rv32mc/loader"
)

const (
	emRISCV = 243
	emARM   = 40

	pfX = 0x1
	pfW = 0x2
	pfR = 0x4
)

type testSegment struct {
	addr    uint32
	data    []byte
	memSize uint32
	flags   uint32
	typ     uint32
}

// writeELF32 writes a minimal little-endian ELF32 executable.
func writeELF32(path string, machine uint16, entry uint32, segs ...testSegment) {
	const ehsize, phentsize = 52, 32

	header := make([]byte, ehsize)
	copy(header[0:4], []byte{0x7f, 'E', 'L', 'F'})
	header[4] = 1 // ELFCLASS32
	header[5] = 1 // little endian
	header[6] = 1 // version
	binary.LittleEndian.PutUint16(header[16:18], 2) // executable
	binary.LittleEndian.PutUint16(header[18:20], machine)
	binary.LittleEndian.PutUint32(header[20:24], 1)
	binary.LittleEndian.PutUint32(header[24:28], entry)
	binary.LittleEndian.PutUint32(header[28:32], ehsize) // phoff
	binary.LittleEndian.PutUint16(header[40:42], ehsize)
	binary.LittleEndian.PutUint16(header[42:44], phentsize)
	binary.LittleEndian.PutUint16(header[44:46], uint16(len(segs)))

	offset := uint32(ehsize + phentsize*len(segs))
	var phdrs, payload []byte
	for _, seg := range segs {
		typ := seg.typ
		if typ == 0 {
			typ = 1 // PT_LOAD
		}
		memSize := seg.memSize
		if memSize == 0 {
			memSize = uint32(len(seg.data))
		}

		ph := make([]byte, phentsize)
		binary.LittleEndian.PutUint32(ph[0:4], typ)
		binary.LittleEndian.PutUint32(ph[4:8], offset)
		binary.LittleEndian.PutUint32(ph[8:12], seg.addr)
		binary.LittleEndian.PutUint32(ph[12:16], seg.addr)
		binary.LittleEndian.PutUint32(ph[16:20], uint32(len(seg.data)))
		binary.LittleEndian.PutUint32(ph[20:24], memSize)
		binary.LittleEndian.PutUint32(ph[24:28], seg.flags)
		binary.LittleEndian.PutUint32(ph[28:32], 4)

		phdrs = append(phdrs, ph...)
		payload = append(payload, seg.data...)
		offset += uint32(len(seg.data))
	}

	out := append(append(header, phdrs...), payload...)
	Expect(os.WriteFile(path, out, 0644)).To(Succeed())
}

func wordsToBytes(words ...uint32) []byte {
	out := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(out[i*4:], w)
	}
	return out
}

var _ = Describe("ELF Loader", func() {
	var tempDir string

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "elf-loader-test")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		_ = os.RemoveAll(tempDir)
	})

	Describe("LoadELF", func() {
		Context("with a valid RV32 ELF binary", func() {
			var (
				elfPath string
				code    []byte
			)

			BeforeEach(func() {
				elfPath = filepath.Join(tempDir, "test.elf")
				code = wordsToBytes(insts.ADDI(1, 0, 42), insts.HALT())
				writeELF32(elfPath, emRISCV, 0x100, testSegment{addr: 0x100, data: code, flags: pfR | pfX})
			})

			It("should extract the entry point", func() {
				prog, err := loader.LoadELF(elfPath)
				Expect(err).NotTo(HaveOccurred())
				Expect(prog.EntryPoint).To(Equal(uint32(0x100)))
			})

			It("should load the segment contents and flags", func() {
				prog, err := loader.LoadELF(elfPath)
				Expect(err).NotTo(HaveOccurred())
				Expect(prog.Segments).To(HaveLen(1))

				seg := prog.Segments[0]
				Expect(seg.VirtAddr).To(Equal(uint32(0x100)))
				Expect(seg.Data).To(Equal(code))
				Expect(seg.Flags & loader.SegmentFlagExecute).NotTo(BeZero())
				Expect(seg.Flags & loader.SegmentFlagWrite).To(BeZero())
			})

			It("should render a memory image", func() {
				prog, err := loader.LoadELF(elfPath)
				Expect(err).NotTo(HaveOccurred())

				image, err := prog.Image(128)
				Expect(err).NotTo(HaveOccurred())
				Expect(image).To(HaveLen(128))
				Expect(image[0x40]).To(Equal(insts.ADDI(1, 0, 42)))
				Expect(image[0x41]).To(Equal(insts.HALT()))
				Expect(image[0]).To(Equal(uint32(0)))
			})

			It("should reject images too small for the segments", func() {
				prog, err := loader.LoadELF(elfPath)
				Expect(err).NotTo(HaveOccurred())

				_, err = prog.Image(0x41)
				Expect(err).To(MatchError(ContainSubstring("past")))
			})
		})

		Context("with several segments", func() {
			It("should load code, data and BSS", func() {
				elfPath := filepath.Join(tempDir, "multi.elf")
				code := wordsToBytes(insts.NOP())
				data := []byte{0x01, 0x02, 0x03, 0x04, 0x05}
				writeELF32(elfPath, emRISCV, 0x100,
					testSegment{addr: 0x100, data: code, flags: pfR | pfX},
					testSegment{addr: 0x200, data: data, memSize: 64, flags: pfR | pfW},
					testSegment{addr: 0x300, data: []byte{0xFF}, typ: 4}, // PT_NOTE
				)

				prog, err := loader.LoadELF(elfPath)
				Expect(err).NotTo(HaveOccurred())
				Expect(prog.Segments).To(HaveLen(2))

				bss := prog.Segments[1]
				Expect(bss.Data).To(Equal(data))
				Expect(bss.MemSize).To(Equal(uint32(64)))
				Expect(bss.Flags & loader.SegmentFlagWrite).NotTo(BeZero())

				image, err := prog.Image(256)
				Expect(err).NotTo(HaveOccurred())
				Expect(image[0x80]).To(Equal(uint32(0x04030201)))
				Expect(image[0x81]).To(Equal(uint32(0x05)))
				Expect(image[0xC0]).To(Equal(uint32(0)))
			})
		})

		Context("with an invalid file", func() {
			It("should return error for non-existent file", func() {
				_, err := loader.LoadELF("/nonexistent/path/to/file.elf")
				Expect(err).To(MatchError(ContainSubstring("failed to open")))
			})

			It("should return error for non-ELF file", func() {
				path := filepath.Join(tempDir, "not-elf.bin")
				Expect(os.WriteFile(path, []byte("not an elf file"), 0644)).To(Succeed())

				_, err := loader.LoadELF(path)
				Expect(err).To(HaveOccurred())
			})

			It("should reject other machines", func() {
				path := filepath.Join(tempDir, "arm.elf")
				writeELF32(path, emARM, 0)

				_, err := loader.LoadELF(path)
				Expect(err).To(MatchError(ContainSubstring("not a RISC-V")))
			})
		})
	})

	Describe("Load", func() {
		It("should detect ELF files by their magic", func() {
			path := filepath.Join(tempDir, "prog.bin")
			writeELF32(path, emRISCV, 0x104, testSegment{addr: 0x100, data: wordsToBytes(insts.NOP()), flags: pfX})

			exe, err := loader.Load(path, 2048)
			Expect(err).NotTo(HaveOccurred())
			Expect(exe.HasEntry).To(BeTrue())
			Expect(exe.EntryPoint).To(Equal(uint32(0x104)))
			Expect(exe.Words).To(HaveLen(2048))
			Expect(exe.Words[0x40]).To(Equal(insts.NOP()))
		})

		It("should read everything else as a hex image", func() {
			path := filepath.Join(tempDir, "prog.hex")
			Expect(os.WriteFile(path, []byte("00000013\n0000006f\n"), 0644)).To(Succeed())

			exe, err := loader.Load(path, 16)
			Expect(err).NotTo(HaveOccurred())
			Expect(exe.HasEntry).To(BeFalse())
			Expect(exe.Words).To(Equal([]uint32{0x13, 0x6f, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}))
		})

		It("should treat short files as hex", func() {
			path := filepath.Join(tempDir, "tiny.hex")
			Expect(os.WriteFile(path, []byte("1\n"), 0644)).To(Succeed())

			exe, err := loader.Load(path, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(exe.Words).To(Equal([]uint32{1, 0}))
		})

		It("should reject images larger than memory", func() {
			path := filepath.Join(tempDir, "big.hex")
			Expect(os.WriteFile(path, []byte("1\n2\n3\n"), 0644)).To(Succeed())

			_, err := loader.Load(path, 2)
			Expect(err).To(MatchError(ContainSubstring("memory holds 2")))
		})

		It("should bound address directives by the memory size", func() {
			path := filepath.Join(tempDir, "far.hex")
			Expect(os.WriteFile(path, []byte("@ffffff\n1\n"), 0644)).To(Succeed())

			_, err := loader.Load(path, 2048)
			Expect(err).To(MatchError(ContainSubstring("memory holds 2048 words")))
		})

		It("should fail on missing files", func() {
			_, err := loader.Load(filepath.Join(tempDir, "missing.hex"), 2)
			Expect(err).To(MatchError(ContainSubstring("failed to open")))
		})
	})
})
