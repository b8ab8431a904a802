package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32mc/insts"
)

var _ = Describe("Decoder", func() {
	var decoder *insts.Decoder

	BeforeEach(func() {
		decoder = insts.NewDecoder()
	})

	Describe("Field extraction", func() {
		// add x2, x3, x4 -> 0x00418133
		It("should decode add x2, x3, x4", func() {
			inst := decoder.Decode(0x00418133)

			Expect(inst.Opcode).To(Equal(insts.OpcodeOp))
			Expect(inst.Class).To(Equal(insts.ClassRegReg))
			Expect(inst.Format).To(Equal(insts.FormatNone))
			Expect(inst.Rd).To(Equal(uint8(2)))
			Expect(inst.Rs1).To(Equal(uint8(3)))
			Expect(inst.Rs2).To(Equal(uint8(4)))
			Expect(inst.Funct3).To(Equal(uint8(0)))
			Expect(inst.Funct7).To(Equal(uint8(0)))
			Expect(inst.Op5()).To(BeTrue())
			Expect(inst.Imm).To(BeZero())
		})

		// addi x2, x3, 47 -> 0x02f18113
		It("should decode addi x2, x3, 47", func() {
			inst := decoder.Decode(0x02f18113)

			Expect(inst.Class).To(Equal(insts.ClassRegImm))
			Expect(inst.Format).To(Equal(insts.FormatIType))
			Expect(inst.Rd).To(Equal(uint8(2)))
			Expect(inst.Rs1).To(Equal(uint8(3)))
			Expect(inst.Imm).To(Equal(uint32(47)))
			Expect(inst.Op5()).To(BeFalse())
		})

		// sw x2, 47(x3) -> 0x0221a7a3
		It("should decode sw x2, 47(x3)", func() {
			inst := decoder.Decode(0x0221a7a3)

			Expect(inst.Class).To(Equal(insts.ClassStore))
			Expect(inst.Format).To(Equal(insts.FormatSType))
			Expect(inst.Rs1).To(Equal(uint8(3)))
			Expect(inst.Rs2).To(Equal(uint8(2)))
			Expect(inst.Funct3).To(Equal(uint8(insts.Funct3Word)))
			Expect(inst.Imm).To(Equal(uint32(47)))
		})

		It("should mark sub with funct7 bit 5", func() {
			inst := decoder.Decode(insts.SUB(1, 2, 3))

			Expect(inst.Funct7b5()).To(BeTrue())
			Expect(inst.Funct7).To(Equal(uint8(insts.Funct7Alt)))
		})

		It("should leave unknown opcodes unclassified", func() {
			inst := decoder.Decode(0x0000000B) // custom-0

			Expect(inst.Known()).To(BeFalse())
			Expect(inst.Class).To(Equal(insts.ClassUnknown))
			Expect(inst.Format).To(Equal(insts.FormatNone))
		})

		It("should decode into a caller-owned instruction", func() {
			var inst insts.Instruction
			decoder.DecodeInto(insts.LW(4, 2, 0), &inst)

			Expect(inst.Class).To(Equal(insts.ClassLoad))
			Expect(inst.Rd).To(Equal(uint8(4)))
			Expect(inst.Rs1).To(Equal(uint8(2)))
		})
	})

	Describe("Immediate decoder", func() {
		DescribeTable("should classify the format from the opcode",
			func(word uint32, expected insts.Format) {
				Expect(decoder.Decode(word).Format).To(Equal(expected))
			},
			Entry("addi", uint32(0x02f18113), insts.FormatIType),
			Entry("lw", uint32(0x02f1a103), insts.FormatIType),
			Entry("jalr", uint32(0x02f18167), insts.FormatIType),
			Entry("sw", uint32(0x0221a7a3), insts.FormatSType),
			Entry("beq", uint32(0x02310763), insts.FormatBType),
			Entry("lui", uint32(0x0002f137), insts.FormatUType),
			Entry("auipc", uint32(0x0002f117), insts.FormatUType),
			Entry("jal", uint32(0x02e0016f), insts.FormatJType),
		)

		It("should report no format for register-register opcodes", func() {
			_, ok := insts.ClassifyFormat(insts.OpcodeOp)
			Expect(ok).To(BeFalse())
		})
	})

	Describe("Immediate generator", func() {
		It("should sign-extend negative I-type immediates", func() {
			inst := decoder.Decode(insts.ADDI(1, 0, -1))
			Expect(inst.Imm).To(Equal(uint32(0xFFFFFFFF)))
		})

		It("should reassemble split S-type immediates", func() {
			inst := decoder.Decode(insts.SW(2, 1, -20))
			Expect(int32(inst.Imm)).To(Equal(int32(-20)))
		})

		It("should round-trip a B-type offset of 0x10", func() {
			inst := decoder.Decode(insts.BEQ(1, 2, 0x10))
			Expect(inst.Imm).To(Equal(uint32(0x10)))
		})

		It("should round-trip negative B-type offsets", func() {
			inst := decoder.Decode(insts.BNE(1, 2, -4096))
			Expect(int32(inst.Imm)).To(Equal(int32(-4096)))
		})

		It("should drop bit 0 of branch offsets", func() {
			// beq x2, x3, 47 assembles as offset 46
			inst := decoder.Decode(0x02310763)
			Expect(inst.Imm).To(Equal(uint32(46)))
		})

		It("should zero the low 12 bits of U-type immediates", func() {
			inst := decoder.Decode(insts.LUI(10, 0xABCDE))
			Expect(inst.Imm).To(Equal(uint32(0xABCDE000)))
		})

		It("should round-trip a J-type offset of -0x200", func() {
			inst := decoder.Decode(insts.JAL(2, -0x200))
			Expect(int32(inst.Imm)).To(Equal(int32(-0x200)))
			Expect(inst.Imm & 1).To(BeZero())
		})

		It("should round-trip the largest J-type offset", func() {
			inst := decoder.Decode(insts.JAL(0, 0xFFFFE))
			Expect(inst.Imm).To(Equal(uint32(0xFFFFE)))
		})

		It("should expose the raw helper for each format", func() {
			Expect(insts.Immediate(0x02e0016f, insts.FormatJType)).To(Equal(uint32(46)))
			Expect(insts.Immediate(0x0002f137, insts.FormatUType)).To(Equal(uint32(0x2f000)))
			Expect(insts.Immediate(0x0002f137, insts.FormatNone)).To(BeZero())
		})
	})

	Describe("Disassembly", func() {
		DescribeTable("should render assembler syntax",
			func(word uint32, expected string) {
				Expect(decoder.Decode(word).String()).To(Equal(expected))
			},
			Entry("add", insts.ADD(2, 3, 4), "add x2, x3, x4"),
			Entry("sub", insts.SUB(2, 3, 4), "sub x2, x3, x4"),
			Entry("addi", insts.ADDI(2, 3, -8), "addi x2, x3, -8"),
			Entry("srai", insts.SRAI(5, 6, 4), "srai x5, x6, 4"),
			Entry("lw", insts.LW(4, 2, 0), "lw x4, 0(x2)"),
			Entry("sh", insts.SH(15, 14, 2), "sh x15, 2(x14)"),
			Entry("bgeu", insts.BGEU(1, 2, 16), "bgeu x1, x2, 16"),
			Entry("lui", insts.LUI(10, 0xABCDE), "lui x10, 0xabcde"),
			Entry("jal", insts.JAL(1, 0x200), "jal x1, 512"),
			Entry("jalr", insts.JALR(3, 4, 32), "jalr x3, 32(x4)"),
			Entry("unknown", uint32(0x0000000B), ".word 0x0000000b"),
		)
	})
})
