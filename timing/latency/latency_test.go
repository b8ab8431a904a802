package latency_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32mc/insts"
	"github.com/sarchlab/rv32mc/timing/latency"
)

var _ = Describe("Latency", func() {
	var (
		table   *latency.Table
		decoder *insts.Decoder
	)

	BeforeEach(func() {
		table = latency.NewTable()
		decoder = insts.NewDecoder()
	})

	Describe("Default Timing Values", func() {
		It("should allot one cycle per memory state", func() {
			Expect(table.Config().MemoryLatency).To(Equal(uint64(1)))
		})

		It("should run at the board clock", func() {
			Expect(table.Config().ClockHz).To(Equal(uint64(12_000_000)))
			Expect(table.Config().CyclesPerMicro()).To(Equal(uint64(12)))
		})
	})

	Describe("GetLatency", func() {
		It("should take 4 cycles for ALU instructions", func() {
			Expect(table.GetLatency(decoder.Decode(insts.ADD(1, 2, 3)))).To(Equal(uint64(4)))
			Expect(table.GetLatency(decoder.Decode(insts.ADDI(1, 2, 3)))).To(Equal(uint64(4)))
			Expect(table.GetLatency(decoder.Decode(insts.LUI(1, 1)))).To(Equal(uint64(4)))
		})

		It("should take 5 cycles for loads and 4 for stores", func() {
			Expect(table.GetLatency(decoder.Decode(insts.LW(1, 2, 0)))).To(Equal(uint64(5)))
			Expect(table.GetLatency(decoder.Decode(insts.SW(1, 2, 0)))).To(Equal(uint64(4)))
		})

		It("should take 3 cycles for branches and 4 for jumps", func() {
			Expect(table.GetLatency(decoder.Decode(insts.BEQ(1, 2, 8)))).To(Equal(uint64(3)))
			Expect(table.GetLatency(decoder.Decode(insts.JAL(1, 8)))).To(Equal(uint64(4)))
			Expect(table.GetLatency(decoder.Decode(insts.JALR(1, 2, 0)))).To(Equal(uint64(4)))
		})

		It("should take 2 cycles for unknown opcodes", func() {
			Expect(table.GetLatency(decoder.Decode(0xFFFFFFFF))).To(Equal(uint64(2)))
			Expect(table.GetLatency(nil)).To(Equal(uint64(2)))
		})

		It("should list every class", func() {
			lat := table.ClassLatencies()
			Expect(lat).To(HaveLen(10))
			Expect(lat[insts.ClassLoad]).To(Equal(uint64(5)))
		})
	})

	Describe("StallCycles", func() {
		It("should not stall on accesses within the memory budget", func() {
			Expect(table.StallCycles(0)).To(Equal(uint64(0)))
			Expect(table.StallCycles(1)).To(Equal(uint64(0)))
		})

		It("should count the excess latency", func() {
			Expect(table.StallCycles(10)).To(Equal(uint64(9)))
		})
	})

	Describe("Instruction classification", func() {
		It("should identify memory operations", func() {
			load := decoder.Decode(insts.LB(1, 2, 0))
			store := decoder.Decode(insts.SB(1, 2, 0))
			add := decoder.Decode(insts.ADD(1, 2, 3))

			Expect(table.IsMemoryOp(load)).To(BeTrue())
			Expect(table.IsLoadOp(load)).To(BeTrue())
			Expect(table.IsStoreOp(store)).To(BeTrue())
			Expect(table.IsMemoryOp(add)).To(BeFalse())
			Expect(table.IsMemoryOp(nil)).To(BeFalse())
		})

		It("should identify control transfers", func() {
			Expect(table.IsBranchOp(decoder.Decode(insts.BNE(1, 2, 8)))).To(BeTrue())
			Expect(table.IsBranchOp(decoder.Decode(insts.JALR(0, 1, 0)))).To(BeTrue())
			Expect(table.IsBranchOp(decoder.Decode(insts.AUIPC(1, 0)))).To(BeFalse())
		})
	})

	Describe("TimingConfig", func() {
		It("should validate the defaults", func() {
			Expect(latency.DefaultTimingConfig().Validate()).To(Succeed())
		})

		It("should reject zero values", func() {
			config := latency.DefaultTimingConfig()
			config.MemoryLatency = 0
			Expect(config.Validate()).To(MatchError(ContainSubstring("memory_latency")))

			config = latency.DefaultTimingConfig()
			config.ClockHz = 0
			Expect(config.Validate()).To(MatchError(ContainSubstring("clock_hz")))
		})

		It("should clone independently", func() {
			config := latency.DefaultTimingConfig()
			clone := config.Clone()
			clone.MemoryLatency = 7
			Expect(config.MemoryLatency).To(Equal(uint64(1)))
		})

		It("should convert cycles to time", func() {
			config := &latency.TimingConfig{MemoryLatency: 1, ClockHz: 1_000_000}
			Expect(config.Duration(1000)).To(Equal(time.Millisecond))
			Expect(config.CyclesPerMicro()).To(Equal(uint64(1)))
		})

		It("should use a custom config", func() {
			t := latency.NewTableWithConfig(&latency.TimingConfig{MemoryLatency: 3, ClockHz: 1})
			Expect(t.StallCycles(10)).To(Equal(uint64(7)))
		})
	})
})
