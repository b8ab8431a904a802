// Validate the RV32I encoders against the decoder and measure decode allocations
package main

import (
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/sarchlab/rv32mc/insts"
)

type vector struct {
	word uint32
	text string
}

var vectors = []vector{
	{insts.ADD(3, 1, 2), "add x3, x1, x2"},
	{insts.SUB(5, 6, 7), "sub x5, x6, x7"},
	{insts.SRA(1, 2, 3), "sra x1, x2, x3"},
	{insts.SLTU(4, 5, 6), "sltu x4, x5, x6"},
	{insts.ADDI(1, 0, -1), "addi x1, x0, -1"},
	{insts.XORI(2, 3, 2047), "xori x2, x3, 2047"},
	{insts.SRAI(8, 9, 31), "srai x8, x9, 31"},
	{insts.SLLI(8, 9, 1), "slli x8, x9, 1"},
	{insts.LUI(1, 0xFFFFF), "lui x1, 0xfffff"},
	{insts.AUIPC(2, 0x12345), "auipc x2, 0x12345"},
	{insts.LW(1, 2, -4), "lw x1, -4(x2)"},
	{insts.LHU(3, 4, 6), "lhu x3, 6(x4)"},
	{insts.SB(5, 6, -2048), "sb x5, -2048(x6)"},
	{insts.SW(7, 8, 2044), "sw x7, 2044(x8)"},
	{insts.BEQ(1, 2, -4096), "beq x1, x2, -4096"},
	{insts.BGEU(3, 4, 4094), "bgeu x3, x4, 4094"},
	{insts.JAL(1, -1048576), "jal x1, -1048576"},
	{insts.JALR(0, 1, 0), "jalr x0, 0(x1)"},
	{insts.HALT(), "jal x0, 0"},
	{0xFFFFFFFF, ".word 0xffffffff"},
}

func main() {
	decoder := insts.NewDecoder()
	failures := 0

	// Fixed vectors: encode, decode and disassemble.
	for _, v := range vectors {
		if got := decoder.Decode(v.word).String(); got != v.text {
			fmt.Printf("FAIL 0x%08x: got %q, want %q\n", v.word, got, v.text)
			failures++
		}
	}

	// Random immediates: every format must decode back to the encoded value.
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10000; i++ {
		failures += checkImmediates(decoder, rng)
	}

	fmt.Printf("Encoding Validation Results:\n")
	fmt.Printf("============================\n")
	fmt.Printf("Vectors: %d, random rounds: %d, failures: %d\n", len(vectors), 10000, failures)

	measureAllocations(decoder)

	if failures > 0 {
		os.Exit(1)
	}
}

func checkImmediates(decoder *insts.Decoder, rng *rand.Rand) int {
	rd := uint8(rng.Intn(32))
	rs1 := uint8(rng.Intn(32))
	rs2 := uint8(rng.Intn(32))
	immI := int32(rng.Intn(4096)) - 2048
	immB := (int32(rng.Intn(4096)) - 2048) * 2
	immJ := (int32(rng.Intn(1<<20)) - 1<<19) * 2
	immU := uint32(rng.Intn(1 << 20))

	cases := []struct {
		word uint32
		want uint32
	}{
		{insts.ADDI(rd, rs1, immI), uint32(immI)},
		{insts.SW(rs2, rs1, immI), uint32(immI)},
		{insts.BNE(rs1, rs2, immB), uint32(immB)},
		{insts.JAL(rd, immJ), uint32(immJ)},
		{insts.LUI(rd, immU), immU << 12},
	}

	failures := 0
	for _, c := range cases {
		inst := decoder.Decode(c.word)
		if inst.Imm != c.want {
			fmt.Printf("FAIL %s (0x%08x): imm 0x%08x, want 0x%08x\n", inst, c.word, inst.Imm, c.want)
			failures++
		}
	}
	return failures
}

func measureAllocations(decoder *insts.Decoder) {
	words := []uint32{
		insts.ADD(3, 1, 2),
		insts.LW(1, 2, -4),
		insts.BEQ(1, 2, -8),
		insts.JAL(1, 16),
	}
	var inst insts.Instruction

	// Warm up
	for i := 0; i < 1000; i++ {
		decoder.DecodeInto(words[i%len(words)], &inst)
	}

	runtime.GC()
	var m1, m2 runtime.MemStats
	runtime.ReadMemStats(&m1)

	start := time.Now()
	iterations := 100000
	for i := 0; i < iterations; i++ {
		for _, w := range words {
			decoder.DecodeInto(w, &inst)
		}
	}

	elapsed := time.Since(start)
	runtime.ReadMemStats(&m2)

	totalDecodes := iterations * len(words)
	allocations := m2.Mallocs - m1.Mallocs

	fmt.Printf("\nDecode Allocation Results:\n")
	fmt.Printf("==========================\n")
	fmt.Printf("Total decode operations: %d\n", totalDecodes)
	fmt.Printf("Time elapsed: %v\n", elapsed)
	fmt.Printf("Decodes per second: %.0f\n", float64(totalDecodes)/elapsed.Seconds())
	fmt.Printf("Allocations per decode: %.3f\n", float64(allocations)/float64(totalDecodes))
}
