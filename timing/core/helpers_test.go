package core_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32mc/emu"
	"github.com/sarchlab/rv32mc/timing/core"
)

// program places words at the default reset vector.
func program(words ...uint32) []uint32 {
	image := make([]uint32, emu.DefaultResetVector/4, int(emu.DefaultResetVector/4)+len(words))
	return append(image, words...)
}

func newCore(opts ...core.Option) *core.Core {
	c, err := core.NewCore(opts...)
	Expect(err).NotTo(HaveOccurred())
	return c
}

// runInstruction steps until the current instruction retires and returns
// every cycle of it.
func runInstruction(c *core.Core) []core.StepResult {
	var cycles []core.StepResult
	for i := 0; i < 8; i++ {
		r := c.Step()
		cycles = append(cycles, r)
		if r.Retired {
			return cycles
		}
	}
	Fail("instruction did not retire within 8 cycles")
	return nil
}
