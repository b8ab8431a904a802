package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32mc/emu"
)

type fakeClock struct {
	cycles uint64
}

func (c *fakeClock) Cycles() uint64 { return c.cycles }

var _ = Describe("MMIO devices", func() {
	Describe("LEDRegister", func() {
		It("should latch the low byte and count writes", func() {
			led := emu.NewLEDRegister()
			Expect(led.Write(0, 4, 0x12345678)).To(Succeed())
			Expect(led.Write(0, 1, 0x0F)).To(Succeed())

			Expect(led.Value()).To(Equal(uint8(0x0F)))
			Expect(led.Writes()).To(Equal(uint64(2)))
			Expect(led.Size()).To(Equal(uint32(1)))
		})

		It("should turn off on reset", func() {
			led := emu.NewLEDRegister()
			Expect(led.Write(0, 1, 0xFF)).To(Succeed())

			var dev emu.Device = led
			dev.(emu.Resetter).Reset()

			Expect(led.Value()).To(Equal(uint8(0)))
			Expect(led.Writes()).To(Equal(uint64(0)))
		})
	})

	Describe("MicrosCounter", func() {
		It("should read zero when detached", func() {
			Expect(emu.NewMicrosCounter(10).Micros()).To(Equal(uint32(0)))
		})

		It("should divide the clock", func() {
			clock := &fakeClock{}
			counter := emu.NewMicrosCounter(10)
			counter.Attach(clock)

			clock.cycles = 1234
			Expect(counter.Micros()).To(Equal(uint32(123)))

			v, err := counter.Read(0, 4)
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(uint32(123)))
		})

		It("should serve byte and half reads at an offset", func() {
			clock := &fakeClock{cycles: 0x12345678}
			counter := emu.NewMicrosCounter(0)
			counter.Attach(clock)

			v, _ := counter.Read(1, 1)
			Expect(v).To(Equal(uint32(0x56)))
			v, _ = counter.Read(2, 2)
			Expect(v).To(Equal(uint32(0x1234)))
		})

		It("should be read-only", func() {
			Expect(emu.NewMicrosCounter(1).Write(0, 4, 1)).To(MatchError(emu.ErrReadOnly))
		})
	})
})
