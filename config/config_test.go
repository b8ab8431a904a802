package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32mc/config"
)

var _ = Describe("Config", func() {
	var tempDir string

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "rv32mc-config-test")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tempDir)
	})

	Describe("Default", func() {
		It("should describe the reference board", func() {
			cfg := config.Default()
			Expect(cfg.ResetVector).To(Equal(uint32(0x100)))
			Expect(cfg.MemoryWords).To(Equal(2048))
			Expect(cfg.MMIO.Enabled).To(BeTrue())
			Expect(cfg.MMIO.LEDAddr).To(Equal(uint32(0xFFFFFFFF)))
			Expect(cfg.MMIO.MicrosAddr).To(Equal(uint32(0xFFFFFFF4)))
			Expect(cfg.DCache.Enabled).To(BeFalse())
			Expect(cfg.Validate()).To(Succeed())
		})

		It("should derive the micros divider from the clock", func() {
			cfg := config.Default()
			Expect(cfg.MicrosDivider()).To(Equal(uint64(12)))

			cfg.MMIO.CyclesPerMicro = 3
			Expect(cfg.MicrosDivider()).To(Equal(uint64(3)))
		})
	})

	Describe("Save and Load", func() {
		It("should round-trip through JSON", func() {
			cfg := config.Default()
			cfg.MaxCycles = 5000
			cfg.DCache.Enabled = true
			cfg.Timing.ClockHz = 48_000_000

			path := filepath.Join(tempDir, "sim.json")
			Expect(cfg.Save(path)).To(Succeed())

			loaded, err := config.Load(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(cfg))
		})

		It("should round-trip through YAML", func() {
			cfg := config.Default()
			cfg.HaltOnFault = true
			cfg.DCache.Enabled = true
			cfg.DCache.Associativity = 4

			path := filepath.Join(tempDir, "sim.yaml")
			Expect(cfg.Save(path)).To(Succeed())

			loaded, err := config.Load(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(cfg))
		})

		It("should keep defaults for missing fields", func() {
			path := filepath.Join(tempDir, "partial.yml")
			Expect(os.WriteFile(path, []byte("reset_vector: 0x200\nmax_cycles: 100\n"), 0644)).To(Succeed())

			cfg, err := config.Load(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.ResetVector).To(Equal(uint32(0x200)))
			Expect(cfg.MaxCycles).To(Equal(uint64(100)))
			Expect(cfg.MemoryWords).To(Equal(2048))
			Expect(cfg.Timing.MemoryLatency).To(Equal(uint64(1)))
		})

		It("should read flattened cache fields from JSON", func() {
			path := filepath.Join(tempDir, "cache.json")
			data := `{"dcache": {"enabled": true, "size": 512, "associativity": 1, "block_size": 8,
				"hit_latency": 1, "miss_latency": 4}}`
			Expect(os.WriteFile(path, []byte(data), 0644)).To(Succeed())

			cfg, err := config.Load(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.DCache.Size).To(Equal(512))
			Expect(cfg.DCache.BlockSize).To(Equal(8))
		})

		It("should fail on missing files", func() {
			_, err := config.Load(filepath.Join(tempDir, "missing.json"))
			Expect(err).To(MatchError(ContainSubstring("failed to read config file")))
		})

		It("should fail on malformed files", func() {
			path := filepath.Join(tempDir, "bad.json")
			Expect(os.WriteFile(path, []byte("{"), 0644)).To(Succeed())

			_, err := config.Load(path)
			Expect(err).To(MatchError(ContainSubstring("failed to parse config")))
		})

		It("should reject invalid values on load", func() {
			path := filepath.Join(tempDir, "invalid.yaml")
			Expect(os.WriteFile(path, []byte("memory_words: 0\n"), 0644)).To(Succeed())

			_, err := config.Load(path)
			Expect(err).To(MatchError(ContainSubstring("memory_words")))
		})
	})

	Describe("Validate", func() {
		var cfg *config.Config

		BeforeEach(func() {
			cfg = config.Default()
		})

		It("should reject a misaligned reset vector", func() {
			cfg.ResetVector = 0x102
			Expect(cfg.Validate()).To(MatchError(ContainSubstring("word aligned")))
		})

		It("should reject a reset vector outside memory", func() {
			cfg.MemoryWords = 16
			Expect(cfg.Validate()).To(MatchError(ContainSubstring("outside")))
		})

		It("should reject overlapping devices", func() {
			cfg.MMIO.LEDAddr = cfg.MMIO.MicrosAddr + 2
			Expect(cfg.Validate()).To(MatchError(ContainSubstring("overlaps")))
		})

		It("should ignore device addresses when MMIO is disabled", func() {
			cfg.MMIO.Enabled = false
			cfg.MMIO.LEDAddr = cfg.MMIO.MicrosAddr
			Expect(cfg.Validate()).To(Succeed())
		})

		It("should check the cache only when enabled", func() {
			cfg.DCache.BlockSize = 3
			Expect(cfg.Validate()).To(Succeed())

			cfg.DCache.Enabled = true
			Expect(cfg.Validate()).To(MatchError(ContainSubstring("dcache")))
		})

		It("should check the timing parameters", func() {
			cfg.Timing.ClockHz = 0
			Expect(cfg.Validate()).To(MatchError(ContainSubstring("timing")))
		})
	})

	Describe("Clone", func() {
		It("should not share the timing config", func() {
			cfg := config.Default()
			clone := cfg.Clone()
			clone.Timing.ClockHz = 1
			clone.MemoryWords = 4

			Expect(cfg.Timing.ClockHz).To(Equal(uint64(12_000_000)))
			Expect(cfg.MemoryWords).To(Equal(2048))
		})
	})
})
