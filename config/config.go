// Package config provides the simulator configuration: memory size, reset
// vector, run limits, memory-mapped devices, the optional data cache and
// the timing parameters. Configurations are stored as JSON or YAML.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sarchlab/rv32mc/emu"
	"github.com/sarchlab/rv32mc/timing/cache"
	"github.com/sarchlab/rv32mc/timing/latency"
)

// Config holds the simulator configuration.
type Config struct {
	// ResetVector is the PC loaded on reset. Default: 0x100.
	ResetVector uint32 `json:"reset_vector" yaml:"reset_vector"`

	// MemoryWords is the memory size in 32-bit words. Default: 2048.
	MemoryWords int `json:"memory_words" yaml:"memory_words"`

	// MaxCycles bounds a run. 0 means no limit.
	MaxCycles uint64 `json:"max_cycles" yaml:"max_cycles"`

	// HaltOnFault stops a run at the first fault that is not a
	// misaligned-access warning.
	HaltOnFault bool `json:"halt_on_fault" yaml:"halt_on_fault"`

	// MMIO configures the board devices.
	MMIO MMIOConfig `json:"mmio" yaml:"mmio"`

	// DCache configures the data cache model.
	DCache DCacheConfig `json:"dcache" yaml:"dcache"`

	// Timing holds the clock and memory timing parameters.
	Timing *latency.TimingConfig `json:"timing" yaml:"timing"`
}

// MMIOConfig enables the LED register and the microsecond counter.
type MMIOConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled"`
	LEDAddr    uint32 `json:"led_addr" yaml:"led_addr"`
	MicrosAddr uint32 `json:"micros_addr" yaml:"micros_addr"`

	// CyclesPerMicro is the microsecond counter divider. 0 derives it
	// from the timing clock.
	CyclesPerMicro uint64 `json:"cycles_per_micro" yaml:"cycles_per_micro"`
}

// DCacheConfig enables and sizes the data cache model.
type DCacheConfig struct {
	Enabled      bool `json:"enabled" yaml:"enabled"`
	cache.Config `yaml:",inline"`
}

// Default returns the reference configuration.
func Default() *Config {
	return &Config{
		ResetVector: emu.DefaultResetVector,
		MemoryWords: emu.DefaultMemoryWords,
		MMIO: MMIOConfig{
			Enabled:    true,
			LEDAddr:    emu.DefaultLEDAddr,
			MicrosAddr: emu.DefaultMicrosAddr,
		},
		DCache: DCacheConfig{
			Config: cache.DefaultL1DConfig(),
		},
		Timing: latency.DefaultTimingConfig(),
	}
}

// Load reads a configuration file. Files ending in .yaml or .yml are
// parsed as YAML, everything else as JSON. Fields missing from the file
// keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if isYAML(path) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if config.Timing == nil {
		config.Timing = latency.DefaultTimingConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return config, nil
}

// Save writes the configuration to path, as YAML or JSON depending on the
// extension.
func (c *Config) Save(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Validate checks that the configuration describes a buildable core.
func (c *Config) Validate() error {
	if c.MemoryWords <= 0 {
		return fmt.Errorf("memory_words must be > 0")
	}
	if c.ResetVector%4 != 0 {
		return fmt.Errorf("reset_vector 0x%X is not word aligned", c.ResetVector)
	}
	if uint64(c.ResetVector) >= uint64(c.MemoryWords)*4 {
		return fmt.Errorf("reset_vector 0x%X is outside %d words of memory", c.ResetVector, c.MemoryWords)
	}
	if c.MMIO.Enabled {
		led, micros := uint64(c.MMIO.LEDAddr), uint64(c.MMIO.MicrosAddr)
		if led >= micros && led < micros+4 {
			return fmt.Errorf("mmio led_addr 0x%X overlaps micros_addr 0x%X", c.MMIO.LEDAddr, c.MMIO.MicrosAddr)
		}
		if c.MMIO.MicrosAddr > 0xFFFFFFFC {
			return fmt.Errorf("mmio micros_addr 0x%X extends past the address space", c.MMIO.MicrosAddr)
		}
	}
	if c.DCache.Enabled {
		if err := c.DCache.Config.Validate(); err != nil {
			return fmt.Errorf("dcache: %w", err)
		}
	}
	if c.Timing != nil {
		if err := c.Timing.Validate(); err != nil {
			return fmt.Errorf("timing: %w", err)
		}
	}
	return nil
}

// Clone returns a deep copy of the Config.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Timing != nil {
		clone.Timing = c.Timing.Clone()
	}
	return &clone
}

// MicrosDivider returns the cycles per microsecond of the counter device.
func (c *Config) MicrosDivider() uint64 {
	if c.MMIO.CyclesPerMicro != 0 {
		return c.MMIO.CyclesPerMicro
	}
	if c.Timing != nil {
		return c.Timing.CyclesPerMicro()
	}
	return 1
}
