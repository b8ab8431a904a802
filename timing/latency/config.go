package latency

import (
	"fmt"
	"time"
)

// TimingConfig holds the timing parameters that sit outside the FSM's
// fixed state sequence.
type TimingConfig struct {
	// MemoryLatency is the number of cycles one FSM memory state allots
	// to an access. Cache accesses slower than this are counted as
	// stalls. Default: 1 cycle.
	MemoryLatency uint64 `json:"memory_latency" yaml:"memory_latency"`

	// ClockHz is the core clock frequency used to convert cycles to
	// simulated time. Default: 12 MHz (the reference board clock).
	ClockHz uint64 `json:"clock_hz" yaml:"clock_hz"`
}

// DefaultTimingConfig returns a TimingConfig with the reference board
// values.
func DefaultTimingConfig() *TimingConfig {
	return &TimingConfig{
		MemoryLatency: 1,
		ClockHz:       12_000_000,
	}
}

// Validate checks that all values are valid (> 0).
func (c *TimingConfig) Validate() error {
	if c.MemoryLatency == 0 {
		return fmt.Errorf("memory_latency must be > 0")
	}
	if c.ClockHz == 0 {
		return fmt.Errorf("clock_hz must be > 0")
	}
	return nil
}

// Clone returns a deep copy of the config.
func (c *TimingConfig) Clone() *TimingConfig {
	clone := *c
	return &clone
}

// CyclesPerMicro returns the number of clock cycles per microsecond,
// at least 1.
func (c *TimingConfig) CyclesPerMicro() uint64 {
	if c.ClockHz < 1_000_000 {
		return 1
	}
	return c.ClockHz / 1_000_000
}

// Duration converts a cycle count to simulated time.
func (c *TimingConfig) Duration(cycles uint64) time.Duration {
	if c.ClockHz == 0 {
		return 0
	}
	return time.Duration(float64(cycles) * float64(time.Second) / float64(c.ClockHz))
}
