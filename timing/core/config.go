package core

import (
	"fmt"

	"github.com/sarchlab/rv32mc/config"
	"github.com/sarchlab/rv32mc/emu"
)

// Board holds the devices a core built from a configuration exposes.
type Board struct {
	LED    *emu.LEDRegister
	Micros *emu.MicrosCounter
}

// NewFromConfig creates a core from cfg. Extra options are applied after
// the ones derived from the configuration. The returned Board is empty
// when MMIO is disabled.
func NewFromConfig(cfg *config.Config, opts ...Option) (*Core, *Board, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	base := []Option{
		WithResetVector(cfg.ResetVector),
		WithMemoryWords(cfg.MemoryWords),
		WithHaltOnFault(cfg.HaltOnFault),
	}
	if cfg.Timing != nil {
		base = append(base, WithTimingConfig(cfg.Timing.Clone()))
	}
	if cfg.DCache.Enabled {
		base = append(base, WithDataCache(cfg.DCache.Config))
	}

	board := &Board{}
	if cfg.MMIO.Enabled {
		board.LED = emu.NewLEDRegister()
		board.Micros = emu.NewMicrosCounter(cfg.MicrosDivider())
		base = append(base,
			WithDevice(cfg.MMIO.LEDAddr, board.LED),
			WithDevice(cfg.MMIO.MicrosAddr, board.Micros),
		)
	}

	c, err := NewCore(append(base, opts...)...)
	if err != nil {
		return nil, nil, err
	}
	return c, board, nil
}
