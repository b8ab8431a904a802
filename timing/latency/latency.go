// Package latency provides the instruction timing model of the
// multi-cycle core.
//
// Every instruction takes exactly as many cycles as its FSM path has
// states. On top of that the table estimates the stall cycles an optional
// data cache would add, without changing the architectural behaviour.
package latency

import (
	"github.com/sarchlab/rv32mc/insts"
	"github.com/sarchlab/rv32mc/timing/fsm"
)

// Table provides instruction latency lookups.
type Table struct {
	config *TimingConfig
}

// NewTable creates a new latency table with default timing values.
func NewTable() *Table {
	return &Table{
		config: DefaultTimingConfig(),
	}
}

// NewTableWithConfig creates a new latency table with custom timing configuration.
func NewTableWithConfig(config *TimingConfig) *Table {
	return &Table{
		config: config,
	}
}

// GetLatency returns the number of cycles the instruction spends in the
// FSM, from FETCH up to the next FETCH. A nil instruction counts as an
// unknown opcode.
func (t *Table) GetLatency(inst *insts.Instruction) uint64 {
	if inst == nil {
		return uint64(fsm.Cycles(insts.ClassUnknown))
	}
	return uint64(fsm.Cycles(inst.Class))
}

// ClassLatencies returns the cycle count of every instruction class.
func (t *Table) ClassLatencies() map[insts.Class]uint64 {
	out := make(map[insts.Class]uint64)
	for _, class := range insts.Classes() {
		out[class] = uint64(fsm.Cycles(class))
	}
	return out
}

// StallCycles returns the cycles an access of the given latency would add
// beyond the single memory state the FSM allots.
func (t *Table) StallCycles(accessLatency uint64) uint64 {
	if accessLatency <= t.config.MemoryLatency {
		return 0
	}
	return accessLatency - t.config.MemoryLatency
}

// IsMemoryOp returns true if the instruction accesses data memory.
func (t *Table) IsMemoryOp(inst *insts.Instruction) bool {
	return t.IsLoadOp(inst) || t.IsStoreOp(inst)
}

// IsLoadOp returns true if the instruction is a load operation.
func (t *Table) IsLoadOp(inst *insts.Instruction) bool {
	return inst != nil && inst.Class == insts.ClassLoad
}

// IsStoreOp returns true if the instruction is a store operation.
func (t *Table) IsStoreOp(inst *insts.Instruction) bool {
	return inst != nil && inst.Class == insts.ClassStore
}

// IsBranchOp returns true if the instruction is a branch or jump.
func (t *Table) IsBranchOp(inst *insts.Instruction) bool {
	if inst == nil {
		return false
	}
	return inst.Class == insts.ClassBranch || inst.Class.IsJump()
}

// Config returns the current timing configuration.
func (t *Table) Config() *TimingConfig {
	return t.config
}
