package emu

import (
	"errors"
	"fmt"

	"github.com/sarchlab/rv32mc/insts"
)

// DefaultResetVector is the PC loaded on reset.
const DefaultResetVector uint32 = 0x100

// StepResult represents the result of executing a single instruction.
type StepResult struct {
	// Inst is the instruction that was executed.
	Inst *insts.Instruction

	// PC is the address the instruction was fetched from.
	PC uint32

	// Halted is true if the instruction jumped to itself.
	Halted bool

	// Err is set if the instruction raised a fault. Execution may continue.
	Err error
}

// Emulator executes RV32I instructions functionally, one whole instruction
// per step. It applies the same datapath components as the cycle-level
// core and serves as its reference model.
type Emulator struct {
	regFile *RegFile
	memory  *Memory
	lsu     *LoadStoreUnit
	decoder *insts.Decoder

	pc          uint32
	resetVector uint32

	// Execution state
	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithResetVector sets the PC loaded by Reset.
func WithResetVector(pc uint32) EmulatorOption {
	return func(e *Emulator) {
		e.resetVector = pc
	}
}

// WithMaxInstructions sets the maximum number of instructions to execute.
// A value of 0 means no limit.
func WithMaxInstructions(max uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxInstructions = max
	}
}

// NewEmulator creates a new RV32I emulator over memory. The PC starts at
// the reset vector.
func NewEmulator(memory *Memory, opts ...EmulatorOption) *Emulator {
	e := &Emulator{
		regFile:     &RegFile{},
		memory:      memory,
		lsu:         NewLoadStoreUnit(memory),
		decoder:     insts.NewDecoder(),
		resetVector: DefaultResetVector,
	}

	for _, opt := range opts {
		opt(e)
	}

	e.pc = e.resetVector
	return e
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile {
	return e.regFile
}

// Memory returns the emulator's memory.
func (e *Emulator) Memory() *Memory {
	return e.memory
}

// PC returns the address of the next instruction.
func (e *Emulator) PC() uint32 {
	return e.pc
}

// SetPC sets the address of the next instruction.
func (e *Emulator) SetPC(pc uint32) {
	e.pc = pc
}

// InstructionCount returns the number of instructions executed.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// Reset clears the registers and the instruction count and reloads the
// reset vector. Memory is left to the caller.
func (e *Emulator) Reset() {
	e.regFile.Reset()
	e.pc = e.resetVector
	e.instructionCount = 0
}

// ErrMaxInstructions is returned once the instruction limit is reached.
var ErrMaxInstructions = errors.New("max instructions reached")

// Step executes a single instruction.
func (e *Emulator) Step() StepResult {
	if e.maxInstructions > 0 && e.instructionCount >= e.maxInstructions {
		return StepResult{PC: e.pc, Err: ErrMaxInstructions}
	}

	pc := e.pc

	// 1. Fetch
	word, fetchErr := e.memory.Read(pc, 4)

	// 2. Decode
	inst := e.decoder.Decode(word)

	// 3. Execute
	result := e.execute(inst, pc)
	result.Err = errors.Join(tagPC(fetchErr, pc), result.Err)

	e.instructionCount++

	return result
}

// Run executes instructions until the program halts, a fault occurs or the
// instruction limit is reached. Misaligned-access warnings do not stop it.
func (e *Emulator) Run() error {
	for {
		result := e.Step()
		if result.Err != nil && !onlyWarnings(result.Err) {
			return result.Err
		}
		if result.Halted {
			return nil
		}
	}
}

func (e *Emulator) execute(inst *insts.Instruction, pc uint32) StepResult {
	result := StepResult{Inst: inst, PC: pc}
	rs1v := e.regFile.ReadReg(inst.Rs1)
	rs2v := e.regFile.ReadReg(inst.Rs2)
	next := pc + 4

	switch inst.Class {
	case insts.ClassRegReg:
		op := DecodeALUControl(ALUSelFunct, inst.Funct3, inst.Op5(), inst.Funct7b5())
		e.regFile.WriteReg(inst.Rd, ExecuteALU(op, rs1v, rs2v).Value)
	case insts.ClassRegImm:
		op := DecodeALUControl(ALUSelFunct, inst.Funct3, inst.Op5(), inst.Funct7b5())
		e.regFile.WriteReg(inst.Rd, ExecuteALU(op, rs1v, inst.Imm).Value)
	case insts.ClassLUI:
		e.regFile.WriteReg(inst.Rd, inst.Imm)
	case insts.ClassAUIPC:
		e.regFile.WriteReg(inst.Rd, pc+inst.Imm)
	case insts.ClassLoad:
		value, err := e.lsu.Load(rs1v+inst.Imm, inst.Funct3)
		e.regFile.WriteReg(inst.Rd, value)
		result.Err = tagPC(err, pc)
	case insts.ClassStore:
		result.Err = tagPC(e.lsu.Store(rs1v+inst.Imm, inst.Funct3, rs2v), pc)
	case insts.ClassBranch:
		if BranchTaken(inst.Funct3, ExecuteALU(ALUSub, rs1v, rs2v)) {
			next = pc + inst.Imm
		}
	case insts.ClassJAL:
		next = pc + inst.Imm
		e.regFile.WriteReg(inst.Rd, pc+4)
	case insts.ClassJALR:
		next = rs1v + inst.Imm
		e.regFile.WriteReg(inst.Rd, pc+4)
	default:
		result.Err = &Fault{Kind: ErrDecodeFault, Op: "decode", Addr: inst.Word, PC: pc}
	}

	result.Halted = inst.Class.IsJump() && next == pc
	e.pc = next

	return result
}

func tagPC(err error, pc uint32) error {
	var f *Fault
	if errors.As(err, &f) {
		return f.WithPC(pc)
	}
	if err != nil {
		return fmt.Errorf("pc=0x%08X: %w", pc, err)
	}
	return nil
}

// onlyWarnings reports whether every fault in err is a misaligned-access
// warning.
func onlyWarnings(err error) bool {
	if err == nil {
		return true
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		if _, isFault := err.(*Fault); !isFault {
			for _, inner := range joined.Unwrap() {
				if !onlyWarnings(inner) {
					return false
				}
			}
			return true
		}
	}
	var f *Fault
	return errors.As(err, &f) && f.IsWarning()
}
