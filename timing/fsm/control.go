package fsm

import (
	"github.com/sarchlab/rv32mc/emu"
	"github.com/sarchlab/rv32mc/insts"
)

// dispatch maps an instruction class to the state entered after DECODE.
// Classes missing from the table return to FETCH.
var dispatch = map[insts.Class]State{
	insts.ClassRegReg: StateExecR,
	insts.ClassRegImm: StateExecI,
	insts.ClassLUI:    StateExecU,
	insts.ClassAUIPC:  StateExecU,
	insts.ClassLoad:   StateMemAddr,
	insts.ClassStore:  StateMemAddr,
	insts.ClassBranch: StateBranch,
	insts.ClassJAL:    StateJump,
	insts.ClassJALR:   StateJump,
}

// Dispatch returns the state that follows DECODE for class, and false if
// the class is not an RV32I instruction.
func Dispatch(class insts.Class) (State, bool) {
	s, ok := dispatch[class]
	return s, ok
}

// Next returns the state that follows s when executing an instruction of
// the given class.
func Next(s State, class insts.Class) State {
	switch s {
	case StateFetch:
		return StateDecode
	case StateDecode:
		if next, ok := dispatch[class]; ok {
			return next
		}
		return StateFetch
	case StateExecR, StateExecI, StateExecU, StateJump:
		return StateALUWB
	case StateMemAddr:
		if class == insts.ClassStore {
			return StateMemWrite
		}
		return StateMemRead
	case StateMemRead:
		return StateMemWB
	default: // MEM_WRITE, MEM_WB, ALU_WB, BRANCH
		return StateFetch
	}
}

// Signals returns the control signals asserted in state s for an
// instruction of the given class. In FETCH the class is that of the
// previous instruction and is ignored.
func Signals(s State, class insts.Class) ControlSignals {
	switch s {
	case StateFetch:
		return ControlSignals{
			Src1: Src1PC, Src2: Src2Four, ALUSel: emu.ALUSelAdd,
			Result: ResultALU, MemAddr: AddrPC,
			InstEn: true, PCEn: true,
		}
	case StateDecode:
		return decodeSignals(class)
	case StateExecR:
		return ControlSignals{Src1: Src1RS1V, Src2: Src2RS2V, ALUSel: emu.ALUSelFunct}
	case StateExecI:
		return ControlSignals{Src1: Src1RS1V, Src2: Src2Imm, ALUSel: emu.ALUSelFunct}
	case StateExecU:
		src1 := Src1Zero
		if class == insts.ClassAUIPC {
			src1 = Src1PCOld
		}
		return ControlSignals{Src1: src1, Src2: Src2Imm, ALUSel: emu.ALUSelAdd}
	case StateMemAddr:
		return ControlSignals{Src1: Src1RS1V, Src2: Src2Imm, ALUSel: emu.ALUSelAdd}
	case StateMemRead:
		return ControlSignals{Result: ResultALUClocked, MemAddr: AddrResult}
	case StateMemWrite:
		return ControlSignals{Result: ResultALUClocked, MemAddr: AddrResult, MemWrEn: true}
	case StateMemWB:
		return ControlSignals{Result: ResultMemRead, RegWrEn: true}
	case StateALUWB:
		return ControlSignals{Result: ResultALUClocked, RegWrEn: true}
	case StateBranch:
		return ControlSignals{
			Src1: Src1RS1V, Src2: Src2RS2V, ALUSel: emu.ALUSelSub,
			Result: ResultALUClocked, Branch: true,
		}
	case StateJump:
		return ControlSignals{
			Src1: Src1PCOld, Src2: Src2Four, ALUSel: emu.ALUSelAdd,
			Result: ResultALUClocked, PCEn: true,
		}
	default:
		return ControlSignals{}
	}
}

// decodeSignals precomputes the control-transfer target while the
// register file is read, so BRANCH and JUMP find it in ALU_CLOCKED.
func decodeSignals(class insts.Class) ControlSignals {
	switch class {
	case insts.ClassBranch, insts.ClassJAL:
		return ControlSignals{Src1: Src1PCOld, Src2: Src2Imm, ALUSel: emu.ALUSelAdd}
	case insts.ClassJALR:
		return ControlSignals{Src1: Src1RS1V, Src2: Src2Imm, ALUSel: emu.ALUSelAdd}
	default:
		return ControlSignals{Src1: Src1PC, Src2: Src2Four, ALUSel: emu.ALUSelAdd}
	}
}

// Path returns the sequence of states an instruction of the given class
// visits, starting at FETCH and ending before the next FETCH.
func Path(class insts.Class) []State {
	path := []State{StateFetch}
	for s := Next(StateFetch, class); s != StateFetch; s = Next(s, class) {
		path = append(path, s)
	}
	return path
}

// Cycles returns the number of cycles an instruction of the given class
// takes.
func Cycles(class insts.Class) int {
	return len(Path(class))
}
