// Package fsm provides the control unit of the multi-cycle core: the
// state enumeration, the per-state control signals and the transition
// function.
package fsm

// State is a state of the control FSM.
type State uint8

// Control FSM states.
const (
	StateFetch State = iota
	StateDecode
	StateExecR
	StateExecI
	StateExecU
	StateMemAddr
	StateMemRead
	StateMemWrite
	StateMemWB
	StateALUWB
	StateBranch
	StateJump

	numStates
)

// ResetState is the state entered on reset.
const ResetState = StateFetch

var stateNames = [numStates]string{
	StateFetch:    "FETCH",
	StateDecode:   "DECODE",
	StateExecR:    "EXEC_R",
	StateExecI:    "EXEC_I",
	StateExecU:    "EXEC_U",
	StateMemAddr:  "MEM_ADDR",
	StateMemRead:  "MEM_READ",
	StateMemWrite: "MEM_WRITE",
	StateMemWB:    "MEM_WB",
	StateALUWB:    "ALU_WB",
	StateBranch:   "BRANCH",
	StateJump:     "JUMP",
}

// String returns the name of the state.
func (s State) String() string {
	if s < numStates {
		return stateNames[s]
	}
	return "INVALID"
}

// Valid reports whether s is one of the defined states.
func (s State) Valid() bool {
	return s < numStates
}

// States returns every state in declaration order.
func States() []State {
	out := make([]State, 0, numStates)
	for s := State(0); s < numStates; s++ {
		out = append(out, s)
	}
	return out
}
