package benchmarks

import "github.com/sarchlab/rv32mc/insts"

// GetMicrobenchmarks returns the standard set of programs. Each one
// targets a group of instructions or a path through the control unit.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		arithmeticSequential(),
		dependencyChain(),
		sumLoop(),
		memorySequential(),
		byteHalfword(),
		upperImmediates(),
		functionCalls(),
		branchTaken(),
		bubbleSort(),
		ledBlink(),
	}
}

// GetCoreBenchmarks returns a minimal set of 3 core benchmarks for quick
// validation: a loop, memory traffic and branch-heavy code.
func GetCoreBenchmarks() []Benchmark {
	return []Benchmark{
		sumLoop(),
		memorySequential(),
		branchTaken(),
	}
}

// Cycles spent by each instruction class on the multi-cycle core.
const (
	aluCycles    = 4
	loadCycles   = 5
	storeCycles  = 4
	branchCycles = 3
	jumpCycles   = 4
)

func ledValue(v uint8) *uint8 {
	return &v
}

// 1. Arithmetic Sequential - independent immediate adds
func arithmeticSequential() Benchmark {
	program := make([]uint32, 0, 21)
	for i := 0; i < 20; i++ {
		rd := uint8(1 + i%5)
		program = append(program, insts.ADDI(rd, rd, 1))
	}
	program = append(program, insts.HALT())

	return Benchmark{
		Name:        "arithmetic_sequential",
		Description: "20 independent ADDI operations over 5 registers",
		Program:     program,
		ExpectedRegs: map[uint8]uint32{
			1: 4, 2: 4, 3: 4, 4: 4, 5: 4,
		},
		ExpectedCycles:       20*aluCycles + jumpCycles,
		ExpectedInstructions: 21,
	}
}

// 2. Dependency Chain - every add reads the previous result
func dependencyChain() Benchmark {
	program := make([]uint32, 0, 21)
	for i := 0; i < 20; i++ {
		program = append(program, insts.ADDI(1, 1, 1))
	}
	program = append(program, insts.HALT())

	return Benchmark{
		Name:                 "dependency_chain",
		Description:          "20 dependent ADDIs (x1 = x1 + 1)",
		Program:              program,
		ExpectedRegs:         map[uint8]uint32{1: 20},
		ExpectedCycles:       20*aluCycles + jumpCycles,
		ExpectedInstructions: 21,
	}
}

// 3. Sum Loop - 1 + 2 + ... + 10 with a backward branch
func sumLoop() Benchmark {
	return Benchmark{
		Name:        "sum_loop",
		Description: "sum 10 down to 1 in a BNE loop",
		Program: []uint32{
			insts.ADDI(1, 0, 10),
			insts.ADDI(2, 0, 0),
			insts.ADD(2, 2, 1), // loop:
			insts.ADDI(1, 1, -1),
			insts.BNE(1, 0, -8),
			insts.HALT(),
		},
		ExpectedRegs:         map[uint8]uint32{1: 0, 2: 55},
		ExpectedCycles:       2*aluCycles + 10*(2*aluCycles+branchCycles) + jumpCycles,
		ExpectedInstructions: 33,
	}
}

// 4. Memory Sequential - word loads, a sum and a store
func memorySequential() Benchmark {
	return Benchmark{
		Name:        "memory_sequential",
		Description: "load 4 consecutive words, store their sum",
		Program: []uint32{
			insts.ADDI(10, 0, int32(DataBase)),
			insts.LW(1, 10, 0),
			insts.LW(2, 10, 4),
			insts.LW(3, 10, 8),
			insts.LW(4, 10, 12),
			insts.ADD(5, 1, 2),
			insts.ADD(5, 5, 3),
			insts.ADD(5, 5, 4),
			insts.SW(5, 10, 16),
			insts.HALT(),
		},
		Data:                 []uint32{1, 2, 3, 4},
		ExpectedRegs:         map[uint8]uint32{5: 10},
		ExpectedMem:          map[uint32]uint32{DataBase + 16: 10},
		ExpectedCycles:       4*aluCycles + 4*loadCycles + storeCycles + jumpCycles,
		ExpectedInstructions: 10,
	}
}

// 5. Byte/Halfword - sub-word stores and sign/zero extending loads
func byteHalfword() Benchmark {
	return Benchmark{
		Name:        "byte_halfword",
		Description: "SB/SH followed by LB/LBU/LH/LHU of the same bytes",
		Program: []uint32{
			insts.ADDI(10, 0, int32(DataBase)),
			insts.ADDI(1, 0, -128),
			insts.SB(1, 10, 0),
			insts.SH(1, 10, 2),
			insts.LB(2, 10, 0),
			insts.LBU(3, 10, 0),
			insts.LH(4, 10, 2),
			insts.LHU(5, 10, 2),
			insts.HALT(),
		},
		ExpectedRegs: map[uint8]uint32{
			2: 0xFFFFFF80,
			3: 0x00000080,
			4: 0xFFFFFF80,
			5: 0x0000FF80,
		},
		ExpectedMem:          map[uint32]uint32{DataBase: 0xFF800080},
		ExpectedCycles:       2*aluCycles + 2*storeCycles + 4*loadCycles + jumpCycles,
		ExpectedInstructions: 9,
	}
}

// 6. Upper Immediates - LUI and AUIPC
func upperImmediates() Benchmark {
	return Benchmark{
		Name:        "upper_immediates",
		Description: "build a 32-bit constant with LUI+ADDI, PC-relative address with AUIPC",
		Program: []uint32{
			insts.LUI(1, 0x12345),
			insts.ADDI(1, 1, 0x678),
			insts.AUIPC(2, 1),
			insts.HALT(),
		},
		ExpectedRegs: map[uint8]uint32{
			1: 0x12345678,
			2: ProgramBase + 8 + 0x1000,
		},
		ExpectedCycles:       3*aluCycles + jumpCycles,
		ExpectedInstructions: 4,
	}
}

// 7. Function Calls - JAL to a leaf function and JALR back, twice
func functionCalls() Benchmark {
	return Benchmark{
		Name:        "function_calls",
		Description: "two calls to a leaf function that adds 7",
		Program: []uint32{
			insts.ADDI(10, 0, 0),
			insts.JAL(1, 12),
			insts.JAL(1, 8),
			insts.HALT(),
			insts.ADDI(10, 10, 7), // leaf:
			insts.JALR(0, 1, 0),
		},
		ExpectedRegs: map[uint8]uint32{
			1:  ProgramBase + 12,
			10: 14,
		},
		ExpectedCycles:       3*aluCycles + 5*jumpCycles,
		ExpectedInstructions: 8,
	}
}

// 8. Branch Taken - taken and not-taken conditional branches
func branchTaken() Benchmark {
	return Benchmark{
		Name:        "branch_taken",
		Description: "BEQ/BLT/BGEU taken over poison writes, BNE not taken",
		Program: []uint32{
			insts.ADDI(1, 0, 5),
			insts.ADDI(2, 0, 5),
			insts.BEQ(1, 2, 8),
			insts.ADDI(3, 0, 1),
			insts.BLT(0, 1, 8),
			insts.ADDI(3, 0, 2),
			insts.BNE(1, 2, 8),
			insts.ADDI(4, 0, 9),
			insts.BGEU(1, 2, 8),
			insts.ADDI(3, 0, 3),
			insts.HALT(),
		},
		ExpectedRegs:         map[uint8]uint32{3: 0, 4: 9},
		ExpectedCycles:       3*aluCycles + 4*branchCycles + jumpCycles,
		ExpectedInstructions: 8,
	}
}

// 9. Bubble Sort - nested loops over memory
func bubbleSort() Benchmark {
	return Benchmark{
		Name:        "bubble_sort",
		Description: "bubble sort 4 words in place",
		Program: []uint32{
			insts.ADDI(10, 0, int32(DataBase)),
			insts.ADDI(11, 0, 3),
			insts.ADDI(12, 0, 0), // outer:
			insts.ADDI(13, 11, 0),
			insts.ADD(14, 10, 12), // inner:
			insts.LW(15, 14, 0),
			insts.LW(16, 14, 4),
			insts.BGE(16, 15, 12),
			insts.SW(16, 14, 0),
			insts.SW(15, 14, 4),
			insts.ADDI(12, 12, 4), // noswap:
			insts.ADDI(13, 13, -1),
			insts.BNE(13, 0, -32),
			insts.ADDI(11, 11, -1),
			insts.BNE(11, 0, -48),
			insts.HALT(),
		},
		Data: []uint32{5, 3, 8, 1},
		ExpectedMem: map[uint32]uint32{
			DataBase:      1,
			DataBase + 4:  3,
			DataBase + 8:  5,
			DataBase + 12: 8,
		},
	}
}

// 10. LED Blink - byte stores to the LED register
func ledBlink() Benchmark {
	return Benchmark{
		Name:        "led_blink",
		Description: "write two patterns to the memory-mapped LED register",
		Program: []uint32{
			insts.ADDI(1, 0, 0x5A),
			insts.SB(1, 0, -1),
			insts.ADDI(1, 1, 1),
			insts.SB(1, 0, -1),
			insts.HALT(),
		},
		ExpectedRegs:         map[uint8]uint32{1: 0x5B},
		ExpectedLED:          ledValue(0x5B),
		ExpectedCycles:       2*aluCycles + 2*storeCycles + jumpCycles,
		ExpectedInstructions: 5,
	}
}
