// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package chip

import (
	"errors"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proofwright/go-zvm/pkg/config"
	"github.com/proofwright/go-zvm/pkg/isa"
	"github.com/proofwright/go-zvm/pkg/trace"
	"github.com/proofwright/go-zvm/pkg/vm"
	"github.com/proofwright/go-zvm/pkg/vm/bus"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.SelfCheck = true
	//
	return cfg
}

func run(t *testing.T, cfg *config.Config, program *isa.Program, input []fr.Element) *vm.RunResult {
	t.Helper()
	//
	machine, err := NewVM(cfg)
	require.NoError(t, err)
	//
	result, err := machine.Run(program, input)
	require.NoError(t, err)
	//
	return result
}

func faultKind(t *testing.T, err error) vm.FaultKind {
	t.Helper()
	//
	var fault *vm.Fault
	//
	require.True(t, errors.As(err, &fault), "expected fault, got %v", err)
	//
	return fault.Kind
}

// countdown builds a program looping a counter from n down to zero, writing
// the final counter value to output zero.
func countdown(n uint32) *isa.Program {
	return isa.NewProgram([]isa.Instruction{
		isa.NewInstruction(isa.ADDI, 1, 0, n), // x1 = n
		isa.NewInstruction(isa.ADDI, 2, 0, 1), // x2 = 1
		isa.NewInstruction(isa.BEQ, 1, 3, 5),  // if x1 == 0 goto 5
		isa.NewInstruction(isa.SUB, 1, 1, 2),  // x1 = x1 - 1
		isa.NewInstruction(isa.JAL, 4, 0, 2),  // goto 2
		isa.NewInstruction(isa.WRITE, 1, 0, 0),
		isa.NewInstruction(isa.TERMINATE, 0, 0, 0),
	})
}

func TestTerminateExitCode(t *testing.T) {
	program := isa.NewProgram([]isa.Instruction{
		isa.NewInstruction(isa.TERMINATE, 42, 0, 0),
	})
	//
	result := run(t, testConfig(), program, nil)
	//
	assert.Equal(t, uint64(42), result.ExitCode)
	assert.Len(t, result.Segments, 1)
}

func TestArithmetic(t *testing.T) {
	program := isa.NewProgram([]isa.Instruction{
		isa.NewInstruction(isa.ADDI, 1, 0, 5), // x1 = 5
		isa.NewInstruction(isa.ADDI, 2, 0, 7), // x2 = 7
		isa.NewInstruction(isa.MUL, 3, 1, 2),  // x3 = 35
		isa.NewInstruction(isa.WRITE, 3, 0, 0),
		isa.NewInstruction(isa.TERMINATE, 0, 0, 0),
	})
	//
	result := run(t, testConfig(), program, nil)
	//
	require.Len(t, result.Outputs, 1)
	assert.Equal(t, u64(35), result.Outputs[0])
}

func TestHeapLoadStore(t *testing.T) {
	program := isa.NewProgram([]isa.Instruction{
		isa.NewInstruction(isa.ADDI, 1, 0, 99),   // x1 = 99
		isa.NewInstruction(isa.STOREW, 1, 2, 16), // heap[x2+16] = x1
		isa.NewInstruction(isa.LOADW, 3, 2, 16),  // x3 = heap[x2+16]
		isa.NewInstruction(isa.WRITE, 3, 0, 0),
		isa.NewInstruction(isa.TERMINATE, 0, 0, 0),
	})
	//
	result := run(t, testConfig(), program, nil)
	//
	require.Len(t, result.Outputs, 1)
	assert.Equal(t, u64(99), result.Outputs[0])
}

func TestInputStream(t *testing.T) {
	program := isa.NewProgram([]isa.Instruction{
		isa.NewInstruction(isa.READ, 1, 0, 0), // x1 = in[0]
		isa.NewInstruction(isa.READ, 2, 0, 1), // x2 = in[1]
		isa.NewInstruction(isa.ADD, 3, 1, 2),
		isa.NewInstruction(isa.WRITE, 3, 0, 0),
		isa.NewInstruction(isa.TERMINATE, 0, 0, 0),
	})
	//
	result := run(t, testConfig(), program, []fr.Element{u64(4), u64(9)})
	//
	require.Len(t, result.Outputs, 1)
	assert.Equal(t, u64(13), result.Outputs[0])
}

func TestStaticData(t *testing.T) {
	program := isa.NewProgram(
		[]isa.Instruction{
			isa.NewInstruction(isa.LOADW, 1, 0, 8), // x1 = heap[x0+8]
			isa.NewInstruction(isa.WRITE, 1, 0, 0),
			isa.NewInstruction(isa.TERMINATE, 0, 0, 0),
		},
		isa.DataSegment{Space: 1, Offset: 8, Values: []fr.Element{u64(123)}},
	)
	//
	result := run(t, testConfig(), program, nil)
	//
	require.Len(t, result.Outputs, 1)
	assert.Equal(t, u64(123), result.Outputs[0])
}

func TestBusBalancePerSegment(t *testing.T) {
	result := run(t, testConfig(), countdown(10), nil)
	//
	for _, segment := range result.Segments {
		assert.Empty(t, bus.SelfCheck(segment.Messages, bus.EXECUTION_BUS))
	}
}

func TestSegmentedRunMatchesUnsegmented(t *testing.T) {
	var (
		whole = testConfig()
		split = testConfig()
	)
	//
	split.MaxTraceHeight = 16
	//
	r1 := run(t, whole, countdown(20), nil)
	r2 := run(t, split, countdown(20), nil)
	//
	require.Len(t, r1.Segments, 1)
	require.Greater(t, len(r2.Segments), 1)
	// Same observable behaviour
	assert.Equal(t, r1.ExitCode, r2.ExitCode)
	assert.Equal(t, r1.Outputs, r2.Outputs)
	// Same committed final state
	last1 := r1.Segments[len(r1.Segments)-1].Exit
	last2 := r2.Segments[len(r2.Segments)-1].Exit
	assert.Equal(t, last1.Commitment, last2.Commitment)
}

func TestSegmentChainIsContiguous(t *testing.T) {
	cfg := testConfig()
	cfg.MaxTraceHeight = 16
	//
	result := run(t, cfg, countdown(20), nil)
	require.Greater(t, len(result.Segments), 1)
	//
	for i := 1; i < len(result.Segments); i++ {
		prev, next := result.Segments[i-1], result.Segments[i]
		//
		assert.Equal(t, prev.Exit.Commitment, next.Entry.Commitment)
		assert.Equal(t, prev.Exit.Pc, next.Entry.Pc)
		assert.Equal(t, prev.Exit.Clock, next.Entry.Clock)
	}
	// Only the final segment halts
	for i, segment := range result.Segments {
		assert.Equal(t, i == len(result.Segments)-1, segment.Halted)
	}
}

func TestDeterministicReplay(t *testing.T) {
	cfg := testConfig()
	cfg.MaxTraceHeight = 16
	//
	r1 := run(t, cfg, countdown(15), nil)
	r2 := run(t, cfg, countdown(15), nil)
	//
	require.Equal(t, len(r1.Segments), len(r2.Segments))
	//
	for i := range r1.Segments {
		s1, s2 := r1.Segments[i], r2.Segments[i]
		//
		assert.Equal(t, s1.Exit.Commitment, s2.Exit.Commitment)
		assert.Equal(t, len(s1.Messages), len(s2.Messages))
		//
		for j := range s1.Matrices {
			assert.Equal(t, s1.Matrices[j].Rows(), s2.Matrices[j].Rows())
		}
	}
}

func TestPaddedMatricesCarryNoMultiplicity(t *testing.T) {
	result := run(t, testConfig(), countdown(5), nil)
	//
	segment := result.Segments[0]
	input := trace.Assemble(segment.Matrices, segment.Messages)
	//
	for _, matrix := range input.Matrices {
		// Power-of-two height after assembly
		assert.Zero(t, matrix.Height()&(matrix.Height()-1))
	}
	// Padding rows of the alu matrix deactivate their selector
	alu := segment.Matrix(AluChipName)
	require.NotNil(t, alu)
	//
	last := alu.Row(alu.Height() - 1)
	assert.True(t, last[len(last)-1].IsZero())
}

func TestDivisionByZeroFaults(t *testing.T) {
	program := isa.NewProgram([]isa.Instruction{
		isa.NewInstruction(isa.ADDI, 1, 0, 5),
		isa.NewInstruction(isa.DIV, 3, 1, 2), // x2 = 0
		isa.NewInstruction(isa.TERMINATE, 0, 0, 0),
	})
	//
	machine, err := NewVM(testConfig())
	require.NoError(t, err)
	//
	result, err := machine.Run(program, nil)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, vm.ARITHMETIC_FAULT, faultKind(t, err))
}

func TestOutOfBoundsReadFaults(t *testing.T) {
	program := isa.NewProgram([]isa.Instruction{
		isa.NewInstruction(isa.READ, 1, 0, 1<<20),
		isa.NewInstruction(isa.TERMINATE, 0, 0, 0),
	})
	//
	machine, err := NewVM(testConfig())
	require.NoError(t, err)
	//
	result, err := machine.Run(program, nil)
	require.Error(t, err)
	// No partial chain on fault
	assert.Nil(t, result)
	assert.Equal(t, vm.ACCESS_FAULT, faultKind(t, err))
}

func TestPcOverrunFaults(t *testing.T) {
	// Program falls off the end without terminating
	program := isa.NewProgram([]isa.Instruction{
		isa.NewInstruction(isa.NOP, 0, 0, 0),
	})
	//
	machine, err := NewVM(testConfig())
	require.NoError(t, err)
	//
	_, err = machine.Run(program, nil)
	require.Error(t, err)
	assert.Equal(t, vm.ACCESS_FAULT, faultKind(t, err))
}

func TestUnclaimedOpcodeFaults(t *testing.T) {
	cfg := testConfig()
	// Drop the alu chip
	chips := cfg.Chips[:0]
	//
	for _, c := range cfg.Chips {
		if c.Name != AluChipName {
			chips = append(chips, c)
		}
	}
	//
	cfg.Chips = chips
	//
	program := isa.NewProgram([]isa.Instruction{
		isa.NewInstruction(isa.ADD, 1, 2, 3),
	})
	//
	machine, err := NewVM(cfg)
	require.NoError(t, err)
	//
	_, err = machine.Run(program, nil)
	require.Error(t, err)
	assert.Equal(t, vm.DISPATCH_FAULT, faultKind(t, err))
}

func TestUnworkableHeightBoundFaults(t *testing.T) {
	cfg := testConfig()
	cfg.MaxTraceHeight = 1
	//
	machine, err := NewVM(cfg)
	require.NoError(t, err)
	//
	_, err = machine.Run(countdown(3), nil)
	require.Error(t, err)
	assert.Equal(t, vm.CONFIG_FAULT, faultKind(t, err))
}

func TestUnknownChipNameRejected(t *testing.T) {
	cfg := testConfig()
	cfg.Chips = append(cfg.Chips, config.ChipConfig{Name: "turbo"})
	//
	_, err := FromConfig(cfg)
	require.Error(t, err)
	assert.Equal(t, vm.CONFIG_FAULT, faultKind(t, err))
}

func TestRangeTableHeightIsStatic(t *testing.T) {
	cfg := testConfig()
	cfg.RangeBits = 4
	//
	result := run(t, cfg, countdown(3), nil)
	//
	rangeMatrix := result.Segments[0].Matrix(RangeChipName)
	require.NotNil(t, rangeMatrix)
	assert.Equal(t, uint(16), rangeMatrix.Height())
}

func TestProgramTableCoversProgram(t *testing.T) {
	program := countdown(3)
	result := run(t, testConfig(), program, nil)
	//
	matrix := result.Segments[0].Matrix(ProgramChipName)
	require.NotNil(t, matrix)
	assert.Equal(t, uint(program.Size()), matrix.Height())
}
