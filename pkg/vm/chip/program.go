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
	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"

	"github.com/proofwright/go-zvm/pkg/isa"
	"github.com/proofwright/go-zvm/pkg/vm"
	"github.com/proofwright/go-zvm/pkg/vm/bus"
)

// ProgramChipName identifies the program table in configurations and key
// sets.
const ProgramChipName = "program"

// ProgramChip is the static program table: one row per instruction of the
// committed program, with a multiplicity column counting how often the
// executor fetched that position.  Receiving every fetch tuple here ties each
// dispatched instruction to the committed program.  Like the range table, its
// height is fixed by the program alone and exempt from the segment height
// bound.
type ProgramChip struct{}

// NewProgramChip constructs the program table.
func NewProgramChip() *ProgramChip {
	return &ProgramChip{}
}

// Name implementation for the Chip interface.
func (p *ProgramChip) Name() string {
	return ProgramChipName
}

// Opcodes implementation for the Chip interface.
func (p *ProgramChip) Opcodes() []isa.Opcode {
	return nil
}

// TraceWidth implementation for the Chip interface.  Columns are (pc, opcode,
// a, b, c, multiplicity).
func (p *ProgramChip) TraceWidth() uint {
	return 6
}

// Interactions implementation for the Chip interface.
func (p *ProgramChip) Interactions() []bus.Interaction {
	return []bus.Interaction{
		{Bus: bus.PROGRAM_BUS, Direction: bus.RECEIVE},
	}
}

// PaddingRow implementation for the Chip interface.
func (p *ProgramChip) PaddingRow() []fr.Element {
	return make([]fr.Element, p.TraceWidth())
}

// Execute implementation for the Chip interface.
func (p *ProgramChip) Execute(isa.Instruction, *vm.State) (vm.StepResult, error) {
	unreachableExecute(ProgramChipName)
	// Unreachable
	return vm.StepResult{}, nil
}

// Finalize implementation for the TableChip interface.
func (p *ProgramChip) Finalize(ctx *vm.FinalizeContext) ([][]fr.Element, error) {
	var (
		program = ctx.Program
		rows    = make([][]fr.Element, program.Size())
	)
	//
	for pc := uint64(0); pc < program.Size(); pc++ {
		var (
			insn = program.Instruction(pc)
			mult = ctx.FetchCounts[pc]
		)
		//
		rows[pc] = []fr.Element{
			u64(pc), u64(uint64(insn.Opcode)),
			u64(uint64(insn.A)), u64(uint64(insn.B)), u64(uint64(insn.C)),
			u64(uint64(mult)),
		}
		//
		if mult > 0 {
			ctx.Recorder.ReceiveN(bus.PROGRAM_BUS, mult, vm.FetchTuple(pc, insn)...)
		}
	}
	//
	return rows, nil
}
