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
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"

	"github.com/proofwright/go-zvm/pkg/isa"
	"github.com/proofwright/go-zvm/pkg/vm"
	"github.com/proofwright/go-zvm/pkg/vm/bus"
)

// BranchChipName identifies the control-flow chip in configurations and key
// sets.
const BranchChipName = "branch"

// BranchChip executes jumps and conditional branches.  Branch targets are
// absolute instruction indices and must fall within the program, since a pc
// outside the program cannot be matched against the program table.
type BranchChip struct{}

// NewBranchChip constructs the control-flow chip.
func NewBranchChip() *BranchChip {
	return &BranchChip{}
}

// Name implementation for the Chip interface.
func (p *BranchChip) Name() string {
	return BranchChipName
}

// Opcodes implementation for the Chip interface.
func (p *BranchChip) Opcodes() []isa.Opcode {
	return []isa.Opcode{isa.JAL, isa.BEQ, isa.BNE}
}

// TraceWidth implementation for the Chip interface.  Columns are (pc, opcode,
// a, b, c, x, y, real) where x and y are the compared register values (or the
// link value for jumps).
func (p *BranchChip) TraceWidth() uint {
	return 8
}

// Interactions implementation for the Chip interface.
func (p *BranchChip) Interactions() []bus.Interaction {
	return nil
}

// PaddingRow implementation for the Chip interface.
func (p *BranchChip) PaddingRow() []fr.Element {
	return make([]fr.Element, p.TraceWidth())
}

// Execute implementation for the Chip interface.
func (p *BranchChip) Execute(insn isa.Instruction, state *vm.State) (vm.StepResult, error) {
	var (
		x, y   fr.Element
		target = uint64(insn.C)
		next   = state.Pc() + 1
		err    error
	)
	// Sanity check target
	if !state.Program().Bounds(target) {
		return vm.StepResult{}, fmt.Errorf("branch target %d outside program", target)
	}
	//
	switch insn.Opcode {
	case isa.JAL:
		// Link then jump
		x.SetUint64(next)
		//
		if err = state.WriteRegister(insn.A, x); err != nil {
			return vm.StepResult{}, err
		}
		//
		next = target
	case isa.BEQ, isa.BNE:
		if x, _, err = state.ReadRegister(insn.A); err != nil {
			return vm.StepResult{}, err
		} else if y, _, err = state.ReadRegister(insn.B); err != nil {
			return vm.StepResult{}, err
		}
		// Determine whether branch taken
		if x.Equal(&y) == (insn.Opcode == isa.BEQ) {
			next = target
		}
	default:
		unreachableExecute(BranchChipName)
	}
	//
	row := []fr.Element{
		u64(state.Pc()), u64(uint64(insn.Opcode)),
		u64(uint64(insn.A)), u64(uint64(insn.B)), u64(uint64(insn.C)),
		x, y, u64(1),
	}
	//
	return vm.StepResult{NextPc: next, Row: row}, nil
}
