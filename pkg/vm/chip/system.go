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

// SystemChipName identifies the system chip in configurations and key sets.
const SystemChipName = "system"

// SystemChip executes the opcodes which touch neither registers nor memory:
// no-ops and termination.
type SystemChip struct{}

// NewSystemChip constructs the system chip.
func NewSystemChip() *SystemChip {
	return &SystemChip{}
}

// Name implementation for the Chip interface.
func (p *SystemChip) Name() string {
	return SystemChipName
}

// Opcodes implementation for the Chip interface.
func (p *SystemChip) Opcodes() []isa.Opcode {
	return []isa.Opcode{isa.NOP, isa.TERMINATE}
}

// TraceWidth implementation for the Chip interface.  Columns are (pc, opcode,
// a, real).
func (p *SystemChip) TraceWidth() uint {
	return 4
}

// Interactions implementation for the Chip interface.
func (p *SystemChip) Interactions() []bus.Interaction {
	return nil
}

// PaddingRow implementation for the Chip interface.
func (p *SystemChip) PaddingRow() []fr.Element {
	return make([]fr.Element, p.TraceWidth())
}

// Execute implementation for the Chip interface.
func (p *SystemChip) Execute(insn isa.Instruction, state *vm.State) (vm.StepResult, error) {
	row := []fr.Element{
		u64(state.Pc()), u64(uint64(insn.Opcode)), u64(uint64(insn.A)), u64(1),
	}
	//
	switch insn.Opcode {
	case isa.NOP:
		return vm.StepResult{NextPc: state.Pc() + 1, Row: row}, nil
	case isa.TERMINATE:
		return vm.StepResult{Halt: true, ExitCode: uint64(insn.A), Row: row}, nil
	default:
		unreachableExecute(SystemChipName)
	}
	// Unreachable
	return vm.StepResult{}, nil
}
