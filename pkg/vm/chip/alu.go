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

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"

	"github.com/proofwright/go-zvm/pkg/isa"
	"github.com/proofwright/go-zvm/pkg/vm"
	"github.com/proofwright/go-zvm/pkg/vm/bus"
)

// AluChipName identifies the arithmetic chip in configurations and key sets.
const AluChipName = "alu"

// AluChip executes field arithmetic over the register file.  Each row records
// the instruction, its two resolved inputs and the result, with a selector
// column distinguishing real rows from padding.
type AluChip struct{}

// NewAluChip constructs the arithmetic chip.
func NewAluChip() *AluChip {
	return &AluChip{}
}

// Name implementation for the Chip interface.
func (p *AluChip) Name() string {
	return AluChipName
}

// Opcodes implementation for the Chip interface.
func (p *AluChip) Opcodes() []isa.Opcode {
	return []isa.Opcode{isa.ADD, isa.SUB, isa.MUL, isa.DIV, isa.ADDI}
}

// TraceWidth implementation for the Chip interface.  Columns are (pc, opcode,
// a, b, c, x, y, z, real) where z is the computed result.
func (p *AluChip) TraceWidth() uint {
	return 9
}

// Interactions implementation for the Chip interface.  Register traffic flows
// through the memory controller, hence the chip itself owns no bus endpoint.
func (p *AluChip) Interactions() []bus.Interaction {
	return nil
}

// PaddingRow implementation for the Chip interface.
func (p *AluChip) PaddingRow() []fr.Element {
	return make([]fr.Element, p.TraceWidth())
}

// Execute implementation for the Chip interface.
func (p *AluChip) Execute(insn isa.Instruction, state *vm.State) (vm.StepResult, error) {
	var (
		x, y, z fr.Element
		err     error
	)
	// Resolve left operand
	if x, _, err = state.ReadRegister(insn.B); err != nil {
		return vm.StepResult{}, err
	}
	// Resolve right operand
	if insn.Opcode == isa.ADDI {
		y.SetUint64(uint64(insn.C))
	} else if y, _, err = state.ReadRegister(insn.C); err != nil {
		return vm.StepResult{}, err
	}
	// Compute
	switch insn.Opcode {
	case isa.ADD, isa.ADDI:
		z.Add(&x, &y)
	case isa.SUB:
		z.Sub(&x, &y)
	case isa.MUL:
		z.Mul(&x, &y)
	case isa.DIV:
		if y.IsZero() {
			return vm.StepResult{}, errors.New("division by zero")
		}
		//
		z.Div(&x, &y)
	default:
		unreachableExecute(AluChipName)
	}
	// Write back
	if err = state.WriteRegister(insn.A, z); err != nil {
		return vm.StepResult{}, err
	}
	//
	row := []fr.Element{
		u64(state.Pc()), u64(uint64(insn.Opcode)),
		u64(uint64(insn.A)), u64(uint64(insn.B)), u64(uint64(insn.C)),
		x, y, z, u64(1),
	}
	//
	return vm.StepResult{NextPc: state.Pc() + 1, Row: row}, nil
}
