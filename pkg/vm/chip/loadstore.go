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
	"math"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"

	"github.com/proofwright/go-zvm/pkg/isa"
	"github.com/proofwright/go-zvm/pkg/vm"
	"github.com/proofwright/go-zvm/pkg/vm/bus"
	"github.com/proofwright/go-zvm/pkg/vm/memory"
)

// LoadStoreChipName identifies the memory-traffic chip in configurations and
// key sets.
const LoadStoreChipName = "loadstore"

// LoadStoreChip executes word transfers between the register file and the
// heap, input and output address spaces.  Heap addressing is base plus
// immediate offset, where the base register must hold a machine integer.
type LoadStoreChip struct{}

// NewLoadStoreChip constructs the memory-traffic chip.
func NewLoadStoreChip() *LoadStoreChip {
	return &LoadStoreChip{}
}

// Name implementation for the Chip interface.
func (p *LoadStoreChip) Name() string {
	return LoadStoreChipName
}

// Opcodes implementation for the Chip interface.
func (p *LoadStoreChip) Opcodes() []isa.Opcode {
	return []isa.Opcode{isa.LOADW, isa.STOREW, isa.READ, isa.WRITE}
}

// TraceWidth implementation for the Chip interface.  Columns are (pc, opcode,
// a, b, c, space, offset, value, real).
func (p *LoadStoreChip) TraceWidth() uint {
	return 9
}

// Interactions implementation for the Chip interface.
func (p *LoadStoreChip) Interactions() []bus.Interaction {
	return nil
}

// PaddingRow implementation for the Chip interface.
func (p *LoadStoreChip) PaddingRow() []fr.Element {
	return make([]fr.Element, p.TraceWidth())
}

// Execute implementation for the Chip interface.
func (p *LoadStoreChip) Execute(insn isa.Instruction, state *vm.State) (vm.StepResult, error) {
	var (
		addr  memory.Address
		value fr.Element
		err   error
	)
	//
	switch insn.Opcode {
	case isa.LOADW, isa.STOREW:
		if addr, err = p.heapAddress(insn, state); err != nil {
			return vm.StepResult{}, err
		}
	case isa.READ:
		addr = memory.Address{Space: memory.INPUT_SPACE, Offset: uint64(insn.C)}
	case isa.WRITE:
		addr = memory.Address{Space: memory.OUTPUT_SPACE, Offset: uint64(insn.C)}
	default:
		unreachableExecute(LoadStoreChipName)
	}
	// Perform the transfer
	switch insn.Opcode {
	case isa.LOADW, isa.READ:
		if value, _, err = state.Memory().Read(addr); err != nil {
			return vm.StepResult{}, err
		} else if err = state.WriteRegister(insn.A, value); err != nil {
			return vm.StepResult{}, err
		}
	case isa.STOREW, isa.WRITE:
		if value, _, err = state.ReadRegister(insn.A); err != nil {
			return vm.StepResult{}, err
		} else if err = state.Memory().Write(addr, value); err != nil {
			return vm.StepResult{}, err
		}
	}
	//
	row := []fr.Element{
		u64(state.Pc()), u64(uint64(insn.Opcode)),
		u64(uint64(insn.A)), u64(uint64(insn.B)), u64(uint64(insn.C)),
		u64(uint64(addr.Space)), u64(addr.Offset), value, u64(1),
	}
	//
	return vm.StepResult{NextPc: state.Pc() + 1, Row: row}, nil
}

// heapAddress resolves the base-plus-offset address of a heap transfer.  The
// base register must hold a value representable as a machine integer.
func (p *LoadStoreChip) heapAddress(insn isa.Instruction, state *vm.State) (memory.Address, error) {
	base, _, err := state.ReadRegister(insn.B)
	//
	if err != nil {
		return memory.Address{}, err
	} else if !base.IsUint64() {
		return memory.Address{}, fmt.Errorf("register x%d does not hold an address", insn.B)
	}
	//
	offset := base.Uint64()
	//
	if offset > math.MaxUint64-uint64(insn.C) {
		return memory.Address{}, fmt.Errorf("address %d+%d overflows", offset, insn.C)
	}
	//
	return memory.Address{Space: memory.HEAP_SPACE, Offset: offset + uint64(insn.C)}, nil
}
