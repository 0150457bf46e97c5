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
	"github.com/proofwright/go-zvm/pkg/vm/memory"
)

// MemoryChip is the offline memory checker.  Its trace is the segment's
// access log re-sorted by (address, timestamp): in that order read-after-write
// consistency is a purely local property between adjacent rows.  Each row
// receives one access tuple from the memory bus, cancelling the controller's
// send for it, and the timestamp distance between adjacent accesses of the
// same cell is delegated to the range table.
type MemoryChip struct{}

// NewMemoryChip constructs the offline memory checker.
func NewMemoryChip() *MemoryChip {
	return &MemoryChip{}
}

// Name implementation for the Chip interface.
func (p *MemoryChip) Name() string {
	return vm.MemoryChipName
}

// Opcodes implementation for the Chip interface.
func (p *MemoryChip) Opcodes() []isa.Opcode {
	return nil
}

// TraceWidth implementation for the Chip interface.  Columns are (space,
// offset, value, timestamp, write, distance, real).
func (p *MemoryChip) TraceWidth() uint {
	return 7
}

// Interactions implementation for the Chip interface.
func (p *MemoryChip) Interactions() []bus.Interaction {
	return []bus.Interaction{
		{Bus: bus.MEMORY_BUS, Direction: bus.RECEIVE},
		{Bus: bus.RANGE_BUS, Direction: bus.SEND},
	}
}

// PaddingRow implementation for the Chip interface.
func (p *MemoryChip) PaddingRow() []fr.Element {
	return make([]fr.Element, p.TraceWidth())
}

// Execute implementation for the Chip interface.
func (p *MemoryChip) Execute(isa.Instruction, *vm.State) (vm.StepResult, error) {
	unreachableExecute(vm.MemoryChipName)
	// Unreachable
	return vm.StepResult{}, nil
}

// Finalize implementation for the TableChip interface.
func (p *MemoryChip) Finalize(ctx *vm.FinalizeContext) ([][]fr.Element, error) {
	sorted, err := memory.OfflineCheck(ctx.Memory, ctx.RangeBits, ctx.Recorder)
	//
	if err != nil {
		return nil, err
	}
	//
	rows := make([][]fr.Element, len(sorted))
	//
	for i, access := range sorted {
		rows[i] = []fr.Element{
			u64(uint64(access.Address.Space)), u64(access.Address.Offset),
			access.Value, u64(access.Timestamp), flag(access.Write),
			u64(access.Timestamp - access.PrevTimestamp), u64(1),
		}
	}
	//
	return rows, nil
}
