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

// RangeChipName identifies the range table in configurations and key sets.
const RangeChipName = "range"

// RangeChip is the static range-check table holding every value from 0 to
// 2^bits - 1, one per row, with a multiplicity column counting how often each
// value was requested during the segment.  Its height is fixed by the bit
// width alone and exempt from the segment height bound.
type RangeChip struct {
	bits uint
}

// NewRangeChip constructs a range table over the given bit width.
func NewRangeChip(bits uint) *RangeChip {
	return &RangeChip{bits: bits}
}

// Name implementation for the Chip interface.
func (p *RangeChip) Name() string {
	return RangeChipName
}

// Opcodes implementation for the Chip interface.
func (p *RangeChip) Opcodes() []isa.Opcode {
	return nil
}

// TraceWidth implementation for the Chip interface.  Columns are (value,
// multiplicity).
func (p *RangeChip) TraceWidth() uint {
	return 2
}

// Interactions implementation for the Chip interface.
func (p *RangeChip) Interactions() []bus.Interaction {
	return []bus.Interaction{
		{Bus: bus.RANGE_BUS, Direction: bus.RECEIVE},
	}
}

// PaddingRow implementation for the Chip interface.
func (p *RangeChip) PaddingRow() []fr.Element {
	return make([]fr.Element, p.TraceWidth())
}

// Execute implementation for the Chip interface.
func (p *RangeChip) Execute(isa.Instruction, *vm.State) (vm.StepResult, error) {
	unreachableExecute(RangeChipName)
	// Unreachable
	return vm.StepResult{}, nil
}

// Finalize implementation for the TableChip interface.  The table aggregates
// all range requests sent during the segment, hence must be registered after
// every chip which sends them.
func (p *RangeChip) Finalize(ctx *vm.FinalizeContext) ([][]fr.Element, error) {
	counts := make([]uint, uint64(1)<<p.bits)
	// Aggregate requests
	for _, msg := range ctx.Recorder.Messages() {
		if msg.Bus != bus.RANGE_BUS || msg.Direction != bus.SEND {
			continue
		}
		//
		value := msg.Tuple[0]
		//
		if !value.IsUint64() || value.Uint64() >= uint64(len(counts)) {
			return nil, fmt.Errorf("range request %s exceeds %d bits", value.String(), p.bits)
		}
		//
		counts[value.Uint64()] += msg.Multiplicity
	}
	//
	rows := make([][]fr.Element, len(counts))
	//
	for value, count := range counts {
		rows[value] = []fr.Element{u64(uint64(value)), u64(uint64(count))}
		//
		if count > 0 {
			ctx.Recorder.ReceiveN(bus.RANGE_BUS, count, u64(uint64(value)))
		}
	}
	//
	return rows, nil
}
