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

// ConnectorChipName identifies the segment connector in configurations and
// key sets.
const ConnectorChipName = "connector"

// ConnectorChip stitches consecutive segments of one execution together.  Per
// segment it receives the entry point (pc, clock) and sends the exit point,
// so that chaining segments cancels every intermediate boundary and only the
// overall entry and final exit remain visible.
type ConnectorChip struct{}

// NewConnectorChip constructs the segment connector.
func NewConnectorChip() *ConnectorChip {
	return &ConnectorChip{}
}

// Name implementation for the Chip interface.
func (p *ConnectorChip) Name() string {
	return ConnectorChipName
}

// Opcodes implementation for the Chip interface.
func (p *ConnectorChip) Opcodes() []isa.Opcode {
	return nil
}

// TraceWidth implementation for the Chip interface.  Columns are (entry pc,
// entry clock, exit pc, exit clock).
func (p *ConnectorChip) TraceWidth() uint {
	return 4
}

// Interactions implementation for the Chip interface.
func (p *ConnectorChip) Interactions() []bus.Interaction {
	return []bus.Interaction{
		{Bus: bus.EXECUTION_BUS, Direction: bus.RECEIVE},
		{Bus: bus.EXECUTION_BUS, Direction: bus.SEND},
	}
}

// PaddingRow implementation for the Chip interface.  The connector's single
// row is replayed, its bus contribution having been recorded exactly once.
func (p *ConnectorChip) PaddingRow() []fr.Element {
	return nil
}

// Execute implementation for the Chip interface.
func (p *ConnectorChip) Execute(isa.Instruction, *vm.State) (vm.StepResult, error) {
	unreachableExecute(ConnectorChipName)
	// Unreachable
	return vm.StepResult{}, nil
}

// Finalize implementation for the TableChip interface.
func (p *ConnectorChip) Finalize(ctx *vm.FinalizeContext) ([][]fr.Element, error) {
	ctx.Recorder.Receive(bus.EXECUTION_BUS, u64(ctx.EntryPc), u64(ctx.EntryClock))
	ctx.Recorder.Send(bus.EXECUTION_BUS, u64(ctx.ExitPc), u64(ctx.ExitClock))
	//
	row := []fr.Element{
		u64(ctx.EntryPc), u64(ctx.EntryClock), u64(ctx.ExitPc), u64(ctx.ExitClock),
	}
	//
	return [][]fr.Element{row}, nil
}
