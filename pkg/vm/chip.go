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
package vm

import (
	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"

	"github.com/proofwright/go-zvm/pkg/isa"
	"github.com/proofwright/go-zvm/pkg/vm/bus"
	"github.com/proofwright/go-zvm/pkg/vm/memory"
)

// StepResult is what a chip reports back from executing one instruction: the
// trace row it produced, where control transfers next, and whether the machine
// halts.
type StepResult struct {
	// Program counter after this step.  Ignored when Halt is set.
	NextPc uint64
	// Whether a terminal opcode was executed.
	Halt bool
	// Exit code, meaningful only when Halt is set.
	ExitCode uint64
	// The trace row this invocation produced.  Must have the chip's declared
	// trace width.
	Row []fr.Element
}

// Chip is the capability interface around which the whole engine is built: a
// pluggable unit owning both the execution semantics and the arithmetization
// of one or more opcodes.  Chips are unaware of each other; every cross-chip
// fact flows through the interaction bus.  A chip claiming no opcodes is a
// table chip (see TableChip), whose rows are derived after execution rather
// than per instruction.
type Chip interface {
	// Name returns a unique identifier for this chip, used in diagnostics and
	// for deriving the proving key layout.
	Name() string
	// Opcodes returns the opcodes this chip claims.  Empty for table chips.
	Opcodes() []isa.Opcode
	// TraceWidth returns the fixed width of this chip's trace rows, known at
	// configuration time.
	TraceWidth() uint
	// Interactions statically declares the buses this chip sends and
	// receives on, used to build the global bus-balance argument.
	Interactions() []bus.Interaction
	// PaddingRow returns the constraint-satisfying no-op row used to pad this
	// chip's matrix, or nil if the matrix pads by replaying its last row.
	// Padding rows must carry zero multiplicities so they contribute nothing
	// to any bus.
	PaddingRow() []fr.Element
	// Execute one instruction against the given machine state, producing one
	// trace row.  The chip may read and write registers and memory (through
	// the state's controller, which emits the corresponding bus messages) and
	// determines the next program counter.  Errors are fatal for the run.
	Execute(insn isa.Instruction, state *State) (StepResult, error)
}

// FinalizeContext provides table chips with the closed segment's execution
// artefacts, from which they derive their rows and emit their side of the bus
// balance.
type FinalizeContext struct {
	Program *isa.Program
	Memory  *memory.Controller
	// Recorder of the closing segment.  Table chips append their receives
	// (and any derived sends) here.
	Recorder *bus.Recorder
	// Bit width of the range-check table.
	RangeBits uint
	// Program counter at segment entry and exit.
	EntryPc, ExitPc uint64
	// Logical clock at segment entry and exit.
	EntryClock, ExitClock uint64
	// Number of times each pc position was fetched during the segment.
	FetchCounts map[uint64]uint
}

// TableChip is a chip whose trace is a table derived at segment close (the
// offline memory checker, the range table, the program table) rather than one
// row per dispatched instruction.  Table chips are finalised in registration
// order, hence a chip whose receives depend on another table chip's sends must
// be registered after it.
type TableChip interface {
	Chip
	// Finalize derives this chip's rows for the closing segment.
	Finalize(ctx *FinalizeContext) ([][]fr.Element, error)
}
