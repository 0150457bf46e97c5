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
	"errors"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	log "github.com/sirupsen/logrus"

	"github.com/proofwright/go-zvm/pkg/isa"
	"github.com/proofwright/go-zvm/pkg/trace"
	"github.com/proofwright/go-zvm/pkg/vm/bus"
	"github.com/proofwright/go-zvm/pkg/vm/memory"
)

// MaxAccessesPerStep bounds the number of memory accesses any single
// instruction can perform (a load walks one register, one heap cell and one
// register write).  The segment-closure check uses it as a safety margin so
// that the memory chip's matrix can never overshoot its height bound
// mid-instruction.
const MaxAccessesPerStep = 4

// runSegment drives the fetch-dispatch-execute loop from the given entry
// continuation until the program halts, faults, or some chip's trace matrix
// reaches its height bound.  Execution is strictly sequential and
// deterministic; nothing here blocks or suspends.
func (p *VM) runSegment(index uint, entry Continuation, image map[memory.Address]fr.Element,
	program *isa.Program) (*Segment, map[memory.Address]fr.Element, error) {
	//
	var (
		recorder   = bus.NewRecorder()
		controller = memory.NewController(p.spaces, image, entry.Clock, recorder)
		state      = NewState(entry.Pc, program, controller, p.registers)
		//
		matrices    = make([]*trace.Matrix, len(p.registry.Chips()))
		matrixOf    = make(map[string]*trace.Matrix)
		fetchCounts = make(map[uint64]uint)
		//
		steps    uint
		halted   bool
		exitCode uint64
	)
	//
	for i, chip := range p.registry.Chips() {
		matrices[i] = trace.NewMatrix(chip.Name(), chip.TraceWidth(), chip.PaddingRow())
		matrixOf[chip.Name()] = matrices[i]
	}
	//
	for {
		var pc = state.Pc()
		// Fetching
		if !program.Bounds(pc) {
			return nil, nil, &Fault{Kind: ACCESS_FAULT, Pc: pc,
				Err: errors.New("program counter outside program image")}
		}
		//
		insn := program.Instruction(pc)
		// Dispatching
		chip, ok := p.registry.Lookup(insn.Opcode)
		if !ok {
			return nil, nil, &Fault{Kind: DISPATCH_FAULT, Pc: pc, Opcode: insn.Opcode,
				Err: errors.New("no chip claims this opcode")}
		}
		// Check for segment closure *before* executing, so that the
		// triggering instruction replays as the first step of the next
		// segment.
		if p.segmentFull(matrixOf[chip.Name()], controller) {
			if steps == 0 {
				return nil, nil, ConfigFault("trace height bound too small to execute a single instruction")
			}
			//
			break
		}
		// Record the fetch
		recorder.Send(bus.PROGRAM_BUS, FetchTuple(pc, insn)...)
		fetchCounts[pc]++
		// Executing
		result, err := chip.Execute(insn, state)
		if err != nil {
			return nil, nil, chipFault(err, pc, insn.Opcode, chip.Name())
		}
		//
		matrixOf[chip.Name()].Append(result.Row)
		steps++
		//
		if result.Halt {
			halted = true
			exitCode = result.ExitCode
			//
			break
		}
		//
		state.gotoPc(result.NextPc)
	}
	// Finalise table chips in registration order
	ctx := &FinalizeContext{
		Program:     program,
		Memory:      controller,
		Recorder:    recorder,
		RangeBits:   p.rangeBits,
		EntryPc:     entry.Pc,
		ExitPc:      state.Pc(),
		EntryClock:  entry.Clock,
		ExitClock:   controller.Clock(),
		FetchCounts: fetchCounts,
	}
	//
	for i, chip := range p.registry.Chips() {
		table, ok := chip.(TableChip)
		if !ok {
			continue
		}
		//
		rows, err := table.Finalize(ctx)
		if err != nil {
			return nil, nil, err
		}
		//
		for _, row := range rows {
			matrices[i].Append(row)
		}
	}
	// Freeze the exit state
	var (
		exitImage = controller.Image()
		exit      = NewContinuation(state.Pc(), controller.Clock(), state.RegisterFile(), exitImage)
	)
	//
	segment := &Segment{
		Index:    index,
		Entry:    entry,
		Exit:     exit,
		Matrices: matrices,
		Messages: recorder.Messages(),
		Halted:   halted,
		ExitCode: exitCode,
	}
	//
	log.Debugf("segment %d: %d steps, %d memory accesses, %d messages (pc %d -> %d)",
		index, steps, len(controller.Accesses()), recorder.Count(), entry.Pc, exit.Pc)
	//
	return segment, exitImage, nil
}

// segmentFull determines whether executing one more instruction could push any
// dynamically growing matrix past its height bound.  Table chips with static
// heights (the range and program tables) are exempt: their size is fixed by
// the configuration and program respectively, not by execution length.
func (p *VM) segmentFull(dispatched *trace.Matrix, controller *memory.Controller) bool {
	// Check the dispatched chip's own matrix
	if bound := p.bounds[dispatched.Name()]; bound > 0 && dispatched.Height()+1 > bound {
		return true
	}
	// Check the offline memory checker's matrix, which grows by one row per
	// access rather than per instruction.
	if bound := p.bounds[MemoryChipName]; bound > 0 {
		if uint(len(controller.Accesses()))+MaxAccessesPerStep > bound {
			return true
		}
	}
	//
	return false
}

// FetchTuple encodes an instruction fetch as the tuple carried on the program
// bus: (pc, opcode, a, b, c).  The program chip receives exactly these tuples
// with aggregated multiplicities.
func FetchTuple(pc uint64, insn isa.Instruction) []fr.Element {
	var tuple [5]fr.Element
	//
	tuple[0].SetUint64(pc)
	tuple[1].SetUint64(uint64(insn.Opcode))
	tuple[2].SetUint64(uint64(insn.A))
	tuple[3].SetUint64(uint64(insn.B))
	tuple[4].SetUint64(uint64(insn.C))
	//
	return tuple[:]
}

// chipFault classifies an error raised during chip execution into the fault
// taxonomy, attaching execution context.
func chipFault(err error, pc uint64, opcode isa.Opcode, chip string) *Fault {
	var (
		fault     *Fault
		accessErr *memory.AccessError
	)
	// A chip may raise a fully formed fault itself
	if errors.As(err, &fault) {
		if fault.Chip == "" {
			fault.Pc, fault.Opcode, fault.Chip = pc, opcode, chip
		}
		//
		return fault
	}
	// Memory violations are access faults
	if errors.As(err, &accessErr) {
		return &Fault{Kind: ACCESS_FAULT, Pc: pc, Opcode: opcode, Chip: chip, Err: err}
	}
	// Everything else a chip raises is an operand/arithmetic problem
	return &Fault{Kind: ARITHMETIC_FAULT, Pc: pc, Opcode: opcode, Chip: chip, Err: err}
}
