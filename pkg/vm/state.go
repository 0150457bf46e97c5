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
	"github.com/proofwright/go-zvm/pkg/vm/memory"
)

// State is the mutable machine state of the currently executing segment: the
// program counter, the register file (a view over the register address space)
// and the memory controller.  It is owned exclusively by the segment's
// execution thread and passed into each chip invocation by explicit reference;
// no chip may retain it beyond its own Execute call.
type State struct {
	pc      uint64
	program *isa.Program
	memory  *memory.Controller
	// Number of registers in the register file.
	registers uint32
}

// NewState constructs machine state for a fresh segment.
func NewState(pc uint64, program *isa.Program, mem *memory.Controller, registers uint32) *State {
	return &State{pc: pc, program: program, memory: mem, registers: registers}
}

// Pc returns the current program counter.
func (p *State) Pc() uint64 {
	return p.pc
}

// Program returns the (immutable) program image being executed.
func (p *State) Program() *isa.Program {
	return p.program
}

// Memory returns the memory controller of this segment.
func (p *State) Memory() *memory.Controller {
	return p.memory
}

// Registers returns the number of registers in the register file.
func (p *State) Registers() uint32 {
	return p.registers
}

// ReadRegister reads the value of a given register, logging a memory access
// like any other read (registers are cells of the register address space).
func (p *State) ReadRegister(index uint32) (fr.Element, uint64, error) {
	return p.memory.Read(memory.Address{Space: memory.REGISTER_SPACE, Offset: uint64(index)})
}

// WriteRegister writes a value into a given register.
func (p *State) WriteRegister(index uint32, value fr.Element) error {
	return p.memory.Write(memory.Address{Space: memory.REGISTER_SPACE, Offset: uint64(index)}, value)
}

// RegisterFile snapshots the current value of every register without logging
// accesses, for freezing into a continuation.
func (p *State) RegisterFile() []fr.Element {
	values := make([]fr.Element, p.registers)
	//
	for i := uint32(0); i < p.registers; i++ {
		values[i] = p.memory.Peek(memory.Address{Space: memory.REGISTER_SPACE, Offset: uint64(i)})
	}
	//
	return values
}

// goto is applied by the executor between steps; chips communicate control
// flow through StepResult rather than mutating the pc directly.
func (p *State) gotoPc(pc uint64) {
	p.pc = pc
}
