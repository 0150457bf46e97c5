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
package isa

import (
	"fmt"
)

// Opcode identifies a single operation within the instruction set.  The
// enumeration is closed from the engine's perspective, but deliberately leaves
// space for extension chips to claim further opcodes above FirstExtensionOpcode.
type Opcode uint16

const (
	// NOP does nothing except advance the program counter.
	NOP Opcode = iota
	// ADD computes field addition of two registers.
	ADD
	// SUB computes field subtraction of two registers.
	SUB
	// MUL computes field multiplication of two registers.
	MUL
	// DIV computes field division of two registers.  Division by zero is an
	// arithmetic fault.
	DIV
	// ADDI adds an immediate to a register.
	ADDI
	// LOADW loads one word from the heap into a register.
	LOADW
	// STOREW stores one register word into the heap.
	STOREW
	// JAL writes the return address into a register and jumps to an absolute
	// target.
	JAL
	// BEQ branches to an absolute target if two registers are equal.
	BEQ
	// BNE branches to an absolute target if two registers differ.
	BNE
	// READ loads one word from the input space into a register.
	READ
	// WRITE stores one register word into the output space.
	WRITE
	// TERMINATE halts the machine with a given exit code.  This is the only
	// terminal opcode.
	TERMINATE
)

// FirstExtensionOpcode is the lowest opcode available to extension chips.
// Opcodes below this are reserved for the core instruction set.
const FirstExtensionOpcode Opcode = 0x100

// mnemonics maps core opcodes to their textual form.
var mnemonics = map[Opcode]string{
	NOP: "nop", ADD: "add", SUB: "sub", MUL: "mul", DIV: "div",
	ADDI: "addi", LOADW: "loadw", STOREW: "storew", JAL: "jal",
	BEQ: "beq", BNE: "bne", READ: "read", WRITE: "write",
	TERMINATE: "terminate",
}

// IsCore determines whether this opcode belongs to the core instruction set.
func (p Opcode) IsCore() bool {
	_, ok := mnemonics[p]
	return ok
}

func (p Opcode) String() string {
	if s, ok := mnemonics[p]; ok {
		return s
	}
	//
	return fmt.Sprintf("ext#%x", uint16(p))
}

// Instruction is the fixed-width unit of execution: an opcode together with
// three operand fields (A, B, C).  The interpretation of each operand depends
// on the opcode (register index, immediate value or absolute address), but the
// shape is uniform so that instructions can be encoded, decoded and hashed
// without knowing which chip will eventually claim them.  Instructions are
// immutable once fetched.
type Instruction struct {
	Opcode Opcode
	// Operands A, B, C.  For register-register operations A is the
	// destination and B/C the sources; for branches A/B are sources and C the
	// absolute target; for memory operations C is the address offset.
	A, B, C uint32
}

// NewInstruction constructs an instruction from its raw parts.
func NewInstruction(opcode Opcode, a, b, c uint32) Instruction {
	return Instruction{Opcode: opcode, A: a, B: b, C: c}
}

func (p Instruction) String() string {
	return fmt.Sprintf("%s %d, %d, %d", p.Opcode, p.A, p.B, p.C)
}
