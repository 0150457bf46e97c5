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
	"encoding/binary"
	"fmt"
)

// InstructionBytes is the width of one encoded instruction: a 16bit opcode,
// two bytes of padding (reserved, must be zero) and three 32bit operands, all
// little endian.
const InstructionBytes = 16

// Encode an instruction into its fixed-width binary form.  Encoding never
// fails and Decode(Encode(i)) == i for every instruction.
func Encode(insn Instruction) []byte {
	var bytes [InstructionBytes]byte
	//
	binary.LittleEndian.PutUint16(bytes[0:], uint16(insn.Opcode))
	binary.LittleEndian.PutUint32(bytes[4:], insn.A)
	binary.LittleEndian.PutUint32(bytes[8:], insn.B)
	binary.LittleEndian.PutUint32(bytes[12:], insn.C)
	//
	return bytes[:]
}

// Decode an instruction from its fixed-width binary form.  Decoding fails if
// the slice has the wrong width, the reserved bytes are non-zero, or the
// opcode is not part of the core instruction set (extension opcodes are
// accepted, since whether a chip claims them is a dispatch question rather
// than a decoding question, but opcodes inside the reserved core range which
// name no operation are malformed).
func Decode(bytes []byte) (Instruction, error) {
	var insn Instruction
	// Sanity check width
	if len(bytes) != InstructionBytes {
		return insn, fmt.Errorf("malformed instruction: %d bytes (expected %d)", len(bytes), InstructionBytes)
	}
	// Check reserved padding bytes
	if bytes[2] != 0 || bytes[3] != 0 {
		return insn, fmt.Errorf("malformed instruction: non-zero reserved bytes")
	}
	//
	opcode := Opcode(binary.LittleEndian.Uint16(bytes[0:]))
	// Reject unnamed opcodes within the core range
	if opcode < FirstExtensionOpcode && !opcode.IsCore() {
		return insn, fmt.Errorf("invalid opcode 0x%x", uint16(opcode))
	}
	//
	insn.Opcode = opcode
	insn.A = binary.LittleEndian.Uint32(bytes[4:])
	insn.B = binary.LittleEndian.Uint32(bytes[8:])
	insn.C = binary.LittleEndian.Uint32(bytes[12:])
	//
	return insn, nil
}
