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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []Instruction{
		NewInstruction(NOP, 0, 0, 0),
		NewInstruction(ADD, 1, 2, 3),
		NewInstruction(ADDI, 31, 0, 0xffffffff),
		NewInstruction(TERMINATE, 42, 0, 0),
		NewInstruction(FirstExtensionOpcode, 9, 8, 7),
	}
	//
	for _, insn := range tests {
		t.Run(insn.Opcode.String(), func(t *testing.T) {
			bytes := Encode(insn)
			require.Len(t, bytes, InstructionBytes)
			//
			decoded, err := Decode(bytes)
			require.NoError(t, err)
			assert.Equal(t, insn, decoded)
		})
	}
}

func TestDecodeRejectsShortInput(t *testing.T) {
	_, err := Decode(make([]byte, InstructionBytes-1))
	assert.Error(t, err)
}

func TestDecodeRejectsReservedBytes(t *testing.T) {
	bytes := Encode(NewInstruction(ADD, 1, 2, 3))
	bytes[2] = 1
	//
	_, err := Decode(bytes)
	assert.Error(t, err)
}

func TestDecodeRejectsUnknownCoreOpcode(t *testing.T) {
	bytes := Encode(NewInstruction(ADD, 1, 2, 3))
	// Highest value below the extension range
	bytes[0] = 0xff
	bytes[1] = 0x00
	//
	_, err := Decode(bytes)
	assert.Error(t, err)
}

func TestExtensionOpcodesDecode(t *testing.T) {
	insn := NewInstruction(FirstExtensionOpcode+5, 0, 0, 0)
	//
	decoded, err := Decode(Encode(insn))
	require.NoError(t, err)
	assert.Equal(t, insn.Opcode, decoded.Opcode)
}
