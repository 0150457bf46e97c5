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

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProgram() *Program {
	var value fr.Element
	//
	value.SetUint64(7)
	//
	return NewProgram(
		[]Instruction{
			NewInstruction(ADDI, 1, 0, 5),
			NewInstruction(WRITE, 1, 0, 0),
			NewInstruction(TERMINATE, 0, 0, 0),
		},
		DataSegment{Space: 1, Offset: 16, Values: []fr.Element{value}},
	)
}

func TestProgramFileRoundTrip(t *testing.T) {
	program := testProgram()
	//
	bytes, err := ToBytes(program)
	require.NoError(t, err)
	//
	decoded, err := FromBytes(bytes)
	require.NoError(t, err)
	//
	assert.Equal(t, program.Instructions(), decoded.Instructions())
	assert.Equal(t, program.Data(), decoded.Data())
	assert.Equal(t, program.Digest(), decoded.Digest())
}

func TestProgramFileRejectsBadIdentifier(t *testing.T) {
	bytes, err := ToBytes(testProgram())
	require.NoError(t, err)
	//
	bytes[0] = 'x'
	//
	_, err = FromBytes(bytes)
	assert.Error(t, err)
}

func TestProgramDigestBindsInstructions(t *testing.T) {
	p1 := NewProgram([]Instruction{NewInstruction(TERMINATE, 0, 0, 0)})
	p2 := NewProgram([]Instruction{NewInstruction(TERMINATE, 1, 0, 0)})
	//
	assert.NotEqual(t, p1.Digest(), p2.Digest())
	// Digests are stable across recomputation
	assert.Equal(t, p1.Digest(), p1.Digest())
}

func TestProgramBounds(t *testing.T) {
	program := testProgram()
	//
	assert.True(t, program.Bounds(0))
	assert.True(t, program.Bounds(2))
	assert.False(t, program.Bounds(3))
}
