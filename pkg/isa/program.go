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

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	"golang.org/x/crypto/blake2b"
)

// DataSegment describes a block of statically initialised memory within the
// program image.  Values are laid out contiguously from the given offset
// within the given address space.
type DataSegment struct {
	// Target address space identifier.
	Space uint
	// Starting offset within the space.
	Offset uint64
	// Initial word values.
	Values []fr.Element
}

// Program is an immutable program image: an ordered sequence of instructions
// together with zero or more static data segments.  Instructions are fetched
// by index (the program counter counts instructions, not bytes).
type Program struct {
	instructions []Instruction
	data         []DataSegment
}

// NewProgram constructs a program image from the given instructions and data
// segments.  Both slices are copied, hence the image cannot be mutated through
// the originals afterwards.
func NewProgram(instructions []Instruction, data ...DataSegment) *Program {
	var p Program
	//
	p.instructions = make([]Instruction, len(instructions))
	copy(p.instructions, instructions)
	//
	p.data = make([]DataSegment, len(data))
	copy(p.data, data)
	//
	return &p
}

// Size returns the number of instructions in this program.
func (p *Program) Size() uint64 {
	return uint64(len(p.instructions))
}

// Instruction returns the instruction at a given program counter position.
// The given pc must be within bounds.
func (p *Program) Instruction(pc uint64) Instruction {
	return p.instructions[pc]
}

// Bounds checks whether a given program counter position is within this
// program's code.
func (p *Program) Bounds(pc uint64) bool {
	return pc < uint64(len(p.instructions))
}

// Instructions returns the full instruction sequence.
func (p *Program) Instructions() []Instruction {
	return p.instructions
}

// Data returns the static data segments of this program.
func (p *Program) Data() []DataSegment {
	return p.data
}

// Digest computes the blake2b-256 digest of this program's canonical binary
// encoding, used for program attestation.  Two programs have the same digest
// exactly when their instructions and data segments are identical.
func (p *Program) Digest() [32]byte {
	return blake2b.Sum256(p.encode())
}

// encode the program image into its canonical binary form.  The layout is the
// instruction count, each encoded instruction, the segment count and then each
// segment (space, offset, word count, words as 32 big-endian bytes each).
func (p *Program) encode() []byte {
	var (
		bytes  []byte
		u64buf [8]byte
	)
	//
	binary.LittleEndian.PutUint64(u64buf[:], uint64(len(p.instructions)))
	bytes = append(bytes, u64buf[:]...)
	//
	for _, insn := range p.instructions {
		bytes = append(bytes, Encode(insn)...)
	}
	//
	binary.LittleEndian.PutUint64(u64buf[:], uint64(len(p.data)))
	bytes = append(bytes, u64buf[:]...)
	//
	for _, seg := range p.data {
		binary.LittleEndian.PutUint64(u64buf[:], uint64(seg.Space))
		bytes = append(bytes, u64buf[:]...)
		binary.LittleEndian.PutUint64(u64buf[:], seg.Offset)
		bytes = append(bytes, u64buf[:]...)
		binary.LittleEndian.PutUint64(u64buf[:], uint64(len(seg.Values)))
		bytes = append(bytes, u64buf[:]...)
		//
		for _, v := range seg.Values {
			word := v.Bytes()
			bytes = append(bytes, word[:]...)
		}
	}
	//
	return bytes
}

// decodeProgram reconstructs a program image from its canonical binary form.
func decodeProgram(bytes []byte) (*Program, error) {
	var (
		p      Program
		offset = uint64(0)
	)
	//
	n, offset, err := readUint64(bytes, offset)
	if err != nil {
		return nil, err
	}
	//
	for i := uint64(0); i < n; i++ {
		if offset+InstructionBytes > uint64(len(bytes)) {
			return nil, fmt.Errorf("truncated program (instruction %d)", i)
		}
		//
		insn, err := Decode(bytes[offset : offset+InstructionBytes])
		if err != nil {
			return nil, err
		}
		//
		p.instructions = append(p.instructions, insn)
		offset += InstructionBytes
	}
	// Data segments
	m, offset, err := readUint64(bytes, offset)
	if err != nil {
		return nil, err
	}
	//
	for i := uint64(0); i < m; i++ {
		var seg DataSegment
		//
		space, o1, err := readUint64(bytes, offset)
		if err != nil {
			return nil, err
		}
		//
		start, o2, err := readUint64(bytes, o1)
		if err != nil {
			return nil, err
		}
		//
		count, o3, err := readUint64(bytes, o2)
		if err != nil {
			return nil, err
		}
		//
		offset = o3
		seg.Space = uint(space)
		seg.Offset = start
		//
		for j := uint64(0); j < count; j++ {
			var word fr.Element
			//
			if offset+fr.Bytes > uint64(len(bytes)) {
				return nil, fmt.Errorf("truncated data segment %d", i)
			}
			//
			if err := word.SetBytesCanonical(bytes[offset : offset+fr.Bytes]); err != nil {
				return nil, fmt.Errorf("data segment %d: %w", i, err)
			}
			//
			seg.Values = append(seg.Values, word)
			offset += fr.Bytes
		}
		//
		p.data = append(p.data, seg)
	}
	// Check for trailing garbage
	if offset != uint64(len(bytes)) {
		return nil, fmt.Errorf("%d trailing bytes in program image", uint64(len(bytes))-offset)
	}
	//
	return &p, nil
}

func readUint64(bytes []byte, offset uint64) (uint64, uint64, error) {
	if offset+8 > uint64(len(bytes)) {
		return 0, 0, fmt.Errorf("truncated program image")
	}
	//
	return binary.LittleEndian.Uint64(bytes[offset:]), offset + 8, nil
}
