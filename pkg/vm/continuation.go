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
	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr/poseidon2"

	"github.com/proofwright/go-zvm/pkg/vm/memory"
)

// Continuation freezes the machine state which must persist across a segment
// boundary: the program counter, the logical clock, the register file and the
// memory image digest, bound together by a poseidon2 commitment.  The next
// segment consumes it as its claimed starting state; the external aggregation
// process later checks agreement between adjacent segment proofs.
type Continuation struct {
	Pc    uint64
	Clock uint64
	// Register file snapshot, in register order.
	Registers []fr.Element
	// Canonical digest of the memory image (including the register space).
	ImageDigest [32]byte
	// Poseidon2 commitment binding all of the above.
	Commitment [32]byte
}

// NewContinuation freezes the given state into a continuation.
func NewContinuation(pc, clock uint64, registers []fr.Element, image map[memory.Address]fr.Element) Continuation {
	c := Continuation{
		Pc:          pc,
		Clock:       clock,
		Registers:   registers,
		ImageDigest: memory.ImageDigest(image),
	}
	//
	c.Commitment = c.commit()
	//
	return c
}

// commit computes the poseidon2 commitment over the field-encoded
// continuation tuple: pc, clock, every register, and the image digest split
// into two 128bit limbs (each canonical in the field).
func (p *Continuation) commit() [32]byte {
	var (
		hasher  = poseidon2.NewMerkleDamgardHasher()
		element fr.Element
	)
	//
	write := func(e fr.Element) {
		bytes := e.Bytes()
		hasher.Write(bytes[:])
	}
	//
	write(*element.SetUint64(p.Pc))
	write(*element.SetUint64(p.Clock))
	//
	for _, reg := range p.Registers {
		write(reg)
	}
	//
	write(*element.SetBytes(p.ImageDigest[:16]))
	write(*element.SetBytes(p.ImageDigest[16:]))
	//
	var commitment [32]byte
	copy(commitment[:], hasher.Sum(nil))
	//
	return commitment
}
