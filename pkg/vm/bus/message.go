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
package bus

import (
	"fmt"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
)

// Id identifies a logical interaction bus.  A bus is not a runtime
// communication channel: it names a multiset-equality argument which the
// proving backend enforces across all chips of a segment.  Chips which have no
// direct knowledge of each other interoperate exclusively by sending and
// receiving tuples on a shared bus.
type Id uint

const (
	// MEMORY_BUS carries one tuple per memory access, sent by the memory
	// controller and received by the offline memory checker.
	MEMORY_BUS Id = iota
	// RANGE_BUS carries range-check requests, received by the range chip.
	RANGE_BUS
	// EXECUTION_BUS chains program counter and clock values across segment
	// boundaries.
	EXECUTION_BUS
	// PROGRAM_BUS carries one tuple per instruction fetch, received by the
	// program chip with aggregated multiplicities.
	PROGRAM_BUS
)

func (p Id) String() string {
	switch p {
	case MEMORY_BUS:
		return "memory"
	case RANGE_BUS:
		return "range"
	case EXECUTION_BUS:
		return "execution"
	case PROGRAM_BUS:
		return "program"
	}
	//
	return fmt.Sprintf("bus#%d", uint(p))
}

// Direction distinguishes the two sides of a bus interaction.
type Direction bool

const (
	// SEND contributes positively to the bus balance.
	SEND Direction = true
	// RECEIVE contributes negatively to the bus balance.
	RECEIVE Direction = false
)

func (p Direction) String() string {
	if p == SEND {
		return "send"
	}
	//
	return "receive"
}

// Interaction statically declares that a chip interacts on a given bus in a
// given direction.  The set of declared interactions, across all configured
// chips, determines the shape of the global bus-balance argument handed to the
// proving backend.
type Interaction struct {
	Bus       Id
	Direction Direction
}

// Message records one interaction: a tuple of field elements on a given bus,
// in a given direction, counted with a given multiplicity.  The engine's sole
// responsibility is to emit a complete and correctly multiplicitied set of
// messages; balance itself is enforced at proof time.
type Message struct {
	Bus       Id
	Direction Direction
	Tuple     []fr.Element
	// Multiplicity with which this tuple is counted.  Zero-multiplicity
	// messages are legal (e.g. from padding rows) and contribute nothing.
	Multiplicity uint
}

// Key returns a canonical byte string identifying this message's bus and
// tuple (but not its direction or multiplicity), suitable for use as a
// multiset key.
func (p Message) Key() string {
	var builder strings.Builder
	//
	builder.WriteByte(byte(p.Bus))
	//
	for _, v := range p.Tuple {
		bytes := v.Bytes()
		builder.Write(bytes[:])
	}
	//
	return builder.String()
}

func (p Message) String() string {
	var builder strings.Builder
	//
	builder.WriteString(fmt.Sprintf("%s(%s, [", p.Direction, p.Bus))
	//
	for i, v := range p.Tuple {
		if i != 0 {
			builder.WriteString(", ")
		}
		//
		builder.WriteString(v.String())
	}
	//
	builder.WriteString(fmt.Sprintf("], x%d)", p.Multiplicity))
	//
	return builder.String()
}
