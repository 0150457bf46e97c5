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
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proofwright/go-zvm/pkg/isa"
	"github.com/proofwright/go-zvm/pkg/vm/bus"
)

// fakeChip is a minimal chip for registry-level tests.
type fakeChip struct {
	name         string
	opcodes      []isa.Opcode
	width        uint
	padding      []fr.Element
	interactions []bus.Interaction
}

func (p *fakeChip) Name() string                    { return p.name }
func (p *fakeChip) Opcodes() []isa.Opcode           { return p.opcodes }
func (p *fakeChip) TraceWidth() uint                { return p.width }
func (p *fakeChip) Interactions() []bus.Interaction { return p.interactions }
func (p *fakeChip) PaddingRow() []fr.Element        { return p.padding }

func (p *fakeChip) Execute(insn isa.Instruction, state *State) (StepResult, error) {
	return StepResult{}, nil
}

// receivers covers the bus endpoints which the engine itself sends on, so
// that registry construction succeeds without the full chip set.
func receivers() Chip {
	return &fakeChip{
		name: "tables", width: 1,
		interactions: []bus.Interaction{
			{Bus: bus.MEMORY_BUS, Direction: bus.RECEIVE},
			{Bus: bus.PROGRAM_BUS, Direction: bus.RECEIVE},
		},
	}
}

func TestRegistryDispatch(t *testing.T) {
	chip := &fakeChip{name: "a", opcodes: []isa.Opcode{isa.ADD}, width: 1}
	//
	registry, err := NewRegistry(chip, receivers())
	require.NoError(t, err)
	//
	resolved, ok := registry.Lookup(isa.ADD)
	require.True(t, ok)
	assert.Equal(t, "a", resolved.Name())
	//
	_, ok = registry.Lookup(isa.MUL)
	assert.False(t, ok)
}

func TestRegistryRejectsDoubleClaimedOpcode(t *testing.T) {
	var (
		c1 = &fakeChip{name: "a", opcodes: []isa.Opcode{isa.ADD}, width: 1}
		c2 = &fakeChip{name: "b", opcodes: []isa.Opcode{isa.ADD}, width: 1}
	)
	//
	_, err := NewRegistry(c1, c2)
	require.Error(t, err)
	//
	fault, ok := err.(*Fault)
	require.True(t, ok)
	assert.Equal(t, CONFIG_FAULT, fault.Kind)
}

func TestRegistryRejectsDuplicateNames(t *testing.T) {
	var (
		c1 = &fakeChip{name: "a", opcodes: []isa.Opcode{isa.ADD}, width: 1}
		c2 = &fakeChip{name: "a", opcodes: []isa.Opcode{isa.SUB}, width: 1}
	)
	//
	_, err := NewRegistry(c1, c2)
	assert.Error(t, err)
}

func TestRegistryRejectsZeroWidth(t *testing.T) {
	_, err := NewRegistry(&fakeChip{name: "a", width: 0})
	assert.Error(t, err)
}

func TestRegistryRejectsPaddingWidthMismatch(t *testing.T) {
	chip := &fakeChip{name: "a", width: 2, padding: make([]fr.Element, 3)}
	//
	_, err := NewRegistry(chip)
	assert.Error(t, err)
}

func TestRegistryRejectsDanglingBus(t *testing.T) {
	// A receiver on the range bus with nothing ever sending to it
	chip := &fakeChip{
		name: "a", width: 1,
		interactions: []bus.Interaction{{Bus: bus.RANGE_BUS, Direction: bus.RECEIVE}},
	}
	//
	_, err := NewRegistry(chip)
	assert.Error(t, err)
}

func TestRegistryRequiresMemoryBusReceiver(t *testing.T) {
	// The controller always sends on the memory bus, hence some chip must
	// receive it.
	_, err := NewRegistry(&fakeChip{name: "a", width: 1})
	assert.Error(t, err)
}
