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
	"github.com/proofwright/go-zvm/pkg/isa"
	"github.com/proofwright/go-zvm/pkg/vm/bus"
)

// Registry holds the configured chip set, resolved once at machine
// construction into a flat opcode dispatch table.  Chip order is significant:
// it fixes both the table-finalisation order and the AIR ordering handed to
// the proving backend, hence must be deterministic for a given configuration.
type Registry struct {
	chips    []Chip
	dispatch map[isa.Opcode]Chip
}

// NewRegistry builds a registry from the given chips, applying every
// consistency check which can be applied before execution: duplicate chip
// names, opcodes claimed by more than one chip, zero or inconsistent trace
// widths, and buses with only one side declared.  Any violation is a config
// fault; no execution is ever attempted against an inconsistent chip set.
func NewRegistry(chips ...Chip) (*Registry, error) {
	var (
		dispatch = make(map[isa.Opcode]Chip)
		names    = make(map[string]bool)
		senders  = make(map[bus.Id]string)
		readers  = make(map[bus.Id]string)
	)
	//
	for _, chip := range chips {
		// Check name uniqueness
		if names[chip.Name()] {
			return nil, ConfigFault("two chips named %q", chip.Name())
		}
		//
		names[chip.Name()] = true
		// Check trace shape
		if chip.TraceWidth() == 0 {
			return nil, ConfigFault("chip %s declares a zero trace width", chip.Name())
		}
		//
		if row := chip.PaddingRow(); row != nil && uint(len(row)) != chip.TraceWidth() {
			return nil, ConfigFault("chip %s: padding row width %d does not match trace width %d",
				chip.Name(), len(row), chip.TraceWidth())
		}
		// Check opcode claims.  An opcode claimed twice is rejected rather
		// than tie-broken.
		for _, opcode := range chip.Opcodes() {
			if prior, ok := dispatch[opcode]; ok {
				return nil, ConfigFault("opcode %s claimed by both %s and %s", opcode, prior.Name(), chip.Name())
			}
			//
			dispatch[opcode] = chip
		}
		// Record bus usage
		for _, interaction := range chip.Interactions() {
			if interaction.Direction == bus.SEND {
				senders[interaction.Bus] = chip.Name()
			} else {
				readers[interaction.Bus] = chip.Name()
			}
		}
	}
	// The memory bus sender is the controller itself, on behalf of whichever
	// chip is executing; likewise the fetch loop sends on the program bus.
	senders[bus.MEMORY_BUS] = "memory controller"
	senders[bus.PROGRAM_BUS] = "fetch loop"
	// Every bus must have both sides, otherwise its balance argument is
	// unsatisfiable for any non-empty emission.
	for id, name := range senders {
		if _, ok := readers[id]; !ok {
			return nil, ConfigFault("bus %s has sender %s but no receiver", id, name)
		}
	}
	//
	for id, name := range readers {
		if _, ok := senders[id]; !ok {
			return nil, ConfigFault("bus %s has receiver %s but no sender", id, name)
		}
	}
	// Done
	return &Registry{chips: chips, dispatch: dispatch}, nil
}

// Chips returns the registered chips in registration order.
func (p *Registry) Chips() []Chip {
	return p.chips
}

// Lookup resolves the chip registered for a given opcode.
func (p *Registry) Lookup(opcode isa.Opcode) (Chip, bool) {
	chip, ok := p.dispatch[opcode]
	return chip, ok
}
