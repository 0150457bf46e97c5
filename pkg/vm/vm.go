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
	"fmt"
	"sort"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"

	"github.com/proofwright/go-zvm/pkg/config"
	"github.com/proofwright/go-zvm/pkg/isa"
	"github.com/proofwright/go-zvm/pkg/util"
	"github.com/proofwright/go-zvm/pkg/vm/bus"
	"github.com/proofwright/go-zvm/pkg/vm/memory"
)

// MemoryChipName names the offline memory checker chip.  The executor treats
// its matrix specially when deciding segment closure, since it grows by one
// row per memory access rather than per instruction.
const MemoryChipName = "memory"

// VM is a constructed machine: a validated chip set over a fixed
// configuration.  Construction applies every configuration check, hence a VM
// which exists can execute.  A VM is immutable and may run any number of
// programs; all mutable state lives in the per-run segment machinery.
type VM struct {
	config    *config.Config
	registry  *Registry
	spaces    []memory.Space
	registers uint32
	rangeBits uint
	// Effective trace height bound per chip name; zero means unbounded.
	bounds    map[string]uint
	selfCheck bool
}

// New constructs a machine from a validated configuration and the chips
// enabled by it.  Inconsistencies are config faults: they are reported here,
// before any execution is attempted.
func New(cfg *config.Config, chips ...Chip) (*VM, error) {
	if err := cfg.Validate(); err != nil {
		return nil, ConfigFault("%s", err)
	}
	//
	registry, err := NewRegistry(chips...)
	if err != nil {
		return nil, err
	}
	//
	bounds := make(map[string]uint)
	//
	for _, chip := range chips {
		bounds[chip.Name()] = cfg.Bound(chip.Name())
	}
	//
	return &VM{
		config:    cfg,
		registry:  registry,
		spaces:    Spaces(cfg),
		registers: cfg.Registers,
		rangeBits: cfg.RangeBits,
		bounds:    bounds,
		selfCheck: cfg.SelfCheck,
	}, nil
}

// Spaces derives the built-in address space descriptors from a configuration.
func Spaces(cfg *config.Config) []memory.Space {
	return []memory.Space{
		{Id: memory.REGISTER_SPACE, Name: "register", Words: uint64(cfg.Registers)},
		{Id: memory.HEAP_SPACE, Name: "heap", Words: cfg.HeapWords},
		{Id: memory.INPUT_SPACE, Name: "input", Words: cfg.InputWords, ReadOnly: true},
		{Id: memory.OUTPUT_SPACE, Name: "output", Words: cfg.OutputWords},
	}
}

// Registry exposes the resolved chip set, e.g. for deriving the proving key
// layout.
func (p *VM) Registry() *Registry {
	return p.registry
}

// Config returns the configuration this machine was built from.
func (p *VM) Config() *config.Config {
	return p.config
}

// RunResult packages a completed (halted) run: the ordered segment chain, the
// program's exit code and its public outputs.
type RunResult struct {
	Segments []*Segment
	ExitCode uint64
	// Values deposited in the output space, in offset order up to the
	// highest written offset.
	Outputs []fr.Element
}

// Run executes a program against the given input stream, returning the
// ordered chain of segments or the fault which terminated execution.  Runs
// are deterministic: the same program and input always yield byte-identical
// traces and the same segment count.  On fault, no partial segment (and no
// continuation) is returned.
func (p *VM) Run(program *isa.Program, input []fr.Element) (*RunResult, error) {
	var (
		stats    = util.NewPerfStats()
		segments []*Segment
	)
	//
	image, err := p.bootImage(program, input)
	if err != nil {
		return nil, err
	}
	//
	entry := NewContinuation(0, 0, make([]fr.Element, p.registers), image)
	//
	for {
		segment, exitImage, err := p.runSegment(uint(len(segments)), entry, image, program)
		if err != nil {
			return nil, err
		}
		// Optionally replay the bus multisets
		if p.selfCheck {
			if failures := bus.SelfCheck(segment.Messages, bus.EXECUTION_BUS); len(failures) > 0 {
				return nil, fmt.Errorf("internal: segment %d: %s", segment.Index, failures[0])
			}
		}
		//
		segments = append(segments, segment)
		//
		if segment.Halted {
			if p.selfCheck {
				if err := chainCheck(segments); err != nil {
					return nil, fmt.Errorf("internal: %w", err)
				}
			}
			//
			stats.Log("Executing program")
			//
			return &RunResult{
				Segments: segments,
				ExitCode: segment.ExitCode,
				Outputs:  outputsOf(exitImage),
			}, nil
		}
		//
		entry, image = segment.Exit, exitImage
	}
}

// bootImage constructs the initial memory image of a run: the program's
// static data segments overlaid with the input stream.  Zero values are
// elided, keeping the image canonical.
func (p *VM) bootImage(program *isa.Program, input []fr.Element) (map[memory.Address]fr.Element, error) {
	image := make(map[memory.Address]fr.Element)
	//
	store := func(addr memory.Address, value fr.Element) error {
		if err := p.checkInitial(addr); err != nil {
			return err
		}
		//
		if !value.IsZero() {
			image[addr] = value
		}
		//
		return nil
	}
	// Static data segments
	for _, segment := range program.Data() {
		for i, value := range segment.Values {
			addr := memory.Address{Space: segment.Space, Offset: segment.Offset + uint64(i)}
			//
			if err := store(addr, value); err != nil {
				return nil, err
			}
		}
	}
	// Input stream
	for i, value := range input {
		addr := memory.Address{Space: memory.INPUT_SPACE, Offset: uint64(i)}
		//
		if err := store(addr, value); err != nil {
			return nil, err
		}
	}
	//
	return image, nil
}

// checkInitial validates an initial image address against the configured
// spaces.  Read-only spaces may of course be initialised; only bounds matter
// here.
func (p *VM) checkInitial(addr memory.Address) error {
	for _, space := range p.spaces {
		if space.Id == addr.Space {
			if addr.Offset >= space.Words {
				return &Fault{Kind: ACCESS_FAULT,
					Err: fmt.Errorf("initial value at %s beyond %s space bound %d", addr, space.Name, space.Words)}
			}
			//
			return nil
		}
	}
	//
	return &Fault{Kind: ACCESS_FAULT, Err: fmt.Errorf("initial value in unknown space %d", addr.Space)}
}

// outputsOf extracts the output stream from a final memory image: all output
// space cells in offset order, up to the highest written offset.
func outputsOf(image map[memory.Address]fr.Element) []fr.Element {
	var offsets []uint64
	//
	for addr := range image {
		if addr.Space == memory.OUTPUT_SPACE {
			offsets = append(offsets, addr.Offset)
		}
	}
	//
	if len(offsets) == 0 {
		return nil
	}
	//
	sort.Slice(offsets, func(i, j int) bool { return offsets[i] < offsets[j] })
	//
	outputs := make([]fr.Element, offsets[len(offsets)-1]+1)
	//
	for _, offset := range offsets {
		outputs[offset] = image[memory.Address{Space: memory.OUTPUT_SPACE, Offset: offset}]
	}
	//
	return outputs
}

// chainCheck validates the execution bus hand-off across the segment chain.
func chainCheck(segments []*Segment) error {
	messages := make([][]bus.Message, len(segments))
	//
	for i, segment := range segments {
		messages[i] = segment.Messages
	}
	//
	return bus.ChainCheck(messages)
}
