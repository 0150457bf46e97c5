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
package memory

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	"golang.org/x/crypto/blake2b"

	"github.com/proofwright/go-zvm/pkg/vm/bus"
)

// Access records one read or write, as it happened during execution.  The
// logged sequence is the raw material for the offline consistency check.
type Access struct {
	Address Address
	Value   fr.Element
	// Logical timestamp of this access.  Timestamps are globally unique and
	// strictly increasing within a run, which the offline argument relies on.
	Timestamp uint64
	Write     bool
}

type cell struct {
	value fr.Element
}

// Controller is the single authoritative read/write interface over the
// configured address spaces.  Every successful access bumps the logical clock,
// appends one access record and emits exactly one message on the memory bus.
// A controller is owned by one segment's execution thread; it is not safe for
// concurrent use and is never shared across segments (the next segment starts
// from this segment's image instead).
type Controller struct {
	spaces []Space
	// Effective initial state of this segment, i.e. the prior segment's image
	// (or the boot image for the first segment).  Unwritten reads resolve
	// here.
	initial map[Address]fr.Element
	// Cells written during this segment.
	cells map[Address]cell
	// Logical clock; carries on from the prior segment.
	clock uint64
	// Clock value at segment entry.  Initial values are treated as having
	// been written at this timestamp by the offline checker.
	entryClock uint64
	recorder   *bus.Recorder
	accesses   []Access
}

// NewController constructs a memory controller over the given spaces, starting
// from the given initial image and clock.  The initial map is captured, not
// copied; callers must not mutate it afterwards.
func NewController(spaces []Space, initial map[Address]fr.Element, clock uint64, recorder *bus.Recorder) *Controller {
	if initial == nil {
		initial = make(map[Address]fr.Element)
	}
	//
	return &Controller{
		spaces:     spaces,
		initial:    initial,
		cells:      make(map[Address]cell),
		clock:      clock,
		entryClock: clock,
		recorder:   recorder,
	}
}

// Spaces returns the address spaces this controller mediates.
func (p *Controller) Spaces() []Space {
	return p.spaces
}

// Clock returns the current logical timestamp.
func (p *Controller) Clock() uint64 {
	return p.clock
}

// EntryClock returns the logical timestamp at segment entry.
func (p *Controller) EntryClock() uint64 {
	return p.entryClock
}

// Accesses returns the access log of this segment, in execution order.
func (p *Controller) Accesses() []Access {
	return p.accesses
}

// Read the cell at a given address, returning its value and the timestamp of
// this access.  Reads of unwritten cells return the initial value (zero in the
// absence of any initial image entry).
func (p *Controller) Read(addr Address) (fr.Element, uint64, error) {
	if err := p.check(addr, false); err != nil {
		return fr.Element{}, 0, err
	}
	//
	value := p.Peek(addr)
	timestamp := p.tick()
	//
	p.log(addr, value, timestamp, false)
	//
	return value, timestamp, nil
}

// Write a value to the cell at a given address.  Writes to read-only spaces
// fail with an access error, which is fatal for the executing segment.
func (p *Controller) Write(addr Address, value fr.Element) error {
	if err := p.check(addr, true); err != nil {
		return err
	}
	//
	p.cells[addr] = cell{value}
	timestamp := p.tick()
	//
	p.log(addr, value, timestamp, true)
	//
	return nil
}

// Peek returns the current value of a cell without logging an access or
// emitting a bus message.  This is used when freezing a segment's state, which
// must not perturb the access log.
func (p *Controller) Peek(addr Address) fr.Element {
	if c, ok := p.cells[addr]; ok {
		return c.value
	}
	//
	return p.initial[addr]
}

// InitialValue returns the value a cell held at segment entry.
func (p *Controller) InitialValue(addr Address) fr.Element {
	return p.initial[addr]
}

// Image returns the effective memory state at the current point of execution:
// the initial image overlaid with all writes.  Cells holding zero are elided,
// making the image canonical (a cell explicitly written to zero is
// indistinguishable from an untouched one, matching read semantics).
func (p *Controller) Image() map[Address]fr.Element {
	image := make(map[Address]fr.Element, len(p.initial)+len(p.cells))
	//
	for addr, value := range p.initial {
		if !value.IsZero() {
			image[addr] = value
		}
	}
	//
	for addr, c := range p.cells {
		if c.value.IsZero() {
			delete(image, addr)
		} else {
			image[addr] = c.value
		}
	}
	//
	return image
}

// ImageDigest computes the blake2b-256 digest of a canonical memory image.
// Entries are serialised in (space, offset) order, hence the digest is
// independent of map iteration order and of the write history which produced
// the image.
func ImageDigest(image map[Address]fr.Element) [32]byte {
	addresses := make([]Address, 0, len(image))
	//
	for addr := range image {
		addresses = append(addresses, addr)
	}
	//
	sort.Slice(addresses, func(i, j int) bool {
		l, r := addresses[i], addresses[j]
		if l.Space != r.Space {
			return l.Space < r.Space
		}
		//
		return l.Offset < r.Offset
	})
	//
	hasher, err := blake2b.New256(nil)
	if err != nil {
		panic(err)
	}
	//
	var buf [16]byte
	//
	for _, addr := range addresses {
		value := image[addr]
		valueBytes := value.Bytes()
		//
		binary.BigEndian.PutUint64(buf[0:], uint64(addr.Space))
		binary.BigEndian.PutUint64(buf[8:], addr.Offset)
		hasher.Write(buf[:])
		hasher.Write(valueBytes[:])
	}
	//
	var digest [32]byte
	copy(digest[:], hasher.Sum(nil))
	//
	return digest
}

// check validates an access against the target space's bounds and mutability.
func (p *Controller) check(addr Address, write bool) error {
	space, ok := p.space(addr.Space)
	//
	if !ok {
		return &AccessError{addr, write, "unknown address space"}
	} else if addr.Offset >= space.Words {
		return &AccessError{addr, write, fmt.Sprintf("offset beyond %s space bound %d", space.Name, space.Words)}
	} else if write && space.ReadOnly {
		return &AccessError{addr, write, fmt.Sprintf("%s space is read-only", space.Name)}
	}
	//
	return nil
}

func (p *Controller) space(id uint) (Space, bool) {
	for _, s := range p.spaces {
		if s.Id == id {
			return s, true
		}
	}
	//
	return Space{}, false
}

// tick advances the logical clock, returning the fresh timestamp.  Timestamp
// zero never labels a real access; it is reserved for the boot image.
func (p *Controller) tick() uint64 {
	p.clock++
	return p.clock
}

// log appends an access record and emits the corresponding memory bus message.
// The offline checker later receives exactly these tuples, balancing the bus.
func (p *Controller) log(addr Address, value fr.Element, timestamp uint64, write bool) {
	p.accesses = append(p.accesses, Access{addr, value, timestamp, write})
	//
	p.recorder.Send(bus.MEMORY_BUS, AccessTuple(addr, value, timestamp, write)...)
}

// AccessTuple encodes a memory access as the field-element tuple carried on
// the memory bus: (space, offset, value, timestamp, write flag).
func AccessTuple(addr Address, value fr.Element, timestamp uint64, write bool) []fr.Element {
	var space, offset, ts, flag fr.Element
	//
	space.SetUint64(uint64(addr.Space))
	offset.SetUint64(addr.Offset)
	ts.SetUint64(timestamp)
	//
	if write {
		flag.SetOne()
	}
	//
	return []fr.Element{space, offset, value, ts, flag}
}
