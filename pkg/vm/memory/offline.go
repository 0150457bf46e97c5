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
	"fmt"
	"sort"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"

	"github.com/proofwright/go-zvm/pkg/vm/bus"
)

// SortedAccess is one row of the offline memory argument: an access record
// together with the timestamp distance to the previous access of the same
// cell.  Checking memory correctness online, per instruction, would require
// unbounded lookback; instead all accesses of a segment are sorted by
// (address, timestamp) once, after execution, and consistency is checked in a
// single linear scan with constant work per access.
type SortedAccess struct {
	Access
	// Timestamp of the previous access to the same cell, or the segment's
	// entry clock for the first access.
	PrevTimestamp uint64
	// Whether this is the first access to its cell within the segment.
	First bool
}

// OfflineCheck sorts the controller's access log by (address, timestamp),
// validates read-after-write consistency across the whole segment, receives
// every access tuple from the memory bus (balancing the controller's sends)
// and emits range-check requests for the timestamp distances.  An
// inconsistency here indicates an engine bug, never a user error: the
// controller itself always serves the latest write.
//
// The returned rows are the trace rows of the offline checker chip, in sorted
// order.
func OfflineCheck(controller *Controller, rangeBits uint, recorder *bus.Recorder) ([]SortedAccess, error) {
	var (
		accesses = controller.Accesses()
		sorted   = make([]SortedAccess, len(accesses))
	)
	//
	for i, access := range accesses {
		sorted[i] = SortedAccess{Access: access}
	}
	// Sort by (space, offset, timestamp).  Timestamps are unique, hence the
	// sort is a total order and the result deterministic.
	sort.Slice(sorted, func(i, j int) bool {
		l, r := sorted[i].Address, sorted[j].Address
		//
		if l.Space != r.Space {
			return l.Space < r.Space
		} else if l.Offset != r.Offset {
			return l.Offset < r.Offset
		}
		//
		return sorted[i].Timestamp < sorted[j].Timestamp
	})
	// Linear consistency scan
	var (
		prev      *SortedAccess
		prevValue fr.Element
	)
	//
	for i := range sorted {
		var (
			ith  = &sorted[i]
			addr = ith.Address
		)
		//
		if prev == nil || prev.Address != addr {
			// First access to this cell within the segment
			ith.First = true
			ith.PrevTimestamp = controller.EntryClock()
			prevValue = controller.InitialValue(addr)
		} else {
			ith.PrevTimestamp = prev.Timestamp
		}
		// A read must observe the most recent write (or the initial value)
		if !ith.Write && !ith.Value.Equal(&prevValue) {
			return nil, fmt.Errorf("memory inconsistency at %s, timestamp %d: read %s, expected %s",
				addr, ith.Timestamp, ith.Value.String(), prevValue.String())
		}
		// Timestamps must strictly increase per cell
		if ith.Timestamp <= ith.PrevTimestamp {
			return nil, fmt.Errorf("memory inconsistency at %s: timestamp %d not after %d",
				addr, ith.Timestamp, ith.PrevTimestamp)
		}
		//
		if ith.Write {
			prevValue = ith.Value
		}
		//
		prev = ith
	}
	// Balance the memory bus and request the range checks
	for _, ith := range sorted {
		recorder.Receive(bus.MEMORY_BUS, AccessTuple(ith.Address, ith.Value, ith.Timestamp, ith.Write)...)
		//
		emitRangeChecks(ith.Timestamp-ith.PrevTimestamp, rangeBits, recorder)
	}
	// Done
	return sorted, nil
}

// emitRangeChecks decomposes a timestamp distance into limbs of the configured
// bit width and sends one range-check request per limb.  The range chip
// receives these, proving (at the constraint level) that every distance is a
// genuine positive value rather than a field-wraparound artefact.
func emitRangeChecks(distance uint64, rangeBits uint, recorder *bus.Recorder) {
	var (
		mask  = (uint64(1) << rangeBits) - 1
		value fr.Element
	)
	// Always emit at least one limb, so that a zero distance remains visible
	// to the argument.
	for {
		value.SetUint64(distance & mask)
		recorder.Send(bus.RANGE_BUS, value)
		//
		distance >>= rangeBits
		if distance == 0 {
			break
		}
	}
}
