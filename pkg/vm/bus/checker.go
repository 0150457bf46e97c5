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
	"sort"
)

// Balance holds the residual multiplicity of one tuple on one bus after all
// sends and receives have been folded together.  A non-zero residual means the
// multiset-equality argument would fail at proof time.
type Balance struct {
	Message Message
	// Residual multiplicity (sends minus receives).
	Residual int64
}

func (p Balance) String() string {
	return fmt.Sprintf("bus %s: tuple %s unbalanced (residual %+d)", p.Message.Bus, p.Message, p.Residual)
}

// SelfCheck replays a set of messages, folding every send positively and every
// receive negatively per (bus, tuple), and reports every tuple with non-zero
// residual multiplicity.  This is a debugging aid: bus balance proper is
// enforced by the proving backend's permutation argument, but a proof-time
// failure is expensive to diagnose, so the engine offers this runtime replay.
//
// Buses named in exclude are skipped.  In particular the execution bus is
// intentionally unbalanced within a single segment (its send is received by
// the *next* segment) and is checked separately by ChainCheck.
func SelfCheck(messages []Message, exclude ...Id) []Balance {
	var (
		residuals = make(map[string]int64)
		witness   = make(map[string]Message)
		excluded  = make(map[Id]bool)
	)
	//
	for _, bus := range exclude {
		excluded[bus] = true
	}
	// Fold all messages
	for _, msg := range messages {
		if excluded[msg.Bus] {
			continue
		}
		//
		key := msg.Key()
		//
		if msg.Direction == SEND {
			residuals[key] += int64(msg.Multiplicity)
		} else {
			residuals[key] -= int64(msg.Multiplicity)
		}
		//
		if _, ok := witness[key]; !ok {
			witness[key] = msg
		}
	}
	// Collect unbalanced tuples
	var failures []Balance
	//
	for key, residual := range residuals {
		if residual != 0 {
			failures = append(failures, Balance{witness[key], residual})
		}
	}
	// Sort for deterministic reporting
	sort.Slice(failures, func(i, j int) bool {
		return failures[i].Message.Key() < failures[j].Message.Key()
	})
	//
	return failures
}

// ChainCheck validates the execution bus across an ordered sequence of
// segments: the tuple sent on the execution bus by segment k must equal the
// tuple received by segment k+1.  The first segment's receive and the last
// segment's send are the programme's entry and exit claims, checked by the
// external aggregation process rather than here.
func ChainCheck(segments [][]Message) error {
	var prev *Message
	//
	for i, messages := range segments {
		var entry, exit *Message
		//
		for j, msg := range messages {
			if msg.Bus != EXECUTION_BUS {
				continue
			}
			//
			switch msg.Direction {
			case RECEIVE:
				if entry != nil {
					return fmt.Errorf("segment %d: duplicate execution bus receive", i)
				}
				//
				entry = &messages[j]
			case SEND:
				if exit != nil {
					return fmt.Errorf("segment %d: duplicate execution bus send", i)
				}
				//
				exit = &messages[j]
			}
		}
		// Every segment must claim an entry and exit state
		if entry == nil || exit == nil {
			return fmt.Errorf("segment %d: missing execution bus messages", i)
		}
		// Check adjacency
		if prev != nil && prev.Key() != entry.Key() {
			return fmt.Errorf("segment %d: entry state does not match prior segment's exit state", i)
		}
		//
		prev = exit
	}
	// Done
	return nil
}
