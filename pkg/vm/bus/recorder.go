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
	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
)

// Recorder accumulates the interaction messages of exactly one segment.  It is
// created when the segment opens, appended to during execution and during
// table finalisation, and consumed exactly once by the trace assembler.  It is
// not safe for concurrent use; the execution loop is strictly sequential.
type Recorder struct {
	messages []Message
}

// NewRecorder constructs an empty message recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Send records a send of the given tuple on the given bus with multiplicity
// one.  The tuple is copied.
func (p *Recorder) Send(bus Id, tuple ...fr.Element) {
	p.record(bus, SEND, 1, tuple)
}

// Receive records a receive of the given tuple on the given bus with
// multiplicity one.  The tuple is copied.
func (p *Recorder) Receive(bus Id, tuple ...fr.Element) {
	p.record(bus, RECEIVE, 1, tuple)
}

// SendN records a send with an explicit multiplicity.
func (p *Recorder) SendN(bus Id, multiplicity uint, tuple ...fr.Element) {
	p.record(bus, SEND, multiplicity, tuple)
}

// ReceiveN records a receive with an explicit multiplicity.
func (p *Recorder) ReceiveN(bus Id, multiplicity uint, tuple ...fr.Element) {
	p.record(bus, RECEIVE, multiplicity, tuple)
}

// Count returns the number of messages recorded so far.
func (p *Recorder) Count() uint {
	return uint(len(p.messages))
}

// Messages returns all recorded messages in emission order.
func (p *Recorder) Messages() []Message {
	return p.messages
}

func (p *Recorder) record(bus Id, direction Direction, multiplicity uint, tuple []fr.Element) {
	copied := make([]fr.Element, len(tuple))
	copy(copied, tuple)
	//
	p.messages = append(p.messages, Message{
		Bus:          bus,
		Direction:    direction,
		Tuple:        copied,
		Multiplicity: multiplicity,
	})
}
