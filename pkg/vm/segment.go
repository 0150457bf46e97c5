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
	"github.com/proofwright/go-zvm/pkg/trace"
	"github.com/proofwright/go-zvm/pkg/vm/bus"
)

// Segment is a maximal contiguous run of execution bounded by the configured
// trace height limits.  Segments form a strictly ordered chain from program
// start to halt: each segment's entry continuation is its predecessor's exit
// continuation.  The matrices and messages are produced exactly once and are
// consumed by the trace assembler; the engine retains nothing else of a
// segment after it closes.
type Segment struct {
	// Position of this segment within the chain.
	Index uint
	// Claimed machine state at segment entry.
	Entry Continuation
	// Committed machine state at segment exit.
	Exit Continuation
	// Per-chip trace matrices, in chip registration order, unpadded.
	Matrices []*trace.Matrix
	// All interaction messages emitted during this segment.
	Messages []bus.Message
	// Whether the terminate opcode was executed in this segment.  Only the
	// final segment of a completed run halts.
	Halted bool
	// Exit code, meaningful only when Halted is set.
	ExitCode uint64
}

// Matrix returns the trace matrix belonging to the named chip, or nil if no
// such chip was registered.
func (p *Segment) Matrix(name string) *trace.Matrix {
	for _, matrix := range p.Matrices {
		if matrix.Name() == name {
			return matrix
		}
	}
	//
	return nil
}
