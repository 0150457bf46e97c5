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
package trace

import (
	"math/bits"

	"github.com/proofwright/go-zvm/pkg/util"
	"github.com/proofwright/go-zvm/pkg/vm/bus"
)

// ProvingInput is the complete hand-off to the external proving backend for
// one segment: every chip's padded trace matrix, plus the full interaction
// message multiset whose balance the backend's permutation argument enforces.
type ProvingInput struct {
	// Matrices in chip registration order, each padded to a power-of-two
	// height.
	Matrices []*Matrix
	// All interaction messages emitted during the segment.
	Messages []bus.Message
}

// Assemble collects the per-chip matrices of a completed segment, pads each to
// the next power-of-two height, and packages them together with the segment's
// message multiset.  Matrices are independent of one another, hence padding
// proceeds in parallel across chips.  Assembly is purely transformative: it
// mutates no machine state and can run after the next segment has begun
// executing.
func Assemble(matrices []*Matrix, messages []bus.Message) *ProvingInput {
	var (
		stats = util.NewPerfStats()
		// Construct a communication channel for completion signals.
		c = make(chan struct{}, len(matrices))
	)
	// Dispatch one padding job per chip
	for _, matrix := range matrices {
		go func(m *Matrix) {
			m.Pad(NextPowerOfTwo(m.Height()))
			// Signal completion
			c <- struct{}{}
		}(matrix)
	}
	// Wait for all jobs
	for range matrices {
		<-c
	}
	// Log stats about this phase
	stats.Log("Assembling trace")
	// Done
	return &ProvingInput{Matrices: matrices, Messages: messages}
}

// NextPowerOfTwo returns the smallest power of two which is at least the given
// height.  Empty matrices are padded to height one, since the backend rejects
// zero-height columns.
func NextPowerOfTwo(height uint) uint {
	if height <= 1 {
		return 1
	}
	//
	return 1 << bits.Len64(uint64(height-1))
}
