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
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func element(value uint64) fr.Element {
	var e fr.Element
	//
	e.SetUint64(value)
	//
	return e
}

func TestSelfCheckBalanced(t *testing.T) {
	recorder := NewRecorder()
	//
	recorder.Send(MEMORY_BUS, element(1), element(2))
	recorder.Send(MEMORY_BUS, element(1), element(2))
	recorder.ReceiveN(MEMORY_BUS, 2, element(1), element(2))
	//
	assert.Empty(t, SelfCheck(recorder.Messages()))
}

func TestSelfCheckReportsResidual(t *testing.T) {
	recorder := NewRecorder()
	//
	recorder.Send(RANGE_BUS, element(3))
	recorder.Send(RANGE_BUS, element(3))
	recorder.Receive(RANGE_BUS, element(3))
	//
	failures := SelfCheck(recorder.Messages())
	require.Len(t, failures, 1)
	assert.Equal(t, int64(1), failures[0].Residual)
	assert.Equal(t, RANGE_BUS, failures[0].Message.Bus)
}

func TestSelfCheckDistinguishesTuples(t *testing.T) {
	recorder := NewRecorder()
	// Same bus, different tuples must not cancel
	recorder.Send(RANGE_BUS, element(1))
	recorder.Receive(RANGE_BUS, element(2))
	//
	assert.Len(t, SelfCheck(recorder.Messages()), 2)
}

func TestSelfCheckExcludesBuses(t *testing.T) {
	recorder := NewRecorder()
	//
	recorder.Send(EXECUTION_BUS, element(5), element(6))
	//
	assert.Empty(t, SelfCheck(recorder.Messages(), EXECUTION_BUS))
}

// boundary builds the execution bus messages of one segment.
func boundary(entryPc, entryClock, exitPc, exitClock uint64) []Message {
	recorder := NewRecorder()
	//
	recorder.Receive(EXECUTION_BUS, element(entryPc), element(entryClock))
	recorder.Send(EXECUTION_BUS, element(exitPc), element(exitClock))
	//
	return recorder.Messages()
}

func TestChainCheckAccepts(t *testing.T) {
	segments := [][]Message{
		boundary(0, 0, 10, 100),
		boundary(10, 100, 20, 250),
		boundary(20, 250, 3, 400),
	}
	//
	assert.NoError(t, ChainCheck(segments))
}

func TestChainCheckRejectsMismatch(t *testing.T) {
	segments := [][]Message{
		boundary(0, 0, 10, 100),
		boundary(11, 100, 20, 250),
	}
	//
	assert.Error(t, ChainCheck(segments))
}

func TestChainCheckRejectsMissingBoundary(t *testing.T) {
	segments := [][]Message{
		boundary(0, 0, 10, 100),
		{},
	}
	//
	assert.Error(t, ChainCheck(segments))
}
