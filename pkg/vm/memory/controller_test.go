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
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proofwright/go-zvm/pkg/vm/bus"
)

func element(value uint64) fr.Element {
	var e fr.Element
	//
	e.SetUint64(value)
	//
	return e
}

func testSpaces() []Space {
	return []Space{
		{Id: REGISTER_SPACE, Name: "register", Words: 32},
		{Id: HEAP_SPACE, Name: "heap", Words: 1024},
		{Id: INPUT_SPACE, Name: "input", Words: 64, ReadOnly: true},
		{Id: OUTPUT_SPACE, Name: "output", Words: 64},
	}
}

func TestReadAfterWrite(t *testing.T) {
	var (
		controller = NewController(testSpaces(), nil, 0, bus.NewRecorder())
		addr       = Address{Space: HEAP_SPACE, Offset: 10}
	)
	//
	require.NoError(t, controller.Write(addr, element(42)))
	//
	value, _, err := controller.Read(addr)
	require.NoError(t, err)
	assert.Equal(t, element(42), value)
}

func TestReadUninitialisedYieldsZero(t *testing.T) {
	controller := NewController(testSpaces(), nil, 0, bus.NewRecorder())
	//
	value, _, err := controller.Read(Address{Space: HEAP_SPACE, Offset: 0})
	require.NoError(t, err)
	assert.True(t, value.IsZero())
}

func TestReadInitialImage(t *testing.T) {
	var (
		addr    = Address{Space: INPUT_SPACE, Offset: 3}
		initial = map[Address]fr.Element{addr: element(9)}
	)
	//
	controller := NewController(testSpaces(), initial, 0, bus.NewRecorder())
	//
	value, _, err := controller.Read(addr)
	require.NoError(t, err)
	assert.Equal(t, element(9), value)
}

func TestWriteReadOnlySpaceFails(t *testing.T) {
	controller := NewController(testSpaces(), nil, 0, bus.NewRecorder())
	//
	err := controller.Write(Address{Space: INPUT_SPACE, Offset: 0}, element(1))
	assert.Error(t, err)
}

func TestOutOfBoundsAccessFails(t *testing.T) {
	controller := NewController(testSpaces(), nil, 0, bus.NewRecorder())
	//
	_, _, err := controller.Read(Address{Space: HEAP_SPACE, Offset: 1024})
	assert.Error(t, err)
	//
	_, _, err = controller.Read(Address{Space: 99, Offset: 0})
	assert.Error(t, err)
}

func TestTimestampsStrictlyIncrease(t *testing.T) {
	var (
		controller = NewController(testSpaces(), nil, 5, bus.NewRecorder())
		addr       = Address{Space: HEAP_SPACE, Offset: 0}
	)
	//
	_, t1, err := controller.Read(addr)
	require.NoError(t, err)
	//
	_, t2, err := controller.Read(addr)
	require.NoError(t, err)
	//
	assert.Greater(t, t2, t1)
	assert.Greater(t, t1, uint64(5))
}

func TestImageElidesZeros(t *testing.T) {
	var (
		controller = NewController(testSpaces(), nil, 0, bus.NewRecorder())
		addr       = Address{Space: HEAP_SPACE, Offset: 7}
	)
	//
	require.NoError(t, controller.Write(addr, element(1)))
	require.NoError(t, controller.Write(addr, element(0)))
	//
	_, present := controller.Image()[addr]
	assert.False(t, present)
}

func TestImageDigestIgnoresHistory(t *testing.T) {
	c1 := NewController(testSpaces(), nil, 0, bus.NewRecorder())
	c2 := NewController(testSpaces(), nil, 0, bus.NewRecorder())
	//
	addr := Address{Space: HEAP_SPACE, Offset: 0}
	// Distinct access histories, same final state
	require.NoError(t, c1.Write(addr, element(5)))
	//
	require.NoError(t, c2.Write(addr, element(3)))
	require.NoError(t, c2.Write(addr, element(5)))
	//
	assert.Equal(t, ImageDigest(c1.Image()), ImageDigest(c2.Image()))
}

func TestOfflineCheckBalancesMemoryBus(t *testing.T) {
	var (
		recorder   = bus.NewRecorder()
		controller = NewController(testSpaces(), nil, 0, recorder)
		addr       = Address{Space: HEAP_SPACE, Offset: 1}
	)
	//
	require.NoError(t, controller.Write(addr, element(11)))
	//
	_, _, err := controller.Read(addr)
	require.NoError(t, err)
	//
	sorted, err := OfflineCheck(controller, 8, recorder)
	require.NoError(t, err)
	require.Len(t, sorted, 2)
	// Offline receives cancel the controller's sends
	assert.Empty(t, bus.SelfCheck(recorder.Messages(), bus.RANGE_BUS))
}

func TestOfflineCheckEmitsRangeRequests(t *testing.T) {
	var (
		recorder   = bus.NewRecorder()
		controller = NewController(testSpaces(), nil, 0, recorder)
		addr       = Address{Space: HEAP_SPACE, Offset: 1}
	)
	//
	require.NoError(t, controller.Write(addr, element(11)))
	//
	_, err := OfflineCheck(controller, 8, recorder)
	require.NoError(t, err)
	//
	var requests int
	//
	for _, msg := range recorder.Messages() {
		if msg.Bus == bus.RANGE_BUS && msg.Direction == bus.SEND {
			requests++
		}
	}
	//
	assert.NotZero(t, requests)
}

func TestOfflineCheckOrdersByAddress(t *testing.T) {
	var (
		recorder   = bus.NewRecorder()
		controller = NewController(testSpaces(), nil, 0, recorder)
	)
	// Interleave accesses across two cells
	require.NoError(t, controller.Write(Address{Space: HEAP_SPACE, Offset: 2}, element(1)))
	require.NoError(t, controller.Write(Address{Space: HEAP_SPACE, Offset: 1}, element(2)))
	require.NoError(t, controller.Write(Address{Space: HEAP_SPACE, Offset: 2}, element(3)))
	//
	sorted, err := OfflineCheck(controller, 8, recorder)
	require.NoError(t, err)
	require.Len(t, sorted, 3)
	//
	assert.Equal(t, uint64(1), sorted[0].Address.Offset)
	assert.Equal(t, uint64(2), sorted[1].Address.Offset)
	assert.Equal(t, uint64(2), sorted[2].Address.Offset)
	assert.True(t, sorted[1].First)
	assert.False(t, sorted[2].First)
}
