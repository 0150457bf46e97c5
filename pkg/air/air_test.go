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
package air

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proofwright/go-zvm/pkg/config"
	"github.com/proofwright/go-zvm/pkg/vm"
	"github.com/proofwright/go-zvm/pkg/vm/chip"
)

func keySetOf(t *testing.T, cfg *config.Config) []Air {
	t.Helper()
	//
	chips, err := chip.FromConfig(cfg)
	require.NoError(t, err)
	//
	registry, err := vm.NewRegistry(chips...)
	require.NoError(t, err)
	//
	return KeySet(registry)
}

func TestKeySetFollowsRegistrationOrder(t *testing.T) {
	cfg := config.Default()
	keys := keySetOf(t, cfg)
	//
	require.Len(t, keys, len(cfg.Chips))
	//
	for i, key := range keys {
		assert.Equal(t, cfg.Chips[i].Name, key.Name)
		assert.NotZero(t, key.Width)
	}
}

func TestFingerprintIsStable(t *testing.T) {
	f1 := Fingerprint(keySetOf(t, config.Default()))
	f2 := Fingerprint(keySetOf(t, config.Default()))
	//
	assert.Equal(t, f1, f2)
}

func TestFingerprintBindsOrder(t *testing.T) {
	var (
		cfg      = config.Default()
		permuted = config.Default()
	)
	// Swap two chips
	permuted.Chips[0], permuted.Chips[1] = permuted.Chips[1], permuted.Chips[0]
	//
	assert.NotEqual(t, Fingerprint(keySetOf(t, cfg)), Fingerprint(keySetOf(t, permuted)))
}

func TestFingerprintBindsWidth(t *testing.T) {
	keys := keySetOf(t, config.Default())
	f1 := Fingerprint(keys)
	//
	keys[0].Width++
	//
	assert.NotEqual(t, f1, Fingerprint(keys))
}
