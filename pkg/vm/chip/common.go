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
package chip

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
)

// u64 lifts an unsigned integer into the field.
func u64(value uint64) fr.Element {
	var element fr.Element
	//
	element.SetUint64(value)
	//
	return element
}

// flag encodes a boolean as a 0/1 field element.
func flag(set bool) fr.Element {
	if set {
		return u64(1)
	}
	//
	return u64(0)
}

// unreachableExecute panics when a table chip is invoked through instruction
// dispatch.  The registry never routes opcodes to a chip which claims none,
// hence reaching this indicates corruption of the dispatch table itself.
func unreachableExecute(name string) {
	panic(fmt.Sprintf("table chip %s dispatched as instruction chip", name))
}
