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
)

// Built-in address space identifiers.  Extension configurations may declare
// further spaces above OUTPUT_SPACE.
const (
	// REGISTER_SPACE holds the register file.  Registers are simply memory
	// cells in a dedicated space, hence register accesses flow through the
	// same offline consistency argument as heap accesses.
	REGISTER_SPACE uint = iota
	// HEAP_SPACE is general-purpose read-write memory.
	HEAP_SPACE
	// INPUT_SPACE is the read-only input stream, populated before execution.
	INPUT_SPACE
	// OUTPUT_SPACE is where the program deposits its public outputs.
	OUTPUT_SPACE
)

// Space describes one address space: a bounded, word-addressed region with
// uniform mutability.  Every word is one field element; there is no sub-word
// addressing, hence alignment is trivially satisfied.
type Space struct {
	// Identifier of this space, unique within a configuration.
	Id uint
	// Human-readable name for diagnostics.
	Name string
	// Number of addressable words.
	Words uint64
	// Whether writes to this space are permitted.
	ReadOnly bool
}

// Address identifies a single memory cell: an address space together with a
// word offset within it.
type Address struct {
	Space  uint
	Offset uint64
}

func (p Address) String() string {
	return fmt.Sprintf("%d:%d", p.Space, p.Offset)
}

// AccessError reports an invalid memory access: out-of-bounds offset, unknown
// space or a write to a read-only space.  Access errors are fatal for the
// executing segment.
type AccessError struct {
	Address Address
	Write   bool
	Reason  string
}

func (p *AccessError) Error() string {
	kind := "read"
	if p.Write {
		kind = "write"
	}
	//
	return fmt.Sprintf("invalid %s at %s: %s", kind, p.Address, p.Reason)
}
