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
	"encoding/binary"
	"fmt"
	"hash"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/proofwright/go-zvm/pkg/vm"
	"github.com/proofwright/go-zvm/pkg/vm/bus"
)

// Air is the proving-key-relevant shape of one chip: its name, trace width
// and bus endpoints.  Two machines agreeing on their key sets agree on the
// layout of every trace matrix and on the global interaction argument, which
// is exactly what prover and verifier must share.
type Air struct {
	// Chip name, unique within a key set.
	Name string
	// Width of the chip's trace matrix.
	Width uint
	// Bus endpoints the chip declares, in declaration order.
	Interactions []bus.Interaction
}

// String returns a human-readable one-line rendition of this AIR.
func (p *Air) String() string {
	var builder strings.Builder
	//
	for i, ix := range p.Interactions {
		if i != 0 {
			builder.WriteString(",")
		}
		//
		if ix.Direction == bus.SEND {
			fmt.Fprintf(&builder, "+%s", ix.Bus)
		} else {
			fmt.Fprintf(&builder, "-%s", ix.Bus)
		}
	}
	//
	return fmt.Sprintf("%s/%d[%s]", p.Name, p.Width, builder.String())
}

// KeySet derives the AIRs of a machine's registry, in registration order.
// The order is part of the key: permuting chips permutes matrix layout and
// must yield a different fingerprint.
func KeySet(registry *vm.Registry) []Air {
	var (
		chips = registry.Chips()
		keys  = make([]Air, len(chips))
	)
	//
	for i, chip := range chips {
		keys[i] = Air{
			Name:         chip.Name(),
			Width:        chip.TraceWidth(),
			Interactions: chip.Interactions(),
		}
	}
	//
	return keys
}

// Fingerprint computes a digest binding the complete key set: every chip
// name, width and interaction, in order.  Identical configurations produce
// identical fingerprints on every run.
func Fingerprint(keys []Air) [32]byte {
	hasher, err := blake2b.New256(nil)
	// Can only fail for oversized custom keys
	if err != nil {
		panic(err)
	}
	//
	writeUint64(hasher, uint64(len(keys)))
	//
	for _, key := range keys {
		writeUint64(hasher, uint64(len(key.Name)))
		hasher.Write([]byte(key.Name))
		writeUint64(hasher, uint64(key.Width))
		writeUint64(hasher, uint64(len(key.Interactions)))
		//
		for _, ix := range key.Interactions {
			var direction byte
			//
			if ix.Direction == bus.SEND {
				direction = 1
			}
			//
			hasher.Write([]byte{byte(ix.Bus), direction})
		}
	}
	//
	var fingerprint [32]byte
	//
	copy(fingerprint[:], hasher.Sum(nil))
	//
	return fingerprint
}

func writeUint64(hash hash.Hash, value uint64) {
	var bytes [8]byte
	//
	binary.BigEndian.PutUint64(bytes[:], value)
	//
	hash.Write(bytes[:])
}
