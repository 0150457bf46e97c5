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
	"fmt"

	"github.com/proofwright/go-zvm/pkg/isa"
)

// FaultKind classifies the unrecoverable conditions which terminate a run.
// All faults are terminal: execution must be deterministic and side-effect
// free on fault, hence nothing is retried at this layer and no partial segment
// is ever committed or handed to the proving backend.
type FaultKind int

const (
	// DECODE_FAULT indicates malformed instruction bytes.
	DECODE_FAULT FaultKind = iota
	// DISPATCH_FAULT indicates an opcode which no configured chip claims.
	// This is a configuration error, not a user error.
	DISPATCH_FAULT
	// ACCESS_FAULT indicates an out-of-bounds or read-only-violating memory
	// access, or a program counter outside the program image.
	ACCESS_FAULT
	// ARITHMETIC_FAULT indicates a chip-specific invalid operand, or an
	// overflow the chip does not model.
	ARITHMETIC_FAULT
	// CONFIG_FAULT indicates an inconsistent chip set (e.g. two chips
	// claiming the same opcode).  Config faults are detected at machine
	// construction, before any execution is attempted.
	CONFIG_FAULT
)

func (p FaultKind) String() string {
	switch p {
	case DECODE_FAULT:
		return "decode fault"
	case DISPATCH_FAULT:
		return "dispatch fault"
	case ACCESS_FAULT:
		return "access fault"
	case ARITHMETIC_FAULT:
		return "arithmetic fault"
	case CONFIG_FAULT:
		return "config fault"
	}
	//
	return "unknown fault"
}

// Fault is the error surfaced to callers when a run terminates abnormally.
// It carries enough context (pc, opcode, chip) to diagnose the failure without
// replaying the execution.
type Fault struct {
	Kind   FaultKind
	Pc     uint64
	Opcode isa.Opcode
	// Name of the chip involved, where one was dispatched.
	Chip string
	// Underlying cause, if any.
	Err error
}

func (p *Fault) Error() string {
	msg := fmt.Sprintf("%s at pc %d (opcode %s", p.Kind, p.Pc, p.Opcode)
	//
	if p.Chip != "" {
		msg = fmt.Sprintf("%s, chip %s", msg, p.Chip)
	}
	//
	msg += ")"
	//
	if p.Err != nil {
		msg = fmt.Sprintf("%s: %s", msg, p.Err)
	}
	//
	return msg
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (p *Fault) Unwrap() error {
	return p.Err
}

// ConfigFault constructs a configuration fault.  These arise at machine
// construction only, hence carry no execution context.
func ConfigFault(format string, args ...any) *Fault {
	return &Fault{Kind: CONFIG_FAULT, Err: fmt.Errorf(format, args...)}
}
