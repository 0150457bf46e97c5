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
package config

import (
	"encoding/json"
	"fmt"
)

// ChipConfig declares one enabled chip, optionally overriding the global trace
// height bound for that chip alone.
type ChipConfig struct {
	Name string `json:"name"`
	// Trace height bound for this chip; zero inherits the global bound.
	MaxHeight uint `json:"maxHeight,omitempty"`
}

// Config is the declarative, immutable machine configuration: which chips are
// included and their static parameters.  It is loaded once at machine
// construction and never mutated afterwards; the ordered AIR list handed to
// the proving backend is a pure function of this structure.
type Config struct {
	// Number of registers in the register file.
	Registers uint32 `json:"registers"`
	// Global trace height bound per chip; zero disables segmentation (one
	// unbounded segment).
	MaxTraceHeight uint `json:"maxTraceHeight"`
	// Bit width of the range-check table.
	RangeBits uint `json:"rangeBits"`
	// Word bounds of the built-in address spaces.
	HeapWords   uint64 `json:"heapWords"`
	InputWords  uint64 `json:"inputWords"`
	OutputWords uint64 `json:"outputWords"`
	// Whether to replay the bus multisets after each segment as a debugging
	// aid.  Never required for soundness; balance proper is enforced by the
	// proving backend.
	SelfCheck bool `json:"selfCheck,omitempty"`
	// Enabled chips, in registration (and hence AIR) order.
	Chips []ChipConfig `json:"chips"`
}

// Default returns the standard configuration: full core chip set, 32
// registers, an eight-bit range table and segmentation disabled.
func Default() *Config {
	return &Config{
		Registers:      32,
		MaxTraceHeight: 0,
		RangeBits:      8,
		HeapWords:      1 << 20,
		InputWords:     1 << 12,
		OutputWords:    1 << 12,
		Chips: []ChipConfig{
			{Name: "alu"}, {Name: "branch"}, {Name: "loadstore"},
			{Name: "system"}, {Name: "connector"}, {Name: "memory"},
			{Name: "range"}, {Name: "program"},
		},
	}
}

// FromJson parses and validates a configuration from its JSON form.
func FromJson(bytes []byte) (*Config, error) {
	var cfg Config
	//
	if err := json.Unmarshal(bytes, &cfg); err != nil {
		return nil, err
	}
	//
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	//
	return &cfg, nil
}

// ToJson serialises this configuration.
func (p *Config) ToJson() ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// Validate applies the checks which can be applied without knowing the chips
// themselves (the chip registry applies the rest at machine construction).
func (p *Config) Validate() error {
	if p.Registers == 0 {
		return fmt.Errorf("configuration declares no registers")
	}
	//
	if p.RangeBits == 0 || p.RangeBits > 16 {
		return fmt.Errorf("range table bit width %d outside supported range 1..16", p.RangeBits)
	}
	//
	if p.HeapWords == 0 {
		return fmt.Errorf("configuration declares an empty heap")
	}
	//
	if len(p.Chips) == 0 {
		return fmt.Errorf("configuration declares no chips")
	}
	// Check chip name uniqueness
	seen := make(map[string]bool)
	//
	for _, chip := range p.Chips {
		if seen[chip.Name] {
			return fmt.Errorf("chip %q configured twice", chip.Name)
		}
		//
		seen[chip.Name] = true
	}
	//
	return nil
}

// Bound returns the effective trace height bound for a named chip.
func (p *Config) Bound(chip string) uint {
	for _, c := range p.Chips {
		if c.Name == chip && c.MaxHeight > 0 {
			return c.MaxHeight
		}
	}
	//
	return p.MaxTraceHeight
}
