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
	"github.com/proofwright/go-zvm/pkg/config"
	"github.com/proofwright/go-zvm/pkg/vm"
)

// FromConfig instantiates the chips named by a given configuration, in the
// order the configuration lists them.  Registration order matters twice: it
// fixes the key-set layout, and table chips are finalised in it.
func FromConfig(cfg *config.Config) ([]vm.Chip, error) {
	chips := make([]vm.Chip, len(cfg.Chips))
	//
	for i, c := range cfg.Chips {
		switch c.Name {
		case AluChipName:
			chips[i] = NewAluChip()
		case BranchChipName:
			chips[i] = NewBranchChip()
		case LoadStoreChipName:
			chips[i] = NewLoadStoreChip()
		case SystemChipName:
			chips[i] = NewSystemChip()
		case ConnectorChipName:
			chips[i] = NewConnectorChip()
		case vm.MemoryChipName:
			chips[i] = NewMemoryChip()
		case RangeChipName:
			chips[i] = NewRangeChip(cfg.RangeBits)
		case ProgramChipName:
			chips[i] = NewProgramChip()
		default:
			return nil, vm.ConfigFault("unknown chip %q", c.Name)
		}
	}
	//
	return chips, nil
}

// NewVM assembles a machine from a configuration using the standard chip set.
func NewVM(cfg *config.Config) (*vm.VM, error) {
	chips, err := FromConfig(cfg)
	//
	if err != nil {
		return nil, err
	}
	//
	return vm.New(cfg, chips...)
}
