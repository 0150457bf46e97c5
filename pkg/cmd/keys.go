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
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/proofwright/go-zvm/pkg/air"
	"github.com/proofwright/go-zvm/pkg/vm/chip"
)

var keysCmd = &cobra.Command{
	Use:   "keys [flags]",
	Short: "Report the key set of a machine configuration.",
	Long: `Derive the AIRs of the configured chip complex, in registration order,
	 together with the fingerprint binding them.  Two parties agreeing on the
	 fingerprint agree on every matrix layout and bus endpoint.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig(cmd)
		//
		machine, err := chip.NewVM(cfg)
		//
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		//
		keys := air.KeySet(machine.Registry())
		//
		for _, key := range keys {
			fmt.Println(key.String())
		}
		//
		fmt.Printf("fingerprint %x\n", air.Fingerprint(keys))
	},
}

func init() {
	rootCmd.AddCommand(keysCmd)
}
