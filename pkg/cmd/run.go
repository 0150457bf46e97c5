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

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/proofwright/go-zvm/pkg/vm/chip"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] program.zvm",
	Short: "Execute a program.",
	Long: `Execute a program against a given input stream, reporting its exit code,
	 outputs and the shape of the resulting segment chain.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		// Configure log level
		if GetFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}
		//
		cfg := readConfig(cmd)
		//
		if GetFlag(cmd, "self-check") {
			cfg.SelfCheck = true
		}
		//
		if height := GetUint(cmd, "max-height"); height != 0 {
			cfg.MaxTraceHeight = height
		}
		//
		program := readProgramFile(args[0])
		//
		var input []fr.Element
		if filename := GetString(cmd, "input"); filename != "" {
			input = readInputFile(filename)
		}
		//
		machine, err := chip.NewVM(cfg)
		//
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		//
		result, err := machine.Run(program, input)
		//
		if err != nil {
			fmt.Println(err)
			os.Exit(3)
		}
		//
		fmt.Printf("exit code %d after %d segment(s)\n", result.ExitCode, len(result.Segments))
		//
		for i, value := range result.Outputs {
			fmt.Printf("out[%d] = %s\n", i, value.String())
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringP("input", "i", "", "input stream file (JSON array)")
	runCmd.Flags().Bool("self-check", false, "verify bus balance after every segment")
	runCmd.Flags().Uint("max-height", 0, "override the segment trace height bound")
}
