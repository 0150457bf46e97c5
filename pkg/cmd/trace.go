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
	"encoding/json"
	"fmt"
	"os"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/proofwright/go-zvm/pkg/trace"
	"github.com/proofwright/go-zvm/pkg/vm/chip"
)

var traceCmd = &cobra.Command{
	Use:   "trace [flags] program.zvm",
	Short: "Execute a program and assemble its proving input.",
	Long: `Execute a program, pad every chip matrix of every segment to a power-of-two
	 height and report (or write) the assembled matrices.`,
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
		output := GetString(cmd, "output")
		assembled := make([]*trace.ProvingInput, len(result.Segments))
		//
		for i, segment := range result.Segments {
			assembled[i] = trace.Assemble(segment.Matrices, segment.Messages)
			//
			for _, matrix := range assembled[i].Matrices {
				fmt.Printf("segment %d: %s %dx%d\n", i, matrix.Name(), matrix.Height(), matrix.Width())
			}
		}
		//
		if output != "" {
			writeTraceFile(output, assembled)
		}
	},
}

// writeTraceFile serialises assembled segments as JSON, each matrix given as
// rows of decimal strings.
func writeTraceFile(filename string, assembled []*trace.ProvingInput) {
	segments := make([]map[string][][]string, len(assembled))
	//
	for i, input := range assembled {
		segments[i] = make(map[string][][]string)
		//
		for _, matrix := range input.Matrices {
			rows := make([][]string, matrix.Height())
			//
			for r := uint(0); r < matrix.Height(); r++ {
				row := matrix.Row(r)
				rows[r] = make([]string, len(row))
				//
				for c, value := range row {
					rows[r][c] = value.String()
				}
			}
			//
			segments[i][matrix.Name()] = rows
		}
	}
	//
	bytes, err := json.Marshal(segments)
	//
	if err == nil {
		err = os.WriteFile(filename, bytes, 0644)
	}
	//
	if err != nil {
		fmt.Println(err)
		os.Exit(4)
	}
}

func init() {
	rootCmd.AddCommand(traceCmd)
	traceCmd.Flags().StringP("input", "i", "", "input stream file (JSON array)")
	traceCmd.Flags().StringP("output", "o", "", "write assembled matrices to file (JSON)")
}
