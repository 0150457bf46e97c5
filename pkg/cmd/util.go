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
	"github.com/spf13/cobra"

	"github.com/proofwright/go-zvm/pkg/config"
	"github.com/proofwright/go-zvm/pkg/isa"
)

// GetFlag gets an expected flag, or panic if an error arises.
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetString gets an expected string flag, or panic if an error arises.
func GetString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetUint gets an expected uint flag, or panic if an error arises.
func GetUint(cmd *cobra.Command, flag string) uint {
	r, err := cmd.Flags().GetUint(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// readConfig loads the machine configuration named by the persistent config
// flag, falling back on the default configuration when the flag is unset.
func readConfig(cmd *cobra.Command) *config.Config {
	filename := GetString(cmd, "config")
	//
	if filename == "" {
		return config.Default()
	}
	//
	bytes, err := os.ReadFile(filename)
	//
	if err == nil {
		var cfg *config.Config
		//
		if cfg, err = config.FromJson(bytes); err == nil {
			return cfg
		}
	}
	// Handle error
	fmt.Println(err)
	os.Exit(2)
	// unreachable
	return nil
}

// readProgramFile parses a program file in the binary container format.
func readProgramFile(filename string) *isa.Program {
	bytes, err := os.ReadFile(filename)
	//
	if err == nil {
		var program *isa.Program
		//
		if program, err = isa.FromBytes(bytes); err == nil {
			return program
		}
	}
	// Handle error
	fmt.Println(err)
	os.Exit(2)
	// unreachable
	return nil
}

// readInputFile parses a JSON array of field values (given as decimal or
// hexadecimal strings, or plain numbers) forming the input stream.
func readInputFile(filename string) []fr.Element {
	var (
		raw    []json.RawMessage
		values []fr.Element
	)
	//
	bytes, err := os.ReadFile(filename)
	//
	if err == nil {
		err = json.Unmarshal(bytes, &raw)
	}
	//
	for i := 0; err == nil && i < len(raw); i++ {
		var (
			element fr.Element
			text    = string(raw[i])
		)
		// Strip quotes from string literals
		if len(text) >= 2 && text[0] == '"' {
			text = text[1 : len(text)-1]
		}
		//
		if _, err = element.SetString(text); err == nil {
			values = append(values, element)
		}
	}
	//
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	return values
}
