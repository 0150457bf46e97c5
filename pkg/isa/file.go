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
package isa

import (
	"bytes"
	"encoding/binary"
	"errors"
)

// ZVMPROG is the identifier required of every program file.
var ZVMPROG = [8]byte{'z', 'v', 'm', 'p', 'r', 'o', 'g', 0}

// PROG_MAJOR_VERSION indicates the major version of the program file format.
// Files with a different major version are rejected.
const PROG_MAJOR_VERSION uint16 = 1

// PROG_MINOR_VERSION indicates the minor version of the program file format.
// Files with a newer minor version are rejected.
const PROG_MINOR_VERSION uint16 = 0

// Header provides a structured header for the binary program file format.  In
// particular, it supports versioning and embedded (binary) metadata.
type Header struct {
	Identifier   [8]byte
	MajorVersion uint16
	MinorVersion uint16
	MetaData     []byte
}

// IsCompatible determines whether a given program file is compatible with this
// version of the engine.
func (p *Header) IsCompatible() bool {
	return p.Identifier == ZVMPROG &&
		p.MajorVersion == PROG_MAJOR_VERSION &&
		p.MinorVersion <= PROG_MINOR_VERSION
}

// MarshalBinary converts the program file header into a sequence of bytes.
func (p *Header) MarshalBinary() ([]byte, error) {
	var (
		buffer     bytes.Buffer
		majorBytes [2]byte
		minorBytes [2]byte
		metaLength [4]byte
	)
	// Marshall version numbers
	binary.BigEndian.PutUint16(majorBytes[:], p.MajorVersion)
	binary.BigEndian.PutUint16(minorBytes[:], p.MinorVersion)
	binary.BigEndian.PutUint32(metaLength[:], uint32(len(p.MetaData)))
	// Write identifier
	buffer.Write(p.Identifier[:])
	// Write major version
	buffer.Write(majorBytes[:])
	// Write minor version
	buffer.Write(minorBytes[:])
	// Write metadata length
	buffer.Write(metaLength[:])
	// Write metadata itself
	buffer.Write(p.MetaData)
	// Done
	return buffer.Bytes(), nil
}

// UnmarshalBinary initialises this program file header from a given set of
// data bytes.  This should match exactly the encoding above.
func (p *Header) UnmarshalBinary(buffer *bytes.Buffer) error {
	var (
		majorBytes      [2]byte
		minorBytes      [2]byte
		metaLengthBytes [4]byte
	)
	// Read identifier
	if n, err := buffer.Read(p.Identifier[:]); err != nil {
		return err
	} else if n != 8 {
		return errors.New("malformed program file")
	}
	// Read major version
	if n, err := buffer.Read(majorBytes[:]); err != nil {
		return err
	} else if n != len(majorBytes) {
		return errors.New("malformed program file")
	}
	// Read minor version
	if n, err := buffer.Read(minorBytes[:]); err != nil {
		return err
	} else if n != len(minorBytes) {
		return errors.New("malformed program file")
	}
	// Read metadata length
	if n, err := buffer.Read(metaLengthBytes[:]); err != nil {
		return err
	} else if n != len(metaLengthBytes) {
		return errors.New("malformed program file")
	}
	// Make space for the metadata
	var (
		metaLength        = binary.BigEndian.Uint32(metaLengthBytes[:])
		metaBytes  []byte = make([]byte, metaLength)
	)
	// Read metadata itself
	if n, err := buffer.Read(metaBytes[:]); err != nil && metaLength != 0 {
		return err
	} else if n != len(metaBytes) {
		return errors.New("malformed program file")
	}
	// Finally assign everything over
	p.MajorVersion = binary.BigEndian.Uint16(majorBytes[:])
	p.MinorVersion = binary.BigEndian.Uint16(minorBytes[:])
	p.MetaData = metaBytes
	// Done
	return nil
}

// ToBytes converts a program image into a complete program file, including the
// format header.
func ToBytes(program *Program) ([]byte, error) {
	var buffer bytes.Buffer
	//
	header := Header{
		Identifier:   ZVMPROG,
		MajorVersion: PROG_MAJOR_VERSION,
		MinorVersion: PROG_MINOR_VERSION,
	}
	//
	headerBytes, err := header.MarshalBinary()
	if err != nil {
		return nil, err
	}
	//
	buffer.Write(headerBytes)
	buffer.Write(program.encode())
	// Done
	return buffer.Bytes(), nil
}

// FromBytes parses a complete program file (header plus image), rejecting
// incompatible versions.
func FromBytes(data []byte) (*Program, error) {
	var (
		buffer = bytes.NewBuffer(data)
		header Header
	)
	//
	if err := header.UnmarshalBinary(buffer); err != nil {
		return nil, err
	}
	// Sanity check compatibility
	if !header.IsCompatible() {
		return nil, errors.New("incompatible program file version")
	}
	//
	return decodeProgram(buffer.Bytes())
}
