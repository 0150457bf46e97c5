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
package trace

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
)

// Matrix accumulates the trace rows of one chip: an ordered sequence of
// fixed-width vectors of field elements.  Rows are appended during execution
// and the matrix is padded (to the height the proving backend requires) only
// afterwards, by the assembler.
type Matrix struct {
	// Name of the owning chip.
	name string
	// Fixed row width.
	width uint
	// Row appended when padding this matrix.  Padding rows must satisfy the
	// owning chip's constraints trivially and carry zero multiplicities, so
	// they contribute nothing to any bus.
	padding []fr.Element
	rows    [][]fr.Element
}

// NewMatrix constructs an empty matrix of the given width for the named chip,
// using the given padding row.
func NewMatrix(name string, width uint, padding []fr.Element) *Matrix {
	if padding != nil && uint(len(padding)) != width {
		panic(fmt.Sprintf("padding row width %d does not match matrix width %d", len(padding), width))
	}
	//
	return &Matrix{name: name, width: width, padding: padding}
}

// Name returns the name of the chip which owns this matrix.
func (p *Matrix) Name() string {
	return p.name
}

// Width returns the fixed row width of this matrix.
func (p *Matrix) Width() uint {
	return p.width
}

// Height returns the current number of rows.
func (p *Matrix) Height() uint {
	return uint(len(p.rows))
}

// PaddingRow returns the row used to pad this matrix, or nil if the matrix
// pads by replaying its last row.
func (p *Matrix) PaddingRow() []fr.Element {
	return p.padding
}

// Append adds a row to this matrix.  The row is captured, not copied, and
// must have the matrix's width.
func (p *Matrix) Append(row []fr.Element) {
	// Sanity check row shape
	if uint(len(row)) != p.width {
		panic(fmt.Sprintf("row width %d does not match matrix %s width %d", len(row), p.name, p.width))
	}
	//
	p.rows = append(p.rows, row)
}

// Row returns the ith row of this matrix.
func (p *Matrix) Row(index uint) []fr.Element {
	return p.rows[index]
}

// Rows returns all rows of this matrix in order.
func (p *Matrix) Rows() [][]fr.Element {
	return p.rows
}

// Pad extends this matrix to the given height with padding rows.  If the
// matrix declares no explicit padding row, its last row is replayed; an empty
// matrix without a padding row pads with zero rows.
func (p *Matrix) Pad(height uint) {
	row := p.padding
	//
	if row == nil && len(p.rows) > 0 {
		row = p.rows[len(p.rows)-1]
	} else if row == nil {
		row = make([]fr.Element, p.width)
	}
	//
	for p.Height() < height {
		p.rows = append(p.rows, row)
	}
}
