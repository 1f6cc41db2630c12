// Copyright Quantrel Contributors
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

// Package instance holds the ground data of a quantitative relational
// problem: universes of named atoms, (weighted) tuple sets, relation bounds,
// and the weighted instances produced by solving.
package instance

import (
	"github.com/quantrel/go-quantrel/pkg/faults"
)

// Universe is an ordered collection of uniquely named atoms.  Tuple indices
// throughout the engine are flat, row-major coordinates over this ordering.
type Universe struct {
	atoms []string
	index map[string]int
}

// NewUniverse constructs a universe over the given atom names.
func NewUniverse(atoms []string) (*Universe, error) {
	index := make(map[string]int, len(atoms))

	for i, atom := range atoms {
		if _, ok := index[atom]; ok {
			return nil, faults.NewTranslation(faults.InvalidBounds, "duplicate atom %q", atom)
		}

		index[atom] = i
	}

	return &Universe{atoms, index}, nil
}

// Size returns the number of atoms.
func (u *Universe) Size() int { return len(u.atoms) }

// Atom returns the name of the ith atom.
func (u *Universe) Atom(i int) string { return u.atoms[i] }

// Atoms returns the atom names in order.
func (u *Universe) Atoms() []string { return u.atoms }

// Index returns the position of the named atom.
func (u *Universe) Index(atom string) (int, bool) {
	i, ok := u.index[atom]
	return i, ok
}
