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
package instance

import (
	"fmt"
	"strings"

	"github.com/quantrel/go-quantrel/pkg/ast"
)

// Instance is a weighted relational instance: a binding of each relation to a
// weighted tuple set.  Weights are integers or decimals depending on the
// solving domain; a boolean relation only carries weight one.
type Instance struct {
	universe  *Universe
	relations []*ast.Relation
	tuples    map[*ast.Relation]*TupleSet
}

// NewInstance constructs an empty instance over the given universe.
func NewInstance(universe *Universe) *Instance {
	return &Instance{
		universe: universe,
		tuples:   make(map[*ast.Relation]*TupleSet),
	}
}

// Universe returns the universe of this instance.
func (i *Instance) Universe() *Universe { return i.universe }

// Relations returns the relations of this instance, in binding order.
func (i *Instance) Relations() []*ast.Relation { return i.relations }

// Add binds a relation to its tuples.
func (i *Instance) Add(r *ast.Relation, tuples *TupleSet) {
	if _, ok := i.tuples[r]; !ok {
		i.relations = append(i.relations, r)
	}

	i.tuples[r] = tuples
}

// Tuples returns the tuples of the given relation, or nil if unbound.
func (i *Instance) Tuples(r *ast.Relation) *TupleSet { return i.tuples[r] }

// Bounds returns exact bounds reproducing this instance, suitable for
// re-translation.
func (i *Instance) Bounds() *Bounds {
	bounds := NewBounds(i.universe)
	for _, r := range i.relations {
		// Exact bounds never fail validation.
		_ = bounds.BoundExactly(r, i.tuples[r])
	}

	return bounds
}

func (i *Instance) String() string {
	var s strings.Builder

	for _, r := range i.relations {
		fmt.Fprintf(&s, "%s = {", r.Name())

		ts := i.tuples[r]
		sep := ""

		for index := range ts.All() {
			fmt.Fprintf(&s, "%s%v", sep, ts.Tuple(index))

			if w := ts.Weight(index); !w.Equal(one) {
				fmt.Fprintf(&s, "->%s", w)
			}

			sep = ", "
		}

		s.WriteString("}\n")
	}

	return s.String()
}
