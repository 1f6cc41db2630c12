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
package solver

import (
	"github.com/quantrel/go-quantrel/pkg/faults"
	"github.com/quantrel/go-quantrel/pkg/instance"
	"github.com/quantrel/go-quantrel/pkg/smt"
	"github.com/quantrel/go-quantrel/pkg/translate"
	"github.com/shopspring/decimal"
)

var oneWeight = decimal.NewFromInt(1)

// lift reads the solver's model back into a weighted instance.  For each
// relation, the tuples of its upper bound are walked in order against its
// primary variable range: a variable reported true contributes its tuple
// with the model's weight.  Lower-bound tuples always carry weight one
// unless the model assigned them more.
func lift(tr *translate.Translation, driver *smt.Driver) (*instance.Instance, error) {
	bounds := tr.Bounds()
	inst := instance.NewInstance(bounds.Universe())

	for _, r := range bounds.Relations() {
		lower, upper := bounds.Lower(r), bounds.Upper(r)
		tuples := instance.NewTupleSet(bounds.Universe(), r.Arity())

		for index := range lower.All() {
			tuples.Add(index)
		}

		if vars, ok := tr.PrimaryVars(r); ok {
			label := vars.Min

			for index := range upper.All() {
				if driver.Contains(label) {
					present, err := driver.BoolValue(label)
					if err != nil {
						return nil, err
					}

					if present {
						weight, err := driver.Value(label)
						if err != nil {
							return nil, err
						}

						tuples.AddWeighted(index, weight)
					}
				}

				label++
			}
		}

		if !r.IsQuantitative() {
			for index := range tuples.All() {
				if !tuples.Weight(index).Equal(oneWeight) {
					return nil, &faults.Lift{Kind: faults.BooleanWithWeights,
						Message: r.Name()}
				}
			}
		}

		inst.Add(r, tuples)
	}

	return inst, nil
}
