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
	"testing"

	"github.com/quantrel/go-quantrel/pkg/ast"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniverse(t *testing.T) {
	u, err := NewUniverse([]string{"a", "b", "c"})
	require.NoError(t, err)

	assert.Equal(t, 3, u.Size())
	assert.Equal(t, "b", u.Atom(1))

	i, ok := u.Index("c")
	assert.True(t, ok)
	assert.Equal(t, 2, i)

	_, ok = u.Index("z")
	assert.False(t, ok)

	_, err = NewUniverse([]string{"a", "a"})
	assert.Error(t, err)
}

func TestTupleSetFlattening(t *testing.T) {
	u, err := NewUniverse([]string{"a", "b", "c"})
	require.NoError(t, err)

	ts := NewTupleSet(u, 2)
	assert.Equal(t, 9, ts.Capacity())

	require.NoError(t, ts.AddTuple("a", "b"))
	require.NoError(t, ts.AddTuple("c", "a"))

	assert.Equal(t, 2, ts.Size())
	assert.True(t, ts.Contains(1))
	assert.True(t, ts.Contains(6))

	assert.Equal(t, []string{"c", "a"}, ts.Tuple(6))

	assert.Error(t, ts.AddTuple("a"))
	assert.Error(t, ts.AddTuple("a", "z"))
}

func TestTupleSetWeights(t *testing.T) {
	u, err := NewUniverse([]string{"a", "b"})
	require.NoError(t, err)

	ts := NewTupleSet(u, 1)
	ts.AddWeighted(0, decimal.NewFromFloat(0.5))
	ts.Add(1)

	assert.True(t, ts.Weighted())
	assert.True(t, ts.Weight(0).Equal(decimal.NewFromFloat(0.5)))
	// Unweighted tuples default to one.
	assert.True(t, ts.Weight(1).Equal(decimal.NewFromInt(1)))

	clone := ts.Clone()
	assert.True(t, clone.Equals(ts))
	assert.True(t, clone.Weight(0).Equal(decimal.NewFromFloat(0.5)))
}

func TestBoundsValidation(t *testing.T) {
	u, err := NewUniverse([]string{"a", "b"})
	require.NoError(t, err)

	r := ast.NewRelation("R", 1)
	bounds := NewBounds(u)

	lower := NewTupleSet(u, 1)
	lower.Add(0)

	upper := NewTupleSet(u, 1)
	upper.Add(1)

	// Lower must be contained in upper.
	assert.Error(t, bounds.Bound(r, lower, upper))

	upper.Add(0)
	require.NoError(t, bounds.Bound(r, lower, upper))

	assert.Same(t, lower, bounds.Lower(r))
	assert.Same(t, upper, bounds.Upper(r))
	assert.False(t, bounds.Exact())

	// Arity mismatches are rejected.
	s := ast.NewRelation("S", 2)
	assert.Error(t, bounds.Bound(s, NewTupleSet(u, 1), NewTupleSet(u, 1)))
}

func TestInstanceRoundTrip(t *testing.T) {
	u, err := NewUniverse([]string{"a", "b"})
	require.NoError(t, err)

	r := ast.NewQuantitativeRelation("R", 1)

	ts := NewTupleSet(u, 1)
	ts.AddWeighted(0, decimal.NewFromFloat(0.5))

	inst := NewInstance(u)
	inst.Add(r, ts)

	bounds := inst.Bounds()
	assert.True(t, bounds.Exact())
	assert.Same(t, ts, bounds.Lower(r))
	assert.Same(t, ts, bounds.Upper(r))
}
