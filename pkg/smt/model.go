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
package smt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/quantrel/go-quantrel/pkg/faults"
	"github.com/quantrel/go-quantrel/pkg/sexp"
	"github.com/shopspring/decimal"
)

// model holds the values a solver assigned to the function symbols of the
// most recent sat response.  A Real assigned as a fraction is stored both as
// its decimal value and as its original (/ num denom) syntax, so blocking can
// reuse the exact representation.
type model struct {
	nums      map[int]decimal.Decimal
	fractions map[int]string
	bools     map[int]bool
}

func newModel() *model {
	return &model{
		nums:      make(map[int]decimal.Decimal),
		fractions: make(map[int]string),
		bools:     make(map[int]bool),
	}
}

func (m *model) contains(label int) bool {
	_, isNum := m.nums[label]
	_, isBool := m.bools[label]

	return isNum || isBool
}

// parseModel reads a (model (define-fun ...)+) response, in any of the
// layouts the supported solvers produce: a wrapping model list, bare
// define-fun lists, or definitions broken over several lines.
func parseModel(text string) (*model, error) {
	terms, err := sexp.ParseAll(text)
	if err != nil {
		return nil, faults.NewSolver(faults.Protocol, "unparsable model response: %v", err)
	}

	m := newModel()

	for _, term := range terms {
		list, ok := term.(*sexp.List)
		if !ok {
			continue
		}

		if list.MatchSymbols(1, "define-fun") {
			if err := m.define(list); err != nil {
				return nil, err
			}

			continue
		}
		// Either (model (define-fun ...)+) or, from newer solvers, a bare
		// list of definitions.
		inner := list.Elements
		if list.MatchSymbols(1, "model") {
			inner = inner[1:]
		}

		for _, elem := range inner {
			if def, ok := elem.(*sexp.List); ok {
				if err := m.define(def); err != nil {
					return nil, err
				}
			}
		}
	}

	return m, nil
}

// define reads one (define-fun id () sort value) entry.
func (m *model) define(list *sexp.List) error {
	if !list.MatchSymbols(1, "define-fun") || list.Len() < 5 {
		return nil
	}

	id, ok := sexp.SymbolValue(list.Elements[1])
	if !ok {
		return nil
	}

	label, err := parseLabel(id)
	if err != nil {
		// Solver-internal symbols are not ours to read.
		return nil
	}

	sort, _ := sexp.SymbolValue(list.Elements[3])
	value := list.Elements[4]

	switch sort {
	case "Bool":
		s, _ := sexp.SymbolValue(value)
		m.bools[label] = s == "true"
	case "Int", "Real":
		d, fraction, err := evalNum(value)
		if err != nil {
			return faults.NewSolver(faults.Protocol, "unparsable %s value %s for %s", sort, value, id)
		}

		m.nums[label] = d

		if fraction != "" {
			m.fractions[label] = fraction
		}
	}

	return nil
}

// parseLabel strips non-digits from a function symbol name to recover the
// primary variable label.
func parseLabel(id string) (int, error) {
	var digits strings.Builder

	for _, c := range id {
		if (c >= '0' && c <= '9') || c == '-' {
			digits.WriteRune(c)
		}
	}

	return strconv.Atoi(digits.String())
}

// evalNum reads a numeric model value: a plain numeral, a negation, or a
// fraction.  Fractions additionally return their original syntax.
func evalNum(e sexp.SExp) (decimal.Decimal, string, error) {
	switch e := e.(type) {
	case *sexp.Symbol:
		d, err := decimal.NewFromString(strings.TrimSuffix(e.Value, "?"))
		return d, "", err

	case *sexp.List:
		if e.MatchSymbols(1, "-") && e.Len() == 2 {
			d, fraction, err := evalNum(e.Elements[1])
			if fraction != "" {
				fraction = fmt.Sprintf("(- %s)", fraction)
			}

			return d.Neg(), fraction, err
		}

		if e.MatchSymbols(1, "/") && e.Len() == 3 {
			num, _, err := evalNum(e.Elements[1])
			if err != nil {
				return decimal.Zero, "", err
			}

			denom, _, err := evalNum(e.Elements[2])
			if err != nil {
				return decimal.Zero, "", err
			}

			return num.DivRound(denom, 20), e.String(), nil
		}
	}

	return decimal.Zero, "", fmt.Errorf("unexpected numeric syntax %s", e)
}
