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
package translate

import (
	"github.com/quantrel/go-quantrel/pkg/ast"
	"github.com/quantrel/go-quantrel/pkg/matrix"
)

// Polarity tracks whether the formula position currently being translated
// sits under an even (ALL) or odd (SOME) number of negations.
type Polarity uint8

// Polarities.
const (
	// PolarityAll is the unflipped polarity.
	PolarityAll Polarity = iota
	// PolaritySome is the polarity under an odd number of negations.
	PolaritySome
)

// Flip returns the opposite polarity.
func (p Polarity) Flip() Polarity {
	if p == PolarityAll {
		return PolaritySome
	}

	return PolarityAll
}

// Environment is a stack of frames binding quantification variables to the
// unit matrix of the tuple they currently denote.  The empty environment is
// the bottom of every stack.
type Environment struct {
	parent   *Environment
	variable *ast.Variable
	value    *matrix.Matrix
	// Flat tuple index the variable is bound to; part of the translation
	// cache key.
	index    int
	polarity Polarity
}

// EmptyEnv returns the empty environment.
func EmptyEnv() *Environment {
	return &Environment{polarity: PolarityAll}
}

// Extend pushes a binding of the given variable onto this environment.
func (e *Environment) Extend(v *ast.Variable, value *matrix.Matrix, index int) *Environment {
	return &Environment{e, v, value, index, e.polarity}
}

// Lookup returns the matrix bound to the given variable, if any.
func (e *Environment) Lookup(v *ast.Variable) (*matrix.Matrix, bool) {
	for env := e; env != nil; env = env.parent {
		if env.variable == v {
			return env.value, true
		}
	}

	return nil, false
}

// IndexOf returns the tuple index the given variable is bound to, if any.
func (e *Environment) IndexOf(v *ast.Variable) (int, bool) {
	for env := e; env != nil; env = env.parent {
		if env.variable == v {
			return env.index, true
		}
	}

	return 0, false
}

// Polarity returns the polarity of the top frame.
func (e *Environment) Polarity() Polarity { return e.polarity }

// FlipPolarity flips the polarity of the top frame.  Called on entry to a
// negation and again on exit.
func (e *Environment) FlipPolarity() {
	e.polarity = e.polarity.Flip()
}
