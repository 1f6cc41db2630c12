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
	"time"

	"github.com/quantrel/go-quantrel/pkg/instance"
)

// Verdict is the outcome of a solve.
type Verdict uint8

// Verdicts.
const (
	// SatVerdict means a model was found.
	SatVerdict Verdict = iota
	// UnsatVerdict means no model exists.
	UnsatVerdict
	// UnknownVerdict means the solver could not decide.  It is a verdict,
	// not an error, in a normal solve; it terminates enumeration.
	UnknownVerdict
)

func (v Verdict) String() string {
	switch v {
	case SatVerdict:
		return "sat"
	case UnsatVerdict:
		return "unsat"
	default:
		return "unknown"
	}
}

// Statistics reports the cost of a solve.
type Statistics struct {
	// TranslationTime is the wall-clock spent lowering the problem.
	TranslationTime time.Duration
	// SolvingTime is the wall-clock spent inside the solver.
	SolvingTime time.Duration
	// PrimaryVariables is the number of primary variables allocated.
	PrimaryVariables int
	// FunctionSymbols is the number of SMT function symbols emitted.
	FunctionSymbols int
	// Assertions is the number of assertions emitted.
	Assertions int
}

// Solution is the typed outcome of a solve: a verdict, the weighted instance
// on sat, and timing statistics.
type Solution struct {
	Verdict  Verdict
	Instance *instance.Instance
	Stats    Statistics
}
