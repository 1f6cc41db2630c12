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

// Package smt serialises numeric circuits into SMT-LIB v2.6 problems, drives
// an external solver over them, and parses the models it returns.
package smt

// Logic names emitted with (set-logic ...).
const (
	// LogicInteger is the logic used in the integer domain.
	LogicInteger = "QF_UFLIA"
	// LogicFuzzy is the logic used in the fuzzy domain.
	LogicFuzzy = "QF_UFLRA"
)

// Specification is an SMT-LIB v2.6 problem: the assertion stack, the
// bookkeeping needed to lift and block models, and the solving
// characteristics requested by the caller.
type Specification struct {
	// Logic to be declared during solving.
	Logic string
	// Declarations and assertions, without any solving options.
	Body string
	// NumFS names the numeric function symbol of each primary variable
	// label, for model blocking.
	NumFS map[int]string
	// NumVariables is the number of primary variables declared.
	NumVariables int
	// NumFunctionSymbols is the total number of function symbols (declared
	// and defined).
	NumFunctionSymbols int
	// NumAssertions is the number of assertions on the stack.
	NumAssertions int
	// Incremental requests the solver be driven over a live session.
	Incremental bool
	// Trivial marks a problem decided during translation; TrivialValue holds
	// its verdict.
	Trivial      bool
	TrivialValue bool
}
