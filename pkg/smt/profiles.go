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
	"strings"
)

// SolverKind identifies a supported external SMT solver.
type SolverKind uint8

// Supported solvers.
const (
	// Z3 is the Z3 theorem prover.
	Z3 SolverKind = iota
	// MathSAT is the MathSAT 5 solver.
	MathSAT
	// CVC4 is the CVC4 solver.
	CVC4
	// Yices is the Yices 2 solver.
	Yices
)

func (k SolverKind) String() string {
	switch k {
	case Z3:
		return "Z3"
	case MathSAT:
		return "MathSAT"
	case CVC4:
		return "CVC4"
	default:
		return "Yices"
	}
}

// ParseSolverKind returns the solver with the given (case-insensitive) name.
func ParseSolverKind(name string) (SolverKind, bool) {
	switch strings.ToUpper(name) {
	case "Z3":
		return Z3, true
	case "MATHSAT":
		return MathSAT, true
	case "CVC4":
		return CVC4, true
	case "YICES":
		return Yices, true
	}

	return Z3, false
}

// profile captures the per-solver quirks: how to locate the binary, which
// flags to pass, whether a live session supports further (assert ...)s, and
// the option preamble the solver expects.
type profile struct {
	name string
	// Environment variable consulted for the binary path.
	envVar string
	// Last-resort binary location.
	fallback string
	// Whether the solver can be driven incrementally over stdin.
	incremental bool
	// Command-line arguments, depending on the solving mode.
	command func(incremental bool) []string
	// Option/logic preamble prepended to the assertion stack.
	header func(logic string) string
}

func (k SolverKind) profile() profile {
	switch k {
	case Z3:
		return profile{
			name:        "Z3",
			envVar:      "Z3_DIR",
			fallback:    "./z3",
			incremental: true,
			command: func(incremental bool) []string {
				if incremental {
					return []string{"-in"}
				}

				return nil
			},
			header: func(logic string) string {
				return fmt.Sprintf("(set-logic %s)\n", logic) +
					"(set-option :produce-models true)\n" +
					// Sixteen decimal places during solving.
					"(set-option :pp.decimal true)\n" +
					"(set-option :pp.decimal_precision 16)\n"
			},
		}
	case MathSAT:
		// MathSAT is re-fed the full problem per solve.
		return profile{
			name:     "MathSAT",
			envVar:   "MathSAT_DIR",
			fallback: "./mathsat",
			command:  func(bool) []string { return nil },
			header: func(logic string) string {
				return fmt.Sprintf("(set-logic %s)\n(set-option :produce-models true)\n", logic)
			},
		}
	case CVC4:
		return profile{
			name:     "CVC4",
			envVar:   "CVC4_DIR",
			fallback: "./cvc4",
			command:  func(bool) []string { return []string{"--lang", "smtlib2.6"} },
			header: func(logic string) string {
				return fmt.Sprintf("(set-logic %s)\n(set-option :produce-models true)\n", logic)
			},
		}
	default: // Yices
		return profile{
			name:        "Yices",
			envVar:      "Yices_DIR",
			fallback:    "./yices",
			incremental: true,
			command: func(incremental bool) []string {
				if incremental {
					return []string{"--incremental", "--smt2-model-format"}
				}

				return []string{"--smt2-model-format"}
			},
			header: func(logic string) string {
				return fmt.Sprintf("(set-option :produce-models true)\n(set-logic %s)\n", logic)
			},
		}
	}
}
