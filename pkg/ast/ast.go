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

// Package ast defines the relational formula trees consumed by the
// translator.  Nodes are tagged variants compared by identity: two
// occurrences of the same pointer denote a shared subterm.
package ast

// Node is any vertex of a relational formula tree.
type Node interface {
	node()
}

// Expr is a relational expression, denoting a weighted relation.
type Expr interface {
	Node
	// Arity returns the number of columns of the denoted relation.
	Arity() int
}

// Formula is a boolean-valued relational formula.
type Formula interface {
	Node
	formula()
}
