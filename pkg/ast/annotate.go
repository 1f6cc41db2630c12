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
package ast

import "sort"

// Annotated wraps a formula tree with the structural information the
// translator's caching policy needs: which nodes occur more than once, and
// the free variables of every node.
type Annotated struct {
	root   Node
	counts map[Node]int
	free   map[Node][]*Variable
}

// Annotate computes sharing and free-variable information for the given tree.
func Annotate(root Node) *Annotated {
	a := &Annotated{
		root:   root,
		counts: make(map[Node]int),
		free:   make(map[Node][]*Variable),
	}
	a.count(root)
	a.freeVars(root)

	return a
}

// Root returns the annotated tree.
func (a *Annotated) Root() Node { return a.root }

// Shared reports whether the given node occurs more than once in the tree.
func (a *Annotated) Shared(n Node) bool { return a.counts[n] > 1 }

// FreeVars returns the free variables of the given node, ordered by name.
func (a *Annotated) FreeVars(n Node) []*Variable {
	return a.free[n]
}

// count records occurrences of each node, descending into a node only on its
// first visit.
func (a *Annotated) count(n Node) {
	a.counts[n]++
	if a.counts[n] > 1 {
		return
	}

	for _, child := range children(n) {
		a.count(child)
	}
}

// freeVars computes the free variables of a node bottom-up, removing
// variables bound by its declarations.
func (a *Annotated) freeVars(n Node) []*Variable {
	if vars, ok := a.free[n]; ok {
		return vars
	}

	set := make(map[*Variable]struct{})

	if v, ok := n.(*Variable); ok {
		set[v] = struct{}{}
	}

	for _, child := range children(n) {
		for _, v := range a.freeVars(child) {
			set[v] = struct{}{}
		}
	}

	for _, v := range boundVars(n) {
		delete(set, v)
	}

	vars := make([]*Variable, 0, len(set))
	for v := range set {
		vars = append(vars, v)
	}

	sort.Slice(vars, func(i, j int) bool { return vars[i].name < vars[j].name })

	a.free[n] = vars

	return vars
}

// Children returns the immediate subnodes of a node, declaration ranges
// included.
func Children(n Node) []Node { return children(n) }

// children returns the immediate subnodes of a node, declarations included.
func children(n Node) []Node {
	switch n := n.(type) {
	case *UnaryExpr:
		return []Node{n.sub}
	case *BinaryExpr:
		return []Node{n.left, n.right}
	case *AlphaCut:
		return []Node{n.sub}
	case *IfExpr:
		return []Node{n.cond, n.then, n.els}
	case *ProjectExpr:
		nodes := []Node{n.sub}
		for _, col := range n.cols {
			nodes = append(nodes, col)
		}

		return nodes
	case *Comprehension:
		return append(declNodes(n.decls), n.formula)
	case *QtComprehension:
		return append(declNodes(n.decls), n.body)
	case *SumExpr:
		return append(declNodes(n.decls), n.body)
	case *QuantFormula:
		return append(declNodes(n.decls), n.body)
	case *CompareFormula:
		return []Node{n.left, n.right}
	case *MultFormula:
		return []Node{n.sub}
	case *NotFormula:
		return []Node{n.sub}
	case *BinFormula:
		return []Node{n.left, n.right}
	case *NaryFormula:
		nodes := make([]Node, len(n.subs))
		for i, sub := range n.subs {
			nodes[i] = sub
		}

		return nodes
	default:
		// Leaves: Relation, Variable, ConstExpr, ConstInt, BoolLit.
		return nil
	}
}

func declNodes(decls []*Decl) []Node {
	nodes := make([]Node, len(decls))
	for i, d := range decls {
		nodes[i] = d.expr
	}

	return nodes
}

// boundVars returns the variables a node binds in its body.
func boundVars(n Node) []*Variable {
	var decls []*Decl

	switch n := n.(type) {
	case *Comprehension:
		decls = n.decls
	case *QtComprehension:
		decls = n.decls
	case *SumExpr:
		decls = n.decls
	case *QuantFormula:
		decls = n.decls
	default:
		return nil
	}

	vars := make([]*Variable, len(decls))
	for i, d := range decls {
		vars[i] = d.variable
	}

	return vars
}
