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
)

// Cache manages the caching policy for a translation: which nodes are worth
// caching and under which variable bindings a cached value applies.  A record
// is installed only for shareable nodes, i.e. nodes occurring more than once
// in the annotated tree.
type Cache struct {
	annotated *ast.Annotated
	records   map[ast.Node]record
}

// NewCache constructs a cache for the given annotated tree.
func NewCache(annotated *ast.Annotated) *Cache {
	c := &Cache{annotated, make(map[ast.Node]record)}
	c.collect(annotated.Root())

	return c
}

func (c *Cache) collect(n ast.Node) {
	if _, ok := c.records[n]; ok {
		return
	}

	if c.annotated.Shared(n) {
		if free := c.annotated.FreeVars(n); len(free) == 0 {
			c.records[n] = &noVarRecord{}
		} else {
			c.records[n] = &multiVarRecord{vars: free}
		}
	}

	for _, child := range ast.Children(n) {
		c.collect(child)
	}
}

// Lookup returns the cached translation of the given node under the current
// bindings of its free variables, if present.
func (c *Cache) Lookup(n ast.Node, env *Environment) (any, bool) {
	if r, ok := c.records[n]; ok {
		return r.get(env)
	}

	return nil, false
}

// Store caches the given translation for the node if the node is shareable,
// and otherwise does nothing.  Returns the translation.
func (c *Cache) Store(n ast.Node, translation any, env *Environment) any {
	if r, ok := c.records[n]; ok {
		r.set(translation, env)
	}

	return translation
}

// record stores translations of a single node.
type record interface {
	get(env *Environment) (any, bool)
	set(translation any, env *Environment)
}

// noVarRecord caches the translation of a node with no free variables, which
// is environment independent.
type noVarRecord struct {
	value any
	ok    bool
}

func (r *noVarRecord) get(*Environment) (any, bool) {
	return r.value, r.ok
}

func (r *noVarRecord) set(translation any, _ *Environment) {
	r.value, r.ok = translation, true
}

// multiVarRecord caches translations of a node with free variables, keyed by
// the tuple indices those variables are bound to.
type multiVarRecord struct {
	vars    []*ast.Variable
	entries []multiVarEntry
}

type multiVarEntry struct {
	indices []int
	value   any
}

// key resolves the current binding of every free variable; a variable with no
// binding defeats the cache.
func (r *multiVarRecord) key(env *Environment) ([]int, bool) {
	indices := make([]int, len(r.vars))

	for i, v := range r.vars {
		index, ok := env.IndexOf(v)
		if !ok {
			return nil, false
		}

		indices[i] = index
	}

	return indices, true
}

func (r *multiVarRecord) get(env *Environment) (any, bool) {
	key, ok := r.key(env)
	if !ok {
		return nil, false
	}

outer:
	for _, e := range r.entries {
		for i := range key {
			if e.indices[i] != key[i] {
				continue outer
			}
		}

		return e.value, true
	}

	return nil, false
}

func (r *multiVarRecord) set(translation any, env *Environment) {
	if key, ok := r.key(env); ok {
		r.entries = append(r.entries, multiVarEntry{key, translation})
	}
}
