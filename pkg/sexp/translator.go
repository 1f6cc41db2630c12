package sexp

import (
	"errors"
	"fmt"
)

// SymbolRule is responsible for converting a terminating expression (i.e. a
// symbol) into a value of type T.  For example, a number or an atom name.
type SymbolRule[T any] func(string) (T, error)

// ListRule is responsible for converting a list with a given sequence of zero
// or more arguments into a value of type T.  The head of the list (which
// selected this rule) is included in the elements.
type ListRule[T any] func([]SExp) (T, error)

// RecursiveRule is a wrapper for translating lists whose elements are built by
// recursively reusing the enclosing translator.
type RecursiveRule[T any] func([]T) (T, error)

// Translator is a generic mechanism for translating S-Expressions into a
// structured form.
type Translator[T any] struct {
	lists   map[string]ListRule[T]
	symbols []SymbolRule[T]
}

// NewTranslator constructs a new Translator instance.
func NewTranslator[T any]() *Translator[T] {
	return &Translator[T]{
		lists:   make(map[string]ListRule[T]),
		symbols: make([]SymbolRule[T], 0),
	}
}

// ParseAndTranslate a given string into a given structured representation T
// using an appropriately configured translator.
func (p *Translator[T]) ParseAndTranslate(s string) (T, error) {
	// Parse string into S-expression form
	e, err := Parse(s)
	if err != nil {
		var empty T
		return empty, err
	}
	// Process S-expression into target expression.
	return p.Translate(e)
}

// Translate a given S-expression into a given structured representation T
// using an appropriately configured translator.
func (p *Translator[T]) Translate(sexp SExp) (T, error) {
	var empty T

	switch e := sexp.(type) {
	case *List:
		return p.translateList(e.Elements)
	case *Symbol:
		for i := 0; i != len(p.symbols); i++ {
			ir, err := (p.symbols[i])(e.Value)
			if err == nil {
				return ir, err
			}
		}

		return empty, fmt.Errorf("unknown symbol %q", e.Value)
	}

	return empty, errors.New("invalid S-Expression")
}

// AddRecursiveRule adds a new list rule to this translator, whose arguments
// are themselves translated before the rule fires.
func (p *Translator[T]) AddRecursiveRule(name string, t RecursiveRule[T]) {
	// Construct a recursive list rule as a wrapper around a generic list rule.
	p.lists[name] = func(elements []SExp) (T, error) {
		var (
			empty T
			err   error
		)
		// Translate arguments
		args := make([]T, len(elements)-1)
		for i, s := range elements[1:] {
			args[i], err = p.Translate(s)
			if err != nil {
				return empty, err
			}
		}

		return t(args)
	}
}

// AddListRule adds a new raw list rule to this translator.
func (p *Translator[T]) AddListRule(name string, t ListRule[T]) {
	p.lists[name] = t
}

// AddSymbolRule adds a new symbol rule to this translator.  Symbol rules are
// attempted in order of registration, first success wins.
func (p *Translator[T]) AddSymbolRule(t SymbolRule[T]) {
	p.symbols = append(p.symbols, t)
}

// Translate a list of S-Expressions by dispatching on the symbol at its head.
func (p *Translator[T]) translateList(elements []SExp) (T, error) {
	var empty T
	// Sanity check this list makes sense
	if len(elements) == 0 || !elements[0].IsSymbol() {
		return empty, errors.New("invalid list")
	}
	// Extract expression name
	name := (elements[0].(*Symbol)).Value
	// Lookup appropriate rule
	if t, ok := p.lists[name]; ok {
		return t(elements)
	}
	// Default fall back
	return empty, fmt.Errorf("unknown list %q", name)
}
