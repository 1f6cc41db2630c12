package sexp

import "strings"

// SExp is an S-Expression: either a List of zero or more S-Expressions, or a
// terminating Symbol.  This is the exchange form for both the problem input
// format and SMT-LIB model responses.
type SExp interface {
	// IsList checks whether this S-Expression is a list.
	IsList() bool
	// IsSymbol checks whether this S-Expression is a symbol.
	IsSymbol() bool
	// String generates a string representation.
	String() string
}

// ===================================================================
// List
// ===================================================================

// List represents a list of zero or more S-Expressions.
type List struct {
	Elements []SExp
}

// NOTE: This is used for compile time type checking if the given type
// satisfies the given interface.
var _ SExp = (*List)(nil)

// IsList sets that is a list.
func (l *List) IsList() bool { return true }

// IsSymbol sets that a List is not a Symbol.
func (l *List) IsSymbol() bool { return false }

// Len gets the number of elements in this list.
func (l *List) Len() int { return len(l.Elements) }

func (l *List) String() string {
	var s strings.Builder

	s.WriteString("(")

	for i, e := range l.Elements {
		if i != 0 {
			s.WriteString(" ")
		}

		s.WriteString(e.String())
	}

	s.WriteString(")")

	return s.String()
}

// MatchSymbols matches a list which has at least n elements, of which the
// first m are symbols matching the given strings.
func (l *List) MatchSymbols(n int, symbols ...string) bool {
	if len(l.Elements) < n || len(symbols) > n {
		return false
	}

	for i := 0; i < len(symbols); i++ {
		switch ith := l.Elements[i].(type) {
		case *Symbol:
			if ith.Value != symbols[i] {
				return false
			}
		default:
			return false
		}
	}

	return true
}

// Symbols extracts the symbol values of this list, returning false if any
// element is not a symbol.
func (l *List) Symbols() ([]string, bool) {
	values := make([]string, len(l.Elements))

	for i, e := range l.Elements {
		s, ok := e.(*Symbol)
		if !ok {
			return nil, false
		}

		values[i] = s.Value
	}

	return values, true
}

// ===================================================================
// Symbol
// ===================================================================

// Symbol represents a terminating symbol.
type Symbol struct {
	Value string
}

// NOTE: This is used for compile time type checking if the given type
// satisfies the given interface.
var _ SExp = (*Symbol)(nil)

// IsList sets that a Symbol is not a List.
func (s *Symbol) IsList() bool { return false }

// IsSymbol sets that is a Symbol.
func (s *Symbol) IsSymbol() bool { return true }

func (s *Symbol) String() string { return s.Value }

// SymbolValue returns the value of the given expression if it is a symbol,
// and false otherwise.
func SymbolValue(e SExp) (string, bool) {
	if s, ok := e.(*Symbol); ok {
		return s.Value, true
	}

	return "", false
}
