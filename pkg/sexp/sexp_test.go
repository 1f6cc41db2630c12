package sexp

import (
	"testing"
)

func TestSexp_01(t *testing.T) {
	CheckOk(t, Symbols("x")[0], "x")
}

func TestSexp_02(t *testing.T) {
	CheckOk(t, Symbols("xyz")[0], "xyz")
}

func TestSexp_03(t *testing.T) {
	CheckOk(t, List_(), "()")
}

func TestSexp_04(t *testing.T) {
	CheckOk(t, List_(Symbols("x")...), "(x)")
}

func TestSexp_05(t *testing.T) {
	CheckOk(t, List_(Symbols("x", "y")...), "(x y)")
}

func TestSexp_06(t *testing.T) {
	CheckOk(t, List_(Symbols("define-fun", "v12")...), "(define-fun v12)")
}

func TestSexp_07(t *testing.T) {
	inner := List_(Symbols("/", "1.0", "2.0")...)
	CheckOk(t, List_(&Symbol{"="}, inner), "(= (/ 1.0 2.0))")
}

func TestSexp_08(t *testing.T) {
	CheckOk(t, List_(Symbols("x")...), "(x ; comment\n)")
}

func TestSexp_09(t *testing.T) {
	// String literals lose their quotes.
	CheckOk(t, Symbols("finished")[0], "\"finished\"")
}

func TestSexp_Err_01(t *testing.T) {
	CheckErr(t, "(")
}

func TestSexp_Err_02(t *testing.T) {
	CheckErr(t, ")")
}

func TestSexp_Err_03(t *testing.T) {
	CheckErr(t, "(x) y")
}

func TestSexpAll(t *testing.T) {
	terms, err := ParseAll("(a b) (c)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(terms) != 2 {
		t.Errorf("expected 2 terms, got %d", len(terms))
	}
}

func TestSexpMatchSymbols(t *testing.T) {
	term, err := Parse("(define-fun v0 () Real 0.5)")
	if err != nil {
		t.Fatal(err)
	}

	list := term.(*List)
	if !list.MatchSymbols(1, "define-fun") {
		t.Errorf("expected define-fun match")
	}

	if list.MatchSymbols(1, "declare-fun") {
		t.Errorf("unexpected declare-fun match")
	}
}

func TestSexpTranslator(t *testing.T) {
	tr := NewTranslator[int]()
	tr.AddSymbolRule(func(s string) (int, error) {
		return len(s), nil
	})
	tr.AddRecursiveRule("+", func(args []int) (int, error) {
		sum := 0
		for _, a := range args {
			sum += a
		}

		return sum, nil
	})

	value, err := tr.ParseAndTranslate("(+ ab cde f)")
	if err != nil {
		t.Fatal(err)
	}

	if value != 6 {
		t.Errorf("expected 6, got %d", value)
	}
}

// ===================================================================
// Helpers
// ===================================================================

// CheckOk checks that a given input string parses into the expected
// S-expression.
func CheckOk(t *testing.T, sexp1 SExp, input string) {
	sexp2, err := Parse(input)

	if err != nil {
		t.Error(err)
	} else if !equals(sexp1, sexp2) {
		t.Errorf("expected %s, got %s", sexp1, sexp2)
	}
}

// CheckErr checks that a given input fails to parse.
func CheckErr(t *testing.T, input string) {
	if _, err := Parse(input); err == nil {
		t.Errorf("input parsed without error: %s", input)
	}
}

// Symbols constructs one or more symbols.
func Symbols(names ...string) []SExp {
	symbols := make([]SExp, len(names))
	for i, n := range names {
		symbols[i] = &Symbol{n}
	}

	return symbols
}

// List_ constructs a list from the given elements.
func List_(elements ...SExp) SExp {
	return &List{elements}
}

func equals(s1, s2 SExp) bool {
	switch t1 := s1.(type) {
	case *Symbol:
		t2, ok := s2.(*Symbol)
		return ok && t1.Value == t2.Value
	case *List:
		t2, ok := s2.(*List)
		if !ok || t1.Len() != t2.Len() {
			return false
		}

		for i := range t1.Elements {
			if !equals(t1.Elements[i], t2.Elements[i]) {
				return false
			}
		}

		return true
	}

	return false
}
