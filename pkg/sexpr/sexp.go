// Package sexpr is a small streaming S-expression reader used for the
// declarative content files (lesson decks). Atoms keep track of whether they
// were quoted so bare flags can be told apart from text.
package sexpr

import (
	"strconv"
	"strings"
)

// Sexp represents an S-expression node: an atom or a list
type Sexp interface {
	// IsLeaf returns true if this is an atom (not a list)
	IsLeaf() bool

	// LeafCount returns the number of elements in a list (1 for atoms)
	LeafCount() int

	// String returns the source representation
	String() string
}

// Symbol is an unquoted atom (identifier, number, flag)
type Symbol string

func (s Symbol) IsLeaf() bool   { return true }
func (s Symbol) LeafCount() int { return 1 }
func (s Symbol) String() string { return string(s) }

// Text is a quoted string atom
type Text string

func (t Text) IsLeaf() bool   { return true }
func (t Text) LeafCount() int { return 1 }
func (t Text) String() string { return strconv.Quote(string(t)) }

// List is a parenthesised sequence of expressions
type List struct {
	Line     int // line of the opening paren, 1-based
	elements []Sexp
}

func (l *List) IsLeaf() bool { return false }

func (l *List) LeafCount() int {
	return len(l.elements)
}

func (l *List) String() string {
	parts := make([]string, len(l.elements))
	for i, elem := range l.elements {
		parts[i] = elem.String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// Get returns the element at the given index, or nil
func (l *List) Get(index int) Sexp {
	if index < 0 || index >= len(l.elements) {
		return nil
	}
	return l.elements[index]
}

// Len returns the number of elements in the list
func (l *List) Len() int {
	return len(l.elements)
}

// Items returns the list elements. The slice must not be modified.
func (l *List) Items() []Sexp {
	return l.elements
}

// Key returns the leading symbol of the list, or "" if there is none
func (l *List) Key() string {
	if len(l.elements) == 0 {
		return ""
	}
	if sym, ok := l.elements[0].(Symbol); ok {
		return string(sym)
	}
	return ""
}

// Args returns every element after the key
func (l *List) Args() []Sexp {
	if len(l.elements) <= 1 {
		return nil
	}
	return l.elements[1:]
}

// NewList builds a list from elements, mostly useful in tests
func NewList(elements ...Sexp) *List {
	return &List{elements: elements}
}

// Atom returns the text of an atom, quoted or not
func Atom(s Sexp) (string, bool) {
	switch v := s.(type) {
	case Symbol:
		return string(v), true
	case Text:
		return string(v), true
	}
	return "", false
}
