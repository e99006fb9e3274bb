package prolog

import "fmt"

// Literal wraps a value that must appear verbatim in the query text:
// a symbol, a number or an identifier such as a generator id.
//
// Literal{5} renders as 5, never as "5" or !"5"^^<...>.
type Literal struct {
	Value any
}

// Raw is a shorthand for creating a Literal.
func Raw(v any) Literal {
	return Literal{Value: v}
}

// String returns the wrapped value's textual form.
func (l Literal) String() string {
	return fmt.Sprint(l.Value)
}
