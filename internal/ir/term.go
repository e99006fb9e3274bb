package ir

import "strings"

// Term is a sealed interface representing one position of a triple pattern
// or one value of a solution.
// Only Resource, BlankNode, Literal and Variable implement it.
type Term interface {
	term() // Sealed - only these types implement it
}

// Resource is an IRI reference.
type Resource string

func (Resource) term() {}

// String returns the IRI.
func (r Resource) String() string { return string(r) }

// BlankNode is a blank node identified by its label (without the "_:" prefix).
type BlankNode string

func (BlankNode) term() {}

// Variable is a query variable identified by name (without the leading "?").
// Two variables are the same variable when their names are equal.
type Variable string

func (Variable) term() {}

// Name returns the variable name without a leading "?".
func (v Variable) Name() string {
	return strings.TrimPrefix(string(v), "?")
}

// String returns the variable in query syntax, e.g. "?s".
func (v Variable) String() string {
	return "?" + v.Name()
}

// Literal is an RDF literal.
// Datatype and Lang are mutually exclusive; both empty means a plain literal.
type Literal struct {
	Lexical  string
	Datatype Resource
	Lang     string
}

func (Literal) term() {}

// Well-known datatypes.
const (
	XSDString   Resource = "http://www.w3.org/2001/XMLSchema#string"
	XSDInteger  Resource = "http://www.w3.org/2001/XMLSchema#integer"
	XSDDecimal  Resource = "http://www.w3.org/2001/XMLSchema#decimal"
	XSDDouble   Resource = "http://www.w3.org/2001/XMLSchema#double"
	XSDBoolean  Resource = "http://www.w3.org/2001/XMLSchema#boolean"
	XSDDateTime Resource = "http://www.w3.org/2001/XMLSchema#dateTime"
)

// NewLiteral creates a plain literal.
func NewLiteral(s string) Literal {
	return Literal{Lexical: s}
}

// NewTypedLiteral creates a literal with a datatype.
func NewTypedLiteral(s string, datatype Resource) Literal {
	return Literal{Lexical: s, Datatype: datatype}
}

// NewLangLiteral creates a language-tagged literal.
func NewLangLiteral(s, lang string) Literal {
	return Literal{Lexical: s, Lang: lang}
}

// V is a shorthand for creating a Variable.
// Example: V("s") and V("?s") name the same variable.
func V(name string) Variable {
	return Variable(strings.TrimPrefix(name, "?"))
}
