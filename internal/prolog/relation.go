package prolog

import (
	"fmt"
	"strings"

	"github.com/roach88/agraph/internal/ir"
)

// Arg is one relation argument.
//
// This is a sealed interface - only Var, Literal and Value implement it.
type Arg interface {
	arg() // Marker method - seals interface to this package
}

// Var is a variable argument.
type Var ir.Variable

func (Var) arg()     {}
func (Literal) arg() {}

// Value is a graph term or a Go value to be converted to a literal.
// The conversion happens at render time.
type Value struct {
	V any
}

func (Value) arg() {}

// ArgOf classifies a value as an argument.
// Args are returned as is, ir.Variable becomes Var and everything else
// becomes Value. ArgOf never fails.
func ArgOf(v any) Arg {
	switch a := v.(type) {
	case Var:
		return a
	case Literal:
		return a
	case Value:
		return a
	case ir.Variable:
		return Var(a)
	default:
		return Value{V: v}
	}
}

// Relation is one call in the Prolog select body: a name applied to an
// ordered list of arguments. A Relation is immutable once built.
type Relation struct {
	name string
	args []Arg
}

// NewRelation creates a relation. Each argument is classified with ArgOf;
// arity is not checked.
func NewRelation(name string, args ...any) *Relation {
	r := &Relation{name: name, args: make([]Arg, len(args))}
	for i, a := range args {
		r.args[i] = ArgOf(a)
	}
	return r
}

// Name returns the relation name.
func (r *Relation) Name() string {
	return r.name
}

// Args returns a copy of the arguments.
func (r *Relation) Args() []Arg {
	return append([]Arg(nil), r.args...)
}

// Variables returns the variables among the arguments in argument order.
// Repeated variables are repeated.
func (r *Relation) Variables() []ir.Variable {
	var vars []ir.Variable
	for _, a := range r.args {
		if v, ok := variableOf(a); ok {
			vars = append(vars, v)
		}
	}
	return vars
}

// Render returns the relation as (name arg1 ... argN).
// ns is used to abbreviate resources to prefixed names.
func (r *Relation) Render(ns ir.Namespaces) (string, error) {
	if r.name == "" {
		return "", &TranslateError{
			Code:    ErrCodeInvalidRelation,
			Message: "relation has no name",
			Entry:   -1,
		}
	}

	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(r.name)
	for i, a := range r.args {
		text, err := renderArg(a, ns)
		if err != nil {
			return "", &TranslateError{
				Code:    ErrCodeInvalidArgument,
				Message: fmt.Sprintf("relation %s argument %d", r.name, i),
				Entry:   -1,
				Err:     err,
			}
		}
		b.WriteByte(' ')
		b.WriteString(text)
	}
	b.WriteByte(')')
	return b.String(), nil
}

// renderArg is a total match over the Arg variant.
func renderArg(a Arg, ns ir.Namespaces) (string, error) {
	switch arg := a.(type) {
	case Var:
		return renderVariable(ir.Variable(arg))
	case Literal:
		text := arg.String()
		if arg.Value == nil || text == "" {
			return "", fmt.Errorf("empty raw literal")
		}
		return text, nil
	case Value:
		term, err := arg.Term()
		if err != nil {
			return "", err
		}
		if v, ok := term.(ir.Variable); ok {
			return renderVariable(v)
		}
		text, err := ir.Serialize(term, ns)
		if err != nil {
			return "", err
		}
		return "!" + text, nil
	default:
		return "", fmt.Errorf("unsupported argument type: %T", a)
	}
}

func renderVariable(v ir.Variable) (string, error) {
	if v.Name() == "" {
		return "", fmt.Errorf("variable with empty name")
	}
	return v.String(), nil
}

// Term returns the graph term for the value, converting plain Go values
// with ir.LiteralOf.
func (v Value) Term() (ir.Term, error) {
	if t, ok := v.V.(ir.Term); ok {
		return t, nil
	}
	return ir.LiteralOf(v.V)
}

// variableOf reports whether an argument denotes a variable.
func variableOf(a Arg) (ir.Variable, bool) {
	switch arg := a.(type) {
	case Var:
		return ir.Variable(arg), true
	case Value:
		v, ok := arg.V.(ir.Variable)
		return v, ok
	}
	return "", false
}
