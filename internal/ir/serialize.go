package ir

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Serialize renders a term in N-Triples syntax.
//
// Resources render as prefixed names when ns declares a matching namespace,
// otherwise as <iri>. Variables render as ?name. Literal lexical forms are
// NFC normalized before escaping.
func Serialize(t Term, ns Namespaces) (string, error) {
	switch v := t.(type) {
	case Resource:
		return serializeResource(v, ns), nil
	case BlankNode:
		if v == "" {
			return "", fmt.Errorf("blank node with empty label")
		}
		return "_:" + string(v), nil
	case Variable:
		if v.Name() == "" {
			return "", fmt.Errorf("variable with empty name")
		}
		return v.String(), nil
	case Literal:
		return serializeLiteral(v)
	case nil:
		return "", fmt.Errorf("cannot serialize nil term")
	default:
		return "", fmt.Errorf("unsupported term type: %T", t)
	}
}

func serializeResource(r Resource, ns Namespaces) string {
	if name, ok := ns.Compact(r); ok {
		return name
	}
	return "<" + escapeIRI(string(r)) + ">"
}

func serializeLiteral(l Literal) (string, error) {
	if l.Lang != "" && l.Datatype != "" {
		return "", fmt.Errorf("literal %q has both language %q and datatype %q", l.Lexical, l.Lang, l.Datatype)
	}

	var b strings.Builder
	b.WriteByte('"')
	b.WriteString(escapeString(norm.NFC.String(l.Lexical)))
	b.WriteByte('"')

	switch {
	case l.Lang != "":
		b.WriteByte('@')
		b.WriteString(l.Lang)
	case l.Datatype != "" && l.Datatype != XSDString:
		// Datatypes always render in full; the server may not share our prefixes.
		b.WriteString("^^<")
		b.WriteString(escapeIRI(string(l.Datatype)))
		b.WriteByte('>')
	}
	return b.String(), nil
}

// escapeString applies N-Triples STRING_LITERAL_QUOTE escaping.
func escapeString(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u%04X`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

// escapeIRI applies UCHAR escaping to characters not allowed in IRIREF.
func escapeIRI(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r <= 0x20 || strings.ContainsRune(`<>"{}|^`+"`"+`\`, r) {
			fmt.Fprintf(&b, `\u%04X`, r)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
