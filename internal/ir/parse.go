package ir

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ParseTerm parses one term written in N-Triples syntax, extended with
// ?variables and prefixed names resolved against ns.
//
//	?s                  Variable
//	<http://ex/a>       Resource
//	ex:a                Resource (prefix must be declared in ns)
//	_:b0                BlankNode
//	"x" "x"@en "5"^^<…> Literal (datatype may also be a prefixed name)
func ParseTerm(s string, ns Namespaces) (Term, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return nil, fmt.Errorf("empty term")
	case strings.HasPrefix(s, "?"):
		if len(s) == 1 {
			return nil, fmt.Errorf("variable with empty name")
		}
		return Variable(s[1:]), nil
	case strings.HasPrefix(s, "<"):
		if !strings.HasSuffix(s, ">") {
			return nil, fmt.Errorf("unterminated IRI: %s", s)
		}
		iri, err := unescape(s[1 : len(s)-1])
		if err != nil {
			return nil, fmt.Errorf("IRI %s: %w", s, err)
		}
		return Resource(iri), nil
	case strings.HasPrefix(s, "_:"):
		if len(s) == 2 {
			return nil, fmt.Errorf("blank node with empty label")
		}
		return BlankNode(s[2:]), nil
	case strings.HasPrefix(s, `"`):
		return parseLiteral(s, ns)
	}

	if r, ok := ns.Expand(s); ok {
		return r, nil
	}
	return nil, fmt.Errorf("not a term: %q", s)
}

func parseLiteral(s string, ns Namespaces) (Literal, error) {
	end := closingQuote(s)
	if end < 0 {
		return Literal{}, fmt.Errorf("unterminated literal: %s", s)
	}
	lexical, err := unescape(s[1:end])
	if err != nil {
		return Literal{}, fmt.Errorf("literal %s: %w", s, err)
	}

	rest := s[end+1:]
	switch {
	case rest == "":
		return NewLiteral(lexical), nil
	case strings.HasPrefix(rest, "@"):
		if len(rest) == 1 {
			return Literal{}, fmt.Errorf("literal %s: empty language tag", s)
		}
		return NewLangLiteral(lexical, rest[1:]), nil
	case strings.HasPrefix(rest, "^^"):
		dt, err := ParseTerm(rest[2:], ns)
		if err != nil {
			return Literal{}, fmt.Errorf("literal %s datatype: %w", s, err)
		}
		r, ok := dt.(Resource)
		if !ok {
			return Literal{}, fmt.Errorf("literal %s: datatype must be an IRI", s)
		}
		if r == XSDString {
			return NewLiteral(lexical), nil
		}
		return NewTypedLiteral(lexical, r), nil
	default:
		return Literal{}, fmt.Errorf("unexpected text after literal: %s", rest)
	}
}

// closingQuote returns the index of the quote that ends the literal
// starting at s[0], skipping escaped quotes.
func closingQuote(s string) int {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}

// unescape reverses ECHAR and UCHAR escapes.
func unescape(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(s) {
			return "", fmt.Errorf("dangling escape")
		}
		i++
		switch s[i] {
		case 't':
			b.WriteByte('\t')
		case 'b':
			b.WriteByte('\b')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 'f':
			b.WriteByte('\f')
		case '"', '\'', '\\':
			b.WriteByte(s[i])
		case 'u', 'U':
			width := 4
			if s[i] == 'U' {
				width = 8
			}
			if i+1+width > len(s) {
				return "", fmt.Errorf("short \\%c escape", s[i])
			}
			code, err := strconv.ParseUint(s[i+1:i+1+width], 16, 32)
			if err != nil {
				return "", fmt.Errorf("bad \\%c escape: %w", s[i], err)
			}
			if !utf8.ValidRune(rune(code)) {
				return "", fmt.Errorf("escape \\%c%s is not a valid code point", s[i], s[i+1:i+1+width])
			}
			b.WriteRune(rune(code))
			i += width
		default:
			return "", fmt.Errorf("unknown escape \\%c", s[i])
		}
	}
	return b.String(), nil
}
