package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTerm(t *testing.T) {
	ns := Namespaces{
		"ex":  "http://example.com/",
		"xsd": "http://www.w3.org/2001/XMLSchema#",
	}

	tests := []struct {
		in   string
		want Term
	}{
		{"?s", V("s")},
		{"  ?member ", V("member")},
		{"<http://example.com/alice>", Resource("http://example.com/alice")},
		{`<http://example.com/a b>`, Resource("http://example.com/a b")},
		{"ex:alice", Resource("http://example.com/alice")},
		{"_:b0", BlankNode("b0")},
		{`"hello"`, NewLiteral("hello")},
		{`"a \"quoted\" word"`, NewLiteral(`a "quoted" word`)},
		{`"line\nbreak"`, NewLiteral("line\nbreak")},
		{`"é"`, NewLiteral("é")},
		{`"chat"@fr`, NewLangLiteral("chat", "fr")},
		{`"5"^^<http://www.w3.org/2001/XMLSchema#integer>`, NewTypedLiteral("5", XSDInteger)},
		{`"5"^^xsd:integer`, NewTypedLiteral("5", XSDInteger)},
		{`"x"^^xsd:string`, NewLiteral("x")},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTerm(tt.in, ns)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTermErrors(t *testing.T) {
	for _, in := range []string{"", "?", "<http://example.com", "_:", `"open`, `"x"junk`, `"x"@`, `"x"^^"y"`, "bare", "foaf:name", `"\q"`, `"\u00"`} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseTerm(in, Namespaces{"ex": "http://example.com/"})
			assert.Error(t, err)
		})
	}
}

func TestParseSerializeRoundTrip(t *testing.T) {
	terms := []Term{
		Resource("http://example.com/a"),
		BlankNode("n1"),
		NewLiteral("tab\there"),
		NewLangLiteral("hi", "en-GB"),
		NewTypedLiteral("2.5E0", XSDDouble),
	}
	for _, term := range terms {
		text, err := Serialize(term, nil)
		require.NoError(t, err)
		back, err := ParseTerm(text, nil)
		require.NoError(t, err)
		assert.Equal(t, term, back, "round trip of %s", text)
	}
}
