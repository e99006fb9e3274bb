package ir

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTermSealed(t *testing.T) {
	// Verify all types implement Term (compile-time check via assignment)
	var _ Term = Resource("http://example.com/a")
	var _ Term = BlankNode("b0")
	var _ Term = Variable("s")
	var _ Term = Literal{Lexical: "x"}
}

func TestVariableName(t *testing.T) {
	assert.Equal(t, V("s"), V("?s"))
	assert.Equal(t, "s", V("?s").Name())
	assert.Equal(t, "?s", V("s").String())
	assert.Equal(t, "?s", Variable("?s").String())
}

func TestSolutionGet(t *testing.T) {
	sol := Solution{"s": Resource("http://example.com/a")}

	got, ok := sol.Get(V("?s"))
	require.True(t, ok)
	assert.Equal(t, Resource("http://example.com/a"), got)

	_, ok = sol.Get(V("o"))
	assert.False(t, ok)
}

func TestPatternTerms(t *testing.T) {
	p := Triple(V("s"), Resource("http://example.com/knows"), V("o"))
	assert.Equal(t, []Term{V("s"), Resource("http://example.com/knows"), V("o")}, p.Terms())
	assert.Nil(t, p.Context)
	assert.False(t, p.Optional)
}

func TestLiteralOf(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Literal
	}{
		{"string", "hello", NewLiteral("hello")},
		{"int", 5, NewTypedLiteral("5", XSDInteger)},
		{"negative int64", int64(-42), NewTypedLiteral("-42", XSDInteger)},
		{"uint8", uint8(7), NewTypedLiteral("7", XSDInteger)},
		{"uint64 max", uint64(math.MaxUint64), NewTypedLiteral("18446744073709551615", XSDInteger)},
		{"bool", true, NewTypedLiteral("true", XSDBoolean)},
		{"float", 1.5, NewTypedLiteral("1.5E0", XSDDouble)},
		{"whole float", 1.0, NewTypedLiteral("1.0E0", XSDDouble)},
		{"large float", 1234.5, NewTypedLiteral("1.2345E3", XSDDouble)},
		{"small float32", float32(0.25), NewTypedLiteral("2.5E-1", XSDDouble)},
		{"infinity", math.Inf(1), NewTypedLiteral("INF", XSDDouble)},
		{"time", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), NewTypedLiteral("2024-01-02T03:04:05Z", XSDDateTime)},
		{"literal passthrough", NewLangLiteral("chat", "fr"), NewLangLiteral("chat", "fr")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LiteralOf(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLiteralOfRejects(t *testing.T) {
	for _, in := range []any{Resource("http://example.com/a"), BlankNode("b"), V("s"), nil, struct{}{}, []byte("x")} {
		_, err := LiteralOf(in)
		assert.Error(t, err, "LiteralOf(%#v) should fail", in)
	}
}
