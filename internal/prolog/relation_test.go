package prolog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/agraph/internal/ir"
)

func TestLiteral_RendersVerbatim(t *testing.T) {
	tests := []struct {
		lit  Literal
		want string
	}{
		{Raw(5), "5"},
		{Raw("id1"), "id1"},
		{Raw("some-symbol"), "some-symbol"},
		{Raw(2.5), "2.5"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			text, err := renderArg(tt.lit, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, text)
			assert.NotContains(t, text, `"`)
		})
	}
}

func TestLiteral_Equality(t *testing.T) {
	assert.Equal(t, Raw("id1"), Literal{Value: "id1"})
	assert.True(t, Raw(3) == Raw(3))
	assert.False(t, Raw(3) == Raw("3"))
}

func TestArgOf(t *testing.T) {
	assert.Equal(t, Var("s"), ArgOf(ir.V("s")))
	assert.Equal(t, Raw(1), ArgOf(Raw(1)))
	assert.Equal(t, Value{V: "x"}, ArgOf("x"))
	assert.Equal(t, Value{V: ir.Resource("http://example.com/a")}, ArgOf(ir.Resource("http://example.com/a")))
	assert.Equal(t, Var("o"), ArgOf(Var("o")))
	assert.Equal(t, Value{V: nil}, ArgOf(nil))
}

func TestRelation_Render(t *testing.T) {
	ns := ir.Namespaces{"ex": "http://example.com/"}

	tests := []struct {
		name string
		rel  *Relation
		ns   ir.Namespaces
		want string
	}{
		{
			name: "ego group member",
			rel:  NewRelation("ego-group-member", ir.Resource("http://example.com/alice"), Raw(3), Raw("id1"), ir.V("member")),
			want: "(ego-group-member !<http://example.com/alice> 3 id1 ?member)",
		},
		{
			name: "prefixed resource",
			rel:  NewRelation("q-", ir.V("s"), ir.Resource("http://example.com/knows"), ir.V("o")),
			ns:   ns,
			want: "(q- ?s !ex:knows ?o)",
		},
		{
			name: "plain values become literals",
			rel:  NewRelation("r", "x", 5, true),
			want: `(r !"x" !"5"^^<http://www.w3.org/2001/XMLSchema#integer> !"true"^^<http://www.w3.org/2001/XMLSchema#boolean>)`,
		},
		{
			name: "graph literal and blank node",
			rel:  NewRelation("r", ir.NewLangLiteral("chat", "fr"), ir.BlankNode("b1")),
			want: `(r !"chat"@fr !_:b1)`,
		},
		{
			name: "variable wrapped in value",
			rel:  NewRelation("r", Value{V: ir.V("x")}),
			want: "(r ?x)",
		},
		{
			name: "no arguments",
			rel:  NewRelation("true"),
			want: "(true)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.rel.Render(tt.ns)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRelation_RenderErrors(t *testing.T) {
	tests := []struct {
		name string
		rel  *Relation
		code TranslateErrorCode
	}{
		{"unconvertible value", NewRelation("r", struct{}{}), ErrCodeInvalidArgument},
		{"nil value", NewRelation("r", nil), ErrCodeInvalidArgument},
		{"nil raw literal", NewRelation("r", Raw(nil)), ErrCodeInvalidArgument},
		{"empty variable", NewRelation("r", ir.V("")), ErrCodeInvalidArgument},
		{"empty name", NewRelation("", ir.V("s")), ErrCodeInvalidRelation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.rel.Render(nil)
			require.Error(t, err)

			var te *TranslateError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, tt.code, te.Code)
		})
	}
}

func TestRelation_Immutable(t *testing.T) {
	rel := NewRelation("r", ir.V("a"), ir.V("b"))

	args := rel.Args()
	args[0] = Raw("changed")

	got, err := rel.Render(nil)
	require.NoError(t, err)
	assert.Equal(t, "(r ?a ?b)", got)
}

func TestRelation_Variables(t *testing.T) {
	rel := NewRelation("r", ir.V("a"), Raw("id1"), ir.V("b"), ir.V("a"), "lit")
	assert.Equal(t, []ir.Variable{"a", "b", "a"}, rel.Variables())
}
