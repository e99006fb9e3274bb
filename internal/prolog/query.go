package prolog

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/roach88/agraph/internal/ir"
)

// Reserved relation names.
const (
	// PlainQueryRelation is the relation every triple pattern compiles to.
	PlainQueryRelation = "q-"

	// EgoGroupMemberRelation relates an actor to the members of its ego
	// group under a registered generator.
	EgoGroupMemberRelation = "ego-group-member"
)

// Runner executes compiled query text.
//
// Implemented by repository connections and sessions.
type Runner interface {
	// RunProlog executes a Prolog select query and returns its solutions.
	RunProlog(ctx context.Context, query string) ([]ir.Solution, error)
}

// Query accumulates triple patterns and relations.
// The zero value is not usable; create queries with NewQuery.
type Query struct {
	runner  Runner
	entries []entry
}

// entry holds exactly one of pattern or relation.
type entry struct {
	pattern  *ir.Pattern
	relation *Relation
}

// NewQuery creates an empty query executed by runner.
// runner may be nil for queries that are only compiled.
func NewQuery(runner Runner) *Query {
	return &Query{runner: runner}
}

// Pattern appends a triple pattern.
func (q *Query) Pattern(p ir.Pattern) *Query {
	q.entries = append(q.entries, entry{pattern: &p})
	return q
}

// Triple appends a default-graph pattern. Arguments that are not ir.Term
// are converted with ir.LiteralOf at compile time.
func (q *Query) Triple(s, p, o any) *Query {
	return q.Add(NewRelation(PlainQueryRelation, s, p, o))
}

// Relation appends a relation built from name and args.
func (q *Query) Relation(name string, args ...any) *Query {
	return q.Add(NewRelation(name, args...))
}

// Add appends an existing relation. The query takes ownership of it.
func (q *Query) Add(r *Relation) *Query {
	q.entries = append(q.entries, entry{relation: r})
	return q
}

// EgoGroupMember appends (ego-group-member actor depth generator member).
//
// depth is emitted as a raw literal. generator is normally the Literal
// returned by session registration, which renders as the bare generator id.
func (q *Query) EgoGroupMember(actor any, depth int, generator any, member any) *Query {
	return q.Relation(EgoGroupMemberRelation, actor, Raw(depth), generator, member)
}

// Len returns the number of patterns and relations.
func (q *Query) Len() int {
	return len(q.entries)
}

// Relations returns every entry as a relation, converting triple patterns
// to (q- S P O).
func (q *Query) Relations() ([]*Relation, error) {
	rels := make([]*Relation, 0, len(q.entries))
	for i, e := range q.entries {
		if e.relation != nil {
			rels = append(rels, e.relation)
			continue
		}
		rel, err := patternRelation(i, *e.pattern)
		if err != nil {
			return nil, err
		}
		rels = append(rels, rel)
	}
	return rels, nil
}

// patternRelation converts a triple pattern. Optional and named-graph
// patterns are rejected, never dropped.
func patternRelation(entry int, p ir.Pattern) (*Relation, error) {
	if p.Optional {
		return nil, newUnsupportedPattern(entry, "optional patterns cannot be expressed as a relation")
	}
	if p.Context != nil {
		return nil, newUnsupportedPattern(entry, "patterns on a named graph cannot be expressed as a relation")
	}
	return NewRelation(PlainQueryRelation, p.Subject, p.Predicate, p.Object), nil
}

// Variables returns each variable of the query once, in the order first
// seen walking entries left to right.
func (q *Query) Variables() ([]ir.Variable, error) {
	rels, err := q.Relations()
	if err != nil {
		return nil, err
	}
	return collectVariables(rels), nil
}

func collectVariables(rels []*Relation) []ir.Variable {
	seen := make(map[string]struct{})
	var vars []ir.Variable
	for _, rel := range rels {
		for _, v := range rel.Variables() {
			name := v.Name()
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			vars = append(vars, ir.V(name))
		}
	}
	return vars
}

// Compile renders the query as Prolog select text:
//
//	(select (?v1 ?v2 ...)
//	  (relation1 ...)
//	  (relation2 ...))
//
// Compile does not modify the query; identical state yields identical text.
// A nil ns renders every resource as a full IRI, which is the form sent to
// the server. Prefixed output is for display only.
func (q *Query) Compile(ns ir.Namespaces) (string, error) {
	if len(q.entries) == 0 {
		return "", &TranslateError{
			Code:    ErrCodeEmptyQuery,
			Message: "query has no patterns or relations",
			Entry:   -1,
		}
	}

	rels, err := q.Relations()
	if err != nil {
		return "", err
	}

	lines := make([]string, len(rels))
	for i, rel := range rels {
		text, err := rel.Render(ns)
		if err != nil {
			if te, ok := err.(*TranslateError); ok {
				te.Entry = i
			}
			return "", err
		}
		lines[i] = text
	}

	vars := collectVariables(rels)
	head := make([]string, len(vars))
	for i, v := range vars {
		head[i] = v.String()
	}

	return fmt.Sprintf("(select (%s)\n  %s)",
		strings.Join(head, " "),
		strings.Join(lines, "\n  ")), nil
}

// Each returns a sequence of solutions.
//
// The query is not sent until the sequence is ranged over, and every range
// sends it again. Solutions are yielded after the whole response has been
// decoded; nothing is read from the server incrementally. Use All to
// execute once and keep the results.
func (q *Query) Each(ctx context.Context) iter.Seq2[ir.Solution, error] {
	return func(yield func(ir.Solution, error) bool) {
		solutions, err := q.All(ctx)
		if err != nil {
			yield(nil, err)
			return
		}
		for _, sol := range solutions {
			if !yield(sol, nil) {
				return
			}
		}
	}
}

// All executes the query once and returns every solution.
func (q *Query) All(ctx context.Context) ([]ir.Solution, error) {
	if q.runner == nil {
		return nil, fmt.Errorf("query has no runner")
	}
	text, err := q.Compile(nil)
	if err != nil {
		return nil, fmt.Errorf("compile query: %w", err)
	}
	solutions, err := q.runner.RunProlog(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("run query: %w", err)
	}
	return solutions, nil
}
