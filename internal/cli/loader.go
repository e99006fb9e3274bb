package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/agraph/internal/ir"
	"github.com/roach88/agraph/internal/prolog"
)

// QueryFile is the document form of a query, read from YAML, JSON or CUE.
//
//	namespaces: {ex: "http://example.com/"}
//	where:
//	  - pattern: ["?s", "ex:knows", "?o"]
//	  - relation: ego-group-member
//	    args: ["ex:alice", {raw: 2}, {raw: id1}, "?member"]
//	  - ego_group_member: {actor: "ex:alice", depth: 2, generator: id1, member: "?member"}
//
// String arguments are read as terms: "?x" is a variable, "<iri>", "_:b"
// and quoted N-Triples literals parse as written, and "prefix:local" is a
// resource when the prefix is declared. Any other string is a plain string
// literal. {raw: v} inserts v unquoted.
type QueryFile struct {
	Namespaces ir.Namespaces `yaml:"namespaces" json:"namespaces"`
	Where      []WhereEntry  `yaml:"where" json:"where"`
}

// WhereEntry is one entry of a query file. Exactly one of Pattern,
// Relation and EgoGroupMember is set.
type WhereEntry struct {
	Pattern  []any  `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	Graph    string `yaml:"graph,omitempty" json:"graph,omitempty"`
	Optional bool   `yaml:"optional,omitempty" json:"optional,omitempty"`

	Relation string `yaml:"relation,omitempty" json:"relation,omitempty"`
	Args     []any  `yaml:"args,omitempty" json:"args,omitempty"`

	EgoGroupMember *EgoGroupEntry `yaml:"ego_group_member,omitempty" json:"ego_group_member,omitempty"`
}

// EgoGroupEntry holds the arguments of an ego-group membership goal.
type EgoGroupEntry struct {
	Actor     any `yaml:"actor" json:"actor"`
	Depth     int `yaml:"depth" json:"depth"`
	Generator any `yaml:"generator" json:"generator"`
	Member    any `yaml:"member" json:"member"`
}

// LoadError represents an error that occurred while loading a query file.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadQueryFile reads a query file. The format follows the extension:
// .yaml/.yml, .json or .cue.
func LoadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("query file not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("reading query file: %v", err)}
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return parseYAML(data)
	case ".json":
		return parseJSON(data)
	case ".cue":
		return parseCUE(path, data)
	default:
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("unsupported query file extension %q", ext)}
	}
}

func parseYAML(data []byte) (*QueryFile, error) {
	var qf QueryFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&qf); err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("parsing YAML: %v", err)}
	}
	return &qf, nil
}

func parseJSON(data []byte) (*QueryFile, error) {
	var qf QueryFile
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	dec.DisallowUnknownFields()
	if err := dec.Decode(&qf); err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("parsing JSON: %v", err)}
	}
	for i := range qf.Where {
		normalizeEntry(&qf.Where[i])
	}
	return &qf, nil
}

func parseCUE(path string, data []byte) (*QueryFile, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return nil, cueLoadError(ErrCodeBuildFailed, "building CUE value", err)
	}
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, cueLoadError(ErrCodeBuildFailed, "query must be concrete", err)
	}

	// Encode through JSON so CUE and JSON files decode identically.
	encoded, err := value.MarshalJSON()
	if err != nil {
		return nil, cueLoadError(ErrCodeBuildFailed, "encoding CUE value", err)
	}
	return parseJSON(encoded)
}

func cueLoadError(code, context string, err error) *LoadError {
	loadErr := &LoadError{Code: code, Message: fmt.Sprintf("%s: %v", context, err)}
	if errs := cueerrors.Errors(err); len(errs) > 0 {
		loadErr.Pos = cuePosition(errs[0])
	}
	return loadErr
}

// cuePosition returns the error's own position, or the first valid input
// position for errors such as conflicts that carry none.
func cuePosition(err cueerrors.Error) token.Pos {
	if pos := err.Position(); pos.IsValid() {
		return pos
	}
	for _, pos := range err.InputPositions() {
		if pos.IsValid() {
			return pos
		}
	}
	return token.NoPos
}

// normalizeEntry replaces json.Number values with int64 or float64.
func normalizeEntry(e *WhereEntry) {
	for i, v := range e.Pattern {
		e.Pattern[i] = normalize(v)
	}
	for i, v := range e.Args {
		e.Args[i] = normalize(v)
	}
	if g := e.EgoGroupMember; g != nil {
		g.Actor = normalize(g.Actor)
		g.Generator = normalize(g.Generator)
		g.Member = normalize(g.Member)
	}
}

func normalize(v any) any {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case map[string]any:
		for k, inner := range x {
			x[k] = normalize(inner)
		}
		return x
	default:
		return v
	}
}

// Build creates the query described by the file, bound to runner.
// ns resolves prefixed names; a nil runner yields a query that can only be
// compiled.
func (qf *QueryFile) Build(runner prolog.Runner, ns ir.Namespaces) (*prolog.Query, error) {
	q := prolog.NewQuery(runner)
	for i, e := range qf.Where {
		if err := addEntry(q, e, ns); err != nil {
			return nil, &LoadError{Code: ErrCodeInvalidEntry, Message: fmt.Sprintf("where[%d]: %v", i, err)}
		}
	}
	return q, nil
}

func addEntry(q *prolog.Query, e WhereEntry, ns ir.Namespaces) error {
	kinds := 0
	if e.Pattern != nil {
		kinds++
	}
	if e.Relation != "" {
		kinds++
	}
	if e.EgoGroupMember != nil {
		kinds++
	}
	if kinds != 1 {
		return fmt.Errorf("entry must have exactly one of pattern, relation, ego_group_member")
	}

	switch {
	case e.Pattern != nil:
		p, err := buildPattern(e, ns)
		if err != nil {
			return err
		}
		q.Pattern(p)

	case e.Relation != "":
		args := make([]any, len(e.Args))
		for i, a := range e.Args {
			v, err := argValue(a, ns)
			if err != nil {
				return fmt.Errorf("args[%d]: %w", i, err)
			}
			args[i] = v
		}
		q.Relation(e.Relation, args...)

	default:
		g := e.EgoGroupMember
		if g.Depth < 0 {
			return fmt.Errorf("ego_group_member: depth must not be negative, got %d", g.Depth)
		}
		actor, err := argValue(g.Actor, ns)
		if err != nil {
			return fmt.Errorf("ego_group_member actor: %w", err)
		}
		gen, err := generatorValue(g.Generator, ns)
		if err != nil {
			return fmt.Errorf("ego_group_member generator: %w", err)
		}
		member, err := argValue(g.Member, ns)
		if err != nil {
			return fmt.Errorf("ego_group_member member: %w", err)
		}
		q.EgoGroupMember(actor, g.Depth, gen, member)
	}
	return nil
}

func buildPattern(e WhereEntry, ns ir.Namespaces) (ir.Pattern, error) {
	if len(e.Pattern) != 3 {
		return ir.Pattern{}, fmt.Errorf("pattern needs 3 terms, got %d", len(e.Pattern))
	}
	var terms [3]ir.Term
	for i, v := range e.Pattern {
		t, err := patternTerm(v, ns)
		if err != nil {
			return ir.Pattern{}, fmt.Errorf("pattern[%d]: %w", i, err)
		}
		terms[i] = t
	}

	p := ir.Pattern{
		Subject:   terms[0],
		Predicate: terms[1],
		Object:    terms[2],
		Optional:  e.Optional,
	}
	if e.Graph != "" {
		graph, err := patternTerm(e.Graph, ns)
		if err != nil {
			return ir.Pattern{}, fmt.Errorf("graph: %w", err)
		}
		p.Context = graph
	}
	return p, nil
}

func patternTerm(v any, ns ir.Namespaces) (ir.Term, error) {
	arg, err := argValue(v, ns)
	if err != nil {
		return nil, err
	}
	switch x := arg.(type) {
	case ir.Term:
		return x, nil
	case prolog.Literal:
		return nil, fmt.Errorf("raw values are not allowed in patterns")
	default:
		return ir.LiteralOf(x)
	}
}

// argValue converts a decoded document value into a relation argument.
func argValue(v any, ns ir.Namespaces) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, fmt.Errorf("null argument")
	case string:
		return stringArg(x, ns)
	case map[string]any:
		raw, ok := x["raw"]
		if !ok || len(x) != 1 {
			return nil, fmt.Errorf("object argument must be {raw: value}")
		}
		switch raw.(type) {
		case string, bool, int, int64, float64:
			return prolog.Raw(raw), nil
		default:
			return nil, fmt.Errorf("raw value must be a scalar, got %T", raw)
		}
	case bool, int, int64, float64:
		return x, nil
	default:
		return nil, fmt.Errorf("unsupported argument type %T", v)
	}
}

func stringArg(s string, ns ir.Namespaces) (any, error) {
	switch {
	case strings.HasPrefix(s, "?"),
		strings.HasPrefix(s, "<"),
		strings.HasPrefix(s, "_:"),
		strings.HasPrefix(s, `"`):
		return ir.ParseTerm(s, ns)
	}
	if r, ok := ns.Expand(s); ok {
		return r, nil
	}
	return s, nil
}

// generatorValue reads a generator reference. A bare string is the id
// returned by "agq generator add".
func generatorValue(v any, ns ir.Namespaces) (any, error) {
	if s, ok := v.(string); ok && !strings.HasPrefix(s, "?") {
		if s == "" {
			return nil, fmt.Errorf("empty generator id")
		}
		return prolog.Raw(s), nil
	}
	return argValue(v, ns)
}
