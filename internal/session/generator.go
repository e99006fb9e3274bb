package session

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/roach88/agraph/internal/ir"
)

// GeneratorOptions configures a link-traversal generator.
//
// Recognized keys (camelCase aliases accepted):
//
//	object_of   follow edges from object to subject for these predicates
//	subject_of  follow edges from subject to object for these predicates
//	undirected  follow edges in both directions for these predicates
//
// Each value is one predicate or a collection of predicates. A predicate is
// an ir.Resource, an IRI written as <iri> or bare, or a prefixed name
// declared in the session's namespaces.
type GeneratorOptions map[string]any

// generatorKeys maps accepted option keys to wire parameter names.
var generatorKeys = map[string]string{
	"object_of":  "objectOf",
	"objectOf":   "objectOf",
	"subject_of": "subjectOf",
	"subjectOf":  "subjectOf",
	"undirected": "undirected",
}

// Generator describes a generator to register on the server.
// It is built per registration and discarded afterwards; the server-side
// registration, addressed by its id, is what queries refer to.
type Generator struct {
	predicates map[string][]ir.Resource // wire parameter -> predicates
}

// NewGenerator validates opts and resolves predicates against ns.
// Unknown keys fail with ErrCodeUnrecognizedOption.
func NewGenerator(opts GeneratorOptions, ns ir.Namespaces) (*Generator, error) {
	g := &Generator{predicates: make(map[string][]ir.Resource)}

	// Sorted keys make the first reported error independent of map order.
	keys := make([]string, 0, len(opts))
	for k := range opts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		param, ok := generatorKeys[key]
		if !ok {
			return nil, &OptionError{
				Code:    ErrCodeUnrecognizedOption,
				Key:     key,
				Message: "expected one of object_of, subject_of, undirected",
			}
		}
		preds, err := predicates(key, opts[key], ns)
		if err != nil {
			return nil, err
		}
		g.predicates[param] = append(g.predicates[param], preds...)
	}
	return g, nil
}

// Params returns the wire parameters: one key per configured option, one
// N-Triples IRI per predicate.
func (g *Generator) Params() url.Values {
	params := url.Values{}
	for param, preds := range g.predicates {
		for _, p := range preds {
			text, _ := ir.Serialize(p, nil) // resources always serialize
			params.Add(param, text)
		}
	}
	return params
}

func predicates(key string, value any, ns ir.Namespaces) ([]ir.Resource, error) {
	var items []any
	switch v := value.(type) {
	case []ir.Resource:
		for _, r := range v {
			items = append(items, r)
		}
	case []string:
		for _, s := range v {
			items = append(items, s)
		}
	case []any:
		items = v
	default:
		items = []any{v}
	}

	if len(items) == 0 {
		return nil, &OptionError{Code: ErrCodeInvalidPredicate, Key: key, Message: "no predicates given"}
	}

	preds := make([]ir.Resource, 0, len(items))
	for _, item := range items {
		p, err := predicate(item, ns)
		if err != nil {
			return nil, &OptionError{Code: ErrCodeInvalidPredicate, Key: key, Message: err.Error()}
		}
		preds = append(preds, p)
	}
	return preds, nil
}

func predicate(v any, ns ir.Namespaces) (ir.Resource, error) {
	switch p := v.(type) {
	case ir.Resource:
		if p == "" {
			return "", fmt.Errorf("empty IRI")
		}
		return p, nil
	case string:
		if r, ok := ns.Expand(p); ok {
			return r, nil
		}
		if strings.HasPrefix(p, "<") {
			t, err := ir.ParseTerm(p, nil)
			if err != nil {
				return "", err
			}
			r, ok := t.(ir.Resource)
			if !ok || r == "" {
				return "", fmt.Errorf("%q is not a non-empty IRI", p)
			}
			return r, nil
		}
		// Bare IRIs need an authority (or urn:) so that an undeclared
		// prefix is not mistaken for a URI scheme.
		if u, err := url.Parse(p); err == nil && u.IsAbs() && (u.Host != "" || u.Scheme == "urn") {
			return ir.Resource(p), nil
		}
		return "", fmt.Errorf("%q is neither an IRI nor a declared prefixed name", p)
	default:
		return "", fmt.Errorf("unsupported predicate type %T", v)
	}
}
