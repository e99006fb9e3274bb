package ir

import (
	"sort"
	"strings"
)

// Namespaces maps prefixes to namespace IRIs, e.g. {"ex": "http://example.com/"}.
// A nil Namespaces is valid and declares nothing.
type Namespaces map[string]string

// Expand resolves a prefixed name such as "ex:alice".
// Returns false when the prefix is not declared.
func (ns Namespaces) Expand(name string) (Resource, bool) {
	prefix, local, ok := strings.Cut(name, ":")
	if !ok {
		return "", false
	}
	base, ok := ns[prefix]
	if !ok {
		return "", false
	}
	return Resource(base + local), true
}

// Compact returns the prefixed form of an IRI.
// The longest matching namespace wins; ties break on the smaller prefix so
// the result does not depend on map iteration order.
func (ns Namespaces) Compact(r Resource) (string, bool) {
	iri := string(r)
	best, bestPrefix := "", ""
	for _, prefix := range ns.Prefixes() {
		base := ns[prefix]
		if base == "" || !strings.HasPrefix(iri, base) || len(base) <= len(best) {
			continue
		}
		if !validLocalName(iri[len(base):]) {
			continue
		}
		best, bestPrefix = base, prefix
	}
	if best == "" {
		return "", false
	}
	return bestPrefix + ":" + iri[len(best):], true
}

// Prefixes returns the declared prefixes in sorted order.
func (ns Namespaces) Prefixes() []string {
	prefixes := make([]string, 0, len(ns))
	for p := range ns {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)
	return prefixes
}

// Merge returns a copy of ns with other's declarations added.
// Declarations in other override ns.
func (ns Namespaces) Merge(other Namespaces) Namespaces {
	merged := make(Namespaces, len(ns)+len(other))
	for p, iri := range ns {
		merged[p] = iri
	}
	for p, iri := range other {
		merged[p] = iri
	}
	return merged
}

// validLocalName accepts the conservative subset of prefixed-name local
// parts that every store parses the same way.
func validLocalName(local string) bool {
	if local == "" || strings.HasSuffix(local, ".") {
		return false
	}
	for _, r := range local {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_' || r == '-' || r == '.':
		default:
			return false
		}
	}
	return true
}
