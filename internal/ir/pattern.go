package ir

// Pattern is a triple pattern.
//
// Context is the named graph the pattern is restricted to; nil means the
// default graph. Optional marks the pattern as an optional match.
type Pattern struct {
	Subject   Term
	Predicate Term
	Object    Term
	Context   Term
	Optional  bool
}

// Triple creates a pattern in the default graph.
func Triple(s, p, o Term) Pattern {
	return Pattern{Subject: s, Predicate: p, Object: o}
}

// Terms returns subject, predicate and object in that order.
func (p Pattern) Terms() []Term {
	return []Term{p.Subject, p.Predicate, p.Object}
}

// Solution maps variable names (without "?") to the terms bound to them.
type Solution map[string]Term

// Get returns the term bound to a variable, if any.
func (s Solution) Get(v Variable) (Term, bool) {
	t, ok := s[v.Name()]
	return t, ok
}
