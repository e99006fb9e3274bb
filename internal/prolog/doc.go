// Package prolog builds queries in the store's Prolog select notation.
//
// A Query accumulates triple patterns and named relations and compiles them
// into one select expression:
//
//	(select (?s ?o)
//	  (q- ?s !<http://example.com/knows> ?o)
//	  (ego-group-member ?s 2 id1 ?o))
//
// ARGUMENTS:
//
// Relation arguments are a sealed variant (Arg) with three cases:
//   - Var: a query variable, rendered as ?name
//   - Literal: a raw value emitted verbatim, never quoted or escaped
//   - Value: a graph term, or any Go value convertible to a literal,
//     rendered as ! followed by its N-Triples form
//
// Plain Go values are classified when a relation is built but converted to
// literals only when the query is compiled, so an unconvertible value
// surfaces as a TranslateError from Compile.
//
// PATTERNS:
//
// Each triple pattern compiles to the reserved relation (q- S P O).
// Optional patterns and patterns restricted to a named graph have no
// equivalent in that form and fail compilation with
// ErrCodeUnsupportedPattern instead of being dropped.
//
// DETERMINISM:
//
// Compile is pure. Entries render in insertion order, variables are listed
// once each in first-seen order, and nothing is sorted or deduplicated.
//
// EXECUTION:
//
// A Query delegates execution to its Runner and always sends the text
// compiled with nil namespaces, so resources reach the server as full IRIs.
// Each defers execution until it is ranged over and runs the query on every
// range; All runs it once. Both decode the complete response before any
// solution is returned. Use All when the results are needed twice.
package prolog
