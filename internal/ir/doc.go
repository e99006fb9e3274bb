// Package ir provides the graph term model shared by the query and session
// layers.
//
// This package contains term types and their wire encodings only. All other
// internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Term is sealed: Resource, BlankNode, Literal and Variable are the only
//     implementations, so serializers can switch exhaustively
//   - Terms serialize to N-Triples syntax; lexical forms are NFC normalized
//     at the serialization boundary
//   - Plain Go values become Literals only through LiteralOf
package ir
