// Package session manages stateful connections to a repository.
//
// A Session is a dedicated server-side connection with its own transaction
// and its own private resources, such as link-traversal generators. The
// session mints the identifiers those resources are registered under.
//
// # Lifecycle
//
//	Open --Commit/Rollback/Generator/query--> Open
//	Open --Close--> Closed
//
// There is no re-open. Every call on a Closed session fails with
// ErrSessionClosed before any request is sent. Close neither commits nor
// rolls back; commit or roll back first when the outcome matters.
//
// # Identifiers
//
// Generator ids have the form id<N>, with N counting from 1 per Session.
// An id is never handed out twice by the same Session, even when the
// registration that consumed it failed.
//
// Ids are unique only within one live Session value. Two Session values
// attached to the same server session, or a process duplicated while a
// Session is live, can mint the same id and silently overwrite each
// other's generators on the server.
package session
