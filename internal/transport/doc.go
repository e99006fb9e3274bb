// Package transport issues HTTP requests against the store's REST protocol.
//
// Callers describe a request (method, path, parameters or body, expected
// status) and an Executor runs it. Client is the net/http implementation;
// tests substitute recording executors.
//
// A response whose status differs from Request.Expect is returned as a
// *StatusError. Nothing is retried.
package transport
