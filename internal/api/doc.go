// Package api implements the HTTP REST API and WebSocket change feed of the
// Gray Logic registry.
//
// This package provides:
//   - REST endpoints for get, set, commit, export, load and save
//   - A WebSocket hub broadcasting parameter changes
//   - JWT bearer authentication with reader and writer roles
//   - Middleware stack (request ID, logging, recovery, CORS, metrics)
//
// # Paths
//
// Routes take the registry path as the URL tail, numeric or named:
//
//	GET /api/v1/values/1/0/0/0
//	GET /api/v1/values/app/rgbled/status/red
//
// An empty tail addresses the root.
//
// # Errors
//
// Registry errors map to status codes: an unresolvable path is 404, a type
// mismatch 400, a failed conversion 422, a storage failure 502 and a failed
// commit 409.
package api
