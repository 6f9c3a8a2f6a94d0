// Package client contains client-side building blocks for the task planner CLI.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) to talk
//     to the task planner backend: Register/Login/Refresh, Ping, todo CRUD
//     and workspace listing.
//  2. A concrete REST implementation (see RESTClient) that calls the HTTP
//     surface with a bearer access token and transparently refreshes an
//     expired token pair before retrying once.
//  3. Local persistence bootstrap utilities (InitDatabase, RunMigrations) for
//     the CLI, wiring an SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match with
// errors.Is: ErrUnavailable, ErrUnauthorized, ErrLocalDataNotAvailable. Other
// HTTP failures surface as *APIError carrying the status code and the server's
// detail message.
//
// Concurrency & Contexts
//
// All operations accept context.Context and must honor cancellation/timeouts.
//
// See Also
//
//   - Interface:  Client
//   - REST impl:  RESTClient
//   - DB helpers: InitDatabase, RunMigrations
//   - Errors:     ErrUnavailable, ErrUnauthorized, ErrLocalDataNotAvailable
package client
