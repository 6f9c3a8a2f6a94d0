// Package cli provides the interactive task planner command-line client.
//
// It wires configuration, the local SQLite cache, API services, and an
// interactive REPL that keeps working read-only while the server is down.
// Typical flow: restore the saved session, start a background connectivity
// watcher, and execute user commands.
//
// Key features:
//   - Register / Login / Logout against the REST API
//   - Add, complete, remove and show todos
//   - List todos (served from the local cache while offline)
//   - Pick the workspace new todos go to
//   - Sync the cache with the server
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
