// Package models defines client-side data models used by the task planner CLI.
package models

// Todo is a locally cached copy of a server todo, written by sync and read
// when the server is unreachable. The server row is the source of truth;
// the cache is replaced wholesale on every successful sync.
type Todo struct {
	// ID is the server-assigned identifier.
	ID int64

	// OwnerID is the user the todo belongs to.
	OwnerID int64

	// WorkspaceID is the workspace the todo lives in.
	WorkspaceID int64

	Title       string
	Description *string
	Done        bool

	// IsPrivate and IsGlobalPublic mirror the server's visibility flags.
	IsPrivate      bool
	IsGlobalPublic bool

	// DueDate is a YYYY-MM-DD string, nil when unset.
	DueDate *string
}
