package models

import "time"

// WorkspaceKind discriminates personal workspaces from shared team ones.
// The kind is stored explicitly rather than inferred from a missing name.
type WorkspaceKind string

const (
	WorkspaceKindPersonal WorkspaceKind = "personal"
	WorkspaceKindTeam     WorkspaceKind = "team"
)

type Workspace struct {
	ID        int64
	Kind      WorkspaceKind
	Name      string // empty for personal workspaces
	CreatedBy int64
	CreatedAt time.Time
}

// IsPersonal reports whether the workspace is a user's single private one.
func (w *Workspace) IsPersonal() bool {
	return w.Kind == WorkspaceKindPersonal
}
