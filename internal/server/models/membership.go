package models

import "time"

// Role is the position a user holds inside a workspace.
type Role string

const (
	RoleOwner        Role = "owner"
	RoleCollaborator Role = "collaborator"
)

// Membership links a user to a workspace. Unique per (workspace, user).
type Membership struct {
	ID          int64
	WorkspaceID int64
	UserID      int64
	Role        Role
	CreatedAt   time.Time
}

// Member is a membership joined with the member's user record, as returned
// by member-listing queries.
type Member struct {
	UserID    int64
	Username  string
	Email     string
	Role      Role
	CreatedAt time.Time
}
