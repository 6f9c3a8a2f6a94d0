package models

import "time"

// Todo is a unit of work. Every todo belongs to exactly one workspace;
// IsPrivate and IsGlobalPublic control who besides the owner can see it.
// IsGlobalPublic implies !IsPrivate.
type Todo struct {
	ID             int64
	OwnerID        int64
	WorkspaceID    int64
	Title          string
	Description    *string
	Done           bool
	IsPrivate      bool
	IsGlobalPublic bool
	StartDate      *time.Time
	StartTime      *string // "HH:MM:SS"
	EndDate        *time.Time
	EndTime        *string
	DueDate        *time.Time
	CreatedAt      time.Time
}
