// Package services contains server-side business logic: the workspace
// membership lifecycle, todo visibility resolution, account and token
// management, and email verification.
package services

// OwnershipResolution is the workspace assignment and visibility flags
// computed for a todo when it is created or moved.
type OwnershipResolution struct {
	WorkspaceID    int64
	IsPrivate      bool
	IsGlobalPublic bool
}

// ResolveOwnershipOnCreate decides where a new todo lands and how visible it
// starts out. A requestedWorkspaceID of zero targets the owner's personal
// workspace. Todos in a personal workspace are private unless global-public;
// todos in a team workspace are never private. Membership in a requested
// team workspace must be verified by the caller in the same transaction as
// the insert.
func ResolveOwnershipOnCreate(personalWorkspaceID, requestedWorkspaceID int64, requestedGlobalPublic bool) OwnershipResolution {
	res := OwnershipResolution{IsGlobalPublic: requestedGlobalPublic}

	if requestedWorkspaceID == 0 || requestedWorkspaceID == personalWorkspaceID {
		res.WorkspaceID = personalWorkspaceID
		res.IsPrivate = !requestedGlobalPublic
		return res
	}

	res.WorkspaceID = requestedWorkspaceID
	res.IsPrivate = false
	return res
}

// ResolveOwnershipOnMove recomputes the flags when a todo's workspace
// reference changes. Moving back to the personal workspace (or to workspace
// zero) makes the todo private again unless it is global-public; moving into
// a team workspace clears the private flag. Membership in a team target must
// be verified by the caller in the same transaction as the update.
func ResolveOwnershipOnMove(personalWorkspaceID, newWorkspaceID int64, isGlobalPublic bool) OwnershipResolution {
	res := OwnershipResolution{IsGlobalPublic: isGlobalPublic}

	if newWorkspaceID == 0 || newWorkspaceID == personalWorkspaceID {
		res.WorkspaceID = personalWorkspaceID
		res.IsPrivate = !isGlobalPublic
		return res
	}

	res.WorkspaceID = newWorkspaceID
	res.IsPrivate = false
	return res
}
