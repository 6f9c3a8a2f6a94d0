package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/taskplanner/internal/common"
	"github.com/dmitrijs2005/taskplanner/internal/dbx"
	"github.com/dmitrijs2005/taskplanner/internal/server/models"
	"github.com/dmitrijs2005/taskplanner/internal/server/repositories/repomanager"
)

// InviteOutcome reports what an invite attempt changed. The two no-op
// outcomes are normal results, not errors, so a repeated or racing invite
// stays idempotent.
type InviteOutcome int

const (
	InviteCreated InviteOutcome = iota
	InviteAlreadyMember
	InviteUserNotFound
)

// LeaveResult reports whether a leave or member-removal cascade dissolved
// the whole workspace.
type LeaveResult struct {
	WorkspaceDeleted bool
}

// WorkspaceService coordinates every operation that changes workspace
// membership or existence. Each multi-entity mutation runs inside one
// serializable transaction with the workspace row locked first, so a
// partially applied cascade is never observable.
type WorkspaceService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewWorkspaceService(db *sql.DB, m repomanager.RepositoryManager) *WorkspaceService {
	return &WorkspaceService{db: db, repomanager: m}
}

// createPersonalWorkspace provisions the user's single personal workspace
// with its owner membership. It runs inside the caller's transaction so the
// user row and the workspace appear together. A duplicate means the
// one-personal-workspace invariant is already broken and is surfaced as an
// internal error.
func createPersonalWorkspace(ctx context.Context, tx dbx.DBTX, rm repomanager.RepositoryManager, userID int64) (*models.Workspace, error) {
	ws, err := rm.Workspaces(tx).Create(ctx, &models.Workspace{Kind: models.WorkspaceKindPersonal, CreatedBy: userID})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, fmt.Errorf("personal workspace already exists for user %d: %w", userID, common.ErrorInternal)
		}
		return nil, fmt.Errorf("error creating personal workspace: %w", err)
	}

	_, err = rm.Memberships(tx).Create(ctx, &models.Membership{WorkspaceID: ws.ID, UserID: userID, Role: models.RoleOwner})
	if err != nil {
		return nil, fmt.Errorf("error creating owner membership: %w", err)
	}

	return ws, nil
}

// CreateTeam creates a team workspace and its owner membership.
func (s *WorkspaceService) CreateTeam(ctx context.Context, ownerID int64, name string) (*models.Workspace, error) {
	var ws *models.Workspace

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		ws, err = s.repomanager.Workspaces(tx).Create(ctx, &models.Workspace{Kind: models.WorkspaceKindTeam, Name: name, CreatedBy: ownerID})
		if err != nil {
			return fmt.Errorf("error creating workspace: %w", err)
		}

		_, err = s.repomanager.Memberships(tx).Create(ctx, &models.Membership{WorkspaceID: ws.ID, UserID: ownerID, Role: models.RoleOwner})
		if err != nil {
			return fmt.Errorf("error creating owner membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ws, nil
}

// List returns every workspace the user belongs to, the personal one
// included.
func (s *WorkspaceService) List(ctx context.Context, userID int64) ([]*models.Workspace, error) {
	return s.repomanager.Workspaces(s.db).ListByMember(ctx, userID)
}

// Rename updates a team workspace's name. Owner only.
func (s *WorkspaceService) Rename(ctx context.Context, workspaceID, requesterID int64, name string) (*models.Workspace, error) {
	var ws *models.Workspace

	err := dbx.WithSerializableTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		locked, err := s.lockWorkspace(ctx, tx, workspaceID)
		if err != nil {
			return err
		}
		if locked.IsPersonal() {
			return common.WithDetail(common.ErrorValidation, "Cannot rename a personal workspace")
		}
		if err := s.requireOwner(ctx, tx, workspaceID, requesterID, "Only the workspace owner can update the workspace"); err != nil {
			return err
		}

		ws, err = s.repomanager.Workspaces(tx).UpdateName(ctx, workspaceID, name)
		if err != nil {
			return fmt.Errorf("error renaming workspace: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ws, nil
}

// Invite adds the user behind inviteeEmail as a collaborator. Unknown
// addresses and existing members yield no-op outcomes; losing an insert race
// to a concurrent invite yields the same already-member no-op after a
// re-check.
func (s *WorkspaceService) Invite(ctx context.Context, workspaceID, inviterID int64, inviteeEmail string) (InviteOutcome, error) {
	var outcome InviteOutcome
	var inviteeID int64

	err := dbx.WithSerializableTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		outcome = InviteCreated

		ws, err := s.lockWorkspace(ctx, tx, workspaceID)
		if err != nil {
			return err
		}
		if ws.IsPersonal() {
			return common.WithDetail(common.ErrorValidation, "Cannot invite users to a personal workspace")
		}
		if err := s.requireOwner(ctx, tx, workspaceID, inviterID, "Only the workspace owner can invite users"); err != nil {
			return err
		}

		invitee, err := s.repomanager.Users(tx).GetByEmail(ctx, inviteeEmail)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				outcome = InviteUserNotFound
				return nil
			}
			return fmt.Errorf("error resolving invitee: %w", err)
		}
		inviteeID = invitee.ID

		msRepo := s.repomanager.Memberships(tx)
		if _, err := msRepo.Get(ctx, workspaceID, invitee.ID); err == nil {
			outcome = InviteAlreadyMember
			return nil
		} else if !errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("error checking membership: %w", err)
		}

		_, err = msRepo.Create(ctx, &models.Membership{WorkspaceID: workspaceID, UserID: invitee.ID, Role: models.RoleCollaborator})
		if err != nil {
			return fmt.Errorf("error creating membership: %w", err)
		}
		return nil
	})
	if err != nil {
		// A concurrent invite can commit the same membership between our
		// pre-check and insert; re-check once and report the no-op.
		if errors.Is(err, common.ErrorAlreadyExists) && inviteeID != 0 {
			if _, gerr := s.repomanager.Memberships(s.db).Get(ctx, workspaceID, inviteeID); gerr == nil {
				return InviteAlreadyMember, nil
			}
		}
		return 0, err
	}

	return outcome, nil
}

// Members lists the workspace's members with their user records. Any member
// may read the list.
func (s *WorkspaceService) Members(ctx context.Context, workspaceID, requesterID int64) ([]*models.Member, error) {
	if _, err := s.getWorkspace(ctx, workspaceID); err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, s.db, workspaceID, requesterID); err != nil {
		return nil, err
	}
	return s.repomanager.Memberships(s.db).ListMembers(ctx, workspaceID)
}

// Todos lists a workspace's todos for a member, optionally filtered to one
// member's own todos.
func (s *WorkspaceService) Todos(ctx context.Context, workspaceID, requesterID int64, filterUserID *int64) ([]*models.Todo, error) {
	if _, err := s.getWorkspace(ctx, workspaceID); err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, s.db, workspaceID, requesterID); err != nil {
		return nil, err
	}

	if filterUserID != nil {
		return s.repomanager.Todos(s.db).ListByWorkspaceAndOwner(ctx, workspaceID, *filterUserID)
	}
	return s.repomanager.Todos(s.db).ListByWorkspace(ctx, workspaceID)
}

// Leave removes the caller from a team workspace. A collaborator takes
// their own todos back to their personal workspace; the owner leaving
// dissolves the workspace entirely, returning every member's todos to their
// respective personal workspaces first.
func (s *WorkspaceService) Leave(ctx context.Context, workspaceID, userID int64) (*LeaveResult, error) {
	res := &LeaveResult{}

	err := dbx.WithSerializableTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		res.WorkspaceDeleted = false

		ws, err := s.lockWorkspace(ctx, tx, workspaceID)
		if err != nil {
			return err
		}
		if ws.IsPersonal() {
			return common.WithDetail(common.ErrorValidation, "Cannot leave a personal workspace")
		}

		m, err := s.repomanager.Memberships(tx).Get(ctx, workspaceID, userID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.WithDetail(common.ErrorNotFound, "User is not a member of this workspace")
			}
			return fmt.Errorf("error checking membership: %w", err)
		}

		if m.Role == models.RoleOwner {
			if err := ownerCascadeLocked(ctx, tx, s.repomanager, ws); err != nil {
				return err
			}
			res.WorkspaceDeleted = true
			return nil
		}

		return collaboratorLeaveLocked(ctx, tx, s.repomanager, ws, userID)
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

// RemoveMember ejects another member from the workspace. Owner only; the
// workspace survives and only the target's todos move. Removing oneself has
// leave's cascading semantics instead.
func (s *WorkspaceService) RemoveMember(ctx context.Context, workspaceID, removerID, targetUserID int64) (*LeaveResult, error) {
	if targetUserID == removerID {
		return s.Leave(ctx, workspaceID, removerID)
	}

	res := &LeaveResult{}

	err := dbx.WithSerializableTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		ws, err := s.lockWorkspace(ctx, tx, workspaceID)
		if err != nil {
			return err
		}
		if err := s.requireOwner(ctx, tx, workspaceID, removerID, "Only the owner may remove members"); err != nil {
			return err
		}

		if _, err := s.repomanager.Memberships(tx).Get(ctx, workspaceID, targetUserID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.WithDetail(common.ErrorNotFound, "User is not a member of this workspace")
			}
			return fmt.Errorf("error checking membership: %w", err)
		}

		return collaboratorLeaveLocked(ctx, tx, s.repomanager, ws, targetUserID)
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

// Delete dissolves a team workspace. Owner only; same cascade as the owner
// leaving.
func (s *WorkspaceService) Delete(ctx context.Context, workspaceID, requesterID int64) error {
	return dbx.WithSerializableTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		ws, err := s.lockWorkspace(ctx, tx, workspaceID)
		if err != nil {
			return err
		}
		if ws.IsPersonal() {
			return common.WithDetail(common.ErrorValidation, "Cannot delete a personal workspace")
		}
		if err := s.requireOwner(ctx, tx, workspaceID, requesterID, "Only the workspace owner can delete the workspace"); err != nil {
			return err
		}

		return ownerCascadeLocked(ctx, tx, s.repomanager, ws)
	})
}

// --- helpers below ---

func (s *WorkspaceService) getWorkspace(ctx context.Context, workspaceID int64) (*models.Workspace, error) {
	ws, err := s.repomanager.Workspaces(s.db).GetByID(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.WithDetail(common.ErrorNotFound, "Workspace not found")
		}
		return nil, fmt.Errorf("error loading workspace: %w", err)
	}
	return ws, nil
}

// lockWorkspace loads the workspace under a row lock so concurrent
// membership mutations on it serialize. A workspace dissolved by a
// concurrent cascade surfaces as not-found rather than resurrecting rows.
func (s *WorkspaceService) lockWorkspace(ctx context.Context, tx dbx.DBTX, workspaceID int64) (*models.Workspace, error) {
	ws, err := s.repomanager.Workspaces(tx).GetByIDForUpdate(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.WithDetail(common.ErrorNotFound, "Workspace not found")
		}
		return nil, fmt.Errorf("error locking workspace: %w", err)
	}
	return ws, nil
}

func (s *WorkspaceService) requireOwner(ctx context.Context, db dbx.DBTX, workspaceID, userID int64, denied string) error {
	m, err := s.repomanager.Memberships(db).Get(ctx, workspaceID, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.WithDetail(common.ErrorForbidden, denied)
		}
		return fmt.Errorf("error checking membership: %w", err)
	}
	if m.Role != models.RoleOwner {
		return common.WithDetail(common.ErrorForbidden, denied)
	}
	return nil
}

func (s *WorkspaceService) requireMember(ctx context.Context, db dbx.DBTX, workspaceID, userID int64) error {
	_, err := s.repomanager.Memberships(db).Get(ctx, workspaceID, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.WithDetail(common.ErrorForbidden, "User is not a member of this workspace")
		}
		return fmt.Errorf("error checking membership: %w", err)
	}
	return nil
}

// collaboratorLeaveLocked moves the member's own todos back to their
// personal workspace and deletes the membership. The caller holds the
// workspace row lock.
func collaboratorLeaveLocked(ctx context.Context, tx dbx.DBTX, rm repomanager.RepositoryManager, ws *models.Workspace, userID int64) error {
	personal, err := rm.Workspaces(tx).GetPersonalByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("user %d has no personal workspace: %w", userID, common.ErrorInternal)
		}
		return fmt.Errorf("error loading personal workspace: %w", err)
	}

	if _, err := rm.Todos(tx).ReassignToPersonal(ctx, ws.ID, userID, personal.ID); err != nil {
		return fmt.Errorf("error reassigning todos: %w", err)
	}
	if err := rm.Memberships(tx).Delete(ctx, ws.ID, userID); err != nil {
		return fmt.Errorf("error deleting membership: %w", err)
	}
	return nil
}

// ownerCascadeLocked dissolves the workspace: every member's todos return to
// their personal workspaces, then all memberships and the workspace itself
// are deleted. The caller holds the workspace row lock.
func ownerCascadeLocked(ctx context.Context, tx dbx.DBTX, rm repomanager.RepositoryManager, ws *models.Workspace) error {
	members, err := rm.Memberships(tx).ListMembers(ctx, ws.ID)
	if err != nil {
		return fmt.Errorf("error listing members: %w", err)
	}

	for _, m := range members {
		personal, err := rm.Workspaces(tx).GetPersonalByUserID(ctx, m.UserID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return fmt.Errorf("user %d has no personal workspace: %w", m.UserID, common.ErrorInternal)
			}
			return fmt.Errorf("error loading personal workspace: %w", err)
		}
		if _, err := rm.Todos(tx).ReassignToPersonal(ctx, ws.ID, m.UserID, personal.ID); err != nil {
			return fmt.Errorf("error reassigning todos: %w", err)
		}
	}

	if err := rm.Memberships(tx).DeleteByWorkspace(ctx, ws.ID); err != nil {
		return fmt.Errorf("error deleting memberships: %w", err)
	}
	if err := rm.Workspaces(tx).Delete(ctx, ws.ID); err != nil {
		return fmt.Errorf("error deleting workspace: %w", err)
	}
	return nil
}
