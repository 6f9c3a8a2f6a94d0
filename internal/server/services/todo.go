package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskplanner/internal/common"
	"github.com/dmitrijs2005/taskplanner/internal/dbx"
	"github.com/dmitrijs2005/taskplanner/internal/server/models"
	"github.com/dmitrijs2005/taskplanner/internal/server/repositories/repomanager"
)

// defaultListLimit caps a visible-todos page when the client does not ask
// for a size.
const defaultListLimit = 100

// CreateTodoParams carries the client-supplied fields of a new todo.
// WorkspaceID zero targets the owner's personal workspace.
type CreateTodoParams struct {
	Title          string
	Description    *string
	Done           bool
	IsGlobalPublic bool
	WorkspaceID    int64
	StartDate      *time.Time
	StartTime      *string
	EndDate        *time.Time
	EndTime        *string
	DueDate        *time.Time
}

// UpdateTodoParams is a partial update where an absent field and an explicit
// null are different things. Nullable fields pair a Set flag with the value;
// for non-nullable fields a nil pointer means "leave unchanged".
// WorkspaceID zero moves the todo to the owner's personal workspace.
type UpdateTodoParams struct {
	Title *string
	Done  *bool

	SetDescription bool
	Description    *string

	SetIsGlobalPublic bool
	IsGlobalPublic    bool

	SetWorkspaceID bool
	WorkspaceID    int64

	SetStartDate bool
	StartDate    *time.Time

	SetStartTime bool
	StartTime    *string

	SetEndDate bool
	EndDate    *time.Time

	SetEndTime bool
	EndTime    *string

	SetDueDate bool
	DueDate    *time.Time
}

// TodoService manages todos and resolves their workspace assignment and
// visibility flags on create and move.
type TodoService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewTodoService(db *sql.DB, m repomanager.RepositoryManager) *TodoService {
	return &TodoService{db: db, repomanager: m}
}

// Create inserts a new todo for ownerID. The membership check on a team
// target and the insert share one serializable transaction, so the todo
// cannot land in a workspace the owner just left.
func (s *TodoService) Create(ctx context.Context, ownerID int64, params CreateTodoParams) (*models.Todo, error) {
	var created *models.Todo

	err := dbx.WithSerializableTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		personal, err := s.personalWorkspace(ctx, tx, ownerID)
		if err != nil {
			return err
		}

		res := ResolveOwnershipOnCreate(personal.ID, params.WorkspaceID, params.IsGlobalPublic)
		if res.WorkspaceID != personal.ID {
			if err := s.requireTargetMember(ctx, tx, res.WorkspaceID, ownerID); err != nil {
				return err
			}
		}

		created, err = s.repomanager.Todos(tx).Create(ctx, &models.Todo{
			OwnerID:        ownerID,
			WorkspaceID:    res.WorkspaceID,
			Title:          params.Title,
			Description:    params.Description,
			Done:           params.Done,
			IsPrivate:      res.IsPrivate,
			IsGlobalPublic: res.IsGlobalPublic,
			StartDate:      params.StartDate,
			StartTime:      params.StartTime,
			EndDate:        params.EndDate,
			EndTime:        params.EndTime,
			DueDate:        params.DueDate,
		})
		if err != nil {
			return fmt.Errorf("error creating todo: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// Get returns a single todo. Only the owner may read a todo directly by id.
func (s *TodoService) Get(ctx context.Context, todoID, requesterID int64) (*models.Todo, error) {
	todo, err := s.repomanager.Todos(s.db).GetByID(ctx, todoID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.WithDetail(common.ErrorNotFound, "Todo not found")
		}
		return nil, fmt.Errorf("error loading todo: %w", err)
	}
	if todo.OwnerID != requesterID {
		return nil, common.WithDetail(common.ErrorForbidden, "Not enough permissions")
	}
	return todo, nil
}

// Update applies a partial update to the requester's own todo. Supplying a
// workspace means a move, and the visibility flags are recomputed for the
// workspace the todo ends up in.
func (s *TodoService) Update(ctx context.Context, todoID, requesterID int64, params UpdateTodoParams) (*models.Todo, error) {
	var updated *models.Todo

	err := dbx.WithSerializableTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		todo, err := s.repomanager.Todos(tx).GetByID(ctx, todoID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.WithDetail(common.ErrorNotFound, "Todo not found")
			}
			return fmt.Errorf("error loading todo: %w", err)
		}
		if todo.OwnerID != requesterID {
			return common.WithDetail(common.ErrorForbidden, "Not enough permissions")
		}

		if params.Title != nil {
			todo.Title = *params.Title
		}
		if params.Done != nil {
			todo.Done = *params.Done
		}
		if params.SetDescription {
			todo.Description = params.Description
		}
		if params.SetIsGlobalPublic {
			todo.IsGlobalPublic = params.IsGlobalPublic
		}
		if params.SetStartDate {
			todo.StartDate = params.StartDate
		}
		if params.SetStartTime {
			todo.StartTime = params.StartTime
		}
		if params.SetEndDate {
			todo.EndDate = params.EndDate
		}
		if params.SetEndTime {
			todo.EndTime = params.EndTime
		}
		if params.SetDueDate {
			todo.DueDate = params.DueDate
		}

		personal, err := s.personalWorkspace(ctx, tx, requesterID)
		if err != nil {
			return err
		}

		target := todo.WorkspaceID
		if params.SetWorkspaceID {
			target = params.WorkspaceID
		}
		res := ResolveOwnershipOnMove(personal.ID, target, todo.IsGlobalPublic)
		if params.SetWorkspaceID && res.WorkspaceID != personal.ID {
			if err := s.requireTargetMember(ctx, tx, res.WorkspaceID, requesterID); err != nil {
				return err
			}
		}
		todo.WorkspaceID = res.WorkspaceID
		todo.IsPrivate = res.IsPrivate
		todo.IsGlobalPublic = res.IsGlobalPublic

		updated, err = s.repomanager.Todos(tx).Update(ctx, todo)
		if err != nil {
			return fmt.Errorf("error updating todo: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Delete removes the requester's own todo and returns its last state.
func (s *TodoService) Delete(ctx context.Context, todoID, requesterID int64) (*models.Todo, error) {
	var deleted *models.Todo

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		todo, err := s.repomanager.Todos(tx).GetByID(ctx, todoID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.WithDetail(common.ErrorNotFound, "Todo not found")
			}
			return fmt.Errorf("error loading todo: %w", err)
		}
		if todo.OwnerID != requesterID {
			return common.WithDetail(common.ErrorForbidden, "Not enough permissions")
		}

		if err := s.repomanager.Todos(tx).Delete(ctx, todo.ID); err != nil {
			return fmt.Errorf("error deleting todo: %w", err)
		}
		deleted = todo
		return nil
	})
	if err != nil {
		return nil, err
	}

	return deleted, nil
}

// ListVisible pages through every todo the user may see: their own, all
// global-public ones, and non-private todos of workspaces they belong to.
func (s *TodoService) ListVisible(ctx context.Context, userID int64, skip, limit int) ([]*models.Todo, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.repomanager.Todos(s.db).ListVisible(ctx, userID, skip, limit)
}

// --- helpers below ---

func (s *TodoService) personalWorkspace(ctx context.Context, tx dbx.DBTX, userID int64) (*models.Workspace, error) {
	ws, err := s.repomanager.Workspaces(tx).GetPersonalByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("user %d has no personal workspace: %w", userID, common.ErrorInternal)
		}
		return nil, fmt.Errorf("error loading personal workspace: %w", err)
	}
	return ws, nil
}

func (s *TodoService) requireTargetMember(ctx context.Context, tx dbx.DBTX, workspaceID, userID int64) error {
	if _, err := s.repomanager.Memberships(tx).Get(ctx, workspaceID, userID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.WithDetail(common.ErrorForbidden, "user is not a member of the target workspace")
		}
		return fmt.Errorf("error checking membership: %w", err)
	}
	return nil
}
