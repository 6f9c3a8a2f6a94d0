package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/taskplanner/internal/client/client"
	"github.com/dmitrijs2005/taskplanner/internal/client/models"
	"github.com/dmitrijs2005/taskplanner/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/taskplanner/internal/client/repositories/todos"
	"github.com/dmitrijs2005/taskplanner/internal/dbx"
)

// TodoService defines todo operations for the CLI. List prefers the server
// and falls back to the local cache when it is unreachable; everything else
// requires the server.
type TodoService interface {
	// List returns the todos visible to the caller. The bool reports whether
	// the result was served from the local cache.
	List(ctx context.Context) ([]models.Todo, bool, error)
	Get(ctx context.Context, id int64) (*client.Todo, error)
	Add(ctx context.Context, title string, description *string, dueDate *string) (*client.Todo, error)
	SetDone(ctx context.Context, id int64, done bool) (*client.Todo, error)
	Delete(ctx context.Context, id int64) (*client.Todo, error)
	// Sync replaces the local cache with the server's view and returns the
	// number of todos cached.
	Sync(ctx context.Context) (int, error)
	Workspaces(ctx context.Context) ([]client.Workspace, error)
	// SelectWorkspace remembers the workspace new todos go to. Zero resets
	// the selection to the personal workspace.
	SelectWorkspace(ctx context.Context, id int64) error
	SelectedWorkspace(ctx context.Context) (*int64, error)
}

type todoService struct {
	client client.Client
	db     *sql.DB
}

// NewTodoService constructs a TodoService bound to the given API client and DB.
func NewTodoService(client client.Client, db *sql.DB) TodoService {
	return &todoService{client: client, db: db}
}

func (s *todoService) getTodoRepo() todos.Repository {
	return todos.NewSQLiteRepository(s.db)
}

func (s *todoService) getMetadataRepo() metadata.Repository {
	return metadata.NewSQLiteRepository(s.db)
}

func cacheTodo(t client.Todo) models.Todo {
	return models.Todo{
		ID:             t.ID,
		OwnerID:        t.OwnerID,
		WorkspaceID:    t.WorkspaceID,
		Title:          t.Title,
		Description:    t.Description,
		Done:           t.Done,
		IsPrivate:      t.IsPrivate,
		IsGlobalPublic: t.IsGlobalPublic,
		DueDate:        t.DueDate,
	}
}

func (s *todoService) List(ctx context.Context) ([]models.Todo, bool, error) {
	remote, err := s.client.VisibleTodos(ctx)
	if err != nil {
		if errors.Is(err, client.ErrUnavailable) {
			cached, cacheErr := s.getTodoRepo().GetAll(ctx)
			if cacheErr != nil {
				return nil, false, fmt.Errorf("error reading cache: %w", cacheErr)
			}
			return cached, true, nil
		}
		return nil, false, err
	}

	result := make([]models.Todo, 0, len(remote))
	for _, t := range remote {
		result = append(result, cacheTodo(t))
	}
	return result, false, nil
}

func (s *todoService) Get(ctx context.Context, id int64) (*client.Todo, error) {
	return s.client.GetTodo(ctx, id)
}

// Add creates a todo in the currently selected workspace, or in the personal
// workspace when none is selected.
func (s *todoService) Add(ctx context.Context, title string, description *string, dueDate *string) (*client.Todo, error) {
	workspaceID, err := s.SelectedWorkspace(ctx)
	if err != nil {
		return nil, err
	}

	req := client.CreateTodoRequest{
		Title:       title,
		Description: description,
		WorkspaceID: workspaceID,
		DueDate:     dueDate,
	}
	return s.client.CreateTodo(ctx, req)
}

func (s *todoService) SetDone(ctx context.Context, id int64, done bool) (*client.Todo, error) {
	return s.client.SetTodoDone(ctx, id, done)
}

func (s *todoService) Delete(ctx context.Context, id int64) (*client.Todo, error) {
	return s.client.DeleteTodo(ctx, id)
}

// Sync mirrors the server's visible todos into the local cache. The cache is
// replaced wholesale in one transaction so readers never see a partial mix
// of old and new rows.
func (s *todoService) Sync(ctx context.Context) (int, error) {
	remote, err := s.client.VisibleTodos(ctx)
	if err != nil {
		return 0, err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := todos.NewSQLiteRepository(tx)
		if err := repo.DeleteAll(ctx); err != nil {
			return err
		}
		for _, t := range remote {
			cached := cacheTodo(t)
			if err := repo.Upsert(ctx, &cached); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("error updating cache: %w", err)
	}
	return len(remote), nil
}

func (s *todoService) Workspaces(ctx context.Context) ([]client.Workspace, error) {
	return s.client.Workspaces(ctx)
}

// SelectWorkspace checks the workspace against the caller's memberships
// before remembering it, so a typo does not silently send todos elsewhere.
func (s *todoService) SelectWorkspace(ctx context.Context, id int64) error {
	metadataRepo := s.getMetadataRepo()

	if id == 0 {
		return metadataRepo.Delete(ctx, keyWorkspaceID)
	}

	list, err := s.client.Workspaces(ctx)
	if err != nil {
		return err
	}
	found := false
	for _, w := range list {
		if w.ID == id {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("you are not a member of workspace %d", id)
	}

	return metadataRepo.Set(ctx, keyWorkspaceID, []byte(strconv.FormatInt(id, 10)))
}

// SelectedWorkspace returns the remembered workspace ID, or nil when todos
// go to the personal workspace.
func (s *todoService) SelectedWorkspace(ctx context.Context) (*int64, error) {
	raw, err := s.getMetadataRepo().Get(ctx, keyWorkspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to read selected workspace: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	id, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt selected workspace %q: %w", raw, err)
	}
	return &id, nil
}
