package todos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/taskplanner/internal/common"
	"github.com/dmitrijs2005/taskplanner/internal/dbx"
	"github.com/dmitrijs2005/taskplanner/internal/server/models"
)

const todoColumns = `id, owner_id, workspace_id, title, description, done, is_private, is_global_public, start_date, start_time, end_date, end_time, due_date, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, todo *models.Todo) (*models.Todo, error) {

	query :=
		`INSERT INTO todos (owner_id, workspace_id, title, description, done, is_private, is_global_public, start_date, start_time, end_date, end_time, due_date)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		todo.OwnerID, todo.WorkspaceID, todo.Title, todo.Description, todo.Done,
		todo.IsPrivate, todo.IsGlobalPublic,
		todo.StartDate, todo.StartTime, todo.EndDate, todo.EndTime, todo.DueDate).
		Scan(&todo.ID, &todo.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return todo, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE id = $1`

	todo := &models.Todo{}
	err := scanTodo(r.db.QueryRowContext(ctx, query, id), todo)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return todo, nil
}

func (r *PostgresRepository) Update(ctx context.Context, todo *models.Todo) (*models.Todo, error) {
	query :=
		`UPDATE todos
		 SET workspace_id = $2, title = $3, description = $4, done = $5, is_private = $6, is_global_public = $7,
		     start_date = $8, start_time = $9, end_date = $10, end_time = $11, due_date = $12
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query,
		todo.ID, todo.WorkspaceID, todo.Title, todo.Description, todo.Done,
		todo.IsPrivate, todo.IsGlobalPublic,
		todo.StartDate, todo.StartTime, todo.EndDate, todo.EndTime, todo.DueDate)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return nil, common.ErrorNotFound
	}

	return todo, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	query :=
		`DELETE FROM todos
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *PostgresRepository) ListVisible(ctx context.Context, userID int64, skip, limit int) ([]*models.Todo, error) {
	query :=
		`SELECT ` + todoColumns + ` FROM todos t
		 WHERE t.owner_id = $1
		    OR t.is_global_public
		    OR (NOT t.is_private AND EXISTS (
		          SELECT 1 FROM memberships m
		          WHERE m.workspace_id = t.workspace_id AND m.user_id = $1))
		 ORDER BY t.id
		 OFFSET $2 LIMIT $3
		 `

	return r.list(ctx, query, userID, skip, limit)
}

func (r *PostgresRepository) ListByWorkspace(ctx context.Context, workspaceID int64) ([]*models.Todo, error) {
	query :=
		`SELECT ` + todoColumns + ` FROM todos
		 WHERE workspace_id = $1
		 ORDER BY id
		 `

	return r.list(ctx, query, workspaceID)
}

func (r *PostgresRepository) ListByWorkspaceAndOwner(ctx context.Context, workspaceID, ownerID int64) ([]*models.Todo, error) {
	query :=
		`SELECT ` + todoColumns + ` FROM todos
		 WHERE workspace_id = $1 AND owner_id = $2
		 ORDER BY id
		 `

	return r.list(ctx, query, workspaceID, ownerID)
}

func (r *PostgresRepository) ReassignToPersonal(ctx context.Context, workspaceID, ownerID, personalWorkspaceID int64) (int64, error) {
	// reassigned todos turn private again; global-public ones stay public
	query :=
		`UPDATE todos
		 SET workspace_id = $3, is_private = NOT is_global_public
		 WHERE workspace_id = $1 AND owner_id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, workspaceID, ownerID, personalWorkspaceID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return affected, nil
}

func (r *PostgresRepository) DeleteByOwner(ctx context.Context, ownerID int64) error {
	query :=
		`DELETE FROM todos
		 WHERE owner_id = $1
		 `

	if _, err := r.db.ExecContext(ctx, query, ownerID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Todo, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Todo
	for rows.Next() {
		todo := &models.Todo{}
		if err := scanTodo(rows, todo); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

// scanner is the subset of sql.Row/sql.Rows used by scanTodo.
type scanner interface {
	Scan(dest ...any) error
}

func scanTodo(row scanner, todo *models.Todo) error {
	return row.Scan(
		&todo.ID, &todo.OwnerID, &todo.WorkspaceID, &todo.Title, &todo.Description, &todo.Done,
		&todo.IsPrivate, &todo.IsGlobalPublic,
		&todo.StartDate, &todo.StartTime, &todo.EndDate, &todo.EndTime, &todo.DueDate,
		&todo.CreatedAt)
}
