package workspaces

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/taskplanner/internal/common"
	"github.com/dmitrijs2005/taskplanner/internal/dbx"
	"github.com/dmitrijs2005/taskplanner/internal/server/models"
)

// PostgresRepository stores workspaces. The name column is NULL for personal
// workspaces; it is exposed to callers as an empty string.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, ws *models.Workspace) (*models.Workspace, error) {

	query :=
		`INSERT INTO workspaces (kind, name, created_by)
         VALUES ($1, NULLIF($2, ''), $3)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		ws.Kind, ws.Name, ws.CreatedBy).Scan(&ws.ID, &ws.CreatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return ws, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Workspace, error) {
	query :=
		`SELECT id, kind, COALESCE(name, ''), created_by, created_at FROM workspaces
		 WHERE id = $1
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Workspace, error) {
	query :=
		`SELECT id, kind, COALESCE(name, ''), created_by, created_at FROM workspaces
		 WHERE id = $1
		 FOR UPDATE
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetPersonalByUserID(ctx context.Context, userID int64) (*models.Workspace, error) {
	query :=
		`SELECT id, kind, COALESCE(name, ''), created_by, created_at FROM workspaces
		 WHERE created_by = $1 AND kind = 'personal'
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, userID))
}

func (r *PostgresRepository) ListByMember(ctx context.Context, userID int64) ([]*models.Workspace, error) {
	query :=
		`SELECT w.id, w.kind, COALESCE(w.name, ''), w.created_by, w.created_at
		 FROM workspaces w
		 JOIN memberships m ON m.workspace_id = w.id
		 WHERE m.user_id = $1
		 ORDER BY w.id
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Workspace
	for rows.Next() {
		ws := &models.Workspace{}
		if err := rows.Scan(&ws.ID, &ws.Kind, &ws.Name, &ws.CreatedBy, &ws.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, ws)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) UpdateName(ctx context.Context, id int64, name string) (*models.Workspace, error) {
	query :=
		`UPDATE workspaces SET name = $2
		 WHERE id = $1
		 RETURNING id, kind, COALESCE(name, ''), created_by, created_at
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, id, name))
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	query :=
		`DELETE FROM workspaces
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

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.Workspace, error) {
	ws := &models.Workspace{}
	err := row.Scan(&ws.ID, &ws.Kind, &ws.Name, &ws.CreatedBy, &ws.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return ws, nil
}
