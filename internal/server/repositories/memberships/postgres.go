package memberships

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/taskplanner/internal/common"
	"github.com/dmitrijs2005/taskplanner/internal/dbx"
	"github.com/dmitrijs2005/taskplanner/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, m *models.Membership) (*models.Membership, error) {

	query :=
		`INSERT INTO memberships (workspace_id, user_id, role)
         VALUES ($1, $2, $3)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		m.WorkspaceID, m.UserID, m.Role).Scan(&m.ID, &m.CreatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return m, nil
}

func (r *PostgresRepository) Get(ctx context.Context, workspaceID, userID int64) (*models.Membership, error) {
	query :=
		`SELECT id, workspace_id, user_id, role, created_at FROM memberships
		 WHERE workspace_id = $1 AND user_id = $2
		 `

	m := &models.Membership{}
	err := r.db.QueryRowContext(ctx, query, workspaceID, userID).Scan(&m.ID, &m.WorkspaceID, &m.UserID, &m.Role, &m.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return m, nil
}

func (r *PostgresRepository) ListMembers(ctx context.Context, workspaceID int64) ([]*models.Member, error) {
	query :=
		`SELECT m.user_id, u.username, u.email, m.role, m.created_at
		 FROM memberships m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.workspace_id = $1
		 ORDER BY m.id
		 `

	rows, err := r.db.QueryContext(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Member
	for rows.Next() {
		m := &models.Member{}
		if err := rows.Scan(&m.UserID, &m.Username, &m.Email, &m.Role, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Membership, error) {
	query :=
		`SELECT id, workspace_id, user_id, role, created_at FROM memberships
		 WHERE user_id = $1
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Membership
	for rows.Next() {
		m := &models.Membership{}
		if err := rows.Scan(&m.ID, &m.WorkspaceID, &m.UserID, &m.Role, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, workspaceID, userID int64) error {
	query :=
		`DELETE FROM memberships
		 WHERE workspace_id = $1 AND user_id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, workspaceID, userID)
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

func (r *PostgresRepository) DeleteByWorkspace(ctx context.Context, workspaceID int64) error {
	query :=
		`DELETE FROM memberships
		 WHERE workspace_id = $1
		 `

	if _, err := r.db.ExecContext(ctx, query, workspaceID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
