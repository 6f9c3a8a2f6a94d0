package todos

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/taskplanner/internal/client/models"
	"github.com/dmitrijs2005/taskplanner/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or
// *sql.Tx), so a sync can replace the cache atomically.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, t *models.Todo) error {
	query := `INSERT INTO todos (id, title, description, done, workspace_id, owner_id, is_private, is_global_public, due_date)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET title = excluded.title,
				description = excluded.description,
				done = excluded.done,
				workspace_id = excluded.workspace_id,
				owner_id = excluded.owner_id,
				is_private = excluded.is_private,
				is_global_public = excluded.is_global_public,
				due_date = excluded.due_date
	`
	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.Title, t.Description, t.Done, t.WorkspaceID, t.OwnerID,
		t.IsPrivate, t.IsGlobalPublic, t.DueDate)
	if err != nil {
		return fmt.Errorf("failed to upsert todo: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Todo, error) {
	query := `SELECT id, title, description, done, workspace_id, owner_id, is_private, is_global_public, due_date
			FROM todos ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select todos: %w", err)
	}
	defer rows.Close()

	var result []models.Todo
	for rows.Next() {
		var item models.Todo
		if err := rows.Scan(&item.ID, &item.Title, &item.Description, &item.Done,
			&item.WorkspaceID, &item.OwnerID, &item.IsPrivate, &item.IsGlobalPublic,
			&item.DueDate); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM todos`); err != nil {
		return fmt.Errorf("failed to clear todos: %w", err)
	}
	return nil
}
