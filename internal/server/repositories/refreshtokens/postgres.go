package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskplanner/internal/common"
	"github.com/dmitrijs2005/taskplanner/internal/dbx"
	"github.com/dmitrijs2005/taskplanner/internal/server/models"
)

// PostgresRepository stores the opaque refresh tokens the login and
// token-rotation flows hand out.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, userID int64, token string, validity time.Duration) error {
	query :=
		`INSERT INTO refresh_tokens (user_id, token, expires_at)
		 VALUES ($1, $2, $3)
		 `

	if _, err := r.db.ExecContext(ctx, query, userID, token, time.Now().Add(validity)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Find returns common.ErrorNotFound for an unknown token string.
func (r *PostgresRepository) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	query :=
		`SELECT user_id, expires_at FROM refresh_tokens
		 WHERE token = $1
		 `

	rt := &models.RefreshToken{Token: token}
	err := r.db.QueryRowContext(ctx, query, token).Scan(&rt.UserID, &rt.Expires)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rt, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, token string) error {
	query :=
		`DELETE FROM refresh_tokens
		 WHERE token = $1
		 `

	if _, err := r.db.ExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
