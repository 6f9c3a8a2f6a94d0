package emailverifications

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

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.EmailVerification, error) {
	query :=
		`SELECT id, email, code_hash, attempts, verified, expires_at, created_at FROM email_verifications
		 WHERE email = $1
		 `

	v := &models.EmailVerification{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(&v.ID, &v.Email, &v.CodeHash, &v.Attempts, &v.Verified, &v.ExpiresAt, &v.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return v, nil
}

func (r *PostgresRepository) Create(ctx context.Context, v *models.EmailVerification) (*models.EmailVerification, error) {

	query :=
		`INSERT INTO email_verifications (email, code_hash, expires_at)
         VALUES ($1, $2, $3)
		 RETURNING id, attempts, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		v.Email, v.CodeHash, v.ExpiresAt).Scan(&v.ID, &v.Attempts, &v.CreatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return v, nil
}

func (r *PostgresRepository) Refresh(ctx context.Context, email, codeHash string, expiresAt time.Time) (int, error) {
	query :=
		`UPDATE email_verifications
		 SET code_hash = $2, expires_at = $3, attempts = attempts + 1, verified = FALSE
		 WHERE email = $1
		 RETURNING attempts
		 `

	var attempts int
	err := r.db.QueryRowContext(ctx, query, email, codeHash, expiresAt).Scan(&attempts)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrorNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}

	return attempts, nil
}

func (r *PostgresRepository) MarkVerified(ctx context.Context, email string) error {
	query :=
		`UPDATE email_verifications SET verified = TRUE
		 WHERE email = $1
		 `

	res, err := r.db.ExecContext(ctx, query, email)
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

func (r *PostgresRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query :=
		`DELETE FROM email_verifications
		 WHERE created_at < $1
		 `

	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return affected, nil
}
