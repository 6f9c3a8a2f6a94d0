// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/taskplanner/internal/dbx"
	"github.com/dmitrijs2005/taskplanner/internal/server/migrations"
	"github.com/dmitrijs2005/taskplanner/internal/server/repositories/emailverifications"
	"github.com/dmitrijs2005/taskplanner/internal/server/repositories/memberships"
	"github.com/dmitrijs2005/taskplanner/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/taskplanner/internal/server/repositories/todos"
	"github.com/dmitrijs2005/taskplanner/internal/server/repositories/users"
	"github.com/dmitrijs2005/taskplanner/internal/server/repositories/workspaces"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

// Users returns a users.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

// Workspaces returns a workspaces.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Workspaces(db dbx.DBTX) workspaces.Repository {
	return workspaces.NewPostgresRepository(db)
}

// Memberships returns a memberships.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Memberships(db dbx.DBTX) memberships.Repository {
	return memberships.NewPostgresRepository(db)
}

// Todos returns a todos.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Todos(db dbx.DBTX) todos.Repository {
	return todos.NewPostgresRepository(db)
}

// RefreshTokens returns a refreshtokens.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewPostgresRepository(db)
}

// EmailVerifications returns an emailverifications.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) EmailVerifications(db dbx.DBTX) emailverifications.Repository {
	return emailverifications.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetDialect("pgx")
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager(db *sql.DB) (RepositoryManager, error) {
	return &PostgresRepositoryManager{}, nil
}
