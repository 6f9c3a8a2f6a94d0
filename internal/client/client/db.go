package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/taskplanner/internal/client/migrations"
	"github.com/pressly/goose/v3"
)

// RunMigrations applies the embedded cache schema to db. Safe to call on
// every startup.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens (creating if needed) the local SQLite cache at dsn and
// brings its schema up to date.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
