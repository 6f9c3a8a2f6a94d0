// Package todos is the client-side cache of the caller's visible todos.
// Sync replaces the whole cache with the server's answer; offline listing
// reads it back.
package todos

import (
	"context"

	"github.com/dmitrijs2005/taskplanner/internal/client/models"
)

type Repository interface {
	// Upsert inserts a todo or updates an existing one by id.
	Upsert(ctx context.Context, todo *models.Todo) error

	// GetAll returns all cached todos ordered by id.
	GetAll(ctx context.Context) ([]models.Todo, error)

	// DeleteAll clears the cache.
	DeleteAll(ctx context.Context) error
}
