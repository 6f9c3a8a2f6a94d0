package workspaces

import (
	"context"

	"github.com/dmitrijs2005/taskplanner/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, ws *models.Workspace) (*models.Workspace, error)
	GetByID(ctx context.Context, id int64) (*models.Workspace, error)

	// GetByIDForUpdate locks the workspace row for the rest of the enclosing
	// transaction, so concurrent membership mutations on the same workspace
	// serialize instead of interleaving.
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Workspace, error)

	GetPersonalByUserID(ctx context.Context, userID int64) (*models.Workspace, error)
	ListByMember(ctx context.Context, userID int64) ([]*models.Workspace, error)
	UpdateName(ctx context.Context, id int64, name string) (*models.Workspace, error)
	Delete(ctx context.Context, id int64) error
}
