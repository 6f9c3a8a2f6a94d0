package memberships

import (
	"context"

	"github.com/dmitrijs2005/taskplanner/internal/server/models"
)

// Repository stores workspace memberships. The (workspace, user) pair is
// unique; Create surfaces a constraint race as common.ErrorAlreadyExists so
// callers can treat a duplicate insert as an idempotent no-op.
type Repository interface {
	Create(ctx context.Context, m *models.Membership) (*models.Membership, error)
	Get(ctx context.Context, workspaceID, userID int64) (*models.Membership, error)
	ListMembers(ctx context.Context, workspaceID int64) ([]*models.Member, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.Membership, error)
	Delete(ctx context.Context, workspaceID, userID int64) error
	DeleteByWorkspace(ctx context.Context, workspaceID int64) error
}
