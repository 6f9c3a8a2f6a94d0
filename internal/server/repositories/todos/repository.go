package todos

import (
	"context"

	"github.com/dmitrijs2005/taskplanner/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, todo *models.Todo) (*models.Todo, error)
	GetByID(ctx context.Context, id int64) (*models.Todo, error)
	Update(ctx context.Context, todo *models.Todo) (*models.Todo, error)
	Delete(ctx context.Context, id int64) error

	// ListVisible returns the union of the user's own todos, all
	// global-public todos, and the non-private todos of workspaces the user
	// belongs to. The union runs as one statement so it observes a single
	// consistent snapshot.
	ListVisible(ctx context.Context, userID int64, skip, limit int) ([]*models.Todo, error)

	ListByWorkspace(ctx context.Context, workspaceID int64) ([]*models.Todo, error)
	ListByWorkspaceAndOwner(ctx context.Context, workspaceID, ownerID int64) ([]*models.Todo, error)

	// ReassignToPersonal moves every todo owned by ownerID out of
	// workspaceID into personalWorkspaceID. Reassigned todos become private
	// again unless they are global-public. Returns the number of todos
	// moved.
	ReassignToPersonal(ctx context.Context, workspaceID, ownerID, personalWorkspaceID int64) (int64, error)

	DeleteByOwner(ctx context.Context, ownerID int64) error
}
