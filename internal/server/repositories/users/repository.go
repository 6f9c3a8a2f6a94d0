package users

import (
	"context"

	"github.com/dmitrijs2005/taskplanner/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id int64) error
}
