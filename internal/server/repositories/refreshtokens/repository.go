package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/taskplanner/internal/server/models"
)

// Repository stores the refresh tokens issued at login. Find reports an
// unknown token as common.ErrorNotFound; deleting an absent token is not
// an error.
type Repository interface {
	Create(ctx context.Context, userID int64, token string, validity time.Duration) error
	Find(ctx context.Context, token string) (*models.RefreshToken, error)
	Delete(ctx context.Context, token string) error
}
