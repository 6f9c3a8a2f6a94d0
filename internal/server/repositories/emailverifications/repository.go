package emailverifications

import (
	"context"
	"time"

	"github.com/dmitrijs2005/taskplanner/internal/server/models"
)

// Repository stores one verification row per email address. A row carries
// the bcrypt hash of the latest code, the request counter for the current
// window, and the code expiry.
type Repository interface {
	GetByEmail(ctx context.Context, email string) (*models.EmailVerification, error)
	Create(ctx context.Context, v *models.EmailVerification) (*models.EmailVerification, error)

	// Refresh replaces the stored code for email, bumps the attempts
	// counter and returns its new value.
	Refresh(ctx context.Context, email, codeHash string, expiresAt time.Time) (int, error)

	MarkVerified(ctx context.Context, email string) error

	// DeleteOlderThan removes rows created before cutoff, ending both the
	// code validity and the rate-limit window for those addresses. Returns
	// the number of rows removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
