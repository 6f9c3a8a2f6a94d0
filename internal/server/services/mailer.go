package services

import (
	"context"

	"github.com/dmitrijs2005/taskplanner/internal/logging"
)

// Mailer delivers verification codes to prospective users.
type Mailer interface {
	SendVerificationCode(ctx context.Context, email, code string) error
}

// LogMailer writes verification codes to the log instead of sending mail.
// Good enough for development and tests; a real delivery backend implements
// the same interface.
type LogMailer struct {
	logger logging.Logger
}

func NewLogMailer(l logging.Logger) *LogMailer {
	return &LogMailer{logger: l}
}

func (m *LogMailer) SendVerificationCode(ctx context.Context, email, code string) error {
	m.logger.Info(ctx, "verification code issued", "email", email, "code", code)
	return nil
}
