package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/taskplanner/internal/logging"
	"github.com/dmitrijs2005/taskplanner/internal/server/config"
	"github.com/dmitrijs2005/taskplanner/internal/server/repositories/repomanager"
)

// CleanupWorker periodically purges email verification rows older than the
// rate-limit window. Purging a row invalidates its code and resets the
// address's request counter in one stroke.
type CleanupWorker struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	interval    time.Duration
	window      time.Duration
}

func NewCleanupWorker(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger, cfg *config.Config) *CleanupWorker {
	return &CleanupWorker{
		db:          db,
		repomanager: m,
		logger:      l,
		interval:    cfg.CleanupInterval,
		window:      cfg.VerificationWindow,
	}
}

// Run purges on every tick until ctx is cancelled.
func (w *CleanupWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.purge(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (w *CleanupWorker) purge(ctx context.Context) {
	cutoff := time.Now().Add(-w.window)

	n, err := w.repomanager.EmailVerifications(w.db).DeleteOlderThan(ctx, cutoff)
	if err != nil {
		w.logger.Error(ctx, "verification cleanup failed", "error", err)
		return
	}
	if n > 0 {
		w.logger.Info(ctx, "stale verifications purged", "count", n)
	}
}
