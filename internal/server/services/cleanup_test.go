package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskplanner/internal/logging"
	"github.com/dmitrijs2005/taskplanner/internal/server/config"
	"github.com/dmitrijs2005/taskplanner/internal/server/models"
	"github.com/dmitrijs2005/taskplanner/internal/server/repositories/repomanager"
)

func newCleanupWorker(t *testing.T, rm repomanager.RepositoryManager, interval, window time.Duration) *CleanupWorker {
	t.Helper()
	db, _ := newSQLMockDB(t)
	t.Cleanup(func() { db.Close() })
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	cfg := &config.Config{CleanupInterval: interval, VerificationWindow: window}
	return NewCleanupWorker(db, rm, logger, cfg)
}

func TestCleanupWorker_PurgeRemovesOnlyStaleRows(t *testing.T) {
	w := newFakeWorld()
	w.verifications["old@example.com"] = &models.EmailVerification{ID: 1, Email: "old@example.com",
		Attempts: 4, CreatedAt: time.Now().Add(-6 * time.Hour)}
	w.verifications["fresh@example.com"] = &models.EmailVerification{ID: 2, Email: "fresh@example.com",
		Attempts: 1, CreatedAt: time.Now()}

	worker := newCleanupWorker(t, newFakeRepoManager(w), time.Hour, 5*time.Hour)
	worker.purge(context.Background())

	if _, ok := w.verifications["old@example.com"]; ok {
		t.Fatalf("stale row should be purged")
	}
	if _, ok := w.verifications["fresh@example.com"]; !ok {
		t.Fatalf("fresh row should survive")
	}
}

func TestCleanupWorker_RunStopsOnCancel(t *testing.T) {
	w := newFakeWorld()
	w.verifications["old@example.com"] = &models.EmailVerification{ID: 1, Email: "old@example.com",
		Attempts: 4, CreatedAt: time.Now().Add(-6 * time.Hour)}

	rm := newFakeRepoManager(w)
	purged := make(chan struct{}, 1)
	rm.ev.onDelete = func() {
		select {
		case purged <- struct{}{}:
		default:
		}
	}
	worker := newCleanupWorker(t, rm, 5*time.Millisecond, 5*time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Run(ctx)
		close(done)
	}()

	select {
	case <-purged:
	case <-time.After(2 * time.Second):
		t.Fatalf("worker never ran a purge")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("worker did not stop on cancel")
	}

	if _, ok := w.verifications["old@example.com"]; ok {
		t.Fatalf("stale row should be purged")
	}
}
