// Package services contains application services for the task planner CLI.
// This file defines the session service: register, login, restoring a saved
// session on startup, liveness probe, and wiping local state on logout.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/taskplanner/internal/client/client"
	"github.com/dmitrijs2005/taskplanner/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/taskplanner/internal/client/repositories/todos"
	"github.com/dmitrijs2005/taskplanner/internal/dbx"
)

// Metadata keys under which the saved session lives.
const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyUsername     = "username"
	keyWorkspaceID  = "workspace_id"
)

// AuthService defines session operations for the CLI.
//
// Contract:
//   - Register: create a new account on the server.
//   - Login: authenticate against the server and persist the session locally.
//   - RestoreSession: resume a previously saved session, returning the username.
//   - Logout: forget the session and wipe the local cache.
//   - Ping: check server liveness.
//   - Close: release underlying client resources.
//
// All methods must honor context cancellation/timeouts.
type AuthService interface {
	Register(ctx context.Context, username string, email string, password []byte) error
	Login(ctx context.Context, username string, password []byte) error
	RestoreSession(ctx context.Context) (string, error)
	Logout(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// authService is the concrete AuthService backed by a remote Client
// and the local SQL database holding session metadata.
type authService struct {
	client client.Client
	db     *sql.DB
}

// NewAuthService constructs an AuthService bound to the given API client and DB.
func NewAuthService(client client.Client, db *sql.DB) AuthService {
	return &authService{client: client, db: db}
}

func (a *authService) getMetadataRepo() metadata.Repository {
	return metadata.NewSQLiteRepository(a.db)
}

// Register creates a new account on the server. The caller logs in
// separately once the account is confirmed.
func (a *authService) Register(ctx context.Context, username string, email string, password []byte) error {
	return a.client.Register(ctx, username, email, password)
}

// Login authenticates against the server and saves the issued token pair
// together with the username, so the session survives a restart.
func (a *authService) Login(ctx context.Context, username string, password []byte) error {
	pair, err := a.client.Login(ctx, username, password)
	if err != nil {
		return fmt.Errorf("login error: %w", err)
	}
	a.client.SetTokens(pair.AccessToken, pair.RefreshToken)

	if err := a.saveSession(ctx, username, pair.AccessToken, pair.RefreshToken); err != nil {
		return fmt.Errorf("session saving error: %w", err)
	}
	return nil
}

// RestoreSession loads the saved token pair, installs it on the client and
// validates it against the server. If the server is unreachable the saved
// identity is kept so cached data stays readable offline. Returns
// client.ErrLocalDataNotAvailable when no session was saved.
func (a *authService) RestoreSession(ctx context.Context) (string, error) {
	metadataRepo := a.getMetadataRepo()

	access, err := metadataRepo.Get(ctx, keyAccessToken)
	if err != nil {
		return "", fmt.Errorf("failed to read saved session: %w", err)
	}
	refresh, err := metadataRepo.Get(ctx, keyRefreshToken)
	if err != nil {
		return "", fmt.Errorf("failed to read saved session: %w", err)
	}
	username, err := metadataRepo.Get(ctx, keyUsername)
	if err != nil {
		return "", fmt.Errorf("failed to read saved session: %w", err)
	}
	if len(access) == 0 || len(refresh) == 0 || len(username) == 0 {
		return "", client.ErrLocalDataNotAvailable
	}

	a.client.SetTokens(string(access), string(refresh))

	user, err := a.client.Me(ctx)
	if err != nil {
		if errors.Is(err, client.ErrUnavailable) {
			return string(username), nil
		}
		return "", err
	}

	// Validation may have rotated the pair through a transparent refresh.
	newAccess, newRefresh := a.client.Tokens()
	if err := a.saveSession(ctx, user.Username, newAccess, newRefresh); err != nil {
		return "", fmt.Errorf("session saving error: %w", err)
	}
	return user.Username, nil
}

// saveSession persists the session in a single transaction so a crash cannot
// leave the username and tokens out of step.
func (a *authService) saveSession(ctx context.Context, username, access, refresh string) error {
	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, keyUsername, []byte(username)); err != nil {
			return err
		}
		if err := repo.Set(ctx, keyAccessToken, []byte(access)); err != nil {
			return err
		}
		return repo.Set(ctx, keyRefreshToken, []byte(refresh))
	})
}

// Logout drops the installed tokens and wipes everything cached locally:
// session metadata, the selected workspace and the todo cache.
func (a *authService) Logout(ctx context.Context) error {
	a.client.SetTokens("", "")

	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := metadata.NewSQLiteRepository(tx).Clear(ctx); err != nil {
			return err
		}
		return todos.NewSQLiteRepository(tx).DeleteAll(ctx)
	})
}

// Ping proxies a liveness check to the underlying client.
func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

// Close releases resources held by the underlying client.
func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
