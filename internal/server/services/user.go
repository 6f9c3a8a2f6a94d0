package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskplanner/internal/common"
	"github.com/dmitrijs2005/taskplanner/internal/dbx"
	"github.com/dmitrijs2005/taskplanner/internal/server/auth"
	"github.com/dmitrijs2005/taskplanner/internal/server/config"
	"github.com/dmitrijs2005/taskplanner/internal/server/models"
	"github.com/dmitrijs2005/taskplanner/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// UserService provides account and authentication operations:
// - Register: create users with their personal workspace
// - Login: verify credentials and mint tokens
// - RefreshToken: rotate refresh tokens and mint new access tokens
// - DeleteAccount: remove a user and cascade their workspace memberships
type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	bcryptCost                   int
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		bcryptCost:                   cfg.BcryptCost,
	}
}

// Register creates a new user together with their personal workspace and
// owner membership, atomically. Losing a unique race to a concurrent
// registration is reported the same way as the pre-check catching it.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	usersRepo := s.repomanager.Users(s.db)

	if _, err := usersRepo.GetByUsername(ctx, username); err == nil {
		return nil, common.WithDetail(common.ErrorAlreadyExists, "Username already registered")
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error checking username: %w", err)
	}
	if _, err := usersRepo.GetByEmail(ctx, email); err == nil {
		return nil, common.WithDetail(common.ErrorAlreadyExists, "Email already registered")
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error checking email: %w", err)
	}

	hash, err := auth.HashSecret(password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	var user *models.User
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		user, err = s.repomanager.Users(tx).Create(ctx, &models.User{Username: username, Email: email, HashedPassword: hash, IsActive: true})
		if err != nil {
			return fmt.Errorf("error creating user: %w", err)
		}
		_, err = createPersonalWorkspace(ctx, tx, s.repomanager, user.ID)
		return err
	})
	if err != nil {
		// The insert can still lose a race to a concurrent registration.
		// The transaction is already rolled back, so the re-check runs on a
		// fresh connection.
		if errors.Is(err, common.ErrorAlreadyExists) {
			if _, gerr := usersRepo.GetByUsername(ctx, username); gerr == nil {
				return nil, common.WithDetail(common.ErrorAlreadyExists, "Username already registered")
			}
			if _, gerr := usersRepo.GetByEmail(ctx, email); gerr == nil {
				return nil, common.WithDetail(common.ErrorAlreadyExists, "Email already registered")
			}
		}
		return nil, err
	}

	return user, nil
}

// Login verifies the username and password and, on success, returns a new
// TokenPair. Unknown usernames and wrong passwords are indistinguishable to
// the caller.
func (s *UserService) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	user, err := s.repomanager.Users(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.WithDetail(common.ErrorUnauthorized, "Incorrect username or password")
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}
	if !auth.CheckSecret(user.HashedPassword, password) {
		return nil, common.WithDetail(common.ErrorUnauthorized, "Incorrect username or password")
	}
	return s.generateTokenPair(ctx, user.ID, s.db)
}

// RefreshToken validates a refresh token, rotates it transactionally, and
// returns a fresh TokenPair.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	token, err := s.repomanager.RefreshTokens(s.db).Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.WithDetail(common.ErrorUnauthorized, "Invalid or expired refresh token")
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Expires.Before(time.Now()) {
		return nil, common.WithDetail(common.ErrRefreshTokenExpired, "Invalid or expired refresh token")
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.RefreshTokens(tx).Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, token.UserID, tx)
		return genErr
	}); err != nil {
		return nil, err
	}
	return pair, nil
}

// GetByID loads a user by id. Used by the auth middleware to resolve the
// token's subject on each request.
func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, id)
}

// Count returns the total number of registered users.
func (s *UserService) Count(ctx context.Context) (int64, error) {
	return s.repomanager.Users(s.db).Count(ctx)
}

// DeleteAccount removes the user along with everything they own: team
// workspaces they created are dissolved, memberships elsewhere are left via
// the collaborator cascade, and the personal workspace, its todos, and the
// user row go last. Refresh tokens disappear with the user row.
func (s *UserService) DeleteAccount(ctx context.Context, userID int64) error {
	return dbx.WithSerializableTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		memberships, err := s.repomanager.Memberships(tx).ListByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("error listing memberships: %w", err)
		}

		var personal *models.Workspace
		for _, m := range memberships {
			ws, err := s.repomanager.Workspaces(tx).GetByIDForUpdate(ctx, m.WorkspaceID)
			if err != nil {
				if errors.Is(err, common.ErrorNotFound) {
					continue // dissolved concurrently
				}
				return fmt.Errorf("error locking workspace: %w", err)
			}
			if ws.IsPersonal() {
				personal = ws
				continue
			}
			if m.Role == models.RoleOwner {
				if err := ownerCascadeLocked(ctx, tx, s.repomanager, ws); err != nil {
					return err
				}
			} else {
				if err := collaboratorLeaveLocked(ctx, tx, s.repomanager, ws, userID); err != nil {
					return err
				}
			}
		}

		if err := s.repomanager.Todos(tx).DeleteByOwner(ctx, userID); err != nil {
			return fmt.Errorf("error deleting todos: %w", err)
		}
		if personal != nil {
			if err := s.repomanager.Memberships(tx).DeleteByWorkspace(ctx, personal.ID); err != nil {
				return fmt.Errorf("error deleting personal membership: %w", err)
			}
			if err := s.repomanager.Workspaces(tx).Delete(ctx, personal.ID); err != nil {
				return fmt.Errorf("error deleting personal workspace: %w", err)
			}
		}
		if err := s.repomanager.Users(tx).Delete(ctx, userID); err != nil {
			return fmt.Errorf("error deleting user: %w", err)
		}
		return nil
	})
}

// --- helpers below ---

func (s *UserService) generateAccessToken(userID int64) (string, error) {
	return auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
}

func (s *UserService) generateRefreshToken() (string, error) {
	return common.MakeRandHexString(32)
}

func (s *UserService) generateTokenPair(ctx context.Context, userID int64, tx dbx.DBTX) (*TokenPair, error) {
	access, err := s.generateAccessToken(userID)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := s.generateRefreshToken()
	if err != nil {
		return nil, common.ErrorInternal
	}
	if err := s.repomanager.RefreshTokens(tx).Create(ctx, userID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
