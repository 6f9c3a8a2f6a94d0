package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskplanner/internal/common"
	"github.com/dmitrijs2005/taskplanner/internal/server/auth"
	"github.com/dmitrijs2005/taskplanner/internal/server/config"
	"github.com/dmitrijs2005/taskplanner/internal/server/models"
	"github.com/dmitrijs2005/taskplanner/internal/server/repositories/repomanager"
)

// verificationCodeLength is the number of digits in an emailed code.
const verificationCodeLength = 6

// VerificationService issues signup verification codes and registers users
// who present a valid one. Codes are stored hashed; the per-address request
// counter resets only when the cleanup worker purges the row.
type VerificationService struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	users        *UserService
	mailer       Mailer
	codeValidity time.Duration
	maxRequests  int
	bcryptCost   int
}

func NewVerificationService(db *sql.DB, m repomanager.RepositoryManager, users *UserService, mailer Mailer, cfg *config.Config) *VerificationService {
	return &VerificationService{
		db:           db,
		repomanager:  m,
		users:        users,
		mailer:       mailer,
		codeValidity: cfg.VerificationCodeValidityDuration,
		maxRequests:  cfg.VerificationMaxRequests,
		bcryptCost:   cfg.BcryptCost,
	}
}

// RequestCode generates a fresh code for email, records the attempt and
// hands the code to the mailer. Returns how many further requests the
// address has before hitting the limit.
func (s *VerificationService) RequestCode(ctx context.Context, email string) (int, error) {
	code, err := common.MakeRandDigitString(verificationCodeLength)
	if err != nil {
		return 0, fmt.Errorf("error generating code: %w", err)
	}
	hash, err := auth.HashSecret(code, s.bcryptCost)
	if err != nil {
		return 0, fmt.Errorf("error hashing code: %w", err)
	}
	expiresAt := time.Now().Add(s.codeValidity)

	repo := s.repomanager.EmailVerifications(s.db)

	attempts := 0
	existing, err := repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Attempts >= s.maxRequests {
			return 0, common.WithDetail(common.ErrTooManyRequests,
				"Too many verification attempts. Please wait 5 hours before trying again.")
		}
		attempts, err = repo.Refresh(ctx, email, hash, expiresAt)
		if err != nil {
			return 0, fmt.Errorf("error refreshing code: %w", err)
		}
	case errors.Is(err, common.ErrorNotFound):
		created, cerr := repo.Create(ctx, &models.EmailVerification{Email: email, CodeHash: hash, ExpiresAt: expiresAt})
		if cerr != nil {
			// A concurrent first request can insert the row between our
			// lookup and insert; fold into the refresh path.
			if !errors.Is(cerr, common.ErrorAlreadyExists) {
				return 0, fmt.Errorf("error storing code: %w", cerr)
			}
			attempts, cerr = repo.Refresh(ctx, email, hash, expiresAt)
			if cerr != nil {
				return 0, fmt.Errorf("error refreshing code: %w", cerr)
			}
		} else {
			attempts = created.Attempts
		}
	default:
		return 0, fmt.Errorf("error loading verification: %w", err)
	}

	if err := s.mailer.SendVerificationCode(ctx, email, code); err != nil {
		return 0, fmt.Errorf("error sending code: %w", err)
	}

	left := s.maxRequests - attempts
	if left < 0 {
		left = 0
	}
	return left, nil
}

// Register checks the emailed code and, if it matches and has not expired,
// creates the account and returns a signed-in token pair.
func (s *VerificationService) Register(ctx context.Context, email, code, username, password string) (*TokenPair, error) {
	repo := s.repomanager.EmailVerifications(s.db)

	v, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.WithDetail(common.ErrVerificationCodeInvalid, "Invalid or expired verification code")
		}
		return nil, fmt.Errorf("error loading verification: %w", err)
	}
	if v.ExpiresAt.Before(time.Now()) || !auth.CheckSecret(v.CodeHash, code) {
		return nil, common.WithDetail(common.ErrVerificationCodeInvalid, "Invalid or expired verification code")
	}

	user, err := s.users.Register(ctx, username, email, password)
	if err != nil {
		return nil, err
	}

	if err := repo.MarkVerified(ctx, email); err != nil {
		return nil, fmt.Errorf("error marking verification: %w", err)
	}

	return s.users.generateTokenPair(ctx, user.ID, s.db)
}
