// Package rest exposes the Task Planner API over HTTP. Handlers translate
// between JSON requests and the service layer; this is the only place where
// service errors become status codes.
package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/taskplanner/internal/logging"
	"github.com/dmitrijs2005/taskplanner/internal/server/models"
	"github.com/dmitrijs2005/taskplanner/internal/server/services"
)

// UserService is the account surface consumed by the REST layer.
type UserService interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	Count(ctx context.Context) (int64, error)
	DeleteAccount(ctx context.Context, userID int64) error
}

// WorkspaceService is the membership-lifecycle surface consumed by the REST
// layer.
type WorkspaceService interface {
	CreateTeam(ctx context.Context, ownerID int64, name string) (*models.Workspace, error)
	List(ctx context.Context, userID int64) ([]*models.Workspace, error)
	Rename(ctx context.Context, workspaceID, requesterID int64, name string) (*models.Workspace, error)
	Invite(ctx context.Context, workspaceID, inviterID int64, inviteeEmail string) (services.InviteOutcome, error)
	Members(ctx context.Context, workspaceID, requesterID int64) ([]*models.Member, error)
	Todos(ctx context.Context, workspaceID, requesterID int64, filterUserID *int64) ([]*models.Todo, error)
	Leave(ctx context.Context, workspaceID, userID int64) (*services.LeaveResult, error)
	RemoveMember(ctx context.Context, workspaceID, removerID, targetUserID int64) (*services.LeaveResult, error)
	Delete(ctx context.Context, workspaceID, requesterID int64) error
}

// TodoService is the todo CRUD and visibility surface consumed by the REST
// layer.
type TodoService interface {
	Create(ctx context.Context, ownerID int64, params services.CreateTodoParams) (*models.Todo, error)
	Get(ctx context.Context, todoID, requesterID int64) (*models.Todo, error)
	Update(ctx context.Context, todoID, requesterID int64, params services.UpdateTodoParams) (*models.Todo, error)
	Delete(ctx context.Context, todoID, requesterID int64) (*models.Todo, error)
	ListVisible(ctx context.Context, userID int64, skip, limit int) ([]*models.Todo, error)
}

// VerificationService is the email-verification signup surface consumed by
// the REST layer.
type VerificationService interface {
	RequestCode(ctx context.Context, email string) (int, error)
	Register(ctx context.Context, email, code, username, password string) (*services.TokenPair, error)
}

// Server serves the public HTTP API.
type Server struct {
	address       string
	logger        logging.Logger
	users         UserService
	workspaces    WorkspaceService
	todos         TodoService
	verifications VerificationService
	jwtSecret     []byte
}

func NewServer(address string, l logging.Logger, us UserService, ws WorkspaceService,
	ts TodoService, vs VerificationService, secretKey string) (*Server, error) {
	return &Server{
		address:       address,
		logger:        l.With("module", "rest_server"),
		users:         us,
		workspaces:    ws,
		todos:         ts,
		verifications: vs,
		jwtSecret:     []byte(secretKey),
	}, nil
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, "HTTP server shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
