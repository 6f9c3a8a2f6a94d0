package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/taskplanner/internal/logging"
	"github.com/dmitrijs2005/taskplanner/internal/server/auth"
	"github.com/dmitrijs2005/taskplanner/internal/server/models"
	"github.com/dmitrijs2005/taskplanner/internal/server/services"
)

const testSecret = "test-secret"

var errUnexpectedCall = errors.New("unexpected service call")

// -------- stub services --------

type stubUserService struct {
	registerFn func(ctx context.Context, username, email, password string) (*models.User, error)
	loginFn    func(ctx context.Context, username, password string) (*services.TokenPair, error)
	refreshFn  func(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	getByIDFn  func(ctx context.Context, id int64) (*models.User, error)
	countFn    func(ctx context.Context) (int64, error)
	deleteFn   func(ctx context.Context, userID int64) error
}

func (s *stubUserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	if s.registerFn == nil {
		return nil, errUnexpectedCall
	}
	return s.registerFn(ctx, username, email, password)
}

func (s *stubUserService) Login(ctx context.Context, username, password string) (*services.TokenPair, error) {
	if s.loginFn == nil {
		return nil, errUnexpectedCall
	}
	return s.loginFn(ctx, username, password)
}

func (s *stubUserService) RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error) {
	if s.refreshFn == nil {
		return nil, errUnexpectedCall
	}
	return s.refreshFn(ctx, refreshToken)
}

func (s *stubUserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if s.getByIDFn == nil {
		return nil, errUnexpectedCall
	}
	return s.getByIDFn(ctx, id)
}

func (s *stubUserService) Count(ctx context.Context) (int64, error) {
	if s.countFn == nil {
		return 0, errUnexpectedCall
	}
	return s.countFn(ctx)
}

func (s *stubUserService) DeleteAccount(ctx context.Context, userID int64) error {
	if s.deleteFn == nil {
		return errUnexpectedCall
	}
	return s.deleteFn(ctx, userID)
}

type stubWorkspaceService struct {
	createTeamFn   func(ctx context.Context, ownerID int64, name string) (*models.Workspace, error)
	listFn         func(ctx context.Context, userID int64) ([]*models.Workspace, error)
	renameFn       func(ctx context.Context, workspaceID, requesterID int64, name string) (*models.Workspace, error)
	inviteFn       func(ctx context.Context, workspaceID, inviterID int64, email string) (services.InviteOutcome, error)
	membersFn      func(ctx context.Context, workspaceID, requesterID int64) ([]*models.Member, error)
	todosFn        func(ctx context.Context, workspaceID, requesterID int64, filterUserID *int64) ([]*models.Todo, error)
	leaveFn        func(ctx context.Context, workspaceID, userID int64) (*services.LeaveResult, error)
	removeMemberFn func(ctx context.Context, workspaceID, removerID, targetUserID int64) (*services.LeaveResult, error)
	deleteFn       func(ctx context.Context, workspaceID, requesterID int64) error
}

func (s *stubWorkspaceService) CreateTeam(ctx context.Context, ownerID int64, name string) (*models.Workspace, error) {
	if s.createTeamFn == nil {
		return nil, errUnexpectedCall
	}
	return s.createTeamFn(ctx, ownerID, name)
}

func (s *stubWorkspaceService) List(ctx context.Context, userID int64) ([]*models.Workspace, error) {
	if s.listFn == nil {
		return nil, errUnexpectedCall
	}
	return s.listFn(ctx, userID)
}

func (s *stubWorkspaceService) Rename(ctx context.Context, workspaceID, requesterID int64, name string) (*models.Workspace, error) {
	if s.renameFn == nil {
		return nil, errUnexpectedCall
	}
	return s.renameFn(ctx, workspaceID, requesterID, name)
}

func (s *stubWorkspaceService) Invite(ctx context.Context, workspaceID, inviterID int64, email string) (services.InviteOutcome, error) {
	if s.inviteFn == nil {
		return 0, errUnexpectedCall
	}
	return s.inviteFn(ctx, workspaceID, inviterID, email)
}

func (s *stubWorkspaceService) Members(ctx context.Context, workspaceID, requesterID int64) ([]*models.Member, error) {
	if s.membersFn == nil {
		return nil, errUnexpectedCall
	}
	return s.membersFn(ctx, workspaceID, requesterID)
}

func (s *stubWorkspaceService) Todos(ctx context.Context, workspaceID, requesterID int64, filterUserID *int64) ([]*models.Todo, error) {
	if s.todosFn == nil {
		return nil, errUnexpectedCall
	}
	return s.todosFn(ctx, workspaceID, requesterID, filterUserID)
}

func (s *stubWorkspaceService) Leave(ctx context.Context, workspaceID, userID int64) (*services.LeaveResult, error) {
	if s.leaveFn == nil {
		return nil, errUnexpectedCall
	}
	return s.leaveFn(ctx, workspaceID, userID)
}

func (s *stubWorkspaceService) RemoveMember(ctx context.Context, workspaceID, removerID, targetUserID int64) (*services.LeaveResult, error) {
	if s.removeMemberFn == nil {
		return nil, errUnexpectedCall
	}
	return s.removeMemberFn(ctx, workspaceID, removerID, targetUserID)
}

func (s *stubWorkspaceService) Delete(ctx context.Context, workspaceID, requesterID int64) error {
	if s.deleteFn == nil {
		return errUnexpectedCall
	}
	return s.deleteFn(ctx, workspaceID, requesterID)
}

type stubTodoService struct {
	createFn func(ctx context.Context, ownerID int64, params services.CreateTodoParams) (*models.Todo, error)
	getFn    func(ctx context.Context, todoID, requesterID int64) (*models.Todo, error)
	updateFn func(ctx context.Context, todoID, requesterID int64, params services.UpdateTodoParams) (*models.Todo, error)
	deleteFn func(ctx context.Context, todoID, requesterID int64) (*models.Todo, error)
	listFn   func(ctx context.Context, userID int64, skip, limit int) ([]*models.Todo, error)
}

func (s *stubTodoService) Create(ctx context.Context, ownerID int64, params services.CreateTodoParams) (*models.Todo, error) {
	if s.createFn == nil {
		return nil, errUnexpectedCall
	}
	return s.createFn(ctx, ownerID, params)
}

func (s *stubTodoService) Get(ctx context.Context, todoID, requesterID int64) (*models.Todo, error) {
	if s.getFn == nil {
		return nil, errUnexpectedCall
	}
	return s.getFn(ctx, todoID, requesterID)
}

func (s *stubTodoService) Update(ctx context.Context, todoID, requesterID int64, params services.UpdateTodoParams) (*models.Todo, error) {
	if s.updateFn == nil {
		return nil, errUnexpectedCall
	}
	return s.updateFn(ctx, todoID, requesterID, params)
}

func (s *stubTodoService) Delete(ctx context.Context, todoID, requesterID int64) (*models.Todo, error) {
	if s.deleteFn == nil {
		return nil, errUnexpectedCall
	}
	return s.deleteFn(ctx, todoID, requesterID)
}

func (s *stubTodoService) ListVisible(ctx context.Context, userID int64, skip, limit int) ([]*models.Todo, error) {
	if s.listFn == nil {
		return nil, errUnexpectedCall
	}
	return s.listFn(ctx, userID, skip, limit)
}

type stubVerificationService struct {
	requestCodeFn func(ctx context.Context, email string) (int, error)
	registerFn    func(ctx context.Context, email, code, username, password string) (*services.TokenPair, error)
}

func (s *stubVerificationService) RequestCode(ctx context.Context, email string) (int, error) {
	if s.requestCodeFn == nil {
		return 0, errUnexpectedCall
	}
	return s.requestCodeFn(ctx, email)
}

func (s *stubVerificationService) Register(ctx context.Context, email, code, username, password string) (*services.TokenPair, error) {
	if s.registerFn == nil {
		return nil, errUnexpectedCall
	}
	return s.registerFn(ctx, email, code, username, password)
}

// -------- helpers --------

type testEnv struct {
	users         *stubUserService
	workspaces    *stubWorkspaceService
	todos         *stubTodoService
	verifications *stubVerificationService
	router        *gin.Engine
}

// newTestEnv wires a router around stub services. The user service resolves
// id 1 to a test user so authed requests work out of the box.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		users:         &stubUserService{},
		workspaces:    &stubWorkspaceService{},
		todos:         &stubTodoService{},
		verifications: &stubVerificationService{},
	}
	env.users.getByIDFn = func(ctx context.Context, id int64) (*models.User, error) {
		return &models.User{ID: id, Username: "alice", Email: "alice@example.com", IsActive: true}, nil
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(io.Discard, nil)))
	s, err := NewServer(":0", logger, env.users, env.workspaces, env.todos, env.verifications, testSecret)
	if err != nil {
		t.Fatalf("NewServer error: %v", err)
	}
	env.router = s.routes()
	return env
}

func bearerFor(t *testing.T, userID int64) string {
	t.Helper()
	token, err := auth.GenerateToken(userID, []byte(testSecret), time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	return "Bearer " + token
}

// doJSON performs a request with an optional JSON body and optional bearer
// header, returning the recorder.
func doJSON(t *testing.T, router *gin.Engine, method, path string, body any, bearer string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", bearer)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func doForm(t *testing.T, router *gin.Engine, method, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func decodeInto(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func wantStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, want, w.Body.String())
	}
}

func wantDetail(t *testing.T, w *httptest.ResponseRecorder, want string) {
	t.Helper()
	if got := decodeBody(t, w)["detail"]; got != want {
		t.Fatalf("detail = %v, want %q", got, want)
	}
}
