package services

import (
	"context"
	"database/sql"
	"sort"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/taskplanner/internal/common"
	"github.com/dmitrijs2005/taskplanner/internal/dbx"
	"github.com/dmitrijs2005/taskplanner/internal/server/models"
	emailverificationsrepo "github.com/dmitrijs2005/taskplanner/internal/server/repositories/emailverifications"
	membershipsrepo "github.com/dmitrijs2005/taskplanner/internal/server/repositories/memberships"
	refreshtokensrepo "github.com/dmitrijs2005/taskplanner/internal/server/repositories/refreshtokens"
	todosrepo "github.com/dmitrijs2005/taskplanner/internal/server/repositories/todos"
	usersrepo "github.com/dmitrijs2005/taskplanner/internal/server/repositories/users"
	workspacesrepo "github.com/dmitrijs2005/taskplanner/internal/server/repositories/workspaces"
)

// -------- shared in-memory world --------

// fakeWorld backs all per-interface fakes with one shared state, so the
// effects of a cascade are observable across repositories just like in a
// real database.
type fakeWorld struct {
	users         map[int64]*models.User
	workspaces    map[int64]*models.Workspace
	memberships   map[int64]*models.Membership
	todos         map[int64]*models.Todo
	refreshTokens map[string]*models.RefreshToken
	verifications map[string]*models.EmailVerification

	nextUserID         int64
	nextWorkspaceID    int64
	nextMembershipID   int64
	nextTodoID         int64
	nextVerificationID int64
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		users:         map[int64]*models.User{},
		workspaces:    map[int64]*models.Workspace{},
		memberships:   map[int64]*models.Membership{},
		todos:         map[int64]*models.Todo{},
		refreshTokens: map[string]*models.RefreshToken{},
		verifications: map[string]*models.EmailVerification{},
	}
}

func (w *fakeWorld) addUser(username, email string) *models.User {
	w.nextUserID++
	u := &models.User{ID: w.nextUserID, Username: username, Email: email, IsActive: true, CreatedAt: time.Now()}
	w.users[u.ID] = u
	return u
}

func (w *fakeWorld) addWorkspace(kind models.WorkspaceKind, name string, createdBy int64) *models.Workspace {
	w.nextWorkspaceID++
	ws := &models.Workspace{ID: w.nextWorkspaceID, Kind: kind, Name: name, CreatedBy: createdBy, CreatedAt: time.Now()}
	w.workspaces[ws.ID] = ws
	return ws
}

func (w *fakeWorld) addMembership(workspaceID, userID int64, role models.Role) *models.Membership {
	w.nextMembershipID++
	m := &models.Membership{ID: w.nextMembershipID, WorkspaceID: workspaceID, UserID: userID, Role: role, CreatedAt: time.Now()}
	w.memberships[m.ID] = m
	return m
}

func (w *fakeWorld) addTodo(ownerID, workspaceID int64, title string, isPrivate, isGlobalPublic bool) *models.Todo {
	w.nextTodoID++
	td := &models.Todo{ID: w.nextTodoID, OwnerID: ownerID, WorkspaceID: workspaceID, Title: title,
		IsPrivate: isPrivate, IsGlobalPublic: isGlobalPublic, CreatedAt: time.Now()}
	w.todos[td.ID] = td
	return td
}

// addUserWithPersonal seeds a user together with their personal workspace
// and owner membership, the state Register would have left behind.
func (w *fakeWorld) addUserWithPersonal(username, email string) (*models.User, *models.Workspace) {
	u := w.addUser(username, email)
	ws := w.addWorkspace(models.WorkspaceKindPersonal, "", u.ID)
	w.addMembership(ws.ID, u.ID, models.RoleOwner)
	return u, ws
}

func (w *fakeWorld) membership(workspaceID, userID int64) *models.Membership {
	for _, m := range w.memberships {
		if m.WorkspaceID == workspaceID && m.UserID == userID {
			return m
		}
	}
	return nil
}

func (w *fakeWorld) isMember(workspaceID, userID int64) bool {
	return w.membership(workspaceID, userID) != nil
}

func (w *fakeWorld) personalWorkspaceOf(userID int64) *models.Workspace {
	for _, ws := range w.workspaces {
		if ws.Kind == models.WorkspaceKindPersonal && ws.CreatedBy == userID {
			return ws
		}
	}
	return nil
}

// -------- per-interface fakes --------

type fakeUsersRepo struct {
	w *fakeWorld

	createErr error
	getErr    error

	// conflictUser simulates losing a unique race: the next Create inserts
	// this competitor row and reports a duplicate.
	conflictUser *models.User
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.conflictUser != nil {
		competitor := f.conflictUser
		f.conflictUser = nil
		f.w.addUser(competitor.Username, competitor.Email)
		return nil, common.ErrorAlreadyExists
	}
	for _, existing := range f.w.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	created := f.w.addUser(u.Username, u.Email)
	created.HashedPassword = u.HashedPassword
	created.IsActive = u.IsActive
	cp := *created
	return &cp, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.w.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsersRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.w.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.w.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(f.w.users)), nil
}

func (f *fakeUsersRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.w.users[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.w.users, id)
	return nil
}

type fakeWorkspacesRepo struct {
	w *fakeWorld

	createErr error
	lockErr   error
}

func (f *fakeWorkspacesRepo) Create(ctx context.Context, ws *models.Workspace) (*models.Workspace, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if ws.Kind == models.WorkspaceKindPersonal && f.w.personalWorkspaceOf(ws.CreatedBy) != nil {
		return nil, common.ErrorAlreadyExists
	}
	created := f.w.addWorkspace(ws.Kind, ws.Name, ws.CreatedBy)
	cp := *created
	return &cp, nil
}

func (f *fakeWorkspacesRepo) GetByID(ctx context.Context, id int64) (*models.Workspace, error) {
	ws, ok := f.w.workspaces[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *ws
	return &cp, nil
}

func (f *fakeWorkspacesRepo) GetByIDForUpdate(ctx context.Context, id int64) (*models.Workspace, error) {
	if f.lockErr != nil {
		return nil, f.lockErr
	}
	return f.GetByID(ctx, id)
}

func (f *fakeWorkspacesRepo) GetPersonalByUserID(ctx context.Context, userID int64) (*models.Workspace, error) {
	ws := f.w.personalWorkspaceOf(userID)
	if ws == nil {
		return nil, common.ErrorNotFound
	}
	cp := *ws
	return &cp, nil
}

func (f *fakeWorkspacesRepo) ListByMember(ctx context.Context, userID int64) ([]*models.Workspace, error) {
	var result []*models.Workspace
	for _, m := range f.w.memberships {
		if m.UserID != userID {
			continue
		}
		if ws, ok := f.w.workspaces[m.WorkspaceID]; ok {
			cp := *ws
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (f *fakeWorkspacesRepo) UpdateName(ctx context.Context, id int64, name string) (*models.Workspace, error) {
	ws, ok := f.w.workspaces[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	ws.Name = name
	cp := *ws
	return &cp, nil
}

func (f *fakeWorkspacesRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.w.workspaces[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.w.workspaces, id)
	return nil
}

type fakeMembershipsRepo struct {
	w *fakeWorld

	createErr error

	// conflictOnCreate simulates losing an insert race: the next Create
	// stores the membership as the competitor would have and reports a
	// duplicate.
	conflictOnCreate bool
}

func (f *fakeMembershipsRepo) Create(ctx context.Context, m *models.Membership) (*models.Membership, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.conflictOnCreate {
		f.conflictOnCreate = false
		f.w.addMembership(m.WorkspaceID, m.UserID, m.Role)
		return nil, common.ErrorAlreadyExists
	}
	if f.w.isMember(m.WorkspaceID, m.UserID) {
		return nil, common.ErrorAlreadyExists
	}
	created := f.w.addMembership(m.WorkspaceID, m.UserID, m.Role)
	cp := *created
	return &cp, nil
}

func (f *fakeMembershipsRepo) Get(ctx context.Context, workspaceID, userID int64) (*models.Membership, error) {
	m := f.w.membership(workspaceID, userID)
	if m == nil {
		return nil, common.ErrorNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMembershipsRepo) ListMembers(ctx context.Context, workspaceID int64) ([]*models.Member, error) {
	var result []*models.Member
	for _, m := range f.w.memberships {
		if m.WorkspaceID != workspaceID {
			continue
		}
		member := &models.Member{UserID: m.UserID, Role: m.Role, CreatedAt: m.CreatedAt}
		if u, ok := f.w.users[m.UserID]; ok {
			member.Username = u.Username
			member.Email = u.Email
		}
		result = append(result, member)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })
	return result, nil
}

func (f *fakeMembershipsRepo) ListByUser(ctx context.Context, userID int64) ([]*models.Membership, error) {
	var result []*models.Membership
	for _, m := range f.w.memberships {
		if m.UserID == userID {
			cp := *m
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (f *fakeMembershipsRepo) Delete(ctx context.Context, workspaceID, userID int64) error {
	m := f.w.membership(workspaceID, userID)
	if m == nil {
		return common.ErrorNotFound
	}
	delete(f.w.memberships, m.ID)
	return nil
}

func (f *fakeMembershipsRepo) DeleteByWorkspace(ctx context.Context, workspaceID int64) error {
	for id, m := range f.w.memberships {
		if m.WorkspaceID == workspaceID {
			delete(f.w.memberships, id)
		}
	}
	return nil
}

type fakeTodosRepo struct {
	w *fakeWorld

	createErr   error
	reassignErr error
}

func (f *fakeTodosRepo) Create(ctx context.Context, todo *models.Todo) (*models.Todo, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	created := f.w.addTodo(todo.OwnerID, todo.WorkspaceID, todo.Title, todo.IsPrivate, todo.IsGlobalPublic)
	created.Description = todo.Description
	created.Done = todo.Done
	created.StartDate = todo.StartDate
	created.StartTime = todo.StartTime
	created.EndDate = todo.EndDate
	created.EndTime = todo.EndTime
	created.DueDate = todo.DueDate
	cp := *created
	return &cp, nil
}

func (f *fakeTodosRepo) GetByID(ctx context.Context, id int64) (*models.Todo, error) {
	td, ok := f.w.todos[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *td
	return &cp, nil
}

func (f *fakeTodosRepo) Update(ctx context.Context, todo *models.Todo) (*models.Todo, error) {
	if _, ok := f.w.todos[todo.ID]; !ok {
		return nil, common.ErrorNotFound
	}
	cp := *todo
	f.w.todos[todo.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeTodosRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.w.todos[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.w.todos, id)
	return nil
}

func (f *fakeTodosRepo) ListVisible(ctx context.Context, userID int64, skip, limit int) ([]*models.Todo, error) {
	var result []*models.Todo
	for _, td := range f.w.todos {
		visible := td.OwnerID == userID || td.IsGlobalPublic ||
			(!td.IsPrivate && f.w.isMember(td.WorkspaceID, userID))
		if visible {
			cp := *td
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	if skip >= len(result) {
		return nil, nil
	}
	result = result[skip:]
	if limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

func (f *fakeTodosRepo) ListByWorkspace(ctx context.Context, workspaceID int64) ([]*models.Todo, error) {
	var result []*models.Todo
	for _, td := range f.w.todos {
		if td.WorkspaceID == workspaceID {
			cp := *td
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (f *fakeTodosRepo) ListByWorkspaceAndOwner(ctx context.Context, workspaceID, ownerID int64) ([]*models.Todo, error) {
	var result []*models.Todo
	for _, td := range f.w.todos {
		if td.WorkspaceID == workspaceID && td.OwnerID == ownerID {
			cp := *td
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (f *fakeTodosRepo) ReassignToPersonal(ctx context.Context, workspaceID, ownerID, personalWorkspaceID int64) (int64, error) {
	if f.reassignErr != nil {
		return 0, f.reassignErr
	}
	var n int64
	for _, td := range f.w.todos {
		if td.WorkspaceID == workspaceID && td.OwnerID == ownerID {
			td.WorkspaceID = personalWorkspaceID
			td.IsPrivate = !td.IsGlobalPublic
			n++
		}
	}
	return n, nil
}

func (f *fakeTodosRepo) DeleteByOwner(ctx context.Context, ownerID int64) error {
	for id, td := range f.w.todos {
		if td.OwnerID == ownerID {
			delete(f.w.todos, id)
		}
	}
	return nil
}

type fakeRefreshRepo struct {
	w *fakeWorld

	createErr error
	findErr   error
	delErr    error
}

func (f *fakeRefreshRepo) Create(ctx context.Context, userID int64, token string, validity time.Duration) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.w.refreshTokens[token] = &models.RefreshToken{UserID: userID, Token: token,
		Expires: time.Now().Add(validity), CreatedAt: time.Now()}
	return nil
}

func (f *fakeRefreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	rt, ok := f.w.refreshTokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *rt
	return &cp, nil
}

func (f *fakeRefreshRepo) Delete(ctx context.Context, token string) error {
	if f.delErr != nil {
		return f.delErr
	}
	delete(f.w.refreshTokens, token)
	return nil
}

type fakeVerificationsRepo struct {
	w *fakeWorld

	createErr  error
	refreshErr error

	// conflictOnCreate simulates losing the first-request race: the next
	// Create stores the competitor's row and reports a duplicate.
	conflictOnCreate bool

	// onDelete, when set, is called after every DeleteOlderThan. Lets a test
	// observe a background purge without touching shared state.
	onDelete func()
}

func (f *fakeVerificationsRepo) GetByEmail(ctx context.Context, email string) (*models.EmailVerification, error) {
	v, ok := f.w.verifications[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *v
	return &cp, nil
}

func (f *fakeVerificationsRepo) Create(ctx context.Context, v *models.EmailVerification) (*models.EmailVerification, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.conflictOnCreate {
		f.conflictOnCreate = false
		f.w.nextVerificationID++
		f.w.verifications[v.Email] = &models.EmailVerification{ID: f.w.nextVerificationID, Email: v.Email,
			CodeHash: "competitor", Attempts: 1, ExpiresAt: v.ExpiresAt, CreatedAt: time.Now()}
		return nil, common.ErrorAlreadyExists
	}
	if _, ok := f.w.verifications[v.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	f.w.nextVerificationID++
	stored := &models.EmailVerification{ID: f.w.nextVerificationID, Email: v.Email, CodeHash: v.CodeHash,
		Attempts: 1, ExpiresAt: v.ExpiresAt, CreatedAt: time.Now()}
	f.w.verifications[v.Email] = stored
	cp := *stored
	return &cp, nil
}

func (f *fakeVerificationsRepo) Refresh(ctx context.Context, email, codeHash string, expiresAt time.Time) (int, error) {
	if f.refreshErr != nil {
		return 0, f.refreshErr
	}
	v, ok := f.w.verifications[email]
	if !ok {
		return 0, common.ErrorNotFound
	}
	v.CodeHash = codeHash
	v.ExpiresAt = expiresAt
	v.Attempts++
	v.Verified = false
	return v.Attempts, nil
}

func (f *fakeVerificationsRepo) MarkVerified(ctx context.Context, email string) error {
	v, ok := f.w.verifications[email]
	if !ok {
		return common.ErrorNotFound
	}
	v.Verified = true
	return nil
}

func (f *fakeVerificationsRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for email, v := range f.w.verifications {
		if v.CreatedAt.Before(cutoff) {
			delete(f.w.verifications, email)
			n++
		}
	}
	if f.onDelete != nil {
		f.onDelete()
	}
	return n, nil
}

// -------- repository manager --------

type fakeRepoManager struct {
	u  *fakeUsersRepo
	ws *fakeWorkspacesRepo
	ms *fakeMembershipsRepo
	td *fakeTodosRepo
	rt *fakeRefreshRepo
	ev *fakeVerificationsRepo
}

func newFakeRepoManager(w *fakeWorld) *fakeRepoManager {
	return &fakeRepoManager{
		u:  &fakeUsersRepo{w: w},
		ws: &fakeWorkspacesRepo{w: w},
		ms: &fakeMembershipsRepo{w: w},
		td: &fakeTodosRepo{w: w},
		rt: &fakeRefreshRepo{w: w},
		ev: &fakeVerificationsRepo{w: w},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository       { return m.u }
func (m *fakeRepoManager) Workspaces(db dbx.DBTX) workspacesrepo.Repository {
	return m.ws
}
func (m *fakeRepoManager) Memberships(db dbx.DBTX) membershipsrepo.Repository {
	return m.ms
}
func (m *fakeRepoManager) Todos(db dbx.DBTX) todosrepo.Repository { return m.td }
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokensrepo.Repository {
	return m.rt
}
func (m *fakeRepoManager) EmailVerifications(db dbx.DBTX) emailverificationsrepo.Repository {
	return m.ev
}

// -------- helpers --------

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }
