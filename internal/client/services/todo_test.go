package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/taskplanner/internal/client/client"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func TestTodoList_Online_ReturnsServerTodos(t *testing.T) {
	db := setupDB(t)
	desc := "milk and bread"
	fc := &fakeClient{TodosRet: []client.Todo{
		{ID: 1, OwnerID: 1, WorkspaceID: 2, Title: "groceries", Description: &desc},
		{ID: 2, OwnerID: 1, WorkspaceID: 2, Title: "dentist", Done: true},
	}}
	svc := NewTodoService(fc, db)

	list, fromCache, err := svc.List(context.Background())
	require.NoError(t, err)
	require.False(t, fromCache)
	require.Len(t, list, 2)
	require.Equal(t, "groceries", list[0].Title)
	require.NotNil(t, list[0].Description)
	require.Equal(t, "milk and bread", *list[0].Description)
	require.True(t, list[1].Done)
}

func TestTodoList_Offline_FallsBackToCache(t *testing.T) {
	db := setupDB(t)
	_, err := db.Exec(`INSERT INTO todos(id, title, workspace_id, owner_id) VALUES (5, 'cached item', 1, 1)`)
	require.NoError(t, err)

	fc := &fakeClient{TodosErr: client.ErrUnavailable}
	svc := NewTodoService(fc, db)

	list, fromCache, err := svc.List(context.Background())
	require.NoError(t, err)
	require.True(t, fromCache)
	require.Len(t, list, 1)
	require.Equal(t, "cached item", list[0].Title)
}

func TestTodoList_UnauthorizedPropagates(t *testing.T) {
	db := setupDB(t)
	fc := &fakeClient{TodosErr: client.ErrUnauthorized}
	svc := NewTodoService(fc, db)

	_, _, err := svc.List(context.Background())
	require.ErrorIs(t, err, client.ErrUnauthorized)
}

func TestAdd_UsesSelectedWorkspace(t *testing.T) {
	db := setupDB(t)
	insertMeta(t, db, "workspace_id", []byte("5"))

	fc := &fakeClient{CreateRet: &client.Todo{ID: 10, Title: "plan sprint", WorkspaceID: 5}}
	svc := NewTodoService(fc, db)

	due := "2026-09-01"
	todo, err := svc.Add(context.Background(), "plan sprint", nil, &due)
	require.NoError(t, err)
	require.Equal(t, int64(10), todo.ID)

	require.Equal(t, "plan sprint", fc.LastCreateReq.Title)
	require.NotNil(t, fc.LastCreateReq.WorkspaceID)
	require.Equal(t, int64(5), *fc.LastCreateReq.WorkspaceID)
	require.NotNil(t, fc.LastCreateReq.DueDate)
	require.Equal(t, "2026-09-01", *fc.LastCreateReq.DueDate)
}

func TestAdd_NoSelectionTargetsPersonalWorkspace(t *testing.T) {
	db := setupDB(t)
	fc := &fakeClient{CreateRet: &client.Todo{ID: 11, Title: "water plants"}}
	svc := NewTodoService(fc, db)

	_, err := svc.Add(context.Background(), "water plants", nil, nil)
	require.NoError(t, err)
	require.Nil(t, fc.LastCreateReq.WorkspaceID)
}

func TestSync_ReplacesCacheWholesale(t *testing.T) {
	db := setupDB(t)
	_, err := db.Exec(`INSERT INTO todos(id, title, workspace_id, owner_id) VALUES (99, 'stale', 1, 1)`)
	require.NoError(t, err)

	fc := &fakeClient{TodosRet: []client.Todo{
		{ID: 1, OwnerID: 1, WorkspaceID: 1, Title: "fresh one"},
		{ID: 2, OwnerID: 1, WorkspaceID: 1, Title: "fresh two"},
	}}
	svc := NewTodoService(fc, db)

	n, err := svc.Sync(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, n)

	var stale int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM todos WHERE id=99`).Scan(&stale))
	require.Equal(t, 0, stale)
	require.Equal(t, 2, countRows(t, db, "todos"))
}

func TestSync_ServerErrorLeavesCacheIntact(t *testing.T) {
	db := setupDB(t)
	_, err := db.Exec(`INSERT INTO todos(id, title, workspace_id, owner_id) VALUES (1, 'keep me', 1, 1)`)
	require.NoError(t, err)

	fc := &fakeClient{TodosErr: errors.New("boom")}
	svc := NewTodoService(fc, db)

	_, err = svc.Sync(context.Background())
	require.Error(t, err)
	require.Equal(t, 1, countRows(t, db, "todos"))
}

func TestSelectWorkspace_ChecksMembership(t *testing.T) {
	db := setupDB(t)
	fc := &fakeClient{WorkspacesRet: []client.Workspace{
		{ID: 3, Kind: "personal", Name: "alice"},
		{ID: 7, Kind: "team", Name: "backend"},
	}}
	svc := NewTodoService(fc, db)

	require.NoError(t, svc.SelectWorkspace(context.Background(), 7))
	require.Equal(t, []byte("7"), getMeta(t, db, "workspace_id"))

	err := svc.SelectWorkspace(context.Background(), 9)
	require.Error(t, err)
	require.Contains(t, err.Error(), "not a member")
}

func TestSelectWorkspace_ZeroResetsSelection(t *testing.T) {
	db := setupDB(t)
	insertMeta(t, db, "workspace_id", []byte("7"))

	svc := NewTodoService(&fakeClient{}, db)

	require.NoError(t, svc.SelectWorkspace(context.Background(), 0))

	selected, err := svc.SelectedWorkspace(context.Background())
	require.NoError(t, err)
	require.Nil(t, selected)
}

func TestSelectedWorkspace_CorruptValue(t *testing.T) {
	db := setupDB(t)
	insertMeta(t, db, "workspace_id", []byte("not-a-number"))

	svc := NewTodoService(&fakeClient{}, db)

	_, err := svc.SelectedWorkspace(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "corrupt selected workspace")
}

func TestSetDone_Delete_Get_Delegations(t *testing.T) {
	db := setupDB(t)
	fc := &fakeClient{
		SetDoneRet: &client.Todo{ID: 4, Done: true},
		DeleteRet:  &client.Todo{ID: 4},
		GetTodoRet: &client.Todo{ID: 4, Title: "pay rent"},
	}
	svc := NewTodoService(fc, db)
	ctx := context.Background()

	done, err := svc.SetDone(ctx, 4, true)
	require.NoError(t, err)
	require.True(t, done.Done)
	require.Equal(t, int64(4), fc.LastSetDoneID)
	require.True(t, fc.LastSetDoneVal)

	_, err = svc.Delete(ctx, 4)
	require.NoError(t, err)
	require.Equal(t, int64(4), fc.LastDeleteID)

	got, err := svc.Get(ctx, 4)
	require.NoError(t, err)
	require.Equal(t, "pay rent", got.Title)
}

func TestWorkspaces_Delegation(t *testing.T) {
	db := setupDB(t)
	fc := &fakeClient{WorkspacesRet: []client.Workspace{{ID: 1, Kind: "personal", Name: "alice"}}}
	svc := NewTodoService(fc, db)

	list, err := svc.Workspaces(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "personal", list[0].Kind)
}
