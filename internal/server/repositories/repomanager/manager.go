package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/taskplanner/internal/dbx"
	"github.com/dmitrijs2005/taskplanner/internal/server/repositories/emailverifications"
	"github.com/dmitrijs2005/taskplanner/internal/server/repositories/memberships"
	"github.com/dmitrijs2005/taskplanner/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/taskplanner/internal/server/repositories/todos"
	"github.com/dmitrijs2005/taskplanner/internal/server/repositories/users"
	"github.com/dmitrijs2005/taskplanner/internal/server/repositories/workspaces"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Workspaces(db dbx.DBTX) workspaces.Repository
	Memberships(db dbx.DBTX) memberships.Repository
	Todos(db dbx.DBTX) todos.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	EmailVerifications(db dbx.DBTX) emailverifications.Repository
}
