package client

import "context"

// TokenPair is the bearer token pair issued by login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// User mirrors the server's user representation.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}

// Workspace mirrors the server's workspace representation.
type Workspace struct {
	ID        int64  `json:"id"`
	Kind      string `json:"kind"`
	Name      string `json:"name"`
	CreatedBy int64  `json:"created_by"`
}

// Todo mirrors the server's todo representation. Dates travel as
// YYYY-MM-DD strings.
type Todo struct {
	ID             int64   `json:"id"`
	OwnerID        int64   `json:"owner_id"`
	WorkspaceID    int64   `json:"workspace_id"`
	Title          string  `json:"title"`
	Description    *string `json:"description"`
	Done           bool    `json:"done"`
	IsPrivate      bool    `json:"is_private"`
	IsGlobalPublic bool    `json:"is_global_public"`
	DueDate        *string `json:"due_date"`
}

// CreateTodoRequest carries the fields the CLI sends when adding a todo.
// A nil WorkspaceID targets the caller's personal workspace.
type CreateTodoRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	WorkspaceID *int64  `json:"workspace_id,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
}

// Client is the API contract the CLI services depend on.
type Client interface {
	Close() error
	Ping(ctx context.Context) error
	Register(ctx context.Context, username, email string, password []byte) error
	Login(ctx context.Context, username string, password []byte) (*TokenPair, error)
	Me(ctx context.Context) (*User, error)
	VisibleTodos(ctx context.Context) ([]Todo, error)
	GetTodo(ctx context.Context, id int64) (*Todo, error)
	CreateTodo(ctx context.Context, req CreateTodoRequest) (*Todo, error)
	SetTodoDone(ctx context.Context, id int64, done bool) (*Todo, error)
	DeleteTodo(ctx context.Context, id int64) (*Todo, error)
	Workspaces(ctx context.Context) ([]Workspace, error)

	// SetTokens installs a previously saved token pair, Tokens reads the
	// current one (it may have been rotated by a transparent refresh).
	SetTokens(access, refresh string)
	Tokens() (access, refresh string)
}
