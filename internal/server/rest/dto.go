package rest

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskplanner/internal/server/models"
)

// Wire formats for the schedule fields. Dates travel as "2006-01-02"
// strings, times of day as "15:04:05" (seconds optional on input).
const (
	dateFormat      = "2006-01-02"
	timeFormat      = "15:04:05"
	timeFormatShort = "15:04"
)

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, Email: u.Email, IsActive: u.IsActive}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type workspaceResponse struct {
	ID        int64     `json:"id"`
	Kind      string    `json:"kind"`
	Name      string    `json:"name,omitempty"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

func toWorkspaceResponse(ws *models.Workspace) workspaceResponse {
	return workspaceResponse{
		ID:        ws.ID,
		Kind:      string(ws.Kind),
		Name:      ws.Name,
		CreatedBy: ws.CreatedBy,
		CreatedAt: ws.CreatedAt,
	}
}

func toWorkspaceResponses(list []*models.Workspace) []workspaceResponse {
	out := make([]workspaceResponse, len(list))
	for i, ws := range list {
		out[i] = toWorkspaceResponse(ws)
	}
	return out
}

type memberResponse struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func toMemberResponses(list []*models.Member) []memberResponse {
	out := make([]memberResponse, len(list))
	for i, m := range list {
		out[i] = memberResponse{UserID: m.UserID, Username: m.Username, Email: m.Email, Role: string(m.Role)}
	}
	return out
}

type todoResponse struct {
	ID             int64     `json:"id"`
	OwnerID        int64     `json:"owner_id"`
	WorkspaceID    int64     `json:"workspace_id"`
	Title          string    `json:"title"`
	Description    *string   `json:"description"`
	Done           bool      `json:"done"`
	IsPrivate      bool      `json:"is_private"`
	IsGlobalPublic bool      `json:"is_global_public"`
	StartDate      *string   `json:"start_date"`
	StartTime      *string   `json:"start_time"`
	EndDate        *string   `json:"end_date"`
	EndTime        *string   `json:"end_time"`
	DueDate        *string   `json:"due_date"`
	CreatedAt      time.Time `json:"created_at"`
}

func toTodoResponse(t *models.Todo) todoResponse {
	return todoResponse{
		ID:             t.ID,
		OwnerID:        t.OwnerID,
		WorkspaceID:    t.WorkspaceID,
		Title:          t.Title,
		Description:    t.Description,
		Done:           t.Done,
		IsPrivate:      t.IsPrivate,
		IsGlobalPublic: t.IsGlobalPublic,
		StartDate:      formatDate(t.StartDate),
		StartTime:      t.StartTime,
		EndDate:        formatDate(t.EndDate),
		EndTime:        t.EndTime,
		DueDate:        formatDate(t.DueDate),
		CreatedAt:      t.CreatedAt,
	}
}

func toTodoResponses(list []*models.Todo) []todoResponse {
	out := make([]todoResponse, len(list))
	for i, t := range list {
		out[i] = toTodoResponse(t)
	}
	return out
}

func formatDate(d *time.Time) *string {
	if d == nil {
		return nil
	}
	s := d.Format(dateFormat)
	return &s
}

func parseDate(s *string, field string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	d, err := time.Parse(dateFormat, *s)
	if err != nil {
		return nil, fmt.Errorf("%s must be formatted as YYYY-MM-DD", field)
	}
	return &d, nil
}

func parseTimeOfDay(s *string, field string) (*string, error) {
	if s == nil {
		return nil, nil
	}
	if t, err := time.Parse(timeFormat, *s); err == nil {
		v := t.Format(timeFormat)
		return &v, nil
	}
	if t, err := time.Parse(timeFormatShort, *s); err == nil {
		v := t.Format(timeFormat)
		return &v, nil
	}
	return nil, fmt.Errorf("%s must be formatted as HH:MM[:SS]", field)
}
