package rest

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/dmitrijs2005/taskplanner/internal/logging"
	"github.com/dmitrijs2005/taskplanner/internal/server/services"
)

// TodoHandler serves todo CRUD and the visible-todos listing.
type TodoHandler struct {
	todos  TodoService
	logger logging.Logger
}

func NewTodoHandler(ts TodoService, l logging.Logger) *TodoHandler {
	return &TodoHandler{todos: ts, logger: l}
}

type createTodoRequest struct {
	Title          string  `json:"title" binding:"required,min=1"`
	Description    *string `json:"description"`
	Done           bool    `json:"done"`
	IsGlobalPublic bool    `json:"is_global_public"`
	WorkspaceID    *int64  `json:"workspace_id"`
	StartDate      *string `json:"start_date"`
	StartTime      *string `json:"start_time"`
	EndDate        *string `json:"end_date"`
	EndTime        *string `json:"end_time"`
	DueDate        *string `json:"due_date"`
}

// Create handles POST /todos. Without workspace_id the todo lands in the
// caller's personal workspace.
func (h *TodoHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	user := UserFromContext(ctx)

	var req createTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "title is required"})
		return
	}

	params := services.CreateTodoParams{
		Title:          req.Title,
		Description:    req.Description,
		Done:           req.Done,
		IsGlobalPublic: req.IsGlobalPublic,
	}
	if req.WorkspaceID != nil {
		params.WorkspaceID = *req.WorkspaceID
	}

	var err error
	if params.StartDate, err = parseDate(req.StartDate, "start_date"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if params.StartTime, err = parseTimeOfDay(req.StartTime, "start_time"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if params.EndDate, err = parseDate(req.EndDate, "end_date"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if params.EndTime, err = parseTimeOfDay(req.EndTime, "end_time"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if params.DueDate, err = parseDate(req.DueDate, "due_date"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	todo, err := h.todos.Create(ctx, user.ID, params)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	h.logger.Info(ctx, "todo created", "todo_id", todo.ID, "owner_id", user.ID, "workspace_id", todo.WorkspaceID)

	c.JSON(http.StatusOK, toTodoResponse(todo))
}

// List handles GET /todos: everything visible to the caller, paged with
// skip/limit.
func (h *TodoHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	user := UserFromContext(ctx)

	skip, ok := queryInt(c, "skip", 0)
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit", 0)
	if !ok {
		return
	}

	todos, err := h.todos.ListVisible(ctx, user.ID, skip, limit)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, toTodoResponses(todos))
}

// Get handles GET /todos/:id.
func (h *TodoHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	user := UserFromContext(ctx)

	todoID, ok := pathID(c, "id", "Invalid todo ID")
	if !ok {
		return
	}

	todo, err := h.todos.Get(ctx, todoID, user.ID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, toTodoResponse(todo))
}

type updateTodoRequest struct {
	Title          *string `json:"title"`
	Done           *bool   `json:"done"`
	Description    *string `json:"description"`
	IsGlobalPublic *bool   `json:"is_global_public"`
	WorkspaceID    *int64  `json:"workspace_id"`
	StartDate      *string `json:"start_date"`
	StartTime      *string `json:"start_time"`
	EndDate        *string `json:"end_date"`
	EndTime        *string `json:"end_time"`
	DueDate        *string `json:"due_date"`
}

// Update handles PUT /todos/:id. Fields absent from the body stay
// unchanged; an explicit null clears the field, and a null or personal
// workspace_id moves the todo home. The body is bound twice to tell those
// cases apart.
func (h *TodoHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	user := UserFromContext(ctx)

	todoID, ok := pathID(c, "id", "Invalid todo ID")
	if !ok {
		return
	}

	var req updateTodoRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body"})
		return
	}
	var present map[string]json.RawMessage
	if err := c.ShouldBindBodyWith(&present, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body"})
		return
	}
	has := func(field string) bool {
		_, ok := present[field]
		return ok
	}

	params := services.UpdateTodoParams{
		Title:             req.Title,
		Done:              req.Done,
		SetDescription:    has("description"),
		Description:       req.Description,
		SetIsGlobalPublic: has("is_global_public"),
		SetWorkspaceID:    has("workspace_id"),
		SetStartDate:      has("start_date"),
		SetStartTime:      has("start_time"),
		SetEndDate:        has("end_date"),
		SetEndTime:        has("end_time"),
		SetDueDate:        has("due_date"),
	}
	if req.IsGlobalPublic != nil {
		params.IsGlobalPublic = *req.IsGlobalPublic
	}
	if req.WorkspaceID != nil {
		params.WorkspaceID = *req.WorkspaceID
	}

	var err error
	if params.StartDate, err = parseDate(req.StartDate, "start_date"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if params.StartTime, err = parseTimeOfDay(req.StartTime, "start_time"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if params.EndDate, err = parseDate(req.EndDate, "end_date"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if params.EndTime, err = parseTimeOfDay(req.EndTime, "end_time"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if params.DueDate, err = parseDate(req.DueDate, "due_date"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	todo, err := h.todos.Update(ctx, todoID, user.ID, params)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, toTodoResponse(todo))
}

// Delete handles DELETE /todos/:id, returning the removed todo.
func (h *TodoHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	user := UserFromContext(ctx)

	todoID, ok := pathID(c, "id", "Invalid todo ID")
	if !ok {
		return
	}

	todo, err := h.todos.Delete(ctx, todoID, user.ID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	h.logger.Info(ctx, "todo deleted", "todo_id", todoID, "owner_id", user.ID)

	c.JSON(http.StatusOK, toTodoResponse(todo))
}

// queryInt parses a non-negative integer query parameter, answering 400
// itself when the value is malformed.
func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid " + name + " parameter"})
		return 0, false
	}
	return v, true
}
