package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/taskplanner/internal/logging"
	"github.com/dmitrijs2005/taskplanner/internal/server/services"
)

// WorkspaceHandler serves the workspace and membership lifecycle endpoints.
type WorkspaceHandler struct {
	workspaces WorkspaceService
	logger     logging.Logger
}

func NewWorkspaceHandler(ws WorkspaceService, l logging.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{workspaces: ws, logger: l}
}

type workspaceNameRequest struct {
	Name string `json:"name" binding:"required,min=1,max=255"`
}

// Create handles POST /workspaces: a new team workspace owned by the caller.
func (h *WorkspaceHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	user := UserFromContext(ctx)

	var req workspaceNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "name is required"})
		return
	}

	ws, err := h.workspaces.CreateTeam(ctx, user.ID, req.Name)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	h.logger.Info(ctx, "workspace created", "workspace_id", ws.ID, "owner_id", user.ID)

	c.JSON(http.StatusOK, toWorkspaceResponse(ws))
}

// List handles GET /workspaces: every workspace the caller belongs to.
func (h *WorkspaceHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	user := UserFromContext(ctx)

	list, err := h.workspaces.List(ctx, user.ID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, toWorkspaceResponses(list))
}

// Update handles PUT /workspaces/:id: owner-only rename.
func (h *WorkspaceHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	user := UserFromContext(ctx)

	workspaceID, ok := pathID(c, "id", "Invalid workspace ID")
	if !ok {
		return
	}

	var req workspaceNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "name is required"})
		return
	}

	ws, err := h.workspaces.Rename(ctx, workspaceID, user.ID, req.Name)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, toWorkspaceResponse(ws))
}

// Delete handles DELETE /workspaces/:id: owner-only dissolution with the
// full task-reassignment cascade.
func (h *WorkspaceHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	user := UserFromContext(ctx)

	workspaceID, ok := pathID(c, "id", "Invalid workspace ID")
	if !ok {
		return
	}

	if err := h.workspaces.Delete(ctx, workspaceID, user.ID); err != nil {
		writeError(c, h.logger, err)
		return
	}

	h.logger.Info(ctx, "workspace deleted", "workspace_id", workspaceID, "owner_id", user.ID)

	c.JSON(http.StatusOK, gin.H{"workspace_deleted": true})
}

type inviteRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// Invite handles POST /workspaces/:id/invite. Unknown addresses and existing
// members are reported as 400s, not failures; repeating an invite is safe.
func (h *WorkspaceHandler) Invite(c *gin.Context) {
	ctx := c.Request.Context()
	user := UserFromContext(ctx)

	workspaceID, ok := pathID(c, "id", "Invalid workspace ID")
	if !ok {
		return
	}

	var req inviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "a valid email is required"})
		return
	}

	outcome, err := h.workspaces.Invite(ctx, workspaceID, user.ID, req.Email)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	switch outcome {
	case services.InviteUserNotFound:
		c.JSON(http.StatusBadRequest, gin.H{"detail": "User not found"})
	case services.InviteAlreadyMember:
		c.JSON(http.StatusBadRequest, gin.H{"detail": "User is already a member of this workspace"})
	default:
		h.logger.Info(ctx, "user invited", "workspace_id", workspaceID, "inviter_id", user.ID)
		c.JSON(http.StatusOK, gin.H{"message": "User invited successfully"})
	}
}

// Members handles GET /workspaces/:id/members.
func (h *WorkspaceHandler) Members(c *gin.Context) {
	ctx := c.Request.Context()
	user := UserFromContext(ctx)

	workspaceID, ok := pathID(c, "id", "Invalid workspace ID")
	if !ok {
		return
	}

	members, err := h.workspaces.Members(ctx, workspaceID, user.ID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, toMemberResponses(members))
}

// LeaveMe handles DELETE /workspaces/:id/members/me. The response reports
// whether leaving dissolved the workspace (the owner's case).
func (h *WorkspaceHandler) LeaveMe(c *gin.Context) {
	ctx := c.Request.Context()
	user := UserFromContext(ctx)

	workspaceID, ok := pathID(c, "id", "Invalid workspace ID")
	if !ok {
		return
	}

	res, err := h.workspaces.Leave(ctx, workspaceID, user.ID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	h.logger.Info(ctx, "member left", "workspace_id", workspaceID, "user_id", user.ID,
		"workspace_deleted", res.WorkspaceDeleted)

	c.JSON(http.StatusOK, gin.H{"workspace_deleted": res.WorkspaceDeleted})
}

type removeMemberResponse struct {
	Message          string `json:"message"`
	WorkspaceDeleted bool   `json:"workspace_deleted"`
}

// RemoveMember handles DELETE /workspaces/:id/members/:userId. Owners
// removing themselves fall through to leave semantics, which may dissolve
// the workspace.
func (h *WorkspaceHandler) RemoveMember(c *gin.Context) {
	ctx := c.Request.Context()
	user := UserFromContext(ctx)

	workspaceID, ok := pathID(c, "id", "Invalid workspace ID")
	if !ok {
		return
	}
	targetID, ok := pathID(c, "userId", "Invalid user ID")
	if !ok {
		return
	}

	res, err := h.workspaces.RemoveMember(ctx, workspaceID, user.ID, targetID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	h.logger.Info(ctx, "member removed", "workspace_id", workspaceID, "remover_id", user.ID,
		"target_id", targetID, "workspace_deleted", res.WorkspaceDeleted)

	c.JSON(http.StatusOK, removeMemberResponse{
		Message:          "Member removed successfully",
		WorkspaceDeleted: res.WorkspaceDeleted,
	})
}

// Todos handles GET /workspaces/:id/todos, optionally filtered to one
// member's todos with ?user_id=.
func (h *WorkspaceHandler) Todos(c *gin.Context) {
	ctx := c.Request.Context()
	user := UserFromContext(ctx)

	workspaceID, ok := pathID(c, "id", "Invalid workspace ID")
	if !ok {
		return
	}

	var filterUserID *int64
	if raw := c.Query("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid user ID"})
			return
		}
		filterUserID = &id
	}

	todos, err := h.workspaces.Todos(ctx, workspaceID, user.ID, filterUserID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, toTodoResponses(todos))
}

// pathID parses a numeric path parameter, answering 400 itself when the
// value is malformed.
func pathID(c *gin.Context, name, detail string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": detail})
		return 0, false
	}
	return id, true
}
