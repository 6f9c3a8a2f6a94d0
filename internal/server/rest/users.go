package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/taskplanner/internal/logging"
)

// UserHandler serves account endpoints: signup, token issuance and refresh,
// the current-user routes, and the public user counter.
type UserHandler struct {
	users  UserService
	logger logging.Logger
}

func NewUserHandler(users UserService, l logging.Logger) *UserHandler {
	return &UserHandler{users: users, logger: l}
}

type createUserRequest struct {
	Username string `json:"username" binding:"required,min=1,max=255"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=1"`
}

// Create handles POST /users: open signup, provisioning the personal
// workspace together with the account.
func (h *UserHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "username, email and password are required"})
		return
	}

	user, err := h.users.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	h.logger.Info(ctx, "user registered", "user_id", user.ID, "username", user.Username)

	c.JSON(http.StatusOK, toUserResponse(user))
}

type tokenRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// Token handles POST /token: form-encoded credentials in, bearer token pair
// out.
func (h *UserHandler) Token(c *gin.Context) {
	ctx := c.Request.Context()

	var req tokenRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "username and password are required"})
		return
	}

	pair, err := h.users.Login(ctx, req.Username, req.Password)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh handles POST /token/refresh, rotating the presented refresh token.
func (h *UserHandler) Refresh(c *gin.Context) {
	ctx := c.Request.Context()

	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "refresh_token is required"})
		return
	}

	pair, err := h.users.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
	})
}

// Me handles GET /users/me.
func (h *UserHandler) Me(c *gin.Context) {
	user := UserFromContext(c.Request.Context())
	c.JSON(http.StatusOK, toUserResponse(user))
}

// DeleteMe handles DELETE /users/me: the full account removal cascade.
func (h *UserHandler) DeleteMe(c *gin.Context) {
	ctx := c.Request.Context()
	user := UserFromContext(ctx)

	if err := h.users.DeleteAccount(ctx, user.ID); err != nil {
		writeError(c, h.logger, err)
		return
	}

	h.logger.Info(ctx, "account deleted", "user_id", user.ID)

	c.JSON(http.StatusOK, gin.H{"message": "User and associated data deleted successfully."})
}

// Count handles GET /users/count.
func (h *UserHandler) Count(c *gin.Context) {
	total, err := h.users.Count(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total_users": total})
}
