package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/taskplanner/internal/logging"
)

// VerificationHandler serves the email-verified signup flow.
type VerificationHandler struct {
	verifications VerificationService
	logger        logging.Logger
}

func NewVerificationHandler(vs VerificationService, l logging.Logger) *VerificationHandler {
	return &VerificationHandler{verifications: vs, logger: l}
}

type requestVerificationRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// RequestCode handles POST /auth/request-verification.
func (h *VerificationHandler) RequestCode(c *gin.Context) {
	ctx := c.Request.Context()

	var req requestVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "a valid email is required"})
		return
	}

	left, err := h.verifications.RequestCode(ctx, req.Email)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Verification code sent successfully",
		"attempts_left": left,
	})
}

type verifiedRegisterRequest struct {
	Email            string `json:"email" binding:"required,email"`
	VerificationCode string `json:"verification_code" binding:"required"`
	Username         string `json:"username" binding:"required,min=1,max=255"`
	Password         string `json:"password" binding:"required,min=1"`
}

// Register handles POST /auth/register: code-checked signup that signs the
// new user straight in.
func (h *VerificationHandler) Register(c *gin.Context) {
	ctx := c.Request.Context()

	var req verifiedRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "email, verification_code, username and password are required"})
		return
	}

	pair, err := h.verifications.Register(ctx, req.Email, req.VerificationCode, req.Username, req.Password)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	h.logger.Info(ctx, "verified registration", "username", req.Username)

	c.JSON(http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
	})
}
