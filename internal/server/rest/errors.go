package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/taskplanner/internal/common"
	"github.com/dmitrijs2005/taskplanner/internal/logging"
)

// writeError is the single place where service errors become status codes.
// The client-facing message comes from the DetailError wrapper when present;
// anything unclassified is logged and surfaced as a 500.
func writeError(c *gin.Context, l logging.Logger, err error) {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": detailOf(err, "Not found")})
	case errors.Is(err, common.ErrorForbidden):
		c.JSON(http.StatusForbidden, gin.H{"detail": detailOf(err, "Not enough permissions")})
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrRefreshTokenExpired):
		c.JSON(http.StatusUnauthorized, gin.H{"detail": detailOf(err, "Could not validate credentials")})
	case errors.Is(err, common.ErrorAlreadyExists),
		errors.Is(err, common.ErrorValidation),
		errors.Is(err, common.ErrVerificationCodeInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"detail": detailOf(err, "Invalid request")})
	case errors.Is(err, common.ErrTooManyRequests):
		c.JSON(http.StatusTooManyRequests, gin.H{"detail": detailOf(err, "Too many requests")})
	default:
		l.Error(c.Request.Context(), "request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
	}
}

func detailOf(err error, fallback string) string {
	var de *common.DetailError
	if errors.As(err, &de) {
		return de.Detail
	}
	return fallback
}
