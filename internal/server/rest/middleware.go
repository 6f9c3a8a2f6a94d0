package rest

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/taskplanner/internal/common"
	"github.com/dmitrijs2005/taskplanner/internal/logging"
	"github.com/dmitrijs2005/taskplanner/internal/server/auth"
	"github.com/dmitrijs2005/taskplanner/internal/server/models"
)

type ctxKey string

const (
	userKey      ctxKey = "user"
	requestIDKey ctxKey = "requestID"
)

// RequestIDHeader carries the request id on responses and, when supplied by
// the caller, on inbound requests.
const RequestIDHeader = "X-Request-Id"

// requestID makes sure every request carries an id, generating one when the
// client did not send its own.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set(RequestIDHeader, id)

		ctx := context.WithValue(c.Request.Context(), requestIDKey, id)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// requestLogger logs one line per handled request.
func requestLogger(l logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		ctx := c.Request.Context()
		l.Info(ctx, "request handled",
			"request_id", RequestIDFromContext(ctx),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// requireAuth validates the bearer access token and resolves its subject to
// a live user record, so tokens of deleted accounts stop working immediately.
func requireAuth(jwtSecret []byte, users UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(common.AuthorizationHeaderName)
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
			return
		}

		token, found := strings.CutPrefix(header, common.BearerSchema+" ")
		if !found {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
			return
		}

		userID, err := auth.GetUserIDFromToken(token, jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Could not validate credentials"})
			return
		}

		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Could not validate credentials"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
			return
		}

		ctx := context.WithValue(c.Request.Context(), userKey, user)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// UserFromContext returns the authenticated user attached by requireAuth,
// or nil outside an authenticated request.
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}

// RequestIDFromContext returns the request id attached by the requestID
// middleware, or an empty string.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
