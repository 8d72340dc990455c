package middleware

import (
	"context"

	"filesmanager/internal/pkg/apperr"
	"filesmanager/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	TokenHeader   = "X-Token"
	ContextUserID = "user_id"
)

type SessionResolver interface {
	Resolve(ctx context.Context, token string) (int64, bool, error)
}

var errUnauthorized = apperr.Unauthorized("Unauthorized")

// RequireSession rejects requests without a live X-Token session.
func RequireSession(sessions SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok, err := resolve(c, sessions)
		if err != nil {
			response.AbortWithError(c, apperr.Internal(err))
			return
		}
		if !ok {
			response.AbortWithError(c, errUnauthorized)
			return
		}
		c.Set(ContextUserID, userID)
		c.Next()
	}
}

// OptionalSession records the session user when present and never rejects.
// A cache failure is treated as an anonymous request.
func OptionalSession(sessions SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok, err := resolve(c, sessions)
		if err != nil {
			_ = c.Error(err)
		}
		if ok {
			c.Set(ContextUserID, userID)
		}
		c.Next()
	}
}

func resolve(c *gin.Context, sessions SessionResolver) (int64, bool, error) {
	token := c.GetHeader(TokenHeader)
	if token == "" {
		return 0, false, nil
	}
	return sessions.Resolve(c.Request.Context(), token)
}

// UserID returns the session user set by RequireSession or OptionalSession.
func UserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
