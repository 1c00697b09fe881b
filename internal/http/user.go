package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const contextKeyUserID = "user_id"

// DefaultUserHeader carries the local user set by the authenticating proxy.
const DefaultUserHeader = "X-Forwarded-User"

// UserMiddleware resolves the local user of every request from header,
// falling back to defaultUser. Requests without either are rejected.
func UserMiddleware(header, defaultUser string) gin.HandlerFunc {
	if header == "" {
		header = DefaultUserHeader
	}
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(header))
		if userID == "" {
			userID = defaultUser
		}
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "no user"})
			return
		}
		c.Set(contextKeyUserID, userID)
		c.Next()
	}
}

// GetUserID returns the user resolved by UserMiddleware.
func GetUserID(c *gin.Context) string {
	return c.GetString(contextKeyUserID)
}
