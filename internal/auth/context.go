package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	CtxUserID = "user_id"
	CtxEmail  = "email"
)

// UserID extracts the authenticated user's id from the Gin context.
// It is set by FirebaseAuthMiddleware (or DevUser in development).
func UserID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxUserID))
}

// Email extracts the authenticated user's email claim, if present.
func Email(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxEmail))
}
