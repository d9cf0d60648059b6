package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bidboard/bidboard-backend/internal/profiles"
)

// WithProfile ensures a profiles row exists for the authenticated user before
// any project operation runs. Must be registered after the auth middleware.
func WithProfile(profileRepo *profiles.Repo) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := UserID(c)
		if uid == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "missing user identity"})
			c.Abort()
			return
		}

		if err := profileRepo.Ensure(c.Request.Context(), uid, Email(c)); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "ensure profile: " + err.Error()})
			c.Abort()
			return
		}

		c.Next()
	}
}

// DevUser sets a user id in context without enforcing auth.
// - If X-User-Id is missing, it falls back to "demo-user".
// - Use this ONLY for development/testing.
func DevUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetHeader("X-User-Id")
		if uid == "" {
			uid = "demo-user"
		}
		c.Set(CtxUserID, uid)
		c.Next()
	}
}
