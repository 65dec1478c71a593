package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Middleware validates the session and stores the signed-in user's identity
// in the request context
func (a *Service) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := a.GetSession(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}

		if session.IsExpired() {
			a.DeleteSession(c)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "session expired, please log in again"})
			c.Abort()
			return
		}

		c.Set("user_id", session.UserID)
		c.Set("email", session.Email)
		c.Set("name", session.Name)

		c.Next()
	}
}
