package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Login redirects to Google OAuth login
func (h *Handler) Login(c *gin.Context) {
	url, err := h.auth.GetLoginURL(c)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to generate login URL", err)
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// GoogleCallback processes the OAuth callback from Google
func (h *Handler) GoogleCallback(c *gin.Context) {
	h.auth.HandleGoogleCallback(c)
}

// Logout handles user logout
func (h *Handler) Logout(c *gin.Context) {
	h.auth.Logout(c)
}

// GetCurrentUser returns the currently authenticated user
func (h *Handler) GetCurrentUser(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	user, err := h.users.GetByID(userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		handleError(c, http.StatusInternalServerError, "database error", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         user.ID,
		"email":      user.Email,
		"name":       user.Name,
		"avatar_url": user.AvatarURL,
		"last_login": user.LastLogin,
	})
}
