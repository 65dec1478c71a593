package handlers

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
)

// RunCron triggers a reminder sweep followed by a retention purge. Intended
// for an external scheduler (GitHub Actions, platform cron) hitting the
// endpoint every few minutes; the interval must stay at or below the sweep's
// lookahead window. Guarded by a bearer token when CRON_SECRET is set.
func (h *Handler) RunCron(c *gin.Context) {
	expectedToken := os.Getenv("CRON_SECRET")
	if expectedToken != "" && c.GetHeader("Authorization") != "Bearer "+expectedToken {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	now := time.Now()

	result, err := h.reminders.RunSweep(now)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Reminder sweep failed", err)
		return
	}

	deleted, err := h.reminders.Purge(now)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Reminder purge failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"reminders": result,
		"cleanup":   gin.H{"deleted": deleted},
		"timestamp": now,
	})
}
