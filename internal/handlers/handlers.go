package handlers

import (
	"log"
	"net/http"

	"quiethours/internal/auth"
	"quiethours/internal/database"
	"quiethours/internal/services"
	"quiethours/internal/store"

	"github.com/gin-gonic/gin"
)

// Handler carries the shared pool and services into the HTTP layer
type Handler struct {
	pool      *database.Pool
	auth      *auth.Service
	reminders *services.ReminderService
	blocks    *store.BlockStore
	users     *store.UserStore
}

// New builds the handler set around the shared pool and services
func New(pool *database.Pool, authService *auth.Service, reminders *services.ReminderService) *Handler {
	return &Handler{
		pool:      pool,
		auth:      authService,
		reminders: reminders,
		blocks:    store.NewBlockStore(pool),
		users:     store.NewUserStore(pool),
	}
}

// handleError provides a consistent way to handle and log errors
func handleError(c *gin.Context, status int, message string, err error) {
	log.Printf("Error: %v", err)
	c.JSON(status, gin.H{"error": message})
}

// Home handles requests to the root path "/"
func (h *Handler) Home(c *gin.Context) {
	c.String(http.StatusOK, "Welcome to Quiet Hours!")
}

// Health reports service health, including the database pool state. A failed
// ping flips the pool to disconnected; the next request reconnects.
func (h *Handler) Health(c *gin.Context) {
	if err := h.pool.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "degraded",
			"database": string(h.pool.State()),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"database": string(h.pool.State()),
	})
}
