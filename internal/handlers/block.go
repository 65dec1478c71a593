package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"quiethours/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateBlock handles the creation of a new study block. The reminder is
// scheduled best-effort afterwards: a scheduling failure is logged and the
// block creation still succeeds.
func (h *Handler) CreateBlock(c *gin.Context) {
	var request models.CreateBlockRequest

	if err := c.ShouldBindJSON(&request); err != nil {
		log.Printf("Error: Invalid input: %s", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid input: %s", err.Error())})
		return
	}

	if !request.EndAt.After(request.StartAt) {
		log.Printf("Error: End time %v is not after start time %v", request.EndAt, request.StartAt)
		c.JSON(http.StatusBadRequest, gin.H{"error": "End time must be after start time"})
		return
	}

	userID := c.GetString("user_id")
	if userID == "" {
		log.Printf("Error: Not authenticated")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	block := models.StudyBlock{
		UserID:  userID,
		Title:   request.Title,
		StartAt: request.StartAt.UTC(),
		EndAt:   request.EndAt.UTC(),
	}

	if err := h.blocks.Create(&block); err != nil {
		log.Printf("Error: Failed to create block: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create block"})
		return
	}

	// Schedule the email reminder (10 minutes before start). Never fail the
	// block creation over reminder bookkeeping.
	if err := h.reminders.Schedule(block.ID, userID, block.StartAt, c.GetString("email")); err != nil {
		log.Printf("Warning: Failed to schedule reminder for block %s: %v", block.ID, err)
	}

	c.JSON(http.StatusCreated, block)
}

// GetBlocks lists the authenticated user's blocks. With ?upcoming=true only
// blocks that have not started yet are returned, soonest first.
func (h *Handler) GetBlocks(c *gin.Context) {
	userID := c.GetString("user_id")

	upcomingOnly := c.Query("upcoming") == "true"
	blocks, err := h.blocks.ListForUser(userID, upcomingOnly)
	if err != nil {
		log.Printf("Error: Failed to fetch blocks: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch blocks"})
		return
	}

	c.JSON(http.StatusOK, blocks)
}

// GetBlockByID fetches a single block owned by the authenticated user
func (h *Handler) GetBlockByID(c *gin.Context) {
	blockID := c.Param("block_id")
	userID := c.GetString("user_id")

	block, err := h.blocks.GetOwned(blockID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Block not found"})
			return
		}
		log.Printf("Error: Failed to fetch block: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch block"})
		return
	}

	c.JSON(http.StatusOK, block)
}

// DeleteBlock deletes a block owned by the authenticated user and cancels
// its pending reminder, if any
func (h *Handler) DeleteBlock(c *gin.Context) {
	blockID := c.Param("block_id")
	userID := c.GetString("user_id")

	if _, err := h.blocks.GetOwned(blockID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Block not found"})
			return
		}
		log.Printf("Error: Failed to fetch block: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch block"})
		return
	}

	if err := h.blocks.Delete(blockID); err != nil {
		log.Printf("Error: Failed to delete block: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete block"})
		return
	}

	// Cancel any still-pending reminder for the deleted block
	if err := h.reminders.CancelForBlock(blockID); err != nil {
		log.Printf("Warning: Failed to cancel reminder for block %s: %v", blockID, err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Block deleted", "deleted_at": time.Now()})
}
