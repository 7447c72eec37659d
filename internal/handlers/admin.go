package handlers

import (
	"net/http"

	"github.com/codecrafts/backend/internal/database"
	"github.com/codecrafts/backend/internal/logger"
	"github.com/codecrafts/backend/internal/models"
	"github.com/gin-gonic/gin"
)

// ListUsers returns registered accounts, newest first. Admin-only: this is
// the one dashboard surface with no owner-scoped rendition, so the route
// sits behind the RequireAdmin middleware rather than degrading.
func (h *Handlers) ListUsers(c *gin.Context) {
	limit, offset := feedPagination(c)

	var users []models.User
	err := database.DB.WithContext(c.Request.Context()).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	if err != nil {
		logger.ErrorWithFields("failed to list users", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fetch_failed"})
		return
	}

	var total int64
	if err := database.DB.WithContext(c.Request.Context()).
		Model(&models.User{}).
		Count(&total).Error; err != nil {
		logger.ErrorWithFields("failed to count users", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fetch_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users":  users,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}
