package handlers

import (
	"errors"
	"net/http"

	"github.com/codecrafts/backend/internal/database"
	"github.com/codecrafts/backend/internal/logger"
	"github.com/codecrafts/backend/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// LikePost adds the caller's like to a post. Liking twice is a no-op.
func (h *Handlers) LikePost(c *gin.Context) {
	userID := c.GetString("user_id")
	postID := c.Param("id")

	if err := requirePost(c, postID); err != nil {
		return
	}

	var existing models.Like
	err := database.DB.WithContext(c.Request.Context()).
		Where("post_id = ? AND user_id = ?", postID, userID).
		First(&existing).Error
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"status": "already_liked"})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.ErrorWithFields("failed to check like", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "like_failed"})
		return
	}

	like := models.Like{PostID: postID, UserID: userID}
	if err := database.DB.WithContext(c.Request.Context()).Create(&like).Error; err != nil {
		logger.ErrorWithFields("failed to create like", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "like_failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "liked", "post_id": postID})
}

// UnlikePost removes the caller's like from a post
func (h *Handlers) UnlikePost(c *gin.Context) {
	userID := c.GetString("user_id")
	postID := c.Param("id")

	err := database.DB.WithContext(c.Request.Context()).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.Like{}).Error
	if err != nil {
		logger.ErrorWithFields("failed to remove like", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unlike_failed"})
		return
	}

	// Removing an absent like is a no-op, same response either way
	c.JSON(http.StatusOK, gin.H{"status": "unliked", "post_id": postID})
}

// requirePost 404s and aborts when the post does not exist
func requirePost(c *gin.Context, postID string) error {
	var post models.Post
	err := database.DB.WithContext(c.Request.Context()).
		Select("id").
		Where("id = ?", postID).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "post_not_found"})
			return err
		}
		logger.ErrorWithFields("failed to fetch post", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fetch_failed"})
		return err
	}
	return nil
}
