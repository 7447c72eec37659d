package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/codecrafts/backend/internal/database"
	"github.com/codecrafts/backend/internal/logger"
	"github.com/codecrafts/backend/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const maxCommentLength = 2000

// CreateComment adds a comment to a post
func (h *Handlers) CreateComment(c *gin.Context) {
	userID := c.GetString("user_id")
	postID := c.Param("id")

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content_required"})
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content_required"})
		return
	}
	if len(content) > maxCommentLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "comment_too_long"})
		return
	}

	if err := requirePost(c, postID); err != nil {
		return
	}

	comment := models.Comment{
		PostID:  postID,
		UserID:  userID,
		Content: content,
	}
	if err := database.DB.WithContext(c.Request.Context()).Create(&comment).Error; err != nil {
		logger.ErrorWithFields("failed to create comment", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "comment_failed"})
		return
	}

	database.DB.WithContext(c.Request.Context()).
		Preload("User").
		First(&comment, "id = ?", comment.ID)

	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

// GetComments lists a post's comments, oldest first
func (h *Handlers) GetComments(c *gin.Context) {
	postID := c.Param("id")
	limit, offset := feedPagination(c)

	if err := requirePost(c, postID); err != nil {
		return
	}

	var comments []models.Comment
	err := database.DB.WithContext(c.Request.Context()).
		Preload("User").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	if err != nil {
		logger.ErrorWithFields("failed to load comments", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fetch_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"comments": comments,
		"limit":    limit,
		"offset":   offset,
	})
}

// DeleteComment removes a comment. The comment author, the post owner, and
// admins may delete.
func (h *Handlers) DeleteComment(c *gin.Context) {
	userID := c.GetString("user_id")
	commentID := c.Param("id")

	var comment models.Comment
	err := database.DB.WithContext(c.Request.Context()).
		Where("id = ?", commentID).
		First(&comment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "comment_not_found"})
			return
		}
		logger.ErrorWithFields("failed to fetch comment", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fetch_failed"})
		return
	}

	allowed := comment.UserID == userID || isAdmin(c)
	if !allowed {
		var post models.Post
		if err := database.DB.WithContext(c.Request.Context()).
			Select("user_id").
			Where("id = ?", comment.PostID).
			First(&post).Error; err == nil {
			allowed = post.UserID == userID
		}
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "not_comment_owner"})
		return
	}

	if err := database.DB.WithContext(c.Request.Context()).Delete(&comment).Error; err != nil {
		logger.ErrorWithFields("failed to delete comment", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted", "comment_id": commentID})
}
