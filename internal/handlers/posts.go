package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/codecrafts/backend/internal/database"
	"github.com/codecrafts/backend/internal/logger"
	"github.com/codecrafts/backend/internal/metrics"
	"github.com/codecrafts/backend/internal/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxMediaSize = 25 << 20 // 25 MB

// CreatePost creates a meme or code-snippet post. Meme posts arrive as
// multipart form data with a media file; code posts arrive as JSON.
func (h *Handlers) CreatePost(c *gin.Context) {
	userID := c.GetString("user_id")

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		h.createMemePost(c, userID)
		return
	}
	h.createCodePost(c, userID)
}

func (h *Handlers) createMemePost(c *gin.Context, userID string) {
	title := strings.TrimSpace(c.PostForm("title"))
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title_required"})
		return
	}

	fileHeader, err := c.FormFile("media")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "media_file_required"})
		return
	}
	if fileHeader.Size > maxMediaSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "media_too_large"})
		return
	}

	if h.uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "media_storage_unavailable"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_media_file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_media_file"})
		return
	}

	result, err := h.uploader.UploadMedia(c.Request.Context(), data, userID, fileHeader.Filename)
	if err != nil {
		logger.Error("media upload failed",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload_failed"})
		return
	}

	post := models.Post{
		UserID:     userID,
		Type:       models.PostTypeMeme,
		Title:      title,
		ContentURL: result.URL,
	}
	if err := database.DB.WithContext(c.Request.Context()).Create(&post).Error; err != nil {
		logger.ErrorWithFields("failed to create post", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "post_creation_failed"})
		return
	}

	metrics.Get().PostsCreatedTotal.WithLabelValues(models.PostTypeMeme).Inc()
	c.JSON(http.StatusCreated, gin.H{"post": post})
}

func (h *Handlers) createCodePost(c *gin.Context, userID string) {
	var req struct {
		Type         string `json:"type" binding:"required"`
		Title        string `json:"title" binding:"required"`
		CodeSnippet  string `json:"code_snippet"`
		CodeLanguage string `json:"code_language"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Type != models.PostTypeCode {
		c.JSON(http.StatusBadRequest, gin.H{"error": "meme_posts_require_media_upload"})
		return
	}
	if strings.TrimSpace(req.CodeSnippet) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code_snippet_required"})
		return
	}

	if req.CodeLanguage == "" {
		req.CodeLanguage = "javascript"
	}

	post := models.Post{
		UserID:       userID,
		Type:         models.PostTypeCode,
		Title:        strings.TrimSpace(req.Title),
		CodeSnippet:  req.CodeSnippet,
		CodeLanguage: req.CodeLanguage,
	}
	if err := database.DB.WithContext(c.Request.Context()).Create(&post).Error; err != nil {
		logger.ErrorWithFields("failed to create post", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "post_creation_failed"})
		return
	}

	metrics.Get().PostsCreatedTotal.WithLabelValues(models.PostTypeCode).Inc()
	c.JSON(http.StatusCreated, gin.H{"post": post})
}

// GetPost returns a single post with its author
func (h *Handlers) GetPost(c *gin.Context) {
	postID := c.Param("id")

	var post models.Post
	err := database.DB.WithContext(c.Request.Context()).
		Preload("User").
		Where("id = ?", postID).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "post_not_found"})
			return
		}
		logger.ErrorWithFields("failed to fetch post", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fetch_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": post})
}

// DeletePost soft-deletes a post. Only the owner or an admin may delete.
func (h *Handlers) DeletePost(c *gin.Context) {
	userID := c.GetString("user_id")
	postID := c.Param("id")

	var post models.Post
	err := database.DB.WithContext(c.Request.Context()).
		Where("id = ?", postID).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "post_not_found"})
			return
		}
		logger.ErrorWithFields("failed to fetch post", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fetch_failed"})
		return
	}

	if post.UserID != userID && !isAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not_post_owner"})
		return
	}

	if err := database.DB.WithContext(c.Request.Context()).Delete(&post).Error; err != nil {
		logger.ErrorWithFields("failed to delete post", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted", "post_id": postID})
}

// isAdmin reports whether the auth middleware attached an admin user
func isAdmin(c *gin.Context) bool {
	userVal, exists := c.Get("user")
	if !exists {
		return false
	}
	user, ok := userVal.(*models.User)
	return ok && user.IsAdmin
}
