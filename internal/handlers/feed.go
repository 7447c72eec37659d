package handlers

import (
	"net/http"
	"strconv"

	"github.com/codecrafts/backend/internal/database"
	"github.com/codecrafts/backend/internal/logger"
	"github.com/codecrafts/backend/internal/models"
	"github.com/gin-gonic/gin"
)

const (
	defaultFeedLimit = 20
	maxFeedLimit     = 100
)

// FeedItem is a post enriched with its reaction counts
type FeedItem struct {
	models.Post
	LikeCount    int64 `json:"like_count"`
	CommentCount int64 `json:"comment_count"`
}

// GetFeed returns the public reverse-chronological feed. No authentication
// required; browsing is open to everyone.
func (h *Handlers) GetFeed(c *gin.Context) {
	limit, offset := feedPagination(c)

	query := database.DB.WithContext(c.Request.Context()).
		Preload("User").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset)

	if postType := c.Query("type"); postType == models.PostTypeMeme || postType == models.PostTypeCode {
		query = query.Where("type = ?", postType)
	}

	var posts []models.Post
	if err := query.Find(&posts).Error; err != nil {
		logger.ErrorWithFields("failed to load feed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "feed_failed"})
		return
	}

	items := make([]FeedItem, 0, len(posts))
	if len(posts) > 0 {
		postIDs := make([]string, len(posts))
		for i, p := range posts {
			postIDs[i] = p.ID
		}

		likeCounts, err := countGroupedByPost(c, &models.Like{}, postIDs)
		if err != nil {
			logger.ErrorWithFields("failed to count likes for feed", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "feed_failed"})
			return
		}
		commentCounts, err := countGroupedByPost(c, &models.Comment{}, postIDs)
		if err != nil {
			logger.ErrorWithFields("failed to count comments for feed", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "feed_failed"})
			return
		}

		for _, p := range posts {
			items = append(items, FeedItem{
				Post:         p,
				LikeCount:    likeCounts[p.ID],
				CommentCount: commentCounts[p.ID],
			})
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":  items,
		"limit":  limit,
		"offset": offset,
	})
}

// countGroupedByPost folds one grouped count query into a post_id -> count map
func countGroupedByPost(c *gin.Context, model interface{}, postIDs []string) (map[string]int64, error) {
	type row struct {
		PostID string
		N      int64
	}
	var rows []row
	err := database.DB.WithContext(c.Request.Context()).
		Model(model).
		Select("post_id, COUNT(*) AS n").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.PostID] = r.N
	}
	return counts, nil
}

func feedPagination(c *gin.Context) (limit, offset int) {
	limit = defaultFeedLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxFeedLimit {
		limit = maxFeedLimit
	}

	if raw := c.Query("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
