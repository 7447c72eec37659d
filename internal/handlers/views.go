package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"

	"github.com/codecrafts/backend/internal/logger"
	"github.com/codecrafts/backend/internal/metrics"
	"github.com/codecrafts/backend/internal/views"
	"github.com/gin-gonic/gin"
)

// RecordView ingests one view of a post. Works for both signed-in users
// (keyed by user id) and anonymous visitors (keyed by a client fingerprint).
func (h *Handlers) RecordView(c *gin.Context) {
	postID := c.Param("id")

	if h.views == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "view_tracking_unavailable"})
		return
	}

	row, err := h.views.Record(c.Request.Context(), postID, viewerKey(c))
	if err != nil {
		if errors.Is(err, views.ErrPostNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "post_not_found"})
			return
		}
		logger.ErrorWithFields("failed to record view", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "view_failed"})
		return
	}

	metrics.Get().ViewsRecordedTotal.Inc()
	c.JSON(http.StatusOK, gin.H{
		"status":     "recorded",
		"post_id":    postID,
		"view_count": row.ViewCount,
	})
}

// viewerKey identifies the viewer for unique-viewer estimation: the user id
// when authenticated, otherwise a hash of IP and user agent. The raw IP never
// reaches Redis.
func viewerKey(c *gin.Context) string {
	if userID := c.GetString("user_id"); userID != "" {
		return userID
	}

	sum := sha256.Sum256([]byte(c.ClientIP() + "|" + c.Request.UserAgent()))
	return "anon:" + hex.EncodeToString(sum[:16])
}
