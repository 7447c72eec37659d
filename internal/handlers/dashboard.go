package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/codecrafts/backend/internal/analytics"
	apierrors "github.com/codecrafts/backend/internal/errors"
	"github.com/codecrafts/backend/internal/logger"
	"github.com/codecrafts/backend/internal/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GetDashboardStats returns the four aggregate counts, scoped to what the
// caller may see. Admins get platform-wide totals; everyone else gets their
// own numbers.
func (h *Handlers) GetDashboardStats(c *gin.Context) {
	scope := h.analytics.ResolveScope(c.Request.Context(), c.GetString("user_id"))
	metrics.Get().DashboardRequestsTotal.WithLabelValues("stats", scopeLabel(scope)).Inc()

	stats, err := h.analytics.CollectStats(c.Request.Context(), scope)
	if err != nil {
		// Only context cancellation reaches here; per-count failures have
		// already been absorbed as zeros.
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "request_cancelled"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats": stats,
		"scope": scopeLabel(scope),
	})
}

// maxDashboardPostsLimit caps ?limit= the same way the feed caps its pages
const maxDashboardPostsLimit = 100

// GetDashboardPosts returns the most recent posts visible to the caller,
// enriched with author, analytics, and reaction counts.
func (h *Handlers) GetDashboardPosts(c *gin.Context) {
	scope := h.analytics.ResolveScope(c.Request.Context(), c.GetString("user_id"))
	metrics.Get().DashboardRequestsTotal.WithLabelValues("posts", scopeLabel(scope)).Inc()

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_limit"})
			return
		}
		limit = n
	}
	if limit > maxDashboardPostsLimit {
		limit = maxDashboardPostsLimit
	}

	posts, err := h.analytics.TopPosts(c.Request.Context(), scope, limit)
	if err != nil {
		h.dashboardError(c, err, "failed to assemble dashboard posts")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts": posts,
		"scope": scopeLabel(scope),
	})
}

// GetPostInsights returns the detailed analytics view of a single post.
// 404 for unknown posts, 403 when a non-admin asks about someone else's post.
func (h *Handlers) GetPostInsights(c *gin.Context) {
	scope := h.analytics.ResolveScope(c.Request.Context(), c.GetString("user_id"))
	metrics.Get().DashboardRequestsTotal.WithLabelValues("insights", scopeLabel(scope)).Inc()

	insight, err := h.analytics.PostInsight(c.Request.Context(), scope, c.Param("id"))
	if err != nil {
		h.dashboardError(c, err, "failed to resolve post insight")
		return
	}

	c.JSON(http.StatusOK, gin.H{"insight": insight})
}

// dashboardError translates analytics errors into HTTP responses
func (h *Handlers) dashboardError(c *gin.Context, err error, logMsg string) {
	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case apierrors.ErrNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "post_not_found"})
		case apierrors.ErrForbidden:
			c.JSON(http.StatusForbidden, gin.H{"error": "not_post_owner"})
		default:
			logger.Error(logMsg,
				zap.Error(err),
				zap.String("code", string(apiErr.Code)),
			)
			c.JSON(apiErr.Status, gin.H{"error": "analytics_unavailable"})
		}
		return
	}

	logger.ErrorWithFields(logMsg, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "analytics_unavailable"})
}

func scopeLabel(scope analytics.AccessScope) string {
	if scope.Admin {
		return "admin"
	}
	return "owner"
}
