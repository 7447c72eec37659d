package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/codecrafts/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardStats_OwnerScope(t *testing.T) {
	router, _, db := setupHandlerTest(t)
	seedUser(t, db, "admin", "admin", true)
	seedUser(t, db, "u1", "alice", false)
	seedUser(t, db, "u2", "bob", false)

	seedCodePost(t, db, "p1", "u1", "one")
	seedCodePost(t, db, "p2", "u1", "two")
	seedCodePost(t, db, "p3", "u2", "three")
	require.NoError(t, db.Create(&models.Like{PostID: "p1", UserID: "u2"}).Error)
	require.NoError(t, db.Create(&models.Like{PostID: "p3", UserID: "u1"}).Error)
	require.NoError(t, db.Create(&models.Comment{PostID: "p3", UserID: "u1", Content: "x"}).Error)

	w := doRequest(t, router, http.MethodGet, "/api/v1/dashboard/stats", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "owner", body["scope"])

	stats := body["stats"].(map[string]interface{})
	assert.Equal(t, float64(0), stats["user_count"], "user totals are admin-only")
	assert.Equal(t, float64(2), stats["post_count"])
	assert.Equal(t, float64(1), stats["like_count"], "only likes on alice's posts")
	assert.Equal(t, float64(0), stats["comment_count"])
}

func TestDashboardStats_AdminScope(t *testing.T) {
	router, _, db := setupHandlerTest(t)
	seedUser(t, db, "admin", "admin", true)
	seedUser(t, db, "u1", "alice", false)

	seedCodePost(t, db, "p1", "u1", "one")
	require.NoError(t, db.Create(&models.Like{PostID: "p1", UserID: "admin"}).Error)

	w := doRequest(t, router, http.MethodGet, "/api/v1/dashboard/stats", "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "admin", body["scope"])

	stats := body["stats"].(map[string]interface{})
	assert.Equal(t, float64(2), stats["user_count"])
	assert.Equal(t, float64(1), stats["post_count"])
	assert.Equal(t, float64(1), stats["like_count"])
}

func TestDashboardStats_UnknownActorDegradesToOwner(t *testing.T) {
	router, _, db := setupHandlerTest(t)
	seedUser(t, db, "u1", "alice", false)
	seedCodePost(t, db, "p1", "u1", "one")

	// An actor with no profile row sees nothing, not everything
	w := doRequest(t, router, http.MethodGet, "/api/v1/dashboard/stats", "ghost", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "owner", body["scope"])
	stats := body["stats"].(map[string]interface{})
	assert.Equal(t, float64(0), stats["post_count"])
}

func TestDashboardPosts_ScopedAndEnriched(t *testing.T) {
	router, _, db := setupHandlerTest(t)
	seedUser(t, db, "admin", "admin", true)
	seedUser(t, db, "u1", "alice", false)
	seedUser(t, db, "u2", "bob", false)

	seedCodePost(t, db, "p1", "u1", "mine")
	seedCodePost(t, db, "p2", "u2", "theirs")
	require.NoError(t, db.Create(&models.Like{PostID: "p1", UserID: "u2"}).Error)
	require.NoError(t, db.Create(&models.PostAnalytics{
		PostID: "p1", ViewCount: 40, UniqueViewers: 12, EngagementRate: 5.5,
	}).Error)

	// Owner sees only their own posts
	w := doRequest(t, router, http.MethodGet, "/api/v1/dashboard/posts", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	posts := decodeBody(t, w)["posts"].([]interface{})
	require.Len(t, posts, 1)

	post := posts[0].(map[string]interface{})
	assert.Equal(t, "p1", post["id"])
	assert.Equal(t, "alice", post["author_display_name"])
	assert.Equal(t, float64(1), post["like_count"])

	analytics := post["analytics"].(map[string]interface{})
	assert.Equal(t, float64(40), analytics["view_count"])
	assert.Equal(t, 5.5, analytics["engagement_rate"])

	// Admin sees everything
	w = doRequest(t, router, http.MethodGet, "/api/v1/dashboard/posts", "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w)["posts"], 2)
}

func TestDashboardPosts_InvalidLimit(t *testing.T) {
	router, _, db := setupHandlerTest(t)
	seedUser(t, db, "u1", "alice", false)

	w := doRequest(t, router, http.MethodGet, "/api/v1/dashboard/posts?limit=abc", "u1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDashboardPosts_LimitClamped(t *testing.T) {
	router, _, db := setupHandlerTest(t)
	seedUser(t, db, "admin", "admin", true)
	for i := 0; i < maxDashboardPostsLimit+5; i++ {
		seedCodePost(t, db, fmt.Sprintf("p%03d", i), "admin", "bulk")
	}

	// An absurd limit must not page the whole table
	w := doRequest(t, router, http.MethodGet, "/api/v1/dashboard/posts?limit=1000000", "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	posts := decodeBody(t, w)["posts"].([]interface{})
	assert.Len(t, posts, maxDashboardPostsLimit)
}

func TestPostInsights_StatusMapping(t *testing.T) {
	router, _, db := setupHandlerTest(t)
	seedUser(t, db, "admin", "admin", true)
	seedUser(t, db, "u1", "alice", false)
	seedUser(t, db, "u2", "bob", false)
	seedCodePost(t, db, "p1", "u1", "mine")

	// Unknown post: 404
	w := doRequest(t, router, http.MethodGet, "/api/v1/dashboard/posts/nope/insights", "u1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "post_not_found")

	// Someone else's post: 403, and the body does not confirm existence details
	w = doRequest(t, router, http.MethodGet, "/api/v1/dashboard/posts/p1/insights", "u2", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "not_post_owner")

	// Owner: 200
	w = doRequest(t, router, http.MethodGet, "/api/v1/dashboard/posts/p1/insights", "u1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Admin: 200 on anyone's post
	w = doRequest(t, router, http.MethodGet, "/api/v1/dashboard/posts/p1/insights", "admin", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPostInsights_RecomputedEngagement(t *testing.T) {
	router, _, db := setupHandlerTest(t)
	seedUser(t, db, "u1", "alice", false)
	seedUser(t, db, "u2", "bob", false)
	seedCodePost(t, db, "p1", "u1", "mine")

	require.NoError(t, db.Create(&models.Like{PostID: "p1", UserID: "u2"}).Error)
	require.NoError(t, db.Create(&models.Comment{PostID: "p1", UserID: "u2", Content: "nice"}).Error)
	require.NoError(t, db.Create(&models.PostAnalytics{
		PostID: "p1", ViewCount: 50, EngagementRate: 4.2,
	}).Error)

	w := doRequest(t, router, http.MethodGet, "/api/v1/dashboard/posts/p1/insights", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	insight := decodeBody(t, w)["insight"].(map[string]interface{})
	// (1 like + 1 comment) / 50 views = 4.00, while the stored snapshot stays 4.2
	assert.Equal(t, float64(4), insight["engagement_rate"])
	assert.Equal(t, 4.2, insight["stored_engagement_rate"])
}
