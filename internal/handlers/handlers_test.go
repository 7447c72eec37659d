package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/codecrafts/backend/internal/analytics"
	"github.com/codecrafts/backend/internal/auth"
	"github.com/codecrafts/backend/internal/database"
	"github.com/codecrafts/backend/internal/logger"
	"github.com/codecrafts/backend/internal/middleware"
	"github.com/codecrafts/backend/internal/models"
	"github.com/codecrafts/backend/internal/views"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupHandlerTest wires a fresh in-memory database, the handlers, and a
// router with the production route shape but a header-based auth stub.
func setupHandlerTest(t *testing.T) (*gin.Engine, *Handlers, *gorm.DB) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	logger.Log = zap.NewNop()
	logger.Sugar = logger.Log.Sugar()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// The :memory: database exists per connection; keep a single one
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Like{},
		&models.Comment{},
		&models.PostAnalytics{},
		&models.LoginToken{},
	))
	database.DB = db

	h := NewHandlers(
		analytics.NewService(db, nil),
		auth.NewService([]byte("test-secret"), nil, "http://localhost:3000", 15*time.Minute),
	)
	h.SetViewTracker(views.NewTracker(db, nil, nil))

	router := gin.New()
	registerTestRoutes(router, h, db)
	return router, h, db
}

// registerTestRoutes mirrors the production route layout with a stub auth
// middleware that trusts the X-User-ID header.
func registerTestRoutes(router *gin.Engine, h *Handlers, db *gorm.DB) {
	testAuth := func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		c.Set("user_id", userID)
		var user models.User
		if err := db.Where("id = ?", userID).First(&user).Error; err == nil {
			c.Set("user", &user)
		}
		c.Next()
	}

	api := router.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.POST("/magic-link", h.RequestMagicLink)
	authGroup.GET("/verify", h.VerifyMagicLink)
	authGroup.GET("/me", testAuth, h.GetMe)

	api.GET("/feed", h.GetFeed)
	api.GET("/posts/:id", h.GetPost)
	api.GET("/posts/:id/comments", h.GetComments)
	api.POST("/posts/:id/view", h.RecordView)

	posts := api.Group("/posts")
	posts.Use(testAuth)
	posts.POST("", h.CreatePost)
	posts.DELETE("/:id", h.DeletePost)
	posts.POST("/:id/like", h.LikePost)
	posts.DELETE("/:id/like", h.UnlikePost)
	posts.POST("/:id/comments", h.CreateComment)

	api.DELETE("/comments/:id", testAuth, h.DeleteComment)

	adminGroup := api.Group("/admin")
	adminGroup.Use(testAuth, middleware.RequireAdmin())
	adminGroup.GET("/users", h.ListUsers)

	dashboard := api.Group("/dashboard")
	dashboard.Use(testAuth)
	dashboard.GET("/stats", h.GetDashboardStats)
	dashboard.GET("/posts", h.GetDashboardPosts)
	dashboard.GET("/posts/:id/insights", h.GetPostInsights)
}

func newAuthServiceWithMailer(m auth.Mailer) *auth.Service {
	return auth.NewService([]byte("test-secret"), m, "http://localhost:3000", 15*time.Minute)
}

// doRequest performs a JSON request against the test router
func doRequest(t *testing.T, router *gin.Engine, method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func seedUser(t *testing.T, db *gorm.DB, id, username string, admin bool) {
	t.Helper()
	require.NoError(t, db.Create(&models.User{
		ID:       id,
		Email:    username + "@example.com",
		Username: username,
		IsAdmin:  admin,
	}).Error)
}

func seedCodePost(t *testing.T, db *gorm.DB, id, userID, title string) {
	t.Helper()
	require.NoError(t, db.Create(&models.Post{
		ID:          id,
		UserID:      userID,
		Type:        models.PostTypeCode,
		Title:       title,
		CodeSnippet: "fmt.Println(\"hi\")",
	}).Error)
}

func TestGetFeed_CountsAndOrdering(t *testing.T) {
	router, _, db := setupHandlerTest(t)
	seedUser(t, db, "u1", "alice", false)
	seedUser(t, db, "u2", "bob", false)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&models.Post{
		ID: "p1", UserID: "u1", Type: models.PostTypeMeme, Title: "old", CreatedAt: base,
	}).Error)
	require.NoError(t, db.Create(&models.Post{
		ID: "p2", UserID: "u1", Type: models.PostTypeCode, Title: "new",
		CodeSnippet: "x", CreatedAt: base.Add(time.Minute),
	}).Error)
	require.NoError(t, db.Create(&models.Like{PostID: "p1", UserID: "u2"}).Error)
	require.NoError(t, db.Create(&models.Comment{PostID: "p1", UserID: "u2", Content: "lol"}).Error)

	w := doRequest(t, router, http.MethodGet, "/api/v1/feed", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	posts := body["posts"].([]interface{})
	require.Len(t, posts, 2)

	first := posts[0].(map[string]interface{})
	second := posts[1].(map[string]interface{})
	assert.Equal(t, "p2", first["id"], "newest first")
	assert.Equal(t, "p1", second["id"])
	assert.Equal(t, float64(1), second["like_count"])
	assert.Equal(t, float64(1), second["comment_count"])
	assert.Equal(t, float64(0), first["like_count"])
}

func TestGetFeed_TypeFilter(t *testing.T) {
	router, _, db := setupHandlerTest(t)
	seedUser(t, db, "u1", "alice", false)
	require.NoError(t, db.Create(&models.Post{
		ID: "p1", UserID: "u1", Type: models.PostTypeMeme, Title: "meme",
	}).Error)
	seedCodePost(t, db, "p2", "u1", "code")

	w := doRequest(t, router, http.MethodGet, "/api/v1/feed?type=code", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	posts := decodeBody(t, w)["posts"].([]interface{})
	require.Len(t, posts, 1)
	assert.Equal(t, "p2", posts[0].(map[string]interface{})["id"])
}

func TestGetFeed_EmptyIsNotNull(t *testing.T) {
	router, _, _ := setupHandlerTest(t)

	w := doRequest(t, router, http.MethodGet, "/api/v1/feed", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"posts":[]`)
}
