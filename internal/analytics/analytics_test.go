package analytics

import (
	"testing"
	"time"

	"github.com/codecrafts/backend/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)

	// The stats collector runs counts on separate goroutines; a second pool
	// connection would see its own empty :memory: database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Like{},
		&models.Comment{},
		&models.PostAnalytics{},
	))

	return db
}

// testTime returns a fixed base time offset by n minutes, for deterministic
// created_at ordering
func testTime(n int) time.Time {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return base.Add(time.Duration(n) * time.Minute)
}

func createUser(t *testing.T, db *gorm.DB, id, username, displayName string, admin bool) *models.User {
	t.Helper()
	user := &models.User{
		ID:          id,
		Email:       username + "@example.com",
		Username:    username,
		DisplayName: displayName,
		IsAdmin:     admin,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createPost(t *testing.T, db *gorm.DB, id, userID, title string, createdAt time.Time) *models.Post {
	t.Helper()
	post := &models.Post{
		ID:        id,
		UserID:    userID,
		Type:      models.PostTypeCode,
		Title:     title,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(post).Error)
	return post
}

func likePost(t *testing.T, db *gorm.DB, postID, userID string) {
	t.Helper()
	require.NoError(t, db.Create(&models.Like{PostID: postID, UserID: userID}).Error)
}

func commentOnPost(t *testing.T, db *gorm.DB, postID, userID string) {
	t.Helper()
	require.NoError(t, db.Create(&models.Comment{PostID: postID, UserID: userID, Content: "nice one"}).Error)
}
