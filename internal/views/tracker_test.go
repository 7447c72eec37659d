package views

import (
	"context"
	"errors"
	"testing"

	"github.com/codecrafts/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// fakeCounter is an in-memory stand-in for the Redis HyperLogLog
type fakeCounter struct {
	sets map[string]map[string]bool
	fail bool
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{sets: make(map[string]map[string]bool)}
}

func (f *fakeCounter) PFAdd(ctx context.Context, key string, els ...interface{}) (bool, error) {
	if f.fail {
		return false, errors.New("redis down")
	}
	set, ok := f.sets[key]
	if !ok {
		set = make(map[string]bool)
		f.sets[key] = set
	}
	changed := false
	for _, el := range els {
		s := el.(string)
		if !set[s] {
			set[s] = true
			changed = true
		}
	}
	return changed, nil
}

func (f *fakeCounter) PFCount(ctx context.Context, keys ...string) (int64, error) {
	if f.fail {
		return 0, errors.New("redis down")
	}
	var total int64
	for _, key := range keys {
		total += int64(len(f.sets[key]))
	}
	return total, nil
}

func setupTrackerTest(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
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

	require.NoError(t, db.Create(&models.User{ID: "u1", Email: "a@b.c", Username: "alice"}).Error)
	require.NoError(t, db.Create(&models.Post{ID: "p1", UserID: "u1", Type: models.PostTypeMeme, Title: "meme"}).Error)

	return db
}

func TestRecord_CreatesAndIncrementsRow(t *testing.T) {
	db := setupTrackerTest(t)
	tracker := NewTracker(db, newFakeCounter(), nil)

	row, err := tracker.Record(context.Background(), "p1", "viewer-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), row.ViewCount)
	assert.Equal(t, int64(1), row.UniqueViewers)

	// Same viewer again: views grow, uniques do not
	row, err = tracker.Record(context.Background(), "p1", "viewer-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), row.ViewCount)
	assert.Equal(t, int64(1), row.UniqueViewers)

	row, err = tracker.Record(context.Background(), "p1", "viewer-2")
	require.NoError(t, err)
	assert.Equal(t, int64(3), row.ViewCount)
	assert.Equal(t, int64(2), row.UniqueViewers)

	var stored int64
	db.Model(&models.PostAnalytics{}).Count(&stored)
	assert.Equal(t, int64(1), stored, "one analytics row per post")
}

func TestRecord_EngagementSnapshot(t *testing.T) {
	db := setupTrackerTest(t)
	tracker := NewTracker(db, newFakeCounter(), nil)

	require.NoError(t, db.Create(&models.Like{PostID: "p1", UserID: "u2"}).Error)

	row, err := tracker.Record(context.Background(), "p1", "viewer-1")
	require.NoError(t, err)

	// 1 like, 0 comments, 1 view
	assert.Equal(t, float64(100), row.EngagementRate)
}

func TestRecord_UnknownPost(t *testing.T) {
	db := setupTrackerTest(t)
	tracker := NewTracker(db, newFakeCounter(), nil)

	_, err := tracker.Record(context.Background(), "nope", "viewer-1")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestRecord_RedisDownDegradesGracefully(t *testing.T) {
	db := setupTrackerTest(t)
	counter := newFakeCounter()
	tracker := NewTracker(db, counter, nil)

	row, err := tracker.Record(context.Background(), "p1", "viewer-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), row.UniqueViewers)

	counter.fail = true
	row, err = tracker.Record(context.Background(), "p1", "viewer-2")
	require.NoError(t, err)
	assert.Equal(t, int64(2), row.ViewCount, "view counting survives a cache outage")
	assert.Equal(t, int64(1), row.UniqueViewers, "unique estimate keeps its last value")
}

func TestRecord_NoCounterConfigured(t *testing.T) {
	db := setupTrackerTest(t)
	tracker := NewTracker(db, nil, nil)

	row, err := tracker.Record(context.Background(), "p1", "viewer-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), row.ViewCount)
	assert.Equal(t, int64(0), row.UniqueViewers)
}
