package analytics

import (
	"context"
	"testing"

	"github.com/codecrafts/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedTwoActors creates the shared scenario: three posts owned by actor A
// with 2 likes and 1 comment across them, one post owned by actor B with
// 5 likes.
func seedTwoActors(t *testing.T, svc *Service) {
	db := svc.db
	createUser(t, db, "actor-a", "alice", "Alice", false)
	createUser(t, db, "actor-b", "bob", "Bob", false)

	createPost(t, db, "a1", "actor-a", "first", testTime(1))
	createPost(t, db, "a2", "actor-a", "second", testTime(2))
	createPost(t, db, "a3", "actor-a", "third", testTime(3))
	createPost(t, db, "b1", "actor-b", "other", testTime(4))

	likePost(t, db, "a1", "actor-b")
	likePost(t, db, "a2", "actor-b")
	commentOnPost(t, db, "a3", "actor-b")

	for _, liker := range []string{"u1", "u2", "u3", "u4", "u5"} {
		likePost(t, db, "b1", liker)
	}
}

func TestCollectStats_OwnerScope(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, nil)
	seedTwoActors(t, svc)

	stats, err := svc.CollectStats(context.Background(), OwnerScope("actor-a"))
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.PostCount)
	assert.Equal(t, int64(2), stats.LikeCount)
	assert.Equal(t, int64(1), stats.CommentCount)
	assert.Equal(t, int64(0), stats.UserCount, "user total must not leak under owner scope")
}

func TestCollectStats_AdminScope(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, nil)
	seedTwoActors(t, svc)

	stats, err := svc.CollectStats(context.Background(), AdminScope("actor-a"))
	require.NoError(t, err)

	assert.Equal(t, int64(4), stats.PostCount)
	assert.Equal(t, int64(7), stats.LikeCount)
	assert.Equal(t, int64(1), stats.CommentCount)
	assert.Equal(t, int64(2), stats.UserCount)
}

func TestCollectStats_ActorWithZeroPosts(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, nil)
	seedTwoActors(t, svc)
	createUser(t, db, "lurker", "lurker", "", false)

	stats, err := svc.CollectStats(context.Background(), OwnerScope("lurker"))
	require.NoError(t, err)

	// The empty owned post-id set must short-circuit to 0, not count
	// every like/comment row in the store.
	assert.Equal(t, int64(0), stats.PostCount)
	assert.Equal(t, int64(0), stats.LikeCount)
	assert.Equal(t, int64(0), stats.CommentCount)
}

func TestCollectStats_BrokenCountReportsZero(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, nil)
	seedTwoActors(t, svc)

	// Break exactly one relation; its count degrades to 0 while the
	// independent counts still populate and the call succeeds.
	require.NoError(t, db.Migrator().DropTable(&models.Like{}))

	stats, err := svc.CollectStats(context.Background(), AdminScope("actor-a"))
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.LikeCount)
	assert.Equal(t, int64(4), stats.PostCount)
	assert.Equal(t, int64(1), stats.CommentCount)
	assert.Equal(t, int64(2), stats.UserCount)

	stats, err = svc.CollectStats(context.Background(), OwnerScope("actor-a"))
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.LikeCount)
	assert.Equal(t, int64(3), stats.PostCount)
	assert.Equal(t, int64(1), stats.CommentCount)
}

func TestCollectStats_CancelledContext(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, nil)
	seedTwoActors(t, svc)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.CollectStats(ctx, AdminScope("actor-a"))
	assert.ErrorIs(t, err, context.Canceled)
}
