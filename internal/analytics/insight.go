package analytics

import (
	"context"
	"errors"
	"math"

	apierrors "github.com/codecrafts/backend/internal/errors"
	"github.com/codecrafts/backend/internal/models"
	"gorm.io/gorm"
)

// PostInsight is the detailed metric set for a single post. EngagementRate
// is recomputed from the exact like/comment counts for display;
// StoredEngagementRate is whatever snapshot the view tracker last wrote.
// The two may legitimately differ and are never reconciled.
type PostInsight struct {
	Post              models.Post `json:"post"`
	AuthorDisplayName string      `json:"author_display_name"`

	ViewCount     int64 `json:"view_count"`
	UniqueViewers int64 `json:"unique_viewers"`
	LikeCount     int64 `json:"like_count"`
	CommentCount  int64 `json:"comment_count"`

	EngagementRate       float64 `json:"engagement_rate"`
	StoredEngagementRate float64 `json:"stored_engagement_rate"`
}

// PostInsight assembles detailed metrics for one post. It fails with
// NotFound if the post id does not exist, and with Forbidden when an
// owner-scoped actor asks about someone else's post (admins bypass the
// check). Existence is confirmed by the initial fetch, so Forbidden takes
// priority once the post is known to exist.
func (s *Service) PostInsight(ctx context.Context, scope AccessScope, postID string) (*PostInsight, error) {
	var post models.Post
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("id = ?", postID).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.NotFound("post")
		}
		return nil, apierrors.LookupFailed("fetching post", err)
	}

	if !scope.Admin && post.UserID != scope.ActorID {
		return nil, apierrors.Forbidden("you can only view analytics for your own posts")
	}

	var analytics models.PostAnalytics
	err = s.db.WithContext(ctx).
		Where("post_id = ?", postID).
		First(&analytics).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierrors.LookupFailed("fetching post analytics", err)
	}

	// Exact counts scoped to this one post, recomputed from the raw rows
	var likeCount, commentCount int64
	if err := s.db.WithContext(ctx).Model(&models.Like{}).
		Where("post_id = ?", postID).
		Count(&likeCount).Error; err != nil {
		return nil, apierrors.LookupFailed("counting likes", err)
	}
	if err := s.db.WithContext(ctx).Model(&models.Comment{}).
		Where("post_id = ?", postID).
		Count(&commentCount).Error; err != nil {
		return nil, apierrors.LookupFailed("counting comments", err)
	}

	return &PostInsight{
		Post:                 post,
		AuthorDisplayName:    authorLabel(post.User),
		ViewCount:            analytics.ViewCount,
		UniqueViewers:        analytics.UniqueViewers,
		LikeCount:            likeCount,
		CommentCount:         commentCount,
		EngagementRate:       EngagementRate(likeCount, commentCount, analytics.ViewCount),
		StoredEngagementRate: analytics.EngagementRate,
	}, nil
}

// EngagementRate computes (likes + comments) / views * 100 rounded to two
// decimal places. Zero views yields exactly 0 - the figure is always finite
// and non-negative.
func EngagementRate(likes, comments, views int64) float64 {
	if views <= 0 {
		return 0
	}
	rate := float64(likes+comments) / float64(views) * 100
	return math.Round(rate*100) / 100
}
