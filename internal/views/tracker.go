// Package views maintains the stored per-post analytics rows. It is the
// write side of the analytics pipeline: the dashboard only ever reads the
// snapshots this tracker produces.
package views

import (
	"context"
	"errors"
	"fmt"

	"github.com/codecrafts/backend/internal/analytics"
	"github.com/codecrafts/backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrPostNotFound is returned when a view is recorded against an unknown post
var ErrPostNotFound = errors.New("post not found")

// UniqueCounter estimates distinct viewers per post. The production
// implementation is a Redis HyperLogLog; tests use an in-memory fake.
type UniqueCounter interface {
	PFAdd(ctx context.Context, key string, els ...interface{}) (bool, error)
	PFCount(ctx context.Context, keys ...string) (int64, error)
}

// Tracker records post views and refreshes the stored analytics snapshot
type Tracker struct {
	db      *gorm.DB
	uniques UniqueCounter
	log     *zap.Logger
}

// NewTracker creates a view tracker. uniques may be nil, in which case
// unique-viewer estimation is disabled and the stored value keeps its last
// state.
func NewTracker(db *gorm.DB, uniques UniqueCounter, log *zap.Logger) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Tracker{db: db, uniques: uniques, log: log}
}

// Record registers one view of a post by viewerKey (a user id or an
// anonymized client fingerprint). It bumps the view count, refreshes the
// unique-viewer estimate, and snapshots the engagement rate from the current
// like/comment counts. The snapshot is point-in-time: the dashboard
// recomputes its own figure at read time and the two are never reconciled.
func (t *Tracker) Record(ctx context.Context, postID, viewerKey string) (*models.PostAnalytics, error) {
	var post models.Post
	err := t.db.WithContext(ctx).Select("id").Where("id = ?", postID).First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to fetch post: %w", err)
	}

	var row models.PostAnalytics
	err = t.db.WithContext(ctx).Where("post_id = ?", postID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row = models.PostAnalytics{PostID: postID}
	} else if err != nil {
		return nil, fmt.Errorf("failed to fetch analytics row: %w", err)
	}

	row.ViewCount++
	row.UniqueViewers = t.uniqueViewers(ctx, postID, viewerKey, row.UniqueViewers)
	row.EngagementRate = t.engagementSnapshot(ctx, postID, row.ViewCount)

	if err := t.db.WithContext(ctx).Save(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to store analytics row: %w", err)
	}
	return &row, nil
}

// uniqueViewers folds the viewer into the per-post HyperLogLog and returns
// the new estimate. Redis trouble degrades to the previous value - view
// counting must not depend on the cache being up.
func (t *Tracker) uniqueViewers(ctx context.Context, postID, viewerKey string, previous int64) int64 {
	if t.uniques == nil || viewerKey == "" {
		return previous
	}

	key := "views:hll:" + postID
	if _, err := t.uniques.PFAdd(ctx, key, viewerKey); err != nil {
		t.log.Warn("unique viewer tracking unavailable",
			zap.String("post_id", postID),
			zap.Error(err),
		)
		return previous
	}

	count, err := t.uniques.PFCount(ctx, key)
	if err != nil {
		t.log.Warn("unique viewer count unavailable",
			zap.String("post_id", postID),
			zap.Error(err),
		)
		return previous
	}
	return count
}

// engagementSnapshot computes the stored rate from current like/comment rows
func (t *Tracker) engagementSnapshot(ctx context.Context, postID string, viewCount int64) float64 {
	var likes, comments int64
	if err := t.db.WithContext(ctx).Model(&models.Like{}).
		Where("post_id = ?", postID).Count(&likes).Error; err != nil {
		t.log.Warn("like count failed during view ingest", zap.Error(err))
		return 0
	}
	if err := t.db.WithContext(ctx).Model(&models.Comment{}).
		Where("post_id = ?", postID).Count(&comments).Error; err != nil {
		t.log.Warn("comment count failed during view ingest", zap.Error(err))
		return 0
	}
	return analytics.EngagementRate(likes, comments, viewCount)
}
