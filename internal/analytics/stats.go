package analytics

import (
	"context"
	"sync"

	"github.com/codecrafts/backend/internal/metrics"
	"github.com/codecrafts/backend/internal/models"
	"go.uber.org/zap"
)

// AggregateStats holds the scoped dashboard totals. UserCount is only
// meaningful under admin scope and stays 0 otherwise - the global user total
// must not leak to ordinary accounts.
type AggregateStats struct {
	UserCount    int64 `json:"user_count"`
	PostCount    int64 `json:"post_count"`
	LikeCount    int64 `json:"like_count"`
	CommentCount int64 `json:"comment_count"`
}

// CollectStats computes the four scoped totals. The counts are independent
// and run concurrently; a failure in one is logged and reported as 0 without
// aborting the others. The only returned error is context cancellation, in
// which case the partial result must be discarded.
func (s *Service) CollectStats(ctx context.Context, scope AccessScope) (AggregateStats, error) {
	var stats AggregateStats
	var wg sync.WaitGroup

	// Each goroutine owns exactly one field of stats, so no locking is needed.

	if scope.Admin {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&stats.UserCount).Error; err != nil {
				s.logCountFailure("users", scope, err)
				stats.UserCount = 0
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		q := applyScope(s.db.WithContext(ctx).Model(&models.Post{}), scope)
		if err := q.Count(&stats.PostCount).Error; err != nil {
			s.logCountFailure("posts", scope, err)
			stats.PostCount = 0
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		n, err := s.countReactions(ctx, scope, &models.Like{})
		if err != nil {
			s.logCountFailure("likes", scope, err)
			n = 0
		}
		stats.LikeCount = n
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		n, err := s.countReactions(ctx, scope, &models.Comment{})
		if err != nil {
			s.logCountFailure("comments", scope, err)
			n = 0
		}
		stats.CommentCount = n
	}()

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return AggregateStats{}, err
	}
	return stats, nil
}

// countReactions counts Like or Comment rows within the scope. Under owner
// scope the owned post-id set is resolved first; an empty set short-circuits
// to 0 so we never issue an IN query over an unconstrained set.
func (s *Service) countReactions(ctx context.Context, scope AccessScope, model interface{}) (int64, error) {
	var count int64

	if scope.Admin {
		err := s.db.WithContext(ctx).Model(model).Count(&count).Error
		return count, err
	}

	postIDs, err := s.ownedPostIDs(ctx, scope.ActorID)
	if err != nil {
		return 0, err
	}
	if len(postIDs) == 0 {
		return 0, nil
	}

	err = s.db.WithContext(ctx).Model(model).
		Where("post_id IN ?", postIDs).
		Count(&count).Error
	return count, err
}

// ownedPostIDs resolves the set of post ids owned by the actor
func (s *Service) ownedPostIDs(ctx context.Context, actorID string) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("user_id = ?", actorID).
		Pluck("id", &ids).Error
	return ids, err
}

func (s *Service) logCountFailure(table string, scope AccessScope, err error) {
	metrics.Get().StatsCountFailures.WithLabelValues(table).Inc()
	s.log.Warn("stats count failed, reporting 0",
		zap.String("table", table),
		zap.String("actor_id", scope.ActorID),
		zap.Bool("admin", scope.Admin),
		zap.Error(err),
	)
}
