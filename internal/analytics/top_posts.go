package analytics

import (
	"context"
	"sync"

	apierrors "github.com/codecrafts/backend/internal/errors"
	"github.com/codecrafts/backend/internal/models"
)

// AnalyticsSnapshot is the stored per-post analytics row as the dashboard
// sees it. A post with no recorded views has no row; it is reported as all
// zeros rather than absent.
type AnalyticsSnapshot struct {
	ViewCount      int64   `json:"view_count"`
	UniqueViewers  int64   `json:"unique_viewers"`
	EngagementRate float64 `json:"engagement_rate"`
}

// TopPost is a post enriched with author identity, stored analytics, and
// like/comment counts recomputed from the raw rows.
type TopPost struct {
	models.Post
	AuthorDisplayName string            `json:"author_display_name"`
	Analytics         AnalyticsSnapshot `json:"analytics"`
	LikeCount         int64             `json:"like_count"`
	CommentCount      int64             `json:"comment_count"`
}

// TopPosts returns the limit most recent posts within the scope, newest
// first (ties on created_at break on id descending, so the order is stable).
// Like and comment counts are folded in from one batch query per relation.
// Zero matching posts yields an empty slice, not an error.
func (s *Service) TopPosts(ctx context.Context, scope AccessScope, limit int) ([]TopPost, error) {
	if limit <= 0 {
		limit = DefaultTopPostsLimit
	}

	var posts []models.Post
	q := applyScope(s.db.WithContext(ctx).Model(&models.Post{}), scope).
		Preload("User").
		Order("created_at DESC, id DESC").
		Limit(limit)
	if err := q.Find(&posts).Error; err != nil {
		return nil, apierrors.LookupFailed("fetching recent posts", err)
	}

	if len(posts) == 0 {
		return []TopPost{}, nil
	}

	postIDs := make([]string, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	analyticsByPost, err := s.analyticsForPosts(ctx, postIDs)
	if err != nil {
		return nil, err
	}

	// The two reaction batches are independent; fetch them concurrently.
	var (
		wg            sync.WaitGroup
		likeCounts    map[string]int64
		commentCounts map[string]int64
		likeErr       error
		commentErr    error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		likeCounts, likeErr = s.countByPost(ctx, &models.Like{}, postIDs)
	}()
	go func() {
		defer wg.Done()
		commentCounts, commentErr = s.countByPost(ctx, &models.Comment{}, postIDs)
	}()
	wg.Wait()

	if likeErr != nil {
		return nil, apierrors.LookupFailed("counting likes", likeErr)
	}
	if commentErr != nil {
		return nil, apierrors.LookupFailed("counting comments", commentErr)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := make([]TopPost, len(posts))
	for i, p := range posts {
		result[i] = TopPost{
			Post:              p,
			AuthorDisplayName: authorLabel(p.User),
			Analytics:         analyticsByPost[p.ID],
			LikeCount:         likeCounts[p.ID],
			CommentCount:      commentCounts[p.ID],
		}
	}
	return result, nil
}

// analyticsForPosts fetches the stored analytics rows for a post-id set.
// Posts without a row simply have no map entry; the zero snapshot applies.
func (s *Service) analyticsForPosts(ctx context.Context, postIDs []string) (map[string]AnalyticsSnapshot, error) {
	var rows []models.PostAnalytics
	err := s.db.WithContext(ctx).
		Where("post_id IN ?", postIDs).
		Find(&rows).Error
	if err != nil {
		return nil, apierrors.LookupFailed("fetching post analytics", err)
	}

	byPost := make(map[string]AnalyticsSnapshot, len(rows))
	for _, r := range rows {
		byPost[r.PostID] = AnalyticsSnapshot{
			ViewCount:      r.ViewCount,
			UniqueViewers:  r.UniqueViewers,
			EngagementRate: r.EngagementRate,
		}
	}
	return byPost, nil
}

// countByPost counts Like or Comment rows grouped by post id, one query for
// the whole batch. Posts with no rows are absent from the map and default
// to 0 at the fold.
func (s *Service) countByPost(ctx context.Context, model interface{}, postIDs []string) (map[string]int64, error) {
	var rows []struct {
		PostID string
		N      int64
	}
	err := s.db.WithContext(ctx).Model(model).
		Select("post_id, COUNT(*) AS n").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.PostID] = r.N
	}
	return counts, nil
}

// authorLabel resolves the display name shown next to a post: display name,
// then username, then a literal Anonymous label.
func authorLabel(u models.User) string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if u.Username != "" {
		return u.Username
	}
	return "Anonymous"
}
