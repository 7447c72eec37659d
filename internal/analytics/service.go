// Package analytics is the aggregation core behind the dashboard. It turns
// raw post/like/comment/analytics rows into role-scoped derived metrics:
// aggregate totals, a ranked top-posts list, and per-post insights.
//
// Everything here is stateless: every call reads from the store and returns
// a freshly computed value. Caching and staleness are the caller's concern.
package analytics

import (
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultTopPostsLimit bounds the ranked list when the caller does not ask
// for a specific window.
const DefaultTopPostsLimit = 10

// Service computes dashboard metrics over the shared database
type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewService creates an analytics service
func NewService(db *gorm.DB, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, log: log}
}
