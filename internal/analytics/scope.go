package analytics

import (
	"context"

	"github.com/codecrafts/backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AccessScope is the visibility boundary applied to every dashboard query.
// Administrators see all rows; everyone else sees only rows reachable from
// their own posts.
type AccessScope struct {
	ActorID string
	Admin   bool
}

// AdminScope returns administrator-level visibility
func AdminScope(actorID string) AccessScope {
	return AccessScope{ActorID: actorID, Admin: true}
}

// OwnerScope returns visibility limited to the actor's own content
func OwnerScope(actorID string) AccessScope {
	return AccessScope{ActorID: actorID}
}

// ResolveScope determines the actor's visibility from their profile row.
// It never returns an error: a failed or missing lookup degrades to owner
// scope, so an actor can never gain elevated visibility through a fault.
func (s *Service) ResolveScope(ctx context.Context, actorID string) AccessScope {
	var user models.User
	err := s.db.WithContext(ctx).
		Select("id", "is_admin").
		Where("id = ?", actorID).
		First(&user).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			s.log.Warn("scope resolution failed, defaulting to owner scope",
				zap.String("actor_id", actorID),
				zap.Error(err),
			)
		}
		return OwnerScope(actorID)
	}

	if user.IsAdmin {
		return AdminScope(actorID)
	}
	return OwnerScope(actorID)
}

// applyScope narrows a posts query to the scope's owner. Administrators see
// everything, so the query passes through untouched. Centralizing the filter
// here keeps scoping testable apart from any one query.
func applyScope(tx *gorm.DB, scope AccessScope) *gorm.DB {
	if scope.Admin {
		return tx
	}
	return tx.Where("user_id = ?", scope.ActorID)
}
