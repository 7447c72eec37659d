package handlers

import (
	"github.com/codecrafts/backend/internal/analytics"
	"github.com/codecrafts/backend/internal/auth"
	"github.com/codecrafts/backend/internal/storage"
	"github.com/codecrafts/backend/internal/views"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	analytics *analytics.Service
	auth      *auth.Service
	uploader  storage.Uploader
	views     *views.Tracker
}

// NewHandlers creates a new handlers instance
func NewHandlers(analyticsService *analytics.Service, authService *auth.Service) *Handlers {
	return &Handlers{
		analytics: analyticsService,
		auth:      authService,
	}
}

// SetUploader sets the media storage backend
func (h *Handlers) SetUploader(uploader storage.Uploader) {
	h.uploader = uploader
}

// SetViewTracker sets the view ingestion tracker
func (h *Handlers) SetViewTracker(tracker *views.Tracker) {
	h.views = tracker
}
