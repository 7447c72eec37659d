package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post types
const (
	PostTypeMeme = "meme"
	PostTypeCode = "code"
)

// User represents a Code Crafts account
type User struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	Email       string `gorm:"uniqueIndex;not null" json:"email"`
	Username    string `gorm:"uniqueIndex;not null" json:"username"`
	DisplayName string `json:"display_name"`
	Bio         string `gorm:"type:text" json:"bio"`
	AvatarURL   string `json:"avatar_url"`

	// Platform administrator flag - grants full dashboard visibility
	IsAdmin bool `gorm:"default:false" json:"is_admin"`

	LastActiveAt *time.Time `json:"last_active_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns a UUID so the model works on both Postgres and SQLite
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

// Post represents a shared meme (image/video) or code snippet
type Post struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"not null;index" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Type  string `gorm:"not null;index" json:"type"` // meme, code
	Title string `gorm:"not null" json:"title"`

	// Meme posts
	ContentURL string `json:"content_url,omitempty"`

	// Code posts
	CodeSnippet  string `gorm:"type:text" json:"code_snippet,omitempty"`
	CodeLanguage string `json:"code_language,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// Like is one row per (post, user) pair. A post's like count is the number
// of rows pointing at it - there is no cached counter on Post.
type Like struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	PostID string `gorm:"not null;index;uniqueIndex:idx_likes_post_user" json:"post_id"`
	UserID string `gorm:"not null;uniqueIndex:idx_likes_post_user" json:"user_id"`

	CreatedAt time.Time `json:"created_at"`
}

func (l *Like) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}

// Comment on a post
type Comment struct {
	ID      string `gorm:"primaryKey;type:uuid" json:"id"`
	PostID  string `gorm:"not null;index" json:"post_id"`
	UserID  string `gorm:"not null;index" json:"user_id"`
	User    User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Content string `gorm:"type:text;not null" json:"content"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// PostAnalytics is the zero-or-one stored analytics row per post, maintained
// by the view tracking service. EngagementRate here is a snapshot taken at
// view-ingest time; the dashboard recomputes a fresh figure for display and
// never reconciles the two.
type PostAnalytics struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	PostID string `gorm:"not null;uniqueIndex" json:"post_id"`

	ViewCount      int64   `gorm:"default:0" json:"view_count"`
	UniqueViewers  int64   `gorm:"default:0" json:"unique_viewers"`
	EngagementRate float64 `gorm:"default:0" json:"engagement_rate"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *PostAnalytics) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

// LoginToken is a single-use magic-link token for passwordless sign-in
type LoginToken struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string    `gorm:"not null;index" json:"user_id"`
	Token     string    `gorm:"uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	Used      bool      `gorm:"default:false" json:"used"`

	CreatedAt time.Time `json:"created_at"`
}

func (t *LoginToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}
