// Package seed fills the development database with plausible data: accounts,
// meme and code posts, reactions, and analytics rows.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/codecrafts/backend/internal/analytics"
	"github.com/codecrafts/backend/internal/logger"
	"github.com/codecrafts/backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	_ = gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{db: db}
}

// SeedDev seeds the development database with realistic data
func (s *Seeder) SeedDev() error {
	logger.Log.Info("creating users")
	users, err := s.seedUsers(50)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	logger.Log.Info("creating posts")
	posts, err := s.seedPosts(users, 200)
	if err != nil {
		return fmt.Errorf("failed to seed posts: %w", err)
	}

	logger.Log.Info("creating likes")
	if err := s.seedLikes(users, posts, 800); err != nil {
		return fmt.Errorf("failed to seed likes: %w", err)
	}

	logger.Log.Info("creating comments")
	if err := s.seedComments(users, posts, 400); err != nil {
		return fmt.Errorf("failed to seed comments: %w", err)
	}

	logger.Log.Info("creating analytics rows")
	if err := s.seedAnalytics(posts); err != nil {
		return fmt.Errorf("failed to seed analytics: %w", err)
	}

	logger.Log.Info("seed complete",
		zap.Int("users", len(users)),
		zap.Int("posts", len(posts)),
	)
	return nil
}

// Clean removes all seeded rows. Destructive; dev databases only.
func (s *Seeder) Clean() error {
	// Reverse dependency order
	for _, model := range []interface{}{
		&models.PostAnalytics{},
		&models.Comment{},
		&models.Like{},
		&models.LoginToken{},
		&models.Post{},
		&models.User{},
	} {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Unscoped().Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedUsers(count int) ([]models.User, error) {
	users := make([]models.User, 0, count)

	// One known admin account for dashboard testing
	admin := models.User{
		Email:       "admin@codecrafts.dev",
		Username:    "admin",
		DisplayName: "Site Admin",
		IsAdmin:     true,
	}
	if err := s.db.Where("email = ?", admin.Email).FirstOrCreate(&admin).Error; err != nil {
		return nil, err
	}
	users = append(users, admin)

	for i := 0; i < count; i++ {
		user := models.User{
			Email:       strings.ToLower(gofakeit.Email()),
			Username:    fmt.Sprintf("%s%d", strings.ToLower(gofakeit.Username()), i),
			DisplayName: gofakeit.Name(),
			Bio:         gofakeit.HackerPhrase(),
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

var snippetTemplates = []struct {
	language string
	code     string
}{
	{"go", "func main() {\n\tdefer recover()\n\tpanic(\"it's fine\")\n}"},
	{"python", "def fix_bug():\n    return fix_bug()  # job security"},
	{"javascript", "const works = true;\n// do not touch\nif (!works) throw new Error('??');"},
	{"sql", "SELECT * FROM problems WHERE solution IS NULL; -- all of them"},
	{"rust", "fn main() {\n    let _ = std::mem::drop; // borrow checker appeasement\n}"},
	{"bash", "alias deploy='git push --force && say good luck'"},
}

func (s *Seeder) seedPosts(users []models.User, count int) ([]models.Post, error) {
	posts := make([]models.Post, 0, count)

	base := time.Now().Add(-60 * 24 * time.Hour)
	for i := 0; i < count; i++ {
		author := users[rand.Intn(len(users))]
		post := models.Post{
			UserID:    author.ID,
			Title:     gofakeit.HackerPhrase(),
			CreatedAt: base.Add(time.Duration(rand.Intn(60*24)) * time.Hour),
		}

		if rand.Intn(2) == 0 {
			post.Type = models.PostTypeMeme
			post.ContentURL = fmt.Sprintf("https://cdn.codecrafts.dev/seed/meme-%d.png", i)
		} else {
			tmpl := snippetTemplates[rand.Intn(len(snippetTemplates))]
			post.Type = models.PostTypeCode
			post.CodeSnippet = tmpl.code
			post.CodeLanguage = tmpl.language
		}

		if err := s.db.Create(&post).Error; err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (s *Seeder) seedLikes(users []models.User, posts []models.Post, count int) error {
	seen := make(map[string]bool, count)
	for i := 0; i < count; i++ {
		post := posts[rand.Intn(len(posts))]
		user := users[rand.Intn(len(users))]
		key := post.ID + "|" + user.ID
		if seen[key] {
			continue
		}
		seen[key] = true

		like := models.Like{PostID: post.ID, UserID: user.ID}
		if err := s.db.Create(&like).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedComments(users []models.User, posts []models.Post, count int) error {
	for i := 0; i < count; i++ {
		comment := models.Comment{
			PostID:  posts[rand.Intn(len(posts))].ID,
			UserID:  users[rand.Intn(len(users))].ID,
			Content: gofakeit.Sentence(8),
		}
		if err := s.db.Create(&comment).Error; err != nil {
			return err
		}
	}
	return nil
}

// seedAnalytics writes a stored analytics row for roughly two thirds of
// posts; the rest stay rowless so the zero-snapshot path gets exercised.
func (s *Seeder) seedAnalytics(posts []models.Post) error {
	for _, post := range posts {
		if rand.Intn(3) == 0 {
			continue
		}

		var likes, comments int64
		if err := s.db.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&likes).Error; err != nil {
			return err
		}
		if err := s.db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&comments).Error; err != nil {
			return err
		}

		views := likes + comments + int64(rand.Intn(500))
		row := models.PostAnalytics{
			PostID:         post.ID,
			ViewCount:      views,
			UniqueViewers:  views - int64(rand.Intn(int(views/2+1))),
			EngagementRate: analytics.EngagementRate(likes, comments, views),
		}
		if err := s.db.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}
