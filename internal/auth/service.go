package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/codecrafts/backend/internal/database"
	"github.com/codecrafts/backend/internal/logger"
	"github.com/codecrafts/backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrInvalidToken = errors.New("invalid or expired login token")
	ErrUserNotFound = errors.New("user not found")
)

// Mailer delivers the magic-link email. The SES implementation lives in
// internal/email; tests substitute a recorder.
type Mailer interface {
	SendMagicLink(ctx context.Context, toEmail, linkURL string) error
}

// Service handles passwordless authentication: magic-link issuance and
// redemption, plus JWT session tokens.
type Service struct {
	jwtSecret  []byte
	mailer     Mailer
	appBaseURL string
	linkTTL    time.Duration
}

// NewService creates an authentication service
func NewService(jwtSecret []byte, mailer Mailer, appBaseURL string, linkTTL time.Duration) *Service {
	if linkTTL <= 0 {
		linkTTL = 15 * time.Minute
	}
	return &Service{
		jwtSecret:  jwtSecret,
		mailer:     mailer,
		appBaseURL: appBaseURL,
		linkTTL:    linkTTL,
	}
}

// AuthResponse represents a successful sign-in
type AuthResponse struct {
	Token     string      `json:"token"`
	User      models.User `json:"user"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// RequestMagicLink creates (or finds) the account for an email address,
// stores a single-use login token, and mails the sign-in link. The response
// is identical whether or not the address was already registered.
func (s *Service) RequestMagicLink(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.findOrCreateUser(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to resolve account: %w", err)
	}

	token := models.LoginToken{
		UserID:    user.ID,
		Token:     uuid.New().String() + uuid.New().String(),
		ExpiresAt: time.Now().Add(s.linkTTL),
	}
	if err := database.DB.WithContext(ctx).Create(&token).Error; err != nil {
		return fmt.Errorf("failed to create login token: %w", err)
	}

	linkURL := fmt.Sprintf("%s/auth/verify?token=%s", s.appBaseURL, token.Token)
	if s.mailer == nil {
		logger.Warn("no mailer configured, magic link not sent",
			zap.String("user_id", user.ID),
		)
		return nil
	}

	if err := s.mailer.SendMagicLink(ctx, email, linkURL); err != nil {
		return fmt.Errorf("failed to send magic link: %w", err)
	}
	return nil
}

// RedeemMagicLink exchanges a valid single-use login token for a JWT session.
// The token is consumed and its user loaded inside one transaction, so a
// failure after the lookup rolls back and leaves the link redeemable.
func (s *Service) RedeemMagicLink(ctx context.Context, tokenStr string) (*AuthResponse, error) {
	var user models.User
	err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var token models.LoginToken
		err := tx.
			Where("token = ? AND used = ? AND expires_at > ?", tokenStr, false, time.Now()).
			First(&token).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidToken
			}
			return fmt.Errorf("database error: %w", err)
		}

		if err := tx.Model(&token).Update("used", true).Error; err != nil {
			return fmt.Errorf("failed to consume login token: %w", err)
		}

		if err := tx.Where("id = ?", token.UserID).First(&user).Error; err != nil {
			return ErrUserNotFound
		}

		now := time.Now()
		return tx.Model(&user).Update("last_active_at", &now).Error
	})
	if err != nil {
		return nil, err
	}

	return s.generateAuthResponse(&user)
}

// ValidateToken validates a JWT session token and returns fresh user info
func (s *Service) ValidateToken(tokenString string) (*models.User, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return nil, errors.New("invalid user_id in token")
	}

	// Fetch fresh user data so admin revocation takes effect immediately
	var user models.User
	if err := database.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, ErrUserNotFound
	}

	return &user, nil
}

// findOrCreateUser looks up the account by email, creating one on first
// sign-in. The username derives from the email local part, suffixed when
// already taken.
func (s *Service) findOrCreateUser(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := database.DB.WithContext(ctx).Where("LOWER(email) = ?", email).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	username := strings.SplitN(email, "@", 2)[0]
	var taken int64
	database.DB.WithContext(ctx).Model(&models.User{}).
		Where("LOWER(username) = LOWER(?)", username).
		Count(&taken)
	if taken > 0 {
		username = fmt.Sprintf("%s-%s", username, uuid.New().String()[:8])
	}

	user = models.User{
		Email:    email,
		Username: username,
	}
	if err := database.DB.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}

	logger.Log.Info("created account on first sign-in",
		zap.String("user_id", user.ID),
	)
	return &user, nil
}

// generateAuthResponse creates the JWT session token and auth response
func (s *Service) generateAuthResponse(user *models.User) (*AuthResponse, error) {
	expiresAt := time.Now().Add(24 * time.Hour)

	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"email":    user.Email,
		"username": user.Username,
		"is_admin": user.IsAdmin,
		"exp":      expiresAt.Unix(),
		"iat":      time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &AuthResponse{
		Token:     tokenString,
		User:      *user,
		ExpiresAt: expiresAt,
	}, nil
}
