package handlers

import (
	"errors"
	"net/http"

	"github.com/codecrafts/backend/internal/auth"
	"github.com/codecrafts/backend/internal/logger"
	"github.com/codecrafts/backend/internal/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestMagicLink sends a single-use sign-in link to the given email.
// The response never reveals whether the address was already registered.
func (h *Handlers) RequestMagicLink(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_email"})
		return
	}

	if err := h.auth.RequestMagicLink(c.Request.Context(), req.Email); err != nil {
		logger.ErrorWithFields("failed to issue magic link", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "magic_link_failed"})
		return
	}

	metrics.Get().MagicLinksSentTotal.Inc()
	c.JSON(http.StatusOK, gin.H{
		"status":  "sent",
		"message": "Check your email for a sign-in link",
	})
}

// VerifyMagicLink exchanges a magic-link token for a JWT session
func (h *Handlers) VerifyMagicLink(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		var req struct {
			Token string `json:"token" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing_token"})
			return
		}
		token = req.Token
	}

	resp, err := h.auth.RedeemMagicLink(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_or_expired_token"})
			return
		}
		logger.ErrorWithFields("failed to redeem magic link", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "verification_failed"})
		return
	}

	logger.Log.Info("user signed in",
		zap.String("user_id", resp.User.ID),
	)
	c.JSON(http.StatusOK, resp)
}

// GetMe returns the authenticated user's profile
func (h *Handlers) GetMe(c *gin.Context) {
	user, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
