package handlers

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/codecrafts/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// linkMailer captures the sign-in link instead of sending email
type linkMailer struct {
	lastLink string
}

func (m *linkMailer) SendMagicLink(ctx context.Context, toEmail, linkURL string) error {
	m.lastLink = linkURL
	return nil
}

func TestMagicLinkFlow(t *testing.T) {
	router, h, db := setupHandlerTest(t)
	mailer := &linkMailer{}
	h.auth = newAuthServiceWithMailer(mailer)

	w := doRequest(t, router, http.MethodPost, "/api/v1/auth/magic-link", "", map[string]string{
		"email": "Dev@Example.com",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, mailer.lastLink)

	// The account was created with a lowercased email
	var user models.User
	require.NoError(t, db.Where("email = ?", "dev@example.com").First(&user).Error)
	assert.Equal(t, "dev", user.Username)

	// Redeem the token from the mailed link
	link, err := url.Parse(mailer.lastLink)
	require.NoError(t, err)
	token := link.Query().Get("token")
	require.NotEmpty(t, token)

	w = doRequest(t, router, http.MethodGet, "/api/v1/auth/verify?token="+token, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.NotEmpty(t, body["token"], "JWT session issued")

	// The link is single-use
	w = doRequest(t, router, http.MethodGet, "/api/v1/auth/verify?token="+token, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_or_expired_token")
}

func TestRequestMagicLink_InvalidEmail(t *testing.T) {
	router, _, _ := setupHandlerTest(t)

	w := doRequest(t, router, http.MethodPost, "/api/v1/auth/magic-link", "", map[string]string{
		"email": "not-an-email",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerifyMagicLink_GarbageToken(t *testing.T) {
	router, _, _ := setupHandlerTest(t)

	w := doRequest(t, router, http.MethodGet, "/api/v1/auth/verify?token=garbage", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetMe(t *testing.T) {
	router, _, db := setupHandlerTest(t)
	seedUser(t, db, "u1", "alice", false)

	w := doRequest(t, router, http.MethodGet, "/api/v1/auth/me", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice")

	w = doRequest(t, router, http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
