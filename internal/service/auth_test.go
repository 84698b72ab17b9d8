package service

import (
	"context"
	"testing"
	"time"

	"github.com/quicknotes/quicknotes-go/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthService() (*AuthService, *memUserStore, *memTokenStore) {
	users := newMemUserStore()
	tokens := newMemTokenStore()
	svc := NewAuthService(users, tokens, "test-secret", 15*time.Minute, 7*24*time.Hour)
	return svc, users, tokens
}

func registerAlice(t *testing.T, svc *AuthService) model.AuthResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), model.RegisterRequest{
		Email:    "alice@example.com",
		Password: "password123",
		FullName: "Alice Doe",
	})
	require.NoError(t, err)
	return resp
}

func TestRegister_ReturnsTokenPair(t *testing.T) {
	svc, _, tokens := newTestAuthService()

	resp := registerAlice(t, svc)

	assert.Equal(t, "alice@example.com", resp.Email)
	assert.Equal(t, "Alice Doe", resp.FullName)
	assert.NotZero(t, resp.UserID)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.True(t, resp.ExpiresAt.After(time.Now()))
	assert.Equal(t, 1, tokens.count())
}

func TestRegister_NormalizesEmail(t *testing.T) {
	svc, users, _ := newTestAuthService()

	resp, err := svc.Register(context.Background(), model.RegisterRequest{
		Email:    "  Alice@Example.COM ",
		Password: "password123",
		FullName: "Alice Doe",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", resp.Email)

	_, err = users.GetByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestAuthService()
	registerAlice(t, svc)

	_, err := svc.Register(context.Background(), model.RegisterRequest{
		Email:    "alice@example.com",
		Password: "otherpassword",
		FullName: "Second Alice",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin_CorrectPassword(t *testing.T) {
	svc, _, _ := newTestAuthService()
	registerAlice(t, svc)

	resp, err := svc.Login(context.Background(), model.LoginRequest{
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _, _ := newTestAuthService()
	registerAlice(t, svc)

	_, err := svc.Login(context.Background(), model.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong-password",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, _, _ := newTestAuthService()

	_, err := svc.Login(context.Background(), model.LoginRequest{
		Email:    "nobody@example.com",
		Password: "password123",
	})
	// Same error as a wrong password: no account enumeration.
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefresh_RotatesToken(t *testing.T) {
	svc, _, tokens := newTestAuthService()
	first := registerAlice(t, svc)

	refreshed, err := svc.Refresh(context.Background(), first.RefreshToken)
	require.NoError(t, err)

	assert.NotEqual(t, first.RefreshToken, refreshed.RefreshToken,
		"refresh must return a different token value")
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Equal(t, 1, tokens.count(), "old token must be consumed")
}

func TestRefresh_SingleUse(t *testing.T) {
	svc, _, _ := newTestAuthService()
	first := registerAlice(t, svc)

	_, err := svc.Refresh(context.Background(), first.RefreshToken)
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), first.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken,
		"a consumed token must never authorize a second refresh")
}

func TestRefresh_UnknownToken(t *testing.T) {
	svc, _, _ := newTestAuthService()

	_, err := svc.Refresh(context.Background(), "never-issued")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRefresh_ExpiredToken(t *testing.T) {
	svc, _, tokens := newTestAuthService()
	resp := registerAlice(t, svc)

	// Force expiry of the stored token.
	tokens.mu.Lock()
	stored := tokens.tokens[resp.RefreshToken]
	stored.ExpiresAt = time.Now().Add(-time.Minute)
	tokens.tokens[resp.RefreshToken] = stored
	tokens.mu.Unlock()

	_, err := svc.Refresh(context.Background(), resp.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	assert.Equal(t, 0, tokens.count(), "expired token must be swept on lookup")
}

func TestLogin_SweepsExpiredTokens(t *testing.T) {
	svc, _, tokens := newTestAuthService()
	resp := registerAlice(t, svc)

	tokens.mu.Lock()
	stored := tokens.tokens[resp.RefreshToken]
	stored.ExpiresAt = time.Now().Add(-time.Minute)
	tokens.tokens[resp.RefreshToken] = stored
	tokens.mu.Unlock()

	next, err := svc.Login(context.Background(), model.LoginRequest{
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, tokens.count(), "login must sweep expired tokens and keep only the new one")
	assert.NotEqual(t, resp.RefreshToken, next.RefreshToken)
}
