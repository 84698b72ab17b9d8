package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/quicknotes/quicknotes-go/internal/crypto"
	"github.com/quicknotes/quicknotes-go/internal/model"
	"github.com/quicknotes/quicknotes-go/internal/repository"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// responses cannot be used to enumerate registered accounts.
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
)

// UserStore is the persistence contract AuthService needs for users.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// RefreshTokenStore is the persistence contract for server-side refresh
// tokens. Rotate must consume the old token and store the new one
// atomically, returning repository.ErrTokenNotFound when the old token was
// already consumed.
type RefreshTokenStore interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	Find(ctx context.Context, token string) (*model.RefreshToken, error)
	Rotate(ctx context.Context, oldToken string, next *model.RefreshToken) error
	DeleteExpired(ctx context.Context, userID int64) error
}

// AuthService handles registration, login and refresh-token rotation.
type AuthService struct {
	users  UserStore
	tokens RefreshTokenStore

	jwtSecret  string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, tokens RefreshTokenStore, secret string, accessTTL, refreshTTL time.Duration) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		jwtSecret:  secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Register creates a new user account and signs it in, returning a full
// token pair.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error) {
	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return model.AuthResponse{}, err
	}

	user := &model.User{
		Email:        normalizeEmail(req.Email),
		PasswordHash: hash,
		FullName:     strings.TrimSpace(req.FullName),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.AuthResponse{}, ErrEmailTaken
		}
		return model.AuthResponse{}, err
	}

	return s.issueTokens(ctx, user)
}

// Login verifies credentials and returns a token pair.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.AuthResponse{}, ErrInvalidCredentials
		}
		return model.AuthResponse{}, err
	}

	match, err := crypto.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return model.AuthResponse{}, err
	}
	if !match {
		return model.AuthResponse{}, ErrInvalidCredentials
	}

	return s.issueTokens(ctx, user)
}

// Refresh exchanges a valid refresh token for a new token pair, rotating
// the refresh token. A token value can win this exchange at most once.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (model.AuthResponse, error) {
	stored, err := s.tokens.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return model.AuthResponse{}, ErrInvalidRefreshToken
		}
		return model.AuthResponse{}, err
	}

	if stored.ExpiresAt.Before(time.Now()) {
		// The sweep on issuance would remove it eventually; do it now.
		if err := s.tokens.DeleteExpired(ctx, stored.UserID); err != nil {
			slog.Warn("expired token cleanup failed", "error", err)
		}
		return model.AuthResponse{}, ErrInvalidRefreshToken
	}

	user, err := s.users.GetByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.AuthResponse{}, ErrInvalidRefreshToken
		}
		return model.AuthResponse{}, err
	}

	next, err := s.newRefreshToken(user.ID)
	if err != nil {
		return model.AuthResponse{}, err
	}

	if err := s.tokens.Rotate(ctx, refreshToken, next); err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			// Lost a race against a concurrent refresh of the same value.
			return model.AuthResponse{}, ErrInvalidRefreshToken
		}
		return model.AuthResponse{}, err
	}

	return s.buildResponse(user, next.Token)
}

// issueTokens mints an access token and persists a fresh refresh token,
// sweeping the user's expired tokens as routine housekeeping.
func (s *AuthService) issueTokens(ctx context.Context, user *model.User) (model.AuthResponse, error) {
	if err := s.tokens.DeleteExpired(ctx, user.ID); err != nil {
		slog.Warn("expired token cleanup failed", "user_id", user.ID, "error", err)
	}

	token, err := s.newRefreshToken(user.ID)
	if err != nil {
		return model.AuthResponse{}, err
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return model.AuthResponse{}, err
	}

	return s.buildResponse(user, token.Token)
}

func (s *AuthService) newRefreshToken(userID int64) (*model.RefreshToken, error) {
	value, err := crypto.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}
	return &model.RefreshToken{
		UserID:    userID,
		Token:     value,
		ExpiresAt: time.Now().Add(s.refreshTTL),
	}, nil
}

func (s *AuthService) buildResponse(user *model.User, refreshToken string) (model.AuthResponse, error) {
	access, err := crypto.GenerateAccessToken(user.ID, user.Email, user.FullName, s.jwtSecret, s.accessTTL)
	if err != nil {
		return model.AuthResponse{}, err
	}

	return model.AuthResponse{
		UserID:       user.ID,
		Email:        user.Email,
		FullName:     user.FullName,
		AccessToken:  access,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(s.accessTTL),
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
