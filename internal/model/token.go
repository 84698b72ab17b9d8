package model

import "time"

// RefreshToken represents a persisted refresh token. A token is single use:
// it is deleted when exchanged (rotation) or when it expires.
type RefreshToken struct {
	ID        int64
	UserID    int64
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}
