package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/quicknotes/quicknotes-go/internal/model"
)

var ErrTokenNotFound = errors.New("refresh token not found")

// RefreshTokenRepository handles persisted refresh tokens.
type RefreshTokenRepository struct {
	db *sql.DB
}

// NewRefreshTokenRepository creates a new RefreshTokenRepository.
func NewRefreshTokenRepository(db *sql.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

// Create stores a new refresh token.
func (r *RefreshTokenRepository) Create(ctx context.Context, token *model.RefreshToken) error {
	return createToken(ctx, r.db, token)
}

// Find returns the stored refresh token for the given opaque value, or
// ErrTokenNotFound.
func (r *RefreshTokenRepository) Find(ctx context.Context, token string) (*model.RefreshToken, error) {
	query := `SELECT id, user_id, token, expires_at, created_at FROM refresh_tokens WHERE token = ?`

	rt := &model.RefreshToken{}
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&rt.ID, &rt.UserID, &rt.Token, &rt.ExpiresAt, &rt.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}

	return rt, nil
}

// Rotate atomically consumes oldToken and stores next in a single
// transaction. The conditional delete's affected-row count is the arbiter
// for the single-use invariant: when two refreshes race on the same value,
// only one delete reports a row and the other caller gets ErrTokenNotFound.
func (r *RefreshTokenRepository) Rotate(ctx context.Context, oldToken string, next *model.RefreshToken) error {
	return WithTx(ctx, r.db, func(ctx context.Context, tx DBTX) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token = ?`, oldToken)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrTokenNotFound
		}
		return createToken(ctx, tx, next)
	})
}

// DeleteExpired removes all expired refresh tokens belonging to a user.
// Routine housekeeping on token issuance.
func (r *RefreshTokenRepository) DeleteExpired(ctx context.Context, userID int64) error {
	query := `DELETE FROM refresh_tokens WHERE user_id = ? AND expires_at < NOW()`
	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}

func createToken(ctx context.Context, db DBTX, token *model.RefreshToken) error {
	query := `INSERT INTO refresh_tokens (user_id, token, expires_at) VALUES (?, ?, ?)`

	result, err := db.ExecContext(ctx, query, token.UserID, token.Token, token.ExpiresAt)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	token.ID = id
	return nil
}
