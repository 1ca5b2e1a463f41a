package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/lumichat/auth-service/internal/model"
)

// TokenRepo persists/validates refresh tokens.  The token column stores the
// signed JWT string under a unique index.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Store inserts a refresh token row.
func (r *TokenRepo) Store(ctx context.Context, userID uint64, token string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token, expires_at, is_revoked) VALUES (?,?,?,0)",
		userID, token, exp)
	return err
}

// FindValid returns the token row joined with its owning user, or nil when
// the token is absent, revoked or expired in storage.  This is the second,
// persisted expiry check: a token can be revoked here long before its JWT
// exp claim runs out.
func (r *TokenRepo) FindValid(ctx context.Context, token string) (*model.RefreshToken, *model.User, error) {
	var (
		rt        model.RefreshToken
		isRevoked bool
		userID    uint64
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, token, expires_at, is_revoked, created_at FROM refresh_tokens WHERE token=? LIMIT 1",
		token).Scan(&rt.ID, &userID, &rt.Token, &rt.ExpiresAt, &isRevoked, &rt.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	if isRevoked || time.Now().UTC().After(rt.ExpiresAt) {
		return nil, nil, nil
	}
	rt.UserID = userID
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", userID)
	u, err := scanUser(row)
	if err != nil {
		return nil, nil, err
	}
	if u == nil {
		// orphaned token; treat like revoked
		return nil, nil, nil
	}
	return &rt, u, nil
}

// Revoke marks a token as revoked.  Idempotent: a second call, or a call
// with a token that was never stored, is a no-op and not an error, so
// logout never fails visibly on a garbage token.
func (r *TokenRepo) Revoke(ctx context.Context, token string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET is_revoked=1 WHERE token=? AND is_revoked=0", token)
	return err
}

// RevokeAllForUser revokes all of a user's active tokens.  Used by
// single-device-mode login and by role/suspension security actions.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET is_revoked=1 WHERE user_id=? AND is_revoked=0", userID)
	return err
}

// Cleanup deletes revoked or expired rows and returns how many were removed.
func (r *TokenRepo) Cleanup(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE is_revoked=1 OR expires_at<=UTC_TIMESTAMP()")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
