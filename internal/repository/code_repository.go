package repository

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"math/big"
	"time"
)

// CodeRepo persists one-time SMS verification codes.
type CodeRepo struct{ DB *sql.DB }

func NewCodeRepo(db *sql.DB) *CodeRepo { return &CodeRepo{DB: db} }

// Issue generates a uniformly random 6-digit code (leading zeros allowed)
// and inserts a fresh row for the phone.  Earlier unclaimed codes for the
// same phone are left untouched; Claim always targets the newest valid row.
func (r *CodeRepo) Issue(ctx context.Context, phone string, userID *uint64, ttl time.Duration) (string, error) {
	code, err := randomCode()
	if err != nil {
		return "", err
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO verification_codes (phone, code, expires_at, is_used, user_id) VALUES (?,?,?,0,?)",
		phone, code, time.Now().UTC().Add(ttl), userID)
	if err != nil {
		return "", err
	}
	return code, nil
}

// Claim marks the most recent matching unused, unexpired code as used and
// reports whether a row was claimed.  The conditional UPDATE with an
// affected-row check is what makes concurrent duplicate submissions safe:
// at most one of two simultaneous claims can flip is_used.
func (r *CodeRepo) Claim(ctx context.Context, phone, code string) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE verification_codes SET is_used=1
		 WHERE phone=? AND code=? AND is_used=0 AND expires_at>UTC_TIMESTAMP()
		 ORDER BY created_at DESC LIMIT 1`,
		phone, code)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RecentCount returns how many codes were issued for the phone within the
// rolling window, used to cap send-code requests.
func (r *CodeRepo) RecentCount(ctx context.Context, phone string, window time.Duration) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM verification_codes WHERE phone=? AND created_at>?",
		phone, time.Now().UTC().Add(-window)).Scan(&n)
	return n, err
}

// Cleanup deletes used or expired rows and returns how many were removed.
func (r *CodeRepo) Cleanup(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM verification_codes WHERE is_used=1 OR expires_at<=UTC_TIMESTAMP()")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// randomCode draws a uniform value in [0, 999999] from crypto/rand and
// left-pads to 6 digits.
func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
