package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/lumichat/auth-service/internal/model"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,phone,email,name,password_hash,role,is_suspended,suspended_at,suspended_reason,created_at,updated_at"

// CreateWithPhone inserts a password-less account for the given phone.  This
// is the auto-registration path: role USER, no hash.  A duplicate phone maps
// to ErrPhoneExists.
func (r *UserRepo) CreateWithPhone(ctx context.Context, phone string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (phone, role) VALUES (?,?)",
		phone, string(model.RoleUser))
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrPhoneExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByPhone fetches a user by phone.  Returns (nil, nil) when absent.
func (r *UserRepo) GetByPhone(ctx context.Context, phone string) (*model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE phone=? LIMIT 1", phone)
	return scanUser(row)
}

// GetByID fetches a user by id.  Returns (nil, nil) when absent.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
	return scanUser(row)
}

// SetPasswordHash stores a new bcrypt hash for the user.
func (r *UserRepo) SetPasswordHash(ctx context.Context, id uint64, hash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=?, updated_at=UTC_TIMESTAMP() WHERE id=?", hash, id)
	return err
}

// SetRole changes the user's role.
func (r *UserRepo) SetRole(ctx context.Context, id uint64, role model.Role) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET role=?, updated_at=UTC_TIMESTAMP() WHERE id=?", string(role), id)
	return err
}

// SetSuspended flips the suspension flag.  The reason and suspended_at
// columns are set on suspend and cleared on unsuspend.
func (r *UserRepo) SetSuspended(ctx context.Context, id uint64, suspended bool, reason string) error {
	if suspended {
		_, err := r.DB.ExecContext(ctx,
			"UPDATE users SET is_suspended=1, suspended_at=UTC_TIMESTAMP(), suspended_reason=?, updated_at=UTC_TIMESTAMP() WHERE id=?",
			reason, id)
		return err
	}
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET is_suspended=0, suspended_at=NULL, suspended_reason=NULL, updated_at=UTC_TIMESTAMP() WHERE id=?", id)
	return err
}

// Delete removes the user row.  Business-rule guards (no self delete, no
// ADMIN targets) live in the user admin service, not here.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	return err
}

// scanUser maps a row onto model.User.  Unknown role strings are rejected
// here so that a bad value in storage surfaces as an error instead of
// propagating downstream.
func scanUser(row *sql.Row) (*model.User, error) {
	var (
		u       model.User
		email   sql.NullString
		name    sql.NullString
		hash    sql.NullString
		roleStr string
		suspAt  sql.NullTime
		suspWhy sql.NullString
	)
	err := row.Scan(&u.ID, &u.Phone, &email, &name, &hash, &roleStr,
		&u.IsSuspended, &suspAt, &suspWhy, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	role, err := model.ParseRole(roleStr)
	if err != nil {
		return nil, err
	}
	u.Role = role
	if email.Valid {
		u.Email = &email.String
	}
	if name.Valid {
		u.Name = &name.String
	}
	if hash.Valid {
		u.PasswordHash = &hash.String
	}
	if suspAt.Valid {
		u.SuspendedAt = &suspAt.Time
	}
	if suspWhy.Valid {
		u.SuspendedReason = &suspWhy.String
	}
	return &u, nil
}
