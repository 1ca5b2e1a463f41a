package service

import (
	"context"
	"time"

	"github.com/lumichat/auth-service/internal/model"
)

// The services depend on narrow store interfaces instead of the concrete
// repositories so tests can substitute in-memory fakes.  The MySQL
// implementations live in internal/repository.

// UserStore persists account records.
type UserStore interface {
	CreateWithPhone(ctx context.Context, phone string) (uint64, error)
	GetByPhone(ctx context.Context, phone string) (*model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	SetPasswordHash(ctx context.Context, id uint64, hash string) error
	SetRole(ctx context.Context, id uint64, role model.Role) error
	SetSuspended(ctx context.Context, id uint64, suspended bool, reason string) error
	Delete(ctx context.Context, id uint64) error
}

// CodeStore persists one-time verification codes.
type CodeStore interface {
	Issue(ctx context.Context, phone string, userID *uint64, ttl time.Duration) (string, error)
	Claim(ctx context.Context, phone, code string) (bool, error)
	RecentCount(ctx context.Context, phone string, window time.Duration) (int, error)
	Cleanup(ctx context.Context) (int64, error)
}

// TokenStore persists issued refresh tokens.
type TokenStore interface {
	Store(ctx context.Context, userID uint64, token string, exp time.Time) error
	FindValid(ctx context.Context, token string) (*model.RefreshToken, *model.User, error)
	Revoke(ctx context.Context, token string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
	Cleanup(ctx context.Context) (int64, error)
}
