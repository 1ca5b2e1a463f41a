package model

import "time"

// RefreshToken models an entry in the `refresh_tokens` table.  The token
// column holds the signed JWT string itself and carries a unique index; a
// token is usable for refresh only while is_revoked is false, expires_at is
// in the future and the owning user still exists.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  Token     – the signed refresh JWT string.
//  ExpiresAt – expiration timestamp mirrored from the JWT exp claim.
//  IsRevoked – whether the token has been revoked.
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64    // refresh_tokens.id
	UserID    uint64    // refresh_tokens.user_id
	Token     string    // refresh_tokens.token
	ExpiresAt time.Time // refresh_tokens.expires_at
	IsRevoked bool      // refresh_tokens.is_revoked
	CreatedAt time.Time // refresh_tokens.created_at
}
