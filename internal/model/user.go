package model

import (
	"fmt"
	"time"
)

// Role is the closed set of account roles.  Role values are stored as
// strings in the `users` table; ParseRole rejects anything outside the set
// at the scan boundary instead of letting unknown values flow through.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleModerator Role = "MODERATOR"
	RoleUser      Role = "USER"
	RoleGuest     Role = "GUEST"
)

// ParseRole converts a stored string into a Role, failing on unknown values.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleModerator, RoleUser, RoleGuest:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// User represents an account record as stored in the `users` table.  Each
// field corresponds to a column.  The json tags are omitted because these
// structs are used internally by the repository layer; handlers define
// separate response types with a redacted projection.
//
// Fields:
//  ID              – primary key identifier of the user.
//  Phone           – unique phone number (domestic mobile format).
//  Email           – optional email address.
//  Name            – optional display name.
//  PasswordHash    – bcrypt hashed password; nil means OTP-only account.
//  Role            – account role (ADMIN, MODERATOR, USER, GUEST).
//  IsSuspended     – whether the account is suspended.
//  SuspendedAt     – when suspension took effect (null if never suspended).
//  SuspendedReason – operator-supplied reason for the suspension.
//  CreatedAt       – timestamp of creation.
//  UpdatedAt       – timestamp of last update.
type User struct {
	ID              uint64     // users.id
	Phone           string     // users.phone
	Email           *string    // users.email (nullable)
	Name            *string    // users.name (nullable)
	PasswordHash    *string    // users.password_hash (nullable)
	Role            Role       // users.role
	IsSuspended     bool       // users.is_suspended
	SuspendedAt     *time.Time // users.suspended_at (nullable)
	SuspendedReason *string    // users.suspended_reason (nullable)
	CreatedAt       time.Time  // users.created_at
	UpdatedAt       time.Time  // users.updated_at
}

// DisplayName returns the user's name or an empty string for accounts that
// never set one.
func (u *User) DisplayName() string {
	if u.Name != nil {
		return *u.Name
	}
	return ""
}
