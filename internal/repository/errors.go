// Package repository defines error values that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// services to distinguish between failure scenarios without string
// comparison. For example, ErrPhoneExists indicates that an insert hit
// the unique index on users.phone, which the auth service treats as a
// lost auto-registration race rather than a hard failure.
package repository

import "errors"

// ErrPhoneExists is returned when creating a user collides with the unique
// constraint on the phone column.
var ErrPhoneExists = errors.New("phone already exists")
