package service

import "errors"

// Error taxonomy for the auth and user-admin services.  Handlers match these
// structurally with errors.Is and translate them to HTTP statuses; the
// messages below are safe to return to clients verbatim.  Sub-cases are
// deliberately collapsed: an absent, already-used and expired code all read
// the same, and an unknown phone reads the same as a wrong password, so a
// caller cannot enumerate accounts or probe why a credential failed.
var (
	ErrValidation         = errors.New("invalid request")
	ErrRateLimited        = errors.New("too many verification codes requested, try again later")
	ErrCodeInvalid        = errors.New("invalid or expired verification code")
	ErrInvalidCredentials = errors.New("invalid phone or password")
	ErrPasswordNotSet     = errors.New("no password set for this account, use code login")
	ErrUserNotFound       = errors.New("user not found")
	ErrTokenInvalid       = errors.New("invalid or expired refresh token")
	ErrTokenRevoked       = errors.New("refresh token revoked or unknown")
	ErrSuspended          = errors.New("account suspended, contact support")
	ErrForbidden          = errors.New("forbidden")
	ErrSMSDispatch        = errors.New("failed to send verification code")
)
