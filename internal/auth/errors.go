package auth

import "errors"

// Failure taxonomy of the auth service.  Handlers match these with
// errors.Is and map each to a fixed HTTP status and code string; the
// wrapped cause stays server-side for logs and is never serialized.
var (
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password so that callers cannot probe which emails are registered.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInactiveAccount rejects login for deactivated users regardless of
	// credential validity.
	ErrInactiveAccount = errors.New("account is inactive")

	// ErrInvalidToken covers every access-token failure: expired,
	// malformed, bad signature, or user missing/deactivated since issuance.
	ErrInvalidToken = errors.New("invalid token")

	// ErrInvalidRefreshToken is the same collapsing for the refresh path.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	ErrDuplicateEmail         = errors.New("email already in use")
	ErrUserNotFound           = errors.New("user not found")
	ErrInvalidCurrentPassword = errors.New("current password is invalid")
)
