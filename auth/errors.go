package auth

import "errors"

// Domain errors returned by the Service. Controllers map these onto HTTP
// status codes; the text is deliberately generic so responses never reveal
// which precondition failed.
var (
	// ErrEmailTaken is returned by SignUp when the email already has an account.
	ErrEmailTaken = errors.New("user with this email already exists")

	// ErrInvalidCredentials covers both an unknown email and a wrong password
	// so callers cannot probe which emails are registered.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrForbidden is returned when a refresh is attempted for an account that
	// does not exist.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidToken is returned for a refresh token that does not match the
	// stored session, and by token verification on a bad signature or expiry.
	ErrInvalidToken = errors.New("invalid token")
)
