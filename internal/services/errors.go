package services

import "errors"

// Service-level sentinels mapped to HTTP statuses by the handlers.
var (
	// ErrInvalidCredentials is returned for any login failure. It never
	// says whether the account exists.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidOrExpiredCode is returned for any code-verification
	// failure. Wrong code and unknown owner are indistinguishable.
	ErrInvalidOrExpiredCode = errors.New("invalid or expired code")

	// ErrEmailInUse is a specific, actionable registration failure.
	ErrEmailInUse = errors.New("email already in use")
)
