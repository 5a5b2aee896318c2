package auth

import "errors"

// Sentinel kinds for identity errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUnknownUser        = errors.New("unknown user")
	ErrInvalidToken       = errors.New("invalid token")
)
