package session

import "errors"

var (
	ErrSecretRequired  = errors.New("secret is required")
	ErrInvalidToken    = errors.New("invalid session token")
	ErrTokenExpired    = errors.New("session token expired")
	ErrNoSession       = errors.New("no session in context")
	ErrSessionInactive = errors.New("session is not active")
)
