package session

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/shopgrid/shopgrid/pkg/token"
)

const defaultTTL = 24 * time.Hour

// claims is the wire payload inside a session token.
type claims struct {
	UserID    string `json:"sub"`
	Role      Role   `json:"role"`
	Status    Status `json:"status"`
	SessionID string `json:"sid"`
	ExpiresAt int64  `json:"exp"`
}

// Authenticator issues and verifies compact signed session tokens.
// It holds no server-side state: everything a request needs is in the
// token, so verification is a pure HMAC check.
type Authenticator struct {
	secret string
	ttl    time.Duration
}

// AuthenticatorOption configures an Authenticator.
type AuthenticatorOption func(*Authenticator)

// WithTTL sets the lifetime of issued tokens.
func WithTTL(ttl time.Duration) AuthenticatorOption {
	return func(a *Authenticator) {
		if ttl != 0 {
			a.ttl = ttl
		}
	}
}

// NewAuthenticator creates an Authenticator with the given signing secret.
func NewAuthenticator(secret string, opts ...AuthenticatorOption) (*Authenticator, error) {
	if secret == "" {
		return nil, ErrSecretRequired
	}

	a := &Authenticator{
		secret: secret,
		ttl:    defaultTTL,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Issue mints a session token for the user. The session ID is fresh per
// call so concurrent logins stay distinguishable in audit logs.
func (a *Authenticator) Issue(userID string, role Role, status Status) (string, error) {
	now := time.Now()
	return token.Sign(claims{
		UserID:    userID,
		Role:      role,
		Status:    status,
		SessionID: uuid.NewString(),
		ExpiresAt: now.Add(a.ttl).Unix(),
	}, a.secret)
}

// Verify checks the token signature and expiry and returns the session.
func (a *Authenticator) Verify(tok string) (*Session, error) {
	c, err := token.Parse[claims](tok, a.secret)
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	expiresAt := time.Unix(c.ExpiresAt, 0)
	if time.Now().After(expiresAt) {
		return nil, ErrTokenExpired
	}

	return &Session{
		UserID:    c.UserID,
		Role:      c.Role,
		Status:    c.Status,
		SessionID: c.SessionID,
		ExpiresAt: expiresAt,
	}, nil
}
