package session

import "time"

// Role is the user's role within their store.
type Role string

const (
	// RoleOwner owns a store and controls its settings and billing.
	RoleOwner Role = "owner"
	// RoleStaff manages catalog and orders for a store.
	RoleStaff Role = "staff"
	// RoleCustomer is a storefront shopper.
	RoleCustomer Role = "customer"
	// RoleAdmin is a platform operator.
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleStaff, RoleCustomer, RoleAdmin:
		return true
	}
	return false
}

// Status is the account state carried in the session.
type Status string

const (
	StatusActive  Status = "active"
	StatusBlocked Status = "blocked"
)

// Session is a verified user identity extracted from a session token.
type Session struct {
	UserID    string
	Role      Role
	Status    Status
	SessionID string
	ExpiresAt time.Time
}

// Active reports whether the account behind the session is usable.
func (s *Session) Active() bool {
	return s != nil && s.Status == StatusActive
}
