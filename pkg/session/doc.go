// Package session is the platform's thin session layer: stateless signed
// session tokens plus a prefix-based route guard.
//
// Tokens are compact HMAC-SHA256 tokens carrying user ID, role, account
// status, and a per-login session ID. Verification is purely local; no
// session store is consulted on the request path.
//
// The Guard maps path prefixes to allowed roles. The longest matching
// prefix decides, and unmatched paths are public. The guard runs after
// the tenant middleware and matches against slug-stripped paths, so one
// rule set covers subdomain and path routed requests alike.
package session
