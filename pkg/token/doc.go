// Package token provides compact signed tokens: a JSON payload with an
// 8-byte truncated HMAC-SHA256 signature, rendered as
// base64url(payload).base64url(signature).
//
// The truncated signature keeps tokens short enough for headers and
// cookies while resisting forgery for short-lived credentials such as
// session tokens. It is not suitable for long-lived or high-value
// grants.
package token
