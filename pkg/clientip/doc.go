// Package clientip extracts the originating client IP address from HTTP
// requests behind reverse proxies and CDNs, and carries it through the
// request context.
package clientip
