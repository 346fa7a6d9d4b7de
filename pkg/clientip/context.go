package clientip

import "context"

type contextKey struct{}

// WithContext stores the client IP in context.
func WithContext(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, contextKey{}, ip)
}

// FromContext retrieves the client IP from context.
// Returns Unknown if the middleware has not run.
func FromContext(ctx context.Context) string {
	if ip, ok := ctx.Value(contextKey{}).(string); ok && ip != "" {
		return ip
	}
	return Unknown
}
