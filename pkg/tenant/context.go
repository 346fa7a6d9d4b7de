package tenant

import (
	"context"
	"log/slog"
	"sync"
)

type contextKey struct{}

// WithContext adds a resolved tenant context to the request context.
func WithContext(ctx context.Context, tc *Context) context.Context {
	return context.WithValue(ctx, contextKey{}, tc)
}

// FromContext retrieves the tenant context. Returns nil, false if the
// middleware has not run.
func FromContext(ctx context.Context) (*Context, bool) {
	tc, ok := ctx.Value(contextKey{}).(*Context)
	return tc, ok
}

// IDFromContext retrieves just the tenant ID, defaulting to
// DefaultTenantID when no tenant context is present.
func IDFromContext(ctx context.Context) string {
	if tc, ok := FromContext(ctx); ok && tc != nil {
		return tc.TenantID
	}
	return DefaultTenantID
}

// MustFromContext retrieves the tenant context and panics if absent.
// Use only in handlers mounted behind the tenant middleware.
func MustFromContext(ctx context.Context) *Context {
	tc, ok := FromContext(ctx)
	if !ok || tc == nil {
		panic("tenant: no tenant context in request context")
	}
	return tc
}

// LoggerExtractor returns a logger context extractor injecting tenant_id
// into log records.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if tc, ok := FromContext(ctx); ok && tc != nil {
			return slog.String("tenant_id", tc.TenantID), true
		}
		return slog.Attr{}, false
	}
}

// resolutionScope memoizes resolution results within a single request so
// multiple consumers trigger at most one config fetch. It lives on the
// request context and dies with it, so nothing leaks across requests.
type resolutionScope struct {
	mu   sync.Mutex
	byID map[string]*Context
}

type scopeKey struct{}

// WithResolutionScope installs a per-request memoization scope. The
// middleware calls this once at the top of every request.
func WithResolutionScope(ctx context.Context) context.Context {
	if _, ok := ctx.Value(scopeKey{}).(*resolutionScope); ok {
		return ctx
	}
	return context.WithValue(ctx, scopeKey{}, &resolutionScope{byID: make(map[string]*Context)})
}

func scopeFrom(ctx context.Context) *resolutionScope {
	s, _ := ctx.Value(scopeKey{}).(*resolutionScope)
	return s
}

func (s *resolutionScope) get(id string) (*Context, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tc, ok := s.byID[id]
	return tc, ok
}

func (s *resolutionScope) set(id string, tc *Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[id] = tc
}
