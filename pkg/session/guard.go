package session

import (
	"encoding/json"
	"net/http"
	"slices"
	"strings"

	"github.com/shopgrid/shopgrid/pkg/tenant"
)

// CookieName is the session cookie fallback when no Authorization header
// is present.
const CookieName = "shopgrid_session"

// Rule binds a path prefix to the roles allowed beneath it. An empty
// Roles slice admits any authenticated user.
type Rule struct {
	Prefix string
	Roles  []Role
}

// Guard enforces role rules on request paths. Rules match on path prefix;
// when several rules match, the longest prefix wins, so a specific
// "/dashboard/settings" rule overrides a general "/dashboard" one
// regardless of registration order. Paths matching no rule pass through
// unauthenticated.
type Guard struct {
	auth  *Authenticator
	rules []Rule
}

// NewGuard creates a route guard over the given rules.
func NewGuard(auth *Authenticator, rules ...Rule) *Guard {
	if auth == nil {
		panic("session.NewGuard: authenticator is required")
	}
	return &Guard{auth: auth, rules: rules}
}

// Middleware authenticates and authorizes requests against the guard's
// rules. It expects to run after the tenant middleware so the tenant slug
// prefix can be stripped before rule matching.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rule, ok := g.match(guardPath(r))
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		tok := extractToken(r)
		if tok == "" {
			writeDenied(w, http.StatusUnauthorized, "authentication_required")
			return
		}

		sess, err := g.auth.Verify(tok)
		if err != nil {
			writeDenied(w, http.StatusUnauthorized, "invalid_session")
			return
		}

		if !sess.Active() {
			writeDenied(w, http.StatusForbidden, "account_blocked")
			return
		}

		if len(rule.Roles) > 0 && !slices.Contains(rule.Roles, sess.Role) {
			writeDenied(w, http.StatusForbidden, "insufficient_role")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), sess)))
	})
}

// match returns the rule with the longest matching prefix.
func (g *Guard) match(path string) (Rule, bool) {
	var (
		best    Rule
		bestLen = -1
	)
	for _, rule := range g.rules {
		if !prefixMatches(path, rule.Prefix) {
			continue
		}
		if len(rule.Prefix) > bestLen {
			best = rule
			bestLen = len(rule.Prefix)
		}
	}
	return best, bestLen >= 0
}

// prefixMatches reports whether prefix matches path on segment boundaries,
// so "/admin" matches "/admin" and "/admin/users" but not "/administrator".
func prefixMatches(path, prefix string) bool {
	if prefix == "" || prefix == "/" {
		return true
	}
	prefix = strings.TrimSuffix(prefix, "/")
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}

// guardPath strips the tenant slug prefix so rules written against
// canonical paths apply to both routing strategies.
func guardPath(r *http.Request) string {
	path := r.URL.Path
	tc, ok := tenant.FromContext(r.Context())
	if !ok || tc.IsDefault() || tc.TenantSlug == "" {
		return path
	}

	prefix := "/" + tc.TenantSlug
	if path == prefix {
		return "/"
	}
	if rest, found := strings.CutPrefix(path, prefix+"/"); found {
		return "/" + rest
	}
	return path
}

func extractToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if tok, found := strings.CutPrefix(auth, "Bearer "); found {
			return tok
		}
		return ""
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

func writeDenied(w http.ResponseWriter, status int, reason string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": reason}) //nolint:errcheck
}
