package session_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopgrid/shopgrid/pkg/session"
	"github.com/shopgrid/shopgrid/pkg/tenant"
)

func newGuard(t *testing.T) (*session.Authenticator, *session.Guard) {
	t.Helper()
	a, err := session.NewAuthenticator("secret")
	require.NoError(t, err)
	g := session.NewGuard(a,
		session.Rule{Prefix: "/dashboard", Roles: []session.Role{session.RoleOwner, session.RoleStaff}},
		session.Rule{Prefix: "/dashboard/billing", Roles: []session.Role{session.RoleOwner}},
		session.Rule{Prefix: "/account"},
		session.Rule{Prefix: "/admin", Roles: []session.Role{session.RoleAdmin}},
	)
	return a, g
}

func serveGuarded(g *session.Guard, req *http.Request) *httptest.ResponseRecorder {
	handler := g.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func bearer(t *testing.T, a *session.Authenticator, role session.Role, status session.Status) string {
	t.Helper()
	tok, err := a.Issue("u-42", role, status)
	require.NoError(t, err)
	return "Bearer " + tok
}

func TestGuard_PublicPathsPass(t *testing.T) {
	t.Parallel()

	_, g := newGuard(t)

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	assert.Equal(t, http.StatusOK, serveGuarded(g, req).Code)
}

func TestGuard_RequiresAuthentication(t *testing.T) {
	t.Parallel()

	_, g := newGuard(t)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	assert.Equal(t, http.StatusUnauthorized, serveGuarded(g, req).Code)
}

func TestGuard_RoleRules(t *testing.T) {
	t.Parallel()

	a, g := newGuard(t)

	tests := []struct {
		name string
		path string
		role session.Role
		want int
	}{
		{"staff can use dashboard", "/dashboard/orders", session.RoleStaff, http.StatusOK},
		{"owner can use dashboard", "/dashboard", session.RoleOwner, http.StatusOK},
		{"customer cannot use dashboard", "/dashboard", session.RoleCustomer, http.StatusForbidden},
		{"longest prefix wins: staff blocked from billing", "/dashboard/billing", session.RoleStaff, http.StatusForbidden},
		{"owner allowed on billing", "/dashboard/billing/invoices", session.RoleOwner, http.StatusOK},
		{"any authenticated role on account", "/account", session.RoleCustomer, http.StatusOK},
		{"admin area needs admin", "/admin/tenants", session.RoleOwner, http.StatusForbidden},
		{"admin allowed in admin area", "/admin/tenants", session.RoleAdmin, http.StatusOK},
		{"prefix matches segments only", "/dashboardish", session.RoleCustomer, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set("Authorization", bearer(t, a, tt.role, session.StatusActive))
			assert.Equal(t, tt.want, serveGuarded(g, req).Code)
		})
	}
}

func TestGuard_BlockedAccount(t *testing.T) {
	t.Parallel()

	a, g := newGuard(t)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Authorization", bearer(t, a, session.RoleOwner, session.StatusBlocked))
	assert.Equal(t, http.StatusForbidden, serveGuarded(g, req).Code)
}

func TestGuard_CookieFallback(t *testing.T) {
	t.Parallel()

	a, g := newGuard(t)

	tok, err := a.Issue("u-42", session.RoleOwner, session.StatusActive)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: tok})
	assert.Equal(t, http.StatusOK, serveGuarded(g, req).Code)
}

func TestGuard_StripsTenantSlug(t *testing.T) {
	t.Parallel()

	a, g := newGuard(t)

	// Path-routed request: the slug prefix must not hide the rule.
	req := httptest.NewRequest(http.MethodGet, "/acme/dashboard", nil)
	req = req.WithContext(tenant.WithContext(req.Context(), &tenant.Context{
		TenantID:   "acme",
		TenantSlug: "acme",
		Strategy:   tenant.StrategyPath,
		Tier:       tenant.TierGrowth,
		Status:     tenant.StatusActive,
	}))
	assert.Equal(t, http.StatusUnauthorized, serveGuarded(g, req).Code)

	req.Header.Set("Authorization", bearer(t, a, session.RoleOwner, session.StatusActive))
	assert.Equal(t, http.StatusOK, serveGuarded(g, req).Code)
}

func TestGuard_SessionOnContext(t *testing.T) {
	t.Parallel()

	a, err := session.NewAuthenticator("secret")
	require.NoError(t, err)
	g := session.NewGuard(a, session.Rule{Prefix: "/dashboard"})

	var got *session.Session
	handler := g.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = session.FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Authorization", bearer(t, a, session.RoleStaff, session.StatusActive))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, got)
	assert.Equal(t, "u-42", got.UserID)
	assert.Equal(t, session.RoleStaff, got.Role)
}
