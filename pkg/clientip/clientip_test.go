package clientip_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shopgrid/shopgrid/pkg/clientip"
)

func TestGetIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		want       string
	}{
		{
			name:       "x-forwarded-for first entry wins",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"},
			remoteAddr: "10.0.0.2:4000",
			want:       "203.0.113.7",
		},
		{
			name:       "x-forwarded-for entries are trimmed",
			headers:    map[string]string{"X-Forwarded-For": "  203.0.113.7  ,10.0.0.1"},
			remoteAddr: "10.0.0.2:4000",
			want:       "203.0.113.7",
		},
		{
			name:       "invalid forwarded entries are skipped",
			headers:    map[string]string{"X-Forwarded-For": "not-an-ip, 203.0.113.9"},
			remoteAddr: "10.0.0.2:4000",
			want:       "203.0.113.9",
		},
		{
			name:       "x-real-ip used when forwarded absent",
			headers:    map[string]string{"X-Real-IP": "198.51.100.4"},
			remoteAddr: "10.0.0.2:4000",
			want:       "198.51.100.4",
		},
		{
			name:       "cf-connecting-ip as last resort header",
			headers:    map[string]string{"CF-Connecting-IP": "198.51.100.8"},
			remoteAddr: "10.0.0.2:4000",
			want:       "198.51.100.8",
		},
		{
			name:       "remote addr fallback",
			remoteAddr: "192.0.2.1:51234",
			want:       "192.0.2.1",
		},
		{
			name:       "ipv6 remote addr",
			remoteAddr: "[2001:db8::1]:443",
			want:       "2001:db8::1",
		},
		{
			name:       "unknown when nothing valid",
			remoteAddr: "garbage",
			want:       clientip.Unknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			assert.Equal(t, tt.want, clientip.GetIP(req))
		})
	}
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	handler := clientip.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "203.0.113.7", clientip.FromContext(r.Context()))
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestFromContext_Default(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, clientip.Unknown, clientip.FromContext(req.Context()))
}
