// Package slug derives store slugs from display names. Output always
// satisfies the tenant slug grammar: lowercase alphanumerics and hyphens,
// starting with an alphanumeric, at most 63 bytes.
package slug

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"unicode"
)

// maxLength matches the DNS label limit, since slugs become subdomains.
const maxLength = 63

// Option configures slug generation.
type Option func(*config)

type config struct {
	suffixLength int
}

// WithRandomSuffix appends a hyphen and n random hex characters, for
// callers that need collision avoidance on popular names.
func WithRandomSuffix(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.suffixLength = n
		}
	}
}

// Make converts a display name into a routable store slug. Returns ""
// when nothing usable remains after normalization.
func Make(name string, opts ...Option) string {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	var b strings.Builder
	prevHyphen := true // suppress leading hyphens
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevHyphen = false
		case r == '-' || r == '_' || unicode.IsSpace(r):
			if !prevHyphen {
				b.WriteByte('-')
				prevHyphen = true
			}
		}
	}

	s := strings.TrimRight(b.String(), "-")
	if s == "" {
		return ""
	}

	if cfg.suffixLength > 0 {
		s = s + "-" + randomSuffix(cfg.suffixLength)
	}

	if len(s) > maxLength {
		s = strings.TrimRight(s[:maxLength], "-")
	}
	return s
}

func randomSuffix(n int) string {
	buf := make([]byte, (n+1)/2)
	rand.Read(buf) //nolint:errcheck
	return hex.EncodeToString(buf)[:n]
}
