package ratelimit

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// maxKeyLength is the maximum allowed length for a rate limit key
// to prevent excessively long storage keys in backends like Redis.
const maxKeyLength = 64

// Composite joins non-empty key parts into a single storage key.
// Long keys (>64 chars) are hashed to 32 hex chars using SHA256 to prevent
// storage issues while avoiding collisions.
func Composite(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}

	if len(kept) == 0 {
		return ""
	}

	if len(kept) == 1 && len(kept[0]) <= maxKeyLength {
		return kept[0]
	}

	combined := strings.Join(kept, ":")

	if len(combined) > maxKeyLength {
		hash := sha256.Sum256([]byte(combined))
		// 128-bit hash provides sufficient collision resistance
		return hex.EncodeToString(hash[:16])
	}

	return combined
}
