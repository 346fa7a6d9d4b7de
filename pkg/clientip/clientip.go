package clientip

import (
	"net"
	"net/http"
	"strings"
)

// Unknown is returned when no usable client address can be determined.
// Rate limiter keys must never be empty, so this sentinel keeps anonymous
// traffic bucketed together instead of bypassing IP-scoped limits.
const Unknown = "unknown"

// GetIP returns the client's IP address from an HTTP request.
// Priority order for proxied deployments:
//  1. X-Forwarded-For (standard proxy header, first valid entry)
//  2. X-Real-IP (nginx reverse proxy)
//  3. CF-Connecting-IP (last-resort CDN header)
//  4. RemoteAddr (direct connection fallback)
//
// Returns Unknown when nothing parses as a valid IP.
func GetIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		// X-Forwarded-For can contain multiple hops; the first valid entry
		// is the original client.
		for ip := range strings.SplitSeq(forwarded, ",") {
			if parsed := parseIP(ip); parsed != "" {
				return parsed
			}
		}
	}

	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		if parsed := parseIP(ip); parsed != "" {
			return parsed
		}
	}

	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		if parsed := parseIP(ip); parsed != "" {
			return parsed
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr may already be a bare IP.
		host = r.RemoteAddr
	}
	if parsed := parseIP(host); parsed != "" {
		return parsed
	}

	return Unknown
}

// parseIP validates and normalizes an IP address string.
// Returns empty string if the IP is invalid.
func parseIP(ipStr string) string {
	ipStr = strings.TrimSpace(ipStr)
	if ipStr == "" {
		return ""
	}

	ip := net.ParseIP(ipStr)
	if ip == nil {
		return ""
	}

	return ip.String()
}
