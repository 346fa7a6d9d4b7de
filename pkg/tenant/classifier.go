package tenant

import (
	"net"
	"regexp"
	"strings"
)

// Strategy is the mechanism by which a request's tenant was determined.
type Strategy string

const (
	StrategySubdomain Strategy = "subdomain"
	StrategyPath      Strategy = "path"
	StrategyDefault   Strategy = "default"
)

// DefaultTenantID is the sentinel substituted when no tenant is recognized,
// so downstream headers and limiter keys are never empty.
const DefaultTenantID = "default"

// Classification is the outcome of routing-strategy classification.
// TenantID and TenantSlug are empty when Strategy is StrategyDefault.
type Classification struct {
	TenantID   string
	TenantSlug string
	Strategy   Strategy
}

// Matched reports whether a tenant was identified.
func (c Classification) Matched() bool {
	return c.Strategy != StrategyDefault
}

// slugPattern keeps tenant slugs DNS-safe: lowercase alphanumeric start,
// hyphens allowed inside.
var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

const maxSlugLength = 63

// ValidSlug reports whether s can serve as a tenant slug.
func ValidSlug(s string) bool {
	return s != "" && len(s) <= maxSlugLength && slugPattern.MatchString(s)
}

// Classifier determines which tenant a request addresses based on hostname
// and path. Classify is a pure function of its inputs; the classifier
// itself is immutable after construction.
type Classifier struct {
	baseDomain     string
	reservedLabels map[string]struct{}
	reservedRoutes map[string]struct{}
}

// ClassifierOption configures a Classifier.
type ClassifierOption func(*Classifier)

// WithReservedRoutes replaces the default reserved system route set. The
// set must stay in sync with store-creation slug validation so merchants
// cannot register a slug that shadows a platform route.
func WithReservedRoutes(routes ...string) ClassifierOption {
	return func(c *Classifier) {
		c.reservedRoutes = make(map[string]struct{}, len(routes))
		for _, route := range routes {
			c.reservedRoutes[strings.ToLower(route)] = struct{}{}
		}
	}
}

// WithReservedLabels replaces the default reserved subdomain label set.
func WithReservedLabels(labels ...string) ClassifierOption {
	return func(c *Classifier) {
		c.reservedLabels = make(map[string]struct{}, len(labels))
		for _, label := range labels {
			c.reservedLabels[strings.ToLower(label)] = struct{}{}
		}
	}
}

// DefaultReservedRoutes are first path segments that can never be tenant
// slugs: platform pages, auth endpoints, and static asset prefixes.
func DefaultReservedRoutes() []string {
	return []string{
		"api", "auth", "login", "logout", "signup", "onboarding",
		"admin", "dashboard", "static", "assets", "favicon.ico",
		"robots.txt", "healthz",
	}
}

// DefaultReservedLabels are subdomain labels owned by the platform itself.
func DefaultReservedLabels() []string {
	return []string{"www", "app", "api"}
}

// NewClassifier creates a classifier for the given platform base domain
// (e.g. "shopgrid.app").
func NewClassifier(baseDomain string, opts ...ClassifierOption) *Classifier {
	c := &Classifier{baseDomain: strings.ToLower(baseDomain)}
	WithReservedRoutes(DefaultReservedRoutes()...)(c)
	WithReservedLabels(DefaultReservedLabels()...)(c)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsReservedRoute reports whether a path segment belongs to the platform's
// reserved route set. Store creation uses this to reject colliding slugs.
func (c *Classifier) IsReservedRoute(segment string) bool {
	_, ok := c.reservedRoutes[strings.ToLower(segment)]
	return ok
}

// IsReservedLabel reports whether a subdomain label is platform-owned.
func (c *Classifier) IsReservedLabel(label string) bool {
	_, ok := c.reservedLabels[strings.ToLower(label)]
	return ok
}

// Classify determines the tenant for a (hostname, pathname) pair.
// Strategies are tried in order: subdomain, then path, then default.
// An absent hostname (direct IP access) skips straight to path matching.
func (c *Classifier) Classify(hostname, pathname string) Classification {
	if label := c.subdomainLabel(hostname); label != "" {
		return Classification{TenantID: label, TenantSlug: label, Strategy: StrategySubdomain}
	}

	if segment := firstPathSegment(pathname); segment != "" {
		if !c.IsReservedRoute(segment) && ValidSlug(segment) {
			return Classification{TenantID: segment, TenantSlug: segment, Strategy: StrategyPath}
		}
	}

	return Classification{Strategy: StrategyDefault}
}

// subdomainLabel extracts a non-reserved tenant label from the hostname,
// or "" when the host does not address a tenant subdomain.
func (c *Classifier) subdomainLabel(hostname string) string {
	if hostname == "" || c.baseDomain == "" {
		return ""
	}

	host := strings.ToLower(hostname)
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}

	suffix := "." + c.baseDomain
	if !strings.HasSuffix(host, suffix) {
		return ""
	}

	// Leftmost label only: "a.b.shopgrid.app" addresses tenant "a".
	rest := strings.TrimSuffix(host, suffix)
	label, _, _ := strings.Cut(rest, ".")

	if label == "" || c.IsReservedLabel(label) || !ValidSlug(label) {
		return ""
	}
	return label
}

// firstPathSegment returns the first segment of a URL path, or "" for "/".
func firstPathSegment(pathname string) string {
	trimmed := strings.TrimPrefix(pathname, "/")
	segment, _, _ := strings.Cut(trimmed, "/")
	return segment
}
