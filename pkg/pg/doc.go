// Package pg bootstraps the pgx/v5 connection pool backing tenant and
// storefront data, and runs goose migrations against it at startup.
package pg
