// Package limits gates tenant actions on tier entitlements: resource
// limit checks, feature membership, and tier rate budgets. All functions
// are pure and advisory; they read a resolved tenant context and never
// perform I/O.
package limits
