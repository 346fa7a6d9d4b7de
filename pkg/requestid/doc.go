// Package requestid provides HTTP middleware and context helpers for
// request correlation identifiers, plus a logger extractor so every log
// record within a request carries the same ID.
package requestid
