package service

import "errors"

var (
	// ErrValidation marks caller-contract violations (missing header fields,
	// non-positive lot size, unknown verdict value).
	ErrValidation = errors.New("validation error")
	// ErrConflict marks a purchase-order item already consumed by another report.
	ErrConflict = errors.New("conflict")
	// ErrUpstreamUnavailable marks a failed call to the product catalog; callers
	// degrade enrichment instead of failing the request.
	ErrUpstreamUnavailable = errors.New("reference service unavailable")
)
