package domain

import "errors"

// Error taxonomy for the resolution core. Only ErrInvalidInput ever reaches
// a caller of the public resolve methods; provider failures are recovered by
// falling through to the next tier.
var (
	// ErrInvalidInput marks a malformed coordinate or bounding box,
	// rejected before any tier runs.
	ErrInvalidInput = errors.New("invalid input")

	// ErrProviderTimeout marks a tier that exceeded its deadline.
	ErrProviderTimeout = errors.New("provider timeout")

	// ErrProviderUnavailable marks a tier that failed for a non-timeout
	// reason: network, HTTP status, auth, permission denied.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrExhausted means every tier in a chain failed, including the
	// guaranteed-success synthetic/default tier. A correctly configured
	// chain can never produce it; treat it as a programming error.
	ErrExhausted = errors.New("resolution chain exhausted")
)
