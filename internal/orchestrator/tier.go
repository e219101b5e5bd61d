// Package orchestrator implements the tiered fallback chains that resolve
// fire risk and active fires: fresh cache entries first, then live
// providers, then a synthetic tier that cannot fail. Chains run under a
// global deadline composed from per-tier timeouts, so cancelling the
// caller's context cancels any in-flight provider request.
package orchestrator

import (
	"context"
	"errors"

	"github.com/moorwatch/wildfire-data-service/internal/domain"
)

// Tier outcome labels for metrics and logs.
const (
	outcomeSuccess = "success"
	outcomeTimeout = "timeout"
	outcomeError   = "error"
	outcomeMiss    = "miss"
	outcomeSkipped = "skipped"
)

// Chain labels. The location chain lives in the resolver package and uses
// its own label.
const (
	chainRisk  = "risk"
	chainFires = "fires"
)

// classifyOutcome maps a tier error to its metric label.
func classifyOutcome(err error) string {
	if err == nil {
		return outcomeSuccess
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, domain.ErrProviderTimeout) {
		return outcomeTimeout
	}
	return outcomeError
}
