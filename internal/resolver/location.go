// Package resolver implements device-location resolution as an ordered,
// time-boxed tier chain: last-known → live positioning → cached manual →
// manual prompt → fixed default. The chain never fails; the final tier is a
// constant.
package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/moorwatch/wildfire-data-service/internal/cache"
	"github.com/moorwatch/wildfire-data-service/internal/domain"
	"github.com/moorwatch/wildfire-data-service/internal/geo"
	"github.com/moorwatch/wildfire-data-service/internal/observability"
)

// Tier outcome labels, mirrored from the orchestrator chains so location
// metrics aggregate the same way.
const (
	outcomeSuccess = "success"
	outcomeTimeout = "timeout"
	outcomeError   = "error"
	outcomeMiss    = "miss"
	outcomeSkipped = "skipped"
)

func classifyOutcome(err error) string {
	if err == nil {
		return outcomeSuccess
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, domain.ErrProviderTimeout) {
		return outcomeTimeout
	}
	return outcomeError
}

// manualSlot is the fixed cache key for the user's manually entered
// coordinate. One slot per process: a new manual entry supersedes the old.
var manualSlot = cache.Key{Geohash: "user", Kind: cache.KindManualLocation}

// LocationOptions configures a Location resolver.
type LocationOptions struct {
	Position domain.PositionProvider // optional; tier skipped when nil or unavailable
	Prompter domain.CoordinatePrompter
	Cache    *cache.SpatialCache

	PositionTimeout time.Duration
	ManualTTL       time.Duration

	Logger  *slog.Logger
	Metrics *observability.Metrics
}

// Location resolves the device position. Safe for concurrent use; the only
// mutable state is the last successful resolution.
type Location struct {
	opts LocationOptions

	mu        sync.Mutex
	lastKnown *domain.ResolvedLocation
}

// NewLocation creates a Location resolver.
func NewLocation(opts LocationOptions) *Location {
	return &Location{opts: opts}
}

// Resolve walks the tier chain and always returns a tagged location. Tier
// failures are non-fatal; a cancelled context short-circuits the remaining
// external tiers straight to the default.
func (r *Location) Resolve(ctx context.Context) domain.ResolvedLocation {
	start := domain.Clock().Now()
	defer func() {
		r.opts.Metrics.ResolutionDuration.WithLabelValues("location").
			Observe(domain.Clock().Now().Sub(start).Seconds())
	}()

	if loc, ok := r.tryLastKnown(); ok {
		return loc
	}
	if loc, ok := r.tryLivePosition(ctx); ok {
		return loc
	}
	if loc, ok := r.tryCachedManual(ctx); ok {
		return loc
	}
	if loc, ok := r.tryPrompt(ctx); ok {
		return loc
	}

	r.tier("default", outcomeSuccess)
	return domain.ResolvedLocation{
		Coordinate: domain.DefaultCoordinate,
		Source:     domain.FreshnessDefault,
		ResolvedAt: domain.Clock().Now(),
	}
}

// Invalidate clears the last-known position, forcing the next Resolve to
// consult the live tiers. Called when the user explicitly refreshes.
func (r *Location) Invalidate() {
	r.mu.Lock()
	r.lastKnown = nil
	r.mu.Unlock()
}

func (r *Location) tryLastKnown() (domain.ResolvedLocation, bool) {
	r.mu.Lock()
	last := r.lastKnown
	r.mu.Unlock()

	if last == nil {
		r.tier("last-known", outcomeMiss)
		return domain.ResolvedLocation{}, false
	}
	r.tier("last-known", outcomeSuccess)
	return domain.ResolvedLocation{
		Coordinate: last.Coordinate,
		Source:     domain.FreshnessLastKnown,
		ResolvedAt: domain.Clock().Now(),
	}, true
}

func (r *Location) tryLivePosition(ctx context.Context) (domain.ResolvedLocation, bool) {
	// Skip deterministically where live positioning is structurally
	// unavailable (headless and web test contexts) instead of burning the
	// tier timeout; this is what keeps the chain inside its total budget.
	if r.opts.Position == nil || !r.opts.Position.Available() {
		r.tier("live", outcomeSkipped)
		return domain.ResolvedLocation{}, false
	}
	if ctx.Err() != nil {
		r.tier("live", outcomeSkipped)
		return domain.ResolvedLocation{}, false
	}

	tierCtx, cancel := context.WithTimeout(ctx, r.opts.PositionTimeout)
	defer cancel()

	coord, err := r.opts.Position.CurrentPosition(tierCtx)
	if err != nil {
		// No retry: permission denial and provider errors move the chain
		// along immediately.
		r.tier("live", classifyOutcome(err))
		r.opts.Logger.Debug("live positioning failed", "error", err)
		return domain.ResolvedLocation{}, false
	}
	if err := coord.Validate(); err != nil {
		r.tier("live", outcomeError)
		r.opts.Logger.Warn("position provider returned invalid coordinate", "error", err)
		return domain.ResolvedLocation{}, false
	}

	r.tier("live", outcomeSuccess)
	return r.remember(domain.ResolvedLocation{
		Coordinate: coord,
		Source:     domain.FreshnessLive,
		ResolvedAt: domain.Clock().Now(),
	}), true
}

func (r *Location) tryCachedManual(ctx context.Context) (domain.ResolvedLocation, bool) {
	payload, ok := r.opts.Cache.Get(ctx, manualSlot)
	if !ok {
		r.tier("cached-manual", outcomeMiss)
		return domain.ResolvedLocation{}, false
	}
	var coord domain.Coordinate
	if err := json.Unmarshal(payload, &coord); err != nil || coord.Validate() != nil {
		r.tier("cached-manual", outcomeError)
		r.opts.Logger.Warn("cached manual coordinate corrupt", "error", err)
		return domain.ResolvedLocation{}, false
	}

	r.tier("cached-manual", outcomeSuccess)
	return r.remember(domain.ResolvedLocation{
		Coordinate: coord,
		Source:     domain.FreshnessManual,
		ResolvedAt: domain.Clock().Now(),
	}), true
}

func (r *Location) tryPrompt(ctx context.Context) (domain.ResolvedLocation, bool) {
	if r.opts.Prompter == nil || ctx.Err() != nil {
		r.tier("manual-prompt", outcomeSkipped)
		return domain.ResolvedLocation{}, false
	}

	coord, ok := r.opts.Prompter.PromptForCoordinate()
	if !ok {
		r.tier("manual-prompt", outcomeMiss)
		return domain.ResolvedLocation{}, false
	}
	if err := coord.Validate(); err != nil {
		r.tier("manual-prompt", outcomeError)
		r.opts.Logger.Warn("manual entry rejected", "coord", geo.Redact(coord), "error", err)
		return domain.ResolvedLocation{}, false
	}

	// Persist so the cached-manual tier can serve future resolutions
	// without re-prompting, across restarts when the substrate persists.
	if payload, err := json.Marshal(coord); err == nil {
		r.opts.Cache.Put(ctx, manualSlot, payload, r.opts.ManualTTL)
	}

	r.tier("manual-prompt", outcomeSuccess)
	return r.remember(domain.ResolvedLocation{
		Coordinate: coord,
		Source:     domain.FreshnessManual,
		ResolvedAt: domain.Clock().Now(),
	}), true
}

// remember records a successful resolution for the last-known tier.
func (r *Location) remember(loc domain.ResolvedLocation) domain.ResolvedLocation {
	r.mu.Lock()
	r.lastKnown = &loc
	r.mu.Unlock()
	return loc
}

func (r *Location) tier(tier, outcome string) {
	r.opts.Metrics.TierAttempts.WithLabelValues("location", tier, outcome).Inc()
}
