package orchestrator

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/moorwatch/wildfire-data-service/internal/cache"
	"github.com/moorwatch/wildfire-data-service/internal/domain"
	"github.com/moorwatch/wildfire-data-service/internal/geo"
	"github.com/moorwatch/wildfire-data-service/internal/observability"
)

// RiskOptions configures a Risk orchestrator. The cache handle is injected
// rather than shared globally so tests can run an isolated instance each.
type RiskOptions struct {
	Primary        domain.RiskProvider
	Regional       domain.RiskProvider // optional; consulted only inside RegionalRegion
	RegionalRegion geo.Region
	Cache          *cache.SpatialCache

	PrimaryTimeout  time.Duration
	RegionalTimeout time.Duration
	GlobalDeadline  time.Duration
	CacheTTL        time.Duration

	Logger  *slog.Logger
	Metrics *observability.Metrics
}

// Risk resolves a fire-risk value for a coordinate through an ordered
// fallback chain: fresh cache, then primary and regional providers, then a
// synthetic tier that cannot fail. It holds policy only; all state lives in
// the injected cache.
type Risk struct {
	opts RiskOptions
}

// NewRisk creates a Risk orchestrator.
func NewRisk(opts RiskOptions) *Risk {
	return &Risk{opts: opts}
}

// Resolve returns a tagged RiskResult for the coordinate. The only possible
// error is ErrInvalidInput, rejected before any tier runs; every other
// failure mode degrades through the chain and surfaces solely as the
// result's Freshness tag.
func (o *Risk) Resolve(ctx context.Context, coord domain.Coordinate) (domain.RiskResult, error) {
	if err := coord.Validate(); err != nil {
		return domain.RiskResult{}, err
	}

	start := domain.Clock().Now()
	defer func() {
		o.opts.Metrics.ResolutionDuration.WithLabelValues(chainRisk).
			Observe(domain.Clock().Now().Sub(start).Seconds())
	}()

	// The global deadline wraps the whole chain; per-tier timeouts nest
	// under it, so a slow tier can never starve the ones behind it of the
	// full budget and cancelling ctx cancels any in-flight request.
	chainCtx, cancel := context.WithTimeout(ctx, o.opts.GlobalDeadline)
	defer cancel()

	hash, err := geo.Encode(coord, geo.PrecisionPoint)
	if err != nil {
		return domain.RiskResult{}, err
	}
	key := cache.Key{Geohash: hash, Kind: cache.KindRisk}

	// A fresh cache entry short-circuits the network tiers: write-through
	// on live success means repeat queries inside the TTL window are served
	// locally, and expiry restores the live path. An entry that expires or
	// was never written leaves the chain to the providers.
	if result, ok := o.tryCache(ctx, key); ok {
		return result, nil
	}
	if result, ok := o.tryLive(chainCtx, coord, key); ok {
		return result, nil
	}

	o.opts.Metrics.TierAttempts.WithLabelValues(chainRisk, "synthetic", outcomeSuccess).Inc()
	o.opts.Metrics.SyntheticResults.WithLabelValues(chainRisk).Inc()
	o.opts.Logger.Debug("risk resolved synthetically", "coord", geo.Redact(coord))
	return domain.SyntheticRisk(coord), nil
}

// tryLive walks the network tiers. A false return means the chain should
// fall through to cache and synthetic.
func (o *Risk) tryLive(ctx context.Context, coord domain.Coordinate, key cache.Key) (domain.RiskResult, bool) {
	if level, ok := o.tryProvider(ctx, "primary", o.opts.Primary, o.opts.PrimaryTimeout, coord); ok {
		return o.storeLive(ctx, key, level), true
	}

	switch {
	case o.opts.Regional == nil || !o.opts.RegionalRegion.Contains(coord):
		o.opts.Metrics.TierAttempts.WithLabelValues(chainRisk, "regional", outcomeSkipped).Inc()
	default:
		if level, ok := o.tryProvider(ctx, "regional", o.opts.Regional, o.opts.RegionalTimeout, coord); ok {
			return o.storeLive(ctx, key, level), true
		}
	}
	return domain.RiskResult{}, false
}

// tryProvider runs one time-boxed provider tier.
func (o *Risk) tryProvider(ctx context.Context, tier string, provider domain.RiskProvider, timeout time.Duration, coord domain.Coordinate) (domain.RiskLevel, bool) {
	// The global deadline already elapsed: don't start a doomed request,
	// fall straight through to whichever of cache/synthetic is available.
	if ctx.Err() != nil {
		o.opts.Metrics.TierAttempts.WithLabelValues(chainRisk, tier, outcomeSkipped).Inc()
		return "", false
	}

	tierCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	level, err := provider.FetchRisk(tierCtx, coord)
	o.opts.Metrics.ProviderDuration.WithLabelValues(provider.Name()).Observe(time.Since(start).Seconds())

	outcome := classifyOutcome(err)
	o.opts.Metrics.TierAttempts.WithLabelValues(chainRisk, tier, outcome).Inc()
	if err != nil {
		o.opts.Logger.Warn("risk tier failed",
			"tier", tier,
			"provider", provider.Name(),
			"outcome", outcome,
			"coord", geo.Redact(coord),
			"error", err,
		)
		return "", false
	}
	if !level.Valid() {
		o.opts.Logger.Warn("risk tier returned unknown level",
			"tier", tier, "provider", provider.Name(), "level", string(level))
		return "", false
	}
	return level, true
}

// storeLive writes a live result through the cache and returns it.
func (o *Risk) storeLive(ctx context.Context, key cache.Key, level domain.RiskLevel) domain.RiskResult {
	result := domain.RiskResult{
		Level:     level,
		Source:    domain.FreshnessLive,
		QueriedAt: domain.Clock().Now(),
	}
	if payload, err := json.Marshal(result); err == nil {
		o.opts.Cache.Put(ctx, key, payload, o.opts.CacheTTL)
	}
	return result
}

// tryCache serves a previously stored live result, re-tagged as cached. It
// runs on the caller's context, not the chain context: a cache read is local
// and works regardless of the network budget.
func (o *Risk) tryCache(ctx context.Context, key cache.Key) (domain.RiskResult, bool) {
	payload, ok := o.opts.Cache.Get(ctx, key)
	if !ok {
		o.opts.Metrics.CacheLookups.WithLabelValues(string(cache.KindRisk), "miss").Inc()
		o.opts.Metrics.TierAttempts.WithLabelValues(chainRisk, "cache", outcomeMiss).Inc()
		return domain.RiskResult{}, false
	}
	var result domain.RiskResult
	if err := json.Unmarshal(payload, &result); err != nil {
		o.opts.Logger.Warn("cached risk entry corrupt", "key", key.String(), "error", err)
		o.opts.Metrics.TierAttempts.WithLabelValues(chainRisk, "cache", outcomeError).Inc()
		return domain.RiskResult{}, false
	}
	o.opts.Metrics.CacheLookups.WithLabelValues(string(cache.KindRisk), "hit").Inc()
	o.opts.Metrics.TierAttempts.WithLabelValues(chainRisk, "cache", outcomeSuccess).Inc()

	result.Source = domain.FreshnessCached
	return result, true
}
