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

// ActiveFiresOptions configures an ActiveFires orchestrator.
type ActiveFiresOptions struct {
	Provider domain.IncidentProvider
	Cache    *cache.SpatialCache

	// Publisher receives live-fetched incidents for downstream fan-out.
	// Optional; publishing is best-effort and never delays a response.
	Publisher      domain.IncidentPublisher
	PublishTimeout time.Duration

	ProviderTimeout time.Duration
	GlobalDeadline  time.Duration
	CacheTTL        time.Duration

	Logger  *slog.Logger
	Metrics *observability.Metrics
}

// ActiveFires resolves fire incidents for a map viewport through the same
// fresh-cache, live-provider, synthetic chain as Risk, keyed by the
// viewport's centre cell at a coarser geohash precision.
type ActiveFires struct {
	opts ActiveFiresOptions
}

// NewActiveFires creates an ActiveFires orchestrator.
func NewActiveFires(opts ActiveFiresOptions) *ActiveFires {
	if opts.PublishTimeout <= 0 {
		opts.PublishTimeout = 5 * time.Second
	}
	return &ActiveFires{opts: opts}
}

// Resolve returns a tagged IncidentSet for the viewport. Invalid or
// zero-area boxes are rejected with ErrInvalidInput before any tier runs;
// all other failures degrade through the chain.
func (o *ActiveFires) Resolve(ctx context.Context, bbox domain.BoundingBox) (domain.IncidentSet, error) {
	if err := bbox.Validate(); err != nil {
		return domain.IncidentSet{}, err
	}

	start := domain.Clock().Now()
	defer func() {
		o.opts.Metrics.ResolutionDuration.WithLabelValues(chainFires).
			Observe(domain.Clock().Now().Sub(start).Seconds())
	}()

	chainCtx, cancel := context.WithTimeout(ctx, o.opts.GlobalDeadline)
	defer cancel()

	hash, err := geo.Encode(bbox.Center(), geo.PrecisionViewport)
	if err != nil {
		return domain.IncidentSet{}, err
	}
	key := cache.Key{Geohash: hash, Kind: cache.KindActiveFires}

	// Fresh cache entries short-circuit the network tier, mirroring the
	// risk chain: the TTL window decides when the live path is consulted.
	if set, ok := o.tryCache(ctx, key, bbox); ok {
		return set, nil
	}
	if set, ok := o.tryLive(chainCtx, bbox, key); ok {
		return set, nil
	}

	o.opts.Metrics.TierAttempts.WithLabelValues(chainFires, "synthetic", outcomeSuccess).Inc()
	o.opts.Metrics.SyntheticResults.WithLabelValues(chainFires).Inc()
	o.opts.Logger.Debug("active fires resolved synthetically", "bbox", geo.RedactBBox(bbox))
	return domain.SyntheticIncidents(bbox), nil
}

func (o *ActiveFires) tryLive(ctx context.Context, bbox domain.BoundingBox, key cache.Key) (domain.IncidentSet, bool) {
	if ctx.Err() != nil {
		o.opts.Metrics.TierAttempts.WithLabelValues(chainFires, "provider", outcomeSkipped).Inc()
		return domain.IncidentSet{}, false
	}

	tierCtx, cancel := context.WithTimeout(ctx, o.opts.ProviderTimeout)
	defer cancel()

	start := time.Now()
	incidents, err := o.opts.Provider.FetchIncidents(tierCtx, bbox)
	o.opts.Metrics.ProviderDuration.WithLabelValues(o.opts.Provider.Name()).Observe(time.Since(start).Seconds())

	outcome := classifyOutcome(err)
	o.opts.Metrics.TierAttempts.WithLabelValues(chainFires, "provider", outcome).Inc()
	if err != nil {
		o.opts.Logger.Warn("active fires tier failed",
			"provider", o.opts.Provider.Name(),
			"outcome", outcome,
			"bbox", geo.RedactBBox(bbox),
			"error", err,
		)
		return domain.IncidentSet{}, false
	}

	set := domain.IncidentSet{
		Incidents: domain.FilterToBBox(incidents, bbox),
		BBox:      bbox,
		Source:    domain.FreshnessLive,
		QueriedAt: domain.Clock().Now(),
	}
	if payload, err := json.Marshal(set); err == nil {
		o.opts.Cache.Put(ctx, key, payload, o.opts.CacheTTL)
	}
	o.publish(set.Incidents)
	return set, true
}

// tryCache serves a stored incident set re-filtered to the requested box:
// nearby viewports share a centre cell, so the cached set may cover a
// slightly different rectangle.
func (o *ActiveFires) tryCache(ctx context.Context, key cache.Key, bbox domain.BoundingBox) (domain.IncidentSet, bool) {
	payload, ok := o.opts.Cache.Get(ctx, key)
	if !ok {
		o.opts.Metrics.CacheLookups.WithLabelValues(string(cache.KindActiveFires), "miss").Inc()
		o.opts.Metrics.TierAttempts.WithLabelValues(chainFires, "cache", outcomeMiss).Inc()
		return domain.IncidentSet{}, false
	}
	var stored domain.IncidentSet
	if err := json.Unmarshal(payload, &stored); err != nil {
		o.opts.Logger.Warn("cached incident set corrupt", "key", key.String(), "error", err)
		o.opts.Metrics.TierAttempts.WithLabelValues(chainFires, "cache", outcomeError).Inc()
		return domain.IncidentSet{}, false
	}
	o.opts.Metrics.CacheLookups.WithLabelValues(string(cache.KindActiveFires), "hit").Inc()
	o.opts.Metrics.TierAttempts.WithLabelValues(chainFires, "cache", outcomeSuccess).Inc()

	return domain.IncidentSet{
		Incidents: domain.FilterToBBox(stored.Incidents, bbox),
		BBox:      bbox,
		Source:    domain.FreshnessCached,
		QueriedAt: stored.QueriedAt,
	}, true
}

// publish hands live incidents to the feed without blocking the response.
func (o *ActiveFires) publish(incidents []domain.Incident) {
	if o.opts.Publisher == nil || len(incidents) == 0 {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), o.opts.PublishTimeout)
		defer cancel()
		if err := o.opts.Publisher.PublishIncidents(ctx, incidents); err != nil {
			o.opts.Logger.Warn("incident feed publish failed", "count", len(incidents), "error", err)
			return
		}
		o.opts.Metrics.IncidentsPublished.Add(float64(len(incidents)))
	}()
}
