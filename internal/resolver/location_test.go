package resolver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moorwatch/wildfire-data-service/internal/cache"
	"github.com/moorwatch/wildfire-data-service/internal/domain"
	"github.com/moorwatch/wildfire-data-service/internal/observability"
	"github.com/moorwatch/wildfire-data-service/internal/store"
)

type stubPosition struct {
	available bool
	coord     domain.Coordinate
	err       error
	hang      bool
	calls     atomic.Int32
}

func (s *stubPosition) Available() bool { return s.available }

func (s *stubPosition) CurrentPosition(ctx context.Context) (domain.Coordinate, error) {
	s.calls.Add(1)
	if s.hang {
		<-ctx.Done()
		return domain.Coordinate{}, ctx.Err()
	}
	if s.err != nil {
		return domain.Coordinate{}, s.err
	}
	return s.coord, nil
}

type stubPrompter struct {
	coord domain.Coordinate
	ok    bool
	calls atomic.Int32
}

func (s *stubPrompter) PromptForCoordinate() (domain.Coordinate, bool) {
	s.calls.Add(1)
	return s.coord, s.ok
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newLocation(t *testing.T, position domain.PositionProvider, prompter domain.CoordinatePrompter, c *cache.SpatialCache) *Location {
	t.Helper()
	if c == nil {
		c = cache.New(store.NewMemoryStore(), 8, testLogger())
	}
	return NewLocation(LocationOptions{
		Position:        position,
		Prompter:        prompter,
		Cache:           c,
		PositionTimeout: 100 * time.Millisecond,
		ManualTTL:       24 * time.Hour,
		Logger:          testLogger(),
		Metrics:         observability.NewMetricsForTesting(),
	})
}

func TestLocation_DefaultWhenEverythingUnavailable(t *testing.T) {
	r := newLocation(t, nil, nil, nil)

	loc := r.Resolve(context.Background())
	assert.Equal(t, domain.FreshnessDefault, loc.Source)
	assert.Equal(t, domain.DefaultCoordinate, loc.Coordinate)
}

func TestLocation_LiveThenLastKnown(t *testing.T) {
	glasgow := domain.Coordinate{Lat: 55.8642, Lon: -4.2518}
	position := &stubPosition{available: true, coord: glasgow}
	r := newLocation(t, position, nil, nil)
	ctx := context.Background()

	first := r.Resolve(ctx)
	assert.Equal(t, domain.FreshnessLive, first.Source)
	assert.Equal(t, glasgow, first.Coordinate)

	// The next resolution is answered from memory without touching the
	// position provider again.
	second := r.Resolve(ctx)
	assert.Equal(t, domain.FreshnessLastKnown, second.Source)
	assert.Equal(t, glasgow, second.Coordinate)
	assert.Equal(t, int32(1), position.calls.Load())
}

func TestLocation_UnavailableProviderSkippedWithoutWaiting(t *testing.T) {
	// Structurally unavailable positioning (headless platforms) must not
	// burn the live tier's timeout.
	position := &stubPosition{available: false, hang: true}
	r := newLocation(t, position, nil, nil)

	start := time.Now()
	loc := r.Resolve(context.Background())
	assert.Less(t, time.Since(start), 50*time.Millisecond)
	assert.Equal(t, domain.FreshnessDefault, loc.Source)
	assert.Equal(t, int32(0), position.calls.Load())
}

func TestLocation_PermissionDeniedFallsThroughToPrompt(t *testing.T) {
	position := &stubPosition{
		available: true,
		err:       fmt.Errorf("%w: permission denied", domain.ErrProviderUnavailable),
	}
	aviemore := domain.Coordinate{Lat: 57.1913, Lon: -3.8253}
	prompter := &stubPrompter{coord: aviemore, ok: true}
	r := newLocation(t, position, prompter, nil)

	loc := r.Resolve(context.Background())
	assert.Equal(t, domain.FreshnessManual, loc.Source)
	assert.Equal(t, aviemore, loc.Coordinate)
	assert.Equal(t, int32(1), position.calls.Load(), "no retry on permission denial")
}

func TestLocation_ManualEntryPersistedAcrossResolvers(t *testing.T) {
	c := cache.New(store.NewMemoryStore(), 8, testLogger())
	aviemore := domain.Coordinate{Lat: 57.1913, Lon: -3.8253}
	prompter := &stubPrompter{coord: aviemore, ok: true}

	first := newLocation(t, nil, prompter, c)
	loc := first.Resolve(context.Background())
	require.Equal(t, domain.FreshnessManual, loc.Source)

	// A fresh resolver over the same cache serves the stored manual entry
	// without prompting again.
	second := newLocation(t, nil, prompter, c)
	loc = second.Resolve(context.Background())
	assert.Equal(t, domain.FreshnessManual, loc.Source)
	assert.Equal(t, aviemore, loc.Coordinate)
	assert.Equal(t, int32(1), prompter.calls.Load())
}

func TestLocation_DeclinedPromptFallsToDefault(t *testing.T) {
	prompter := &stubPrompter{ok: false}
	r := newLocation(t, nil, prompter, nil)

	loc := r.Resolve(context.Background())
	assert.Equal(t, domain.FreshnessDefault, loc.Source)
}

func TestLocation_InvalidManualEntryRejected(t *testing.T) {
	prompter := &stubPrompter{coord: domain.Coordinate{Lat: 95, Lon: 0}, ok: true}
	r := newLocation(t, nil, prompter, nil)

	loc := r.Resolve(context.Background())
	assert.Equal(t, domain.FreshnessDefault, loc.Source, "invalid entry is never used or persisted")

	_, found := prompterCacheProbe(t, r)
	assert.False(t, found)
}

func TestLocation_TimedOutPositionFallsThrough(t *testing.T) {
	position := &stubPosition{available: true, hang: true}
	r := newLocation(t, position, nil, nil)

	start := time.Now()
	loc := r.Resolve(context.Background())
	assert.Equal(t, domain.FreshnessDefault, loc.Source)
	assert.Less(t, time.Since(start), 300*time.Millisecond, "live tier bounded by its own timeout")
}

func TestLocation_Invalidate(t *testing.T) {
	glasgow := domain.Coordinate{Lat: 55.8642, Lon: -4.2518}
	position := &stubPosition{available: true, coord: glasgow}
	r := newLocation(t, position, nil, nil)
	ctx := context.Background()

	r.Resolve(ctx)
	r.Invalidate()
	r.Resolve(ctx)

	assert.Equal(t, int32(2), position.calls.Load(), "invalidation forces a fresh live fix")
}

// prompterCacheProbe reads the manual slot directly from the resolver's cache.
func prompterCacheProbe(t *testing.T, r *Location) ([]byte, bool) {
	t.Helper()
	return r.opts.Cache.Get(context.Background(), manualSlot)
}
