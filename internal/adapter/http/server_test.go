package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moorwatch/wildfire-data-service/internal/domain"
)

type stubRisk struct {
	result domain.RiskResult
	err    error
	got    domain.Coordinate
}

func (s *stubRisk) Resolve(_ context.Context, coord domain.Coordinate) (domain.RiskResult, error) {
	s.got = coord
	return s.result, s.err
}

type stubFires struct {
	set domain.IncidentSet
	err error
}

func (s *stubFires) Resolve(_ context.Context, _ domain.BoundingBox) (domain.IncidentSet, error) {
	return s.set, s.err
}

type stubLocation struct {
	loc domain.ResolvedLocation
}

func (s *stubLocation) Resolve(_ context.Context) domain.ResolvedLocation {
	return s.loc
}

func newTestServer(risk RiskResolver, fires FiresResolver, location LocationResolver, ready ReadinessChecker) *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if risk == nil {
		risk = &stubRisk{}
	}
	if fires == nil {
		fires = &stubFires{set: domain.IncidentSet{Incidents: []domain.Incident{}}}
	}
	if location == nil {
		location = &stubLocation{}
	}
	if ready == nil {
		ready = ReadinessFunc(func(context.Context) error { return nil })
	}
	return NewServer(":0", risk, fires, location, ready, logger)
}

func TestHandleRisk_Success(t *testing.T) {
	risk := &stubRisk{result: domain.RiskResult{
		Level:     domain.RiskHigh,
		Source:    domain.FreshnessLive,
		QueriedAt: time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC),
	}}
	s := newTestServer(risk, nil, nil, nil)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/risk?lat=56.82&lon=-5.11", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var got domain.RiskResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, domain.RiskHigh, got.Level)
	assert.Equal(t, domain.FreshnessLive, got.Source)

	assert.InDelta(t, 56.82, risk.got.Lat, 1e-9)
	assert.InDelta(t, -5.11, risk.got.Lon, 1e-9)
}

func TestHandleRisk_MissingParams(t *testing.T) {
	s := newTestServer(nil, nil, nil, nil)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/risk?lat=56.82", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleRisk_InvalidCoordinate(t *testing.T) {
	risk := &stubRisk{err: fmt.Errorf("latitude 91 out of range: %w", domain.ErrInvalidInput)}
	s := newTestServer(risk, nil, nil, nil)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/risk?lat=91&lon=0", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "out of range")
}

func TestHandleFires_Success(t *testing.T) {
	fires := &stubFires{set: domain.IncidentSet{
		Incidents: []domain.Incident{{ID: "hs-1", Coordinate: domain.Coordinate{Lat: 57.1, Lon: -4.7}}},
		Source:    domain.FreshnessCached,
		QueriedAt: time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC),
	}}
	s := newTestServer(nil, fires, nil, nil)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/v1/fires?min_lat=56.5&min_lon=-5.5&max_lat=57.5&max_lon=-4.0", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got domain.IncidentSet
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Incidents, 1)
	assert.Equal(t, "hs-1", got.Incidents[0].ID)
	assert.Equal(t, domain.FreshnessCached, got.Source)
}

func TestHandleFires_MissingParams(t *testing.T) {
	s := newTestServer(nil, nil, nil, nil)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/fires?min_lat=56.5&min_lon=-5.5", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleLocation(t *testing.T) {
	loc := &stubLocation{loc: domain.ResolvedLocation{
		Coordinate: domain.DefaultCoordinate,
		Source:     domain.FreshnessDefault,
	}}
	s := newTestServer(nil, nil, loc, nil)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/location", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got domain.ResolvedLocation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, domain.FreshnessDefault, got.Source)
	assert.InDelta(t, domain.DefaultCoordinate.Lat, got.Coordinate.Lat, 1e-9)
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(nil, nil, nil, nil)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestHandleReady_NotReady(t *testing.T) {
	ready := ReadinessFunc(func(context.Context) error { return errors.New("redis unreachable") })
	s := newTestServer(nil, nil, nil, ready)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
}

func TestHandleReady_OK(t *testing.T) {
	s := newTestServer(nil, nil, nil, nil)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(nil, nil, nil, nil)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/risk?lat=1&lon=1", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
