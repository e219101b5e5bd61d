// Package http exposes the resolution core over HTTP: the three resolve
// endpoints plus health, readiness, and metrics.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/moorwatch/wildfire-data-service/internal/domain"
)

// RiskResolver produces a tagged risk result for a coordinate.
type RiskResolver interface {
	Resolve(ctx context.Context, coord domain.Coordinate) (domain.RiskResult, error)
}

// FiresResolver produces a tagged incident set for a viewport.
type FiresResolver interface {
	Resolve(ctx context.Context, bbox domain.BoundingBox) (domain.IncidentSet, error)
}

// LocationResolver produces a tagged device location.
type LocationResolver interface {
	Resolve(ctx context.Context) domain.ResolvedLocation
}

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// ReadinessFunc adapts a plain function to ReadinessChecker.
type ReadinessFunc func(ctx context.Context) error

func (f ReadinessFunc) CheckReadiness(ctx context.Context) error { return f(ctx) }

// Server wires the resolvers to HTTP routes.
type Server struct {
	httpServer *http.Server
	risk       RiskResolver
	fires      FiresResolver
	location   LocationResolver
	logger     *slog.Logger
}

// NewServer creates the API server.
func NewServer(addr string, risk RiskResolver, fires FiresResolver, location LocationResolver, ready ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      requestLogging(logger, mux),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		risk:     risk,
		fires:    fires,
		location: location,
		logger:   logger,
	}

	mux.HandleFunc("GET /v1/risk", s.handleRisk)
	mux.HandleFunc("GET /v1/fires", s.handleFires)
	mux.HandleFunc("GET /v1/location", s.handleLocation)
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleRisk(w http.ResponseWriter, r *http.Request) {
	lat, err1 := parseFloat(r, "lat")
	lon, err2 := parseFloat(r, "lon")
	if err1 != nil || err2 != nil {
		writeError(w, http.StatusBadRequest, "lat and lon are required numbers")
		return
	}

	result, err := s.risk.Resolve(r.Context(), domain.Coordinate{Lat: lat, Lon: lon})
	if err != nil {
		writeResolveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleFires(w http.ResponseWriter, r *http.Request) {
	minLat, err1 := parseFloat(r, "min_lat")
	minLon, err2 := parseFloat(r, "min_lon")
	maxLat, err3 := parseFloat(r, "max_lat")
	maxLon, err4 := parseFloat(r, "max_lon")
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		writeError(w, http.StatusBadRequest, "min_lat, min_lon, max_lat, max_lon are required numbers")
		return
	}

	set, err := s.fires.Resolve(r.Context(), domain.BoundingBox{
		MinLat: minLat, MinLon: minLon, MaxLat: maxLat, MaxLon: maxLon,
	})
	if err != nil {
		writeResolveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (s *Server) handleLocation(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.location.Resolve(r.Context()))
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// requestLogging tags each request with an ID and logs method, path, and
// duration. Query strings are deliberately excluded: they carry raw
// coordinates.
func requestLogging(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(w, r)

		logger.Debug("request handled",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func parseFloat(r *http.Request, name string) (float64, error) {
	return strconv.ParseFloat(r.URL.Query().Get(name), 64)
}

func writeResolveError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrInvalidInput) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	// Unreachable with a configured synthetic tier; kept so a
	// misconfigured chain fails loudly instead of silently.
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
