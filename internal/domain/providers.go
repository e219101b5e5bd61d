package domain

import "context"

// PositionProvider abstracts the platform positioning service (GPS, fused
// location, browser geolocation). Available lets headless contexts opt out
// so the live tier is skipped deterministically instead of waiting out its
// timeout.
type PositionProvider interface {
	// Available reports whether live positioning is structurally possible
	// in this process (hardware present, platform API reachable).
	Available() bool

	// CurrentPosition returns the device position. Fails with
	// ErrProviderUnavailable on permission denial or provider errors;
	// the caller bounds it with a context deadline.
	CurrentPosition(ctx context.Context) (Coordinate, error)
}

// RiskProvider abstracts an upstream fire-danger source (EFFIS, regional).
type RiskProvider interface {
	Name() string
	FetchRisk(ctx context.Context, coord Coordinate) (RiskLevel, error)
}

// IncidentProvider abstracts an upstream active-fires source.
type IncidentProvider interface {
	Name() string
	FetchIncidents(ctx context.Context, bbox BoundingBox) ([]Incident, error)
}

// CoordinatePrompter is the UI-layer manual-entry collaborator. Synchronous
// from the core's perspective; ok=false means the user declined.
type CoordinatePrompter interface {
	PromptForCoordinate() (coord Coordinate, ok bool)
}

// IncidentPublisher receives live-fetched incidents for downstream fan-out
// (alerting, analytics). Best-effort: resolution never waits on it failing.
type IncidentPublisher interface {
	PublishIncidents(ctx context.Context, incidents []Incident) error
}
