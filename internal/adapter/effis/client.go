// Package effis implements the primary upstream providers against the EFFIS
// (European Forest Fire Information System) WFS endpoint: Fire Weather
// Index danger classes for a point and MODIS/VIIRS hotspot detections for a
// viewport.
package effis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/moorwatch/wildfire-data-service/internal/domain"
	"github.com/moorwatch/wildfire-data-service/internal/geo"
)

// FWI danger class thresholds, per the EFFIS harmonized scale.
var fwiThresholds = []struct {
	max   float64
	level domain.RiskLevel
}{
	{5.2, domain.RiskVeryLow},
	{11.2, domain.RiskLow},
	{21.3, domain.RiskModerate},
	{38.0, domain.RiskHigh},
	{50.0, domain.RiskVeryHigh},
}

// Client talks to the EFFIS WFS endpoint. It implements both
// domain.RiskProvider and domain.IncidentProvider.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates an EFFIS client. EFFIS rejects requests without a
// distinctive User-Agent, so one is mandatory.
func NewClient(baseURL, userAgent string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Name implements the provider interfaces.
func (c *Client) Name() string { return "effis" }

// FetchRisk queries the fire danger forecast layer for the cell containing
// the coordinate and maps its FWI value to a danger class.
func (c *Client) FetchRisk(ctx context.Context, coord domain.Coordinate) (domain.RiskLevel, error) {
	// A small padding box around the point; WFS point-on-cell queries are
	// unreliable across layer reprojections.
	const pad = 0.05
	params := wfsParams("effis:fire_danger_forecast")
	params.Set("bbox", fmt.Sprintf("%f,%f,%f,%f,EPSG:4326",
		coord.Lon-pad, coord.Lat-pad, coord.Lon+pad, coord.Lat+pad))
	params.Set("count", "1")

	var resp fwiResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return "", err
	}
	if len(resp.Features) == 0 {
		return "", fmt.Errorf("%w: no danger forecast for %s", domain.ErrProviderUnavailable, geo.Redact(coord))
	}
	return classifyFWI(resp.Features[0].Properties.FWI), nil
}

// FetchIncidents queries the active-fire hotspot layer for a viewport.
func (c *Client) FetchIncidents(ctx context.Context, bbox domain.BoundingBox) ([]domain.Incident, error) {
	params := wfsParams("ms:modis.hs")
	params.Set("bbox", fmt.Sprintf("%f,%f,%f,%f,EPSG:4326",
		bbox.MinLon, bbox.MinLat, bbox.MaxLon, bbox.MaxLat))

	var resp hotspotResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return nil, err
	}
	c.logger.Debug("effis hotspots fetched", "features", len(resp.Features))

	incidents := make([]domain.Incident, 0, len(resp.Features))
	for _, f := range resp.Features {
		if len(f.Geometry.Coordinates) != 2 {
			continue
		}
		coord, err := domain.NewCoordinate(f.Geometry.Coordinates[1], f.Geometry.Coordinates[0])
		if err != nil {
			continue
		}
		id := f.ID
		if id == "" {
			// Some layer versions omit feature IDs; synthesize one so
			// downstream de-duplication and feed keys still work.
			id = uuid.NewString()
		}
		incidents = append(incidents, domain.Incident{
			ID:         id,
			Coordinate: coord,
			AreaHa:     f.Properties.AreaHa,
			DetectedAt: parseFireDate(f.Properties.FireDate),
			Sensor:     f.Properties.Sensor,
		})
	}
	return incidents, nil
}

func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("%w: effis request: %v", domain.ErrProviderTimeout, err)
		}
		return fmt.Errorf("%w: effis request: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: effis status %d: %s", domain.ErrProviderUnavailable, resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode effis response: %v", domain.ErrProviderUnavailable, err)
	}
	return nil
}

func wfsParams(typeName string) url.Values {
	return url.Values{
		"service":      {"WFS"},
		"version":      {"2.0.0"},
		"request":      {"GetFeature"},
		"typeName":     {typeName},
		"outputFormat": {"application/json"},
		"srsName":      {"EPSG:4326"},
	}
}

func classifyFWI(fwi float64) domain.RiskLevel {
	for _, t := range fwiThresholds {
		if fwi < t.max {
			return t.level
		}
	}
	return domain.RiskExtreme
}

func parseFireDate(s string) time.Time {
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// EFFIS WFS GeoJSON response types.

type fwiResponse struct {
	Features []struct {
		Properties struct {
			FWI float64 `json:"fwi"`
		} `json:"properties"`
	} `json:"features"`
}

type hotspotResponse struct {
	Features []struct {
		ID       string `json:"id"`
		Geometry struct {
			Coordinates []float64 `json:"coordinates"` // [lon, lat]
		} `json:"geometry"`
		Properties struct {
			FireDate string  `json:"firedate"`
			AreaHa   float64 `json:"area_ha"`
			Sensor   string  `json:"sensor"`
		} `json:"properties"`
	} `json:"features"`
}
