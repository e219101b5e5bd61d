// Package sepa implements the secondary regional risk provider: locally
// calibrated fire danger assessments covering mainland Scotland. Consulted
// only when the primary EFFIS tier fails and the coordinate is inside the
// mainland sub-region.
package sepa

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/moorwatch/wildfire-data-service/internal/domain"
)

// ratings maps the provider's wordy assessment labels to danger classes.
var ratings = map[string]domain.RiskLevel{
	"very low":  domain.RiskVeryLow,
	"low":       domain.RiskLow,
	"moderate":  domain.RiskModerate,
	"high":      domain.RiskHigh,
	"very high": domain.RiskVeryHigh,
	"extreme":   domain.RiskExtreme,
}

// Client implements domain.RiskProvider against the regional danger API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a regional danger client.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (c *Client) Name() string { return "sepa" }

// FetchRisk returns the regional danger assessment for a coordinate.
func (c *Client) FetchRisk(ctx context.Context, coord domain.Coordinate) (domain.RiskLevel, error) {
	params := url.Values{
		"lat": {fmt.Sprintf("%.4f", coord.Lat)},
		"lon": {fmt.Sprintf("%.4f", coord.Lon)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/danger?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("%w: regional request: %v", domain.ErrProviderTimeout, err)
		}
		return "", fmt.Errorf("%w: regional request: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: regional status %d: %s", domain.ErrProviderUnavailable, resp.StatusCode, body)
	}

	var payload struct {
		Rating string `json:"rating"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("%w: decode regional response: %v", domain.ErrProviderUnavailable, err)
	}

	level, ok := ratings[strings.ToLower(strings.TrimSpace(payload.Rating))]
	if !ok {
		c.logger.Warn("regional provider returned unmapped rating", "rating", payload.Rating)
		return "", fmt.Errorf("%w: unknown regional rating %q", domain.ErrProviderUnavailable, payload.Rating)
	}
	return level, nil
}
