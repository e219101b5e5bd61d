package sepa

import (
	"context"
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

func testClient(baseURL string) *Client {
	return NewClient(baseURL, 5*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestClient_FetchRisk_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/danger", r.URL.Path)
		assert.Equal(t, "56.8170", r.URL.Query().Get("lat"))
		assert.Equal(t, "-4.1830", r.URL.Query().Get("lon"))
		io.WriteString(w, `{"rating":"Very High"}`)
	}))
	defer srv.Close()

	level, err := testClient(srv.URL).FetchRisk(context.Background(), domain.Coordinate{Lat: 56.817, Lon: -4.183})
	require.NoError(t, err)
	assert.Equal(t, domain.RiskVeryHigh, level)
}

func TestClient_FetchRisk_UnknownRating(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `{"rating":"apocalyptic"}`)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchRisk(context.Background(), domain.Coordinate{Lat: 56.8, Lon: -4.1})
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
}

func TestClient_FetchRisk_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchRisk(context.Background(), domain.Coordinate{Lat: 56.8, Lon: -4.1})
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
}
