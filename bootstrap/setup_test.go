package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/va6996/travelingman-mcp/config"
	"github.com/va6996/travelingman-mcp/orm"
	"github.com/va6996/travelingman-mcp/plugins/amadeus"
	"github.com/va6996/travelingman-mcp/plugins/tavily"
	"github.com/va6996/travelingman-mcp/plugins/websearch"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Server:  config.ServerConfig{Port: "0", OutputDir: t.TempDir(), PDFFileName: "trip_summary.pdf"},
		Amadeus: config.AmadeusConfig{FlightLimit: 4, HotelLimit: 20, Currency: "USD"},
		Search: config.SearchConfig{
			BaseURL:         "https://www.google.com",
			MaxAttempts:     1,
			MaxResults:      5,
			ResultSelectors: config.DefaultResultSelectors(),
		},
		Cache: config.CacheConfig{Driver: "none"},
	}
}

func TestSetup_WithoutCredentials(t *testing.T) {
	app, err := Setup(context.Background(), testConfig(t))
	require.NoError(t, err)
	defer app.Close()

	assert.Nil(t, app.Amadeus)
	assert.Equal(t, []string{"create_trip_pdf", "google_search", "search_flights", "search_hotels"}, app.Registry.GetTools())

	_, err = app.Registry.ExecuteTool(context.Background(), "search_flights", map[string]interface{}{"adult_count": 1})
	assert.ErrorContains(t, err, "not configured")

	rec := httptest.NewRecorder()
	app.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSetup_CacheDrivers(t *testing.T) {
	cfg := testConfig(t)
	cfg.Amadeus.ClientID = "id"
	cfg.Amadeus.ClientSecret = "secret"

	cfg.Cache = config.CacheConfig{Driver: "memory", TTL: 60}
	app, err := Setup(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, app.Amadeus)
	assert.IsType(t, &amadeus.MemoryCache{}, app.Amadeus.Cache)
	app.Close()

	cfg.Cache = config.CacheConfig{Driver: "sqlite", DSN: "file:bootstrap_test?mode=memory&cache=shared", TTL: 60}
	app, err = Setup(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &orm.Store{}, app.Amadeus.Cache)
	assert.NoError(t, app.Close())

	cfg.Cache = config.CacheConfig{Driver: "none"}
	app, err = Setup(context.Background(), cfg)
	require.NoError(t, err)
	assert.Nil(t, app.Amadeus.Cache)
}

func TestNewSearch(t *testing.T) {
	cfg := testConfig(t).Search
	assert.IsType(t, &websearch.Searcher{}, newSearch(context.Background(), cfg))

	cfg.Provider = "tavily"
	cfg.Tavily = config.TavilyConfig{APIKey: "key", BaseURL: "https://api.tavily.com"}
	assert.IsType(t, &tavily.Client{}, newSearch(context.Background(), cfg))
}
