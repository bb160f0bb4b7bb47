package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	v1 "github.com/va6996/travelingman-mcp/apis/v1"
	"github.com/va6996/travelingman-mcp/config"
	"github.com/va6996/travelingman-mcp/log"
	"github.com/va6996/travelingman-mcp/orm"
	"github.com/va6996/travelingman-mcp/plugins"
	"github.com/va6996/travelingman-mcp/plugins/amadeus"
	"github.com/va6996/travelingman-mcp/plugins/tavily"
	"github.com/va6996/travelingman-mcp/plugins/tripdoc"
	"github.com/va6996/travelingman-mcp/plugins/websearch"
	"github.com/va6996/travelingman-mcp/tools"
)

const (
	serverName    = "travel-agent-mcp-server"
	serverVersion = "v1.0.0"
	downloadPath  = "/download/"
)

// App holds the initialized components of the application
type App struct {
	Registry *tools.Registry
	Amadeus  *amadeus.Client
	Handler  http.Handler
	closers  []func() error
}

// Close releases resources opened by Setup.
func (a *App) Close() error {
	var firstErr error
	for _, c := range a.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Setup initializes the application components based on the configuration
func Setup(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{}

	// 1. Response cache
	cache, err := newCache(ctx, cfg.Cache, app)
	if err != nil {
		return nil, err
	}

	// 2. Adapters
	travel := &tools.TravelTools{DownloadAt: downloadPath}

	if cfg.Amadeus.ClientID == "" || cfg.Amadeus.ClientSecret == "" {
		log.Warn(ctx, "AMADEUS_CLIENT_ID and AMADEUS_CLIENT_SECRET are not set; flight and hotel search are disabled")
	} else {
		client, err := amadeus.NewClient(cfg.Amadeus, cache, cfg.Cache.TTL)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to initialize Amadeus client: %w", err)
		}
		app.Amadeus = client
		travel.Flights = client
		travel.Hotels = client
		log.Infof(ctx, "Amadeus client ready (%s)", client.BaseURL)
	}

	travel.Search = newSearch(ctx, cfg.Search)
	travel.Docs = tripdoc.NewWriter(cfg.Server.OutputDir, cfg.Server.PDFFileName)

	// 3. Tools and transport
	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	app.Registry = tools.NewRegistry(server)
	travel.RegisterTools(app.Registry)
	log.Infof(ctx, "Registered tools: %v", app.Registry.GetTools())

	app.Handler = v1.NewRouter(server, cfg.Server.OutputDir)
	return app, nil
}

func newCache(ctx context.Context, cfg config.CacheConfig, app *App) (amadeus.ResponseCache, error) {
	switch cfg.Driver {
	case "", "none":
		return nil, nil
	case "memory":
		log.Infof(ctx, "Using in-memory response cache (ttl %s)", cfg.TTL)
		return amadeus.NewMemoryCache(), nil
	default:
		db, err := orm.Open(cfg.Driver, cfg.DSN)
		if err != nil {
			return nil, err
		}
		if sqlDB, err := db.DB(); err == nil {
			app.closers = append(app.closers, sqlDB.Close)
		}
		log.Infof(ctx, "Using %s response cache (ttl %s)", cfg.Driver, cfg.TTL)
		return orm.NewStore(db), nil
	}
}

func newSearch(ctx context.Context, cfg config.SearchConfig) plugins.SearchClient {
	if cfg.Provider == "tavily" {
		log.Infof(ctx, "Web search uses the Tavily API (%s)", cfg.Tavily.BaseURL)
		return tavily.NewClient(cfg)
	}
	log.Infof(ctx, "Web search uses a headless browser against %s", cfg.BaseURL)
	return websearch.NewSearcher(cfg, websearch.NewChromeBrowser(cfg))
}
