package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config aggregates all application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Amadeus AmadeusConfig `yaml:"amadeus"`
	Search  SearchConfig  `yaml:"search"`
	Cache   CacheConfig   `yaml:"cache"`
	Log     LogConfig     `yaml:"log"`
}

type ServerConfig struct {
	Port        string `yaml:"port" env:"PORT" env-default:"8000"`
	OutputDir   string `yaml:"output_dir" env:"OUTPUT_DIR" env-default:"output"`
	PDFFileName string `yaml:"pdf_file_name" env:"PDF_FILE_NAME" env-default:"trip_summary.pdf"`
}

type AmadeusConfig struct {
	ClientID     string        `yaml:"client_id" env:"AMADEUS_CLIENT_ID"`
	ClientSecret string        `yaml:"client_secret" env:"AMADEUS_CLIENT_SECRET"`
	Production   bool          `yaml:"production" env:"AMADEUS_PRODUCTION" env-default:"false"`
	Timeout      time.Duration `yaml:"timeout" env:"AMADEUS_TIMEOUT" env-default:"30s"`
	FlightLimit  int           `yaml:"flight_limit" env:"AMADEUS_FLIGHT_LIMIT" env-default:"4"`
	HotelLimit   int           `yaml:"hotel_limit" env:"AMADEUS_HOTEL_LIMIT" env-default:"20"`
	Currency     string        `yaml:"currency" env:"AMADEUS_CURRENCY" env-default:"USD"`
}

// SearchConfig drives the browser-based web search. The selector lists
// track the engine's markup and are expected to change over time, so they
// live in config.yaml rather than in code.
type SearchConfig struct {
	Provider          string         `yaml:"provider" env:"SEARCH_PROVIDER" env-default:"browser"`
	BaseURL           string         `yaml:"base_url" env:"SEARCH_BASE_URL" env-default:"https://www.google.com"`
	MaxAttempts       int            `yaml:"max_attempts" env:"SEARCH_MAX_ATTEMPTS" env-default:"2"`
	RetryDelay        time.Duration  `yaml:"retry_delay" env:"SEARCH_RETRY_DELAY" env-default:"5s"`
	NavigationTimeout time.Duration  `yaml:"navigation_timeout" env:"SEARCH_NAVIGATION_TIMEOUT" env-default:"15s"`
	SettleDelay       time.Duration  `yaml:"settle_delay" env:"SEARCH_SETTLE_DELAY" env-default:"3s"`
	MaxResults        int            `yaml:"max_results" env:"SEARCH_MAX_RESULTS" env-default:"5"`
	UserAgent         string         `yaml:"user_agent" env:"SEARCH_USER_AGENT" env-default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"`
	ChromePath        string         `yaml:"chrome_path" env:"CHROME_PATH"`
	ResultSelectors   []SelectorRule `yaml:"result_selectors"`
	TitleSelectors    []string       `yaml:"title_selectors"`
	SnippetSelectors  []string       `yaml:"snippet_selectors"`
	Tavily            TavilyConfig   `yaml:"tavily"`
}

// TavilyConfig is used when search.provider is "tavily".
type TavilyConfig struct {
	APIKey      string        `yaml:"api_key" env:"TAVILY_API_KEY"`
	BaseURL     string        `yaml:"base_url" env:"TAVILY_BASE_URL" env-default:"https://api.tavily.com"`
	Timeout     time.Duration `yaml:"timeout" env:"TAVILY_TIMEOUT" env-default:"30s"`
	SearchDepth string        `yaml:"search_depth" env:"TAVILY_SEARCH_DEPTH" env-default:"basic"`
}

// SelectorRule is one result-container candidate. An element matched by
// Selector counts only if Require matches something inside it.
type SelectorRule struct {
	Selector string `yaml:"selector"`
	Require  string `yaml:"require"`
}

type CacheConfig struct {
	Driver string        `yaml:"driver" env:"CACHE_DRIVER" env-default:"none"`
	DSN    string        `yaml:"dsn" env:"CACHE_DSN"`
	TTL    time.Duration `yaml:"ttl" env:"CACHE_TTL" env-default:"15m"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

const defaultRequire = "h3, h1, h2, a"

// DefaultResultSelectors is the built-in container fallback order.
func DefaultResultSelectors() []SelectorRule {
	sels := []string{"div.g", "div.MjjYud", "div.kvH3mc", "[data-ved]", "div[data-hveid]", "div:has(h3)", ".tF2Cxc"}
	rules := make([]SelectorRule, len(sels))
	for i, s := range sels {
		rules[i] = SelectorRule{Selector: s, Require: defaultRequire}
	}
	return rules
}

// DefaultTitleSelectors lists heading candidates in priority order.
func DefaultTitleSelectors() []string {
	return []string{"h3", "h1", "h2", "[role='heading']"}
}

// DefaultSnippetSelectors lists description candidates in priority order.
func DefaultSnippetSelectors() []string {
	return []string{".VwiC3b", ".s3v9rd", ".hgKElc", ".IsZvec", "span:not(:has(a))", "div:not(:has(h3)):not(:has(a))"}
}

// Load reads configuration from the file named by CONFIG_PATH (default
// config.yaml) and environment variables.
// Priority: Env Vars > Config File > Defaults
func Load() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	return LoadFile(path)
}

// LoadFile is Load with an explicit file path. A missing file is not an
// error; a malformed one is.
func LoadFile(path string) (*Config, error) {
	var cfg Config

	if _, statErr := os.Stat(path); statErr == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read env config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if len(c.Search.ResultSelectors) == 0 {
		c.Search.ResultSelectors = DefaultResultSelectors()
	}
	for i := range c.Search.ResultSelectors {
		if c.Search.ResultSelectors[i].Require == "" {
			c.Search.ResultSelectors[i].Require = defaultRequire
		}
	}
	if len(c.Search.TitleSelectors) == 0 {
		c.Search.TitleSelectors = DefaultTitleSelectors()
	}
	if len(c.Search.SnippetSelectors) == 0 {
		c.Search.SnippetSelectors = DefaultSnippetSelectors()
	}
}

// Validate rejects values no component can work with. Credentials are
// checked by bootstrap, so tools that do not need them still start.
func (c *Config) Validate() error {
	if c.Search.MaxAttempts < 1 {
		return fmt.Errorf("search.max_attempts must be at least 1, got %d", c.Search.MaxAttempts)
	}
	if c.Search.MaxResults < 1 {
		return fmt.Errorf("search.max_results must be at least 1, got %d", c.Search.MaxResults)
	}
	if c.Amadeus.FlightLimit < 1 {
		return fmt.Errorf("amadeus.flight_limit must be at least 1, got %d", c.Amadeus.FlightLimit)
	}
	if c.Amadeus.HotelLimit < 1 {
		return fmt.Errorf("amadeus.hotel_limit must be at least 1, got %d", c.Amadeus.HotelLimit)
	}
	switch c.Search.Provider {
	case "browser", "tavily":
	default:
		return fmt.Errorf("unknown search provider %q", c.Search.Provider)
	}
	switch c.Cache.Driver {
	case "none", "memory":
	case "sqlite", "postgres":
		if c.Cache.DSN == "" {
			return fmt.Errorf("cache.dsn is required for driver %q", c.Cache.Driver)
		}
	default:
		return fmt.Errorf("unknown cache driver %q", c.Cache.Driver)
	}
	return nil
}
