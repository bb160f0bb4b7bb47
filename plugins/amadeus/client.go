package amadeus

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/va6996/travelingman-mcp/config"
	"github.com/va6996/travelingman-mcp/log"
)

const (
	BaseURLTest       = "https://test.api.amadeus.com"
	BaseURLProduction = "https://api.amadeus.com"
)

// Client is the Amadeus Self-Service API client used by the flight and
// hotel adapters. It is safe for concurrent use.
type Client struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	HTTPClient   *http.Client
	Currency     string
	Limits       struct {
		Flight int
		Hotel  int
	}

	Cache    ResponseCache
	CacheTTL time.Duration

	mu    sync.Mutex
	token *AuthToken
}

// AuthToken represents the OAuth2 token response
type AuthToken struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
	Expiry      time.Time
}

// APIError is returned when Amadeus answers with a non-success status.
type APIError struct {
	Endpoint   string
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("amadeus %s: %s", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("amadeus %s: %s: %s", e.Endpoint, e.Status, e.Body)
}

const maxErrorBody = 512

// NewClient builds a client from explicit configuration. cache may be nil.
func NewClient(cfg config.AmadeusConfig, cache ResponseCache, cacheTTL time.Duration) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("amadeus client id and secret are required")
	}

	baseURL := BaseURLTest
	if cfg.Production {
		baseURL = BaseURLProduction
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	c := &Client{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		BaseURL:      baseURL,
		HTTPClient:   &http.Client{Timeout: timeout},
		Currency:     cfg.Currency,
		Cache:        cache,
		CacheTTL:     cacheTTL,
	}
	if c.Currency == "" {
		c.Currency = "USD"
	}
	c.Limits.Flight = cfg.FlightLimit
	c.Limits.Hotel = cfg.HotelLimit
	if c.Limits.Flight <= 0 {
		c.Limits.Flight = 4
	}
	if c.Limits.Hotel <= 0 {
		c.Limits.Hotel = 20
	}
	return c, nil
}

// Authenticate fetches a fresh client-credentials token.
func (c *Client) Authenticate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authenticateLocked(ctx)
}

func (c *Client) authenticateLocked(ctx context.Context) error {
	data := url.Values{}
	data.Set("grant_type", "client_credentials")
	data.Set("client_id", c.ClientID)
	data.Set("client_secret", c.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/security/oauth2/token", strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("authentication failed: %w", newAPIError("/v1/security/oauth2/token", resp))
	}

	var token AuthToken
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return fmt.Errorf("failed to decode token: %w", err)
	}

	// Subtract 10 seconds so a token is never used right at its expiry.
	token.Expiry = time.Now().Add(time.Duration(token.ExpiresIn)*time.Second - 10*time.Second)
	c.token = &token
	return nil
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == nil || time.Now().After(c.token.Expiry) {
		if err := c.authenticateLocked(ctx); err != nil {
			return "", fmt.Errorf("failed to refresh token: %w", err)
		}
	}
	return c.token.AccessToken, nil
}

// do performs an authenticated request and decodes the JSON response into
// out. Successful responses are served from and stored in the cache when
// one is configured.
func (c *Client) do(ctx context.Context, method, endpoint string, body interface{}, out interface{}) error {
	var reqBody []byte
	if body != nil {
		var err error
		reqBody, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	key := cacheKey(method, endpoint, reqBody)
	if c.Cache != nil {
		if raw, ok := c.Cache.Get(ctx, key); ok {
			log.Debugf(ctx, "Amadeus cache hit: %s %s", method, endpoint)
			return json.Unmarshal(raw, out)
		}
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method == http.MethodPost {
		// POST flight-offer search is a GET with a body as far as Amadeus is concerned.
		req.Header.Set("X-HTTP-Method-Override", http.MethodGet)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		log.Errorf(ctx, "Amadeus API request failed: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(pathOf(endpoint), resp)
		log.Errorf(ctx, "Amadeus API returned status %s for %s", resp.Status, pathOf(endpoint))
		return apiErr
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if c.Cache != nil {
		c.Cache.Set(ctx, key, raw, c.CacheTTL)
	}
	return nil
}

func newAPIError(endpoint string, resp *http.Response) *APIError {
	excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &APIError{
		Endpoint:   endpoint,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       strings.TrimSpace(string(excerpt)),
	}
}

func pathOf(endpoint string) string {
	if i := strings.IndexByte(endpoint, '?'); i >= 0 {
		return endpoint[:i]
	}
	return endpoint
}

func cacheKey(method, endpoint string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{0})
	h.Write([]byte(endpoint))
	h.Write([]byte{0})
	h.Write(body)
	return "amadeus:" + hex.EncodeToString(h.Sum(nil))
}
