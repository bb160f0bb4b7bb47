// Package tavily answers web queries through the Tavily search API. It is
// the alternative to the headless-browser scraper when search.provider is
// "tavily".
package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/va6996/travelingman-mcp/config"
	"github.com/va6996/travelingman-mcp/log"
	"github.com/va6996/travelingman-mcp/plugins/websearch"
	"github.com/va6996/travelingman-mcp/retry"
)

// Client is the Tavily API client
type Client struct {
	apiKey      string
	baseURL     string
	searchDepth string
	maxResults  int
	httpClient  *http.Client
	policy      retry.Policy
}

// NewClient creates a new Tavily client
func NewClient(cfg config.SearchConfig) *Client {
	if cfg.Tavily.APIKey == "" {
		log.Warn(context.Background(), "Tavily API key is empty, web search will fail until TAVILY_API_KEY is set")
	}
	return &Client{
		apiKey:      cfg.Tavily.APIKey,
		baseURL:     strings.TrimRight(cfg.Tavily.BaseURL, "/"),
		searchDepth: cfg.Tavily.SearchDepth,
		maxResults:  cfg.MaxResults,
		httpClient:  &http.Client{Timeout: cfg.Tavily.Timeout},
		policy: retry.Policy{
			MaxAttempts: cfg.MaxAttempts,
			Delay:       cfg.RetryDelay,
			Retryable:   retryable,
		},
	}
}

// SearchRequest represents a Tavily search request
type SearchRequest struct {
	Query       string `json:"query"`
	SearchDepth string `json:"search_depth,omitempty"`
	MaxResults  int    `json:"max_results,omitempty"`
	Topic       string `json:"topic,omitempty"`
}

// SearchResult represents a single search result
type SearchResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// SearchResponse represents the Tavily search response
type SearchResponse struct {
	Query     string         `json:"query"`
	Results   []SearchResult `json:"results"`
	RequestID string         `json:"request_id"`
}

// StatusError is a non-2xx answer from the API.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return "API returned status " + e.Status
}

func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusTooManyRequests || se.StatusCode >= 500
	}
	return true
}

// Raw performs one Tavily search call.
func (c *Client) Raw(ctx context.Context, req *SearchRequest) (*SearchResponse, error) {
	if req.SearchDepth == "" {
		req.SearchDepth = "basic"
	}
	if req.MaxResults == 0 {
		req.MaxResults = 5
	}
	if req.Topic == "" {
		req.Topic = "general"
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	log.Debugf(ctx, "[Tavily] Sending search request: query=%s, depth=%s, max_results=%d", req.Query, req.SearchDepth, req.MaxResults)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	var searchResp SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &searchResp, nil
}

// Search returns formatted results in the same shape as the browser
// scraper. Failures after the last attempt come back as a diagnostic
// message; an error is returned only for an empty query or a cancelled
// context.
func (c *Client) Search(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", fmt.Errorf("query is required")
	}

	var resp *SearchResponse
	policy := c.policy
	policy.OnRetry = func(attempt int, err error) {
		log.Warnf(ctx, "[Tavily] attempt %d for %q failed: %v", attempt, query, err)
	}
	err := policy.Do(ctx, func(ctx context.Context, _ int) error {
		var err error
		resp, err = c.Raw(ctx, &SearchRequest{Query: query, SearchDepth: c.searchDepth, MaxResults: c.maxResults})
		return err
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		log.Errorf(ctx, "[Tavily] search for %q failed: %v", query, err)
		return "Search failed after all attempts: " + err.Error(), nil
	}

	results := make([]websearch.Result, 0, len(resp.Results))
	for _, r := range resp.Results {
		title := strings.TrimSpace(r.Title)
		if len([]rune(title)) <= 3 {
			continue
		}
		results = append(results, websearch.Result{Title: title, URL: r.URL, Description: r.Content})
		if len(results) == c.maxResults {
			break
		}
	}
	if len(results) == 0 {
		return "No valid search results could be extracted after all attempts.", nil
	}

	log.Debugf(ctx, "[Tavily] Search completed successfully: %d results found", len(results))
	return websearch.Format(results), nil
}
