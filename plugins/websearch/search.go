// Package websearch answers free-text queries by rendering a search engine
// results page in a headless browser and scraping it.
package websearch

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/va6996/travelingman-mcp/config"
	"github.com/va6996/travelingman-mcp/log"
	"github.com/va6996/travelingman-mcp/retry"
)

var (
	ErrBlocked        = errors.New("search engine verification page")
	ErrNoResults      = errors.New("no result containers matched")
	ErrNoValidResults = errors.New("no result had a usable title")
)

// Searcher runs scrapes under a bounded retry policy.
type Searcher struct {
	browser   Browser
	extractor *Extractor
	baseURL   string
	policy    retry.Policy
}

func NewSearcher(cfg config.SearchConfig, browser Browser) *Searcher {
	return &Searcher{
		browser: browser,
		extractor: &Extractor{
			Results:    cfg.ResultSelectors,
			Titles:     cfg.TitleSelectors,
			Snippets:   cfg.SnippetSelectors,
			MaxResults: cfg.MaxResults,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		policy: retry.Policy{
			MaxAttempts: cfg.MaxAttempts,
			Delay:       cfg.RetryDelay,
		},
	}
}

// SearchURL builds the results-page address for query.
func (s *Searcher) SearchURL(query string) string {
	q := url.Values{}
	q.Set("q", query)
	q.Set("hl", "en")
	q.Set("num", "10")
	return s.baseURL + "/search?" + q.Encode()
}

// Search returns formatted results, or a diagnostic message when every
// attempt failed. An error is returned only for an empty query or a
// cancelled context.
func (s *Searcher) Search(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", fmt.Errorf("query is required")
	}

	var results []Result
	policy := s.policy
	policy.OnRetry = func(attempt int, err error) {
		log.Warnf(ctx, "Search attempt %d for %q failed: %v; retrying in %s", attempt, query, err, policy.Delay)
	}

	err := policy.Do(ctx, func(ctx context.Context, attempt int) error {
		log.Infof(ctx, "Search attempt %d: %q", attempt, query)
		var err error
		results, err = s.attempt(ctx, query)
		return err
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		log.Warnf(ctx, "Search for %q gave up: %v", query, err)
		return diagnostic(err), nil
	}

	log.Infof(ctx, "Search for %q returned %d results", query, len(results))
	return Format(results), nil
}

// attempt runs one isolated browser session. The session is closed before
// returning so a retry never overlaps a live browser.
func (s *Searcher) attempt(ctx context.Context, query string) ([]Result, error) {
	session, err := s.browser.NewSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("start browser: %w", err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			log.Debugf(ctx, "Closing browser session: %v", cerr)
		}
	}()

	page, err := session.Fetch(ctx, s.baseURL, s.SearchURL(query))
	if err != nil {
		return nil, err
	}
	log.Debugf(ctx, "Results page title: %q", page.Title)

	title := strings.ToLower(page.Title)
	if strings.Contains(title, "sorry") || strings.Contains(title, "captcha") {
		return nil, ErrBlocked
	}

	results, selector, err := s.extractor.Extract(page.HTML)
	if err != nil {
		return nil, err
	}
	log.Debugf(ctx, "Selector %q yielded %d results", selector, len(results))
	return results, nil
}

func diagnostic(err error) string {
	switch {
	case errors.Is(err, ErrBlocked):
		return "Google verification required. Please try again later."
	case errors.Is(err, ErrNoResults):
		return "No search results found after trying multiple selectors."
	case errors.Is(err, ErrNoValidResults):
		return "No valid search results could be extracted after all attempts."
	default:
		return "Search failed after all attempts: " + err.Error()
	}
}
