package websearch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/va6996/travelingman-mcp/config"
)

// fakeBrowser serves one scripted outcome per session and records the
// order of session events.
type fakeBrowser struct {
	mu       sync.Mutex
	outcomes []outcome
	events   []string
	urls     []string
}

type outcome struct {
	page       *Page
	fetchErr   error
	sessionErr error
}

func (b *fakeBrowser) record(ev string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
}

func (b *fakeBrowser) NewSession(ctx context.Context) (Session, error) {
	b.mu.Lock()
	n := len(b.urls)
	b.mu.Unlock()

	o := b.outcomes[len(b.outcomes)-1]
	if n < len(b.outcomes) {
		o = b.outcomes[n]
	}
	if o.sessionErr != nil {
		b.mu.Lock()
		b.urls = append(b.urls, "")
		b.mu.Unlock()
		b.record("open-failed")
		return nil, o.sessionErr
	}
	b.record("open")
	return &fakeSession{browser: b, outcome: o}, nil
}

type fakeSession struct {
	browser *fakeBrowser
	outcome outcome
}

func (s *fakeSession) Fetch(ctx context.Context, homeURL, searchURL string) (*Page, error) {
	s.browser.mu.Lock()
	s.browser.urls = append(s.browser.urls, searchURL)
	s.browser.mu.Unlock()
	s.browser.record("fetch")
	return s.outcome.page, s.outcome.fetchErr
}

func (s *fakeSession) Close() error {
	s.browser.record("close")
	return nil
}

func testSearchConfig() config.SearchConfig {
	return config.SearchConfig{
		BaseURL:          "https://www.google.com/",
		MaxAttempts:      2,
		RetryDelay:       time.Millisecond,
		MaxResults:       5,
		ResultSelectors:  config.DefaultResultSelectors(),
		TitleSelectors:   config.DefaultTitleSelectors(),
		SnippetSelectors: config.DefaultSnippetSelectors(),
	}
}

var (
	captchaPage = &Page{Title: "Sorry...", HTML: "<html></html>"}
	goodPage    = &Page{Title: "paris museums - Search", HTML: resultsPage}
	emptyPage   = &Page{Title: "paris museums - Search", HTML: "<html><body><p>nothing</p></body></html>"}
)

func TestSearch_RetriesAfterVerificationPage(t *testing.T) {
	browser := &fakeBrowser{outcomes: []outcome{{page: captchaPage}, {page: goodPage}}}
	s := NewSearcher(testSearchConfig(), browser)

	out, err := s.Search(context.Background(), "paris museums")
	require.NoError(t, err)
	assert.Contains(t, out, "Search Results:\n\n1. Louvre Museum Official Website\nURL: https://www.louvre.fr/en\n")
	assert.Contains(t, out, "2. Musée d'Orsay")

	// The first session is torn down before the second opens.
	assert.Equal(t, []string{"open", "fetch", "close", "open", "fetch", "close"}, browser.events)
	assert.Equal(t, "https://www.google.com/search?hl=en&num=10&q=paris+museums", browser.urls[0])
}

func TestSearch_Diagnostics(t *testing.T) {
	tests := []struct {
		name     string
		outcome  outcome
		expected string
	}{
		{"Blocked", outcome{page: captchaPage}, "Google verification required. Please try again later."},
		{"NoSelectorMatched", outcome{page: emptyPage}, "No search results found after trying multiple selectors."},
		{"NoValidResults", outcome{page: &Page{HTML: `<div class="g"><a href="/"><h3>Ad</h3></a></div>`}}, "No valid search results could be extracted after all attempts."},
		{"FetchError", outcome{fetchErr: errors.New("net::ERR_NAME_NOT_RESOLVED")}, "Search failed after all attempts: net::ERR_NAME_NOT_RESOLVED"},
		{"SessionError", outcome{sessionErr: errors.New("chrome not found")}, "Search failed after all attempts: start browser: chrome not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			browser := &fakeBrowser{outcomes: []outcome{tt.outcome}}
			s := NewSearcher(testSearchConfig(), browser)

			out, err := s.Search(context.Background(), "anything")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
			assert.Len(t, browser.urls, 2, "both attempts should run")

			opens, closes := 0, 0
			for _, ev := range browser.events {
				switch ev {
				case "open":
					opens++
				case "close":
					closes++
				}
			}
			assert.Equal(t, opens, closes, "every opened session is closed")
		})
	}
}

func TestSearch_SingleAttempt(t *testing.T) {
	cfg := testSearchConfig()
	cfg.MaxAttempts = 1
	browser := &fakeBrowser{outcomes: []outcome{{page: captchaPage}, {page: goodPage}}}

	out, err := NewSearcher(cfg, browser).Search(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "Google verification required. Please try again later.", out)
	assert.Equal(t, []string{"open", "fetch", "close"}, browser.events)
}

func TestSearch_EmptyQuery(t *testing.T) {
	browser := &fakeBrowser{outcomes: []outcome{{page: goodPage}}}
	_, err := NewSearcher(testSearchConfig(), browser).Search(context.Background(), "   ")
	assert.Error(t, err)
	assert.Empty(t, browser.events)
}

func TestSearch_CancelledContext(t *testing.T) {
	cfg := testSearchConfig()
	cfg.RetryDelay = time.Minute
	browser := &fakeBrowser{outcomes: []outcome{{page: captchaPage}}}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := NewSearcher(cfg, browser).Search(ctx, "q")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"open", "fetch", "close"}, browser.events)
}

func TestSearchURL(t *testing.T) {
	s := NewSearcher(testSearchConfig(), &fakeBrowser{})
	assert.Equal(t, "https://www.google.com/search?hl=en&num=10&q=caf%C3%A9+%26+bar", s.SearchURL("café & bar"))
}
