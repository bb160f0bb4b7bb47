package websearch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/va6996/travelingman-mcp/config"
)

const resultsPage = `<html><head><title>paris museums - Search</title></head><body>
<div id="search">
  <div class="g">
    <a href="/url?q=https://www.louvre.fr/en&sa=U&ved=abc"><h3>Louvre Museum Official Website</h3></a>
    <div class="VwiC3b">The world's most-visited museum, home to the Mona Lisa and thousands of works.</div>
  </div>
  <div class="g">
    <a href="https://www.musee-orsay.fr/"><h3>Musée d'Orsay</h3></a>
    <div class="VwiC3b">short</div>
  </div>
  <div class="g">
    <a href="https://example.com/"><h3>Ad</h3></a>
  </div>
  <div class="g"><p>no heading or link here</p></div>
</div>
</body></html>`

const renamedMarkupPage = `<html><body>
<div class="MjjYud"><span>sponsored</span></div>
<div class="MjjYud">
  <div class="tF2Cxc"><a href="https://www.centrepompidou.fr/"><h3>Centre Pompidou</h3></a>
  <span class="hgKElc">Modern and contemporary art collection in the heart of Paris.</span></div>
</div>
</body></html>`

func testExtractor() *Extractor {
	return &Extractor{
		Results:    config.DefaultResultSelectors(),
		Titles:     config.DefaultTitleSelectors(),
		Snippets:   config.DefaultSnippetSelectors(),
		MaxResults: 5,
	}
}

func TestExtract(t *testing.T) {
	results, selector, err := testExtractor().Extract(resultsPage)
	require.NoError(t, err)
	assert.Equal(t, "div.g", selector)
	require.Len(t, results, 2)

	assert.Equal(t, "Louvre Museum Official Website", results[0].Title)
	assert.Equal(t, "https://www.louvre.fr/en", results[0].URL)
	assert.True(t, strings.HasPrefix(results[0].Description, "The world's most-visited museum"))

	assert.Equal(t, "Musée d'Orsay", results[1].Title)
	assert.Equal(t, "https://www.musee-orsay.fr/", results[1].URL)
	assert.Equal(t, "No description available", results[1].Description)
}

func TestExtract_FallsBackToLaterSelector(t *testing.T) {
	results, selector, err := testExtractor().Extract(renamedMarkupPage)
	require.NoError(t, err)
	assert.Equal(t, "div.MjjYud", selector)
	require.Len(t, results, 1)
	assert.Equal(t, "Centre Pompidou", results[0].Title)
	assert.Equal(t, "Modern and contemporary art collection in the heart of Paris.", results[0].Description)
}

func TestExtract_ConfiguredSelectors(t *testing.T) {
	e := &Extractor{
		Results:  []config.SelectorRule{{Selector: "li.hit", Require: "a"}},
		Titles:   []string{"strong"},
		Snippets: []string{"em"},
	}
	results, _, err := e.Extract(`<ul><li class="hit"><a href="/x"><strong>Custom Engine Hit</strong></a><em>A description long enough to keep.</em></li></ul>`)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "/x", results[0].URL)
	assert.Equal(t, "A description long enough to keep.", results[0].Description)
}

func TestExtract_Failures(t *testing.T) {
	_, _, err := testExtractor().Extract(`<html><body><p>nothing</p></body></html>`)
	assert.ErrorIs(t, err, ErrNoResults)

	_, _, err = testExtractor().Extract(`<div class="g"><a href="https://a.b/"><h3>Ad</h3></a></div>`)
	assert.ErrorIs(t, err, ErrNoValidResults)
}

func TestExtract_LimitsResults(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 8; i++ {
		b.WriteString(`<div class="g"><a href="https://a.b/"><h3>Result title</h3></a></div>`)
	}
	e := testExtractor()
	e.MaxResults = 3
	results, _, err := e.Extract(b.String())
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("é", 310)
	out := truncate(long, 300)
	assert.Equal(t, strings.Repeat("é", 300)+"...", out)
	assert.Equal(t, "short", truncate("short", 300))
}

func TestUnwrapRedirect(t *testing.T) {
	assert.Equal(t, "https://a.b/c?d=1", unwrapRedirect("/url?q=https://a.b/c%3Fd%3D1&sa=U"))
	assert.Equal(t, "https://a.b/", unwrapRedirect("https://a.b/"))
	assert.Equal(t, "/url?sa=U", unwrapRedirect("/url?sa=U"))
}

func TestFormat(t *testing.T) {
	out := Format([]Result{
		{Title: "One", URL: "https://one", Description: "first"},
		{Title: "Two", URL: "https://two", Description: "second"},
	})
	assert.Equal(t, "Search Results:\n\n1. One\nURL: https://one\nDescription: first\n\n2. Two\nURL: https://two\nDescription: second", out)
}
