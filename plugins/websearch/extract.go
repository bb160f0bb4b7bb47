package websearch

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/va6996/travelingman-mcp/config"
)

const (
	minTitleLen   = 3
	minSnippetLen = 15
	maxSnippetLen = 300
)

// Result is one extracted search hit.
type Result struct {
	Title       string
	URL         string
	Description string
}

// Extractor pulls results out of a rendered page using ordered selector
// fallbacks.
type Extractor struct {
	Results    []config.SelectorRule
	Titles     []string
	Snippets   []string
	MaxResults int
}

// containers returns the elements of the first rule that yields at least
// one element containing its required child.
func (e *Extractor) containers(doc *goquery.Document) ([]*goquery.Selection, string) {
	for _, rule := range e.Results {
		var valid []*goquery.Selection
		doc.Find(rule.Selector).Each(func(_ int, s *goquery.Selection) {
			if s.Find(rule.Require).Length() > 0 {
				valid = append(valid, s)
			}
		})
		if len(valid) > 0 {
			return valid, rule.Selector
		}
	}
	return nil, ""
}

// Extract parses html. It returns ErrNoResults when no selector matched
// and ErrNoValidResults when matches produced no usable title.
func (e *Extractor) Extract(html string) ([]Result, string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, "", fmt.Errorf("parse page: %w", err)
	}

	elems, selector := e.containers(doc)
	if len(elems) == 0 {
		return nil, "", ErrNoResults
	}
	if e.MaxResults > 0 && len(elems) > e.MaxResults {
		elems = elems[:e.MaxResults]
	}

	var results []Result
	for _, el := range elems {
		title := firstText(el, e.Titles, 0)
		if len([]rune(title)) <= minTitleLen {
			continue
		}
		r := Result{
			Title:       title,
			URL:         link(el),
			Description: truncate(firstText(el, e.Snippets, minSnippetLen), maxSnippetLen),
		}
		if r.URL == "" {
			r.URL = "No URL available"
		}
		if r.Description == "" {
			r.Description = "No description available"
		}
		results = append(results, r)
	}
	if len(results) == 0 {
		return nil, selector, ErrNoValidResults
	}
	return results, selector, nil
}

// firstText returns the text of the first element matched by the first
// selector whose text is longer than minLen characters.
func firstText(el *goquery.Selection, selectors []string, minLen int) string {
	for _, sel := range selectors {
		found := el.Find(sel).First()
		if found.Length() == 0 {
			continue
		}
		text := normalizeSpace(found.Text())
		if text != "" && len([]rune(text)) > minLen {
			return text
		}
	}
	return ""
}

func link(el *goquery.Selection) string {
	href, ok := el.Find("a").First().Attr("href")
	if !ok {
		return ""
	}
	return unwrapRedirect(href)
}

// unwrapRedirect turns "/url?q=<target>&..." into the target.
func unwrapRedirect(href string) string {
	if !strings.HasPrefix(href, "/url?") {
		return href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if q := u.Query().Get("q"); q != "" {
		return q
	}
	return href
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Format renders results as the numbered text block returned to callers.
func Format(results []Result) string {
	entries := make([]string, len(results))
	for i, r := range results {
		entries[i] = fmt.Sprintf("%d. %s\nURL: %s\nDescription: %s", i+1, r.Title, r.URL, r.Description)
	}
	return "Search Results:\n\n" + strings.Join(entries, "\n\n")
}
