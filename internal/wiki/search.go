package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/vidyasagar/wikisurf/internal/page"
)

// DefaultSearchLimit is the number of suggestions asked for by default.
const DefaultSearchLimit = 10

// SearchResult is a title suggestion.
type SearchResult struct {
	Title       page.Title
	Description string
	URL         string
}

// Search returns title suggestions for query from the opensearch API.
func (c *Client) Search(ctx context.Context, site, query string, limit int) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	q := url.Values{}
	q.Set("action", "opensearch")
	q.Set("search", query)
	q.Set("limit", strconv.Itoa(limit))
	q.Set("namespace", "0")
	q.Set("format", "json")

	body, err := c.get(ctx, c.endpoint(site)+"/w/api.php?"+q.Encode(), "application/json")
	if err != nil {
		return nil, fmt.Errorf("searching %q: %w", query, err)
	}

	// [query, [titles], [descriptions], [urls]]
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decoding search results: %w", err)
	}
	if len(raw) < 2 {
		return nil, fmt.Errorf("decoding search results: %d fields", len(raw))
	}
	var titles, descs, urls []string
	if err := json.Unmarshal(raw[1], &titles); err != nil {
		return nil, fmt.Errorf("decoding search titles: %w", err)
	}
	if len(raw) > 2 {
		_ = json.Unmarshal(raw[2], &descs)
	}
	if len(raw) > 3 {
		_ = json.Unmarshal(raw[3], &urls)
	}

	results := make([]SearchResult, 0, len(titles))
	for i, text := range titles {
		t, err := page.New(site, text)
		if err != nil {
			c.log.Debug("skipping search result", "title", text, "error", err)
			continue
		}
		r := SearchResult{Title: t}
		if i < len(descs) {
			r.Description = descs[i]
		}
		if i < len(urls) {
			r.URL = urls[i]
		} else {
			r.URL = t.URL()
		}
		results = append(results, r)
	}
	return results, nil
}

// Random returns the title of a random article on site.
func (c *Client) Random(ctx context.Context, site string) (page.Title, error) {
	body, err := c.get(ctx, c.endpoint(site)+"/api/rest_v1/page/random/title", "application/json")
	if err != nil {
		return page.Title{}, fmt.Errorf("random page: %w", err)
	}
	var resp struct {
		Items []struct {
			Title string `json:"title"`
		} `json:"items"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return page.Title{}, fmt.Errorf("decoding random page: %w", err)
	}
	if len(resp.Items) == 0 {
		return page.Title{}, fmt.Errorf("random page: %w", ErrPageNotFound)
	}
	return page.New(site, resp.Items[0].Title)
}

// RenderSearchResults formats search results for the viewport.
func RenderSearchResults(results []SearchResult, query string) (string, []Link) {
	var sb strings.Builder
	var links []Link

	sb.WriteString(fmt.Sprintf("  Search: %s\n", query))
	sb.WriteString(fmt.Sprintf("  %s\n\n", strings.Repeat("━", 40)))

	if len(results) == 0 {
		sb.WriteString("  No results found.\n")
		return sb.String(), links
	}

	for i, r := range results {
		idx := i + 1
		sb.WriteString(fmt.Sprintf("  [%d] %s\n", idx, r.Title.Text))
		if r.Description != "" {
			sb.WriteString(fmt.Sprintf("       %s\n", ansi.Truncate(r.Description, 200, "...")))
		}
		sb.WriteString("\n")

		links = append(links, Link{
			Index:    idx,
			Text:     r.Title.Text,
			Href:     r.URL,
			Title:    r.Title,
			Internal: true,
		})
	}

	sb.WriteString(fmt.Sprintf("  %d results | Use 'f <number>' to open a result\n", len(results)))

	return sb.String(), links
}
