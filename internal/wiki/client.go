// Package wiki talks to Wikipedia: it fetches article HTML from the REST
// API, turns it into sanitised Articles, renders them for the terminal,
// searches titles and warms the page cache ahead of navigation.
package wiki

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/vidyasagar/wikisurf/internal/nav"
	"github.com/vidyasagar/wikisurf/internal/page"
)

const (
	defaultTimeout   = 20 * time.Second
	maxBodySize      = 10 * 1024 * 1024 // 10 MB
	defaultUserAgent = "wikisurf/1.0 (terminal Wikipedia reader)"
)

var (
	// ErrPageNotFound is returned when the wiki has no page by that title.
	ErrPageNotFound = errors.New("page not found")

	// ErrUnexpectedStatus is returned for other non-success responses.
	ErrUnexpectedStatus = errors.New("unexpected response status")
)

// SharedTransport is a tuned HTTP transport shared across all clients.
var SharedTransport = &http.Transport{
	Proxy: http.ProxyFromEnvironment,
	DialContext: (&net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	MaxIdleConns:          100,
	MaxIdleConnsPerHost:   20, // page fetches and prefetches hit one host
	IdleConnTimeout:       90 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	ResponseHeaderTimeout: 15 * time.Second,
	ExpectContinueTimeout: 1 * time.Second,
	ForceAttemptHTTP2:     true,
}

// SavedSource supplies pages saved for offline reading.
type SavedSource interface {
	SavedHTML(ctx context.Context, key page.Key) (html string, ok bool, err error)
}

// HeaderListener sees the headers of every API response.
type HeaderListener interface {
	OnHeaders(h http.Header)
}

// Client fetches pages. It implements nav.Fetcher.
type Client struct {
	http      *http.Client
	userAgent string
	scheme    string
	baseURL   string
	saved     SavedSource
	headers   HeaderListener
	log       *slog.Logger
	group     singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithUserAgent sets the User-Agent header. Wikimedia asks clients to
// identify themselves.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithScheme sets the URL scheme used to reach the wiki.
func WithScheme(scheme string) Option {
	return func(c *Client) { c.scheme = scheme }
}

// WithBaseURL sends every request to base instead of the page's site.
func WithBaseURL(base string) Option {
	return func(c *Client) { c.baseURL = base }
}

// WithSaved reads saved pages before going to the network.
func WithSaved(s SavedSource) Option {
	return func(c *Client) { c.saved = s }
}

// WithHeaderListener forwards response headers to l.
func WithHeaderListener(l HeaderListener) Option {
	return func(c *Client) { c.headers = l }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient creates a Client using the shared transport.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http: &http.Client{
			Transport: SharedTransport,
			Timeout:   defaultTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects (>10)")
				}
				return nil
			},
		},
		userAgent: defaultUserAgent,
		scheme:    "https",
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch implements nav.Fetcher.
func (c *Client) Fetch(ctx context.Context, t page.Title) (nav.Document, error) {
	a, err := c.Article(ctx, t)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Article returns the page t. A saved copy wins over the network.
// Concurrent requests for one page share a single fetch.
func (c *Client) Article(ctx context.Context, t page.Title) (*Article, error) {
	key := t.Key()

	if c.saved != nil {
		html, ok, err := c.saved.SavedHTML(ctx, key)
		if err != nil {
			c.log.Warn("reading saved page failed", "title", t.String(), "error", err)
		}
		if ok {
			a, err := Extract([]byte(html), t)
			if err != nil {
				return nil, err
			}
			a.Offline = true
			return a, nil
		}
	}

	// The shared fetch outlives any one caller; each caller waits on its
	// own ctx. The client timeout still bounds the request.
	ch := c.group.DoChan(key.String(), func() (any, error) {
		return c.fetchRemote(context.WithoutCancel(ctx), t)
	})
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("fetching %s: %w", t.Text, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			c.log.Debug("shared in-flight fetch", "title", t.Text)
		}
		return res.Val.(*Article), nil
	}
}

func (c *Client) fetchRemote(ctx context.Context, t page.Title) (*Article, error) {
	start := time.Now()
	body, err := c.get(ctx, c.endpoint(t.Site)+"/api/rest_v1/page/html/"+t.PathSegment(), "text/html")
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", t.Text, err)
	}
	a, err := Extract(body, t)
	if err != nil {
		return nil, err
	}
	a.FetchTime = time.Since(start)
	c.log.Debug("fetched page", "title", t.Text, "bytes", len(body), "took", a.FetchTime)
	return a, nil
}

// get performs a GET and returns the body of a 2xx response.
func (c *Client) get(ctx context.Context, rawURL, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", accept)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if c.headers != nil {
		c.headers.OnHeaders(resp.Header)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrPageNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return body, nil
}

func (c *Client) endpoint(site string) string {
	if c.baseURL != "" {
		return c.baseURL
	}
	return c.scheme + "://" + site
}
