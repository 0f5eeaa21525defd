package dcs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/gorilla/websocket"
)

const (
	DefaultStreamURL  = "wss://codesearch.debian.net/instantws"
	DefaultResultsURL = "https://codesearch.debian.net/results"
	DefaultTimeout    = 30 * time.Second
)

// ErrNoMorePages means the requested page does not exist or the service is
// temporarily unable to serve it. Callers stop paging without reporting it.
var ErrNoMorePages = errors.New("no more pages")

// FetchError is a page request the service answered with an unexpected status.
type FetchError struct {
	StatusCode int
	Reason     string
	Body       string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch page: %d %s", e.StatusCode, e.Reason)
}

// Client talks to one codesearch instance.
type Client struct {
	httpClient *http.Client
	dialer     *websocket.Dialer
	streamURL  string
	resultsURL string
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

func WithStreamURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.streamURL = u
		}
	}
}

func WithResultsURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.resultsURL = strings.TrimRight(u, "/")
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient returns a client for codesearch.debian.net unless opts say otherwise.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 45 * time.Second,
		},
		streamURL:  DefaultStreamURL,
		resultsURL: DefaultResultsURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PageURL is the address of one page of a finished query.
func (c *Client) PageURL(queryID string, page int) string {
	return fmt.Sprintf("%s/%s/page_%d.json", c.resultsURL, url.PathEscape(queryID), page)
}

// FetchPage retrieves page number page (0-based) of the query's results.
// It returns ErrNoMorePages for 404 and 502 responses.
func (c *Client) FetchPage(ctx context.Context, queryID string, page int) ([]Chunk, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.PageURL(queryID, page), nil)
	if err != nil {
		return nil, errors.Wrap(err, "new page request")
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch page %d", page)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusBadGateway:
		return nil, ErrNoMorePages
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, &FetchError{
			StatusCode: resp.StatusCode,
			Reason:     http.StatusText(resp.StatusCode),
			Body:       string(body),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "read page %d", page)
	}
	return decodePage(data)
}

// OpenStream dials the streaming endpoint. The connection is closed when ctx
// is cancelled, which unblocks a pending Next.
func (c *Client) OpenStream(ctx context.Context) (*Stream, error) {
	header := http.Header{}
	if c.userAgent != "" {
		header.Set("User-Agent", c.userAgent)
	}
	conn, _, err := c.dialer.DialContext(ctx, c.streamURL, header)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", c.streamURL)
	}
	s := &Stream{conn: conn, stop: make(chan struct{})}
	go s.watch(ctx)
	return s, nil
}
