// Package datasource provides data fetching from third-party market data
// providers. It defines one small interface per capability and implements
// concrete sources for Alpha Vantage, Finnhub and the Yahoo Finance RSS feed.
// The fetchers in this package chain sources in priority order and never
// surface provider failures to callers.
package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"strings"

	"github.com/seenimoa/stockpulse/pkg/models"
)

// QuoteSource returns a normalized quote for one symbol.
type QuoteSource interface {
	Name() string
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)
}

// SearchSource resolves free text to candidate symbols.
type SearchSource interface {
	Name() string
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
}

// NewsSource returns recent company news for one symbol, newest first.
type NewsSource interface {
	Name() string
	CompanyNews(ctx context.Context, symbol string) ([]models.RawArticle, error)
}

// MarketNewsSource returns general market headlines.
type MarketNewsSource interface {
	Name() string
	MarketNews(ctx context.Context) ([]models.RawArticle, error)
}

// --- Sentinel errors ---

// ErrMalformed is returned when a provider answers with an unexpected payload.
var ErrMalformed = errors.New("malformed provider response")

// ErrNotFound is returned when a provider has no data for the request.
var ErrNotFound = errors.New("no data from provider")

// ErrNoAPIKey is returned by a source constructed without credentials.
var ErrNoAPIKey = errors.New("provider API key not configured")

// ErrRateLimited is returned when a provider answers with a throttling note.
var ErrRateLimited = errors.New("rate limited by provider")

// ErrHTTP wraps an HTTP error with status code.
type ErrHTTP struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.Body)
}

// --- Shared HTTP helpers ---

// DefaultUserAgent is the user agent string used for HTTP requests.
const DefaultUserAgent = "stockpulse/1.0 (+https://github.com/seenimoa/stockpulse)"

// doGet performs a GET request and returns the response body.
// The caller is responsible for closing the returned ReadCloser.
func doGet(ctx context.Context, client *http.Client, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", DefaultUserAgent)
	req.Header.Set("Accept", "application/json, application/rss+xml, */*")

	resp, err := client.Do(req)
	if err != nil {
		// *url.Error repeats the full URL, key included.
		var uerr *neturl.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return nil, fmt.Errorf("HTTP GET %s: %w", redact(url), err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &ErrHTTP{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}

	return resp.Body, nil
}

// getJSON fetches url and decodes the body into v. Decode failures are
// reported as ErrMalformed.
func getJSON(ctx context.Context, client *http.Client, url string, v any) error {
	body, err := doGet(ctx, client, url)
	if err != nil {
		return err
	}
	defer body.Close()

	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// redact drops the query string so API keys never reach logs.
func redact(url string) string {
	base, _, _ := strings.Cut(url, "?")
	return base
}
