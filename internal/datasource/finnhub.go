package datasource

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/seenimoa/stockpulse/pkg/models"
	"github.com/seenimoa/stockpulse/pkg/utils"
)

// Finnhub is the secondary quote and search provider and the primary
// company news source.
type Finnhub struct {
	baseURL  string
	apiKey   string
	client   *http.Client
	lookback time.Duration
	now      func() time.Time
}

// NewFinnhub creates a Finnhub source. lookbackDays bounds the company-news
// window.
func NewFinnhub(baseURL, apiKey string, lookbackDays int, client *http.Client) *Finnhub {
	if lookbackDays <= 0 {
		lookbackDays = 7
	}
	return &Finnhub{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		client:   client,
		lookback: time.Duration(lookbackDays) * 24 * time.Hour,
		now:      time.Now,
	}
}

// Name returns the data source name.
func (f *Finnhub) Name() string { return "Finnhub" }

// --- Finnhub API types ---

// fhQuote uses pointers so missing fields can be told apart from zeros.
type fhQuote struct {
	C  *float64 `json:"c"`
	D  *float64 `json:"d"`
	DP *float64 `json:"dp"`
	PC *float64 `json:"pc"`
	V  *float64 `json:"v"`
}

type fhProfile struct {
	Name                 string  `json:"name"`
	MarketCapitalization float64 `json:"marketCapitalization"`
}

type fhSearchResponse struct {
	Count  int `json:"count"`
	Result []struct {
		Symbol      string `json:"symbol"`
		Description string `json:"description"`
	} `json:"result"`
}

type fhNewsItem struct {
	Headline string `json:"headline"`
	Summary  string `json:"summary"`
	Datetime int64  `json:"datetime"`
	Source   string `json:"source"`
	URL      string `json:"url"`
	Image    string `json:"image"`
	Related  string `json:"related"`
}

// --- Public methods ---

// GetQuote returns the latest quote from /quote, enriched with the company
// name and market cap from /stock/profile2 when that call succeeds.
func (f *Finnhub) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	var q fhQuote
	if err := f.get(ctx, "/quote", url.Values{"symbol": {symbol}}, &q); err != nil {
		return nil, err
	}
	if q.C == nil {
		return nil, fmt.Errorf("%w: quote for %s has no current price", ErrMalformed, symbol)
	}

	quote := normalizeFinnhubQuote(symbol, q)

	var p fhProfile
	if err := f.get(ctx, "/stock/profile2", url.Values{"symbol": {symbol}}, &p); err == nil {
		if p.Name != "" {
			quote.Name = p.Name
		}
		if p.MarketCapitalization > 0 {
			quote.MarketCap = strconv.FormatFloat(p.MarketCapitalization, 'f', -1, 64)
		}
	}
	return quote, nil
}

// Search returns matches from /search.
func (f *Finnhub) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	var resp fhSearchResponse
	if err := f.get(ctx, "/search", url.Values{"q": {query}}, &resp); err != nil {
		return nil, err
	}
	results := make([]models.SearchResult, 0, len(resp.Result))
	for _, r := range resp.Result {
		if r.Symbol == "" {
			continue
		}
		results = append(results, models.SearchResult{Symbol: r.Symbol, Name: r.Description})
	}
	return results, nil
}

// CompanyNews returns /company-news for the trailing lookback window.
func (f *Finnhub) CompanyNews(ctx context.Context, symbol string) ([]models.RawArticle, error) {
	to := f.now().UTC()
	from := to.Add(-f.lookback)
	params := url.Values{
		"symbol": {symbol},
		"from":   {utils.FormatDate(from)},
		"to":     {utils.FormatDate(to)},
	}
	var items []fhNewsItem
	if err := f.get(ctx, "/company-news", params, &items); err != nil {
		return nil, err
	}
	return convertFinnhubNews(items), nil
}

// MarketNews returns general headlines from /news.
func (f *Finnhub) MarketNews(ctx context.Context) ([]models.RawArticle, error) {
	var items []fhNewsItem
	if err := f.get(ctx, "/news", url.Values{"category": {"general"}}, &items); err != nil {
		return nil, err
	}
	articles := convertFinnhubNews(items)
	for i := range articles {
		if first, _, _ := strings.Cut(articles[i].Related, ","); first != "" {
			articles[i].Related = strings.TrimSpace(first)
		}
	}
	return articles, nil
}

// --- Internal helpers ---

func (f *Finnhub) get(ctx context.Context, path string, params url.Values, v any) error {
	if f.apiKey == "" {
		return ErrNoAPIKey
	}
	params.Set("token", f.apiKey)
	return getJSON(ctx, f.client, f.baseURL+path+"?"+params.Encode(), v)
}

// normalizeFinnhubQuote derives change and percent from the previous close
// when the provider omits d/dp.
func normalizeFinnhubQuote(symbol string, q fhQuote) *models.Quote {
	price := *q.C
	var prev float64
	if q.PC != nil {
		prev = *q.PC
	}

	change := price - prev
	if q.D != nil {
		change = *q.D
	}

	divisor := prev
	if divisor == 0 {
		divisor = 1
	}
	pct := (price - prev) / divisor * 100
	if q.DP != nil {
		pct = *q.DP
	}

	quote := &models.Quote{
		Symbol:        symbol,
		Name:          symbol,
		Price:         price,
		Change:        change,
		ChangePercent: pct,
		Source:        "Finnhub",
		FetchedAt:     time.Now(),
	}
	if q.V != nil {
		quote.Volume = int64(*q.V)
	}
	return quote
}

func convertFinnhubNews(items []fhNewsItem) []models.RawArticle {
	articles := make([]models.RawArticle, 0, len(items))
	for _, it := range items {
		if it.Headline == "" {
			continue
		}
		articles = append(articles, models.RawArticle{
			Headline: it.Headline,
			Summary:  it.Summary,
			Datetime: time.Unix(it.Datetime, 0).UTC(),
			Source:   it.Source,
			URL:      it.URL,
			Image:    it.Image,
			Related:  it.Related,
		})
	}
	return articles
}
