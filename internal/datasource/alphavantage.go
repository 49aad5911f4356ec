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
)

// MarketNewsTickers is the ticker set queried for the general market panel.
const MarketNewsTickers = "AAPL,MSFT,GOOGL,TSLA,NVDA,JPM,AMD"

// avTimeLayout is the layout of NEWS_SENTIMENT's time_published field.
const avTimeLayout = "20060102T150405"

// AlphaVantage is the primary quote and search provider.
type AlphaVantage struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewAlphaVantage creates an Alpha Vantage source. baseURL is the API host
// without the /query path.
func NewAlphaVantage(baseURL, apiKey string, client *http.Client) *AlphaVantage {
	return &AlphaVantage{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
	}
}

// Name returns the data source name.
func (a *AlphaVantage) Name() string { return "Alpha Vantage" }

// --- Alpha Vantage API types ---

// avNotice is present on throttled or rejected requests.
type avNotice struct {
	Note         string `json:"Note"`
	Information  string `json:"Information"`
	ErrorMessage string `json:"Error Message"`
}

func (n avNotice) err() error {
	switch {
	case n.Note != "", n.Information != "":
		return ErrRateLimited
	case n.ErrorMessage != "":
		return fmt.Errorf("%w: %s", ErrMalformed, n.ErrorMessage)
	}
	return nil
}

type avGlobalQuote struct {
	avNotice
	GlobalQuote map[string]string `json:"Global Quote"`
}

type avSearchResponse struct {
	avNotice
	BestMatches []map[string]string `json:"bestMatches"`
}

type avNewsResponse struct {
	avNotice
	Feed []avNewsItem `json:"feed"`
}

type avNewsItem struct {
	Title           string `json:"title"`
	URL             string `json:"url"`
	TimePublished   string `json:"time_published"`
	Summary         string `json:"summary"`
	BannerImage     string `json:"banner_image"`
	Source          string `json:"source"`
	TickerSentiment []struct {
		Ticker string `json:"ticker"`
	} `json:"ticker_sentiment"`
}

// --- Public methods ---

// GetQuote returns the latest quote from the GLOBAL_QUOTE endpoint.
// The endpoint carries no company name, so Name is the symbol.
func (a *AlphaVantage) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	var resp avGlobalQuote
	if err := a.query(ctx, url.Values{"function": {"GLOBAL_QUOTE"}, "symbol": {symbol}}, &resp); err != nil {
		return nil, err
	}
	if err := resp.err(); err != nil {
		return nil, err
	}
	return parseGlobalQuote(symbol, resp.GlobalQuote)
}

// Search returns matches from SYMBOL_SEARCH.
func (a *AlphaVantage) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	var resp avSearchResponse
	if err := a.query(ctx, url.Values{"function": {"SYMBOL_SEARCH"}, "keywords": {query}}, &resp); err != nil {
		return nil, err
	}
	if err := resp.err(); err != nil {
		return nil, err
	}

	results := make([]models.SearchResult, 0, len(resp.BestMatches))
	for _, m := range resp.BestMatches {
		sym := m["1. symbol"]
		if sym == "" {
			continue
		}
		results = append(results, models.SearchResult{Symbol: sym, Name: m["2. name"]})
	}
	return results, nil
}

// MarketNews returns NEWS_SENTIMENT headlines for MarketNewsTickers.
func (a *AlphaVantage) MarketNews(ctx context.Context) ([]models.RawArticle, error) {
	var resp avNewsResponse
	params := url.Values{
		"function": {"NEWS_SENTIMENT"},
		"tickers":  {MarketNewsTickers},
		"limit":    {"10"},
	}
	if err := a.query(ctx, params, &resp); err != nil {
		return nil, err
	}
	if err := resp.err(); err != nil {
		return nil, err
	}

	articles := make([]models.RawArticle, 0, len(resp.Feed))
	for _, item := range resp.Feed {
		ra := models.RawArticle{
			Headline: item.Title,
			Summary:  item.Summary,
			Source:   item.Source,
			URL:      item.URL,
			Image:    item.BannerImage,
		}
		if t, err := time.Parse(avTimeLayout, item.TimePublished); err == nil {
			ra.Datetime = t
		}
		if len(item.TickerSentiment) > 0 {
			ra.Related = item.TickerSentiment[0].Ticker
		}
		articles = append(articles, ra)
	}
	return articles, nil
}

// --- Internal helpers ---

func (a *AlphaVantage) query(ctx context.Context, params url.Values, v any) error {
	if a.apiKey == "" {
		return ErrNoAPIKey
	}
	params.Set("apikey", a.apiKey)
	return getJSON(ctx, a.client, a.baseURL+"/query?"+params.Encode(), v)
}

// parseGlobalQuote normalizes the numbered-key GLOBAL_QUOTE object.
func parseGlobalQuote(symbol string, gq map[string]string) (*models.Quote, error) {
	if gq["01. symbol"] == "" {
		return nil, fmt.Errorf("%w: GLOBAL_QUOTE without symbol for %s", ErrMalformed, symbol)
	}

	price, err := strconv.ParseFloat(gq["05. price"], 64)
	if err != nil {
		return nil, fmt.Errorf("%w: price %q", ErrMalformed, gq["05. price"])
	}
	change, _ := strconv.ParseFloat(gq["09. change"], 64)
	pct, _ := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(gq["10. change percent"]), "%"), 64)
	volume, _ := strconv.ParseInt(gq["06. volume"], 10, 64)

	return &models.Quote{
		Symbol:        symbol,
		Name:          symbol,
		Price:         price,
		Change:        change,
		ChangePercent: pct,
		Volume:        volume,
		Source:        "Alpha Vantage",
		FetchedAt:     time.Now(),
	}, nil
}
