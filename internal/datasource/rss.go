package datasource

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/seenimoa/stockpulse/pkg/models"
)

// DefaultYahooRSSURL is the Yahoo Finance headline feed; %s is the symbol.
const DefaultYahooRSSURL = "https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s&region=US&lang=en-US"

// YahooRSS is the last-resort company news source. It needs no API key.
type YahooRSS struct {
	urlPattern string
	parser     *gofeed.Parser
}

// NewYahooRSS creates the RSS source. urlPattern must contain one %s verb
// for the symbol; empty uses DefaultYahooRSSURL.
func NewYahooRSS(urlPattern string, client *http.Client) *YahooRSS {
	if urlPattern == "" {
		urlPattern = DefaultYahooRSSURL
	}
	p := gofeed.NewParser()
	p.Client = client
	p.UserAgent = DefaultUserAgent
	return &YahooRSS{urlPattern: urlPattern, parser: p}
}

// Name returns the data source name.
func (y *YahooRSS) Name() string { return "Yahoo Finance RSS" }

// CompanyNews parses the symbol's headline feed.
func (y *YahooRSS) CompanyNews(ctx context.Context, symbol string) ([]models.RawArticle, error) {
	feedURL := fmt.Sprintf(y.urlPattern, url.QueryEscape(symbol))
	feed, err := y.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse RSS for %s: %w", symbol, err)
	}
	return feedToArticles(feed, symbol), nil
}

func feedToArticles(feed *gofeed.Feed, symbol string) []models.RawArticle {
	articles := make([]models.RawArticle, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Title == "" {
			continue
		}
		a := models.RawArticle{
			Headline: strings.TrimSpace(item.Title),
			Summary:  cleanHTML(item.Description),
			URL:      item.Link,
			Source:   "Yahoo Finance",
			Related:  symbol,
		}
		if item.PublishedParsed != nil {
			a.Datetime = item.PublishedParsed.UTC()
		}
		if item.Image != nil {
			a.Image = item.Image.URL
		}
		articles = append(articles, a)
	}
	return articles
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" || !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
