package main

import (
	"context"
	"fmt"

	"github.com/phuslu/log"

	"github.com/seenimoa/stockpulse/internal/alerts"
	"github.com/seenimoa/stockpulse/internal/analysis/sentiment"
	"github.com/seenimoa/stockpulse/internal/config"
	"github.com/seenimoa/stockpulse/internal/datasource"
	"github.com/seenimoa/stockpulse/internal/infra"
	"github.com/seenimoa/stockpulse/internal/portfolio"
	"github.com/seenimoa/stockpulse/internal/store"
)

// app holds the services built from the configuration. The holdings store
// is opened only by commands that need a session.
type app struct {
	cfg      *config.Config
	logger   *log.Logger
	quotes   *datasource.QuoteFetcher
	searcher *datasource.Searcher
	news     *datasource.NewsFetcher
	alerts   *alerts.Feed
	store    store.Store
}

func newApp(cfg *config.Config) *app {
	logger := infra.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	client := infra.NewHTTPClient(cfg.Providers.Timeout)

	av := datasource.NewAlphaVantage(cfg.Providers.AlphaVantageURL, cfg.Providers.AlphaVantageKey, client)
	fh := datasource.NewFinnhub(cfg.Providers.FinnhubURL, cfg.Providers.FinnhubKey, cfg.News.LookbackDays, client)
	rss := datasource.NewYahooRSS(cfg.News.RSSURL, client)

	return &app{
		cfg:      cfg,
		logger:   logger,
		quotes:   datasource.NewQuoteFetcher(logger, cfg.Analysis.ConcurrentFetches, av, fh),
		searcher: datasource.NewSearcher(logger, av, fh),
		news: datasource.NewNewsFetcher(datasource.NewsOptions{
			Sources:       []datasource.NewsSource{fh, rss},
			MarketSources: []datasource.MarketNewsSource{av, fh},
			Scorer:        sentiment.NewScorer(),
			RequestDelay:  cfg.News.RequestDelay,
			CacheTTL:      cfg.News.CacheTTL,
			Logger:        logger,
		}),
		alerts: alerts.NewFeed(cfg.Alerts.PriceDropPct, logger),
	}
}

// session opens the holdings store and loads the portfolio.
func (a *app) session(ctx context.Context) (*portfolio.Session, error) {
	if a.store == nil {
		st, err := store.Open(a.cfg.Storage, a.logger)
		if err != nil {
			return nil, fmt.Errorf("open holdings store: %w", err)
		}
		a.store = st
	}
	return portfolio.NewSession(ctx, portfolio.SessionOptions{
		Quotes: a.quotes,
		News:   a.news,
		Store:  a.store,
		Alerts: a.alerts,
		Logger: a.logger,
	})
}

func (a *app) Close() {
	if a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn().Err(err).Msg("failed to close holdings store")
	}
}
