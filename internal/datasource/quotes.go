package datasource

import (
	"context"
	"sync"
	"time"

	"github.com/phuslu/log"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/stockpulse/pkg/models"
	"github.com/seenimoa/stockpulse/pkg/utils"
)

// QuoteFetcher resolves quotes through an ordered chain of sources. The
// first source to answer wins; when all fail the no-data quote is returned.
type QuoteFetcher struct {
	sources     []QuoteSource
	concurrency int
	logger      *log.Logger
}

// NewQuoteFetcher creates a fetcher over sources in priority order.
// concurrency bounds GetQuotes fan-out; values below 1 mean unbounded.
func NewQuoteFetcher(logger *log.Logger, concurrency int, sources ...QuoteSource) *QuoteFetcher {
	return &QuoteFetcher{
		sources:     sources,
		concurrency: concurrency,
		logger:      logger,
	}
}

// GetQuote returns the quote for symbol. It never fails: if every source
// errors the result is models.NoDataQuote(symbol).
func (q *QuoteFetcher) GetQuote(ctx context.Context, symbol string) *models.Quote {
	symbol = utils.NormalizeTicker(symbol)

	for i, src := range q.sources {
		start := time.Now()
		quote, err := src.GetQuote(ctx, symbol)
		if err == nil && quote != nil {
			if i > 0 {
				q.logger.Info().Str("symbol", symbol).Str("source", src.Name()).Msg("quote served by fallback source")
			}
			q.logger.Debug().Str("symbol", symbol).Str("source", src.Name()).Dur("took", time.Since(start)).Msg("quote fetched")
			return quote
		}
		q.logger.Warn().Err(err).Str("symbol", symbol).Str("source", src.Name()).Msg("quote fetch failed")
		if ctx.Err() != nil {
			break
		}
	}

	q.logger.Warn().Str("symbol", symbol).Msg("all quote sources failed, using no-data quote")
	return models.NoDataQuote(symbol)
}

// GetQuotes fetches all symbols concurrently and returns them keyed by
// normalized symbol. Every requested symbol has an entry.
func (q *QuoteFetcher) GetQuotes(ctx context.Context, symbols []string) map[string]*models.Quote {
	out := make(map[string]*models.Quote, len(symbols))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	if q.concurrency > 0 {
		g.SetLimit(q.concurrency)
	}

	for _, sym := range symbols {
		g.Go(func() error {
			quote := q.GetQuote(gctx, sym)
			mu.Lock()
			out[quote.Symbol] = quote
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	return out
}
