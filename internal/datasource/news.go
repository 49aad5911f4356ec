package datasource

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/phuslu/log"
	"golang.org/x/time/rate"

	"github.com/seenimoa/stockpulse/internal/infra"
	"github.com/seenimoa/stockpulse/pkg/models"
	"github.com/seenimoa/stockpulse/pkg/utils"
)

const (
	// PerQueryLimit is how many records are kept from one query symbol.
	PerQueryLimit = 3
	// MaxDirectArticles caps articles about the holding itself.
	MaxDirectArticles = 3
	// MaxCompetitorArticles caps articles about competitors.
	MaxCompetitorArticles = 3
	// MaxCompetitors caps the competitor symbols queried per holding.
	MaxCompetitors = 3
	// MaxMarketArticles caps the general market panel.
	MaxMarketArticles = 6
	// MarketDescriptionLen is the market panel's description cut-off.
	MarketDescriptionLen = 150
	// MarketSymbol labels market articles with no related ticker.
	MarketSymbol = "MARKET"
)

// competitors maps a symbol to its peers, most relevant first.
var competitors = map[string][]string{
	"AAPL":  {"MSFT", "GOOGL", "AMZN", "META"},
	"MSFT":  {"AAPL", "GOOGL", "AMZN", "META"},
	"GOOGL": {"AAPL", "MSFT", "AMZN", "META"},
	"TSLA":  {"F", "GM", "NIO", "RIVN"},
	"AMZN":  {"WMT", "TGT", "COST", "HD"},
	"NVDA":  {"AMD", "INTC", "TSM", "AVGO"},
	"META":  {"GOOGL", "AAPL", "AMZN", "NFLX"},
	"JPM":   {"BAC", "WFC", "GS", "MS"},
	"JNJ":   {"PFE", "ABBV", "MRK", "UNH"},
	"V":     {"MA", "AXP", "DFS", "COF"},
}

// Competitors returns up to MaxCompetitors peers of symbol. Unlisted
// symbols have none.
func Competitors(symbol string) []string {
	peers := competitors[utils.NormalizeTicker(symbol)]
	if len(peers) > MaxCompetitors {
		peers = peers[:MaxCompetitors]
	}
	out := make([]string, len(peers))
	copy(out, peers)
	return out
}

// ArticleScorer assigns sentiment and impact to a provider record.
type ArticleScorer interface {
	Score(raw models.RawArticle, newsType models.NewsType) models.SentimentResult
}

// NewsFetcher collects direct and competitor news for a holding, scores
// it, and caches the result per symbol.
type NewsFetcher struct {
	sources []NewsSource
	market  []MarketNewsSource
	scorer  ArticleScorer
	cache   *infra.Cache[[]models.Article]
	pacer   *rate.Limiter
	logger  *log.Logger
	now     func() time.Time
}

// NewsOptions configures a NewsFetcher.
type NewsOptions struct {
	Sources       []NewsSource       // company news, priority order
	MarketSources []MarketNewsSource // market news, priority order
	Scorer        ArticleScorer
	RequestDelay  time.Duration // spacing between query symbols
	CacheTTL      time.Duration
	Logger        *log.Logger
}

// NewNewsFetcher creates a news fetcher.
func NewNewsFetcher(opts NewsOptions) *NewsFetcher {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 6 * time.Hour
	}
	if opts.Logger == nil {
		opts.Logger = infra.NopLogger()
	}
	return &NewsFetcher{
		sources: opts.Sources,
		market:  opts.MarketSources,
		scorer:  opts.Scorer,
		cache:   infra.NewCache[[]models.Article](opts.CacheTTL),
		pacer:   infra.NewPacer(opts.RequestDelay),
		logger:  opts.Logger,
		now:     time.Now,
	}
}

// SetClock replaces the time source for the cache and synthetic articles.
func (n *NewsFetcher) SetClock(now func() time.Time) {
	n.now = now
	n.cache.SetClock(now)
}

// Fetch returns up to MaxDirectArticles direct and MaxCompetitorArticles
// competitor articles for symbol, direct first. It never fails: when no
// source yields anything, placeholder articles are returned instead.
func (n *NewsFetcher) Fetch(ctx context.Context, symbol string) []models.Article {
	articles, _ := n.FetchCached(ctx, symbol)
	return articles
}

// FetchCached is Fetch that also reports whether the articles came from a
// fresh cache entry. Entries older than the cache TTL, or holding a single
// article, are fetched again.
func (n *NewsFetcher) FetchCached(ctx context.Context, symbol string) ([]models.Article, bool) {
	symbol = utils.NormalizeTicker(symbol)

	if cached, ok := n.cache.Get(symbol); ok && len(cached) > 1 {
		n.logger.Debug().Str("symbol", symbol).Int("articles", len(cached)).Msg("news cache hit")
		return cloneArticles(cached), true
	}

	queries := append([]string{symbol}, Competitors(symbol)...)
	var direct, rival []models.Article

	for _, q := range queries {
		if err := n.pacer.Wait(ctx); err != nil {
			n.logger.Warn().Err(err).Str("symbol", symbol).Msg("news fetch interrupted")
			break
		}
		for _, raw := range n.fetchQuery(ctx, q) {
			a := toArticle(raw, q, q != symbol)
			if a.IsCompetitor {
				rival = append(rival, a)
			} else {
				direct = append(direct, a)
			}
		}
	}

	if len(direct) > MaxDirectArticles {
		direct = direct[:MaxDirectArticles]
	}
	if len(rival) > MaxCompetitorArticles {
		rival = rival[:MaxCompetitorArticles]
	}
	articles := append(direct, rival...)

	if len(articles) == 0 {
		n.logger.Info().Str("symbol", symbol).Msg("no news from any source, using placeholder articles")
		articles = SyntheticArticles(symbol, n.now())
	} else {
		for i := range articles {
			articles[i].Sentiment = n.score(articles[i])
		}
	}

	if ctx.Err() == nil {
		n.cache.Set(symbol, articles)
	}
	return cloneArticles(articles), false
}


// Invalidate drops the cached entry for symbol.
func (n *NewsFetcher) Invalidate(symbol string) {
	n.cache.Invalidate(utils.NormalizeTicker(symbol))
}

// Prune evicts expired cache entries. Symbols looked up once and never
// again would otherwise stay in memory for the life of the process.
func (n *NewsFetcher) Prune() {
	if removed := n.cache.Cleanup(); removed > 0 {
		n.logger.Debug().Int("removed", removed).Int("remaining", n.cache.Len()).Msg("news cache pruned")
	}
}

// MarketNews returns up to MaxMarketArticles general market articles from
// the first market source that answers. It fails only when every source
// fails or returns nothing.
func (n *NewsFetcher) MarketNews(ctx context.Context) ([]models.Article, error) {
	var errs []error
	for _, src := range n.market {
		raws, err := src.MarketNews(ctx)
		if err != nil {
			n.logger.Warn().Err(err).Str("source", src.Name()).Msg("market news fetch failed")
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		}
		if len(raws) == 0 {
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), ErrNotFound))
			continue
		}
		if len(raws) > MaxMarketArticles {
			raws = raws[:MaxMarketArticles]
		}

		articles := make([]models.Article, 0, len(raws))
		for _, raw := range raws {
			sym := raw.Related
			if sym == "" {
				sym = MarketSymbol
			}
			a := toArticle(raw, sym, false)
			a.Description = utils.Truncate(a.Description, MarketDescriptionLen)
			a.Sentiment = n.score(a)
			articles = append(articles, a)
		}
		return articles, nil
	}
	if len(errs) == 0 {
		return nil, fmt.Errorf("market news: %w", ErrNotFound)
	}
	return nil, fmt.Errorf("market news: %w", errors.Join(errs...))
}

// fetchQuery tries each source in order until one returns records.
func (n *NewsFetcher) fetchQuery(ctx context.Context, symbol string) []models.RawArticle {
	for _, src := range n.sources {
		raws, err := src.CompanyNews(ctx, symbol)
		if err != nil {
			n.logger.Warn().Err(err).Str("symbol", symbol).Str("source", src.Name()).Msg("news fetch failed")
			if ctx.Err() != nil {
				return nil
			}
			continue
		}
		if len(raws) == 0 {
			continue
		}
		n.logger.Debug().Str("symbol", symbol).Str("source", src.Name()).Int("articles", len(raws)).Msg("news fetched")
		if len(raws) > PerQueryLimit {
			raws = raws[:PerQueryLimit]
		}
		return raws
	}
	return nil
}

func (n *NewsFetcher) score(a models.Article) models.SentimentResult {
	newsType := models.NewsDirect
	if a.IsCompetitor {
		newsType = models.NewsCompetitor
	}
	if n.scorer == nil {
		return models.SentimentResult{Label: models.SentimentNeutral, ImpactScore: 0.1, NewsType: newsType}
	}
	return n.scorer.Score(models.RawArticle{
		Headline: a.Title,
		Summary:  a.Description,
		Datetime: a.PublishedAt,
		Source:   a.Source,
		URL:      a.URL,
	}, newsType)
}

func toArticle(raw models.RawArticle, symbol string, competitor bool) models.Article {
	return models.Article{
		Title:        raw.Headline,
		Description:  cleanHTML(raw.Summary),
		Symbol:       symbol,
		PublishedAt:  raw.Datetime,
		Source:       raw.Source,
		URL:          raw.URL,
		ImageURL:     raw.Image,
		IsCompetitor: competitor,
	}
}

// SyntheticArticles returns the placeholder set shown when no provider
// produced news for symbol. Sentiment is preset, not scored.
func SyntheticArticles(symbol string, now time.Time) []models.Article {
	return []models.Article{
		{
			Title:       symbol + " Stock Analysis: Market Performance Review",
			Description: "Recent market analysis shows " + symbol + " demonstrating strong fundamentals with positive momentum in the current trading session. Analysts are closely monitoring key support and resistance levels.",
			Symbol:      symbol,
			PublishedAt: now,
			Source:      "Market Analysis",
			URL:         "#",
			Synthetic:   true,
			Sentiment: models.SentimentResult{
				Score: 0.3, Label: models.SentimentPositive, ImpactScore: 0.8, NewsType: models.NewsDirect,
			},
		},
		{
			Title:       symbol + " Sector Outlook: Industry Trends Analysis",
			Description: "The sector containing " + symbol + " is showing positive trends with increasing institutional interest and improving market sentiment across related companies.",
			Symbol:      symbol,
			PublishedAt: now,
			Source:      "Sector Report",
			URL:         "#",
			Synthetic:   true,
			Sentiment: models.SentimentResult{
				Score: 0.2, Label: models.SentimentPositive, ImpactScore: 0.6, NewsType: models.NewsDirect,
			},
		},
		{
			Title:        "Competitor Analysis: Market Position Update",
			Description:  "Key competitors in the " + symbol + " space are showing mixed performance, with some demonstrating strong growth while others face market challenges.",
			Symbol:       symbol,
			PublishedAt:  now,
			Source:       "Competitor Watch",
			URL:          "#",
			IsCompetitor: true,
			Synthetic:    true,
			Sentiment: models.SentimentResult{
				Score: 0, Label: models.SentimentNeutral, ImpactScore: 0.5, NewsType: models.NewsCompetitor,
			},
		},
	}
}

func cloneArticles(in []models.Article) []models.Article {
	out := make([]models.Article, len(in))
	copy(out, in)
	return out
}
