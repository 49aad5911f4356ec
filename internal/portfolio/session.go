package portfolio

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/phuslu/log"

	"github.com/seenimoa/stockpulse/pkg/models"
	"github.com/seenimoa/stockpulse/pkg/utils"
)

// ErrSuperseded is returned by Refresh when a newer refresh started before
// its results arrived. The results are discarded.
var ErrSuperseded = errors.New("refresh superseded")

// QuoteService resolves quotes; it never fails, using no-data quotes instead.
type QuoteService interface {
	GetQuote(ctx context.Context, symbol string) *models.Quote
	GetQuotes(ctx context.Context, symbols []string) map[string]*models.Quote
}

// NewsService fetches scored articles for a holding.
type NewsService interface {
	Fetch(ctx context.Context, symbol string) []models.Article
	Invalidate(symbol string)
}

// Store persists the holdings list. Load returns nil with no error when
// nothing has been saved yet.
type Store interface {
	Load(ctx context.Context) ([]models.Holding, error)
	Save(ctx context.Context, holdings []models.Holding) error
}

// AlertSink is notified of fresh data during a refresh.
type AlertSink interface {
	CheckQuote(q *models.Quote)
	CheckNews(symbol string, articles []models.Article)
}

// SessionOptions wires a Session. Store and Alerts are optional.
type SessionOptions struct {
	Quotes QuoteService
	News   NewsService
	Store  Store
	Alerts AlertSink
	Logger *log.Logger
	Rand   func() float64
	Now    func() time.Time
}

// ════════════════════════════════════════════════════════════════════
// Session
// ════════════════════════════════════════════════════════════════════

// Session owns the holdings and the latest quotes and news for them. All
// mutations go through it; readers get copies.
type Session struct {
	mu sync.RWMutex

	holdings    *Holdings
	quotes      map[string]*models.Quote
	news        map[string][]models.Article
	generation  uint64
	lastRefresh time.Time

	quoteSvc QuoteService
	newsSvc  NewsService
	store    Store
	alerts   AlertSink
	logger   *log.Logger
	rnd      func() float64
	now      func() time.Time

	subMu       sync.Mutex
	subscribers []func(models.PortfolioSnapshot)
}

// NewSession loads the saved holdings, or the default portfolio when none
// are saved or the saved state cannot be read.
func NewSession(ctx context.Context, opts SessionOptions) (*Session, error) {
	if opts.Quotes == nil || opts.News == nil {
		return nil, errors.New("portfolio: quote and news services are required")
	}
	s := &Session{
		quotes:   make(map[string]*models.Quote),
		news:     make(map[string][]models.Article),
		quoteSvc: opts.Quotes,
		newsSvc:  opts.News,
		store:    opts.Store,
		alerts:   opts.Alerts,
		logger:   opts.Logger,
		rnd:      opts.Rand,
		now:      opts.Now,
	}
	if s.logger == nil {
		s.logger = &log.DefaultLogger
	}
	if s.rnd == nil {
		s.rnd = rand.Float64
	}
	if s.now == nil {
		s.now = time.Now
	}

	var saved []models.Holding
	if s.store != nil {
		var err error
		saved, err = s.store.Load(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Msg("failed to load holdings, using defaults")
			saved = nil
		}
	}
	if saved == nil {
		saved = DefaultHoldings()
	}
	s.holdings = NewHoldings(saved)
	s.logger.Info().Int("holdings", s.holdings.Len()).Msg("portfolio loaded")
	return s, nil
}

// Subscribe registers fn to receive a snapshot after every refresh and
// holdings change. fn runs on the mutating goroutine and must not block.
func (s *Session) Subscribe(fn func(models.PortfolioSnapshot)) {
	s.subMu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.subMu.Unlock()
}

// ════════════════════════════════════════════════════════════════════
// Refresh
// ════════════════════════════════════════════════════════════════════

// Refresh reloads quotes for every holding concurrently, then news one
// holding at a time. Results are applied only while this refresh is the
// latest; otherwise it stops and returns ErrSuperseded.
func (s *Session) Refresh(ctx context.Context) (models.PortfolioSnapshot, error) {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	symbols := s.holdings.Symbols()
	s.mu.Unlock()

	start := s.now()
	quotes := s.quoteSvc.GetQuotes(ctx, symbols)

	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		return s.Snapshot(), ErrSuperseded
	}
	for sym, q := range quotes {
		if s.holdings.Has(sym) {
			s.quotes[sym] = q
		}
	}
	s.mu.Unlock()

	if s.alerts != nil {
		for _, sym := range symbols {
			if q, ok := quotes[sym]; ok {
				s.alerts.CheckQuote(q)
			}
		}
	}

	for _, sym := range symbols {
		if err := ctx.Err(); err != nil {
			return s.Snapshot(), err
		}
		articles := s.newsSvc.Fetch(ctx, sym)

		s.mu.Lock()
		if s.generation != gen {
			s.mu.Unlock()
			return s.Snapshot(), ErrSuperseded
		}
		if s.holdings.Has(sym) {
			s.news[sym] = articles
		}
		s.mu.Unlock()

		if s.alerts != nil {
			s.alerts.CheckNews(sym, articles)
		}
	}

	s.mu.Lock()
	s.lastRefresh = s.now()
	s.mu.Unlock()

	snap := s.Snapshot()
	s.logger.Info().
		Int("symbols", len(symbols)).
		Uint64("generation", gen).
		Dur("took", s.now().Sub(start)).
		Msg("portfolio refreshed")
	s.publish(snap)
	return snap, nil
}

// ════════════════════════════════════════════════════════════════════
// Holdings changes
// ════════════════════════════════════════════════════════════════════

// Add buys shares of symbol and persists the list. The new row shows as
// loading until LoadSymbol fills in its quote and news. A failed save
// rolls the change back.
func (s *Session) Add(ctx context.Context, symbol string, shares float64) (models.Holding, error) {
	s.mu.Lock()
	before := s.holdings.List()
	h, err := s.holdings.Add(symbol, shares)
	if err != nil {
		s.mu.Unlock()
		return models.Holding{}, err
	}
	if err := s.persist(ctx); err != nil {
		s.holdings = NewHoldings(before)
		s.mu.Unlock()
		return models.Holding{}, err
	}
	s.mu.Unlock()

	s.logger.Info().Str("symbol", h.Symbol).Float64("shares", h.Shares).Msg("holding added")
	s.publish(s.Snapshot())
	return h, nil
}

// LoadSymbol fetches the quote and news of one held symbol.
func (s *Session) LoadSymbol(ctx context.Context, symbol string) {
	sym := utils.NormalizeTicker(symbol)

	q := s.quoteSvc.GetQuote(ctx, sym)
	s.mu.Lock()
	held := s.holdings.Has(sym)
	if held {
		s.quotes[sym] = q
	}
	s.mu.Unlock()
	if !held {
		return
	}
	if s.alerts != nil {
		s.alerts.CheckQuote(q)
	}

	articles := s.newsSvc.Fetch(ctx, sym)
	s.mu.Lock()
	held = s.holdings.Has(sym)
	if held {
		s.news[sym] = articles
	}
	s.mu.Unlock()
	if !held {
		return
	}
	if s.alerts != nil {
		s.alerts.CheckNews(sym, articles)
	}
	s.publish(s.Snapshot())
}

// Remove drops symbol, persists the list and forgets its quote, articles
// and cached news.
func (s *Session) Remove(ctx context.Context, symbol string) error {
	sym := utils.NormalizeTicker(symbol)

	s.mu.Lock()
	before := s.holdings.List()
	if err := s.holdings.Remove(sym); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.persist(ctx); err != nil {
		s.holdings = NewHoldings(before)
		s.mu.Unlock()
		return err
	}
	delete(s.quotes, sym)
	delete(s.news, sym)
	s.mu.Unlock()

	s.newsSvc.Invalidate(sym)
	s.logger.Info().Str("symbol", sym).Msg("holding removed")
	s.publish(s.Snapshot())
	return nil
}

// ════════════════════════════════════════════════════════════════════
// Read access
// ════════════════════════════════════════════════════════════════════

// Snapshot recomputes the aggregate view from the current state.
func (s *Session) Snapshot() models.PortfolioSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Compute(SnapshotInput{
		Holdings:   s.holdings.List(),
		Quotes:     s.quotes,
		News:       s.news,
		Generation: s.generation,
		Now:        s.now(),
		Rand:       s.rnd,
	})
}

// Holdings returns a copy of the current holdings.
func (s *Session) Holdings() []models.Holding {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.holdings.List()
}

// Quote returns the last quote loaded for symbol.
func (s *Session) Quote(symbol string) (models.Quote, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quotes[utils.NormalizeTicker(symbol)]
	if !ok || q == nil {
		return models.Quote{}, false
	}
	return *q, true
}

// Articles returns a copy of the last articles loaded for symbol.
func (s *Session) Articles(symbol string) []models.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.news[utils.NormalizeTicker(symbol)]
	out := make([]models.Article, len(src))
	copy(out, src)
	return out
}

// Generation returns the current refresh generation.
func (s *Session) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// LastRefresh returns when the last complete refresh finished.
func (s *Session) LastRefresh() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRefresh
}

// ════════════════════════════════════════════════════════════════════
// Helpers
// ════════════════════════════════════════════════════════════════════

// persist saves the holdings. Caller holds s.mu.
func (s *Session) persist(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.Save(ctx, s.holdings.List()); err != nil {
		return fmt.Errorf("saving holdings: %w", err)
	}
	return nil
}

func (s *Session) publish(snap models.PortfolioSnapshot) {
	s.subMu.Lock()
	subs := make([]func(models.PortfolioSnapshot), len(s.subscribers))
	copy(subs, s.subscribers)
	s.subMu.Unlock()
	for _, fn := range subs {
		fn(snap)
	}
}
