package portfolio

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/stockpulse/internal/infra"
	"github.com/seenimoa/stockpulse/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Fakes
// ════════════════════════════════════════════════════════════════════

type fakeQuotes struct {
	mu      sync.Mutex
	quotes  map[string]*models.Quote
	calls   int
	block   chan struct{} // first GetQuotes call waits on it when set
	started chan struct{}
}

func (f *fakeQuotes) set(q *models.Quote) {
	f.mu.Lock()
	f.quotes[q.Symbol] = q
	f.mu.Unlock()
}

func (f *fakeQuotes) lookup(sym string) *models.Quote {
	if q, ok := f.quotes[sym]; ok {
		cp := *q
		return &cp
	}
	return models.NoDataQuote(sym)
}

func (f *fakeQuotes) GetQuote(_ context.Context, sym string) *models.Quote {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lookup(sym)
}

func (f *fakeQuotes) GetQuotes(_ context.Context, syms []string) map[string]*models.Quote {
	f.mu.Lock()
	f.calls++
	first := f.calls == 1
	out := make(map[string]*models.Quote, len(syms))
	for _, s := range syms {
		out[s] = f.lookup(s)
	}
	f.mu.Unlock()

	if first && f.block != nil {
		close(f.started)
		<-f.block
	}
	return out
}

type fakeNews struct {
	mu          sync.Mutex
	articles    map[string][]models.Article
	fetched     []string
	invalidated []string
}

func (f *fakeNews) Fetch(_ context.Context, sym string) []models.Article {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, sym)
	return f.articles[sym]
}

func (f *fakeNews) Invalidate(sym string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, sym)
}

type memStore struct {
	saved   []models.Holding
	loadErr error
	saveErr error
	saves   int
}

func (m *memStore) Load(context.Context) ([]models.Holding, error) {
	return m.saved, m.loadErr
}

func (m *memStore) Save(_ context.Context, h []models.Holding) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.saved = h
	return nil
}

type recordingAlerts struct {
	mu     sync.Mutex
	quotes []string
	news   []string
}

func (r *recordingAlerts) CheckQuote(q *models.Quote) {
	r.mu.Lock()
	r.quotes = append(r.quotes, q.Symbol)
	r.mu.Unlock()
}

func (r *recordingAlerts) CheckNews(sym string, _ []models.Article) {
	r.mu.Lock()
	r.news = append(r.news, sym)
	r.mu.Unlock()
}

type fixture struct {
	quotes *fakeQuotes
	news   *fakeNews
	store  *memStore
	alerts *recordingAlerts
}

func newFixture(saved []models.Holding) *fixture {
	return &fixture{
		quotes: &fakeQuotes{quotes: map[string]*models.Quote{
			"AAPL": quote("AAPL", 150, 3, 2.04),
			"MSFT": quote("MSFT", 300, -2, -0.66),
			"TSLA": quote("TSLA", 200, 10, 5.26),
		}},
		news: &fakeNews{articles: map[string][]models.Article{
			"AAPL": {{Title: "Apple beats", Symbol: "AAPL", Sentiment: models.SentimentResult{Score: 0.4, ImpactScore: 0.6, Label: models.SentimentPositive}}},
		}},
		store:  &memStore{saved: saved},
		alerts: &recordingAlerts{},
	}
}

func (f *fixture) session(t *testing.T) *Session {
	t.Helper()
	s, err := NewSession(context.Background(), SessionOptions{
		Quotes: f.quotes,
		News:   f.news,
		Store:  f.store,
		Alerts: f.alerts,
		Logger: infra.NopLogger(),
		Rand:   func() float64 { return 0.5 },
		Now:    func() time.Time { return time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return s
}

// ════════════════════════════════════════════════════════════════════
// Tests
// ════════════════════════════════════════════════════════════════════

func TestSessionRefreshEndToEnd(t *testing.T) {
	f := newFixture([]models.Holding{{Symbol: "AAPL", Shares: 10}, {Symbol: "MSFT", Shares: 5}})
	s := f.session(t)

	snap, err := s.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3000.0, snap.TotalValue)
	assert.Equal(t, 20.0, snap.TotalDayChange)
	assert.Equal(t, uint64(1), snap.Generation)
	assert.Equal(t, []string{"AAPL", "MSFT"}, f.news.fetched, "news fetched in holdings order")
	assert.ElementsMatch(t, []string{"AAPL", "MSFT"}, f.alerts.quotes)
	assert.Equal(t, []string{"AAPL", "MSFT"}, f.alerts.news)
	assert.Len(t, s.Articles("AAPL"), 1)
	assert.False(t, s.LastRefresh().IsZero())
}

func TestSessionLoadsDefaultsWhenNothingSaved(t *testing.T) {
	f := newFixture(nil)
	s := f.session(t)
	assert.Equal(t, DefaultHoldings(), s.Holdings())
}

func TestSessionLoadsDefaultsOnStoreError(t *testing.T) {
	f := newFixture(nil)
	f.store.loadErr = errors.New("corrupt")
	s := f.session(t)
	assert.Len(t, s.Holdings(), 10)
}

func TestSessionKeepsSavedEmptyPortfolio(t *testing.T) {
	f := newFixture([]models.Holding{})
	s := f.session(t)
	assert.Empty(t, s.Holdings())
}

func TestSessionRequiresServices(t *testing.T) {
	_, err := NewSession(context.Background(), SessionOptions{})
	assert.Error(t, err)
}

func TestSessionAddPersistsAndLoads(t *testing.T) {
	f := newFixture([]models.Holding{{Symbol: "AAPL", Shares: 10}})
	s := f.session(t)

	var got []models.PortfolioSnapshot
	s.Subscribe(func(snap models.PortfolioSnapshot) { got = append(got, snap) })

	h, err := s.Add(context.Background(), "tsla", 3)
	require.NoError(t, err)
	assert.Equal(t, models.Holding{Symbol: "TSLA", Shares: 3}, h)
	assert.Equal(t, 1, f.store.saves)
	assert.Equal(t, []models.Holding{{Symbol: "AAPL", Shares: 10}, {Symbol: "TSLA", Shares: 3}}, f.store.saved)

	snap := s.Snapshot()
	require.Len(t, snap.Positions, 2)
	assert.True(t, snap.Positions[1].Loading, "placeholder row until loaded")

	s.LoadSymbol(context.Background(), "TSLA")
	q, ok := s.Quote("TSLA")
	require.True(t, ok)
	assert.Equal(t, 200.0, q.Price)
	assert.False(t, s.Snapshot().Positions[1].Loading)

	require.Len(t, got, 2, "one snapshot for the add, one after loading")
}

func TestSessionAddIncrementsExisting(t *testing.T) {
	f := newFixture([]models.Holding{{Symbol: "AAPL", Shares: 10}})
	s := f.session(t)
	h, err := s.Add(context.Background(), "AAPL", 5)
	require.NoError(t, err)
	assert.Equal(t, 15.0, h.Shares)
	assert.Len(t, s.Holdings(), 1)
}

func TestSessionAddRollsBackOnSaveError(t *testing.T) {
	f := newFixture([]models.Holding{{Symbol: "AAPL", Shares: 10}})
	s := f.session(t)
	f.store.saveErr = errors.New("disk full")

	_, err := s.Add(context.Background(), "MSFT", 1)
	require.Error(t, err)
	assert.Equal(t, []models.Holding{{Symbol: "AAPL", Shares: 10}}, s.Holdings())
}

func TestSessionAddInvalid(t *testing.T) {
	f := newFixture([]models.Holding{})
	s := f.session(t)
	_, err := s.Add(context.Background(), "AAPL", 0)
	assert.ErrorIs(t, err, ErrInvalidHolding)
	assert.Zero(t, f.store.saves)
}

func TestSessionRemoveClearsState(t *testing.T) {
	f := newFixture([]models.Holding{{Symbol: "AAPL", Shares: 10}, {Symbol: "MSFT", Shares: 5}})
	s := f.session(t)
	_, err := s.Refresh(context.Background())
	require.NoError(t, err)

	require.NoError(t, s.Remove(context.Background(), "aapl"))

	_, ok := s.Quote("AAPL")
	assert.False(t, ok)
	assert.Empty(t, s.Articles("AAPL"))
	assert.Equal(t, []string{"AAPL"}, f.news.invalidated)
	assert.Equal(t, []models.Holding{{Symbol: "MSFT", Shares: 5}}, f.store.saved)
	assert.Equal(t, 1500.0, s.Snapshot().TotalValue)

	assert.ErrorIs(t, s.Remove(context.Background(), "AAPL"), ErrHoldingNotFound)
}

func TestSessionStaleRefreshDiscarded(t *testing.T) {
	f := newFixture([]models.Holding{{Symbol: "AAPL", Shares: 10}})
	f.quotes.block = make(chan struct{})
	f.quotes.started = make(chan struct{})
	s := f.session(t)

	done := make(chan error, 1)
	go func() {
		_, err := s.Refresh(context.Background())
		done <- err
	}()
	<-f.quotes.started

	f.quotes.set(quote("AAPL", 170, 5, 3))
	snap, err := s.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(2), snap.Generation)

	close(f.quotes.block)
	assert.ErrorIs(t, <-done, ErrSuperseded)

	q, ok := s.Quote("AAPL")
	require.True(t, ok)
	assert.Equal(t, 170.0, q.Price, "stale quote must not overwrite the newer one")
}

func TestSessionRefreshSkipsRemovedSymbol(t *testing.T) {
	f := newFixture([]models.Holding{{Symbol: "AAPL", Shares: 10}, {Symbol: "MSFT", Shares: 5}})
	f.quotes.block = make(chan struct{})
	f.quotes.started = make(chan struct{})
	s := f.session(t)

	done := make(chan error, 1)
	go func() {
		_, err := s.Refresh(context.Background())
		done <- err
	}()
	<-f.quotes.started
	require.NoError(t, s.Remove(context.Background(), "MSFT"))
	close(f.quotes.block)
	require.NoError(t, <-done)

	_, ok := s.Quote("MSFT")
	assert.False(t, ok)
	assert.Equal(t, 1500.0, s.Snapshot().TotalValue)
}

func TestSessionRefreshCancelled(t *testing.T) {
	f := newFixture([]models.Holding{{Symbol: "AAPL", Shares: 10}})
	s := f.session(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Refresh(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.news.fetched)
}
