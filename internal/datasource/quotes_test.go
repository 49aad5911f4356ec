package datasource

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/seenimoa/stockpulse/internal/infra"
	"github.com/seenimoa/stockpulse/pkg/models"
)

// fakeQuoteSource answers from a fixed price table or fails.
type fakeQuoteSource struct {
	name   string
	prices map[string]float64
	err    error
	delay  time.Duration
	calls  atomic.Int32

	mu       sync.Mutex
	inFlight int
	maxSeen  int
}

func (f *fakeQuoteSource) Name() string { return f.name }

func (f *fakeQuoteSource) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.maxSeen {
		f.maxSeen = f.inFlight
	}
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.prices[symbol]
	if !ok {
		return nil, ErrNotFound
	}
	return &models.Quote{Symbol: symbol, Name: symbol, Price: p, Source: f.name}, nil
}

func TestQuoteFetcherPrimaryWins(t *testing.T) {
	primary := &fakeQuoteSource{name: "primary", prices: map[string]float64{"AAPL": 150}}
	secondary := &fakeQuoteSource{name: "secondary", prices: map[string]float64{"AAPL": 149}}
	qf := NewQuoteFetcher(infra.NopLogger(), 5, primary, secondary)

	q := qf.GetQuote(context.Background(), "aapl")
	if q.Source != "primary" || q.Price != 150 {
		t.Errorf("unexpected quote %+v", q)
	}
	if secondary.calls.Load() != 0 {
		t.Error("secondary should not be called when primary succeeds")
	}
}

func TestQuoteFetcherFallsBack(t *testing.T) {
	primary := &fakeQuoteSource{name: "primary", err: ErrRateLimited}
	secondary := &fakeQuoteSource{name: "secondary", prices: map[string]float64{"MSFT": 300}}
	qf := NewQuoteFetcher(infra.NopLogger(), 5, primary, secondary)

	q := qf.GetQuote(context.Background(), "MSFT")
	if q.Source != "secondary" || q.Price != 300 {
		t.Errorf("unexpected quote %+v", q)
	}
	if primary.calls.Load() != 1 {
		t.Errorf("primary should be tried exactly once, got %d", primary.calls.Load())
	}
}

func TestQuoteFetcherAllFailReturnsNoData(t *testing.T) {
	qf := NewQuoteFetcher(infra.NopLogger(), 5,
		&fakeQuoteSource{name: "a", err: errors.New("boom")},
		&fakeQuoteSource{name: "b", err: &ErrHTTP{StatusCode: 500}},
	)
	q := qf.GetQuote(context.Background(), "ZZZZ")
	if !q.NoData {
		t.Fatal("expected the no-data quote")
	}
	if q.Symbol != "ZZZZ" || q.Name != "ZZZZ" || q.Price != 0 || q.Change != 0 || q.ChangePercent != 0 {
		t.Errorf("no-data quote must be zeroed, got %+v", q)
	}
}

func TestQuoteFetcherGetQuotes(t *testing.T) {
	src := &fakeQuoteSource{
		name:   "src",
		prices: map[string]float64{"AAPL": 150, "MSFT": 300, "TSLA": 200, "NVDA": 900},
		delay:  20 * time.Millisecond,
	}
	qf := NewQuoteFetcher(infra.NopLogger(), 2, src)

	got := qf.GetQuotes(context.Background(), []string{"AAPL", "MSFT", "TSLA", "NVDA", "NOPE"})
	if len(got) != 5 {
		t.Fatalf("expected an entry per symbol, got %d", len(got))
	}
	if got["MSFT"].Price != 300 {
		t.Errorf("MSFT = %+v", got["MSFT"])
	}
	if !got["NOPE"].NoData {
		t.Error("unknown symbol should map to the no-data quote")
	}
	if src.maxSeen > 2 {
		t.Errorf("concurrency limit exceeded: %d in flight", src.maxSeen)
	}
	if src.maxSeen < 2 {
		t.Errorf("expected concurrent fetches, max in flight %d", src.maxSeen)
	}
}
