package datasource

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newFinnhubServer(t *testing.T, routes map[string]string) *Finnhub {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("token") != "fh-key" {
			t.Errorf("missing token on %s", r.URL.Path)
		}
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewFinnhub(srv.URL, "fh-key", 7, srv.Client())
}

func TestFinnhubGetQuoteWithProfile(t *testing.T) {
	fh := newFinnhubServer(t, map[string]string{
		"/quote":          `{"c": 300, "d": -2, "dp": -0.66, "pc": 302}`,
		"/stock/profile2": `{"name": "Microsoft Corp", "marketCapitalization": 3100000.5}`,
	})
	q, err := fh.GetQuote(context.Background(), "MSFT")
	if err != nil {
		t.Fatalf("GetQuote: %v", err)
	}
	if q.Name != "Microsoft Corp" || q.Price != 300 || q.Change != -2 || q.ChangePercent != -0.66 {
		t.Errorf("unexpected quote %+v", q)
	}
	if q.MarketCap != "3100000.5" {
		t.Errorf("market cap = %q", q.MarketCap)
	}
	if q.Source != "Finnhub" {
		t.Errorf("source = %q", q.Source)
	}
}

func TestFinnhubQuoteDerivesChange(t *testing.T) {
	fh := newFinnhubServer(t, map[string]string{
		"/quote": `{"c": 110, "pc": 100}`,
	})
	q, err := fh.GetQuote(context.Background(), "XYZ")
	if err != nil {
		t.Fatalf("GetQuote: %v", err)
	}
	if q.Change != 10 {
		t.Errorf("change = %v, want 10", q.Change)
	}
	if math.Abs(q.ChangePercent-10) > 1e-9 {
		t.Errorf("change percent = %v, want 10", q.ChangePercent)
	}
	if q.Name != "XYZ" {
		t.Errorf("name should fall back to symbol when profile is missing, got %q", q.Name)
	}
}

func TestFinnhubQuoteZeroPreviousClose(t *testing.T) {
	fh := newFinnhubServer(t, map[string]string{"/quote": `{"c": 5}`})
	q, err := fh.GetQuote(context.Background(), "NEW")
	if err != nil {
		t.Fatalf("GetQuote: %v", err)
	}
	if q.Change != 5 || q.ChangePercent != 500 {
		t.Errorf("change/pct = %v/%v, want 5/500", q.Change, q.ChangePercent)
	}
}

func TestFinnhubQuoteMalformed(t *testing.T) {
	fh := newFinnhubServer(t, map[string]string{"/quote": `{"c": null, "pc": 10}`})
	if _, err := fh.GetQuote(context.Background(), "AAPL"); !errors.Is(err, ErrMalformed) {
		t.Errorf("err = %v, want ErrMalformed", err)
	}
}

func TestFinnhubSearch(t *testing.T) {
	fh := newFinnhubServer(t, map[string]string{
		"/search": `{"count": 2, "result": [{"symbol": "TSLA", "description": "TESLA INC"}, {"symbol": "TL0.DE", "description": "TESLA INC"}]}`,
	})
	res, err := fh.Search(context.Background(), "tesla")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res) != 2 || res[0].Symbol != "TSLA" || res[0].Name != "TESLA INC" {
		t.Errorf("unexpected %+v", res)
	}
}

func TestFinnhubCompanyNewsWindow(t *testing.T) {
	var gotFrom, gotTo string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotFrom = r.URL.Query().Get("from")
		gotTo = r.URL.Query().Get("to")
		w.Write([]byte(`[
			{"headline": "Apple beats estimates", "summary": "<p>Strong <b>quarter</b></p>", "datetime": 1735689600,
			 "source": "Reuters", "url": "https://example.com/1", "image": "", "related": "AAPL"},
			{"headline": "", "summary": "no headline", "datetime": 1735689600}]`))
	}))
	defer srv.Close()

	fh := NewFinnhub(srv.URL, "fh-key", 7, srv.Client())
	fh.now = func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) }

	raws, err := fh.CompanyNews(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("CompanyNews: %v", err)
	}
	if gotFrom != "2025-03-03" || gotTo != "2025-03-10" {
		t.Errorf("window = %s..%s", gotFrom, gotTo)
	}
	if len(raws) != 1 {
		t.Fatalf("expected headline-less items dropped, got %d", len(raws))
	}
	if !raws[0].Datetime.Equal(time.Unix(1735689600, 0)) {
		t.Errorf("datetime = %v", raws[0].Datetime)
	}
}

func TestFinnhubMarketNewsRelated(t *testing.T) {
	fh := newFinnhubServer(t, map[string]string{
		"/news": `[{"headline": "Stocks close higher", "summary": "x", "datetime": 1735689600, "source": "CNBC", "url": "u", "related": "SPY, QQQ"},
		           {"headline": "Oil slides", "summary": "y", "datetime": 1735689600, "source": "MarketWatch", "url": "v", "related": ""}]`,
	})
	raws, err := fh.MarketNews(context.Background())
	if err != nil {
		t.Fatalf("MarketNews: %v", err)
	}
	if raws[0].Related != "SPY" {
		t.Errorf("related = %q, want SPY", raws[0].Related)
	}
	if raws[1].Related != "" {
		t.Errorf("related = %q, want empty", raws[1].Related)
	}
}

func TestFinnhubNoKey(t *testing.T) {
	fh := NewFinnhub("http://127.0.0.1:1", "", 7, http.DefaultClient)
	if _, err := fh.Search(context.Background(), "x"); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("err = %v, want ErrNoAPIKey", err)
	}
}

func TestRedact(t *testing.T) {
	if got := redact("https://finnhub.io/api/v1/quote?symbol=AAPL&token=secret"); got != "https://finnhub.io/api/v1/quote" {
		t.Errorf("redact = %q", got)
	}
}
