// Package alerts raises price-drop and negative-news notifications and
// keeps the most recent ones for display.
package alerts

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phuslu/log"

	"github.com/seenimoa/stockpulse/pkg/models"
)

// MaxAlerts is how many alerts the feed retains.
const MaxAlerts = 10

// Feed is a bounded, newest-first list of alerts.
type Feed struct {
	mu      sync.Mutex
	items   []models.Alert
	seen    map[string]struct{} // news article keys already alerted
	dropPct float64
	now     func() time.Time
	logger  *log.Logger
}

// NewFeed creates a feed. A price alert fires when a quote is down by at
// least dropPct percent; 0 alerts on any decrease.
func NewFeed(dropPct float64, logger *log.Logger) *Feed {
	if logger == nil {
		logger = &log.DefaultLogger
	}
	return &Feed{
		items:   make([]models.Alert, 0, MaxAlerts),
		seen:    make(map[string]struct{}),
		dropPct: math.Abs(dropPct),
		now:     time.Now,
		logger:  logger,
	}
}

// SetClock replaces the time source.
func (f *Feed) SetClock(now func() time.Time) {
	f.mu.Lock()
	f.now = now
	f.mu.Unlock()
}

// Add records an alert, filling in a missing ID and time.
func (f *Feed) Add(a models.Alert) models.Alert {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.add(a)
}

func (f *Feed) add(a models.Alert) models.Alert {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Time.IsZero() {
		a.Time = f.now()
	}
	f.items = append([]models.Alert{a}, f.items...)
	if len(f.items) > MaxAlerts {
		f.items = f.items[:MaxAlerts]
	}
	f.logger.Info().Str("kind", string(a.Kind)).Str("symbol", a.Symbol).Msg(a.Message)
	return a
}

// CheckQuote raises a price alert when q is down by the threshold.
func (f *Feed) CheckQuote(q *models.Quote) {
	if q == nil || q.NoData || q.Change >= 0 {
		return
	}
	if math.Abs(q.ChangePercent) < f.dropPct {
		return
	}
	f.Add(models.Alert{
		Kind:   models.AlertPrice,
		Symbol: q.Symbol,
		Message: fmt.Sprintf("%s price decreased by $%.2f (%.2f%%)",
			q.Symbol, math.Abs(q.Change), math.Abs(q.ChangePercent)),
		Green: true,
	})
}

// CheckNews raises one alert per negative direct article, never twice for
// the same article.
func (f *Feed) CheckNews(symbol string, articles []models.Article) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range articles {
		if a.Synthetic || a.IsCompetitor || a.Sentiment.Label != models.SentimentNegative {
			continue
		}
		key := a.URL
		if key == "" || key == "#" {
			key = symbol + "|" + a.Title
		}
		if _, dup := f.seen[key]; dup {
			continue
		}
		f.seen[key] = struct{}{}
		f.add(models.Alert{
			Kind:    models.AlertNews,
			Symbol:  symbol,
			Message: fmt.Sprintf("Negative news for %s: %s", symbol, a.Title),
		})
	}
}

// List returns the alerts, newest first.
func (f *Feed) List() []models.Alert {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Alert, len(f.items))
	copy(out, f.items)
	return out
}

// Unread counts alerts not yet marked read.
func (f *Feed) Unread() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, a := range f.items {
		if !a.Read {
			n++
		}
	}
	return n
}

// MarkAllRead marks every retained alert as read.
func (f *Feed) MarkAllRead() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		f.items[i].Read = true
	}
}
