// Package models defines the core data structures used throughout stockpulse.
package models

import "time"

// Holding is a user's position in a single symbol. Holdings are unique by
// symbol within a portfolio; this is the only state that is persisted.
type Holding struct {
	Symbol string  `json:"symbol" yaml:"symbol" validate:"required,max=12"`
	Shares float64 `json:"shares" yaml:"shares" validate:"gte=0"`
}

// Quote is the latest price data for a symbol, normalized across providers.
type Quote struct {
	Symbol        string    `json:"symbol"         yaml:"symbol"`
	Name          string    `json:"name"           yaml:"name"`
	Price         float64   `json:"price"          yaml:"price"`
	Change        float64   `json:"change"         yaml:"change"`
	ChangePercent float64   `json:"change_percent" yaml:"change_percent"`
	Volume        int64     `json:"volume,omitempty"     yaml:"volume,omitempty"`
	MarketCap     string    `json:"market_cap,omitempty" yaml:"market_cap,omitempty"`
	NoData        bool      `json:"no_data,omitempty"    yaml:"no_data,omitempty"` // sentinel: every provider failed
	Source        string    `json:"source,omitempty"     yaml:"source,omitempty"`  // provider that answered
	FetchedAt     time.Time `json:"fetched_at"     yaml:"fetched_at"`
}

// NoDataQuote returns the placeholder quote used when every provider failed,
// so a row can still be rendered for the symbol.
func NoDataQuote(symbol string) *Quote {
	return &Quote{
		Symbol:    symbol,
		Name:      symbol,
		NoData:    true,
		FetchedAt: time.Now(),
	}
}

// SearchResult is a candidate symbol returned by a free-text search.
type SearchResult struct {
	Symbol string `json:"symbol" yaml:"symbol"`
	Name   string `json:"name"   yaml:"name"`
}

// PriceRange is a low/high pair (e.g. the synthetic 52-week range).
type PriceRange struct {
	Low  float64 `json:"low"  yaml:"low"`
	High float64 `json:"high" yaml:"high"`
}
