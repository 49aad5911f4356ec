// Package portfolio owns the user's holdings and the session state around
// them, and derives the aggregate snapshot from holdings, quotes and news.
package portfolio

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/seenimoa/stockpulse/pkg/models"
	"github.com/seenimoa/stockpulse/pkg/utils"
)

var (
	// ErrInvalidHolding is returned when a symbol or share count fails validation.
	ErrInvalidHolding = errors.New("invalid holding")
	// ErrHoldingNotFound is returned when removing a symbol that is not held.
	ErrHoldingNotFound = errors.New("holding not found")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// addRequest is the validated input of Holdings.Add.
type addRequest struct {
	Symbol string  `validate:"required,max=12"`
	Shares float64 `validate:"gt=0"`
}

// DefaultHoldings is the starter portfolio used when no saved state exists.
func DefaultHoldings() []models.Holding {
	return []models.Holding{
		{Symbol: "AAPL", Shares: 10},
		{Symbol: "MSFT", Shares: 8},
		{Symbol: "GOOGL", Shares: 5},
		{Symbol: "TSLA", Shares: 15},
		{Symbol: "AMZN", Shares: 12},
		{Symbol: "NVDA", Shares: 6},
		{Symbol: "META", Shares: 8},
		{Symbol: "JPM", Shares: 20},
		{Symbol: "JNJ", Shares: 15},
		{Symbol: "V", Shares: 12},
	}
}

// Holdings is an insertion-ordered list of positions, unique by symbol.
// It is not safe for concurrent use; Session guards it.
type Holdings struct {
	items []models.Holding
	index map[string]int
}

// NewHoldings builds a list from saved state. Symbols are normalized,
// duplicates are merged and invalid rows are skipped.
func NewHoldings(items []models.Holding) *Holdings {
	h := &Holdings{index: make(map[string]int, len(items))}
	for _, it := range items {
		sym := utils.NormalizeTicker(it.Symbol)
		if validate.Struct(models.Holding{Symbol: sym, Shares: it.Shares}) != nil {
			continue
		}
		if i, ok := h.index[sym]; ok {
			h.items[i].Shares += it.Shares
			continue
		}
		h.index[sym] = len(h.items)
		h.items = append(h.items, models.Holding{Symbol: sym, Shares: it.Shares})
	}
	return h
}

// Add buys shares of symbol. An existing holding is incremented in place,
// a new one is appended. It returns the resulting holding.
func (h *Holdings) Add(symbol string, shares float64) (models.Holding, error) {
	req := addRequest{Symbol: utils.NormalizeTicker(symbol), Shares: shares}
	if err := validate.Struct(req); err != nil {
		return models.Holding{}, fmt.Errorf("%w: %v", ErrInvalidHolding, err)
	}

	if i, ok := h.index[req.Symbol]; ok {
		h.items[i].Shares += req.Shares
		return h.items[i], nil
	}
	h.index[req.Symbol] = len(h.items)
	h.items = append(h.items, models.Holding{Symbol: req.Symbol, Shares: req.Shares})
	return h.items[len(h.items)-1], nil
}

// Remove drops symbol entirely, keeping the order of the others.
func (h *Holdings) Remove(symbol string) error {
	sym := utils.NormalizeTicker(symbol)
	i, ok := h.index[sym]
	if !ok {
		return fmt.Errorf("%w: %s", ErrHoldingNotFound, sym)
	}
	h.items = append(h.items[:i], h.items[i+1:]...)
	delete(h.index, sym)
	for j := i; j < len(h.items); j++ {
		h.index[h.items[j].Symbol] = j
	}
	return nil
}

// Get returns the holding for symbol.
func (h *Holdings) Get(symbol string) (models.Holding, bool) {
	i, ok := h.index[utils.NormalizeTicker(symbol)]
	if !ok {
		return models.Holding{}, false
	}
	return h.items[i], true
}

// Has reports whether symbol is held.
func (h *Holdings) Has(symbol string) bool {
	_, ok := h.index[utils.NormalizeTicker(symbol)]
	return ok
}

// List returns a copy of the holdings in order.
func (h *Holdings) List() []models.Holding {
	out := make([]models.Holding, len(h.items))
	copy(out, h.items)
	return out
}

// Symbols returns the held symbols in order.
func (h *Holdings) Symbols() []string {
	out := make([]string, len(h.items))
	for i, it := range h.items {
		out[i] = it.Symbol
	}
	return out
}

// Len returns the number of holdings.
func (h *Holdings) Len() int { return len(h.items) }
