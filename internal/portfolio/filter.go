package portfolio

import (
	"fmt"
	"slices"
	"strings"

	"github.com/seenimoa/stockpulse/pkg/models"
)

// SortKey selects the ordering of snapshot rows.
type SortKey string

const (
	SortBySymbol SortKey = "symbol" // ascending
	SortByPrice  SortKey = "price"  // descending
	SortByChange SortKey = "change" // percent change, descending
)

// ParseSortKey accepts "", symbol, price and change. The empty key keeps
// holdings order.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "", SortBySymbol, SortByPrice, SortByChange:
		return k, nil
	default:
		return "", fmt.Errorf("unknown sort key %q (want symbol, price or change)", s)
	}
}

// View narrows and orders snapshot rows for display.
type View struct {
	Sector string // "" or "all" keeps every sector
	Query  string // matches symbol or name, case-insensitive
	Sort   SortKey
}

// Apply returns the filtered, sorted rows. The input is not modified.
func (v View) Apply(positions []models.Position) []models.Position {
	sector := strings.TrimSpace(v.Sector)
	query := strings.ToLower(strings.TrimSpace(v.Query))

	out := make([]models.Position, 0, len(positions))
	for _, p := range positions {
		if sector != "" && !strings.EqualFold(sector, "all") && !strings.EqualFold(sector, p.Sector) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(p.Symbol), query) &&
			!strings.Contains(strings.ToLower(p.Name), query) {
			continue
		}
		out = append(out, p)
	}

	switch v.Sort {
	case SortBySymbol:
		slices.SortStableFunc(out, func(a, b models.Position) int { return strings.Compare(a.Symbol, b.Symbol) })
	case SortByPrice:
		slices.SortStableFunc(out, func(a, b models.Position) int { return cmpDesc(a.Price, b.Price) })
	case SortByChange:
		slices.SortStableFunc(out, func(a, b models.Position) int { return cmpDesc(a.ChangePercent, b.ChangePercent) })
	}
	return out
}

// Sectors lists the distinct sectors present in positions, sorted.
func Sectors(positions []models.Position) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range positions {
		if !seen[p.Sector] {
			seen[p.Sector] = true
			out = append(out, p.Sector)
		}
	}
	slices.Sort(out)
	return out
}

func cmpDesc(a, b float64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	default:
		return 0
	}
}
