package portfolio

import (
	"math"

	"github.com/seenimoa/stockpulse/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Per-position derived metrics
// ════════════════════════════════════════════════════════════════════

// Sparkline parameters: SparklinePoints values, each within ±5% of price.
const (
	SparklinePoints = 12
	sparklineBase   = 0.95
	sparklineSpread = 0.1
)

// Position size buckets for the size-weighted news impact.
const (
	LargePositionValue  = 50_000.0
	MediumPositionValue = 10_000.0
)

// MockPurchasePrice is the synthetic cost basis: ten days of today's move
// back from the current price.
func MockPurchasePrice(price, change float64) float64 {
	return price - change*10
}

// GainLossPercent is the return against the mock cost basis, 0 when the
// basis is not positive.
func GainLossPercent(price, change float64) float64 {
	mock := MockPurchasePrice(price, change)
	if mock <= 0 {
		return 0
	}
	return (price - mock) / mock * 100
}

// Range52Week synthesizes a yearly range from today's percent move.
func Range52Week(price, changePercent float64) models.PriceRange {
	spread := price * math.Abs(changePercent) / 100 * 2
	return models.PriceRange{
		Low:  math.Max(price-spread, price*0.7),
		High: price + spread,
	}
}

// VolatilityOf labels the day's percent move.
func VolatilityOf(changePercent float64) models.Volatility {
	abs := math.Abs(changePercent)
	switch {
	case abs > 5:
		return models.VolatilityHigh
	case abs > 2:
		return models.VolatilityMedium
	default:
		return models.VolatilityLow
	}
}

// SizeMultiplier scales a news impact by how much money is exposed.
func SizeMultiplier(positionValue float64) float64 {
	switch {
	case positionValue > LargePositionValue:
		return 1.5
	case positionValue > MediumPositionValue:
		return 1.1
	default:
		return 0.8
	}
}

// Sparkline returns SparklinePoints synthetic prices around price. rnd must
// return values in [0, 1).
func Sparkline(price float64, rnd func() float64) []float64 {
	if price <= 0 {
		return nil
	}
	out := make([]float64, SparklinePoints)
	for i := range out {
		out[i] = price * (sparklineBase + rnd()*sparklineSpread)
	}
	return out
}
