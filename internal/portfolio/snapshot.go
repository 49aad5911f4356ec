package portfolio

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/seenimoa/stockpulse/internal/analysis/sentiment"
	"github.com/seenimoa/stockpulse/pkg/models"
	"github.com/seenimoa/stockpulse/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// Aggregation
// ════════════════════════════════════════════════════════════════════

var hundred = decimal.NewFromInt(100)

// SnapshotInput is the state a snapshot is derived from. Quotes and News
// are keyed by symbol; a missing quote renders a loading row.
type SnapshotInput struct {
	Holdings   []models.Holding
	Quotes     map[string]*models.Quote
	News       map[string][]models.Article
	Generation uint64
	Now        time.Time
	Rand       func() float64 // sparkline source; nil disables sparklines
}

// Compute derives the portfolio snapshot. Money totals are summed in
// decimal and converted back to float64 once.
func Compute(in SnapshotInput) models.PortfolioSnapshot {
	snap := models.PortfolioSnapshot{
		ActivePositions: len(in.Holdings),
		Positions:       make([]models.Position, 0, len(in.Holdings)),
		Generation:      in.Generation,
		ComputedAt:      in.Now,
	}

	values := make([]decimal.Decimal, len(in.Holdings))
	total, dayChange, gainLoss := decimal.Zero, decimal.Zero, decimal.Zero

	for i, h := range in.Holdings {
		pos := models.Position{
			Symbol: h.Symbol,
			Name:   h.Symbol,
			Sector: utils.SectorOf(h.Symbol),
			Shares: h.Shares,
		}

		shares := decimal.NewFromFloat(h.Shares)
		q := in.Quotes[h.Symbol]
		switch {
		case q == nil:
			pos.Loading = true
		case q.NoData:
			pos.NoData = true
			pos.Name = q.Name
		default:
			price := decimal.NewFromFloat(q.Price)
			change := decimal.NewFromFloat(q.Change)
			value := price.Mul(shares)
			day := change.Mul(shares)
			// price - mock = change*10
			gl := change.Mul(decimal.NewFromInt(10)).Mul(shares)

			values[i] = value
			total = total.Add(value)
			dayChange = dayChange.Add(day)
			gainLoss = gainLoss.Add(gl)

			if q.Name != "" {
				pos.Name = q.Name
			}
			pos.Price = q.Price
			pos.Change = q.Change
			pos.ChangePercent = q.ChangePercent
			pos.PositionValue = value.InexactFloat64()
			pos.DayChange = day.InexactFloat64()
			pos.GainLoss = gl.InexactFloat64()
			pos.GainLossPercent = GainLossPercent(q.Price, q.Change)
			pos.Range52Week = Range52Week(q.Price, q.ChangePercent)
			pos.Volatility = VolatilityOf(q.ChangePercent)
			if in.Rand != nil {
				pos.Sparkline = Sparkline(q.Price, in.Rand)
			}
		}
		if pos.Volatility == "" {
			pos.Volatility = models.VolatilityLow
		}

		articles := in.News[h.Symbol]
		pos.Sentiment = sentiment.Summarize(articles)
		pos.ArticleCount = len(articles)
		pos.NewsImpact = pos.Sentiment.Impact * SizeMultiplier(pos.PositionValue)

		snap.Positions = append(snap.Positions, pos)
	}

	snap.TotalValue = total.InexactFloat64()
	snap.TotalDayChange = dayChange.InexactFloat64()
	snap.TotalGainLoss = gainLoss.InexactFloat64()

	if total.IsZero() {
		return snap
	}

	weightedScore, weightedImpact := decimal.Zero, decimal.Zero
	for i := range snap.Positions {
		p := &snap.Positions[i]
		p.WeightPercent = values[i].Div(total).Mul(hundred).InexactFloat64()
		// A holding without articles contributes a neutral 0.
		weightedScore = weightedScore.Add(values[i].Mul(decimal.NewFromFloat(p.Sentiment.Score)))
		weightedImpact = weightedImpact.Add(values[i].Mul(decimal.NewFromFloat(p.Sentiment.Impact)))
	}
	snap.PortfolioSentiment = weightedScore.Div(total).InexactFloat64()
	snap.PortfolioImpact = weightedImpact.Div(total).InexactFloat64()
	return snap
}
