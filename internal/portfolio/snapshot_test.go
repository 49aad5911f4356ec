package portfolio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/stockpulse/pkg/models"
)

func quote(sym string, price, change, pct float64) *models.Quote {
	return &models.Quote{Symbol: sym, Name: sym + " Inc", Price: price, Change: change, ChangePercent: pct}
}

func TestComputeTotals(t *testing.T) {
	snap := Compute(SnapshotInput{
		Holdings: []models.Holding{{Symbol: "AAPL", Shares: 10}, {Symbol: "MSFT", Shares: 5}},
		Quotes: map[string]*models.Quote{
			"AAPL": quote("AAPL", 150, 3, 2.04),
			"MSFT": quote("MSFT", 300, -2, -0.66),
		},
	})

	assert.Equal(t, 3000.0, snap.TotalValue)
	assert.Equal(t, 20.0, snap.TotalDayChange)
	// 10*3*10 + 5*-2*10
	assert.Equal(t, 200.0, snap.TotalGainLoss)
	assert.Equal(t, 2, snap.ActivePositions)

	require.Len(t, snap.Positions, 2)
	assert.InDelta(t, 50.0, snap.Positions[0].WeightPercent, 1e-9)
	assert.InDelta(t, 50.0, snap.Positions[1].WeightPercent, 1e-9)
	assert.Equal(t, "AAPL Inc", snap.Positions[0].Name)
	assert.Equal(t, "Technology", snap.Positions[0].Sector)
}

func TestComputeAvoidsFloatDrift(t *testing.T) {
	snap := Compute(SnapshotInput{
		Holdings: []models.Holding{{Symbol: "A", Shares: 3}, {Symbol: "B", Shares: 3}},
		Quotes: map[string]*models.Quote{
			"A": quote("A", 0.1, 0, 0),
			"B": quote("B", 0.2, 0, 0),
		},
	})
	assert.Equal(t, 0.9, snap.TotalValue)
}

func TestComputeEmptyPortfolio(t *testing.T) {
	snap := Compute(SnapshotInput{})
	assert.Zero(t, snap.TotalValue)
	assert.Zero(t, snap.PortfolioSentiment)
	assert.Zero(t, snap.PortfolioImpact)
	assert.NotNil(t, snap.Positions)
}

func TestComputeZeroShares(t *testing.T) {
	var snap models.PortfolioSnapshot
	require.NotPanics(t, func() {
		snap = Compute(SnapshotInput{
			Holdings: []models.Holding{{Symbol: "AAPL", Shares: 0}},
			Quotes:   map[string]*models.Quote{"AAPL": quote("AAPL", 150, 3, 2.04)},
		})
	})

	assert.Zero(t, snap.TotalValue)
	assert.Zero(t, snap.PortfolioSentiment)
	require.Len(t, snap.Positions, 1)
	assert.Zero(t, snap.Positions[0].PositionValue)
	assert.Zero(t, snap.Positions[0].WeightPercent)
}

func TestComputeLoadingAndNoDataRows(t *testing.T) {
	snap := Compute(SnapshotInput{
		Holdings: []models.Holding{{Symbol: "AAPL", Shares: 10}, {Symbol: "ZZZZ", Shares: 1}},
		Quotes:   map[string]*models.Quote{"ZZZZ": models.NoDataQuote("ZZZZ")},
	})
	require.Len(t, snap.Positions, 2)
	assert.True(t, snap.Positions[0].Loading)
	assert.True(t, snap.Positions[1].NoData)
	assert.Zero(t, snap.TotalValue)
	for _, p := range snap.Positions {
		assert.Zero(t, p.WeightPercent, "weight must be zero-guarded")
	}
}

func TestComputeWeightedSentiment(t *testing.T) {
	art := func(score, impact float64, label models.SentimentLabel) models.Article {
		return models.Article{Sentiment: models.SentimentResult{Score: score, ImpactScore: impact, Label: label}}
	}
	snap := Compute(SnapshotInput{
		Holdings: []models.Holding{{Symbol: "AAPL", Shares: 30}, {Symbol: "MSFT", Shares: 10}},
		Quotes: map[string]*models.Quote{
			"AAPL": quote("AAPL", 100, 0, 0),
			"MSFT": quote("MSFT", 100, 0, 0),
		},
		News: map[string][]models.Article{
			"AAPL": {art(0.4, 0.6, models.SentimentPositive), art(0.2, 0.4, models.SentimentPositive)},
			// MSFT has no articles and counts as neutral 0
		},
	})

	// AAPL: mean score 0.3, mean impact 0.5, weight 3000 of 4000.
	assert.InDelta(t, 0.3*0.75, snap.PortfolioSentiment, 1e-9)
	assert.InDelta(t, 0.5*0.75, snap.PortfolioImpact, 1e-9)

	aapl := snap.Positions[0]
	assert.Equal(t, models.SentimentPositive, aapl.Sentiment.Label)
	assert.Equal(t, 2, aapl.ArticleCount)
	// 3000 is a small position
	assert.InDelta(t, 0.5*0.8, aapl.NewsImpact, 1e-9)

	msft := snap.Positions[1]
	assert.Equal(t, models.SentimentNeutral, msft.Sentiment.Label)
	assert.Zero(t, msft.NewsImpact)
}

func TestComputeIsDeterministicWithoutRand(t *testing.T) {
	in := SnapshotInput{
		Holdings: []models.Holding{{Symbol: "AAPL", Shares: 10}},
		Quotes:   map[string]*models.Quote{"AAPL": quote("AAPL", 150, 3, 2)},
		Now:      time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
	}
	a, b := Compute(in), Compute(in)
	assert.Equal(t, a, b)
	assert.Nil(t, a.Positions[0].Sparkline)
}
