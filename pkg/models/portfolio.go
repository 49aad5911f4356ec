package models

import "time"

// Position is one row of the portfolio snapshot: a holding joined with its
// quote, news rollup and the derived metrics.
type Position struct {
	Symbol          string           `json:"symbol"            yaml:"symbol"`
	Name            string           `json:"name"              yaml:"name"`
	Sector          string           `json:"sector"            yaml:"sector"`
	Shares          float64          `json:"shares"            yaml:"shares"`
	Price           float64          `json:"price"             yaml:"price"`
	Change          float64          `json:"change"            yaml:"change"`
	ChangePercent   float64          `json:"change_percent"    yaml:"change_percent"`
	PositionValue   float64          `json:"position_value"    yaml:"position_value"`
	DayChange       float64          `json:"day_change"        yaml:"day_change"`
	GainLoss        float64          `json:"gain_loss"         yaml:"gain_loss"`
	GainLossPercent float64          `json:"gain_loss_percent" yaml:"gain_loss_percent"`
	WeightPercent   float64          `json:"weight_percent"    yaml:"weight_percent"`
	Range52Week     PriceRange       `json:"range_52w"         yaml:"range_52w"`
	Volatility      Volatility       `json:"volatility"        yaml:"volatility"`
	Sparkline       []float64        `json:"sparkline,omitempty" yaml:"sparkline,omitempty"`
	Sentiment       SentimentSummary `json:"sentiment"         yaml:"sentiment"`
	NewsImpact      float64          `json:"news_impact"       yaml:"news_impact"` // size-weighted
	ArticleCount    int              `json:"article_count"     yaml:"article_count"`
	Loading         bool             `json:"loading,omitempty" yaml:"loading,omitempty"` // no quote yet
	NoData          bool             `json:"no_data,omitempty" yaml:"no_data,omitempty"`
}

// PortfolioSnapshot is the derived aggregate view. It is recomputed from the
// current holdings, quotes and news and never stored.
type PortfolioSnapshot struct {
	TotalValue         float64    `json:"total_value"         yaml:"total_value"`
	TotalDayChange     float64    `json:"total_day_change"    yaml:"total_day_change"`
	TotalGainLoss      float64    `json:"total_gain_loss"     yaml:"total_gain_loss"`
	ActivePositions    int        `json:"active_positions"    yaml:"active_positions"`
	PortfolioSentiment float64    `json:"portfolio_sentiment" yaml:"portfolio_sentiment"`
	PortfolioImpact    float64    `json:"portfolio_impact"    yaml:"portfolio_impact"`
	Positions          []Position `json:"positions"           yaml:"positions"`
	Generation         uint64     `json:"generation"          yaml:"generation"`
	ComputedAt         time.Time  `json:"computed_at"         yaml:"computed_at"`
}

// AlertKind distinguishes price and news alerts.
type AlertKind string

const (
	AlertPrice AlertKind = "price"
	AlertNews  AlertKind = "news"
)

// Alert is a user-facing notification raised during a refresh.
type Alert struct {
	ID      string    `json:"id"      yaml:"id"`
	Kind    AlertKind `json:"kind"    yaml:"kind"`
	Symbol  string    `json:"symbol"  yaml:"symbol"`
	Message string    `json:"message" yaml:"message"`
	Read    bool      `json:"read"    yaml:"read"`
	Green   bool      `json:"green,omitempty" yaml:"green,omitempty"`
	Time    time.Time `json:"time"    yaml:"time"`
}
