package models

// SentimentLabel classifies an article or a rollup.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "Positive"
	SentimentNeutral  SentimentLabel = "Neutral"
	SentimentNegative SentimentLabel = "Negative"
)

// NewsType tells whether an article is about the holding or a competitor.
type NewsType string

const (
	NewsDirect     NewsType = "direct"
	NewsCompetitor NewsType = "competitor"
)

// SentimentResult is the scored view of one article.
type SentimentResult struct {
	Score       float64        `json:"score"        yaml:"score"`        // -0.8 .. +0.8
	Label       SentimentLabel `json:"label"        yaml:"label"`
	ImpactScore float64        `json:"impact_score" yaml:"impact_score"` // 0.1 .. 1.0
	NewsType    NewsType       `json:"news_type"    yaml:"news_type"`
}

// SentimentSummary rolls up the articles of one holding.
type SentimentSummary struct {
	Label    SentimentLabel `json:"label"    yaml:"label"`
	Score    float64        `json:"score"    yaml:"score"`  // mean article score
	Impact   float64        `json:"impact"   yaml:"impact"` // mean article impact
	Positive int            `json:"positive" yaml:"positive"`
	Negative int            `json:"negative" yaml:"negative"`
	Neutral  int            `json:"neutral"  yaml:"neutral"`
}

// Volatility is a coarse label derived from the day's percent move.
type Volatility string

const (
	VolatilityLow    Volatility = "Low"
	VolatilityMedium Volatility = "Medium"
	VolatilityHigh   Volatility = "High"
)
