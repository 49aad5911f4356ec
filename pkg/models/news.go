package models

import "time"

// RawArticle is a news record as delivered by a provider, before tagging and scoring.
type RawArticle struct {
	Headline string    `json:"headline"`
	Summary  string    `json:"summary"`
	Datetime time.Time `json:"datetime"`
	Source   string    `json:"source"`
	URL      string    `json:"url"`
	Image    string    `json:"image,omitempty"`
	Related  string    `json:"related,omitempty"` // provider's related ticker, if any
}

// Article is a news article attached to a holding, either about the symbol
// itself (direct) or about one of its competitors.
type Article struct {
	Title        string          `json:"title"                yaml:"title"`
	Description  string          `json:"description"          yaml:"description"`
	Symbol       string          `json:"symbol"               yaml:"symbol"`
	PublishedAt  time.Time       `json:"published_at"         yaml:"published_at"`
	Source       string          `json:"source"               yaml:"source"`
	URL          string          `json:"url"                  yaml:"url"`
	ImageURL     string          `json:"image_url,omitempty"  yaml:"image_url,omitempty"`
	IsCompetitor bool            `json:"is_competitor"        yaml:"is_competitor"`
	Synthetic    bool            `json:"synthetic,omitempty"  yaml:"synthetic,omitempty"` // placeholder, not from a provider
	Sentiment    SentimentResult `json:"sentiment"            yaml:"sentiment"`
}
