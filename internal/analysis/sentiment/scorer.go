// Package sentiment implements the keyword-based sentiment and impact
// scorer applied to every news article. It is offline and deterministic
// except for the impact jitter term, which is injectable.
package sentiment

import (
	"math"
	"math/rand/v2"
	"strings"
	"time"
	"unicode"

	"github.com/seenimoa/stockpulse/pkg/models"
)

// ------------------------------------------------------------------
// Keyword tables (lowercase). Single words match tokens, two-word
// phrases match adjacent token pairs. Every occurrence counts once.
// ------------------------------------------------------------------

var positiveWords = map[string]bool{
	"beat": true, "beats": true, "surge": true, "surges": true, "soar": true, "soars": true,
	"rally": true, "rallies": true, "gain": true, "gains": true, "growth": true, "strong": true,
	"upgrade": true, "upgraded": true, "outperform": true, "record": true, "profit": true,
	"profitable": true, "bullish": true, "positive": true, "rise": true, "rises": true,
	"jump": true, "jumps": true, "boost": true, "boosts": true, "exceed": true, "exceeds": true,
	"optimistic": true, "breakthrough": true, "expands": true, "expansion": true, "win": true, "wins": true,
}

var negativeWords = map[string]bool{
	"miss": true, "misses": true, "fall": true, "falls": true, "drop": true, "drops": true,
	"plunge": true, "plunges": true, "slump": true, "decline": true, "declines": true,
	"weak": true, "loss": true, "losses": true, "downgrade": true, "downgraded": true,
	"bearish": true, "negative": true, "lawsuit": true, "investigation": true, "fraud": true,
	"layoffs": true, "recall": true, "crash": true, "tumble": true, "tumbles": true,
	"warning": true, "concern": true, "concerns": true, "underperform": true, "slowdown": true,
}

var positivePhrases = map[string]bool{
	"record high": true, "all-time high": true, "beats estimates": true, "raises guidance": true,
	"strong demand": true, "buy rating": true,
}

var negativePhrases = map[string]bool{
	"sell off": true, "cuts guidance": true, "misses estimates": true, "job cuts": true,
	"sell rating": true, "weak demand": true, "data breach": true,
}

// sourceWeight is the credibility bonus for known outlets, matched by
// case-insensitive substring in table order.
var sourceWeights = []struct {
	match  string
	weight float64
}{
	{"reuters", 0.30},
	{"bloomberg", 0.30},
	{"wall street journal", 0.28},
	{"wsj", 0.28},
	{"financial times", 0.28},
	{"cnbc", 0.25},
	{"marketwatch", 0.22},
	{"barron", 0.22},
	{"yahoo", 0.20},
	{"seeking alpha", 0.18},
	{"seekingalpha", 0.18},
	{"benzinga", 0.17},
	{"motley fool", 0.12},
	{"fool", 0.12},
}

// DefaultSourceWeight applies to outlets missing from the table.
const DefaultSourceWeight = 0.15

// BaseImpact is the impact floor before source and content adjustments.
const BaseImpact = 0.2

// topic is a content category that raises the impact multiplier once
// when any of its terms appears.
type topic struct {
	name  string
	bonus float64
	terms []string
}

var topics = []topic{
	{"earnings", 0.5, []string{"earnings", "quarterly", "revenue", "eps", "guidance", "results"}},
	{"leadership", 0.3, []string{"ceo", "cfo", "executive", "chairman", "resigns", "appointed", "leadership"}},
	{"m&a", 0.4, []string{"acquisition", "acquire", "acquires", "merger", "buyout", "takeover"}},
	{"product", 0.25, []string{"launch", "launches", "unveils", "unveiled", "product", "release"}},
	{"regulatory", 0.35, []string{"regulatory", "regulator", "sec", "ftc", "antitrust", "lawsuit", "probe", "investigation", "fine"}},
	{"layoffs", 0.3, []string{"layoffs", "layoff", "job cuts", "restructuring"}},
	{"analyst", 0.2, []string{"upgrade", "downgrade", "analyst", "analysts", "price target", "rating"}},
	{"corporate", 0.2, []string{"dividend", "buyback", "repurchase", "stock split", "spinoff", "spin-off"}},
}

const (
	maxScore   = 0.8
	stepScore  = 0.2
	minImpact  = 0.1
	maxImpact  = 1.0
	jitterLow  = 0.8
	jitterHigh = 1.2
)

// Scorer turns provider records into sentiment results.
type Scorer struct {
	jitter func() float64
	now    func() time.Time
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithJitter replaces the random impact multiplier. fn should return a
// value in [0.8, 1.2]; results outside are clamped.
func WithJitter(fn func() float64) Option {
	return func(s *Scorer) { s.jitter = fn }
}

// WithClock replaces the time source used for the age bonus.
func WithClock(now func() time.Time) Option {
	return func(s *Scorer) { s.now = now }
}

// NewScorer creates a scorer with uniform jitter and the wall clock.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{
		jitter: func() float64 { return jitterLow + rand.Float64()*(jitterHigh-jitterLow) },
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score returns the sentiment result for one article. Score and label are
// a pure function of the text; only the impact carries jitter.
func (s *Scorer) Score(raw models.RawArticle, newsType models.NewsType) models.SentimentResult {
	text := raw.Headline + " " + raw.Summary
	score, label := Polarity(text)
	return models.SentimentResult{
		Score:       score,
		Label:       label,
		ImpactScore: s.Impact(raw),
		NewsType:    newsType,
	}
}

// Polarity counts keyword hits in text and maps the balance to a score in
// [-0.8, 0.8] and a label.
func Polarity(text string) (float64, models.SentimentLabel) {
	pos, neg := countKeywords(tokenize(text))
	switch {
	case pos > neg:
		return math.Min(maxScore, float64(pos-neg)*stepScore), models.SentimentPositive
	case neg > pos:
		return math.Max(-maxScore, float64(neg-pos)*-stepScore), models.SentimentNegative
	default:
		return 0, models.SentimentNeutral
	}
}

// Impact estimates how much an article could move the price, in [0.1, 1.0].
func (s *Scorer) Impact(raw models.RawArticle) float64 {
	tokens := tokenize(raw.Headline + " " + raw.Summary)

	impact := (BaseImpact + SourceWeight(raw.Source)) * contentMultiplier(tokens)
	impact += AgeBonus(s.now().Sub(raw.Datetime), raw.Datetime.IsZero())

	j := s.jitter()
	j = math.Max(jitterLow, math.Min(jitterHigh, j))
	impact *= j

	return clamp(impact, minImpact, maxImpact)
}

// SourceWeight returns the credibility bonus for an outlet name.
func SourceWeight(source string) float64 {
	lower := strings.ToLower(source)
	if lower == "" {
		return DefaultSourceWeight
	}
	for _, sw := range sourceWeights {
		if strings.Contains(lower, sw.match) {
			return sw.weight
		}
	}
	return DefaultSourceWeight
}

// contentMultiplier is 1.0 plus the bonus of every topic present in tokens.
func contentMultiplier(tokens []string) float64 {
	present := make(map[string]bool, len(tokens)*2)
	for i, tok := range tokens {
		present[tok] = true
		if i+1 < len(tokens) {
			present[tok+" "+tokens[i+1]] = true
		}
	}

	m := 1.0
	for _, tp := range topics {
		for _, term := range tp.terms {
			if present[term] {
				m += tp.bonus
				break
			}
		}
	}
	return m
}

// AgeBonus rewards fresh news. Unknown publication times get no bonus.
func AgeBonus(age time.Duration, unknown bool) float64 {
	if unknown {
		return 0
	}
	switch {
	case age < 6*time.Hour:
		return 0.2
	case age < 24*time.Hour:
		return 0.1
	case age < 72*time.Hour:
		return 0.05
	default:
		return 0
	}
}

// Summarize rolls up a holding's articles: mean score and impact, label
// counts, and a label that is Positive or Negative only when that count
// beats both others.
func Summarize(articles []models.Article) models.SentimentSummary {
	sum := models.SentimentSummary{Label: models.SentimentNeutral}
	if len(articles) == 0 {
		return sum
	}

	var scoreTotal, impactTotal float64
	for _, a := range articles {
		scoreTotal += a.Sentiment.Score
		impactTotal += a.Sentiment.ImpactScore
		switch a.Sentiment.Label {
		case models.SentimentPositive:
			sum.Positive++
		case models.SentimentNegative:
			sum.Negative++
		default:
			sum.Neutral++
		}
	}
	n := float64(len(articles))
	sum.Score = scoreTotal / n
	sum.Impact = impactTotal / n

	switch {
	case sum.Positive > sum.Negative && sum.Positive > sum.Neutral:
		sum.Label = models.SentimentPositive
	case sum.Negative > sum.Positive && sum.Negative > sum.Neutral:
		sum.Label = models.SentimentNegative
	}
	return sum
}

// --- helpers ---

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '&'
	})
}

func countKeywords(tokens []string) (pos, neg int) {
	for i, tok := range tokens {
		if positiveWords[tok] {
			pos++
		}
		if negativeWords[tok] {
			neg++
		}
		if i+1 < len(tokens) {
			pair := tok + " " + tokens[i+1]
			if positivePhrases[pair] {
				pos++
			}
			if negativePhrases[pair] {
				neg++
			}
		}
	}
	return pos, neg
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
