package sentiment

import (
	"math"
	"testing"
	"time"

	"github.com/seenimoa/stockpulse/pkg/models"
)

var refNow = time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

func fixedScorer() *Scorer {
	return NewScorer(
		WithJitter(func() float64 { return 1.0 }),
		WithClock(func() time.Time { return refNow }),
	)
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestPolarityBullish(t *testing.T) {
	score, label := Polarity("Apple beats estimates, shares surge")
	if label != models.SentimentPositive {
		t.Fatalf("label = %s, want Positive", label)
	}
	// beats + surge + "beats estimates"
	if !approx(score, 0.6) {
		t.Errorf("score = %.4f, want 0.6", score)
	}
}

func TestPolarityBearishCapped(t *testing.T) {
	score, label := Polarity("Tesla shares plunge after recall, weak demand and fraud lawsuit")
	if label != models.SentimentNegative {
		t.Fatalf("label = %s, want Negative", label)
	}
	if !approx(score, -0.8) {
		t.Errorf("score = %.4f, want -0.8 (capped)", score)
	}
}

func TestPolarityNeutral(t *testing.T) {
	tests := []string{
		"Company opens new office in Austin",
		"Gains offset by losses in services",
		"",
	}
	for _, text := range tests {
		score, label := Polarity(text)
		if score != 0 || label != models.SentimentNeutral {
			t.Errorf("Polarity(%q) = %.2f %s, want 0 Neutral", text, score, label)
		}
	}
}

func TestPolarityIsCaseInsensitive(t *testing.T) {
	a, _ := Polarity("STRONG GROWTH")
	b, _ := Polarity("strong growth")
	if a != b || !approx(a, 0.4) {
		t.Errorf("got %.2f and %.2f, want 0.4", a, b)
	}
}

func TestPolarityMatchesWholeWords(t *testing.T) {
	// "missile" must not count as "miss".
	score, _ := Polarity("Defense contractor wins missile contract")
	if !approx(score, 0.2) {
		t.Errorf("score = %.2f, want 0.2 from \"wins\" only", score)
	}
}

func TestImpactDeterministicWithFixedJitter(t *testing.T) {
	s := fixedScorer()
	tests := []struct {
		name string
		raw  models.RawArticle
		want float64
	}{
		{
			name: "credible fresh",
			raw:  models.RawArticle{Headline: "Apple beats estimates", Source: "Reuters", Datetime: refNow.Add(-time.Hour)},
			want: (0.2+0.3)*1.0 + 0.2,
		},
		{
			name: "earnings, a day old",
			raw:  models.RawArticle{Headline: "Apple quarterly earnings beat", Source: "Bloomberg", Datetime: refNow.Add(-30 * time.Hour)},
			want: (0.2+0.3)*1.5 + 0.05,
		},
		{
			name: "unknown source, old",
			raw:  models.RawArticle{Headline: "Company update", Source: "Some Blog", Datetime: refNow.Add(-10 * 24 * time.Hour)},
			want: 0.2 + 0.15,
		},
		{
			name: "unknown time",
			raw:  models.RawArticle{Headline: "CEO resigns", Source: "CNBC"},
			want: (0.2 + 0.25) * 1.3,
		},
		{
			name: "clamped at 1.0",
			raw: models.RawArticle{
				Headline: "Reuters: quarterly earnings, merger and antitrust probe",
				Source:   "Reuters", Datetime: refNow,
			},
			want: 1.0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Impact(tt.raw)
			if !approx(got, tt.want) {
				t.Errorf("Impact = %.4f, want %.4f", got, tt.want)
			}
		})
	}
}

func TestImpactJitterBounds(t *testing.T) {
	raw := models.RawArticle{Headline: "Company update", Source: "Some Blog", Datetime: refNow.Add(-100 * time.Hour)}
	low := NewScorer(WithJitter(func() float64 { return 0 }), WithClock(func() time.Time { return refNow }))
	high := NewScorer(WithJitter(func() float64 { return 5 }), WithClock(func() time.Time { return refNow }))

	if got := low.Impact(raw); !approx(got, 0.35*0.8) {
		t.Errorf("low jitter impact = %.4f, want %.4f", got, 0.35*0.8)
	}
	if got := high.Impact(raw); !approx(got, 0.35*1.2) {
		t.Errorf("high jitter impact = %.4f, want %.4f", got, 0.35*1.2)
	}
}

func TestScoreStableUnderRandomJitter(t *testing.T) {
	s := NewScorer()
	raw := models.RawArticle{
		Headline: "Nvidia shares jump on strong demand",
		Summary:  "Analysts upgrade the chipmaker",
		Source:   "MarketWatch",
		Datetime: time.Now().Add(-2 * time.Hour),
	}
	first := s.Score(raw, models.NewsDirect)
	for i := 0; i < 200; i++ {
		r := s.Score(raw, models.NewsDirect)
		if r.Score != first.Score || r.Label != first.Label {
			t.Fatalf("score/label changed across calls: %+v vs %+v", r, first)
		}
		if r.ImpactScore < 0.1 || r.ImpactScore > 1.0 {
			t.Fatalf("impact %.4f outside [0.1, 1.0]", r.ImpactScore)
		}
	}
	if first.NewsType != models.NewsDirect {
		t.Errorf("news type = %q", first.NewsType)
	}
}

func TestSourceWeight(t *testing.T) {
	tests := []struct {
		source string
		want   float64
	}{
		{"Reuters", 0.30},
		{"Bloomberg News", 0.30},
		{"CNBC", 0.25},
		{"Yahoo Finance", 0.20},
		{"SeekingAlpha", 0.18},
		{"The Motley Fool", 0.12},
		{"", DefaultSourceWeight},
		{"Unknown Wire", DefaultSourceWeight},
	}
	for _, tt := range tests {
		if got := SourceWeight(tt.source); got != tt.want {
			t.Errorf("SourceWeight(%q) = %.2f, want %.2f", tt.source, got, tt.want)
		}
	}
}

func TestAgeBonus(t *testing.T) {
	tests := []struct {
		age  time.Duration
		want float64
	}{
		{0, 0.2},
		{5 * time.Hour, 0.2},
		{6 * time.Hour, 0.1},
		{23 * time.Hour, 0.1},
		{24 * time.Hour, 0.05},
		{71 * time.Hour, 0.05},
		{72 * time.Hour, 0},
		{-time.Hour, 0.2},
	}
	for _, tt := range tests {
		if got := AgeBonus(tt.age, false); got != tt.want {
			t.Errorf("AgeBonus(%v) = %.2f, want %.2f", tt.age, got, tt.want)
		}
	}
	if AgeBonus(time.Hour, true) != 0 {
		t.Error("unknown time should get no bonus")
	}
}

func TestSummarize(t *testing.T) {
	mk := func(score, impact float64, label models.SentimentLabel) models.Article {
		return models.Article{Sentiment: models.SentimentResult{Score: score, ImpactScore: impact, Label: label}}
	}

	empty := Summarize(nil)
	if empty.Label != models.SentimentNeutral || empty.Score != 0 || empty.Impact != 0 {
		t.Errorf("empty summary = %+v", empty)
	}

	s := Summarize([]models.Article{
		mk(0.4, 0.6, models.SentimentPositive),
		mk(0.2, 0.4, models.SentimentPositive),
		mk(-0.2, 0.8, models.SentimentNegative),
	})
	if s.Label != models.SentimentPositive {
		t.Errorf("label = %s, want Positive", s.Label)
	}
	if !approx(s.Score, 0.4/3) || !approx(s.Impact, 0.6) {
		t.Errorf("means = %.4f/%.4f", s.Score, s.Impact)
	}
	if s.Positive != 2 || s.Negative != 1 || s.Neutral != 0 {
		t.Errorf("counts = %+v", s)
	}

	tie := Summarize([]models.Article{
		mk(0.2, 0.5, models.SentimentPositive),
		mk(-0.2, 0.5, models.SentimentNegative),
	})
	if tie.Label != models.SentimentNeutral {
		t.Errorf("tie label = %s, want Neutral", tie.Label)
	}

	neutralWins := Summarize([]models.Article{
		mk(0, 0.5, models.SentimentNeutral),
		mk(0, 0.5, models.SentimentNeutral),
		mk(-0.4, 0.5, models.SentimentNegative),
	})
	if neutralWins.Label != models.SentimentNeutral {
		t.Errorf("label = %s, want Neutral", neutralWins.Label)
	}
}
