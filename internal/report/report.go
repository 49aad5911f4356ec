// Package report renders portfolio data as markdown for the terminal.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/seenimoa/stockpulse/pkg/models"
	"github.com/seenimoa/stockpulse/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// Configuration
// ════════════════════════════════════════════════════════════════════

// NewsPanelRows is how many positions the news panel covers.
const NewsPanelRows = 3

// Section identifies a part of the portfolio report.
type Section string

const (
	SectionSummary   Section = "summary"
	SectionPositions Section = "positions"
	SectionNews      Section = "news"
	SectionAlerts    Section = "alerts"
)

// AllSections returns every section in display order.
func AllSections() []Section {
	return []Section{SectionSummary, SectionPositions, SectionNews, SectionAlerts}
}

// Config controls what the portfolio report shows.
type Config struct {
	Title    string
	Sections []Section
	Now      time.Time
}

// DefaultConfig returns the full report titled "Portfolio".
func DefaultConfig() Config {
	return Config{Title: "Portfolio", Sections: AllSections()}
}

func (c Config) has(s Section) bool {
	for _, sec := range c.Sections {
		if sec == s {
			return true
		}
	}
	return false
}

// ════════════════════════════════════════════════════════════════════
// Portfolio report
// ════════════════════════════════════════════════════════════════════

// Portfolio renders the snapshot: summary cards, the positions table, a
// news panel for the first NewsPanelRows positions and recent alerts.
// news is keyed by symbol.
func Portfolio(snap models.PortfolioSnapshot, news map[string][]models.Article, alerts []models.Alert, cfg Config) string {
	if cfg.Now.IsZero() {
		cfg.Now = time.Now()
	}
	if cfg.Title == "" {
		cfg.Title = "Portfolio"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", cfg.Title)
	if snap.ComputedAt.IsZero() {
		fmt.Fprintf(&sb, "_Not refreshed yet, refresh #%d_\n\n", snap.Generation)
	} else {
		age := max(cfg.Now.Sub(snap.ComputedAt), 0)
		fmt.Fprintf(&sb, "_Updated %s (%s ago), refresh #%d_\n\n",
			utils.FormatDateTime(snap.ComputedAt), FormatDuration(age), snap.Generation)
	}

	if cfg.has(SectionSummary) {
		writeSummary(&sb, snap)
	}
	if cfg.has(SectionPositions) {
		writePositions(&sb, snap.Positions)
	}
	if cfg.has(SectionNews) {
		writeNewsPanel(&sb, snap.Positions, news, cfg.Now)
	}
	if cfg.has(SectionAlerts) && len(alerts) > 0 {
		sb.WriteString(Alerts(alerts))
	}
	return sb.String()
}

func writeSummary(sb *strings.Builder, snap models.PortfolioSnapshot) {
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Total Value | Day Change | Total Gain/Loss | Positions | Sentiment | News Impact |\n")
	sb.WriteString("|---|---|---|---|---|---|\n")
	fmt.Fprintf(sb, "| %s | %s | %s | %d | %s | %.0f%% |\n\n",
		utils.FormatUSD(snap.TotalValue),
		utils.FormatSignedUSD(snap.TotalDayChange),
		utils.FormatSignedUSD(snap.TotalGainLoss),
		snap.ActivePositions,
		sentimentWord(snap.PortfolioSentiment),
		snap.PortfolioImpact*100,
	)
}

func writePositions(sb *strings.Builder, positions []models.Position) {
	sb.WriteString("## Positions\n\n")
	if len(positions) == 0 {
		sb.WriteString("No holdings.\n\n")
		return
	}
	sb.WriteString("| Symbol | Name | Shares | Price | Change | Value | Gain/Loss | Weight | 52W Range | Volatility | Sentiment |\n")
	sb.WriteString("|---|---|---:|---:|---:|---:|---:|---:|---|---|---|\n")
	for _, p := range positions {
		switch {
		case p.Loading:
			fmt.Fprintf(sb, "| %s | %s | %s | loading... | | | | | | | |\n", p.Symbol, escape(p.Name), formatShares(p.Shares))
			continue
		case p.NoData:
			fmt.Fprintf(sb, "| %s | %s | %s | n/a | | | | | | | |\n", p.Symbol, escape(p.Name), formatShares(p.Shares))
			continue
		}
		fmt.Fprintf(sb, "| %s | %s | %s | %s | %s (%s) | %s | %s (%s) | %.1f%% | %s - %s | %s | %s |\n",
			p.Symbol,
			escape(utils.Truncate(p.Name, 24)),
			formatShares(p.Shares),
			utils.FormatUSD(p.Price),
			utils.FormatSignedUSD(p.Change), utils.FormatPercent(p.ChangePercent),
			utils.FormatUSD(p.PositionValue),
			utils.FormatSignedUSD(p.GainLoss), utils.FormatPercent(p.GainLossPercent),
			p.WeightPercent,
			utils.FormatUSD(p.Range52Week.Low), utils.FormatUSD(p.Range52Week.High),
			p.Volatility,
			p.Sentiment.Label,
		)
	}
	sb.WriteString("\n")
}

func writeNewsPanel(sb *strings.Builder, positions []models.Position, news map[string][]models.Article, now time.Time) {
	sb.WriteString("## News\n\n")
	rows := positions
	if len(rows) > NewsPanelRows {
		rows = rows[:NewsPanelRows]
	}
	wrote := false
	for _, p := range rows {
		articles := news[p.Symbol]
		if len(articles) == 0 {
			continue
		}
		wrote = true
		fmt.Fprintf(sb, "### %s (%s, impact %.0f%%)\n\n", p.Symbol, p.Sentiment.Label, p.NewsImpact*100)
		writeArticleList(sb, articles, now)
	}
	if !wrote {
		sb.WriteString("No news loaded yet.\n\n")
	}
}

// ════════════════════════════════════════════════════════════════════
// Single-purpose views
// ════════════════════════════════════════════════════════════════════

// Quote renders one quote.
func Quote(q models.Quote) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s", q.Symbol)
	if q.Name != "" && q.Name != q.Symbol {
		fmt.Fprintf(&sb, " - %s", q.Name)
	}
	sb.WriteString("\n\n")
	if q.NoData {
		sb.WriteString("No data available from any provider.\n")
		return sb.String()
	}
	fmt.Fprintf(&sb, "**%s** %s (%s)\n\n", utils.FormatUSD(q.Price), utils.FormatSignedUSD(q.Change), utils.FormatPercent(q.ChangePercent))
	if q.Volume > 0 {
		fmt.Fprintf(&sb, "- Volume: %s\n", utils.FormatCompact(float64(q.Volume)))
	}
	if q.MarketCap != "" {
		fmt.Fprintf(&sb, "- Market cap: %s\n", q.MarketCap)
	}
	fmt.Fprintf(&sb, "- Sector: %s\n", utils.SectorOf(q.Symbol))
	if q.Source != "" {
		fmt.Fprintf(&sb, "- Source: %s\n", q.Source)
	}
	return sb.String()
}

// Search renders search candidates.
func Search(query string, results []models.SearchResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Search: %s\n\n", escape(query))
	if len(results) == 0 {
		sb.WriteString("No matches.\n")
		return sb.String()
	}
	sb.WriteString("| Symbol | Name |\n|---|---|\n")
	for _, r := range results {
		fmt.Fprintf(&sb, "| %s | %s |\n", r.Symbol, escape(r.Name))
	}
	return sb.String()
}

// Articles renders a holding's news with a sentiment summary line.
func Articles(symbol string, articles []models.Article, summary models.SentimentSummary, now time.Time) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# News: %s\n\n", symbol)
	fmt.Fprintf(&sb, "Sentiment **%s** (%+.2f), impact %.0f%%, %d positive / %d neutral / %d negative\n\n",
		summary.Label, summary.Score, summary.Impact*100, summary.Positive, summary.Neutral, summary.Negative)
	writeArticleList(&sb, articles, now)
	return sb.String()
}

// MarketNews renders the general market headlines.
func MarketNews(articles []models.Article, now time.Time) string {
	var sb strings.Builder
	sb.WriteString("# Market News\n\n")
	if len(articles) == 0 {
		sb.WriteString("No market news available.\n")
		return sb.String()
	}
	for _, a := range articles {
		fmt.Fprintf(&sb, "- **%s** [%s] %s, %s\n", escape(a.Title), a.Symbol, a.Source, utils.TimeAgo(a.PublishedAt, now))
		if a.Description != "" {
			fmt.Fprintf(&sb, "  %s\n", escape(a.Description))
		}
	}
	return sb.String()
}

// Alerts renders the alert feed.
func Alerts(alerts []models.Alert) string {
	var sb strings.Builder
	sb.WriteString("## Alerts\n\n")
	if len(alerts) == 0 {
		sb.WriteString("No alerts\n")
		return sb.String()
	}
	for _, a := range alerts {
		mark := " "
		if !a.Read {
			mark = "*"
		}
		fmt.Fprintf(&sb, "- %s %s _%s_\n", mark, escape(a.Message), a.Time.Format("15:04:05"))
	}
	sb.WriteString("\n")
	return sb.String()
}

// ════════════════════════════════════════════════════════════════════
// Terminal rendering
// ════════════════════════════════════════════════════════════════════

// Render styles markdown for the terminal when pretty is set, and returns
// it unchanged otherwise.
func Render(markdown string, pretty bool) (string, error) {
	if !pretty {
		return markdown, nil
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		return "", fmt.Errorf("creating markdown renderer: %w", err)
	}
	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return out, nil
}

// FormatDuration formats a duration for display, e.g. the snapshot age.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}

// --- helpers ---

func writeArticleList(sb *strings.Builder, articles []models.Article, now time.Time) {
	for _, a := range articles {
		tag := ""
		if a.IsCompetitor {
			tag = fmt.Sprintf(" (competitor %s)", a.Symbol)
		}
		when := "unknown time"
		if !a.PublishedAt.IsZero() {
			when = utils.TimeAgo(a.PublishedAt, now)
		}
		fmt.Fprintf(sb, "- %s **%s**%s, %s, %s\n",
			sentimentIcon(a.Sentiment.Label), escape(a.Title), tag, a.Source, when)
	}
	sb.WriteString("\n")
}

func sentimentWord(score float64) string {
	switch {
	case score > 0.05:
		return fmt.Sprintf("Positive (%+.2f)", score)
	case score < -0.05:
		return fmt.Sprintf("Negative (%+.2f)", score)
	default:
		return fmt.Sprintf("Neutral (%+.2f)", score)
	}
}

func sentimentIcon(l models.SentimentLabel) string {
	switch l {
	case models.SentimentPositive:
		return "+"
	case models.SentimentNegative:
		return "-"
	default:
		return "="
	}
}

func formatShares(s float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.4f", s), "0"), ".")
}

// escape keeps table cells intact.
func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
