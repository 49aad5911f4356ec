package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/seenimoa/stockpulse/internal/analysis/sentiment"
	"github.com/seenimoa/stockpulse/internal/portfolio"
	"github.com/seenimoa/stockpulse/internal/report"
	"github.com/seenimoa/stockpulse/pkg/models"
	"github.com/seenimoa/stockpulse/pkg/utils"
)

// --- Quote Command ---

var quoteCmd = &cobra.Command{
	Use:   "quote [ticker]",
	Short: "Show the latest quote for a stock",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp(cfg)
		q := a.quotes.GetQuote(cmd.Context(), utils.NormalizeTicker(args[0]))
		return emit(cmd, q, func() string { return report.Quote(*q) })
	},
}

// --- Search Command ---

var searchCmd = &cobra.Command{
	Use:   "search [text]",
	Short: "Search for ticker symbols by name or symbol",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp(cfg)
		query := strings.Join(args, " ")
		results := a.searcher.Search(cmd.Context(), query)
		return emit(cmd, results, func() string { return report.Search(query, results) })
	},
}

// --- News Command ---

type newsResult struct {
	Symbol   string                  `json:"symbol"   yaml:"symbol"`
	Summary  models.SentimentSummary `json:"summary"  yaml:"summary"`
	Articles []models.Article        `json:"articles" yaml:"articles"`
}

var newsCmd = &cobra.Command{
	Use:   "news [ticker]",
	Short: "Show scored company and competitor news for a stock",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp(cfg)
		sym := utils.NormalizeTicker(args[0])
		articles := a.news.Fetch(cmd.Context(), sym)
		res := newsResult{Symbol: sym, Summary: sentiment.Summarize(articles), Articles: articles}
		return emit(cmd, res, func() string {
			return report.Articles(sym, articles, res.Summary, time.Now())
		})
	},
}

// --- Market News Command ---

var marketNewsCmd = &cobra.Command{
	Use:   "market-news",
	Short: "Show general market headlines",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp(cfg)
		articles, err := a.news.MarketNews(cmd.Context())
		if err != nil {
			// An empty panel, not a failure.
			a.logger.Warn().Err(err).Msg("market news unavailable")
			articles = []models.Article{}
		}
		return emit(cmd, articles, func() string { return report.MarketNews(articles, time.Now()) })
	},
}

// --- Portfolio Command ---

var portfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Show and edit portfolio holdings",
}

var portfolioShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Refresh quotes and news and print the portfolio",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := portfolioFlags(cmd)
		if err != nil {
			return err
		}
		a := newApp(cfg)
		defer a.Close()

		s, err := a.session(cmd.Context())
		if err != nil {
			return err
		}
		if noRefresh, _ := cmd.Flags().GetBool("no-refresh"); !noRefresh {
			if _, err := s.Refresh(cmd.Context()); err != nil {
				return fmt.Errorf("refresh: %w", err)
			}
		}
		return emitPortfolio(cmd, a, s, opts)
	},
}

var portfolioAddCmd = &cobra.Command{
	Use:   "add [ticker] [shares]",
	Short: "Buy shares; an existing holding is increased",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		shares, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid share count %q: %w", args[1], err)
		}
		a := newApp(cfg)
		defer a.Close()

		s, err := a.session(cmd.Context())
		if err != nil {
			return err
		}
		h, err := s.Add(cmd.Context(), args[0], shares)
		if err != nil {
			return err
		}
		return emit(cmd, h, func() string {
			return fmt.Sprintf("Holding **%s** now %s shares.", h.Symbol, strconv.FormatFloat(h.Shares, 'f', -1, 64))
		})
	},
}

var portfolioRemoveCmd = &cobra.Command{
	Use:   "remove [ticker]",
	Short: "Remove a holding",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp(cfg)
		defer a.Close()

		s, err := a.session(cmd.Context())
		if err != nil {
			return err
		}
		sym := utils.NormalizeTicker(args[0])
		if err := s.Remove(cmd.Context(), sym); err != nil {
			return err
		}
		return emit(cmd, map[string]string{"removed": sym}, func() string {
			return fmt.Sprintf("Removed **%s**.", sym)
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{portfolioShowCmd, watchCmd} {
		c.Flags().String("sector", "", "only show positions in this sector")
		c.Flags().StringP("query", "q", "", "only show positions whose symbol or name contains this text")
		c.Flags().String("sort", "", "sort positions by symbol, price or change")
		c.Flags().String("sections", "", "report sections: summary,positions,news,alerts (default all)")
	}
	portfolioShowCmd.Flags().Bool("no-refresh", false, "print saved holdings without fetching data")

	portfolioCmd.AddCommand(portfolioShowCmd)
	portfolioCmd.AddCommand(portfolioAddCmd)
	portfolioCmd.AddCommand(portfolioRemoveCmd)
}

// --- Portfolio output ---

type portfolioOptions struct {
	view     portfolio.View
	sections []report.Section
}

func portfolioFlags(cmd *cobra.Command) (portfolioOptions, error) {
	sector, _ := cmd.Flags().GetString("sector")
	query, _ := cmd.Flags().GetString("query")
	sortFlag, _ := cmd.Flags().GetString("sort")
	sectionsFlag, _ := cmd.Flags().GetString("sections")

	key, err := portfolio.ParseSortKey(sortFlag)
	if err != nil {
		return portfolioOptions{}, err
	}
	sections, err := parseSections(sectionsFlag)
	if err != nil {
		return portfolioOptions{}, err
	}
	return portfolioOptions{
		view:     portfolio.View{Sector: sector, Query: query, Sort: key},
		sections: sections,
	}, nil
}

type portfolioResult struct {
	models.PortfolioSnapshot `yaml:",inline"`
	Alerts                   []models.Alert `json:"alerts" yaml:"alerts"`
}

func emitPortfolio(cmd *cobra.Command, a *app, s *portfolio.Session, opts portfolioOptions) error {
	snap := s.Snapshot()
	snap.Positions = opts.view.Apply(snap.Positions)

	news := make(map[string][]models.Article, len(snap.Positions))
	for _, p := range snap.Positions {
		if arts := s.Articles(p.Symbol); len(arts) > 0 {
			news[p.Symbol] = arts
		}
	}
	list := a.alerts.List()

	return emit(cmd, portfolioResult{PortfolioSnapshot: snap, Alerts: list}, func() string {
		return report.Portfolio(snap, news, list, report.Config{
			Title:    "Portfolio",
			Sections: opts.sections,
			Now:      time.Now(),
		})
	})
}
