package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/seenimoa/stockpulse/api"
	"github.com/seenimoa/stockpulse/internal/portfolio"
	"github.com/seenimoa/stockpulse/pkg/models"
)

// refreshTimeout bounds one scheduled refresh. News requests are paced, so
// ten holdings with three competitors each need well over a minute.
const refreshTimeout = 3 * time.Minute

// newsPruneSchedule evicts expired news cache entries for symbols that are
// no longer looked up.
const newsPruneSchedule = "@every 1h"

// startRefresher schedules portfolio refreshes plus news cache pruning.
func startRefresher(a *app, s *portfolio.Session) (*portfolio.Refresher, error) {
	refresher, err := portfolio.NewRefresher(cfg.Refresh.Schedule, s, refreshTimeout, a.logger)
	if err != nil {
		return nil, err
	}
	if err := refresher.Every(newsPruneSchedule, "news cache prune", a.news.Prune); err != nil {
		return nil, err
	}
	refresher.Start()
	return refresher, nil
}

// --- Watch Command ---

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Refresh on the configured schedule and reprint the portfolio",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := portfolioFlags(cmd)
		if err != nil {
			return err
		}
		a := newApp(cfg)
		defer a.Close()

		ctx := cmd.Context()
		s, err := a.session(ctx)
		if err != nil {
			return err
		}

		// Coalesce snapshots; only the latest matters when printing lags.
		updates := make(chan struct{}, 1)
		s.Subscribe(func(models.PortfolioSnapshot) {
			select {
			case updates <- struct{}{}:
			default:
			}
		})

		refresher, err := startRefresher(a, s)
		if err != nil {
			return err
		}
		defer refresher.Stop()
		go refresher.RunNow()

		fmt.Fprintf(cmd.ErrOrStderr(), "Watching %d holdings (%s). Press Ctrl+C to stop.\n", len(s.Holdings()), cfg.Refresh.Schedule)
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-updates:
				if err := emitPortfolio(cmd, a, s, opts); err != nil {
					return err
				}
			}
		}
	},
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp(cfg)
		defer a.Close()

		ctx := cmd.Context()
		s, err := a.session(ctx)
		if err != nil {
			return err
		}

		srv, err := api.NewServer(api.Deps{
			Config:   cfg,
			Session:  s,
			Quotes:   a.quotes,
			Searcher: a.searcher,
			News:     a.news,
			Alerts:   a.alerts,
			Logger:   a.logger,
		})
		if err != nil {
			return err
		}

		refresher, err := startRefresher(a, s)
		if err != nil {
			return err
		}
		defer refresher.Stop()
		go refresher.RunNow()

		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		fmt.Fprintf(cmd.ErrOrStderr(), "Starting stockpulse API server on %s\n", addr)
		return srv.Run(ctx, addr)
	},
}
