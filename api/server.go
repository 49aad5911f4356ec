// Package api provides the HTTP REST API server for stockpulse.
//
// It exposes the portfolio snapshot, holdings management, quotes, search,
// news, alerts and a WebSocket stream of snapshots.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/phuslu/log"

	"github.com/seenimoa/stockpulse/internal/alerts"
	"github.com/seenimoa/stockpulse/internal/analysis/sentiment"
	"github.com/seenimoa/stockpulse/internal/config"
	"github.com/seenimoa/stockpulse/internal/datasource"
	"github.com/seenimoa/stockpulse/internal/portfolio"
	"github.com/seenimoa/stockpulse/pkg/models"
	"github.com/seenimoa/stockpulse/pkg/utils"
	"github.com/seenimoa/stockpulse/web"
)

// Version is reported by /health; main overrides it at build time.
var Version = "dev"

// Deps are the services the API serves from.
type Deps struct {
	Config   *config.Config
	Session  *portfolio.Session
	Quotes   *datasource.QuoteFetcher
	Searcher *datasource.Searcher
	News     *datasource.NewsFetcher
	Alerts   *alerts.Feed
	Logger   *log.Logger
}

// Server is the HTTP API server.
type Server struct {
	router chi.Router
	deps   Deps
	logger *log.Logger
	wsHub  *WSHub

	// bg outlives requests; symbol loads started by POST /holdings use it.
	bg       context.Context
	cancelBg context.CancelFunc
}

// NewServer creates a configured API server with all routes and
// middleware, and subscribes the WebSocket hub to portfolio changes.
func NewServer(deps Deps) (*Server, error) {
	if deps.Config == nil || deps.Session == nil || deps.Quotes == nil ||
		deps.Searcher == nil || deps.News == nil || deps.Alerts == nil {
		return nil, errors.New("api: missing dependency")
	}
	logger := deps.Logger
	if logger == nil {
		logger = &log.DefaultLogger
	}

	bg, cancel := context.WithCancel(context.Background())
	srv := &Server{
		deps:     deps,
		logger:   logger,
		wsHub:    NewWSHub(logger),
		bg:       bg,
		cancelBg: cancel,
	}
	srv.router = srv.buildRouter()

	deps.Session.Subscribe(func(snap models.PortfolioSnapshot) {
		srv.wsHub.Broadcast(WSMessage{Type: "snapshot", Data: snap})
	})
	return srv, nil
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *WSHub {
	return s.wsHub
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go s.wsHub.Run()
	defer s.Close()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("API server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// Close stops the WebSocket hub and cancels background symbol loads.
func (s *Server) Close() {
	s.cancelBg()
	s.wsHub.Stop()
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	origins := []string{"*"}
	if len(s.deps.Config.API.CORSOrigins) > 0 {
		origins = s.deps.Config.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Portfolio
		r.Get("/portfolio", s.handlePortfolio)
		r.Post("/holdings", s.handleAddHolding)
		r.Delete("/holdings/{symbol}", s.handleRemoveHolding)
		r.Post("/refresh", s.handleRefresh)

		// Market data
		r.Get("/quote/{symbol}", s.handleQuote)
		r.Get("/search", s.handleSearch)
		r.Get("/news/{symbol}", s.handleNews)
		r.Get("/market-news", s.handleMarketNews)

		// Alerts
		r.Get("/alerts", s.handleAlerts)
		r.Post("/alerts/read", s.handleMarkAlertsRead)

		// Configuration
		r.Get("/config", s.handleGetConfig)
		r.Get("/config/keys", s.handleGetConfigKeys)

		r.Get("/ws", s.handleWebSocket)
	})

	// Dashboard page
	r.Handle("/*", http.FileServerFS(web.DistFS()))

	return r
}

// requestLogger logs one line per request through phuslu/log.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("http request")
	})
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// AddHoldingRequest is the body for POST /api/v1/holdings.
type AddHoldingRequest struct {
	Symbol string  `json:"symbol"`
	Shares float64 `json:"shares"`
}

// PortfolioResponse is the body of GET /api/v1/portfolio. Totals cover the
// whole portfolio; Positions honours the sector, q and sort filters.
type PortfolioResponse struct {
	models.PortfolioSnapshot
	Sectors      []string  `json:"sectors"`
	UnreadAlerts int       `json:"unread_alerts"`
	LastRefresh  time.Time `json:"last_refresh"`
}

// NewsResponse is the body of GET /api/v1/news/{symbol}.
type NewsResponse struct {
	Symbol    string                  `json:"symbol"`
	Summary   models.SentimentSummary `json:"summary"`
	Articles  []models.Article        `json:"articles"`
	FromCache bool                    `json:"from_cache"`
}

// AlertsResponse is the body of GET /api/v1/alerts.
type AlertsResponse struct {
	Alerts []models.Alert `json:"alerts"`
	Unread int            `json:"unread"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":       "ok",
			"version":      Version,
			"holdings":     len(s.deps.Session.Holdings()),
			"generation":   s.deps.Session.Generation(),
			"last_refresh": s.deps.Session.LastRefresh(),
			"ws_clients":   s.wsHub.ClientCount(),
		},
	})
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sortKey, err := portfolio.ParseSortKey(q.Get("sort"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap := s.deps.Session.Snapshot()
	sectors := portfolio.Sectors(snap.Positions)
	view := portfolio.View{Sector: q.Get("sector"), Query: q.Get("q"), Sort: sortKey}
	snap.Positions = view.Apply(snap.Positions)

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: PortfolioResponse{
			PortfolioSnapshot: snap,
			Sectors:           sectors,
			UnreadAlerts:      s.deps.Alerts.Unread(),
			LastRefresh:       s.deps.Session.LastRefresh(),
		},
	})
}

func (s *Server) handleAddHolding(w http.ResponseWriter, r *http.Request) {
	var req AddHoldingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h, err := s.deps.Session.Add(r.Context(), req.Symbol, req.Shares)
	if err != nil {
		if errors.Is(err, portfolio.ErrInvalidHolding) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	go s.deps.Session.LoadSymbol(s.bg, h.Symbol)

	writeJSON(w, http.StatusCreated, APIResponse{Success: true, Data: h})
}

func (s *Server) handleRemoveHolding(w http.ResponseWriter, r *http.Request) {
	symbol := utils.NormalizeTicker(chi.URLParam(r, "symbol"))
	if err := s.deps.Session.Remove(r.Context(), symbol); err != nil {
		if errors.Is(err, portfolio.ErrHoldingNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    map[string]string{"removed": symbol},
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	snap, err := s.deps.Session.Refresh(r.Context())
	if err != nil {
		if errors.Is(err, portfolio.ErrSuperseded) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: snap})
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	symbol := utils.NormalizeTicker(chi.URLParam(r, "symbol"))
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}
	q := s.deps.Quotes.GetQuote(r.Context(), symbol)
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: q})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	results := s.deps.Searcher.Search(r.Context(), r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: results})
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	symbol := utils.NormalizeTicker(chi.URLParam(r, "symbol"))
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	articles, cached := s.deps.News.FetchCached(r.Context(), symbol)
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: NewsResponse{
			Symbol:    symbol,
			Summary:   sentiment.Summarize(articles),
			Articles:  articles,
			FromCache: cached,
		},
	})
}

func (s *Server) handleMarketNews(w http.ResponseWriter, r *http.Request) {
	articles, err := s.deps.News.MarketNews(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: articles})
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: AlertsResponse{
			Alerts: s.deps.Alerts.List(),
			Unread: s.deps.Alerts.Unread(),
		},
	})
}

func (s *Server) handleMarkAlertsRead(w http.ResponseWriter, r *http.Request) {
	s.deps.Alerts.MarkAllRead()
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    AlertsResponse{Alerts: s.deps.Alerts.List()},
	})
}

// ============================================================
// Helpers
// ============================================================

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("failed to write JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
