// Package server exposes the dashboard over HTTP.
package server

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"signal-dashboard/internal/chart"
	"signal-dashboard/internal/dashboard"
	apperrors "signal-dashboard/internal/errors"
	"signal-dashboard/internal/logging"
	"signal-dashboard/internal/models"
	"signal-dashboard/internal/report"
	"signal-dashboard/internal/security"
)

// UsageNotes are shown on the index page.
var UsageNotes = []string{
	"This dashboard reads a signals file and reports trades derived from it.",
	"It does not place or execute any trades.",
	"Realized profit comes from exits; unrealized profit is marked to the closing price.",
	"Max profit is the best price reached after entry minus the entry price.",
}

const (
	defaultVisitLimit = 50
	maxSymbolLength   = 64
)

// Server serves the dashboard API and chart page.
type Server struct {
	addr    string
	router  *gin.Engine
	service *dashboard.Service
	logger  zerolog.Logger
}

// New builds the HTTP server around a dashboard service.
func New(service *dashboard.Service) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	s := &Server{
		addr:    service.Config.Server.Addr,
		router:  router,
		service: service,
		logger:  service.Logger.With().Str("component", "server").Logger(),
	}
	router.Use(gin.Recovery(), s.requestLogger())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.router.GET("/charts", s.handleCharts)

	api := s.router.Group("/api")
	api.GET("/trades", s.handleTrades)
	api.GET("/summary", s.handleSummary)
	api.GET("/levels", s.handleLevels)
	api.GET("/diagnostics", s.handleDiagnostics)
	api.GET("/changelog", s.handleChangelog)
	api.GET("/visits", s.handleVisits)
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.addr
}

// Start serves until ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	s.logger.Info().Str("addr", s.addr).Msg("Dashboard listening")

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		logger := s.logger.With().Str("request_id", uuid.NewString()).Logger()
		c.Request = c.Request.WithContext(logging.WithLogger(c.Request.Context(), logger))
		c.Next()
		logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Str("ip", c.ClientIP()).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	}
}

// pass runs the pipeline for one request and records the visit. It writes the
// error response itself and returns nil on failure.
func (s *Server) pass(c *gin.Context, page string) *dashboard.Pass {
	ctx := c.Request.Context()
	s.service.Visit(ctx, page, models.VisitSourceHTTP, c.ClientIP(), c.Request.UserAgent())

	p, err := s.service.Run(ctx)
	if err != nil {
		s.fail(c, err)
		return nil
	}
	return p
}

func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case apperrors.Is(err, apperrors.ErrSignalsNotFound):
		status = http.StatusNotFound
	case apperrors.Is(err, apperrors.ErrSignalsInvalid):
		status = http.StatusUnprocessableEntity
	case apperrors.Is(err, apperrors.ErrGitUnavailable), apperrors.Is(err, apperrors.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	case apperrors.Is(err, apperrors.ErrInvalidQuery):
		status = http.StatusBadRequest
	}
	logger := logging.FromContext(c.Request.Context(), s.logger)
	logger.Warn().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
	c.JSON(status, gin.H{"error": err.Error()})
}

func (s *Server) handleIndex(c *gin.Context) {
	s.service.Visit(c.Request.Context(), "index", models.VisitSourceHTTP, c.ClientIP(), c.Request.UserAgent())
	c.JSON(http.StatusOK, gin.H{
		"name":  "signal-dashboard",
		"notes": UsageNotes,
		"endpoints": []string{
			"/api/trades", "/api/summary", "/api/levels", "/api/diagnostics",
			"/api/changelog", "/api/visits", "/charts", "/healthz",
		},
	})
}

func (s *Server) handleTrades(c *gin.Context) {
	status := models.TradeStatus(strings.TrimSpace(c.Query("status")))
	if status != "" && !status.Valid() {
		s.fail(c, apperrors.Wrapf(apperrors.ErrInvalidQuery, "unknown status %q", status))
		return
	}
	symbol := strings.TrimSpace(c.Query("symbol"))
	if err := security.ValidateQueryParam("symbol", symbol, maxSymbolLength); err != nil {
		s.fail(c, err)
		return
	}
	p := s.pass(c, "trades")
	if p == nil {
		return
	}
	trades := report.Filter(p.Report.Trades, symbol, status)
	c.JSON(http.StatusOK, gin.H{"count": len(trades), "trades": trades})
}

func (s *Server) handleSummary(c *gin.Context) {
	p := s.pass(c, "summary")
	if p == nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{"by_symbol": p.Report.BySymbol, "totals": p.Report.Totals})
}

func (s *Server) handleLevels(c *gin.Context) {
	p := s.pass(c, "levels")
	if p == nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{"by_level": p.Report.ByLevel})
}

func (s *Server) handleDiagnostics(c *gin.Context) {
	p := s.pass(c, "diagnostics")
	if p == nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"totals":  p.Result.Diagnostics.Totals(),
		"symbols": p.Result.Diagnostics.Symbols,
	})
}

func (s *Server) handleCharts(c *gin.Context) {
	p := s.pass(c, "charts")
	if p == nil {
		return
	}
	var buf bytes.Buffer
	if err := chart.Render(&buf, p.Report, chart.Options{Theme: s.service.Config.Server.ChartTheme}); err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (s *Server) handleChangelog(c *gin.Context) {
	s.service.Visit(c.Request.Context(), "changelog", models.VisitSourceHTTP, c.ClientIP(), c.Request.UserAgent())
	entries, err := s.service.Changelog(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (s *Server) handleVisits(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultVisitLimit)))
	if err != nil || limit <= 0 {
		limit = defaultVisitLimit
	}
	stats, err := s.service.Visits(c.Request.Context(), limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
