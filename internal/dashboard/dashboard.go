// Package dashboard runs the load, classify and aggregate pass shared by the
// command line and the HTTP server.
package dashboard

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"signal-dashboard/internal/changelog"
	"signal-dashboard/internal/config"
	apperrors "signal-dashboard/internal/errors"
	"signal-dashboard/internal/logging"
	"signal-dashboard/internal/models"
	"signal-dashboard/internal/report"
	"signal-dashboard/internal/security"
	"signal-dashboard/internal/signals"
	"signal-dashboard/internal/store"
)

// Pass is the outcome of one load-classify-aggregate run.
type Pass struct {
	Path     string
	Set      *signals.SignalSet
	Result   *signals.Result
	Report   *report.Report
	Duration time.Duration
}

// VisitStats summarizes the visit log.
type VisitStats struct {
	Total  int64              `json:"total"`
	ByPage []models.PageCount `json:"by_page"`
	Recent []models.Visit     `json:"recent"`
}

// Service wires configuration, logging and the visit store around the
// signal pipeline. Store may be nil.
type Service struct {
	Config *config.Config
	Logger zerolog.Logger
	Store  store.VisitStore
}

// NewService creates a service.
func NewService(cfg *config.Config, logger zerolog.Logger, visits store.VisitStore) *Service {
	return &Service{Config: cfg, Logger: logger, Store: visits}
}

// Run loads the configured signals file and derives the report. Nothing is
// cached between runs.
func (s *Service) Run(ctx context.Context) (*Pass, error) {
	return s.RunFile(ctx, s.Config.Data.SignalsFile)
}

// RunFile is Run with an explicit path.
func (s *Service) RunFile(ctx context.Context, path string) (*Pass, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	logger := logging.FromContext(ctx, s.Logger)

	set, err := signals.Load(path)
	if err != nil {
		return nil, err
	}
	res := signals.NewNormalizer(logger).Normalize(set)
	rep := report.Build(res.Trades)

	p := &Pass{
		Path:     path,
		Set:      set,
		Result:   res,
		Report:   rep,
		Duration: time.Since(start),
	}
	logging.LogLoad(logger, path, set.Len(), len(res.Trades), res.Diagnostics.Totals().Rejected, p.Duration)
	return p, nil
}

// Visit appends one row to the visit log. Failures are logged and dropped so
// that a broken store never hides a report.
func (s *Service) Visit(ctx context.Context, page, source, remote, agent string) {
	if s.Store == nil || !s.Config.Store.TrackVisits {
		return
	}
	err := s.Store.RecordVisit(ctx, &models.Visit{
		Page:      security.SanitizeText(page, security.MaxFieldLength),
		Source:    source,
		Remote:    security.SanitizeText(remote, security.MaxFieldLength),
		UserAgent: security.SanitizeText(agent, security.MaxFieldLength),
	})
	logging.LogVisit(logging.FromContext(ctx, s.Logger), page, source, err)
}

// Visits reads the visit log.
func (s *Service) Visits(ctx context.Context, limit int) (*VisitStats, error) {
	if s.Store == nil {
		return nil, apperrors.ErrStoreUnavailable
	}
	total, err := s.Store.CountVisits(ctx, store.VisitFilter{})
	if err != nil {
		return nil, err
	}
	byPage, err := s.Store.CountByPage(ctx, store.VisitFilter{})
	if err != nil {
		return nil, err
	}
	recent, err := s.Store.RecentVisits(ctx, store.VisitFilter{Limit: limit})
	if err != nil {
		return nil, err
	}
	return &VisitStats{Total: total, ByPage: byPage, Recent: recent}, nil
}

// Changelog lists recent commits of the configured repository.
func (s *Service) Changelog(ctx context.Context) ([]changelog.Entry, error) {
	return changelog.NewReader(s.Config.Git.RepoDir, s.Config.Git.MaxEntries).Entries(ctx)
}
