// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"signal-dashboard/internal/models"
)

// VisitStore persists dashboard visits. Visits are append-only.
type VisitStore interface {
	RecordVisit(ctx context.Context, visit *models.Visit) error
	CountVisits(ctx context.Context, filter VisitFilter) (int64, error)
	RecentVisits(ctx context.Context, filter VisitFilter) ([]models.Visit, error)
	CountByPage(ctx context.Context, filter VisitFilter) ([]models.PageCount, error)

	// Lifecycle
	Close() error
}

// VisitFilter represents filters for querying visits.
type VisitFilter struct {
	Page   string
	Source string
	Since  time.Time
	Limit  int
}
