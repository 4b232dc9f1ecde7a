package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	apperrors "signal-dashboard/internal/errors"
	"signal-dashboard/internal/models"
	"signal-dashboard/pkg/utils"
)

// SQLiteStore implements VisitStore using SQLite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore creates a new SQLite-based visit store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrDatabaseError, "open %s: %v", dbPath, err)
	}

	// The server records visits from concurrent handlers.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{
		db:  db,
		now: time.Now,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, apperrors.Wrapf(apperrors.ErrDatabaseError, "initialize schema: %v", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- One row per dashboard view, whatever the surface
	CREATE TABLE IF NOT EXISTS visits (
		id TEXT PRIMARY KEY,
		page TEXT NOT NULL,
		source TEXT NOT NULL,
		remote TEXT,
		user_agent TEXT,
		visited_at DATETIME NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_visits_page ON visits(page);
	CREATE INDEX IF NOT EXISTS idx_visits_visited_at ON visits(visited_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// RecordVisit appends a visit. ID and VisitedAt are filled when empty.
func (s *SQLiteStore) RecordVisit(ctx context.Context, visit *models.Visit) error {
	if visit.ID == "" {
		visit.ID = uuid.NewString()
	}
	if visit.VisitedAt.IsZero() {
		visit.VisitedAt = s.now().UTC()
	}
	if visit.Source == "" {
		visit.Source = models.VisitSourceCLI
	}

	retry := utils.DefaultRetryConfig()
	retry.Retryable = isBusy
	err := utils.Retry(ctx, retry, func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO visits (id, page, source, remote, user_agent, visited_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, visit.ID, visit.Page, visit.Source, visit.Remote, visit.UserAgent, visit.VisitedAt)
		return err
	})
	if err != nil {
		return apperrors.Wrapf(apperrors.ErrDatabaseError, "record visit: %v", err)
	}
	return nil
}

// CountVisits returns the number of visits matching the filter.
func (s *SQLiteStore) CountVisits(ctx context.Context, filter VisitFilter) (int64, error) {
	where, args := filter.where()

	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM visits"+where, args...).Scan(&count); err != nil {
		return 0, apperrors.Wrapf(apperrors.ErrDatabaseError, "count visits: %v", err)
	}
	return count, nil
}

// RecentVisits returns visits newest first.
func (s *SQLiteStore) RecentVisits(ctx context.Context, filter VisitFilter) ([]models.Visit, error) {
	where, args := filter.where()
	query := "SELECT id, page, source, remote, user_agent, visited_at FROM visits" + where +
		" ORDER BY visited_at DESC, created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrDatabaseError, "query visits: %v", err)
	}
	defer rows.Close()

	var visits []models.Visit
	for rows.Next() {
		var v models.Visit
		var remote, agent sql.NullString
		if err := rows.Scan(&v.ID, &v.Page, &v.Source, &remote, &agent, &v.VisitedAt); err != nil {
			return nil, apperrors.Wrapf(apperrors.ErrDatabaseError, "scan visit: %v", err)
		}
		v.Remote = remote.String
		v.UserAgent = agent.String
		visits = append(visits, v)
	}

	return visits, rows.Err()
}

// CountByPage returns visit counts per page, busiest first.
func (s *SQLiteStore) CountByPage(ctx context.Context, filter VisitFilter) ([]models.PageCount, error) {
	where, args := filter.where()
	query := "SELECT page, COUNT(*) AS n FROM visits" + where + " GROUP BY page ORDER BY n DESC, page ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrDatabaseError, "count by page: %v", err)
	}
	defer rows.Close()

	var counts []models.PageCount
	for rows.Next() {
		var pc models.PageCount
		if err := rows.Scan(&pc.Page, &pc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan page count: %w", err)
		}
		counts = append(counts, pc)
	}

	return counts, rows.Err()
}

// isBusy reports whether SQLite rejected a write because another connection
// held the lock past the busy timeout.
func isBusy(err error) bool {
	var sqliteErr sqlite3.Error
	if !apperrors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
}

func (f VisitFilter) where() (string, []interface{}) {
	clause := " WHERE 1=1"
	args := []interface{}{}

	if f.Page != "" {
		clause += " AND page = ?"
		args = append(args, f.Page)
	}
	if f.Source != "" {
		clause += " AND source = ?"
		args = append(args, f.Source)
	}
	if !f.Since.IsZero() {
		clause += " AND visited_at >= ?"
		args = append(args, f.Since.UTC())
	}
	return clause, args
}
