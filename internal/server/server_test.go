package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"signal-dashboard/internal/config"
	"signal-dashboard/internal/dashboard"
	"signal-dashboard/internal/store"
)

const signalsDoc = `{
	"ABC": {
		"closing_price": 130,
		"entry 1": 100, "entry 1 date": "25-01-01", "exit 1": 120, "exit 1 date": "25-01-10", "entry1_max_price": 140,
		"entry 2": 110, "entry 2 date": "25-01-05"
	},
	"XYZ": {"entry 1": 50, "entry 1 date": "25-02-01", "exit_all": 45, "exit_all_date": "25-03-01"}
}`

func newTestServer(t *testing.T) (*Server, *dashboard.Service) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "signals.json")
	require.NoError(t, os.WriteFile(path, []byte(signalsDoc), 0o644))

	cfg := config.Default()
	cfg.Data.SignalsFile = path
	cfg.Git.RepoDir = dir

	visits, err := store.NewSQLiteStore(filepath.Join(dir, "visits.db"))
	require.NoError(t, err)
	t.Cleanup(func() { visits.Close() })

	svc := dashboard.NewService(cfg, zerolog.Nop(), visits)
	return New(svc), svc
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestIndex(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	notes := gjson.Get(rec.Body.String(), "notes").Array()
	assert.Len(t, notes, len(UsageNotes))
	assert.Contains(t, rec.Body.String(), "does not place or execute")
}

func TestTrades(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/api/trades")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Equal(t, int64(3), gjson.Get(body, "count").Int())
	assert.Equal(t, "ABC", gjson.Get(body, "trades.0.symbol").String())
	assert.True(t, gjson.Get(body, "trades.0.unrealized_profit").Type == gjson.Null)

	rec = get(t, s, "/api/trades?symbol=XYZ&status=forceExit")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), gjson.Get(rec.Body.String(), "count").Int())
	assert.Equal(t, -5.0, gjson.Get(rec.Body.String(), "trades.0.realized_profit").Float())

	rec = get(t, s, "/api/trades?status=bogus")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(t, s, "/api/trades?symbol=AB%00C")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSummary(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/api/summary")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Equal(t, "15", gjson.Get(body, "totals.total_realized").String())
	assert.Equal(t, "20", gjson.Get(body, "totals.total_unrealized").String())
	assert.Equal(t, "35", gjson.Get(body, "totals.combined").String())
	assert.Equal(t, "XYZ", gjson.Get(body, "by_symbol.1.symbol").String())
}

func TestLevelsAndDiagnostics(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/api/levels")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, gjson.Get(rec.Body.String(), "by_level").Array(), 2)

	rec = get(t, s, "/api/diagnostics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(3), gjson.Get(rec.Body.String(), "totals.emitted").Int())
}

func TestCharts(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/charts")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Missed opportunity")
}

func TestMissingSignalsFile(t *testing.T) {
	s, svc := newTestServer(t)
	svc.Config.Data.SignalsFile = filepath.Join(t.TempDir(), "gone.json")

	rec := get(t, s, "/api/summary")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, gjson.Get(rec.Body.String(), "error").String())
}

func TestChangelog_NoRepository(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/api/changelog")
	assert.Contains(t, []int{http.StatusOK, http.StatusServiceUnavailable}, rec.Code)
}

func TestVisitsRecordedPerRequest(t *testing.T) {
	s, _ := newTestServer(t)
	get(t, s, "/api/summary")
	get(t, s, "/api/summary")
	get(t, s, "/api/trades")
	get(t, s, "/healthz")

	rec := get(t, s, "/api/visits?limit=2")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats dashboard.VisitStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, int64(3), stats.Total)
	assert.Len(t, stats.Recent, 2)
	assert.Equal(t, "summary", stats.ByPage[0].Page)
	assert.Equal(t, "http", stats.Recent[0].Source)
}
