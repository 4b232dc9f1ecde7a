package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	apperrors "signal-dashboard/internal/errors"
)

const signalsDoc = `{
	"ABC": {
		"closing_price": 130,
		"entry 1": 100, "entry 1 date": "25-01-01", "exit 1": 120, "exit 1 date": "25-01-10", "entry1_max_price": 140,
		"entry 2": "1,100", "entry 2 date": "25-01-05"
	},
	"XYZ": {"entry 1": 50, "entry 1 date": "25-02-01", "exit_all": 45, "exit_all_date": "25-03-01", "entry 2": "abc", "entry 2 date": "25-02-02"}
}`

type testEnv struct {
	configDir string
	signals   string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "signals.json")
	require.NoError(t, os.WriteFile(path, []byte(signalsDoc), 0o644))

	configDir := filepath.Join(dir, "config")
	require.NoError(t, os.MkdirAll(configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(`
[log]
console = false
file = false
`), 0o644))
	return testEnv{configDir: configDir, signals: path}
}

func (e testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", e.configDir, "--file", e.signals}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestTradesCommand_JSON(t *testing.T) {
	env := newTestEnv(t)
	out, err := env.run(t, "trades", "--json")
	require.NoError(t, err)

	trades := gjson.Parse(out).Array()
	require.Len(t, trades, 3)
	assert.Equal(t, "closed", trades[0].Get("status").String())
	assert.Equal(t, 1100.0, trades[1].Get("entry").Float())
	assert.Equal(t, "forceExit", trades[2].Get("status").String())
}

func TestTradesCommand_Filters(t *testing.T) {
	env := newTestEnv(t)
	out, err := env.run(t, "trades", "--symbol", "ABC", "--status", "open")
	require.NoError(t, err)
	assert.Contains(t, out, "SYMBOL")
	assert.Contains(t, out, "1 trades from")

	_, err = env.run(t, "trades", "--status", "pending")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidQuery))
}

func TestSummaryCommand(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "summary", "--json")
	require.NoError(t, err)
	assert.Equal(t, "15", gjson.Get(out, "totals.total_realized").String())
	assert.Equal(t, "-970", gjson.Get(out, "totals.total_unrealized").String())

	out, err = env.run(t, "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "Realized:")
	assert.Contains(t, out, "+$15.00")
	assert.Contains(t, out, "-$970.00")
}

func TestLevelsCommand(t *testing.T) {
	env := newTestEnv(t)
	out, err := env.run(t, "levels", "--json")
	require.NoError(t, err)
	levels := gjson.Parse(out).Array()
	require.Len(t, levels, 2)
	assert.Equal(t, "7.5", levels[0].Get("avg_profit_per_trade").String())
}

func TestDiagnosticsCommand(t *testing.T) {
	env := newTestEnv(t)
	out, err := env.run(t, "diagnostics", "--json")
	require.NoError(t, err)
	assert.Equal(t, int64(1), gjson.Get(out, "totals.rejected").Int())
	assert.Equal(t, int64(1), gjson.Get(out, "totals.malformed").Int())

	out, err = env.run(t, "diagnostics")
	require.NoError(t, err)
	assert.Contains(t, out, "XYZ")
}

func TestLintCommand(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "lint")
	require.NoError(t, err, "lint is advisory by default")
	assert.Contains(t, out, "Values")

	_, err = env.run(t, "lint", "--strict")
	assert.Error(t, err)

	clean := filepath.Join(t.TempDir(), "clean.json")
	require.NoError(t, os.WriteFile(clean, []byte(`{"ABC": {"entry 1": 1, "entry 1 date": "25-01-01"}}`), 0o644))
	out, err = env.run(t, "lint", "--strict", clean)
	require.NoError(t, err)
	assert.Contains(t, out, "is clean")
}

func TestExportCommand(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "export", "--format", "csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "symbol,level,entry"))

	path := filepath.Join(t.TempDir(), "report.yaml")
	_, err = env.run(t, "export", "--format", "yaml", "--out", path)
	require.NoError(t, err)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "by_symbol:")

	_, err = env.run(t, "export", "--format", "xml")
	assert.True(t, apperrors.Is(err, apperrors.ErrUnsupportedFormat))
}

func TestChartCommand(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(t.TempDir(), "charts.html")

	out, err := env.run(t, "chart", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Charts written")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Profit by symbol")
}

func TestVisitsCommand(t *testing.T) {
	env := newTestEnv(t)
	for _, args := range [][]string{{"summary"}, {"summary"}, {"trades"}, {"version"}} {
		_, err := env.run(t, args...)
		require.NoError(t, err)
	}

	out, err := env.run(t, "visits", "--json")
	require.NoError(t, err)

	var stats struct {
		Total  int64 `json:"total"`
		ByPage []struct {
			Page  string `json:"page"`
			Count int64  `json:"count"`
		} `json:"by_page"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, int64(3), stats.Total)
	require.NotEmpty(t, stats.ByPage)
	assert.Equal(t, "summary", stats.ByPage[0].Page)
}

func TestMissingSignalsFile(t *testing.T) {
	env := newTestEnv(t)
	env.signals = filepath.Join(t.TempDir(), "missing.json")

	_, err := env.run(t, "summary")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrSignalsNotFound))
}

func TestConfigCommands(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(env.configDir, "config.toml"), strings.TrimSpace(out))

	out, err = env.run(t, "config", "validate", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"valid": true}`, out)

	out, err = env.run(t, "config", "show", "--json")
	require.NoError(t, err)
	assert.Equal(t, env.signals, gjson.Get(out, "data.signals_file").String())
}

func TestVersionCommand(t *testing.T) {
	env := newTestEnv(t)
	out, err := env.run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Signal Dashboard v"+Version)
}

func TestChangelogCommand_OutsideRepository(t *testing.T) {
	env := newTestEnv(t)
	repoDir := t.TempDir()
	t.Setenv("GIT_DIR", filepath.Join(repoDir, "missing.git"))

	configFile := filepath.Join(env.configDir, "config.toml")
	f, err := os.OpenFile(configFile, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("\n[git]\nrepo_dir = \"" + filepath.ToSlash(repoDir) + "\"\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	out, err := env.run(t, "changelog")
	require.NoError(t, err)
	assert.Contains(t, out, "Changelog unavailable")

	out, err = env.run(t, "changelog", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, out)
}
