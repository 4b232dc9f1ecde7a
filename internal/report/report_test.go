package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"signal-dashboard/internal/models"
	"signal-dashboard/internal/signals"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func buildFromJSON(t *testing.T, doc string) *Report {
	t.Helper()
	set, err := signals.Parse([]byte(doc))
	require.NoError(t, err)
	return Build(signals.Normalize(set).Trades)
}

const sampleSignals = `{
	"ABC": {
		"closing_price": 130,
		"entry 1": 100, "entry 1 date": "25-01-01", "exit 1": 120, "exit 1 date": "25-01-10", "entry1_max_price": 140,
		"entry 2": 110, "entry 2 date": "25-01-05", "entry2_max_price": 135
	},
	"XYZ": {
		"exit_all": 45, "exit_all_date": "25-03-01",
		"entry 1": 50, "entry 1 date": "25-02-01", "entry1_max_price": 58.5,
		"exit 3": 70, "exit 3 date": "25-02-15"
	}
}`

func TestBuild_BySymbol(t *testing.T) {
	r := buildFromJSON(t, sampleSignals)
	require.Len(t, r.BySymbol, 2)

	abc := r.BySymbol[0]
	assert.Equal(t, "ABC", abc.Symbol)
	assert.Equal(t, 2, abc.Trades)
	assert.True(t, abc.Realized.Equal(d("20")))
	assert.True(t, abc.Unrealized.Equal(d("20")))
	assert.True(t, abc.Max.Equal(d("65")))
	assert.True(t, abc.Missed.Equal(d("45")))

	xyz := r.BySymbol[1]
	assert.Equal(t, "XYZ", xyz.Symbol)
	assert.True(t, xyz.Realized.Equal(d("-5")), "force exit is realized")
	assert.True(t, xyz.Unrealized.IsZero())
	assert.True(t, xyz.Max.Equal(d("8.5")))
	assert.True(t, xyz.Missed.Equal(d("13.5")))
}

func TestBuild_Totals(t *testing.T) {
	r := buildFromJSON(t, sampleSignals)
	assert.True(t, r.Totals.Realized.Equal(d("15")))
	assert.True(t, r.Totals.Unrealized.Equal(d("20")))
	assert.True(t, r.Totals.Max.Equal(d("73.5")))
	assert.True(t, r.Totals.Missed.Equal(d("58.5")))
	assert.True(t, r.Totals.Combined.Equal(d("35")))
}

func TestBuild_ByLevel(t *testing.T) {
	r := buildFromJSON(t, sampleSignals)
	require.Len(t, r.ByLevel, 3)

	l1 := r.ByLevel[0]
	assert.Equal(t, 1, l1.Level)
	assert.Equal(t, 2, l1.TradeCount)
	assert.Equal(t, 2, l1.ProfitCount)
	assert.True(t, l1.TotalProfit.Equal(d("15")))
	avg, ok := l1.AvgProfit.Get()
	require.True(t, ok)
	assert.True(t, avg.Equal(d("7.5")))

	l3 := r.ByLevel[2]
	assert.Equal(t, 3, l3.Level)
	assert.Equal(t, 1, l3.TradeCount, "exit-only trade is counted")
	assert.Equal(t, 0, l3.ProfitCount)
	assert.True(t, l3.AvgProfit.IsAbsent())
}

func TestBuild_Empty(t *testing.T) {
	r := Build(nil)
	assert.Empty(t, r.BySymbol)
	assert.Empty(t, r.ByLevel)
	assert.True(t, r.Totals.Combined.IsZero())
}

func TestFilter(t *testing.T) {
	r := buildFromJSON(t, sampleSignals)
	assert.Len(t, Filter(r.Trades, "ABC", ""), 2)
	assert.Len(t, Filter(r.Trades, "", models.StatusForceExit), 1)
	assert.Len(t, Filter(r.Trades, "XYZ", models.StatusExitOnly), 1)
	assert.Len(t, Filter(r.Trades, "", ""), len(r.Trades))
}

// Property: sum of per-symbol missed opportunity equals total max minus total
// realized, exactly.
func TestProperty_MissedOpportunityLaw(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("sum(missed) == sum(max) - sum(realized)", prop.ForAll(
		func(realized, maxes []float64, symbolIdx []int, mask []bool) bool {
			n := min(len(realized), len(maxes), len(symbolIdx), len(mask))
			trades := make([]models.Trade, 0, n)
			for i := 0; i < n; i++ {
				tr := models.Trade{
					Symbol: string(rune('A' + symbolIdx[i])),
					Level:  i%models.MaxLevel + 1,
					Status: models.StatusClosed,
				}
				if mask[i] {
					tr.RealizedProfit = models.Present(realized[i])
					tr.Profit = tr.RealizedProfit
				}
				tr.MaxProfit = models.Present(maxes[i])
				trades = append(trades, tr)
			}

			r := Build(trades)
			var missed, best, realizedSum decimal.Decimal
			for _, s := range r.BySymbol {
				missed = missed.Add(s.Missed)
				best = best.Add(s.Max)
				realizedSum = realizedSum.Add(s.Realized)
			}
			return missed.Equal(best.Sub(realizedSum)) && r.Totals.Missed.Equal(r.Totals.Max.Sub(r.Totals.Realized))
		},
		gen.SliceOf(gen.Float64Range(-10000, 10000)),
		gen.SliceOf(gen.Float64Range(-10000, 10000)),
		gen.SliceOf(gen.IntRange(0, 5)),
		gen.SliceOf(gen.Bool()),
	))

	properties.TestingRun(t)
}

func TestExport_CSV(t *testing.T) {
	r := buildFromJSON(t, sampleSignals)
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, r, FormatCSV))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, len(r.Trades)+1)
	assert.True(t, strings.HasPrefix(lines[0], "symbol,level,entry,entry_date"))
	assert.Contains(t, lines[1], "ABC,1,100,2025-01-01,120,2025-01-10,130,20,20,,40,closed")
}

func TestExport_JSONUsesNullForAbsent(t *testing.T) {
	r := buildFromJSON(t, sampleSignals)
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, r, FormatJSON))

	var decoded struct {
		Trades []map[string]any `json:"trades"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.NotEmpty(t, decoded.Trades)
	first := decoded.Trades[0]
	assert.Nil(t, first["unrealized_profit"])
	assert.Equal(t, "2025-01-01", first["entry_date"])
	assert.Equal(t, 20.0, first["realized_profit"])
}

func TestExport_YAML(t *testing.T) {
	r := buildFromJSON(t, sampleSignals)
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, r, FormatYAML))

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	totals, ok := decoded["totals"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "35", totals["combined"])
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("YML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = ParseFormat("xlsx")
	assert.Error(t, err)
}
