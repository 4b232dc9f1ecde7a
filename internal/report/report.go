// Package report aggregates normalized trades into per-symbol and per-level
// summaries and grand totals.
package report

import (
	"maps"
	"slices"

	"github.com/shopspring/decimal"

	"signal-dashboard/internal/models"
)

// SymbolSummary is the per-symbol profit breakdown. Absent profits count as 0.
type SymbolSummary struct {
	Symbol     string          `json:"symbol" yaml:"symbol"`
	Trades     int             `json:"trades" yaml:"trades"`
	Realized   decimal.Decimal `json:"realized_profit" yaml:"realized_profit"`
	Unrealized decimal.Decimal `json:"unrealized_profit" yaml:"unrealized_profit"`
	Max        decimal.Decimal `json:"max_profit" yaml:"max_profit"`
	Missed     decimal.Decimal `json:"missed_opportunity" yaml:"missed_opportunity"`
}

// LevelSummary is the per-level profit breakdown.
type LevelSummary struct {
	Level       int                         `json:"level" yaml:"level"`
	TradeCount  int                         `json:"trade_count" yaml:"trade_count"`
	ProfitCount int                         `json:"profit_count" yaml:"profit_count"`
	Realized    decimal.Decimal             `json:"realized_profit" yaml:"realized_profit"`
	Unrealized  decimal.Decimal             `json:"unrealized_profit" yaml:"unrealized_profit"`
	Max         decimal.Decimal             `json:"max_profit" yaml:"max_profit"`
	TotalProfit decimal.Decimal             `json:"total_profit" yaml:"total_profit"`
	AvgProfit   models.Opt[decimal.Decimal] `json:"avg_profit_per_trade" yaml:"avg_profit_per_trade"`
}

// Totals are the column sums of the per-symbol summary.
type Totals struct {
	Realized   decimal.Decimal `json:"total_realized" yaml:"total_realized"`
	Unrealized decimal.Decimal `json:"total_unrealized" yaml:"total_unrealized"`
	Max        decimal.Decimal `json:"total_max" yaml:"total_max"`
	Missed     decimal.Decimal `json:"missed_opportunity" yaml:"missed_opportunity"`
	Combined   decimal.Decimal `json:"combined" yaml:"combined"`
}

// Report is everything handed to a display surface after one pass.
type Report struct {
	Trades   []models.Trade  `json:"trades" yaml:"trades"`
	BySymbol []SymbolSummary `json:"by_symbol" yaml:"by_symbol"`
	ByLevel  []LevelSummary  `json:"by_level" yaml:"by_level"`
	Totals   Totals          `json:"totals" yaml:"totals"`
}

// avgPlaces bounds the precision of level means.
const avgPlaces = 8

// Build aggregates trades into a report.
func Build(trades []models.Trade) *Report {
	bySymbol := BySymbol(trades)
	return &Report{
		Trades:   trades,
		BySymbol: bySymbol,
		ByLevel:  ByLevel(trades),
		Totals:   ComputeTotals(bySymbol),
	}
}

// BySymbol groups trades by symbol, sorted by symbol.
func BySymbol(trades []models.Trade) []SymbolSummary {
	acc := make(map[string]*SymbolSummary)
	for _, t := range trades {
		s, ok := acc[t.Symbol]
		if !ok {
			s = &SymbolSummary{Symbol: t.Symbol}
			acc[t.Symbol] = s
		}
		s.Trades++
		s.Realized = s.Realized.Add(dec(t.RealizedProfit))
		s.Unrealized = s.Unrealized.Add(dec(t.UnrealizedProfit))
		s.Max = s.Max.Add(dec(t.MaxProfit))
	}

	out := make([]SymbolSummary, 0, len(acc))
	for _, sym := range slices.Sorted(maps.Keys(acc)) {
		s := acc[sym]
		s.Missed = s.Max.Sub(s.Realized)
		out = append(out, *s)
	}
	return out
}

// ByLevel groups trades by level, sorted by level.
func ByLevel(trades []models.Trade) []LevelSummary {
	acc := make(map[int]*LevelSummary)
	for _, t := range trades {
		l, ok := acc[t.Level]
		if !ok {
			l = &LevelSummary{Level: t.Level}
			acc[t.Level] = l
		}
		l.TradeCount++
		l.Realized = l.Realized.Add(dec(t.RealizedProfit))
		l.Unrealized = l.Unrealized.Add(dec(t.UnrealizedProfit))
		l.Max = l.Max.Add(dec(t.MaxProfit))
		if t.Profit.IsPresent() {
			l.ProfitCount++
			l.TotalProfit = l.TotalProfit.Add(dec(t.Profit))
		}
	}

	out := make([]LevelSummary, 0, len(acc))
	for _, level := range slices.Sorted(maps.Keys(acc)) {
		l := acc[level]
		if l.ProfitCount > 0 {
			l.AvgProfit = models.Present(l.TotalProfit.DivRound(decimal.NewFromInt(int64(l.ProfitCount)), avgPlaces))
		}
		out = append(out, *l)
	}
	return out
}

// ComputeTotals sums the per-symbol columns.
func ComputeTotals(symbols []SymbolSummary) Totals {
	var t Totals
	for _, s := range symbols {
		t.Realized = t.Realized.Add(s.Realized)
		t.Unrealized = t.Unrealized.Add(s.Unrealized)
		t.Max = t.Max.Add(s.Max)
		t.Missed = t.Missed.Add(s.Missed)
	}
	t.Combined = t.Realized.Add(t.Unrealized)
	return t
}

// Filter narrows trades by symbol and status; empty arguments match all.
func Filter(trades []models.Trade, symbol string, status models.TradeStatus) []models.Trade {
	if symbol == "" && status == "" {
		return trades
	}
	out := make([]models.Trade, 0, len(trades))
	for _, t := range trades {
		if symbol != "" && t.Symbol != symbol {
			continue
		}
		if status != "" && t.Status != status {
			continue
		}
		out = append(out, t)
	}
	return out
}

func dec(o models.Opt[float64]) decimal.Decimal {
	v, ok := o.Get()
	if !ok {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}
