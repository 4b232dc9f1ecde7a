// Package chart renders report summaries as an HTML page of bar charts.
package chart

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	"github.com/shopspring/decimal"

	apperrors "signal-dashboard/internal/errors"
	"signal-dashboard/internal/report"
)

const (
	pageTitle    = "Signal Dashboard"
	chartWidthPx = 1100
	chartHeight  = 420

	colorRealized   = "#2ecc71"
	colorUnrealized = "#3498db"
	colorMax        = "#f1c40f"
	colorMissed     = "#e74c3c"
)

// Options configure the rendered page.
type Options struct {
	Theme string
}

// BuildPage assembles the symbol, missed opportunity and level charts.
func BuildPage(r *report.Report, o Options) *components.Page {
	theme := o.Theme
	if theme == "" {
		theme = types.ThemeWesteros
	}

	page := components.NewPage()
	page.PageTitle = pageTitle
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(
		symbolChart(r.BySymbol, theme),
		missedChart(r.BySymbol, theme),
		levelChart(r.ByLevel, theme),
	)
	return page
}

// Render writes the chart page as a standalone HTML document.
func Render(w io.Writer, r *report.Report, o Options) error {
	var buf bytes.Buffer
	if err := BuildPage(r, o).Render(&buf); err != nil {
		return apperrors.Wrap(err, "render charts")
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func initOpts(theme string) charts.GlobalOpts {
	return charts.WithInitializationOpts(opts.Initialization{
		PageTitle: pageTitle,
		Theme:     theme,
		Width:     fmt.Sprintf("%dpx", chartWidthPx),
		Height:    fmt.Sprintf("%dpx", chartHeight),
	})
}

func newBar(theme, title, subtitle string) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		initOpts(theme),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle, Left: "left"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{
			SplitLine: &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Opacity: opts.Float(0.2)}},
		}),
	)
	return bar
}

func symbolChart(rows []report.SymbolSummary, theme string) *charts.Bar {
	bar := newBar(theme, "Profit by symbol", "realized, unrealized and best possible")
	xAxis := make([]string, len(rows))
	realized := make([]opts.BarData, len(rows))
	unrealized := make([]opts.BarData, len(rows))
	best := make([]opts.BarData, len(rows))
	for i, s := range rows {
		xAxis[i] = s.Symbol
		realized[i] = barValue(s.Realized)
		unrealized[i] = barValue(s.Unrealized)
		best[i] = barValue(s.Max)
	}
	bar.SetXAxis(xAxis).
		AddSeries("Realized", realized, charts.WithItemStyleOpts(opts.ItemStyle{Color: colorRealized})).
		AddSeries("Unrealized", unrealized, charts.WithItemStyleOpts(opts.ItemStyle{Color: colorUnrealized})).
		AddSeries("Max", best, charts.WithItemStyleOpts(opts.ItemStyle{Color: colorMax}))
	return bar
}

func missedChart(rows []report.SymbolSummary, theme string) *charts.Bar {
	bar := newBar(theme, "Missed opportunity", "max profit minus realized profit")
	xAxis := make([]string, len(rows))
	missed := make([]opts.BarData, len(rows))
	for i, s := range rows {
		xAxis[i] = s.Symbol
		missed[i] = barValue(s.Missed)
	}
	bar.SetXAxis(xAxis).
		AddSeries("Missed", missed, charts.WithItemStyleOpts(opts.ItemStyle{Color: colorMissed}))
	return bar
}

func levelChart(rows []report.LevelSummary, theme string) *charts.Bar {
	bar := newBar(theme, "Profit by level", "total and average per trade")
	xAxis := make([]string, len(rows))
	total := make([]opts.BarData, len(rows))
	avg := make([]opts.BarData, len(rows))
	for i, l := range rows {
		xAxis[i] = "Level " + strconv.Itoa(l.Level)
		total[i] = barValue(l.TotalProfit)
		avg[i] = barValue(l.AvgProfit.Or(decimal.Zero))
	}
	bar.SetXAxis(xAxis).
		AddSeries("Total", total, charts.WithItemStyleOpts(opts.ItemStyle{Color: colorRealized})).
		AddSeries("Average", avg, charts.WithItemStyleOpts(opts.ItemStyle{Color: colorUnrealized}))
	return bar
}

func barValue(d decimal.Decimal) opts.BarData {
	return opts.BarData{Value: d.Round(2).InexactFloat64()}
}
