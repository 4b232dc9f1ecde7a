package report

import (
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"

	apperrors "signal-dashboard/internal/errors"
	"signal-dashboard/internal/models"
)

// Format is an export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts json, csv, yaml or yml.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", apperrors.Wrapf(apperrors.ErrUnsupportedFormat, "export format %q", s)
}

// TradeRow is the flat CSV shape of a trade. Absent fields are empty cells.
type TradeRow struct {
	Symbol           string `csv:"symbol"`
	Level            int    `csv:"level"`
	Entry            string `csv:"entry"`
	EntryDate        string `csv:"entry_date"`
	Exit             string `csv:"exit"`
	ExitDate         string `csv:"exit_date"`
	ClosingPrice     string `csv:"closing_price"`
	Profit           string `csv:"profit"`
	RealizedProfit   string `csv:"realized_profit"`
	UnrealizedProfit string `csv:"unrealized_profit"`
	MaxProfit        string `csv:"max_profit"`
	Status           string `csv:"status"`
}

// Rows flattens trades for CSV.
func Rows(trades []models.Trade) []*TradeRow {
	rows := make([]*TradeRow, 0, len(trades))
	for _, t := range trades {
		rows = append(rows, &TradeRow{
			Symbol:           t.Symbol,
			Level:            t.Level,
			Entry:            floatCell(t.Entry),
			EntryDate:        dateCell(t.EntryDate),
			Exit:             floatCell(t.Exit),
			ExitDate:         dateCell(t.ExitDate),
			ClosingPrice:     floatCell(t.ClosingPrice),
			Profit:           floatCell(t.Profit),
			RealizedProfit:   floatCell(t.RealizedProfit),
			UnrealizedProfit: floatCell(t.UnrealizedProfit),
			MaxProfit:        floatCell(t.MaxProfit),
			Status:           string(t.Status),
		})
	}
	return rows
}

// Export writes the report. CSV carries the trade list only; JSON and YAML
// carry the whole report.
func Export(w io.Writer, r *Report, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatCSV:
		return gocsv.Marshal(Rows(r.Trades), w)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	}
	return apperrors.Wrapf(apperrors.ErrUnsupportedFormat, "export format %q", format)
}

func floatCell(o models.Opt[float64]) string {
	v, ok := o.Get()
	if !ok {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func dateCell(o models.Opt[models.Date]) string {
	d, ok := o.Get()
	if !ok {
		return ""
	}
	return d.String()
}
