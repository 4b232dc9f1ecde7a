package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"signal-dashboard/internal/models"
)

// ANSI styles.
const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiDim    = "\033[2m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
)

var ansiPattern = regexp.MustCompile("\x1b\\[[0-9;]*m")

// Output writes command results as colored text or, with --json, as JSON.
type Output struct {
	w     io.Writer
	json  bool
	color bool
}

// NewOutput creates an Output for the command's stdout.
func NewOutput(cmd *cobra.Command) *Output {
	jsonMode, _ := cmd.Flags().GetBool("json")
	w := cmd.OutOrStdout()
	return &Output{
		w:     w,
		json:  jsonMode,
		color: !jsonMode && isTerminal(w),
	}
}

// isTerminal reports whether w is a character device.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

// IsJSON returns true if JSON output mode is enabled.
func (o *Output) IsJSON() bool {
	return o.json
}

// JSON writes data as indented JSON.
func (o *Output) JSON(data interface{}) error {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// Println prints a message with newline.
func (o *Output) Println(args ...interface{}) {
	fmt.Fprintln(o.w, args...)
}

// Printf prints a formatted message.
func (o *Output) Printf(format string, args ...interface{}) {
	fmt.Fprintf(o.w, format, args...)
}

func (o *Output) Success(format string, args ...interface{}) { o.line(ansiGreen, format, args...) }
func (o *Output) Error(format string, args ...interface{})   { o.line(ansiRed, format, args...) }
func (o *Output) Warning(format string, args ...interface{}) { o.line(ansiYellow, format, args...) }
func (o *Output) Info(format string, args ...interface{})    { o.line(ansiCyan, format, args...) }
func (o *Output) Bold(format string, args ...interface{})    { o.line(ansiBold, format, args...) }
func (o *Output) Dim(format string, args ...interface{})     { o.line(ansiDim, format, args...) }

func (o *Output) line(style, format string, args ...interface{}) {
	fmt.Fprintln(o.w, o.paint(style, fmt.Sprintf(format, args...)))
}

// paint wraps text in style when color is enabled.
func (o *Output) paint(style, text string) string {
	if !o.color || style == "" {
		return text
	}
	return style + text + ansiReset
}

// Yellow returns yellow text.
func (o *Output) Yellow(text string) string {
	return o.paint(ansiYellow, text)
}

// DimText returns dimmed text.
func (o *Output) DimText(text string) string {
	return o.paint(ansiDim, text)
}

// FormatPnL formats a profit figure with sign, green for gains and red for
// losses.
func (o *Output) FormatPnL(money Money, pnl decimal.Decimal) string {
	style := ""
	switch pnl.Round(2).Sign() {
	case 1:
		style = ansiGreen
	case -1:
		style = ansiRed
	}
	return o.paint(style, money.Signed(pnl))
}

// FormatOptPnL formats an optional profit, Absent when missing.
func (o *Output) FormatOptPnL(money Money, pnl models.Opt[float64]) string {
	v, ok := pnl.Get()
	if !ok {
		return o.DimText(Absent)
	}
	return o.FormatPnL(money, decimal.NewFromFloat(v))
}

var statusStyles = map[models.TradeStatus]string{
	models.StatusClosed:    ansiGreen,
	models.StatusForceExit: ansiRed,
	models.StatusOpen:      ansiCyan,
	models.StatusExitOnly:  ansiYellow,
}

// StatusLabel colors a trade status. Exit-only trades get a hollow marker.
func (o *Output) StatusLabel(status models.TradeStatus) string {
	marker := "● "
	if status == models.StatusExitOnly {
		marker = "○ "
	}
	return o.paint(statusStyles[status], marker+string(status))
}

// Table buffers rows and prints them with aligned columns.
type Table struct {
	out     *Output
	headers []string
	rows    [][]string
}

// NewTable creates a table with the given headers.
func NewTable(out *Output, headers ...string) *Table {
	return &Table{out: out, headers: headers}
}

// AddRow appends a row. Cells beyond the header count are dropped.
func (t *Table) AddRow(cells ...string) {
	if len(cells) > len(t.headers) {
		cells = cells[:len(t.headers)]
	}
	t.rows = append(t.rows, cells)
}

// Render prints the header, a rule and every row.
func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for _, row := range append([][]string{t.headers}, t.rows...) {
		for i, cell := range row {
			widths[i] = max(widths[i], displayWidth(cell))
		}
	}

	t.out.Println(t.out.paint(ansiBold, joinPadded(t.headers, widths)))
	rule := make([]string, len(widths))
	for i, w := range widths {
		rule[i] = strings.Repeat("─", w)
	}
	t.out.Println(t.out.paint(ansiDim, strings.Join(rule, "──")))
	for _, row := range t.rows {
		t.out.Println(joinPadded(row, widths))
	}
}

func joinPadded(cells []string, widths []int) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		parts[i] = pad(cell, widths[i])
	}
	return strings.TrimRight(strings.Join(parts, "  "), " ")
}

// pad right-pads s to width visible runes.
func pad(s string, width int) string {
	if n := width - displayWidth(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}

// displayWidth counts the runes a cell occupies once colors are removed.
func displayWidth(s string) int {
	return utf8.RuneCountInString(ansiPattern.ReplaceAllString(s, ""))
}

// Box draws a titled frame around lines.
func (o *Output) Box(title string, lines []string) {
	width := displayWidth(title)
	for _, line := range lines {
		width = max(width, displayWidth(line))
	}

	h, v, tl, tr, ml, mr, bl, br := "─", "│", "┌", "┐", "├", "┤", "└", "┘"
	if !o.color {
		h, v, tl, tr, ml, mr, bl, br = "-", "|", "+", "+", "+", "+", "+", "+"
	}
	border := strings.Repeat(h, width+2)
	frame := func(s string) string { return o.paint(ansiDim, s) }

	o.Println(frame(tl + border + tr))
	o.Println(frame(v) + " " + pad(o.paint(ansiBold, title), width) + " " + frame(v))
	o.Println(frame(ml + border + mr))
	for _, line := range lines {
		o.Println(frame(v) + " " + pad(line, width) + " " + frame(v))
	}
	o.Println(frame(bl + border + br))
}
