package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"signal-dashboard/internal/models"
)

// Grouping selects how integer digits are separated.
type Grouping string

const (
	// GroupingWestern groups by thousands: 10,000,000.
	GroupingWestern Grouping = "western"
	// GroupingIndian groups by lakhs and crores: 1,00,00,000.
	GroupingIndian Grouping = "indian"
)

// Absent is printed for fields the signals file did not provide.
const Absent = "-"

// Money formats amounts with a currency symbol and digit grouping.
type Money struct {
	Currency string
	Grouping Grouping
}

// Format renders d with two decimal places, e.g. "$1,234.50" or "-$5.00".
func (m Money) Format(d decimal.Decimal) string {
	rounded := d.Round(2)
	negative := rounded.IsNegative()
	str := rounded.Abs().StringFixed(2)
	intPart, decPart, _ := strings.Cut(str, ".")

	var grouped string
	if m.Grouping == GroupingIndian {
		grouped = formatIndianNumber(intPart)
	} else {
		grouped = formatWesternNumber(intPart)
	}

	result := m.Currency + grouped + "." + decPart
	if negative {
		result = "-" + result
	}
	return result
}

// Signed is Format with a leading "+" for gains.
func (m Money) Signed(d decimal.Decimal) string {
	formatted := m.Format(d)
	if d.Round(2).IsPositive() {
		return "+" + formatted
	}
	return formatted
}

// formatWesternNumber inserts a comma every three digits from the right.
func formatWesternNumber(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	head := n % 3
	if head == 0 {
		head = 3
	}
	var b strings.Builder
	b.WriteString(s[:head])
	for i := head; i < n; i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// formatIndianNumber formats an integer string in Indian numbering system.
// Indian system: 1,00,00,000 (1 crore) vs Western: 10,000,000
func formatIndianNumber(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	// First group of 3 from right (hundreds)
	result := s[n-3:]
	s = s[:n-3]

	// Then groups of 2 (thousands, lakhs, crores)
	for len(s) > 0 {
		if len(s) >= 2 {
			result = s[len(s)-2:] + "," + result
			s = s[:len(s)-2]
		} else {
			result = s + "," + result
			s = ""
		}
	}

	return result
}

// FormatPrice formats an optional raw price without currency.
func FormatPrice(o models.Opt[float64]) string {
	v, ok := o.Get()
	if !ok {
		return Absent
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatDate formats an optional date with the configured layout.
func FormatDate(o models.Opt[models.Date], layout string) string {
	d, ok := o.Get()
	if !ok {
		return Absent
	}
	return d.Format(layout)
}

// FormatDuration formats a duration in human-readable form.
func FormatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	} else if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	} else if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
}

// TruncateString truncates a string to max length with ellipsis.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
