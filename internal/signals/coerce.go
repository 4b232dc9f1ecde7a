package signals

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"signal-dashboard/internal/models"
)

// ParseFloat coerces a raw field to a price. Numbers pass through, strings have
// thousands separators stripped, everything else is absent.
func ParseFloat(v any) models.Opt[float64] {
	switch t := v.(type) {
	case nil:
		return models.Absent[float64]()
	case float64:
		return finite(t)
	case float32:
		return finite(float64(t))
	case int:
		return models.Present(float64(t))
	case int32:
		return models.Present(float64(t))
	case int64:
		return models.Present(float64(t))
	case uint64:
		return models.Present(float64(t))
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return models.Absent[float64]()
		}
		return finite(f)
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(t, ",", ""))
		if s == "" {
			return models.Absent[float64]()
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return models.Absent[float64]()
		}
		return finite(f)
	default:
		return models.Absent[float64]()
	}
}

func finite(f float64) models.Opt[float64] {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return models.Absent[float64]()
	}
	return models.Present(f)
}

// strictDateLayout is the two-digit-year form the signal files are written in.
const strictDateLayout = "06-01-02"

// fallbackDateLayouts are tried in order when the strict layout fails. They
// pin the day-first and two-digit-year forms that a general parser would read
// differently.
var fallbackDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"06-1-2",
	"2006/01/02",
	"2006/1/2",
	"01/02/2006",
	"1/2/2006",
	"02-Jan-2006",
	"2-Jan-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"20060102",
}

var nullDateStrings = map[string]bool{
	"":     true,
	"None": true,
	"null": true,
	"NaN":  true,
	"nan":  true,
}

// ParseDate coerces a raw field to a calendar day. Sentinel strings and values
// matching no known layout are absent.
func ParseDate(v any) models.Opt[models.Date] {
	if v == nil {
		return models.Absent[models.Date]()
	}
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return models.Absent[models.Date]()
		}
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		s = t.String()
	case time.Time:
		return models.Present(models.DateOf(t))
	default:
		s = fmt.Sprint(t)
	}
	s = strings.TrimSpace(s)
	if nullDateStrings[s] {
		return models.Absent[models.Date]()
	}
	if t, err := time.Parse(strictDateLayout, s); err == nil {
		return models.Present(models.DateOf(t))
	}
	for _, layout := range fallbackDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return models.Present(models.DateOf(t))
		}
	}
	if t, err := dateparse.ParseIn(s, time.UTC); err == nil {
		return models.Present(models.DateOf(t))
	}
	return models.Absent[models.Date]()
}
