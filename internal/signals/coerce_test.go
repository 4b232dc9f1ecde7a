package signals

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"signal-dashboard/internal/models"
)

func TestParseFloat(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want models.Opt[float64]
	}{
		{"float", 101.5, models.Present(101.5)},
		{"int", 7, models.Present(7.0)},
		{"json number", json.Number("12.25"), models.Present(12.25)},
		{"thousands string", "1,234.5", models.Present(1234.5)},
		{"padded string", "  99 ", models.Present(99.0)},
		{"negative string", "-3.5", models.Present(-3.5)},
		{"garbage", "abc", models.Absent[float64]()},
		{"empty", "", models.Absent[float64]()},
		{"nan string", "NaN", models.Absent[float64]()},
		{"inf string", "inf", models.Absent[float64]()},
		{"nil", nil, models.Absent[float64]()},
		{"bool", true, models.Absent[float64]()},
		{"object", map[string]any{"x": 1.0}, models.Absent[float64]()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseFloat(tc.in))
		})
	}
}

func TestParseDate(t *testing.T) {
	jan10 := models.Present(models.NewDate(2025, time.January, 10))
	cases := []struct {
		name string
		in   any
		want models.Opt[models.Date]
	}{
		{"strict two digit year", "25-01-10", jan10},
		{"iso", "2025-01-10", jan10},
		{"iso datetime", "2025-01-10T15:30:00Z", jan10},
		{"unpadded", "25-1-10", jan10},
		{"slashes", "2025/01/10", jan10},
		{"us", "01/10/2025", jan10},
		{"month name", "10-Jan-2025", jan10},
		{"long", "Jan 10, 2025", jan10},
		{"datetime without seconds", "2025-01-10 10:00", jan10},
		{"month name without comma", "Jan 10 2025", jan10},
		{"day month name", "10 January 2025", jan10},
		{"none", "None", models.Absent[models.Date]()},
		{"null", "null", models.Absent[models.Date]()},
		{"nan", "nan", models.Absent[models.Date]()},
		{"blank", "  ", models.Absent[models.Date]()},
		{"nil", nil, models.Absent[models.Date]()},
		{"garbage", "next tuesday", models.Absent[models.Date]()},
		{"impossible", "25-13-40", models.Absent[models.Date]()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseDate(tc.in))
		})
	}
}

func TestParseDateTwoDigitYearPivot(t *testing.T) {
	d, ok := ParseDate("99-12-31").Get()
	assert.True(t, ok)
	assert.Equal(t, 1999, d.Time().Year())

	d, ok = ParseDate("30-06-01").Get()
	assert.True(t, ok)
	assert.Equal(t, 2030, d.Time().Year())
}
