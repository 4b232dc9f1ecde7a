package chart

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal-dashboard/internal/models"
	"signal-dashboard/internal/report"
)

func sampleReport() *report.Report {
	return report.Build([]models.Trade{
		{
			Symbol: "ABC", Level: 1, Status: models.StatusClosed,
			Entry: models.Present(100.0), Exit: models.Present(120.0),
			Profit: models.Present(20.0), RealizedProfit: models.Present(20.0), MaxProfit: models.Present(40.0),
		},
		{
			Symbol: "XYZ", Level: 2, Status: models.StatusOpen,
			Entry: models.Present(50.0), ClosingPrice: models.Present(55.0),
			Profit: models.Present(5.0), UnrealizedProfit: models.Present(5.0),
		},
	})
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleReport(), Options{Theme: "dark"}))

	html := buf.String()
	assert.Contains(t, html, "<html")
	assert.Contains(t, html, "Profit by symbol")
	assert.Contains(t, html, "Missed opportunity")
	assert.Contains(t, html, "Profit by level")
	assert.Contains(t, html, "ABC")
	assert.Contains(t, html, "Level 2")
}

func TestBuildPage_EmptyReport(t *testing.T) {
	page := BuildPage(report.Build(nil), Options{})
	assert.Len(t, page.Charts, 3)

	var buf bytes.Buffer
	require.NoError(t, page.Render(&buf))
	assert.Contains(t, buf.String(), "westeros")
}
