package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Signal Dashboard Configuration

[data]
# Signals document, relative to the working directory
signals_file = "signals.json"

[report]
# Currency symbol prefixed to amounts
currency = "$"
# Digit grouping: "western" (1,000,000) or "indian" (10,00,000)
grouping = "western"
# Go layout for trade dates
date_format = "2006-01-02"

[server]
# Listen address for "signals serve"
addr = ":8501"
# go-echarts theme for /charts
chart_theme = "westeros"

[store]
# Visit log database (default: <config dir>/visits.db)
db_path = ""
# Record one visit per report view
track_visits = true

[git]
# Repository whose history is shown by "signals changelog"
repo_dir = "."
# Maximum commits listed
max_entries = 50

[log]
# Log level: debug, info, warn, error
level = "info"
# Log to stderr
console = true
# Log to a rotated file
file = true
# Log file (default: <config dir>/logs/signals.log)
file_path = ""
`

func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, ConfigFileName)
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return nil
}
