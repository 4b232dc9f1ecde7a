// Package config provides configuration management for the signal dashboard.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "signal-dashboard/internal/errors"
	"signal-dashboard/internal/logging"
)

// ConfigFileName is the config file name inside the config directory.
const ConfigFileName = "config.toml"

// Config holds all application configuration.
type Config struct {
	Data   DataConfig   `mapstructure:"data" json:"data"`
	Report ReportConfig `mapstructure:"report" json:"report"`
	Server ServerConfig `mapstructure:"server" json:"server"`
	Store  StoreConfig  `mapstructure:"store" json:"store"`
	Git    GitConfig    `mapstructure:"git" json:"git"`
	Log    LogConfig    `mapstructure:"log" json:"log"`

	// Dir is the directory the config was loaded from.
	Dir string `mapstructure:"-" json:"dir"`
}

// DataConfig locates the signals document.
type DataConfig struct {
	SignalsFile string `mapstructure:"signals_file" json:"signals_file"`
}

// ReportConfig controls how amounts and dates are displayed.
type ReportConfig struct {
	Currency   string `mapstructure:"currency" json:"currency"`
	Grouping   string `mapstructure:"grouping" json:"grouping"` // western, indian
	DateFormat string `mapstructure:"date_format" json:"date_format"`
}

// ServerConfig holds the dashboard HTTP settings.
type ServerConfig struct {
	Addr       string `mapstructure:"addr" json:"addr"`
	ChartTheme string `mapstructure:"chart_theme" json:"chart_theme"`
}

// StoreConfig holds visit log settings.
type StoreConfig struct {
	DBPath      string `mapstructure:"db_path" json:"db_path"`
	TrackVisits bool   `mapstructure:"track_visits" json:"track_visits"`
}

// GitConfig locates the repository whose history is shown as the changelog.
type GitConfig struct {
	RepoDir    string `mapstructure:"repo_dir" json:"repo_dir"`
	MaxEntries int    `mapstructure:"max_entries" json:"max_entries"`
}

// LogConfig mirrors logging.LogConfig in the config file.
type LogConfig struct {
	Level    string `mapstructure:"level" json:"level"`
	Console  bool   `mapstructure:"console" json:"console"`
	File     bool   `mapstructure:"file" json:"file"`
	FilePath string `mapstructure:"file_path" json:"file_path"`
}

// chartThemes are the go-echarts theme names accepted for server.chart_theme.
var chartThemes = map[string]bool{
	"chalk": true, "essos": true, "infographic": true, "macarons": true,
	"purple-passion": true, "roma": true, "romantic": true, "shine": true,
	"vintage": true, "walden": true, "westeros": true, "wonderland": true,
	"white": true, "dark": true,
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/signal-dashboard"
	}
	return filepath.Join(home, ".config", "signal-dashboard")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory. A missing
// config.toml is replaced by a commented template and defaults apply.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	// .env in the working directory feeds the env overrides below.
	_ = godotenv.Load()

	cfg := &Config{Dir: configDir}
	if err := loadConfigFile(configDir, cfg); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrConfigInvalid, "loading %s: %v", ConfigFileName, err)
	}

	applyEnvOverrides(cfg)
	cfg.resolvePaths()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{Dir: DefaultConfigDir()}
	_ = v.Unmarshal(cfg)
	cfg.resolvePaths()
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data.signals_file", "signals.json")
	v.SetDefault("report.currency", "$")
	v.SetDefault("report.grouping", "western")
	v.SetDefault("report.date_format", "2006-01-02")
	v.SetDefault("server.addr", ":8501")
	v.SetDefault("server.chart_theme", "westeros")
	v.SetDefault("store.db_path", "")
	v.SetDefault("store.track_visits", true)
	v.SetDefault("git.repo_dir", ".")
	v.SetDefault("git.max_entries", 50)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.console", true)
	v.SetDefault("log.file", true)
	v.SetDefault("log.file_path", "")
}

func loadConfigFile(configDir string, target *Config) error {
	v := viper.New()
	v.SetConfigName(strings.TrimSuffix(ConfigFileName, ".toml"))
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
		if err := createTemplateConfig(configDir); err != nil {
			return err
		}
	}

	return v.Unmarshal(target)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SIGNALS_FILE"); v != "" {
		cfg.Data.SignalsFile = v
	}
	if v := os.Getenv("SIGNALS_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("SIGNALS_DB"); v != "" {
		cfg.Store.DBPath = v
	}
	if v := os.Getenv("SIGNALS_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

func (c *Config) resolvePaths() {
	if c.Store.DBPath == "" {
		c.Store.DBPath = filepath.Join(c.Dir, "visits.db")
	}
	if c.Log.FilePath == "" {
		c.Log.FilePath = filepath.Join(c.Dir, "logs", "signals.log")
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Data.SignalsFile) == "" {
		return apperrors.NewValidationError("data.signals_file", c.Data.SignalsFile, "must not be empty")
	}
	if c.Server.Addr == "" {
		return apperrors.NewValidationError("server.addr", c.Server.Addr, "must not be empty")
	}
	if !chartThemes[c.Server.ChartTheme] {
		return apperrors.NewValidationError("server.chart_theme", c.Server.ChartTheme, "unknown chart theme")
	}
	if c.Git.MaxEntries < 0 {
		return apperrors.NewValidationError("git.max_entries", c.Git.MaxEntries, "must be non-negative")
	}
	if c.Report.Grouping != "western" && c.Report.Grouping != "indian" {
		return apperrors.NewValidationError("report.grouping", c.Report.Grouping, "must be western or indian")
	}
	if c.Report.DateFormat == "" {
		return apperrors.NewValidationError("report.date_format", c.Report.DateFormat, "must not be empty")
	}
	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "debug", "info", "warn", "error":
	default:
		return apperrors.NewValidationError("log.level", c.Log.Level, "must be debug, info, warn or error")
	}
	return nil
}

// Logging converts the [log] section into a logger configuration.
func (c *Config) Logging() logging.LogConfig {
	lc := logging.DefaultLogConfig()
	lc.Level = c.Log.Level
	lc.Console = c.Log.Console
	lc.File = c.Log.File
	lc.FilePath = c.Log.FilePath
	return lc
}

// Path returns the config file path.
func (c *Config) Path() string {
	return filepath.Join(c.Dir, ConfigFileName)
}
