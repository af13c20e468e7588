package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"PriceLabeler/internal/model"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// CronParser accepts standard 5-field specs, an optional leading seconds field and descriptors like @hourly.
var CronParser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Config holds all application configuration.
type Config struct {
	Data struct {
		Path          string `yaml:"path"`
		Format        string `yaml:"format"`
		Symbol        string `yaml:"symbol"`
		Sheet         string `yaml:"sheet"`
		YahooSymbol   string `yaml:"yahoo_symbol"`
		YahooInterval string `yaml:"yahoo_interval"`
		YahooRange    string `yaml:"yahoo_range"`
	} `yaml:"data"`
	Labeling struct {
		Window    time.Duration   `yaml:"window"`
		Origin    string          `yaml:"origin"`
		TiePolicy model.TiePolicy `yaml:"tie_policy"`
	} `yaml:"labeling"`
	Chart struct {
		Enabled *bool  `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"chart"`
	Features struct {
		Enabled   bool  `yaml:"enabled"`
		TopN      *int  `yaml:"top_n"`
		Lookbacks []int `yaml:"lookbacks"`
	} `yaml:"features"`
	Output struct {
		LabelsPath string `yaml:"labels_path"`
	} `yaml:"output"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
	LogLevel string `yaml:"log_level"`
	Proxy    string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies .env and environment variable overrides.
// A missing file is not an error; defaults fill the gaps.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env only fills variables not already set in the environment
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	// Environment variable overrides
	if v := os.Getenv("DATA_PATH"); v != "" {
		cfg.Data.Path = v
	}
	if v := os.Getenv("DATA_FORMAT"); v != "" {
		cfg.Data.Format = v
	}
	if v := os.Getenv("LABEL_WINDOW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("LABEL_WINDOW: %w", err)
		}
		cfg.Labeling.Window = d
	}
	if v := os.Getenv("TIE_POLICY"); v != "" {
		cfg.Labeling.TiePolicy = model.TiePolicy(v)
	}
	if v := os.Getenv("CHART_PATH"); v != "" {
		cfg.Chart.Path = v
	}
	if v := os.Getenv("FEATURES_ENABLED"); v != "" {
		cfg.Features.Enabled = v == "true" || v == "1" || v == "yes"
	}
	if v := os.Getenv("FEATURES_TOP_N"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("FEATURES_TOP_N: %w", err)
		}
		cfg.Features.TopN = &n
	}
	if v := os.Getenv("LABELS_PATH"); v != "" {
		cfg.Output.LabelsPath = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("CRON_SCHEDULE"); v != "" {
		cfg.Schedule.Cron = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.Data.Path == "" && cfg.Data.Format != "yahoo" {
		cfg.Data.Path = "data/train/month/2022/2022_01_1m.csv"
	}
	if cfg.Data.YahooSymbol == "" {
		cfg.Data.YahooSymbol = cfg.Data.Symbol
	}
	if cfg.Labeling.Window == 0 {
		cfg.Labeling.Window = 12 * time.Hour
	}
	if cfg.Labeling.TiePolicy == "" {
		cfg.Labeling.TiePolicy = model.TieLongWins
	}
	if cfg.Chart.Enabled == nil {
		on := true
		cfg.Chart.Enabled = &on
	}
	if cfg.Chart.Path == "" {
		cfg.Chart.Path = "output/positions.png"
	}
	if cfg.Features.TopN == nil {
		n := 10
		cfg.Features.TopN = &n
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

// Origin returns the window origin; the Unix epoch when unset.
func (c *Config) Origin() (time.Time, error) {
	if c.Labeling.Origin == "" {
		return time.Unix(0, 0).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, c.Labeling.Origin)
	if err != nil {
		return time.Time{}, fmt.Errorf("labeling.origin: %w", err)
	}
	return t, nil
}

// FeatureTopN is how many formulas to print. An explicit 0 prints none.
func (c *Config) FeatureTopN() int {
	if c.Features.TopN == nil {
		return 10
	}
	return *c.Features.TopN
}

// ChartEnabled reports whether the chart step runs.
func (c *Config) ChartEnabled() bool {
	return c.Chart.Enabled == nil || *c.Chart.Enabled
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	if c.Data.Format == "yahoo" {
		if c.Data.YahooSymbol == "" {
			return fmt.Errorf("data.yahoo_symbol is required for the yahoo source")
		}
	} else if c.Data.Path == "" {
		return fmt.Errorf("data.path is required")
	}
	if c.Labeling.Window <= 0 {
		return fmt.Errorf("labeling.window must be positive")
	}
	if !c.Labeling.TiePolicy.Valid() {
		return fmt.Errorf("labeling.tie_policy must be %q or %q", model.TieLongWins, model.TieShortWins)
	}
	if _, err := c.Origin(); err != nil {
		return err
	}
	if c.FeatureTopN() < 0 {
		return fmt.Errorf("features.top_n must not be negative")
	}
	for _, n := range c.Features.Lookbacks {
		if n <= 0 {
			return fmt.Errorf("features.lookbacks must be positive, got %d", n)
		}
	}
	if c.Schedule.Cron != "" {
		if _, err := CronParser.Parse(c.Schedule.Cron); err != nil {
			return fmt.Errorf("schedule.cron: %w", err)
		}
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}
