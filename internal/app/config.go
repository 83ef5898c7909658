package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"nse-data/internal/calendar"
	"nse-data/internal/model"
	"nse-data/internal/store"
)

// Config holds application configuration. Environment variables provide
// the base values; an optional YAML file (CONFIG_FILE) overrides them.
type Config struct {
	DataDir          string   `yaml:"data_dir"`
	ArchiveBaseURL   string   `yaml:"archive_base_url"`
	InitialStartDate string   `yaml:"initial_start_date"` // YYYY-MM-DD
	SchemaVariant    string   `yaml:"schema_variant"`     // delivery | full
	Holidays         []string `yaml:"holidays"`           // MM-DD fixed holidays
	FetchDelayMs     int      `yaml:"fetch_delay_ms"`
	TimeoutSec       int      `yaml:"timeout_sec"`
	PublishHour      int      `yaml:"publish_hour"` // 0 disables the gate
	MergeWorkers     int      `yaml:"merge_workers"`
	ExportFormat     string   `yaml:"export_format"` // csv | json | parquet
	CronSpec         string   `yaml:"cron_spec"`
	LogLevel         string   `yaml:"log_level"` // debug | info | warn | error
}

// LoadConfig reads config from the environment with defaults matching the
// production archive job.
func LoadConfig() *Config {
	cfg := &Config{
		DataDir:          getEnv("DATA_DIR", "data"),
		ArchiveBaseURL:   os.Getenv("ARCHIVE_BASE_URL"),
		InitialStartDate: getEnv("INITIAL_START_DATE", "2019-10-01"),
		SchemaVariant:    getEnv("SCHEMA_VARIANT", "full"),
		FetchDelayMs:     getEnvInt("FETCH_DELAY_MS", 200),
		TimeoutSec:       getEnvInt("TIMEOUT_SEC", 10),
		PublishHour:      getEnvInt("PUBLISH_HOUR", 18),
		MergeWorkers:     getEnvInt("MERGE_WORKERS", 4),
		ExportFormat:     getEnv("EXPORT_FORMAT", "csv"),
		CronSpec:         getEnv("CRON_SPEC", "30 18 * * 1-5"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}
	return cfg
}

// LoadConfigFile overlays a YAML file onto cfg. Environment variables
// inside the file (${VAR}) are expanded before parsing.
func (c *Config) LoadConfigFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), c); err != nil {
		return fmt.Errorf("parse config yaml: %w", err)
	}
	return nil
}

// Validate checks the fields a run depends on. Called once at startup,
// before any fetching.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	if _, err := model.ParseISODate(c.InitialStartDate); err != nil {
		return fmt.Errorf("initial_start_date %q: want YYYY-MM-DD", c.InitialStartDate)
	}
	if model.ParseVariant(c.SchemaVariant) == "" {
		return fmt.Errorf("schema_variant %q (use: delivery, full)", c.SchemaVariant)
	}
	if _, err := c.HolidayTable(); err != nil {
		return err
	}
	if c.FetchDelayMs < 0 || c.TimeoutSec <= 0 {
		return fmt.Errorf("fetch_delay_ms must be >= 0 and timeout_sec > 0")
	}
	if c.PublishHour < 0 || c.PublishHour > 23 {
		return fmt.Errorf("publish_hour %d out of range", c.PublishHour)
	}
	return nil
}

// InitialStart returns the parsed initial start date. Validate first.
func (c *Config) InitialStart() time.Time {
	d, _ := model.ParseISODate(c.InitialStartDate)
	return d
}

// Variant returns the parsed schema variant. Validate first.
func (c *Config) Variant() model.Variant {
	return model.ParseVariant(c.SchemaVariant)
}

// HolidayTable parses the configured MM-DD holidays; an empty config
// falls back to the exchange's fixed national holidays.
func (c *Config) HolidayTable() ([]calendar.Holiday, error) {
	if len(c.Holidays) == 0 {
		return calendar.DefaultHolidays, nil
	}
	holidays := make([]calendar.Holiday, 0, len(c.Holidays))
	for _, s := range c.Holidays {
		parts := strings.SplitN(strings.TrimSpace(s), "-", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("holiday %q: want MM-DD", s)
		}
		month, err := strconv.Atoi(parts[0])
		if err != nil || month < 1 || month > 12 {
			return nil, fmt.Errorf("holiday %q: bad month", s)
		}
		day, err := strconv.Atoi(parts[1])
		if err != nil || day < 1 || day > 31 {
			return nil, fmt.Errorf("holiday %q: bad day", s)
		}
		holidays = append(holidays, calendar.Holiday{Month: time.Month(month), Day: day})
	}
	return holidays, nil
}

// FetchDelay returns the pause between outbound requests.
func (c *Config) FetchDelay() time.Duration {
	return time.Duration(c.FetchDelayMs) * time.Millisecond
}

// Timeout returns the per-request HTTP timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// SeriesDir returns the per-symbol series directory (data/StockData).
func (c *Config) SeriesDir() string {
	return filepath.Join(c.DataDir, "StockData")
}

// ChartDir returns the chart export directory (data/Chart).
func (c *Config) ChartDir() string {
	return filepath.Join(c.DataDir, "Chart")
}

// ManifestPath returns the manifest file path inside the series dir.
func (c *Config) ManifestPath() string {
	return filepath.Join(c.SeriesDir(), store.ManifestName)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
