package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"nse-data/internal/calendar"
	"nse-data/internal/model"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.DataDir != "data" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.Variant() != model.VariantFull {
		t.Errorf("default variant = %q", cfg.Variant())
	}
	if cfg.FetchDelay() != 200*time.Millisecond {
		t.Errorf("fetch delay = %v", cfg.FetchDelay())
	}
	if cfg.Timeout() != 10*time.Second {
		t.Errorf("timeout = %v", cfg.Timeout())
	}
	if got := cfg.SeriesDir(); got != filepath.Join("data", "StockData") {
		t.Errorf("SeriesDir = %q", got)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("DATA_DIR", "/tmp/out")
	t.Setenv("SCHEMA_VARIANT", "delivery")
	t.Setenv("FETCH_DELAY_MS", "50")
	cfg := LoadConfig()
	if cfg.DataDir != "/tmp/out" || cfg.Variant() != model.VariantDelivery || cfg.FetchDelayMs != 50 {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestLoadConfigFileOverlay(t *testing.T) {
	t.Setenv("TEST_ARCHIVE_URL", "http://localhost:9999")
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
archive_base_url: ${TEST_ARCHIVE_URL}
schema_variant: delivery
holidays: ["01-26", "12-25"]
publish_hour: 0
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := LoadConfig()
	if err := cfg.LoadConfigFile(path); err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.ArchiveBaseURL != "http://localhost:9999" {
		t.Errorf("env expansion failed: %q", cfg.ArchiveBaseURL)
	}
	if cfg.PublishHour != 0 {
		t.Errorf("publish_hour = %d", cfg.PublishHour)
	}
	holidays, err := cfg.HolidayTable()
	if err != nil {
		t.Fatal(err)
	}
	want := []calendar.Holiday{{Month: time.January, Day: 26}, {Month: time.December, Day: 25}}
	if len(holidays) != 2 || holidays[0] != want[0] || holidays[1] != want[1] {
		t.Errorf("holidays = %v, want %v", holidays, want)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad start date", func(c *Config) { c.InitialStartDate = "01-01-2019" }},
		{"bad variant", func(c *Config) { c.SchemaVariant = "ohlcv" }},
		{"bad holiday", func(c *Config) { c.Holidays = []string{"13-01"} }},
		{"negative delay", func(c *Config) { c.FetchDelayMs = -1 }},
		{"publish hour out of range", func(c *Config) { c.PublishHour = 24 }},
		{"empty data dir", func(c *Config) { c.DataDir = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := LoadConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestHolidayTableDefaults(t *testing.T) {
	cfg := LoadConfig()
	holidays, err := cfg.HolidayTable()
	if err != nil {
		t.Fatal(err)
	}
	if len(holidays) != len(calendar.DefaultHolidays) {
		t.Errorf("holidays = %v, want defaults", holidays)
	}
}
