package app

import (
	"fmt"
	"os"

	"nse-data/internal/etl"
	"nse-data/internal/export"
	"nse-data/internal/saver"
	"nse-data/internal/slogx"
	"nse-data/internal/source"
	"nse-data/internal/store"
)

// ProvideConfig loads config from the environment, overlays the optional
// CONFIG_FILE, and validates (for Wire).
func ProvideConfig() (*Config, error) {
	cfg := LoadConfig()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.LoadConfigFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ProvideClient creates the archive client from config (for Wire).
func ProvideClient(cfg *Config) *source.Client {
	return source.NewClient(cfg.ArchiveBaseURL, cfg.Timeout())
}

// ProvideSeriesStore creates the per-symbol series store; creating the
// directory here keeps "cannot create output directory" a startup error.
func ProvideSeriesStore(cfg *Config) (*store.SeriesStore, error) {
	if err := os.MkdirAll(cfg.SeriesDir(), 0o755); err != nil {
		return nil, fmt.Errorf("create series dir: %w", err)
	}
	return store.NewSeriesStore(cfg.SeriesDir(), cfg.Variant()), nil
}

// ProvideManifestStore creates the manifest store (for Wire).
func ProvideManifestStore(cfg *Config) *store.ManifestStore {
	return store.NewManifestStore(cfg.ManifestPath(), slogx.NewDefault(cfg.LogLevel))
}

// ProvideRunner wires the ETL runner from config and stores (for Wire).
func ProvideRunner(cfg *Config, client *source.Client, series *store.SeriesStore, manifest *store.ManifestStore) (*etl.Runner, error) {
	holidays, err := cfg.HolidayTable()
	if err != nil {
		return nil, err
	}
	return &etl.Runner{
		Client:       client,
		Series:       series,
		Manifest:     manifest,
		Variant:      cfg.Variant(),
		InitialStart: cfg.InitialStart(),
		Holidays:     holidays,
		FetchDelay:   cfg.FetchDelay(),
		PublishHour:  cfg.PublishHour,
		MergeWorkers: cfg.MergeWorkers,
		ReportDir:    cfg.SeriesDir(),
		Logger:       slogx.NewDefault(cfg.LogLevel),
	}, nil
}

// ProvideBarSaver creates the chart bar saver from config (for Wire).
// Returns an error if ExportFormat is not supported.
func ProvideBarSaver(cfg *Config) (saver.BarSaver, error) {
	s := saver.NewBarSaver(cfg.ExportFormat)
	if s == nil {
		return nil, fmt.Errorf("unsupported EXPORT_FORMAT %q (use: csv, json, parquet)", cfg.ExportFormat)
	}
	return s, nil
}

// ProvideExporter wires the chart exporter (for Wire).
func ProvideExporter(cfg *Config, series *store.SeriesStore, manifest *store.ManifestStore, bs saver.BarSaver) *export.ChartExporter {
	return &export.ChartExporter{
		Series:   series,
		Manifest: manifest,
		Saver:    bs,
		Dir:      cfg.ChartDir(),
		Logger:   slogx.NewDefault(cfg.LogLevel),
	}
}
