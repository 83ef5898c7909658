package saver

import (
	"strings"

	"nse-data/internal/model"
)

// BarSaver persists one symbol's chart bars to a file. The exporter picks
// the implementation; callers only depend on this interface.
type BarSaver interface {
	Save(bars []model.ChartBar, path string) error
	Extension() string
}

// NewBarSaver creates an implementation by format (csv, json, parquet).
// Returns nil if the format is not supported.
func NewBarSaver(format string) BarSaver {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return CSVSaver{}
	case "json":
		return JSONSaver{}
	case "parquet":
		return ParquetSaver{}
	default:
		return nil
	}
}
