// Package export renders persisted symbol series as flat OHLC chart files
// for charting frontends: each bar's open/high/low/close is the delivery
// percentage, volume is zero.
package export

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"nse-data/internal/model"
	"nse-data/internal/saver"
	"nse-data/internal/store"
)

// ChartExporter turns symbol series into chart bar files in Dir, one file
// per symbol, plus a symbol-info JSON listing what was exported.
type ChartExporter struct {
	Series   *store.SeriesStore
	Manifest *store.ManifestStore
	Saver    saver.BarSaver
	Dir      string
	Logger   *slog.Logger
}

type symbolInfo struct {
	Symbols     []string `json:"symbol"`
	PriceScale  int      `json:"pricescale"`
	Description []string `json:"description"`
}

// Export writes one chart file for every known symbol. Per-symbol
// failures are logged and counted, never fatal; the returned error covers
// only the inability to produce any output at all.
func (e *ChartExporter) Export() error {
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if e.Saver == nil {
		return fmt.Errorf("no bar saver configured")
	}
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return fmt.Errorf("create chart dir: %w", err)
	}

	symbols := e.symbols()
	if len(symbols) == 0 {
		logger.Warn("no symbols to export")
		return nil
	}

	var exported []string
	var failed int
	for _, symbol := range symbols {
		if err := e.exportSymbol(symbol); err != nil {
			logger.Error("chart export failed", "symbol", symbol, "error", err)
			failed++
			continue
		}
		exported = append(exported, symbol)
	}
	logger.Info("chart export done", "exported", len(exported), "failed", failed, "format", e.Saver.Extension())

	info := symbolInfo{Symbols: exported, PriceScale: 2, Description: exported}
	data, err := json.MarshalIndent(&info, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal symbol info: %w", err)
	}
	if err := os.WriteFile(filepath.Join(e.Dir, "0_symbolInfo.json"), data, 0o644); err != nil {
		return fmt.Errorf("write symbol info: %w", err)
	}
	return nil
}

func (e *ChartExporter) exportSymbol(symbol string) error {
	records, err := e.Series.Load(symbol)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("series empty")
	}

	bars := make([]model.ChartBar, 0, len(records))
	for _, rec := range records {
		v := rec.DelivPercent
		if math.IsNaN(v) {
			v = 0
		}
		bars = append(bars, model.ChartBar{
			Date: rec.Date.Format("20060102") + "T",
			Open: v, High: v, Low: v, Close: v,
			Volume: 0,
		})
	}
	path := filepath.Join(e.Dir, symbol+"."+e.Saver.Extension())
	return e.Saver.Save(bars, path)
}

// symbols lists what to export: the manifest's symbol set, falling back
// to scanning the series directory when no manifest exists.
func (e *ChartExporter) symbols() []string {
	if e.Manifest != nil {
		if m := e.Manifest.Load(); len(m.Symbols) > 0 {
			return m.Symbols
		}
	}
	entries, err := os.ReadDir(e.Series.Dir())
	if err != nil {
		return nil
	}
	var symbols []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".csv") || strings.HasPrefix(name, "0_") || strings.HasPrefix(name, ".") {
			continue
		}
		symbols = append(symbols, strings.TrimSuffix(name, ".csv"))
	}
	sort.Strings(symbols)
	return symbols
}
