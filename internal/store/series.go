package store

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"nse-data/internal/model"
)

// SeriesStore owns the per-symbol CSV files. Each symbol's series is an
// independent file, so per-symbol merges share no state.
type SeriesStore struct {
	dir     string
	variant model.Variant
}

// NewSeriesStore creates a store writing <dir>/<SYMBOL>.csv files with the
// columns of the given schema variant.
func NewSeriesStore(dir string, variant model.Variant) *SeriesStore {
	return &SeriesStore{dir: dir, variant: variant}
}

// Dir returns the series directory.
func (s *SeriesStore) Dir() string { return s.dir }

// FilePath returns the series file for a symbol.
func (s *SeriesStore) FilePath(symbol string) string {
	return filepath.Join(s.dir, symbol+".csv")
}

func (s *SeriesStore) header() []string {
	if s.variant == model.VariantFull {
		return []string{"date", "open", "high", "low", "close", "prev_close", "deliv_per", "change_pct"}
	}
	return []string{"date", "deliv_per"}
}

// Load reads a symbol's persisted series, empty when no file exists.
// Rows whose date cell does not parse are dropped.
func (s *SeriesStore) Load(symbol string) ([]model.TradeRecord, error) {
	f, err := os.Open(s.FilePath(symbol))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open series %s: %w", symbol, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read series %s: %w", symbol, err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}

	records := make([]model.TradeRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		date, err := model.ParseDateKey(row[0])
		if err != nil {
			continue
		}
		rec := model.TradeRecord{Symbol: symbol, Date: date}
		if s.variant == model.VariantFull {
			if len(row) < 8 {
				continue
			}
			rec.Open = model.ParseFloatOrNaN(row[1])
			rec.High = model.ParseFloatOrNaN(row[2])
			rec.Low = model.ParseFloatOrNaN(row[3])
			rec.Close = model.ParseFloatOrNaN(row[4])
			rec.PrevClose = model.ParseFloatOrNaN(row[5])
			rec.DelivPercent = model.ParseFloatOrNaN(row[6])
			rec.ChangePercent = model.ParseFloatOrNaN(row[7])
			if math.IsNaN(rec.ChangePercent) {
				rec.ChangePercent = model.ChangePercent(rec.Close, rec.PrevClose)
			}
		} else {
			if len(row) < 2 {
				continue
			}
			rec.DelivPercent = model.ParseFloatOrNaN(row[1])
		}
		records = append(records, rec)
	}
	return records, nil
}

// Merge folds newly fetched records into a symbol's persisted series:
// existing rows first, then new ones, deduplicated by date with the new
// record winning, sorted ascending, rewritten in full atomically. Running
// the same merge twice yields the same file.
func (s *SeriesStore) Merge(symbol string, newRecords []model.TradeRecord) error {
	if len(newRecords) == 0 {
		return nil
	}
	existing, err := s.Load(symbol)
	if err != nil {
		return err
	}

	byDate := make(map[string]model.TradeRecord, len(existing)+len(newRecords))
	for _, rec := range existing {
		byDate[model.DateKey(rec.Date)] = rec
	}
	for _, rec := range newRecords {
		byDate[model.DateKey(rec.Date)] = rec
	}

	merged := make([]model.TradeRecord, 0, len(byDate))
	for _, rec := range byDate {
		merged = append(merged, rec)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Date.Before(merged[j].Date) })

	return s.write(symbol, merged)
}

func (s *SeriesStore) write(symbol string, records []model.TradeRecord) error {
	var b strings.Builder
	w := csv.NewWriter(&b)
	if err := w.Write(s.header()); err != nil {
		return err
	}
	for _, rec := range records {
		var row []string
		if s.variant == model.VariantFull {
			row = []string{
				model.DateKey(rec.Date),
				floatCell(rec.Open),
				floatCell(rec.High),
				floatCell(rec.Low),
				floatCell(rec.Close),
				floatCell(rec.PrevClose),
				floatCell(rec.DelivPercent),
				floatCell(rec.ChangePercent),
			}
		} else {
			row = []string{model.DateKey(rec.Date), floatCell(rec.DelivPercent)}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	if err := writeFileAtomic(s.FilePath(symbol), []byte(b.String())); err != nil {
		return fmt.Errorf("write series %s: %w", symbol, err)
	}
	return nil
}

// floatCell serializes a numeric field; NaN becomes an empty cell and
// parses back to NaN on load.
func floatCell(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
