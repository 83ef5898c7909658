package source

import (
	"log/slog"
	"strings"
	"time"

	"nse-data/internal/model"
)

// Bhavcopy column names, as published (header cells may carry whitespace).
const (
	colSymbol    = "SYMBOL"
	colSeries    = "SERIES"
	colDelivPer  = "DELIV_PER"
	colPrevClose = "PREV_CLOSE"
	colOpen      = "OPEN_PRICE"
	colHigh      = "HIGH_PRICE"
	colLow       = "LOW_PRICE"
	colClose     = "CLOSE_PRICE"
)

// equitySeries is the series marker kept by normalization; the match is
// exact and case-sensitive after trimming.
const equitySeries = "EQ"

// priceColumns must all be present for the full variant to use a date.
var priceColumns = []string{colPrevClose, colOpen, colHigh, colLow, colClose}

// Normalize filters a raw bhavcopy to equity rows and projects them to
// TradeRecords for the given date and schema variant. A missing SERIES
// column, or (for the full variant) any missing price column, makes the
// whole date contribute zero records; malformed numeric cells degrade to
// NaN without dropping the row.
func Normalize(date time.Time, table *Table, variant model.Variant, logger *slog.Logger) []model.TradeRecord {
	if table == nil || len(table.Rows) == 0 {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}

	cols := indexColumns(table.Header)
	seriesIdx, ok := cols[colSeries]
	if !ok {
		logger.Warn("series column missing, skipping date", "date", model.ISODate(date))
		return nil
	}
	symbolIdx, ok := cols[colSymbol]
	if !ok {
		logger.Warn("symbol column missing, skipping date", "date", model.ISODate(date))
		return nil
	}

	if variant == model.VariantFull {
		for _, name := range priceColumns {
			if _, ok := cols[name]; !ok {
				logger.Warn("price column missing, skipping date", "date", model.ISODate(date), "column", name)
				return nil
			}
		}
	}

	day := model.Day(date)
	var records []model.TradeRecord
	for _, row := range table.Rows {
		if strings.TrimSpace(row[seriesIdx]) != equitySeries {
			continue
		}
		symbol := strings.ToUpper(strings.TrimSpace(row[symbolIdx]))
		if symbol == "" {
			continue
		}

		rec := model.TradeRecord{
			Symbol:       symbol,
			Date:         day,
			DelivPercent: model.ParseFloatOrNaN(cell(row, cols, colDelivPer)),
		}
		if variant == model.VariantFull {
			rec.PrevClose = model.ParseFloatOrNaN(cell(row, cols, colPrevClose))
			rec.Open = model.ParseFloatOrNaN(cell(row, cols, colOpen))
			rec.High = model.ParseFloatOrNaN(cell(row, cols, colHigh))
			rec.Low = model.ParseFloatOrNaN(cell(row, cols, colLow))
			rec.Close = model.ParseFloatOrNaN(cell(row, cols, colClose))
			rec.ChangePercent = model.ChangePercent(rec.Close, rec.PrevClose)
		}
		records = append(records, rec)
	}
	return records
}

// indexColumns maps trimmed header names to their positions.
func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	return cols
}

// cell returns the named column's value for a row, "" when absent.
func cell(row []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}
