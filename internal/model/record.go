package model

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Variant selects which fields of the bhavcopy a run extracts and persists.
type Variant string

const (
	// VariantDelivery keeps only symbol, trade date and delivery percentage.
	VariantDelivery Variant = "delivery"
	// VariantFull additionally keeps the price columns and the derived
	// change percentage.
	VariantFull Variant = "full"
)

// ParseVariant converts a config string to a Variant. Unknown → "".
func ParseVariant(s string) Variant {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "delivery", "":
		return VariantDelivery
	case "full":
		return VariantFull
	default:
		return ""
	}
}

// TradeRecord is one equity row after normalization. Numeric fields use
// NaN for "absent or malformed"; a record never fails to exist because a
// single cell could not be parsed.
type TradeRecord struct {
	Symbol        string
	Date          time.Time
	DelivPercent  float64
	PrevClose     float64
	Open          float64
	High          float64
	Low           float64
	Close         float64
	ChangePercent float64
}

// ParseFloatOrNaN coerces a source cell to float64. Empty, "-" and
// malformed values degrade to NaN, never to an error.
func ParseFloatOrNaN(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// Round2 rounds half away from zero to 2 decimals. Every change-percent
// computation goes through this so fetch-path and merge-path values agree.
func Round2(f float64) float64 {
	if math.IsNaN(f) {
		return f
	}
	return math.Round(f*100) / 100
}

// ChangePercent derives (close-prevClose)/prevClose*100 rounded to 2
// decimals. NaN inputs or a zero prevClose yield NaN.
func ChangePercent(close, prevClose float64) float64 {
	if math.IsNaN(close) || math.IsNaN(prevClose) || prevClose == 0 {
		return math.NaN()
	}
	return Round2((close - prevClose) / prevClose * 100)
}

// Day normalizes t to midnight UTC. Trade dates compare by calendar day only.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DateKey formats a trade date as DDMMYYYY, the form used in request URLs
// and in persisted series files.
func DateKey(t time.Time) string {
	return t.Format("02012006")
}

// ParseDateKey parses a DDMMYYYY date key.
func ParseDateKey(s string) (time.Time, error) {
	return time.ParseInLocation("02012006", strings.TrimSpace(s), time.UTC)
}

// ISODate formats a trade date as YYYY-MM-DD (manifest form).
func ISODate(t time.Time) string {
	return t.Format("2006-01-02")
}

// ParseISODate parses a YYYY-MM-DD date.
func ParseISODate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", strings.TrimSpace(s), time.UTC)
}
