package source

import (
	"math"
	"testing"
	"time"

	"nse-data/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fullTable() *Table {
	return &Table{
		Header: []string{"SYMBOL", " SERIES", " PREV_CLOSE", " OPEN_PRICE", " HIGH_PRICE", " LOW_PRICE", " CLOSE_PRICE", " DELIV_PER"},
		Rows: [][]string{
			{"ABC", " EQ", " 100.00", " 101.00", " 105.00", " 99.00", " 110.00", " 45.50"},
			{"xyz ", " EQ", " 50.00", " 50.00", " 52.00", " 49.00", " 51.00", " -"},
			{"BOND", " GB", " 10.00", " 10.00", " 10.00", " 10.00", " 10.00", " 0.00"},
		},
	}
}

func TestNormalizeFullVariant(t *testing.T) {
	recs := Normalize(day(2024, 1, 2), fullTable(), model.VariantFull, nil)
	if len(recs) != 2 {
		t.Fatalf("records = %d, want 2 (non-EQ filtered)", len(recs))
	}

	abc := recs[0]
	if abc.Symbol != "ABC" {
		t.Errorf("symbol = %q", abc.Symbol)
	}
	if !abc.Date.Equal(day(2024, 1, 2)) {
		t.Errorf("date = %v", abc.Date)
	}
	if abc.DelivPercent != 45.5 {
		t.Errorf("deliv = %v", abc.DelivPercent)
	}
	if abc.ChangePercent != 10 {
		t.Errorf("change pct = %v, want 10", abc.ChangePercent)
	}

	xyz := recs[1]
	if xyz.Symbol != "XYZ" {
		t.Errorf("symbol should be uppercased and trimmed, got %q", xyz.Symbol)
	}
	if !math.IsNaN(xyz.DelivPercent) {
		t.Errorf("dash cell should coerce to NaN, got %v", xyz.DelivPercent)
	}
	if xyz.ChangePercent != 2 {
		t.Errorf("change pct = %v, want 2", xyz.ChangePercent)
	}
}

func TestNormalizeDeliveryVariant(t *testing.T) {
	recs := Normalize(day(2024, 1, 2), fullTable(), model.VariantDelivery, nil)
	if len(recs) != 2 {
		t.Fatalf("records = %d, want 2", len(recs))
	}
	// Price fields stay zero-valued in the minimal variant.
	if recs[0].Close != 0 || recs[0].ChangePercent != 0 {
		t.Errorf("delivery variant populated price fields: %+v", recs[0])
	}
}

func TestNormalizeMissingSeriesColumn(t *testing.T) {
	table := &Table{
		Header: []string{"SYMBOL", "DELIV_PER"},
		Rows:   [][]string{{"ABC", "45.5"}},
	}
	if recs := Normalize(day(2024, 1, 2), table, model.VariantDelivery, nil); recs != nil {
		t.Errorf("missing SERIES should yield no records, got %v", recs)
	}
}

func TestNormalizeMissingPriceColumnFullVariant(t *testing.T) {
	table := &Table{
		Header: []string{"SYMBOL", "SERIES", "DELIV_PER", "CLOSE_PRICE"},
		Rows:   [][]string{{"ABC", "EQ", "45.5", "100"}},
	}
	if recs := Normalize(day(2024, 1, 2), table, model.VariantFull, nil); recs != nil {
		t.Errorf("missing price columns should yield no records for full variant, got %v", recs)
	}
	// The same table is fine for the delivery variant.
	if recs := Normalize(day(2024, 1, 2), table, model.VariantDelivery, nil); len(recs) != 1 {
		t.Errorf("delivery variant records = %v", recs)
	}
}

func TestNormalizeSeriesMatchIsExact(t *testing.T) {
	table := &Table{
		Header: []string{"SYMBOL", "SERIES", "DELIV_PER"},
		Rows: [][]string{
			{"A", " EQ ", "1"},
			{"B", "eq", "2"},
			{"C", "EQX", "3"},
		},
	}
	recs := Normalize(day(2024, 1, 2), table, model.VariantDelivery, nil)
	if len(recs) != 1 || recs[0].Symbol != "A" {
		t.Errorf("only the trimmed exact EQ row should survive, got %v", recs)
	}
}

func TestNormalizeMalformedNumericDoesNotDropRow(t *testing.T) {
	table := &Table{
		Header: []string{"SYMBOL", "SERIES", "PREV_CLOSE", "OPEN_PRICE", "HIGH_PRICE", "LOW_PRICE", "CLOSE_PRICE", "DELIV_PER"},
		Rows: [][]string{
			{"ABC", "EQ", "zero", "101", "105", "99", "110", "bad"},
		},
	}
	recs := Normalize(day(2024, 1, 2), table, model.VariantFull, nil)
	if len(recs) != 1 {
		t.Fatalf("row with malformed cells should survive, got %v", recs)
	}
	r := recs[0]
	if !math.IsNaN(r.PrevClose) || !math.IsNaN(r.DelivPercent) {
		t.Errorf("malformed cells should be NaN: %+v", r)
	}
	if !math.IsNaN(r.ChangePercent) {
		t.Errorf("NaN prev close should propagate to change pct, got %v", r.ChangePercent)
	}
	if r.Open != 101 {
		t.Errorf("well-formed cells should still parse, open = %v", r.Open)
	}
}

func TestNormalizeEmptyTable(t *testing.T) {
	if recs := Normalize(day(2024, 1, 2), nil, model.VariantDelivery, nil); recs != nil {
		t.Errorf("nil table should yield nil, got %v", recs)
	}
}
