package model

// ChartBar is one exported charting row where the delivery percentage is
// rendered as a flat OHLC bar. Shared by the saver implementations
// (csv, json, parquet).
type ChartBar struct {
	Date   string  `json:"date" parquet:"date"` // YYYYMMDDT
	Open   float64 `json:"open" parquet:"open"`
	High   float64 `json:"high" parquet:"high"`
	Low    float64 `json:"low" parquet:"low"`
	Close  float64 `json:"close" parquet:"close"`
	Volume int64   `json:"volume" parquet:"volume"`
}
