package saver

import (
	"github.com/parquet-go/parquet-go"

	"nse-data/internal/model"
)

// ParquetSaver writes chart bars as a parquet file.
type ParquetSaver struct{}

func (ParquetSaver) Extension() string { return "parquet" }

func (ParquetSaver) Save(bars []model.ChartBar, path string) error {
	return parquet.WriteFile(path, bars)
}
