//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"nse-data/internal/app"
)

// InitializeApp builds App (config, runner, exporter) via Wire.
func InitializeApp() (*App, error) {
	wire.Build(
		app.ProvideConfig,
		app.ProvideClient,
		app.ProvideSeriesStore,
		app.ProvideManifestStore,
		app.ProvideRunner,
		app.ProvideBarSaver,
		app.ProvideExporter,
		wire.Struct(new(App), "Config", "Runner", "Exporter"),
	)
	return nil, nil
}
