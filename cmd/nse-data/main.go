package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/google/subcommands"
	"github.com/joho/godotenv"

	"nse-data/internal/app"
	"nse-data/internal/etl"
	"nse-data/internal/export"
	"nse-data/internal/slogx"
)

// App holds application dependencies built by Wire.
type App struct {
	Config   *app.Config
	Runner   *etl.Runner
	Exporter *export.ChartExporter
}

func init() {
	slog.SetDefault(slogx.NewDefault("info"))
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, relying on environment variables")
	}
}

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&fetchCmd{}, "")
	subcommands.Register(&daemonCmd{}, "")
	subcommands.Register(&exportCmd{}, "")

	flag.Parse()
	os.Exit(int(subcommands.Execute(context.Background())))
}

// initApp builds the app via Wire and installs the configured log level.
func initApp() (*App, bool) {
	a, err := InitializeApp()
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return nil, false
	}
	slog.SetDefault(slogx.NewDefault(a.Config.LogLevel))
	return a, true
}
