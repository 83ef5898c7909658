package main

import (
	"context"
	"flag"
	"log/slog"

	"github.com/google/subcommands"

	"nse-data/internal/app"
	"nse-data/internal/saver"
)

// fetchCmd performs one incremental ETL run and exits.
type fetchCmd struct{}

func (*fetchCmd) Name() string     { return "fetch" }
func (*fetchCmd) Synopsis() string { return "run one incremental bhavcopy fetch" }
func (*fetchCmd) Usage() string {
	return `fetch:
  Fetch all trading dates newer than the watermark, merge them into the
  per-symbol series files and advance the watermark.
`
}
func (*fetchCmd) SetFlags(f *flag.FlagSet) {}

func (*fetchCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a, ok := initApp()
	if !ok {
		return subcommands.ExitFailure
	}
	if _, err := a.Runner.Run(ctx); err != nil {
		slog.Error("run failed", "error", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// daemonCmd runs the ETL on a cron schedule until signalled.
type daemonCmd struct{}

func (*daemonCmd) Name() string     { return "daemon" }
func (*daemonCmd) Synopsis() string { return "run the fetch on a schedule" }
func (*daemonCmd) Usage() string {
	return `daemon:
  Run one fetch immediately, then rerun on the configured cron schedule
  until SIGINT/SIGTERM.
`
}
func (*daemonCmd) SetFlags(f *flag.FlagSet) {}

func (*daemonCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a, ok := initApp()
	if !ok {
		return subcommands.ExitFailure
	}
	if err := app.RunDaemon(a.Runner, a.Config.CronSpec); err != nil {
		slog.Error("daemon failed", "error", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// exportCmd renders the persisted series as chart files.
type exportCmd struct {
	format string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export per-symbol chart files" }
func (*exportCmd) Usage() string {
	return `export [-format csv|json|parquet]:
  Write one flat-OHLC chart file per known symbol plus a symbol-info JSON.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.format, "format", "", "output format, overrides EXPORT_FORMAT")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a, ok := initApp()
	if !ok {
		return subcommands.ExitFailure
	}
	if c.format != "" {
		s := saver.NewBarSaver(c.format)
		if s == nil {
			slog.Error("unsupported format", "format", c.format, "allowed", "csv, json, parquet")
			return subcommands.ExitFailure
		}
		a.Exporter.Saver = s
	}
	if err := a.Exporter.Export(); err != nil {
		slog.Error("export failed", "error", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
