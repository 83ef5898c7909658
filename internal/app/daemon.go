package app

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"sync"
	"syscall"

	"github.com/robfig/cron/v3"

	"nse-data/internal/etl"
)

// RunDaemon runs one ETL pass immediately, then reruns on the cron
// schedule until SIGINT/SIGTERM. A trigger that fires while the previous
// run is still fetching is skipped, not queued.
func RunDaemon(runner *etl.Runner, spec string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var mu sync.Mutex
	run := func() {
		if !mu.TryLock() {
			slog.Warn("previous run still in progress, skipping trigger")
			return
		}
		defer mu.Unlock()
		if _, err := runner.Run(ctx); err != nil {
			slog.Error("run failed", "error", err)
		}
	}

	cr := cron.New()
	if _, err := cr.AddFunc(spec, run); err != nil {
		return fmt.Errorf("cron spec %q: %w", spec, err)
	}

	run()
	cr.Start()
	slog.Info("daemon scheduled", "cron", spec)

	<-ctx.Done()
	slog.Info("received signal, graceful shutdown")
	<-cr.Stop().Done()
	return nil
}
