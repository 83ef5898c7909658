// Package etl drives one incremental fetch run: window from the
// watermark, per-date fetch and normalize, per-symbol merge, watermark
// commit.
package etl

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"nse-data/internal/calendar"
	"nse-data/internal/model"
	"nse-data/internal/source"
	"nse-data/internal/store"
)

// Runner executes one run of the bhavcopy ETL. It owns the in-memory
// accumulation of the run's records; the stores own everything on disk.
type Runner struct {
	Client   *source.Client
	Series   *store.SeriesStore
	Manifest *store.ManifestStore

	Variant      model.Variant
	InitialStart time.Time
	Holidays     []calendar.Holiday
	FetchDelay   time.Duration // pause between outbound requests
	PublishHour  int           // before this local hour, today is excluded (0 = off)
	MergeWorkers int
	ReportDir    string // "" disables run reports

	Logger *slog.Logger
	Now    func() time.Time // defaults to time.Now
}

// Report summarizes one run.
type Report struct {
	RunID          string        `json:"run_id"`
	WindowStart    string        `json:"window_start,omitempty"`
	WindowEnd      string        `json:"window_end,omitempty"`
	DatesAttempted int           `json:"dates_attempted"`
	DatesWithData  int           `json:"dates_with_data"`
	DatesNoData    int           `json:"dates_no_data"`
	Records        int           `json:"records"`
	MergedSymbols  []string      `json:"merged_symbols,omitempty"`
	FailedDates    []FailedDate  `json:"failed_dates,omitempty"`
	FailedMerges   []FailedMerge `json:"failed_merges,omitempty"`
}

// FailedDate records a transport-level fetch failure for one date.
type FailedDate struct {
	Date   string `json:"date"`
	Reason string `json:"reason"`
}

// FailedMerge records an isolated per-symbol merge failure.
type FailedMerge struct {
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Run performs one pass: INIT, DETERMINE_WINDOW, FETCH_LOOP, AGGREGATE,
// MERGE_ALL_SYMBOLS, COMMIT_WATERMARK. Per-date and per-symbol failures
// are isolated; only a watermark commit failure is returned as an error.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	runID := uuid.NewString()
	logger := r.logger().With("run_id", runID[:8])
	report := &Report{RunID: runID}

	dates := r.determineWindow(logger)
	if len(dates) == 0 {
		logger.Info("window empty, nothing to fetch")
		return report, nil
	}
	report.WindowStart = model.ISODate(dates[0])
	report.WindowEnd = model.ISODate(dates[len(dates)-1])
	logger.Info("fetch window",
		"from", report.WindowStart, "to", report.WindowEnd, "dates", len(dates))

	records := r.fetchLoop(ctx, dates, report, logger)
	report.Records = len(records)

	groups, order := groupBySymbol(records)
	r.mergeAll(groups, order, report, logger)

	if report.DatesAttempted == 0 {
		logger.Warn("no dates attempted, leaving manifest untouched")
		return report, ctx.Err()
	}

	// The watermark advances past every attempted date, including dates
	// that returned no data or failed at the transport level; a stuck
	// date would otherwise be retried forever.
	last := dates[report.DatesAttempted-1]
	if err := r.Manifest.Commit(report.MergedSymbols, last); err != nil {
		logger.Error("watermark commit failed", "error", err)
		return report, err
	}
	logger.Info("run done",
		"dates", report.DatesAttempted,
		"with_data", report.DatesWithData,
		"no_data", report.DatesNoData,
		"failed", len(report.FailedDates),
		"records", report.Records,
		"symbols", len(report.MergedSymbols),
		"watermark", model.ISODate(last))
	if len(report.FailedDates) > 0 {
		logger.Warn("dates skipped on transport errors, rerun with an earlier start to recover",
			"count", len(report.FailedDates), "reasons", joinFailedReasons(report.FailedDates))
	}

	if r.ReportDir != "" {
		if err := writeRunReport(r.ReportDir, report); err != nil {
			logger.Warn("could not write run report", "error", err)
		}
	}
	return report, nil
}

// determineWindow computes the eligible trading dates for this run:
// watermark+1 (or the configured initial start) through today, clamped to
// yesterday when today's file is not yet published.
func (r *Runner) determineWindow(logger *slog.Logger) []time.Time {
	now := r.now()
	end := model.Day(now)
	if r.PublishHour > 0 && now.Hour() < r.PublishHour {
		end = end.AddDate(0, 0, -1)
	}

	start := model.Day(r.InitialStart)
	m := r.Manifest.Load()
	if last, ok := m.LastDate(); ok {
		start = last.AddDate(0, 0, 1)
		logger.Info("resuming from watermark", "last_scanned", model.ISODate(last))
	} else {
		logger.Info("no prior state, performing initial fetch", "start", model.ISODate(start))
	}

	holidays := r.Holidays
	if holidays == nil {
		holidays = calendar.DefaultHolidays
	}
	return calendar.ValidDates(start, end, holidays)
}

// fetchLoop fetches and normalizes each date, returning the accumulated
// records. A per-date failure never halts the loop; context cancellation
// does, and only the dates attempted so far count toward the watermark.
func (r *Runner) fetchLoop(ctx context.Context, dates []time.Time, report *Report, logger *slog.Logger) []model.TradeRecord {
	var records []model.TradeRecord
	for i, date := range dates {
		if i > 0 && r.FetchDelay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(r.FetchDelay):
			}
		}
		if ctx.Err() != nil {
			logger.Warn("run cancelled", "fetched", i, "of", len(dates))
			break
		}
		report.DatesAttempted++

		day := model.ISODate(date)
		table, err := r.Client.Fetch(ctx, date)
		if err != nil {
			logger.Error("fetch failed", "date", day, "error", err)
			report.FailedDates = append(report.FailedDates, FailedDate{Date: day, Reason: err.Error()})
			continue
		}
		if table == nil {
			logger.Info("no data", "date", day)
			report.DatesNoData++
			continue
		}

		recs := source.Normalize(date, table, r.Variant, logger)
		if len(recs) == 0 {
			// Usable response but nothing survived normalization; the
			// date is still consumed.
			logger.Warn("no equity records", "date", day)
			report.DatesNoData++
			continue
		}
		report.DatesWithData++
		records = append(records, recs...)
		logger.Info("fetched", "date", day, "records", len(recs))
	}
	return records
}

// groupBySymbol splits the accumulated records per symbol, preserving
// fetch order inside each group so later dates stay last (merge is
// last-write-wins).
func groupBySymbol(records []model.TradeRecord) (map[string][]model.TradeRecord, []string) {
	groups := make(map[string][]model.TradeRecord)
	var order []string
	for _, rec := range records {
		if _, ok := groups[rec.Symbol]; !ok {
			order = append(order, rec.Symbol)
		}
		groups[rec.Symbol] = append(groups[rec.Symbol], rec)
	}
	return groups, order
}

type mergeResult struct {
	symbol string
	err    error
}

// mergeAll merges each symbol group through a bounded worker pool.
// Symbols share no on-disk state, so merges run independently; one
// symbol's write failure never blocks the rest.
func (r *Runner) mergeAll(groups map[string][]model.TradeRecord, order []string, report *Report, logger *slog.Logger) {
	if len(order) == 0 {
		return
	}
	workers := r.MergeWorkers
	if workers < 1 {
		workers = 1
	}
	if workers > len(order) {
		workers = len(order)
	}

	pending := make(chan string, len(order))
	for _, symbol := range order {
		pending <- symbol
	}
	close(pending)

	results := make(chan mergeResult, len(order))
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for symbol := range pending {
				results <- mergeResult{symbol: symbol, err: r.Series.Merge(symbol, groups[symbol])}
			}
		}()
	}
	wg.Wait()
	close(results)

	for res := range results {
		if res.err != nil {
			logger.Error("merge failed", "symbol", res.symbol, "error", res.err)
			report.FailedMerges = append(report.FailedMerges, FailedMerge{Symbol: res.symbol, Reason: res.err.Error()})
			continue
		}
		report.MergedSymbols = append(report.MergedSymbols, res.symbol)
	}
	sort.Strings(report.MergedSymbols)
}
