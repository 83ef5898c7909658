package etl

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// writeRunReport persists operator-facing summaries of the last run:
// merged symbols to .lastrun.success.json, failures (dates and symbols)
// to .lastrun.failed.json. Stale failure files from prior runs are
// removed so the failed report always describes the latest run.
func writeRunReport(dir string, report *Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	successPath := filepath.Join(dir, ".lastrun.success.json")
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(successPath, data, 0o644); err != nil {
		return err
	}

	failedPath := filepath.Join(dir, ".lastrun.failed.json")
	if len(report.FailedDates) == 0 && len(report.FailedMerges) == 0 {
		if err := os.Remove(failedPath); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}
	failed := struct {
		RunID        string        `json:"run_id"`
		FailedDates  []FailedDate  `json:"failed_dates,omitempty"`
		FailedMerges []FailedMerge `json:"failed_merges,omitempty"`
	}{report.RunID, report.FailedDates, report.FailedMerges}
	data, err = json.MarshalIndent(&failed, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(failedPath, data, 0o644)
}

// joinFailedReasons compacts date failures into one log line, truncating
// long lists.
func joinFailedReasons(failed []FailedDate) string {
	if len(failed) == 0 {
		return ""
	}
	var b strings.Builder
	for i, f := range failed {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(f.Date)
		b.WriteString(": ")
		b.WriteString(f.Reason)
		if i >= 4 && len(failed) > 6 {
			fmt.Fprintf(&b, " (+%d more)", len(failed)-5)
			break
		}
	}
	return b.String()
}
