// Package store owns the on-disk state of the ETL: the per-symbol series
// files and the manifest recording known symbols and the watermark.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"nse-data/internal/model"
)

// ManifestName is the manifest file name inside the series directory.
const ManifestName = "0_symbolInfo.json"

// Manifest is the process-wide persisted state: the symbols seen so far
// and the last trading date a run scanned.
type Manifest struct {
	Symbols         []string `json:"symbols"`
	PriceScale      int      `json:"pricescale"`
	LastDateScanned string   `json:"LastDateScanned,omitempty"` // YYYY-MM-DD
}

// LastDate parses the watermark. ok is false when no prior run exists or
// the stored value is unreadable.
func (m *Manifest) LastDate() (time.Time, bool) {
	if m.LastDateScanned == "" {
		return time.Time{}, false
	}
	d, err := model.ParseISODate(m.LastDateScanned)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// ManifestStore reads and rewrites the manifest file. It is the sole
// writer of that file.
type ManifestStore struct {
	path   string
	logger *slog.Logger
}

// NewManifestStore creates a store for the manifest at path.
func NewManifestStore(path string, logger *slog.Logger) *ManifestStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &ManifestStore{path: path, logger: logger}
}

// Path returns the manifest file path.
func (s *ManifestStore) Path() string { return s.path }

// Load reads the manifest. An absent file means "no prior run" and a
// malformed file degrades to the same, with a warning; neither is an error.
func (s *ManifestStore) Load() *Manifest {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("manifest unreadable, starting fresh", "path", s.path, "error", err)
		}
		return &Manifest{PriceScale: 2}
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		s.logger.Warn("manifest malformed, starting fresh", "path", s.path, "error", err)
		return &Manifest{PriceScale: 2}
	}
	if m.PriceScale == 0 {
		m.PriceScale = 2
	}
	return &m
}

// Commit rewrites the manifest atomically with the union of previously
// known symbols and this run's symbols, and the new watermark. Called at
// most once per run, after all merges.
func (s *ManifestStore) Commit(symbols []string, lastDate time.Time) error {
	prev := s.Load()

	seen := make(map[string]bool, len(prev.Symbols)+len(symbols))
	for _, sym := range prev.Symbols {
		seen[sym] = true
	}
	for _, sym := range symbols {
		seen[sym] = true
	}
	all := make([]string, 0, len(seen))
	for sym := range seen {
		all = append(all, sym)
	}
	sort.Strings(all)

	m := Manifest{
		Symbols:         all,
		PriceScale:      prev.PriceScale,
		LastDateScanned: model.ISODate(lastDate),
	}
	data, err := json.MarshalIndent(&m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := writeFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it over path, so readers never observe a partial file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
