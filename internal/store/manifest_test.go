package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func manifestPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), ManifestName)
}

func TestManifestLoadAbsent(t *testing.T) {
	s := NewManifestStore(manifestPath(t), nil)
	m := s.Load()
	if len(m.Symbols) != 0 {
		t.Errorf("symbols = %v, want none", m.Symbols)
	}
	if _, ok := m.LastDate(); ok {
		t.Error("absent manifest should have no watermark")
	}
	if m.PriceScale != 2 {
		t.Errorf("pricescale = %d, want 2", m.PriceScale)
	}
}

func TestManifestLoadMalformed(t *testing.T) {
	path := manifestPath(t)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	m := NewManifestStore(path, nil).Load()
	if _, ok := m.LastDate(); ok || len(m.Symbols) != 0 {
		t.Errorf("malformed manifest should degrade to empty, got %+v", m)
	}
}

func TestManifestCommitRoundTrip(t *testing.T) {
	path := manifestPath(t)
	s := NewManifestStore(path, nil)

	last := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	if err := s.Commit([]string{"XYZ", "ABC"}, last); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	m := s.Load()
	if !reflect.DeepEqual(m.Symbols, []string{"ABC", "XYZ"}) {
		t.Errorf("symbols = %v, want sorted [ABC XYZ]", m.Symbols)
	}
	got, ok := m.LastDate()
	if !ok || !got.Equal(last) {
		t.Errorf("watermark = %v (%v), want %v", got, ok, last)
	}

	// Second commit unions symbols and advances the watermark.
	next := last.AddDate(0, 0, 3)
	if err := s.Commit([]string{"DEF", "ABC"}, next); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	m = s.Load()
	if !reflect.DeepEqual(m.Symbols, []string{"ABC", "DEF", "XYZ"}) {
		t.Errorf("symbols = %v", m.Symbols)
	}
	got, _ = m.LastDate()
	if !got.Equal(next) {
		t.Errorf("watermark = %v, want %v", got, next)
	}
}

func TestManifestFileShape(t *testing.T) {
	path := manifestPath(t)
	s := NewManifestStore(path, nil)
	if err := s.Commit([]string{"ABC"}, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("manifest is not valid JSON: %v", err)
	}
	if raw["LastDateScanned"] != "2024-01-05" {
		t.Errorf("LastDateScanned = %v", raw["LastDateScanned"])
	}
	if raw["pricescale"] != float64(2) {
		t.Errorf("pricescale = %v", raw["pricescale"])
	}
	if _, ok := raw["symbols"]; !ok {
		t.Error("symbols key missing")
	}
}

func TestManifestNoTempFileLeftBehind(t *testing.T) {
	dir := t.TempDir()
	s := NewManifestStore(filepath.Join(dir, ManifestName), nil)
	if err := s.Commit([]string{"ABC"}, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != ManifestName {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("unexpected files in dir: %v", names)
	}
}
