package chain

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDirectory(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "directory-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	writeFile(t, filepath.Join(tmpDir, "2024-01-16", "SPX.json"), sampleDocument)
	writeFile(t, filepath.Join(tmpDir, "2024-01-16", "ndx.json.zst"), "")
	writeFile(t, filepath.Join(tmpDir, "2024-01-17", "SPX.json.gz"), "")
	writeFile(t, filepath.Join(tmpDir, "2024-01-17", "notes.txt"), "ignored")
	writeFile(t, filepath.Join(tmpDir, "scratch", "SPX.json"), "ignored")
	writeFile(t, filepath.Join(tmpDir, ".staging", "2024-01-18", "SPX.json"), "ignored")

	dir := NewDirectory(tmpDir, nil)

	dates, err := dir.Dates()
	if err != nil {
		t.Fatalf("Dates failed: %v", err)
	}
	if len(dates) != 2 || dates[0] != "2024-01-16" || dates[1] != "2024-01-17" {
		t.Errorf("unexpected dates %v", dates)
	}

	latest, err := dir.Latest()
	if err != nil {
		t.Fatal(err)
	}
	if latest != "2024-01-17" {
		t.Errorf("expected latest 2024-01-17, got %s", latest)
	}

	files, err := dir.Files("2024-01-16")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 || files[0].Ticker != "NDX" || files[1].Ticker != "SPX" {
		t.Errorf("unexpected files %+v", files)
	}

	f, err := dir.Lookup("2024-01-16", "spx")
	if err != nil {
		t.Fatal(err)
	}
	if f.Path != filepath.Join(tmpDir, "2024-01-16", "SPX.json") {
		t.Errorf("unexpected path %s", f.Path)
	}

	if _, err := dir.Files("2024-01-20"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := dir.Lookup("2024-01-17", "NDX"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDirectory_Refresh(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "directory-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	dir := NewDirectory(tmpDir, nil)
	if _, err := dir.Latest(); !errors.Is(err, ErrNoSnapshots) {
		t.Fatalf("expected ErrNoSnapshots on empty root, got %v", err)
	}

	writeFile(t, filepath.Join(tmpDir, "2024-01-19", "SPX.json"), sampleDocument)

	// Index is cached until refreshed
	if _, err := dir.Latest(); !errors.Is(err, ErrNoSnapshots) {
		t.Errorf("expected cached empty index, got %v", err)
	}
	if err := dir.Refresh(); err != nil {
		t.Fatal(err)
	}
	latest, err := dir.Latest()
	if err != nil {
		t.Fatal(err)
	}
	if latest != "2024-01-19" {
		t.Errorf("expected 2024-01-19 after refresh, got %s", latest)
	}
}

func TestDirectory_MissingRoot(t *testing.T) {
	dir := NewDirectory(filepath.Join(os.TempDir(), "does-not-exist-gexcalc"), nil)
	if _, err := dir.Dates(); err == nil {
		t.Error("expected error for missing root")
	}
}

func TestTickerFromName(t *testing.T) {
	tests := map[string]string{
		"SPX.json":     "SPX",
		"spx.json.gz":  "SPX",
		"Ndx.json.zst": "NDX",
	}
	for in, want := range tests {
		got, ok := tickerFromName(in)
		if !ok || got != want {
			t.Errorf("%s: expected %s, got %s (ok=%v)", in, want, got, ok)
		}
	}
	for _, in := range []string{"SPX.csv", ".json", "SPX.gz"} {
		if _, ok := tickerFromName(in); ok {
			t.Errorf("%s: expected no ticker", in)
		}
	}
}

func TestDirectory_DuplicateEncodings(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "directory-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	writeFile(t, filepath.Join(tmpDir, "2024-01-16", "SPX.json.zst"), "")
	writeFile(t, filepath.Join(tmpDir, "2024-01-16", "SPX.json.gz"), "")
	writeFile(t, filepath.Join(tmpDir, "2024-01-16", "spx.json"), sampleDocument)
	writeFile(t, filepath.Join(tmpDir, "2024-01-16", "NDX.json.zst"), "")
	writeFile(t, filepath.Join(tmpDir, "2024-01-16", "NDX.json.gz"), "")

	files, err := NewDirectory(tmpDir, nil).Files("2024-01-16")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("expected one file per ticker, got %+v", files)
	}
	if files[0].Ticker != "NDX" || filepath.Base(files[0].Path) != "NDX.json.gz" {
		t.Errorf("expected gzip to win over zstd, got %+v", files[0])
	}
	if files[1].Ticker != "SPX" || filepath.Base(files[1].Path) != "spx.json" {
		t.Errorf("expected plain json to win, got %+v", files[1])
	}
}
