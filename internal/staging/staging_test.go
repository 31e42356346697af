package staging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestStagingManager(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "staging-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	mgr := NewManager(tmpDir)

	if mgr.FinalDir() != tmpDir {
		t.Errorf("expected FinalDir %s, got %s", tmpDir, mgr.FinalDir())
	}

	expectedStaging := filepath.Join(tmpDir, ".staging", "2024-01-16")
	if mgr.StagingDir("2024-01-16") != expectedStaging {
		t.Errorf("expected StagingDir %s, got %s", expectedStaging, mgr.StagingDir("2024-01-16"))
	}

	if err := mgr.PrepareStaging("2024-01-16"); err != nil {
		t.Fatalf("PrepareStaging failed: %v", err)
	}
	if _, err := os.Stat(expectedStaging); os.IsNotExist(err) {
		t.Error("staging directory not created")
	}

	data := []byte(`{"ticker": "SPX"}`)
	destPath := mgr.StagedPath("2024-01-16", "SPX", "gex.json")

	size, err := mgr.WriteFile(destPath, data)
	if err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if size != int64(len(data)) {
		t.Errorf("expected size %d, got %d", len(data), size)
	}

	content, err := os.ReadFile(destPath)
	if err != nil {
		t.Fatalf("failed to read staged file: %v", err)
	}
	if string(content) != string(data) {
		t.Errorf("content mismatch: expected %s, got %s", data, content)
	}

	leftovers, _ := filepath.Glob(destPath + ".*.tmp")
	if len(leftovers) != 0 {
		t.Errorf("temp files should not exist after successful write: %v", leftovers)
	}

	if mgr.Exists("2024-01-16", "SPX", "gex.json") {
		t.Error("report should not exist before commit")
	}

	moved, err := mgr.CommitStaging("2024-01-16")
	if err != nil {
		t.Fatalf("CommitStaging failed: %v", err)
	}
	if moved != 1 {
		t.Errorf("expected 1 file moved, got %d", moved)
	}

	finalPath := filepath.Join(tmpDir, "2024-01-16", "SPX", "gex.json")
	if mgr.FinalPath("2024-01-16", "SPX", "gex.json") != finalPath {
		t.Errorf("unexpected FinalPath %s", mgr.FinalPath("2024-01-16", "SPX", "gex.json"))
	}
	if !mgr.Exists("2024-01-16", "SPX", "gex.json") {
		t.Error("file not moved to final directory")
	}

	if err := mgr.CleanupStaging("2024-01-16"); err != nil {
		t.Fatalf("CleanupStaging failed: %v", err)
	}
	if _, err := os.Stat(mgr.StagingDir("2024-01-16")); !os.IsNotExist(err) {
		t.Error("staging directory should be removed after cleanup")
	}
}

func TestCommitStaging_ReplacesExisting(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "staging-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	mgr := NewManager(tmpDir)

	for _, body := range []string{"first", "second"} {
		if _, err := mgr.WriteFile(mgr.StagedPath("2024-01-16", "SPX", "gex.json"), []byte(body)); err != nil {
			t.Fatal(err)
		}
		if _, err := mgr.CommitStaging("2024-01-16"); err != nil {
			t.Fatal(err)
		}
	}

	content, err := os.ReadFile(mgr.FinalPath("2024-01-16", "SPX", "gex.json"))
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "second" {
		t.Errorf("expected latest run to win, got %q", content)
	}
}

func TestWriteFile_ConcurrentSamePath(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "staging-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	mgr := NewManager(tmpDir)
	destPath := mgr.StagedPath("2024-01-16", "SPX", "gex.json")

	payloads := make(map[string]bool)
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		data := fmt.Sprintf(`{"writer": %d}`, i)
		payloads[data] = true
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := mgr.WriteFile(destPath, []byte(data)); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent WriteFile failed: %v", err)
	}

	content, err := os.ReadFile(destPath)
	if err != nil {
		t.Fatal(err)
	}
	if !payloads[string(content)] {
		t.Errorf("file holds a mixed write: %s", content)
	}

	leftovers, _ := filepath.Glob(destPath + ".*.tmp")
	if len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}
}
