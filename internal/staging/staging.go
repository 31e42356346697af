package staging

import (
	"fmt"
	"os"
	"path/filepath"
)

// Manager stages report files under {base}/.staging/{date} and moves them
// into {base}/{date} once a run has finished.
type Manager struct {
	baseDir     string
	stagingRoot string
}

func NewManager(baseDir string) *Manager {
	return &Manager{
		baseDir:     baseDir,
		stagingRoot: filepath.Join(baseDir, ".staging"),
	}
}

func (m *Manager) FinalDir() string {
	return m.baseDir
}

func (m *Manager) StagingRoot() string {
	return m.stagingRoot
}

func (m *Manager) StagingDir(date string) string {
	return filepath.Join(m.stagingRoot, date)
}

// StagedPath is where the report for ticker on date is staged.
func (m *Manager) StagedPath(date, ticker, filename string) string {
	return filepath.Join(m.StagingDir(date), ticker, filename)
}

// FinalPath is where the report for ticker on date ends up after commit.
func (m *Manager) FinalPath(date, ticker, filename string) string {
	return filepath.Join(m.baseDir, date, ticker, filename)
}

func (m *Manager) PrepareStaging(date string) error {
	dir := m.StagingDir(date)
	return os.MkdirAll(dir, 0750)
}

// WriteFile writes data to destPath through a temp file and a rename, so a
// reader never sees a partial report.
func (m *Manager) WriteFile(destPath string, data []byte) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(destPath), 0750); err != nil {
		return 0, fmt.Errorf("creating directories: %w", err)
	}

	// unique per call so concurrent writers never share a temp file
	f, err := os.CreateTemp(filepath.Dir(destPath), filepath.Base(destPath)+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := f.Name()

	n, err := f.Write(data)
	if closeErr := f.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	if err != nil {
		_ = os.Remove(tmpPath)
		return 0, fmt.Errorf("writing file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		_ = os.Remove(tmpPath)
		return 0, fmt.Errorf("renaming temp file: %w", err)
	}

	return int64(n), nil
}

// CommitStaging moves every staged file for date into the final tree,
// replacing reports from earlier runs.
func (m *Manager) CommitStaging(date string) (int, error) {
	stagingDir := m.StagingDir(date)
	finalDir := filepath.Join(m.baseDir, date)

	moved := 0
	err := filepath.Walk(stagingDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) == ".tmp" {
			return nil
		}

		relPath, err := filepath.Rel(stagingDir, path)
		if err != nil {
			return err
		}

		destPath := filepath.Join(finalDir, relPath)
		if err := os.MkdirAll(filepath.Dir(destPath), 0750); err != nil {
			return err
		}

		if err := os.Rename(path, destPath); err != nil {
			return err
		}
		moved++
		return nil
	})
	return moved, err
}

func (m *Manager) CleanupStaging(date string) error {
	return os.RemoveAll(m.StagingDir(date))
}

// Exists reports whether a committed report is already present.
func (m *Manager) Exists(date, ticker, filename string) bool {
	_, err := os.Stat(m.FinalPath(date, ticker, filename))
	return err == nil
}
