package chain

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	ErrNotFound    = errors.New("snapshot not found")
	ErrNoSnapshots = errors.New("no snapshot files found")
)

const dateLayout = "2006-01-02"

// File is one snapshot file on disk.
// Layout: {root}/{YYYY-MM-DD}/{TICKER}.json[.gz|.zst]
type File struct {
	Date   string
	Ticker string
	Path   string
}

// Directory indexes the snapshot files under a root directory. The index is
// built on first use and can be rebuilt with Refresh. Safe for concurrent use.
type Directory struct {
	root   string
	logger *zap.Logger

	mu     sync.RWMutex
	loaded bool
	files  map[string][]File // key: date
}

func NewDirectory(root string, logger *zap.Logger) *Directory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Directory{root: root, logger: logger}
}

// Root returns the directory being indexed.
func (d *Directory) Root() string {
	return d.root
}

// Refresh rescans the root and atomically replaces the index.
func (d *Directory) Refresh() error {
	files, err := d.scan()
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.files = files
	d.loaded = true
	d.mu.Unlock()
	return nil
}

func (d *Directory) ensureLoaded() error {
	d.mu.RLock()
	loaded := d.loaded
	d.mu.RUnlock()
	if loaded {
		return nil
	}
	return d.Refresh()
}

// Dates returns every date with at least one snapshot, ascending.
func (d *Directory) Dates() ([]string, error) {
	if err := d.ensureLoaded(); err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	dates := make([]string, 0, len(d.files))
	for date := range d.files {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates, nil
}

// Latest returns the most recent date in the directory.
func (d *Directory) Latest() (string, error) {
	dates, err := d.Dates()
	if err != nil {
		return "", err
	}
	if len(dates) == 0 {
		return "", fmt.Errorf("%w in %s", ErrNoSnapshots, d.root)
	}
	return dates[len(dates)-1], nil
}

// Files returns the snapshot files for date sorted by ticker.
func (d *Directory) Files(date string) ([]File, error) {
	if err := d.ensureLoaded(); err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	files, ok := d.files[date]
	if !ok {
		return nil, fmt.Errorf("%w: date %s", ErrNotFound, date)
	}
	out := make([]File, len(files))
	copy(out, files)
	return out, nil
}

// Lookup returns the snapshot file for one ticker on date.
func (d *Directory) Lookup(date, ticker string) (File, error) {
	files, err := d.Files(date)
	if err != nil {
		return File{}, err
	}
	ticker = strings.ToUpper(ticker)
	for _, f := range files {
		if f.Ticker == ticker {
			return f, nil
		}
	}
	return File{}, fmt.Errorf("%w: %s on %s", ErrNotFound, ticker, date)
}

func (d *Directory) scan() (map[string][]File, error) {
	// date -> ticker -> chosen file
	chosen := make(map[string]map[string]File)

	err := filepath.WalkDir(d.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if strings.HasPrefix(entry.Name(), ".") && path != d.root {
				return filepath.SkipDir
			}
			return nil
		}

		// rel = "2024-01-16/SPX.json.gz"
		rel, _ := filepath.Rel(d.root, path)
		date := filepath.Dir(rel)
		if _, err := time.Parse(dateLayout, date); err != nil {
			return nil
		}

		ticker, ok := tickerFromName(entry.Name())
		if !ok {
			return nil
		}

		if chosen[date] == nil {
			chosen[date] = make(map[string]File)
		}
		f := File{Date: date, Ticker: ticker, Path: path}
		if prev, dup := chosen[date][ticker]; dup {
			keep, drop := prev, f
			if encodingRank(f.Path) < encodingRank(prev.Path) {
				keep, drop = f, prev
			}
			d.logger.Warn("duplicate snapshot for ticker, ignoring one",
				zap.String("date", date),
				zap.String("ticker", ticker),
				zap.String("kept", keep.Path),
				zap.String("ignored", drop.Path),
			)
			f = keep
		}
		chosen[date][ticker] = f
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking snapshot directory: %w", err)
	}

	files := make(map[string][]File, len(chosen))
	total := 0
	for date, byTicker := range chosen {
		for _, f := range byTicker {
			files[date] = append(files[date], f)
		}
		sort.Slice(files[date], func(i, j int) bool { return files[date][i].Ticker < files[date][j].Ticker })
		total += len(files[date])
	}

	d.logger.Debug("indexed snapshot directory",
		zap.String("root", d.root),
		zap.Int("dates", len(files)),
		zap.Int("files", total),
	)

	return files, nil
}

// encodingRank orders the encodings of one snapshot: plain JSON first, then
// gzip, then zstd.
func encodingRank(path string) int {
	switch {
	case strings.HasSuffix(path, ".gz"):
		return 1
	case strings.HasSuffix(path, ".zst"):
		return 2
	default:
		return 0
	}
}

// tickerFromName maps "spx.json.zst" to "SPX".
func tickerFromName(name string) (string, bool) {
	base := strings.TrimSuffix(strings.TrimSuffix(name, ".gz"), ".zst")
	if filepath.Ext(base) != ".json" {
		return "", false
	}
	ticker := strings.TrimSuffix(base, ".json")
	if ticker == "" {
		return "", false
	}
	return strings.ToUpper(ticker), true
}
