package compute

import (
	"fmt"

	"github.com/dgnsrekt/gexcalc/internal/chain"
)

// Task is one snapshot file to run through the engine.
type Task struct {
	Date   string
	Ticker string
	Path   string
}

func TaskFromFile(f chain.File) Task {
	return Task{Date: f.Date, Ticker: f.Ticker, Path: f.Path}
}

func (t Task) String() string {
	return fmt.Sprintf("%s/%s", t.Date, t.Ticker)
}

type TaskResult struct {
	Task      Task
	Success   bool
	Skipped   bool
	Spot      float64
	ZeroGamma *float64
	BytesSize int64
	Error     error
}

// NoFlip reports whether the run succeeded without finding a zero gamma
// level.
func (r TaskResult) NoFlip() bool {
	return r.Success && !r.Skipped && r.ZeroGamma == nil
}

// Level is the headline figure of one successful task.
type Level struct {
	Ticker    string
	Spot      float64
	ZeroGamma *float64
}

type BatchResult struct {
	Total   int
	Success int
	Skipped int
	NoFlip  int // successes without a zero gamma crossing
	Failed  int
	Errors  []string
	Levels  []Level
}
