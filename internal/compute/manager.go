package compute

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/dgnsrekt/gexcalc/internal/chain"
	"github.com/dgnsrekt/gexcalc/internal/gex"
	"github.com/dgnsrekt/gexcalc/internal/report"
	"github.com/dgnsrekt/gexcalc/internal/staging"
)

// Computer runs the engine over one snapshot. *gex.Engine satisfies it.
type Computer interface {
	Compute(ctx context.Context, snap *gex.Snapshot) (*gex.Result, error)
}

// Loader reads a snapshot file. chain.LoadFile is the default.
type Loader func(path string) (*gex.Snapshot, error)

type Options struct {
	Workers   int
	Overwrite bool
	Loader    Loader
}

// Manager fans snapshot files out to a worker pool, writes one report per
// file into staging and commits them when the batch completes.
type Manager struct {
	engine    Computer
	load      Loader
	staging   *staging.Manager
	encoder   *report.Encoder
	workers   int
	overwrite bool
	logger    *zap.Logger
}

func NewManager(engine Computer, stg *staging.Manager, enc *report.Encoder, opts Options, logger *zap.Logger) *Manager {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Loader == nil {
		opts.Loader = chain.LoadFile
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		engine:    engine,
		load:      opts.Loader,
		staging:   stg,
		encoder:   enc,
		workers:   opts.Workers,
		overwrite: opts.Overwrite,
		logger:    logger,
	}
}

// Plan lists the tasks for date, restricted to tickers when non-empty.
func Plan(dir *chain.Directory, date string, tickers []string) ([]Task, error) {
	files, err := dir.Files(date)
	if err != nil {
		return nil, err
	}

	want := make(map[string]bool, len(tickers))
	for _, t := range tickers {
		want[strings.ToUpper(t)] = true
	}

	var tasks []Task
	for _, f := range files {
		if len(want) > 0 && !want[f.Ticker] {
			continue
		}
		tasks = append(tasks, TaskFromFile(f))
	}
	return tasks, nil
}

// RunDate plans, executes and commits the batch for one date.
func (m *Manager) RunDate(ctx context.Context, dir *chain.Directory, date string, tickers []string) (*BatchResult, error) {
	tasks, err := Plan(dir, date, tickers)
	if err != nil {
		return nil, fmt.Errorf("planning %s: %w", date, err)
	}

	if err := m.staging.PrepareStaging(date); err != nil {
		return nil, fmt.Errorf("preparing staging: %w", err)
	}
	defer func() {
		if err := m.staging.CleanupStaging(date); err != nil {
			m.logger.Warn("failed to clean up staging", zap.String("date", date), zap.Error(err))
		}
	}()

	result, err := m.Execute(ctx, tasks)
	if err != nil {
		return result, err
	}

	moved, err := m.staging.CommitStaging(date)
	if err != nil {
		return result, fmt.Errorf("committing reports: %w", err)
	}

	m.logger.Info("batch committed",
		zap.String("date", date),
		zap.Int("reports", moved),
	)

	return result, nil
}

// Execute runs every task. Reports land in staging; the caller commits them.
// A cancelled context stops the batch and is returned alongside the partial
// counts.
func (m *Manager) Execute(ctx context.Context, tasks []Task) (*BatchResult, error) {
	result := &BatchResult{Total: len(tasks)}

	if len(tasks) == 0 {
		return result, nil
	}

	runID := report.NewRunID()

	jobs := make(chan Task, len(tasks))
	results := make(chan TaskResult, len(tasks))

	var wg sync.WaitGroup
	for i := 0; i < m.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.worker(ctx, runID, jobs, results)
		}()
	}

	go func() {
		defer close(jobs)
		for _, task := range tasks {
			select {
			case <-ctx.Done():
				return
			case jobs <- task:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for r := range results {
		switch {
		case r.Skipped:
			result.Skipped++
		case r.Success:
			result.Success++
			if r.NoFlip() {
				result.NoFlip++
			}
			result.Levels = append(result.Levels, Level{Ticker: r.Task.Ticker, Spot: r.Spot, ZeroGamma: r.ZeroGamma})
		default:
			result.Failed++
			if r.Error != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", r.Task, r.Error))
			}
		}
	}

	sort.Slice(result.Levels, func(i, j int) bool { return result.Levels[i].Ticker < result.Levels[j].Ticker })
	sort.Strings(result.Errors)

	return result, ctx.Err()
}

func (m *Manager) worker(ctx context.Context, runID string, jobs <-chan Task, results chan<- TaskResult) {
	for task := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		result := m.processTask(ctx, runID, task)

		select {
		case <-ctx.Done():
			return
		case results <- result:
		}
	}
}

func (m *Manager) processTask(ctx context.Context, runID string, task Task) TaskResult {
	result := TaskResult{Task: task}
	filename := m.encoder.Format().Filename()

	if !m.overwrite && m.staging.Exists(task.Date, task.Ticker, filename) {
		m.logger.Debug("skipping existing report", zap.String("task", task.String()))
		result.Skipped = true
		result.Success = true
		return result
	}

	snap, err := m.load(task.Path)
	if err != nil {
		result.Error = fmt.Errorf("loading snapshot: %w", err)
		return result
	}
	if snap.Ticker == "" {
		snap.Ticker = task.Ticker
	}

	res, err := m.engine.Compute(ctx, snap)
	if err != nil {
		result.Error = err
		return result
	}

	data, err := m.encoder.Encode(report.New(runID, snap, res))
	if err != nil {
		result.Error = err
		return result
	}

	size, err := m.staging.WriteFile(m.staging.StagedPath(task.Date, task.Ticker, filename), data)
	if err != nil {
		result.Error = err
		return result
	}

	result.Success = true
	result.Spot = snap.Spot
	result.ZeroGamma = res.ZeroGamma
	result.BytesSize = size

	fields := []zap.Field{
		zap.String("task", task.String()),
		zap.Float64("spot", snap.Spot),
		zap.Int("contracts", len(snap.Contracts)),
		zap.Duration("elapsed", res.Elapsed),
	}
	if res.ZeroGamma != nil {
		fields = append(fields, zap.Float64("zeroGamma", *res.ZeroGamma))
	}
	m.logger.Info("computed", fields...)

	return result
}
