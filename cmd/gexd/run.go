package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/dgnsrekt/gexcalc/internal/chain"
	"github.com/dgnsrekt/gexcalc/internal/compute"
	"github.com/dgnsrekt/gexcalc/internal/config"
	"github.com/dgnsrekt/gexcalc/internal/gex"
	"github.com/dgnsrekt/gexcalc/internal/report"
	"github.com/dgnsrekt/gexcalc/internal/staging"
)

// RunTracker remembers the last date that was computed successfully.
type RunTracker struct {
	stateFile string
}

func NewRunTracker(stateFile string) *RunTracker {
	return &RunTracker{stateFile: stateFile}
}

// LastRunDate returns the stored date, or "" when there is none.
func (t *RunTracker) LastRunDate() string {
	data, err := os.ReadFile(t.stateFile)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (t *RunTracker) SetLastRunDate(date string) error {
	if err := os.MkdirAll(filepath.Dir(t.stateFile), 0750); err != nil {
		return err
	}
	return os.WriteFile(t.stateFile, []byte(date+"\n"), 0600)
}

func (t *RunTracker) AlreadyRan(date string) bool {
	return t.LastRunDate() == date
}

// executeRun computes every snapshot for date and commits the reports.
func executeRun(ctx context.Context, cfg *config.Config, date string, logger *zap.Logger) (*compute.BatchResult, error) {
	engine, err := gex.NewEngine(cfg.EngineOptions(), logger)
	if err != nil {
		return nil, err
	}

	enc, err := report.NewEncoder(cfg.ReportFormat(), cfg.Output.Pretty)
	if err != nil {
		return nil, err
	}
	defer enc.Close()

	mgr := compute.NewManager(engine, staging.NewManager(cfg.Output.Directory), enc, compute.Options{
		Workers:   cfg.Batch.Workers,
		Overwrite: cfg.Output.Overwrite,
	}, logger)

	dir := chain.NewDirectory(cfg.Input.Directory, logger)
	result, err := mgr.RunDate(ctx, dir, date, cfg.Input.Tickers)
	if errors.Is(err, chain.ErrNotFound) {
		return nil, fmt.Errorf("no snapshots for %s in %s", date, cfg.Input.Directory)
	}
	if err != nil {
		return result, err
	}

	logger.Info("run complete",
		zap.Int("total", result.Total),
		zap.Int("success", result.Success),
		zap.Int("skipped", result.Skipped),
		zap.Int("no_flip", result.NoFlip),
		zap.Int("failed", result.Failed),
	)

	for _, e := range result.Errors {
		logger.Error("compute error", zap.String("error", e))
	}

	return result, nil
}
