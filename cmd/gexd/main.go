package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/dgnsrekt/gexcalc/internal/config"
	"github.com/dgnsrekt/gexcalc/internal/notify"
)

func main() {
	os.Exit(run())
}

func run() int {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(os.Getenv("GEXCALC_CONFIG"))
	if err != nil {
		logger.Error("failed to load config", zap.Error(err))
		return 1
	}

	d := cfg.Daemon
	logger.Info("configuration loaded",
		zap.String("inputDir", cfg.Input.Directory),
		zap.String("outputDir", cfg.Output.Directory),
		zap.Int("workers", cfg.Batch.Workers),
		zap.Int("tickers", len(cfg.Input.Tickers)),
		zap.String("stateFile", d.StateFile),
		zap.Bool("runOnStartup", d.RunOnStartup),
		zap.Bool("notify", cfg.Notify.Enabled),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	scheduler := NewScheduler(d.Hour, d.Minute, d.Timezone)
	tracker := NewRunTracker(d.StateFile)
	notifier := notify.New(cfg.Notify, logger)

	logger.Info("daemon started",
		zap.String("schedule", fmt.Sprintf("%02d:%02d %s", d.Hour, d.Minute, scheduler.Location())),
	)

	if d.RunOnStartup {
		logger.Info("checking for missed run on startup")
		if shouldRun(scheduler, tracker, true, logger) {
			runScheduled(ctx, cfg, scheduler, tracker, notifier, logger)
		}
	}

	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", zap.String("signal", sig.String()))
			cancel()
			return 0

		case <-ticker.C:
			if shouldRun(scheduler, tracker, false, logger) {
				runScheduled(ctx, cfg, scheduler, tracker, notifier, logger)
			}

		case <-ctx.Done():
			logger.Info("context cancelled, shutting down")
			return 0
		}
	}
}

// shouldRun reports whether today's run is due. catchUp accepts any time
// after the schedule instead of the exact minute.
func shouldRun(scheduler *Scheduler, tracker *RunTracker, catchUp bool, logger *zap.Logger) bool {
	today := scheduler.TodayDate()

	if tracker.AlreadyRan(today) {
		return false
	}

	if !scheduler.IsMarketDay(today) {
		logger.Debug("not a market day", zap.String("date", today))
		return false
	}

	if catchUp {
		if !scheduler.IsPastScheduledTime() {
			return false
		}
	} else if !scheduler.IsScheduledTime() {
		return false
	}

	logger.Info("run conditions met",
		zap.String("date", today),
		zap.String("time", time.Now().In(scheduler.Location()).Format("15:04:05")),
	)
	return true
}

const notifyTimeout = 30 * time.Second

// notifyContext is detached from the run context so a run cut short by a
// shutdown signal still reports its failure.
func notifyContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), notifyTimeout)
}

func runScheduled(ctx context.Context, cfg *config.Config, scheduler *Scheduler, tracker *RunTracker, notifier notify.Notifier, logger *zap.Logger) {
	today := scheduler.TodayDate()

	logger.Info("starting scheduled run", zap.String("date", today))
	start := time.Now()

	result, err := executeRun(ctx, cfg, today, logger)
	duration := time.Since(start)

	if err != nil {
		logger.Error("run failed", zap.Error(err), zap.String("date", today))
		nctx, cancel := notifyContext()
		defer cancel()
		if nerr := notifier.SendFailure(nctx, result, today, duration, err); nerr != nil {
			logger.Warn("failed to send failure notification", zap.Error(nerr))
		}
		return
	}

	logger.Info("run succeeded",
		zap.String("date", today),
		zap.Duration("duration", duration),
	)

	nctx, cancel := notifyContext()
	defer cancel()
	if nerr := notifier.SendSuccess(nctx, result, today, duration); nerr != nil {
		logger.Warn("failed to send notification", zap.Error(nerr))
	}

	if err := tracker.SetLastRunDate(today); err != nil {
		logger.Error("failed to update tracker", zap.Error(err))
	}
}
