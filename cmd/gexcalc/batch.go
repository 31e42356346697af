package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dgnsrekt/gexcalc/internal/chain"
	"github.com/dgnsrekt/gexcalc/internal/compute"
	"github.com/dgnsrekt/gexcalc/internal/gex"
	"github.com/dgnsrekt/gexcalc/internal/report"
	"github.com/dgnsrekt/gexcalc/internal/staging"
)

func batchCmd() *cobra.Command {
	var (
		dryRun    bool
		overwrite bool
		tickers   []string
	)

	cmd := &cobra.Command{
		Use:   "batch [YYYY-MM-DD [END_DATE]]",
		Short: "Compute reports for every snapshot of the given date(s)",
		Long: `Run the engine over every snapshot file under the input directory for
the given date(s) and write one report per ticker into the output directory.
Without a date the most recent date in the input directory is used. Date
ranges skip weekends and NYSE holidays.

Examples:
  # Latest available date
  gexcalc batch

  # Single date
  gexcalc batch 2024-01-16

  # Date range, SPX only
  gexcalc batch --tickers SPX 2024-01-01 2024-01-31

  # Show what would be computed
  gexcalc batch --dry-run 2024-01-16`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			dir := chain.NewDirectory(cfg.Input.Directory, logger)

			var dates []string
			switch len(args) {
			case 0:
				latest, err := dir.Latest()
				if err != nil {
					return err
				}
				dates = []string{latest}
			case 1:
				parsed, err := parseDates(args)
				if err != nil {
					return err
				}
				dates = parsed
			default:
				parsed, err := parseDates(args)
				if err != nil {
					return err
				}
				dates = filterMarketDays(parsed, logger)
			}

			effectiveTickers := cfg.Input.Tickers
			if len(tickers) > 0 {
				effectiveTickers = make([]string, len(tickers))
				for i, t := range tickers {
					effectiveTickers[i] = strings.ToUpper(t)
				}
			}

			if dryRun {
				for _, date := range dates {
					tasks, err := compute.Plan(dir, date, effectiveTickers)
					if err != nil {
						logger.Warn("no snapshots", zap.String("date", date), zap.Error(err))
						continue
					}
					for _, t := range tasks {
						fmt.Printf("Would compute: %s (%s)\n", t, t.Path)
					}
				}
				return nil
			}

			engine, err := gex.NewEngine(cfg.EngineOptions(), logger)
			if err != nil {
				return err
			}

			enc, err := report.NewEncoder(cfg.ReportFormat(), cfg.Output.Pretty)
			if err != nil {
				return err
			}
			defer enc.Close()

			mgr := compute.NewManager(engine, staging.NewManager(cfg.Output.Directory), enc, compute.Options{
				Workers:   cfg.Batch.Workers,
				Overwrite: overwrite || cfg.Output.Overwrite,
			}, logger)

			var failed int
			for _, date := range dates {
				result, err := mgr.RunDate(ctx, dir, date, effectiveTickers)
				if errors.Is(err, chain.ErrNotFound) {
					logger.Warn("no snapshots for date", zap.String("date", date))
					continue
				}
				if err != nil {
					return err
				}

				logger.Info("batch complete",
					zap.String("date", date),
					zap.Int("total", result.Total),
					zap.Int("success", result.Success),
					zap.Int("skipped", result.Skipped),
					zap.Int("no_flip", result.NoFlip),
					zap.Int("failed", result.Failed),
				)

				for _, lvl := range result.Levels {
					if lvl.ZeroGamma != nil {
						fmt.Printf("%s %-6s spot %10.2f  zero gamma %10.2f\n", date, lvl.Ticker, lvl.Spot, *lvl.ZeroGamma)
					} else {
						fmt.Printf("%s %-6s spot %10.2f  zero gamma %10s\n", date, lvl.Ticker, lvl.Spot, "-")
					}
				}

				for _, e := range result.Errors {
					logger.Error("compute error", zap.String("error", e))
				}
				failed += result.Failed
			}

			if failed > 0 {
				return fmt.Errorf("%d snapshots failed", failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be computed")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "recompute reports that already exist")
	cmd.Flags().StringSliceVar(&tickers, "tickers", nil, "override tickers from config")

	return cmd
}
