package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dgnsrekt/gexcalc/internal/chain"
	"github.com/dgnsrekt/gexcalc/internal/gex"
	"github.com/dgnsrekt/gexcalc/internal/report"
	"github.com/dgnsrekt/gexcalc/internal/staging"
)

func computeCmd() *cobra.Command {
	var (
		top     int
		asJSON  bool
		outPath string
		ticker  string
	)

	cmd := &cobra.Command{
		Use:   "compute FILE",
		Short: "Compute gamma exposure for a single snapshot file",
		Long: `Compute the per-strike gamma exposure, the gamma profile and the zero
gamma level for one CBOE delayed-quotes snapshot. Files ending in .gz or
.zst are decompressed transparently.

Examples:
  # Summary table of the 10 largest strikes
  gexcalc compute data/chains/2024-01-16/SPX.json

  # Full report document on stdout
  gexcalc compute --json data/chains/2024-01-16/SPX.json.zst

  # Write the report to a file
  gexcalc compute --out /tmp/spx.json data/chains/2024-01-16/SPX.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			snap, err := chain.LoadFile(args[0])
			if err != nil {
				return err
			}
			if ticker != "" {
				snap.Ticker = strings.ToUpper(ticker)
			}

			engine, err := gex.NewEngine(cfg.EngineOptions(), logger)
			if err != nil {
				return err
			}

			res, err := engine.Compute(ctx, snap)
			if err != nil {
				return err
			}

			logger.Debug("snapshot computed",
				zap.String("file", args[0]),
				zap.Int("contracts", len(snap.Contracts)),
				zap.Duration("elapsed", res.Elapsed),
			)

			if !asJSON && outPath == "" {
				printResult(os.Stdout, snap, res, top)
				return nil
			}

			format := report.FormatJSON
			if strings.HasSuffix(outPath, ".zst") {
				format = report.FormatZstd
			}
			enc, err := report.NewEncoder(format, cfg.Output.Pretty || asJSON)
			if err != nil {
				return err
			}
			defer enc.Close()

			data, err := enc.Encode(report.New(report.NewRunID(), snap, res))
			if err != nil {
				return err
			}

			if outPath == "" {
				_, err = fmt.Fprintln(os.Stdout, string(data))
				return err
			}

			stg := staging.NewManager(filepath.Dir(outPath))
			size, err := stg.WriteFile(outPath, data)
			if err != nil {
				return err
			}
			logger.Info("report written", zap.String("path", outPath), zap.Int64("bytes", size))
			return nil
		},
	}

	cmd.Flags().IntVar(&top, "top", 10, "number of strikes to show (0 = all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full report as JSON")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the report to this path (.zst compresses)")
	cmd.Flags().StringVar(&ticker, "ticker", "", "override the ticker found in the file")

	return cmd
}
