package main

import (
	"fmt"
	"io"
	"math"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/scmhub/calendar"
	"go.uber.org/zap"

	"github.com/dgnsrekt/gexcalc/internal/gex"
)

const dateLayout = "2006-01-02"

// parseDates expands "START [END]" into every calendar date in between.
func parseDates(args []string) ([]string, error) {
	start, err := time.Parse(dateLayout, args[0])
	if err != nil {
		return nil, fmt.Errorf("invalid start date format (use YYYY-MM-DD): %w", err)
	}

	if len(args) == 1 {
		return []string{args[0]}, nil
	}

	end, err := time.Parse(dateLayout, args[1])
	if err != nil {
		return nil, fmt.Errorf("invalid end date format (use YYYY-MM-DD): %w", err)
	}

	if end.Before(start) {
		return nil, fmt.Errorf("end date must be after start date")
	}

	var dates []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(dateLayout))
	}

	return dates, nil
}

// filterMarketDays drops weekends and NYSE holidays, logging each skip.
func filterMarketDays(dates []string, logger *zap.Logger) []string {
	nyse := calendar.XNYS()

	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		logger.Warn("failed to load America/New_York timezone, using UTC", zap.Error(err))
		loc = time.UTC
	}

	var marketDays []string
	for _, dateStr := range dates {
		// Noon in New York so the date cannot slip across midnight
		t, _ := time.ParseInLocation(dateLayout+" 15:04:05", dateStr+" 12:00:00", loc)
		if nyse.IsBusinessDay(t) {
			marketDays = append(marketDays, dateStr)
		} else {
			logger.Warn("skipping non-market day", zap.String("date", dateStr))
		}
	}
	return marketDays
}

// printResult writes a human readable summary of one engine run.
func printResult(w io.Writer, snap *gex.Snapshot, res *gex.Result, top int) {
	fmt.Fprintf(w, "%s  spot %.2f  as of %s\n", snap.Ticker, snap.Spot, snap.AsOf.Format(time.RFC3339))
	if flip, err := res.Flip(); err == nil {
		fmt.Fprintf(w, "zero gamma  %.2f\n", flip)
	} else {
		fmt.Fprintf(w, "zero gamma  none in sweep\n")
	}
	fmt.Fprintf(w, "net gamma   %.4f bn per 1%% move\n\n", gex.NetNotional(res.Strikes))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "strike\ttotal\tcall\tput\t")
	for _, row := range largestStrikes(res.Strikes, top) {
		fmt.Fprintf(tw, "%.2f\t%.4f\t%.4f\t%.4f\t\n", row.Strike, row.Notional.Total, row.Notional.Call, row.Notional.Put)
	}
	_ = tw.Flush()
}

// largestStrikes keeps the n rows with the largest absolute total notional,
// ordered by strike.
func largestStrikes(rows []gex.StrikeExposure, n int) []gex.StrikeExposure {
	if n <= 0 || len(rows) <= n {
		return rows
	}
	out := make([]gex.StrikeExposure, len(rows))
	copy(out, rows)
	sort.Slice(out, func(i, j int) bool {
		return math.Abs(out[i].Notional.Total) > math.Abs(out[j].Notional.Total)
	})
	out = out[:n]
	sort.Slice(out, func(i, j int) bool { return out[i].Strike < out[j].Strike })
	return out
}
