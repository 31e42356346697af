package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/dgnsrekt/gexcalc/internal/compute"
)

// FormatSuccessMessage creates a success notification body listing the zero
// gamma level of every ticker.
func FormatSuccessMessage(result *compute.BatchResult, duration time.Duration) string {
	var sb strings.Builder

	for _, lvl := range result.Levels {
		if lvl.ZeroGamma == nil {
			sb.WriteString(fmt.Sprintf("%s: spot %.2f, no flip in range\n", lvl.Ticker, lvl.Spot))
			continue
		}
		side := "above"
		if lvl.Spot < *lvl.ZeroGamma {
			side = "below"
		}
		sb.WriteString(fmt.Sprintf("%s: spot %.2f, zero gamma %.2f (%s)\n", lvl.Ticker, lvl.Spot, *lvl.ZeroGamma, side))
	}
	if len(result.Levels) > 0 {
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("Total: %d snapshots\n", result.Total))
	sb.WriteString(fmt.Sprintf("Success: %d\n", result.Success))
	sb.WriteString(fmt.Sprintf("Skipped: %d\n", result.Skipped))
	sb.WriteString(fmt.Sprintf("No Flip: %d\n", result.NoFlip))
	sb.WriteString(fmt.Sprintf("Duration: %s", duration.Round(time.Second)))

	return sb.String()
}

// FormatFailureMessage creates a failure notification body.
func FormatFailureMessage(result *compute.BatchResult, duration time.Duration, err error) string {
	var sb strings.Builder

	if result == nil {
		result = &compute.BatchResult{}
	}

	sb.WriteString(fmt.Sprintf("Total: %d snapshots\n", result.Total))
	sb.WriteString(fmt.Sprintf("Success: %d\n", result.Success))
	sb.WriteString(fmt.Sprintf("Failed: %d\n", result.Failed))
	sb.WriteString(fmt.Sprintf("Skipped: %d\n", result.Skipped))
	sb.WriteString(fmt.Sprintf("Duration: %s", duration.Round(time.Second)))

	if err != nil {
		sb.WriteString(fmt.Sprintf("\n\nError: %v", err))
	}

	// First 3 errors only
	if len(result.Errors) > 0 {
		sb.WriteString("\n\nErrors:\n")
		limit := 3
		if len(result.Errors) < limit {
			limit = len(result.Errors)
		}
		for i := 0; i < limit; i++ {
			sb.WriteString(fmt.Sprintf("- %s\n", result.Errors[i]))
		}
		if len(result.Errors) > 3 {
			sb.WriteString(fmt.Sprintf("... and %d more errors", len(result.Errors)-3))
		}
	}

	return sb.String()
}
