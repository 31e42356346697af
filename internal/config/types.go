package config

import (
	"regexp"

	"github.com/dgnsrekt/gexcalc/internal/gex"
	"github.com/dgnsrekt/gexcalc/internal/report"
)

// ValidCalendars lists the day-count calendars the engine understands.
var ValidCalendars = []string{gex.CalendarWeekdays, gex.CalendarXNYS}

// ValidGammaSources lists where per-contract gamma may come from.
var ValidGammaSources = []string{string(gex.GammaSourceModel), string(gex.GammaSourceVendor)}

// ValidLogLevels mirrors the zap level names.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// tickerPattern accepts index and equity roots such as SPX, BRK.B or NDX.
var tickerPattern = regexp.MustCompile(`^[A-Z][A-Z0-9.]{0,9}$`)

func reportFormat(compress bool) report.Format {
	if compress {
		return report.FormatZstd
	}
	return report.FormatJSON
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
