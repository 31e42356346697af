package config

import (
	"fmt"
	"strings"
	"time"
)

// InvalidField is a setting whose value was rejected.
type InvalidField struct {
	Key     string
	Problem string
}

// ValidationErrors collects all validation errors
type ValidationErrors struct {
	InvalidTickers []string
	InvalidFields  []InvalidField
}

func (e *ValidationErrors) add(key, format string, args ...any) {
	e.InvalidFields = append(e.InvalidFields, InvalidField{Key: key, Problem: fmt.Sprintf(format, args...)})
}

// HasErrors returns true if any validation errors exist
func (e *ValidationErrors) HasErrors() bool {
	return len(e.InvalidTickers) > 0 || len(e.InvalidFields) > 0
}

// Error formats all validation errors into a clear message
func (e *ValidationErrors) Error() string {
	var sb strings.Builder
	sb.WriteString("configuration validation failed:\n")

	if len(e.InvalidTickers) > 0 {
		sb.WriteString("\nInvalid tickers:\n")
		for _, t := range e.InvalidTickers {
			sb.WriteString(fmt.Sprintf("  - %q\n", t))
		}
		sb.WriteString("\nTickers are upper-case roots such as SPX, NDX or BRK.B\n")
	}

	if len(e.InvalidFields) > 0 {
		sb.WriteString("\nInvalid settings:\n")
		for _, f := range e.InvalidFields {
			sb.WriteString(fmt.Sprintf("  - %s: %s\n", f.Key, f.Problem))
		}
	}

	return sb.String()
}

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	errs := &ValidationErrors{}

	for _, ticker := range c.Input.Tickers {
		if !tickerPattern.MatchString(ticker) {
			errs.InvalidTickers = append(errs.InvalidTickers, ticker)
		}
	}

	validateEngine(errs, c.Engine)

	if c.Input.Directory == "" {
		errs.add("input.directory", "is required")
	}
	if c.Output.Directory == "" {
		errs.add("output.directory", "is required")
	}
	if c.Batch.Workers < 1 {
		errs.add("batch.workers", "must be >= 1, got %d", c.Batch.Workers)
	}

	validateDaemon(errs, c.Daemon)

	if err := c.Notify.Validate(); err != nil {
		errs.add("notify", "%v", err)
	}

	if !contains(ValidLogLevels, strings.ToLower(c.Logging.Level)) {
		errs.add("logging.level", "must be one of %s, got %q", strings.Join(ValidLogLevels, ", "), c.Logging.Level)
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

func validateEngine(errs *ValidationErrors, e EngineConfig) {
	if e.From <= 0 {
		errs.add("engine.from", "must be > 0, got %v", e.From)
	}
	if e.To <= e.From {
		errs.add("engine.to", "must be greater than engine.from (%v), got %v", e.From, e.To)
	}
	if e.Levels < 2 {
		errs.add("engine.levels", "must be >= 2, got %d", e.Levels)
	}
	if e.Workers < 0 {
		errs.add("engine.workers", "must be >= 0 (0 uses every CPU), got %d", e.Workers)
	}
	if !contains(ValidCalendars, e.Calendar) {
		errs.add("engine.calendar", "must be one of %s, got %q", strings.Join(ValidCalendars, ", "), e.Calendar)
	}
	if !contains(ValidGammaSources, e.GammaSource) {
		errs.add("engine.gamma_source", "must be one of %s, got %q", strings.Join(ValidGammaSources, ", "), e.GammaSource)
	}
}

func validateDaemon(errs *ValidationErrors, d DaemonConfig) {
	if d.Hour < 0 || d.Hour > 23 {
		errs.add("daemon.hour", "must be 0-23, got %d", d.Hour)
	}
	if d.Minute < 0 || d.Minute > 59 {
		errs.add("daemon.minute", "must be 0-59, got %d", d.Minute)
	}
	if _, err := time.LoadLocation(d.Timezone); err != nil {
		errs.add("daemon.timezone", "%v", err)
	}
	if d.StateFile == "" {
		errs.add("daemon.state_file", "is required")
	}
}
