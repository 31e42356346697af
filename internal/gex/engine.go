package gex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Options configures an Engine.
type Options struct {
	Profile     ProfileOptions
	GammaSource GammaSource
	Calendar    string
}

// DefaultOptions matches the reference sweep: 80%-120% of spot, 60 levels,
// model gamma, weekday calendar.
func DefaultOptions() Options {
	return Options{
		Profile:     DefaultProfileOptions(),
		GammaSource: GammaSourceModel,
		Calendar:    CalendarWeekdays,
	}
}

// Result bundles the three outputs computed for one snapshot.
type Result struct {
	Strikes   []StrikeExposure
	Profile   []ProfilePoint
	ZeroGamma *float64 // nil when the profile has no crossing
	Elapsed   time.Duration
}

// Flip returns the zero gamma level or ErrNoZeroCrossing.
func (r *Result) Flip() (float64, error) {
	if r.ZeroGamma == nil {
		return 0, ErrNoZeroCrossing
	}
	return *r.ZeroGamma, nil
}

// Engine runs the aggregation, the profile sweep and the zero gamma search
// with a fixed set of options. It is safe for concurrent use.
type Engine struct {
	opts       Options
	dayCounter DayCounter
	logger     *zap.Logger
}

// NewEngine validates opts and resolves the day-count calendar.
func NewEngine(opts Options, logger *zap.Logger) (*Engine, error) {
	if err := opts.Profile.Validate(); err != nil {
		return nil, err
	}
	dc, err := NewDayCounter(opts.Calendar)
	if err != nil {
		errs := &ValidationErrors{}
		errs.Add("calendar", "%v", err)
		return nil, errs
	}
	if opts.GammaSource == "" {
		opts.GammaSource = GammaSourceModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	opts.Profile.DayCounter = dc

	return &Engine{opts: opts, dayCounter: dc, logger: logger}, nil
}

// Options returns the effective options.
func (e *Engine) Options() Options {
	return e.opts
}

// Compute produces the strike table, the gamma profile and the zero gamma
// level. A missing crossing is reported through Result.ZeroGamma, not as an
// error.
func (e *Engine) Compute(ctx context.Context, snap *Snapshot) (*Result, error) {
	start := time.Now()

	strikes, err := Aggregate(snap, AggregateOptions{
		Rate:        e.opts.Profile.Rate,
		Dividend:    e.opts.Profile.Dividend,
		DayCounter:  e.dayCounter,
		GammaSource: e.opts.GammaSource,
	})
	if err != nil {
		return nil, fmt.Errorf("aggregating strikes: %w", err)
	}

	profile, err := Profile(ctx, snap, e.opts.Profile)
	if err != nil {
		return nil, fmt.Errorf("computing gamma profile: %w", err)
	}

	result := &Result{Strikes: strikes, Profile: profile}

	zero, err := ZeroGamma(profile)
	switch {
	case err == nil:
		result.ZeroGamma = &zero
	case errors.Is(err, ErrNoZeroCrossing):
		e.logger.Info("no zero gamma crossing in sweep",
			zap.String("ticker", snap.Ticker),
			zap.Float64("from", e.opts.Profile.From*snap.Spot),
			zap.Float64("to", e.opts.Profile.To*snap.Spot),
		)
	default:
		return nil, err
	}

	result.Elapsed = time.Since(start)

	e.logger.Debug("gamma exposure computed",
		zap.String("ticker", snap.Ticker),
		zap.Int("contracts", len(snap.Contracts)),
		zap.Int("strikes", len(strikes)),
		zap.Int("levels", len(profile)),
		zap.Float64("netNotional", NetNotional(strikes)),
		zap.Duration("elapsed", result.Elapsed),
	)

	return result, nil
}
