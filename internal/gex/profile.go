package gex

import (
	"context"
	"math"
	"runtime"
	"sort"
	"sync"
	"time"
)

// ProfileOptions controls the spot sweep.
type ProfileOptions struct {
	From       float64 // lower bound as a fraction of spot
	To         float64 // upper bound as a fraction of spot
	Levels     int
	Rate       float64
	Dividend   float64
	DayCounter DayCounter
	Workers    int
}

// DefaultProfileOptions sweeps 60 levels from 80% to 120% of spot.
func DefaultProfileOptions() ProfileOptions {
	return ProfileOptions{
		From:   0.8,
		To:     1.2,
		Levels: 60,
	}
}

// Validate rejects sweeps that cannot produce an ordered curve.
func (o ProfileOptions) Validate() error {
	errs := &ValidationErrors{}
	if !(o.From > 0) || math.IsInf(o.From, 0) {
		errs.Add("from", "must be a positive fraction of spot, got %v", o.From)
	}
	if !(o.From < o.To) || math.IsInf(o.To, 0) {
		errs.Add("to", "must be greater than from (%v), got %v", o.From, o.To)
	}
	if o.Levels < 2 {
		errs.Add("levels", "must be >= 2, got %d", o.Levels)
	}
	if o.Workers < 0 {
		errs.Add("workers", "must be >= 0, got %d", o.Workers)
	}
	if errs.HasErrors() {
		return errs
	}
	return nil
}

// ProfilePoint is the net gamma exposure at one hypothetical spot level, in
// notional billions.
type ProfilePoint struct {
	Spot          float64 `json:"spot"`
	All           float64 `json:"all"`
	ExNextExpiry  float64 `json:"ex_next_expiry"`
	ExNextMonthly float64 `json:"ex_next_monthly"`
}

// pricedContract is the read-only view of a contract shared by all levels.
type pricedContract struct {
	strike        float64
	vol           float64
	t             float64
	openInterest  int64
	typ           OptionType
	inNextExpiry  bool
	inNextMonthly bool
}

// SpotLevels returns n evenly spaced levels covering [from·spot, to·spot].
func SpotLevels(spot, from, to float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	lo, hi := from*spot, to*spot
	levels := make([]float64, n)
	if n == 1 {
		levels[0] = lo
		return levels
	}
	step := (hi - lo) / float64(n-1)
	for i := range levels {
		levels[i] = lo + float64(i)*step
	}
	levels[n-1] = hi
	return levels
}

// Profile re-prices the whole chain at each spot level and returns the
// resulting curve sorted by ascending spot. Levels are evaluated
// concurrently; a cancelled context discards the sweep.
func Profile(ctx context.Context, snap *Snapshot, opts ProfileOptions) ([]ProfilePoint, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	if len(snap.Contracts) == 0 {
		return []ProfilePoint{}, nil
	}

	contracts := prepareContracts(snap, opts.DayCounter)
	levels := SpotLevels(snap.Spot, opts.From, opts.To, opts.Levels)

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(levels) {
		workers = len(levels)
	}

	jobs := make(chan float64, len(levels))
	results := make(chan ProfilePoint, len(levels))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for level := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				results <- pointAt(level, contracts, opts.Rate, opts.Dividend)
			}
		}()
	}

	for _, level := range levels {
		jobs <- level
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	points := make([]ProfilePoint, 0, len(levels))
	for p := range results {
		points = append(points, p)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Spot < points[j].Spot })
	return points, nil
}

// pointAt is a pure function of the level and the shared read-only chain.
func pointAt(level float64, contracts []pricedContract, rate, dividend float64) ProfilePoint {
	var all, exNext, exMonthly float64
	for _, c := range contracts {
		gamma := Gamma(GammaInput{
			Spot:     level,
			Strike:   c.strike,
			Vol:      c.vol,
			T:        c.t,
			Rate:     rate,
			Dividend: dividend,
			Type:     c.typ,
		})
		exposure := c.typ.sign() * NotionalExposure(gamma, level, c.openInterest)

		all += exposure
		if !c.inNextExpiry {
			exNext += exposure
		}
		if !c.inNextMonthly {
			exMonthly += exposure
		}
	}

	return ProfilePoint{
		Spot:          level,
		All:           all / billion,
		ExNextExpiry:  exNext / billion,
		ExNextMonthly: exMonthly / billion,
	}
}

func prepareContracts(snap *Snapshot, dc DayCounter) []pricedContract {
	if dc == nil {
		dc = WeekdayCounter{}
	}

	nextExpiry, nextMonthly, hasMonthly := nextExpirations(snap.Contracts)

	years := make(map[time.Time]float64)
	out := make([]pricedContract, len(snap.Contracts))
	for i, c := range snap.Contracts {
		exp := civilDate(c.Expiration)
		t, ok := years[exp]
		if !ok {
			t = YearsToExpiry(dc, snap.AsOf, exp)
			years[exp] = t
		}
		out[i] = pricedContract{
			strike:        c.Strike,
			vol:           c.ImpliedVol,
			t:             t,
			openInterest:  c.OpenInterest,
			typ:           c.Type,
			inNextExpiry:  exp.Equal(nextExpiry),
			inNextMonthly: hasMonthly && exp.Equal(nextMonthly),
		}
	}
	return out
}

// nextExpirations returns the earliest expiration and the earliest third
// Friday expiration in the chain.
func nextExpirations(contracts []Contract) (next, monthly time.Time, hasMonthly bool) {
	for i, c := range contracts {
		exp := civilDate(c.Expiration)
		if i == 0 || exp.Before(next) {
			next = exp
		}
		if IsThirdFriday(exp) && (!hasMonthly || exp.Before(monthly)) {
			monthly = exp
			hasMonthly = true
		}
	}
	return next, monthly, hasMonthly
}
