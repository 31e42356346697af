package gex

import (
	"sort"
	"time"
)

// billion scales raw exposures to the units reported everywhere.
const billion = 1e9

// GammaSource selects where the aggregator takes per-contract gamma from.
type GammaSource string

const (
	GammaSourceModel  GammaSource = "model"
	GammaSourceVendor GammaSource = "vendor"
)

// AggregateOptions tunes Aggregate. The zero value prices every contract
// with the model at r = q = 0 on a weekday calendar.
type AggregateOptions struct {
	Rate        float64
	Dividend    float64
	DayCounter  DayCounter
	GammaSource GammaSource
}

// ExposureSplit is a signed exposure and its call and put components.
type ExposureSplit struct {
	Total float64 `json:"total"`
	Call  float64 `json:"call"`
	Put   float64 `json:"put"`
}

func (s *ExposureSplit) add(t OptionType, v float64) {
	switch t {
	case Call:
		s.Call += v
	case Put:
		s.Put += v
	}
}

// StrikeExposure is one row of the per-strike table, in billions.
type StrikeExposure struct {
	Strike      float64       `json:"strike"`
	Notional    ExposureSplit `json:"notional"`
	Shares      ExposureSplit `json:"shares"`
	Theoretical ExposureSplit `json:"theoretical"`
}

type bucketKey struct {
	expiration time.Time
	typ        OptionType
	strike     float64
}

type exposureTriple struct {
	notional, shares, theoretical float64
}

// Aggregate computes the signed gamma exposure of every contract at the
// snapshot spot and folds it into one row per strike, ascending.
func Aggregate(snap *Snapshot, opts AggregateOptions) ([]StrikeExposure, error) {
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	switch opts.GammaSource {
	case "", GammaSourceModel, GammaSourceVendor:
	default:
		errs := &ValidationErrors{}
		errs.Add("gamma_source", "must be %q or %q, got %q", GammaSourceModel, GammaSourceVendor, opts.GammaSource)
		return nil, errs
	}
	if len(snap.Contracts) == 0 {
		return []StrikeExposure{}, nil
	}

	dc := opts.DayCounter
	if dc == nil {
		dc = WeekdayCounter{}
	}
	years := make(map[time.Time]float64)

	// Sum per (expiration, type, strike)
	buckets := make(map[bucketKey]exposureTriple)
	for _, c := range snap.Contracts {
		exp := civilDate(c.Expiration)
		t, ok := years[exp]
		if !ok {
			t = YearsToExpiry(dc, snap.AsOf, exp)
			years[exp] = t
		}

		gamma := contractGamma(c, snap.Spot, t, opts)
		sign := c.Type.sign()

		key := bucketKey{expiration: exp, typ: c.Type, strike: c.Strike}
		b := buckets[key]
		b.notional += sign * NotionalExposure(gamma, snap.Spot, c.OpenInterest)
		b.shares += sign * ShareExposure(gamma, snap.Spot, c.OpenInterest)
		b.theoretical += sign * TheoreticalExposure(gamma, c.OpenInterest)
		buckets[key] = b
	}

	// Fold expirations into strikes
	rows := make(map[float64]*StrikeExposure)
	for key, b := range buckets {
		row, ok := rows[key.strike]
		if !ok {
			row = &StrikeExposure{Strike: key.strike}
			rows[key.strike] = row
		}
		row.Notional.add(key.typ, b.notional/billion)
		row.Shares.add(key.typ, b.shares/billion)
		row.Theoretical.add(key.typ, b.theoretical/billion)
	}

	table := make([]StrikeExposure, 0, len(rows))
	for _, row := range rows {
		row.Notional.Total = row.Notional.Call + row.Notional.Put
		row.Shares.Total = row.Shares.Call + row.Shares.Put
		row.Theoretical.Total = row.Theoretical.Call + row.Theoretical.Put
		table = append(table, *row)
	}
	sort.Slice(table, func(i, j int) bool { return table[i].Strike < table[j].Strike })

	return table, nil
}

func contractGamma(c Contract, spot, t float64, opts AggregateOptions) float64 {
	if opts.GammaSource == GammaSourceVendor && c.VendorGamma != nil {
		if g := *c.VendorGamma; g >= 0 {
			return g
		}
	}
	return Gamma(GammaInput{
		Spot:     spot,
		Strike:   c.Strike,
		Vol:      c.ImpliedVol,
		T:        t,
		Rate:     opts.Rate,
		Dividend: opts.Dividend,
		Type:     c.Type,
	})
}

// NetNotional sums the total notional column of a strike table.
func NetNotional(table []StrikeExposure) float64 {
	var sum float64
	for _, row := range table {
		sum += row.Notional.Total
	}
	return sum
}
