package gex

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// OptionType is either Call or Put.
type OptionType uint8

const (
	Call OptionType = iota + 1
	Put
)

// ParseOptionType accepts "call", "put", "C" and "P" in any case.
func ParseOptionType(s string) (OptionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call", "c":
		return Call, nil
	case "put", "p":
		return Put, nil
	default:
		return 0, fmt.Errorf("unknown option type %q", s)
	}
}

func (t OptionType) String() string {
	switch t {
	case Call:
		return "call"
	case Put:
		return "put"
	default:
		return fmt.Sprintf("OptionType(%d)", uint8(t))
	}
}

// Valid reports whether t is one of the two known variants.
func (t OptionType) Valid() bool {
	return t == Call || t == Put
}

// Contract is a single listed option as seen in a chain snapshot.
type Contract struct {
	Symbol       string
	Strike       float64
	Expiration   time.Time
	Type         OptionType
	ImpliedVol   float64
	OpenInterest int64

	// VendorGamma is the gamma quoted by the data vendor, if any.
	VendorGamma *float64
}

// Snapshot is an option chain captured at a point in time.
type Snapshot struct {
	Ticker    string
	Spot      float64
	AsOf      time.Time
	Contracts []Contract
}

// Validate checks the structural preconditions the engine relies on.
func (s *Snapshot) Validate() error {
	errs := &ValidationErrors{}

	if !(s.Spot > 0) || math.IsInf(s.Spot, 0) {
		errs.Add("spot", "must be a positive finite number, got %v", s.Spot)
	}
	if s.AsOf.IsZero() {
		errs.Add("as_of", "must be set")
	}

	for i, c := range s.Contracts {
		field := fmt.Sprintf("contracts[%d]", i)
		if c.Symbol != "" {
			field = fmt.Sprintf("contracts[%d](%s)", i, c.Symbol)
		}
		if !(c.Strike > 0) || math.IsInf(c.Strike, 0) {
			errs.Add(field+".strike", "must be positive, got %v", c.Strike)
		}
		if c.OpenInterest < 0 {
			errs.Add(field+".open_interest", "must be >= 0, got %d", c.OpenInterest)
		}
		if !(c.ImpliedVol >= 0) || math.IsInf(c.ImpliedVol, 0) {
			errs.Add(field+".implied_vol", "must be >= 0, got %v", c.ImpliedVol)
		}
		if !c.Type.Valid() {
			errs.Add(field+".type", "must be call or put, got %s", c.Type)
		}
		if c.Expiration.IsZero() {
			errs.Add(field+".expiration", "must be set")
		}
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}
