package chain

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dgnsrekt/gexcalc/internal/gex"
)

var ErrMissingSpot = errors.New("snapshot has no usable spot price")

// lastTradeLayout is how the delayed-quotes feed formats last_trade_time.
const lastTradeLayout = "2006-01-02T15:04:05"

// cboeDocument mirrors the parts of the CBOE delayed-quotes options document
// the engine needs.
type cboeDocument struct {
	Timestamp string `json:"timestamp"`
	Data      struct {
		Symbol        string       `json:"symbol"`
		Close         float64      `json:"close"`
		CurrentPrice  float64      `json:"current_price"`
		LastTradeTime string       `json:"last_trade_time"`
		Options       []cboeOption `json:"options"`
	} `json:"data"`
}

type cboeOption struct {
	Option       string   `json:"option"`
	IV           float64  `json:"iv"`
	OpenInterest float64  `json:"open_interest"`
	Gamma        *float64 `json:"gamma"`
}

var newYork = mustLoadNewYork()

func mustLoadNewYork() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.UTC
	}
	return loc
}

// DecodeCBOE reads a delayed-quotes options document into a snapshot. Spot is
// the session close when positive, otherwise the current price.
func DecodeCBOE(r io.Reader) (*gex.Snapshot, error) {
	var doc cboeDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding chain document: %w", err)
	}

	spot := doc.Data.Close
	if spot <= 0 {
		spot = doc.Data.CurrentPrice
	}
	if spot <= 0 {
		return nil, ErrMissingSpot
	}

	asOf, err := time.ParseInLocation(lastTradeLayout, doc.Data.LastTradeTime, newYork)
	if err != nil {
		return nil, fmt.Errorf("parsing last_trade_time %q: %w", doc.Data.LastTradeTime, err)
	}

	snap := &gex.Snapshot{
		Ticker:    strings.TrimPrefix(doc.Data.Symbol, "_"),
		Spot:      spot,
		AsOf:      asOf,
		Contracts: make([]gex.Contract, 0, len(doc.Data.Options)),
	}

	for i, opt := range doc.Data.Options {
		sym, err := ParseSymbol(opt.Option)
		if err != nil {
			return nil, fmt.Errorf("option %d: %w", i, err)
		}
		snap.Contracts = append(snap.Contracts, gex.Contract{
			Symbol:       opt.Option,
			Strike:       sym.StrikeFloat(),
			Expiration:   sym.Expiration,
			Type:         sym.Type,
			ImpliedVol:   opt.IV,
			OpenInterest: int64(opt.OpenInterest),
			VendorGamma:  opt.Gamma,
		})
	}

	if snap.Ticker == "" && len(snap.Contracts) > 0 {
		if sym, err := ParseSymbol(snap.Contracts[0].Symbol); err == nil {
			snap.Ticker = sym.Root
		}
	}

	return snap, nil
}
