package gex

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// ContractMultiplier is the number of shares one contract controls.
const ContractMultiplier = 100

// GammaInput holds the Black-Scholes inputs for a single gamma evaluation.
type GammaInput struct {
	Spot     float64
	Strike   float64
	Vol      float64
	T        float64 // years
	Rate     float64
	Dividend float64
	Type     OptionType
}

// Gamma returns the Black-Scholes gamma of a European option.
//
// A zero time to expiry or zero volatility yields 0. Calls and puts are
// evaluated with separate closed forms: the put side uses
// K·e^(−rT)·φ(d2)/(S²σ√T), which agrees with the call form analytically but
// is kept distinct so the two paths cross-check each other. The result is
// always an unsigned magnitude.
//
// in.Type must be Call or Put; Gamma panics on any other value. Snapshot
// and contract validation reject unknown types before the engine prices.
func Gamma(in GammaInput) float64 {
	if in.T == 0 || in.Vol == 0 {
		return 0
	}

	volSqrtT := in.Vol * math.Sqrt(in.T)
	d1 := (math.Log(in.Spot/in.Strike) + (in.Rate-in.Dividend+0.5*in.Vol*in.Vol)*in.T) / volSqrtT
	d2 := d1 - volSqrtT

	switch in.Type {
	case Call:
		return math.Exp(-in.Dividend*in.T) * distuv.UnitNormal.Prob(d1) / (in.Spot * volSqrtT)
	case Put:
		return in.Strike * math.Exp(-in.Rate*in.T) * distuv.UnitNormal.Prob(d2) / (in.Spot * in.Spot * volSqrtT)
	default:
		panic(fmt.Sprintf("gex: gamma for invalid option type %d", uint8(in.Type)))
	}
}

// NotionalExposure is the dollar gamma exposure per 1% move in spot.
func NotionalExposure(gamma, spot float64, openInterest int64) float64 {
	return float64(openInterest) * ContractMultiplier * spot * spot * 0.01 * gamma
}

// ShareExposure is the exposure in shares of the underlying per 1 point move.
func ShareExposure(gamma, spot float64, openInterest int64) float64 {
	return float64(openInterest) * ContractMultiplier * spot * gamma
}

// TheoreticalExposure is gamma scaled by open interest and multiplier only.
func TheoreticalExposure(gamma float64, openInterest int64) float64 {
	return float64(openInterest) * ContractMultiplier * gamma
}

// sign returns +1 for calls and -1 for puts (dealers long call gamma,
// short put gamma).
func (t OptionType) sign() float64 {
	if t == Put {
		return -1
	}
	return 1
}
