package gex

import "math"

// ZeroGamma finds the first spot level at which the All curve changes sign
// and linearly interpolates between the two straddling points. Points must be
// sorted by ascending spot. Later crossings are ignored.
func ZeroGamma(points []ProfilePoint) (float64, error) {
	for i := 0; i+1 < len(points); i++ {
		lo, hi := points[i], points[i+1]
		if signum(lo.All) == signum(hi.All) {
			continue
		}
		return hi.Spot - (hi.Spot-lo.Spot)*hi.All/(hi.All-lo.All), nil
	}
	return math.NaN(), ErrNoZeroCrossing
}

func signum(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
