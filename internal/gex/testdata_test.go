package gex

import "time"

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// sampleSnapshot is a small SPX-like chain as of Tuesday 2024-01-16:
// a 0DTE expiry, the January monthly and the February monthly.
func sampleSnapshot() *Snapshot {
	asOf := time.Date(2024, 1, 16, 16, 15, 0, 0, time.UTC)
	var contracts []Contract
	for _, exp := range []string{"2024-01-16", "2024-01-19", "2024-02-16"} {
		for _, k := range []float64{4600, 4700, 4800} {
			contracts = append(contracts,
				Contract{Strike: k, Expiration: date(exp), Type: Call, ImpliedVol: 0.12, OpenInterest: 1500},
				Contract{Strike: k, Expiration: date(exp), Type: Put, ImpliedVol: 0.16, OpenInterest: 3000},
			)
		}
	}
	return &Snapshot{Ticker: "SPX", Spot: 4700, AsOf: asOf, Contracts: contracts}
}
