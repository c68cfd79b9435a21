package ledger

import "time"

// ValuationOracle stores the latest externally reported valuation and when
// it was recorded. The ledger never computes a valuation itself; it only
// accepts pushed values.
type ValuationOracle struct {
	LatestValue uint64    `json:"latest_value"`
	LastUpdated time.Time `json:"last_updated"`
}

// Age returns how long ago the valuation was recorded.
func (o *ValuationOracle) Age(now time.Time) time.Duration {
	return now.Sub(o.LastUpdated)
}
