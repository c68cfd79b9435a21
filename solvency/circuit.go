// Package solvency proves that a ledger meets its collateralization
// requirement without revealing the composition of the pool. The circuit
// takes the individual collateral entry values as private inputs and the
// circulating supply as the public input, and asserts
//
//	sum(entries) * 100 - supply * 150 >= 0
//
// via binary range decomposition, so a verifier learns that the ratio
// holds but not how the collateral is split across entries.
package solvency

import (
	"github.com/consensys/gnark/frontend"
)

// RatioBits bounds the range decomposition of the ratio difference. Entry
// values and supply are 64-bit; with up to MaxEntries entries the scaled
// collateral sum stays below 2^75, so 80 bits covers any non-negative
// difference.
const RatioBits = 80

// MaxEntries is the largest pool size a single circuit instance covers.
// Smaller pools pad with zero-value entries, which do not affect the sum.
const MaxEntries = 16

// RatioCircuit asserts the collateralization invariant over a fixed number
// of entry slots.
type RatioCircuit struct {
	// Entries are the collateral entry values, zero-padded to the slot
	// count. Private: the pool composition is not revealed.
	Entries []frontend.Variable

	// Supply is the circulating supply being attested against.
	Supply frontend.Variable `gnark:",public"`
}

// NewRatioCircuit allocates a circuit with the given number of entry
// slots.
func NewRatioCircuit(slots int) *RatioCircuit {
	return &RatioCircuit{Entries: make([]frontend.Variable, slots)}
}

// Define encodes the invariant as constraints.
func (c *RatioCircuit) Define(api frontend.API) error {
	// Range-check every input to 64 bits so field arithmetic cannot wrap.
	sum := frontend.Variable(0)
	for _, e := range c.Entries {
		api.ToBinary(e, 64)
		sum = api.Add(sum, e)
	}
	api.ToBinary(c.Supply, 64)

	// sum*100 - supply*150 must be representable as a non-negative
	// RatioBits-wide value.
	lhs := api.Mul(sum, 100)
	rhs := api.Mul(c.Supply, 150)
	diff := api.Sub(lhs, rhs)
	api.ToBinary(diff, RatioBits)

	return nil
}
