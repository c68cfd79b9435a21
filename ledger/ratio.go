package ledger

import "github.com/holiman/uint256"

// MinRatio is the minimum collateralization ratio in percent. Every
// supply-increasing operation must leave the pool holding at least
// MinRatio/100 units of collateral value per unit of circulating supply:
//
//	sum(entry values) * 100 >= circulatingSupply * MinRatio
const MinRatio = 150

var (
	hundred  = uint256.NewInt(100)
	minRatio = uint256.NewInt(MinRatio)
)

// meetsRatio reports whether the collateralization invariant holds for the
// given totals. Both sides are computed in 256-bit width so the multiply
// can never overflow.
func meetsRatio(totalCollateral *uint256.Int, supply uint64) bool {
	lhs := new(uint256.Int).Mul(totalCollateral, hundred)
	rhs := new(uint256.Int).Mul(uint256.NewInt(supply), minRatio)
	return !lhs.Lt(rhs)
}

// requiredCollateral computes supply * MinRatio / 100 with the multiply
// performed first. Integer division truncates toward zero, which
// under-estimates the requirement by at most 99/100 of a unit; callers
// depend on this exact order of operations.
func requiredCollateral(supply *uint256.Int) *uint256.Int {
	req := new(uint256.Int).Mul(supply, minRatio)
	return req.Div(req, hundred)
}
