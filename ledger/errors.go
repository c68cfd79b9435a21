package ledger

import "errors"

var (
	// Initialization and issuance errors
	ErrInsufficientCollateral = errors.New("ledger: collateral below minimum ratio")
	ErrSupplyOverflow         = errors.New("ledger: circulating supply overflow")

	// Redemption errors
	ErrInsufficientSupply  = errors.New("ledger: burn amount exceeds circulating supply")
	ErrEmptyCollateralPool = errors.New("ledger: collateral pool has no entries")
	ErrExcessiveReduction  = errors.New("ledger: reduction exceeds last collateral entry")

	// Governance errors
	ErrPaused       = errors.New("ledger: operations are paused")
	ErrUnauthorized = errors.New("ledger: caller is not the governance identity")
)
