// Package ledger implements a collateral-backed token issuance ledger.
//
// A TreasuryLedger tracks a circulating supply of unit-of-account tokens,
// backs that supply with an ordered pool of declared collateral entries,
// and enforces a minimum collateralization ratio on every supply-changing
// operation. A governance-controlled pause flag halts issuance and
// redemption without destroying state.
//
// Every operation either fully commits or leaves the ledger untouched:
// new values are computed into temporaries, validated, and written back in
// one step, so a failed precondition never exposes a half-applied
// mutation.
package ledger

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/holiman/uint256"
)

// Minter is the supply-affecting surface of the token holding primitive.
// General transfers between holders are the primitive's own business; the
// ledger only drives the mint and burn paths, and only while presenting
// the authority it was created with.
type Minter interface {
	// Bind attaches the ledger's mint authority. Called once during
	// Initialize; subsequent mint and burn calls must present the same
	// authority pointer.
	Bind(auth *MintAuthority) error

	// Mint creates amount new units held by to.
	Mint(auth *MintAuthority, to Identity, amount uint64) error

	// Burn destroys amount units held by from.
	Burn(auth *MintAuthority, from Identity, amount uint64) error
}

// TreasuryLedger is the root aggregate. It owns one CollateralPool, one
// ValuationOracle, one GovernanceGuard and the sole MintAuthority; all
// public operations enter through it and the collateralization invariant
// is checked nowhere else.
type TreasuryLedger struct {
	mu sync.Mutex

	id     string
	pool   *CollateralPool
	oracle *ValuationOracle
	guard  *GovernanceGuard

	authority *MintAuthority
	minter    Minter
}

// Config carries the inputs to Initialize.
type Config struct {
	// Entries are the initial collateral pledges, in pool order.
	Entries []CollateralEntry

	// InitialSupply is the circulating supply minted at creation.
	InitialSupply uint64

	// OracleValue seeds the valuation oracle.
	OracleValue uint64

	// Governance is the only identity allowed to pause and resume.
	Governance Identity

	// Owner receives the initial supply.
	Owner Identity

	// Minter is the token holding primitive. Optional: a nil Minter
	// means the hosting environment does its own balance bookkeeping
	// and the ledger only maintains the supply counter.
	Minter Minter
}

// Initialize brings a new ledger into existence. It fails with
// ErrInsufficientCollateral unless the pledged collateral covers the
// initial supply at MinRatio, and mints the initial supply to the owner.
// The mint authority is created here and never leaves the aggregate.
func Initialize(cfg Config) (*TreasuryLedger, error) {
	pool := &CollateralPool{
		Entries:           make([]CollateralEntry, len(cfg.Entries)),
		CirculatingSupply: cfg.InitialSupply,
	}
	copy(pool.Entries, cfg.Entries)

	if !meetsRatio(pool.TotalCollateral(), cfg.InitialSupply) {
		return nil, ErrInsufficientCollateral
	}

	l := &TreasuryLedger{
		id:   uuid.New().String(),
		pool: pool,
		oracle: &ValuationOracle{
			LatestValue: cfg.OracleValue,
			LastUpdated: time.Now().UTC(),
		},
		guard:  &GovernanceGuard{Governance: cfg.Governance},
		minter: cfg.Minter,
	}
	l.authority = newMintAuthority(l.id)

	if l.minter != nil {
		if err := l.minter.Bind(l.authority); err != nil {
			return nil, err
		}
		if err := l.minter.Mint(l.authority, cfg.Owner, cfg.InitialSupply); err != nil {
			return nil, err
		}
	}

	return l, nil
}

// Restore rehydrates a ledger from a previously captured snapshot, for
// example when reloading persisted state at startup. The snapshot is
// trusted as-is: no ratio check is re-run, since a redeem may legitimately
// have left the ledger unhealthy. A fresh mint authority is created for
// the restored instance; the caller must have discarded the original
// instance, otherwise two authorities for the same ledger ID exist.
func Restore(snap Snapshot, minter Minter) (*TreasuryLedger, error) {
	pool := &CollateralPool{
		Entries:           make([]CollateralEntry, len(snap.Entries)),
		CirculatingSupply: snap.Supply,
	}
	copy(pool.Entries, snap.Entries)

	l := &TreasuryLedger{
		id:   snap.ID,
		pool: pool,
		oracle: &ValuationOracle{
			LatestValue: snap.OracleValue,
			LastUpdated: snap.OracleTime,
		},
		guard:  &GovernanceGuard{Governance: snap.Governance, Paused: snap.Paused},
		minter: minter,
	}
	l.authority = newMintAuthority(l.id)

	if minter != nil {
		if err := minter.Bind(l.authority); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// ID returns the ledger instance identifier.
func (l *TreasuryLedger) ID() string {
	return l.id
}

// Issue pledges additional collateral and mints amount new units to the
// recipient. The pledge is appended as a new pool entry. Fails with
// ErrPaused while governance has halted operations, and with
// ErrInsufficientCollateral when existing plus pledged collateral does not
// cover the post-issue supply at MinRatio. On any error no state changes.
func (l *TreasuryLedger) Issue(additionalCollateralValue, amount uint64, recipient Identity) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.guard.Paused {
		return ErrPaused
	}

	newSupply := l.pool.CirculatingSupply + amount
	if newSupply < l.pool.CirculatingSupply {
		return ErrSupplyOverflow
	}

	// requiredCollateral = (supply + amount) * MinRatio / 100, multiply
	// first, in 256-bit width.
	required := requiredCollateral(uint256.NewInt(newSupply))
	total := l.pool.TotalCollateral()
	total.Add(total, uint256.NewInt(additionalCollateralValue))
	if total.Lt(required) {
		return ErrInsufficientCollateral
	}

	// All checks passed. Mint is the last fallible step; pool counters
	// are committed only after it succeeds so a mint failure leaves the
	// pool untouched.
	if l.minter != nil {
		if err := l.minter.Mint(l.authority, recipient, amount); err != nil {
			return err
		}
	}

	l.pool.append(CollateralEntry{
		ID:          []byte(uuid.New().String()),
		Description: "pledged on issue",
		Value:       additionalCollateralValue,
	})
	l.pool.CirculatingSupply = newSupply
	return nil
}

// Redeem burns burnAmount units presented by the caller and releases
// collateralValueReduction of value from the most recently appended pool
// entry. Fails with ErrPaused, ErrInsufficientSupply when the burn exceeds
// circulating supply, ErrEmptyCollateralPool when no entries exist, and
// ErrExcessiveReduction when the last entry holds less than the requested
// reduction. On any error no state changes.
//
// Redeem does not re-check the collateralization ratio afterwards: a burn
// paired with a proportionate reduction only improves the ratio, but a
// caller reducing collateral far in excess of the supply it retires can
// leave the ledger under-collateralized. CheckHealth reports, and never
// repairs, that condition.
func (l *TreasuryLedger) Redeem(caller Identity, burnAmount, collateralValueReduction uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.guard.Paused {
		return ErrPaused
	}
	if l.pool.CirculatingSupply < burnAmount {
		return ErrInsufficientSupply
	}
	last := l.pool.last()
	if last == nil {
		return ErrEmptyCollateralPool
	}
	if last.Value < collateralValueReduction {
		return ErrExcessiveReduction
	}

	if l.minter != nil {
		if err := l.minter.Burn(l.authority, caller, burnAmount); err != nil {
			return err
		}
	}

	last.Value -= collateralValueReduction
	l.pool.CirculatingSupply -= burnAmount
	return nil
}

// Pause halts issuance and redemption. Only the governance identity may
// call it.
func (l *TreasuryLedger) Pause(caller Identity) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.guard.pause(caller)
}

// Resume lifts a governance halt. Only the governance identity may call
// it.
func (l *TreasuryLedger) Resume(caller Identity) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.guard.resume(caller)
}

// UpdateValuation records a pushed oracle value. Only the governance
// identity may call it; the ledger never fetches or computes a valuation.
func (l *TreasuryLedger) UpdateValuation(caller Identity, value uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.guard.authorize(caller) {
		return ErrUnauthorized
	}
	l.oracle.LatestValue = value
	l.oracle.LastUpdated = time.Now().UTC()
	return nil
}

// CheckHealth reports whether the collateralization invariant holds right
// now. It never mutates and never fails.
func (l *TreasuryLedger) CheckHealth() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return meetsRatio(l.pool.TotalCollateral(), l.pool.CirculatingSupply)
}

// Snapshot returns a consistent copy of the ledger's observable state.
type Snapshot struct {
	ID          string            `json:"id"`
	Entries     []CollateralEntry `json:"entries"`
	Supply      uint64            `json:"supply"`
	OracleValue uint64            `json:"oracle_value"`
	OracleTime  time.Time         `json:"oracle_time"`
	Governance  Identity          `json:"governance"`
	Paused      bool              `json:"paused"`
	Healthy     bool              `json:"healthy"`
}

// Snapshot captures the current state under the instance lock.
func (l *TreasuryLedger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	pool := l.pool.Clone()
	return Snapshot{
		ID:          l.id,
		Entries:     pool.Entries,
		Supply:      pool.CirculatingSupply,
		OracleValue: l.oracle.LatestValue,
		OracleTime:  l.oracle.LastUpdated,
		Governance:  l.guard.Governance,
		Paused:      l.guard.Paused,
		Healthy:     meetsRatio(pool.TotalCollateral(), pool.CirculatingSupply),
	}
}
