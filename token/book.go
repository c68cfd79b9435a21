// Package token provides the holding and transfer primitive for minted
// units. A Book moves value between holders without ever creating or
// destroying it; the only supply-affecting paths are Mint and Burn, which
// require the mint authority the book was bound to at ledger
// initialization.
package token

import (
	"errors"
	"sync"

	"github.com/pflow-xyz/go-treasury/ledger"
)

var (
	ErrInsufficientBalance = errors.New("token: insufficient balance")
	ErrBalanceOverflow     = errors.New("token: balance overflow")
	ErrNotBound            = errors.New("token: book has no mint authority")
	ErrAlreadyBound        = errors.New("token: book already bound to an authority")
	ErrWrongAuthority      = errors.New("token: authority does not match bound authority")
)

// Book tracks unit balances per holder identity.
type Book struct {
	mu       sync.RWMutex
	auth     *ledger.MintAuthority
	balances map[ledger.Identity]uint64
}

// NewBook creates an empty book. It cannot mint until a ledger binds its
// authority via Bind.
func NewBook() *Book {
	return &Book{balances: make(map[ledger.Identity]uint64)}
}

// Bind attaches the ledger's mint authority. A book is bound exactly once.
func (b *Book) Bind(auth *ledger.MintAuthority) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.auth != nil {
		return ErrAlreadyBound
	}
	b.auth = auth
	return nil
}

// checkAuthority verifies the presented authority is the bound one.
// Pointer identity is the check: only the ledger that bound the book holds
// the pointer.
func (b *Book) checkAuthority(auth *ledger.MintAuthority) error {
	if b.auth == nil {
		return ErrNotBound
	}
	if auth != b.auth {
		return ErrWrongAuthority
	}
	return nil
}

// Mint creates amount new units held by to.
func (b *Book) Mint(auth *ledger.MintAuthority, to ledger.Identity, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkAuthority(auth); err != nil {
		return err
	}
	next := b.balances[to] + amount
	if next < b.balances[to] {
		return ErrBalanceOverflow
	}
	b.balances[to] = next
	return nil
}

// Burn destroys amount units held by from.
func (b *Book) Burn(auth *ledger.MintAuthority, from ledger.Identity, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkAuthority(auth); err != nil {
		return err
	}
	if b.balances[from] < amount {
		return ErrInsufficientBalance
	}
	b.balances[from] -= amount
	return nil
}

// Transfer moves amount units from one holder to another. Total value held
// by the book is conserved: the call either moves exactly amount or moves
// nothing.
func (b *Book) Transfer(from, to ledger.Identity, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.balances[from] < amount {
		return ErrInsufficientBalance
	}
	if from == to {
		return nil
	}
	next := b.balances[to] + amount
	if next < b.balances[to] {
		return ErrBalanceOverflow
	}
	b.balances[from] -= amount
	b.balances[to] = next
	return nil
}

// Balance returns the units held by the identity.
func (b *Book) Balance(holder ledger.Identity) uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.balances[holder]
}

// TotalHeld sums all balances. Useful for conservation checks against the
// ledger's circulating supply.
func (b *Book) TotalHeld() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var total uint64
	for _, v := range b.balances {
		total += v
	}
	return total
}

var _ ledger.Minter = (*Book)(nil)
