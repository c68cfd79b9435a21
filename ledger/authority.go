package ledger

// MintAuthority is the capability to create new supply units. Exactly one
// authority exists per ledger, created inside Initialize and held by the
// TreasuryLedger aggregate for its whole lifetime. Holding the pointer is
// the authorization: code that was never handed the authority cannot mint,
// and the zero value is useless because mint checks pointer identity
// against the authority the book was created with.
type MintAuthority struct {
	ledgerID string
}

// LedgerID identifies the ledger this authority mints for.
func (a *MintAuthority) LedgerID() string {
	return a.ledgerID
}

// newMintAuthority is unexported so no code outside the package can forge
// an authority. Initialize calls it exactly once per ledger.
func newMintAuthority(ledgerID string) *MintAuthority {
	return &MintAuthority{ledgerID: ledgerID}
}
