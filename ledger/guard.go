package ledger

// Identity is an opaque caller identity supplied by the hosting
// environment's authentication layer.
type Identity string

// GovernanceGuard holds the governance identity and the emergency pause
// flag. The governance identity is fixed at initialization; the flag is
// flipped only through Pause and Resume, and read only by the issue and
// redeem preconditions.
type GovernanceGuard struct {
	Governance Identity `json:"governance"`
	Paused     bool     `json:"paused"`
}

// authorize reports whether the caller is the governance identity.
func (g *GovernanceGuard) authorize(caller Identity) bool {
	return caller == g.Governance
}

// pause halts issuance and redemption.
func (g *GovernanceGuard) pause(caller Identity) error {
	if !g.authorize(caller) {
		return ErrUnauthorized
	}
	g.Paused = true
	return nil
}

// resume lifts the halt.
func (g *GovernanceGuard) resume(caller Identity) error {
	if !g.authorize(caller) {
		return ErrUnauthorized
	}
	g.Paused = false
	return nil
}
