package ledger

import "github.com/holiman/uint256"

// CollateralEntry is a single pledged collateral position. Entries are
// appended when collateral is pledged and reduced in place on redemption;
// they are never removed, so a fully drained entry remains as a zero-value
// record.
type CollateralEntry struct {
	ID          []byte `json:"id"`
	Description string `json:"description"`
	Value       uint64 `json:"value"`
}

// CollateralPool holds the ordered collateral entries and the circulating
// supply counter. Order matters: redemption always reduces the most
// recently appended entry, so the entries form an append-only, tail-mutable
// sequence rather than a keyed set.
type CollateralPool struct {
	Entries           []CollateralEntry `json:"entries"`
	CirculatingSupply uint64            `json:"circulating_supply"`
}

// TotalCollateral sums all entry values. The sum is returned as a 256-bit
// integer so that pools whose combined value exceeds uint64 still compare
// exactly against the ratio requirement.
func (p *CollateralPool) TotalCollateral() *uint256.Int {
	total := new(uint256.Int)
	v := new(uint256.Int)
	for i := range p.Entries {
		total.Add(total, v.SetUint64(p.Entries[i].Value))
	}
	return total
}

// append adds a pledged entry to the tail of the pool.
func (p *CollateralPool) append(e CollateralEntry) {
	p.Entries = append(p.Entries, e)
}

// last returns the most recently appended entry, or nil for an empty pool.
func (p *CollateralPool) last() *CollateralEntry {
	if len(p.Entries) == 0 {
		return nil
	}
	return &p.Entries[len(p.Entries)-1]
}

// Clone creates a deep copy of the pool.
func (p *CollateralPool) Clone() *CollateralPool {
	clone := &CollateralPool{
		Entries:           make([]CollateralEntry, len(p.Entries)),
		CirculatingSupply: p.CirculatingSupply,
	}
	for i, e := range p.Entries {
		id := make([]byte, len(e.ID))
		copy(id, e.ID)
		clone.Entries[i] = CollateralEntry{ID: id, Description: e.Description, Value: e.Value}
	}
	return clone
}
