// Package journal records ledger operations as an append-only audit
// trail. Entries are written as JSON Lines so a journal can be tailed,
// shipped, and parsed back without any surrounding framing.
package journal

import (
	"time"

	"github.com/google/uuid"
)

// Operation names recorded in the journal.
const (
	OpInitialize      = "initialize"
	OpIssue           = "issue"
	OpRedeem          = "redeem"
	OpPause           = "pause"
	OpResume          = "resume"
	OpUpdateValuation = "update_valuation"
)

// Entry is a single journaled operation. Failed operations are recorded
// too: Result holds "ok" for a commit and the error text for a rejection.
type Entry struct {
	OpID       string    `json:"op_id"`
	LedgerID   string    `json:"ledger_id"`
	Operation  string    `json:"operation"`
	Actor      string    `json:"actor,omitempty"`
	Amount     uint64    `json:"amount,omitempty"`
	Collateral uint64    `json:"collateral,omitempty"`
	Result     string    `json:"result"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewEntry creates an entry with a fresh operation ID and timestamp.
func NewEntry(ledgerID, operation, actor string) Entry {
	return Entry{
		OpID:      uuid.New().String(),
		LedgerID:  ledgerID,
		Operation: operation,
		Actor:     actor,
		Result:    "ok",
		Timestamp: time.Now().UTC(),
	}
}

// WithResult sets the result from an operation error. A nil error records
// "ok".
func (e Entry) WithResult(err error) Entry {
	if err != nil {
		e.Result = err.Error()
	} else {
		e.Result = "ok"
	}
	return e
}

// OK reports whether the entry recorded a committed operation.
func (e Entry) OK() bool {
	return e.Result == "ok"
}
