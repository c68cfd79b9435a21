package service

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/pflow-xyz/go-treasury/journal"
	"github.com/pflow-xyz/go-treasury/ledger"
	"github.com/pflow-xyz/go-treasury/token"
)

// HealthResponse is the response for the service health endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Ledgers int    `json:"ledgers"`
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	count := len(s.ledgers)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Uptime:  time.Since(s.started).String(),
		Ledgers: count,
	})
}

// CollateralEntryRequest declares one collateral pledge.
type CollateralEntryRequest struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Value       uint64 `json:"value"`
}

// CreateRequest is the body for POST /ledgers.
type CreateRequest struct {
	Entries       []CollateralEntryRequest `json:"entries"`
	InitialSupply uint64                   `json:"initial_supply"`
	OracleValue   uint64                   `json:"oracle_value"`
	Governance    string                   `json:"governance"`
	Owner         string                   `json:"owner"`
}

// CreateResponse returns the new ledger's identity.
type CreateResponse struct {
	ID string `json:"id"`
}

func (s *Service) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	entries := make([]ledger.CollateralEntry, len(req.Entries))
	for i, e := range req.Entries {
		entries[i] = ledger.CollateralEntry{
			ID:          []byte(e.ID),
			Description: e.Description,
			Value:       e.Value,
		}
	}

	book := token.NewBook()
	l, err := ledger.Initialize(ledger.Config{
		Entries:       entries,
		InitialSupply: req.InitialSupply,
		OracleValue:   req.OracleValue,
		Governance:    ledger.Identity(req.Governance),
		Owner:         ledger.Identity(req.Owner),
		Minter:        book,
	})
	if err != nil {
		s.record(journal.NewEntry("", journal.OpInitialize, req.Owner).WithResult(err))
		writeError(w, statusFor(err), err)
		return
	}

	m := &managed{ledger: l, book: book, version: -1}
	if err := s.persist(r.Context(), m); err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	s.mu.Lock()
	s.ledgers[l.ID()] = m
	s.mu.Unlock()

	s.record(journal.NewEntry(l.ID(), journal.OpInitialize, req.Owner))
	s.logger.Info("ledger created",
		"ledger", l.ID(),
		"supply", req.InitialSupply,
		"entries", len(entries))
	writeJSON(w, http.StatusCreated, CreateResponse{ID: l.ID()})
}

// ListResponse lists managed ledger IDs.
type ListResponse struct {
	Ledgers []string `json:"ledgers"`
}

func (s *Service) handleList(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, ListResponse{Ledgers: ids})
}

func (s *Service) handleGet(w http.ResponseWriter, r *http.Request) {
	m, ok := s.get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, errLedgerNotFound)
		return
	}
	writeJSON(w, http.StatusOK, m.ledger.Snapshot())
}

// LedgerHealthResponse reports the collateralization invariant.
type LedgerHealthResponse struct {
	Healthy bool `json:"healthy"`
}

func (s *Service) handleLedgerHealth(w http.ResponseWriter, r *http.Request) {
	m, ok := s.get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, errLedgerNotFound)
		return
	}
	writeJSON(w, http.StatusOK, LedgerHealthResponse{Healthy: m.ledger.CheckHealth()})
}

// IssueRequest is the body for POST /ledgers/{id}/issue.
type IssueRequest struct {
	CollateralValue uint64 `json:"collateral_value"`
	Amount          uint64 `json:"amount"`
	Recipient       string `json:"recipient"`
}

func (s *Service) handleIssue(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	m, ok := s.get(id)
	if !ok {
		writeError(w, http.StatusNotFound, errLedgerNotFound)
		return
	}

	var req IssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	err := m.ledger.Issue(req.CollateralValue, req.Amount, ledger.Identity(req.Recipient))
	e := journal.NewEntry(id, journal.OpIssue, req.Recipient).WithResult(err)
	e.Amount = req.Amount
	e.Collateral = req.CollateralValue
	s.record(e)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	if err := s.persist(r.Context(), m); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	s.logger.Info("issued", "ledger", id, "amount", req.Amount, "collateral", req.CollateralValue)
	writeJSON(w, http.StatusOK, m.ledger.Snapshot())
}

// RedeemRequest is the body for POST /ledgers/{id}/redeem.
type RedeemRequest struct {
	Caller                   string `json:"caller"`
	BurnAmount               uint64 `json:"burn_amount"`
	CollateralValueReduction uint64 `json:"collateral_value_reduction"`
}

func (s *Service) handleRedeem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	m, ok := s.get(id)
	if !ok {
		writeError(w, http.StatusNotFound, errLedgerNotFound)
		return
	}

	var req RedeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	err := m.ledger.Redeem(ledger.Identity(req.Caller), req.BurnAmount, req.CollateralValueReduction)
	e := journal.NewEntry(id, journal.OpRedeem, req.Caller).WithResult(err)
	e.Amount = req.BurnAmount
	e.Collateral = req.CollateralValueReduction
	s.record(e)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	if err := s.persist(r.Context(), m); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	s.logger.Info("redeemed", "ledger", id, "burn", req.BurnAmount, "reduction", req.CollateralValueReduction)
	writeJSON(w, http.StatusOK, m.ledger.Snapshot())
}

// GovernanceRequest carries the caller identity for pause, resume and
// valuation updates.
type GovernanceRequest struct {
	Caller string `json:"caller"`
	Value  uint64 `json:"value,omitempty"`
}

func (s *Service) handlePause(w http.ResponseWriter, r *http.Request) {
	s.governanceOp(w, r, journal.OpPause, func(m *managed, caller ledger.Identity, _ uint64) error {
		return m.ledger.Pause(caller)
	})
}

func (s *Service) handleResume(w http.ResponseWriter, r *http.Request) {
	s.governanceOp(w, r, journal.OpResume, func(m *managed, caller ledger.Identity, _ uint64) error {
		return m.ledger.Resume(caller)
	})
}

func (s *Service) handleValuation(w http.ResponseWriter, r *http.Request) {
	s.governanceOp(w, r, journal.OpUpdateValuation, func(m *managed, caller ledger.Identity, value uint64) error {
		return m.ledger.UpdateValuation(caller, value)
	})
}

func (s *Service) governanceOp(w http.ResponseWriter, r *http.Request, op string,
	apply func(*managed, ledger.Identity, uint64) error) {

	id := r.PathValue("id")
	m, ok := s.get(id)
	if !ok {
		writeError(w, http.StatusNotFound, errLedgerNotFound)
		return
	}

	var req GovernanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	err := apply(m, ledger.Identity(req.Caller), req.Value)
	s.record(journal.NewEntry(id, op, req.Caller).WithResult(err))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	if err := s.persist(r.Context(), m); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	s.logger.Info(op, "ledger", id, "caller", req.Caller)
	writeJSON(w, http.StatusOK, m.ledger.Snapshot())
}

// TransferRequest is the body for POST /ledgers/{id}/transfer. Transfers
// move already-minted units between holders; supply and collateral are
// untouched.
type TransferRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

func (s *Service) handleTransfer(w http.ResponseWriter, r *http.Request) {
	m, ok := s.get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, errLedgerNotFound)
		return
	}
	if m.book == nil {
		writeError(w, http.StatusConflict, errNoBook)
		return
	}

	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := m.book.Transfer(ledger.Identity(req.From), ledger.Identity(req.To), req.Amount); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BalanceResponse reports a holder's units.
type BalanceResponse struct {
	Holder  string `json:"holder"`
	Balance uint64 `json:"balance"`
}

func (s *Service) handleBalance(w http.ResponseWriter, r *http.Request) {
	m, ok := s.get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, errLedgerNotFound)
		return
	}
	if m.book == nil {
		writeError(w, http.StatusConflict, errNoBook)
		return
	}

	holder := r.PathValue("holder")
	writeJSON(w, http.StatusOK, BalanceResponse{
		Holder:  holder,
		Balance: m.book.Balance(ledger.Identity(holder)),
	})
}
