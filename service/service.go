// Package service exposes treasury ledgers over an HTTP JSON API. Every
// mutating call runs the ledger operation, persists the resulting snapshot
// with an optimistic version check, and records the outcome in the
// operation journal. Rejected operations mutate nothing and map to
// distinguishable status codes.
package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/pflow-xyz/go-treasury/journal"
	"github.com/pflow-xyz/go-treasury/ledger"
	"github.com/pflow-xyz/go-treasury/store"
	"github.com/pflow-xyz/go-treasury/token"
)

// Service is the HTTP service wrapping a snapshot store and the live
// ledger instances it manages.
type Service struct {
	mu      sync.Mutex
	store   store.Store
	jrnl    *journal.Writer
	logger  *slog.Logger
	ledgers map[string]*managed
	started time.Time
}

// managed pairs a live ledger with its holding book and last persisted
// version.
type managed struct {
	ledger  *ledger.TreasuryLedger
	book    *token.Book
	version int64
}

// Option configures a Service.
type Option func(*Service)

// WithJournal attaches an operation journal.
func WithJournal(w *journal.Writer) Option {
	return func(s *Service) { s.jrnl = w }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New creates a service backed by the given store.
func New(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:   st,
		logger:  slog.Default(),
		ledgers: make(map[string]*managed),
		started: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadAll restores every persisted ledger into memory. Restored ledgers
// run without a holding book: balance bookkeeping belongs to the external
// holding primitive, whose persistence is out of scope here.
func (s *Service) LoadAll(ctx context.Context) error {
	ids, err := s.store.List(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		snap, version, err := s.store.Load(ctx, id)
		if err != nil {
			return err
		}
		l, err := ledger.Restore(snap, nil)
		if err != nil {
			return err
		}
		s.ledgers[id] = &managed{ledger: l, version: version}
	}
	return nil
}

// Handler returns the HTTP handler for the service.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /ledgers", s.handleCreate)
	mux.HandleFunc("GET /ledgers", s.handleList)
	mux.HandleFunc("GET /ledgers/{id}", s.handleGet)
	mux.HandleFunc("GET /ledgers/{id}/health", s.handleLedgerHealth)
	mux.HandleFunc("POST /ledgers/{id}/issue", s.handleIssue)
	mux.HandleFunc("POST /ledgers/{id}/redeem", s.handleRedeem)
	mux.HandleFunc("POST /ledgers/{id}/pause", s.handlePause)
	mux.HandleFunc("POST /ledgers/{id}/resume", s.handleResume)
	mux.HandleFunc("POST /ledgers/{id}/valuation", s.handleValuation)
	mux.HandleFunc("POST /ledgers/{id}/transfer", s.handleTransfer)
	mux.HandleFunc("GET /ledgers/{id}/balances/{holder}", s.handleBalance)

	return mux
}

// get returns the managed ledger for an ID.
func (s *Service) get(id string) (*managed, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.ledgers[id]
	return m, ok
}

// persist saves the ledger's current snapshot at the next version.
func (s *Service) persist(ctx context.Context, m *managed) error {
	snap := m.ledger.Snapshot()
	version, err := s.store.Save(ctx, snap, m.version)
	if err != nil {
		return err
	}
	m.version = version
	return nil
}

// record journals an operation outcome, if a journal is attached.
func (s *Service) record(e journal.Entry) {
	if s.jrnl == nil {
		return
	}
	if err := s.jrnl.Record(e); err != nil {
		s.logger.Error("journal write failed", "op", e.Operation, "error", err)
	}
}

// statusFor maps ledger and store errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, ledger.ErrPaused):
		return http.StatusLocked
	case errors.Is(err, ledger.ErrInsufficientCollateral),
		errors.Is(err, ledger.ErrInsufficientSupply),
		errors.Is(err, ledger.ErrEmptyCollateralPool),
		errors.Is(err, ledger.ErrExcessiveReduction),
		errors.Is(err, ledger.ErrSupplyOverflow),
		errors.Is(err, token.ErrInsufficientBalance),
		errors.Is(err, token.ErrBalanceOverflow),
		errors.Is(err, store.ErrVersionConflict):
		return http.StatusConflict
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
