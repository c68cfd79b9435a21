package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"

	"github.com/pflow-xyz/go-treasury/journal"
	"github.com/pflow-xyz/go-treasury/service"
	"github.com/pflow-xyz/go-treasury/store"
)

func serve(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", ":8080", "Listen address")
	dbPath := fs.String("db", "treasury.db", "Ledger database path")
	journalPath := fs.String("journal", "treasury.journal", "Operation journal path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	st, err := store.NewSQLiteStore(*dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	jrnl, err := journal.OpenFile(*journalPath)
	if err != nil {
		return err
	}
	defer jrnl.Close()

	svc := service.New(st, service.WithJournal(jrnl), service.WithLogger(logger))
	if err := svc.LoadAll(context.Background()); err != nil {
		return err
	}

	logger.Info("treasury API listening", "addr", *addr, "db", *dbPath)
	return http.ListenAndServe(*addr, svc.Handler())
}
