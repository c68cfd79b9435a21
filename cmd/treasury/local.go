package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/pflow-xyz/go-treasury/journal"
	"github.com/pflow-xyz/go-treasury/ledger"
	"github.com/pflow-xyz/go-treasury/store"
)

// withLedger loads a ledger from the store, applies op, and persists the
// result at the next version. A failed op persists nothing.
func withLedger(dbPath, id string, op func(*ledger.TreasuryLedger) error) error {
	st, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	snap, version, err := st.Load(ctx, id)
	if err != nil {
		return err
	}

	l, err := ledger.Restore(snap, nil)
	if err != nil {
		return err
	}
	if err := op(l); err != nil {
		return err
	}

	if _, err := st.Save(ctx, l.Snapshot(), version); err != nil {
		return err
	}
	return printSnapshot(l.Snapshot())
}

func printSnapshot(snap ledger.Snapshot) error {
	out, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func initLedger(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	dbPath := fs.String("db", "treasury.db", "Ledger database path")
	collateral := fs.Uint64("collateral", 0, "Initial collateral value")
	description := fs.String("description", "initial pledge", "Collateral description")
	supply := fs.Uint64("supply", 0, "Initial circulating supply")
	oracleValue := fs.Uint64("oracle", 0, "Initial oracle valuation")
	governance := fs.String("governance", "", "Governance identity")
	owner := fs.String("owner", "", "Owner receiving the initial supply")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *governance == "" || *owner == "" {
		return fmt.Errorf("--governance and --owner are required")
	}

	l, err := ledger.Initialize(ledger.Config{
		Entries: []ledger.CollateralEntry{
			{ID: []byte("genesis"), Description: *description, Value: *collateral},
		},
		InitialSupply: *supply,
		OracleValue:   *oracleValue,
		Governance:    ledger.Identity(*governance),
		Owner:         ledger.Identity(*owner),
	})
	if err != nil {
		return err
	}

	st, err := store.NewSQLiteStore(*dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	if _, err := st.Save(context.Background(), l.Snapshot(), -1); err != nil {
		return err
	}
	fmt.Printf("Created ledger %s\n", l.ID())
	return printSnapshot(l.Snapshot())
}

func issue(args []string) error {
	fs := flag.NewFlagSet("issue", flag.ExitOnError)
	dbPath := fs.String("db", "treasury.db", "Ledger database path")
	id := fs.String("id", "", "Ledger ID")
	collateral := fs.Uint64("collateral", 0, "Additional collateral value pledged")
	amount := fs.Uint64("amount", 0, "Supply to mint")
	recipient := fs.String("recipient", "", "Recipient of the minted units")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("--id is required")
	}

	return withLedger(*dbPath, *id, func(l *ledger.TreasuryLedger) error {
		return l.Issue(*collateral, *amount, ledger.Identity(*recipient))
	})
}

func redeem(args []string) error {
	fs := flag.NewFlagSet("redeem", flag.ExitOnError)
	dbPath := fs.String("db", "treasury.db", "Ledger database path")
	id := fs.String("id", "", "Ledger ID")
	amount := fs.Uint64("amount", 0, "Supply to burn")
	reduction := fs.Uint64("reduction", 0, "Collateral value to release from the last entry")
	caller := fs.String("caller", "", "Holder presenting the units")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("--id is required")
	}

	return withLedger(*dbPath, *id, func(l *ledger.TreasuryLedger) error {
		return l.Redeem(ledger.Identity(*caller), *amount, *reduction)
	})
}

func pauseResume(args []string, pause bool) error {
	name := "resume"
	if pause {
		name = "pause"
	}
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	dbPath := fs.String("db", "treasury.db", "Ledger database path")
	id := fs.String("id", "", "Ledger ID")
	caller := fs.String("caller", "", "Governance identity")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("--id is required")
	}

	return withLedger(*dbPath, *id, func(l *ledger.TreasuryLedger) error {
		if pause {
			return l.Pause(ledger.Identity(*caller))
		}
		return l.Resume(ledger.Identity(*caller))
	})
}

func health(args []string) error {
	fs := flag.NewFlagSet("health", flag.ExitOnError)
	dbPath := fs.String("db", "treasury.db", "Ledger database path")
	id := fs.String("id", "", "Ledger ID")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("--id is required")
	}

	st, err := store.NewSQLiteStore(*dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	snap, _, err := st.Load(context.Background(), *id)
	if err != nil {
		return err
	}
	l, err := ledger.Restore(snap, nil)
	if err != nil {
		return err
	}

	if l.CheckHealth() {
		fmt.Println("healthy: collateralization ratio holds")
		return nil
	}
	fmt.Println("UNHEALTHY: ledger is under-collateralized")
	return nil
}

func showJournal(args []string) error {
	fs := flag.NewFlagSet("journal", flag.ExitOnError)
	path := fs.String("file", "treasury.journal", "Journal file path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	entries, err := journal.ParseFile(*path)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Printf("%s  %-18s ledger=%s actor=%s amount=%d collateral=%d result=%s\n",
			e.Timestamp.Format("2006-01-02 15:04:05"),
			e.Operation, e.LedgerID, e.Actor, e.Amount, e.Collateral, e.Result)
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "journal is empty")
	}
	return nil
}
