package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "init":
		if err := initLedger(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "issue":
		if err := issue(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "redeem":
		if err := redeem(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "pause":
		if err := pauseResume(args, true); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "resume":
		if err := pauseResume(args, false); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "health":
		if err := health(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "journal":
		if err := showJournal(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "serve":
		if err := serve(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "help", "-h", "--help":
		printUsage()
	case "version", "-v", "--version":
		fmt.Println("treasury version 1.0.0")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`treasury - collateral-backed token issuance ledger

Usage:
  treasury <command> [options]

Commands:
  init       Create a new ledger with initial collateral and supply
  issue      Pledge collateral and mint new supply
  redeem     Burn supply and release collateral
  pause      Halt issuance and redemption (governance only)
  resume     Lift a governance halt (governance only)
  health     Check the collateralization invariant
  journal    Show the operation journal
  serve      Run the HTTP API
  help       Show this help message
  version    Show version information

Examples:
  # Create a ledger backed by one collateral entry
  treasury init --collateral 15000 --supply 10000 --governance gov --owner owner

  # Mint 1 unit against 150 of fresh collateral
  treasury issue --id <ledger-id> --collateral 150 --amount 1 --recipient alice

  # Burn 1 unit and release 150 of collateral
  treasury redeem --id <ledger-id> --amount 1 --reduction 150 --caller alice

  # Run the API on port 8080
  treasury serve --addr :8080 --db treasury.db

For command-specific help, run:
  treasury <command> --help`)
}
