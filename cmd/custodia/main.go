package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	args := os.Args[1:]
	cmd := "serve"
	if len(args) > 0 {
		cmd = args[0]
		args = args[1:]
	}

	switch cmd {
	case "serve":
		os.Exit(runServe(args))
	case "verify-ledger":
		os.Exit(runVerifyLedger(args))
	case "verify-artifact":
		os.Exit(runVerifyArtifact(args))
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		fmt.Fprintln(os.Stderr, "usage: custodia [serve|verify-ledger|verify-artifact] [flags]")
		os.Exit(2)
	}
}
