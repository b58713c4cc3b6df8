package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"custodia/internal/config"
	"custodia/internal/infra/blobfs"
	"custodia/internal/infra/crypto"
	"custodia/internal/infra/db"
	"custodia/internal/usecase"
)

// Offline verification runs directly against the persisted stores, outside
// the serving process, so an operator can check a ledger that refuses
// writes.
func runVerifyLedger(args []string) int {
	fs := flag.NewFlagSet("verify-ledger", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var outPath string
	fs.StringVar(&outPath, "out", "", "output JSON path (default stdout)")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	verifier, cleanup, err := buildVerifier()
	if err != nil {
		fmt.Fprintf(os.Stderr, "verify-ledger: %v\n", err)
		return 1
	}
	defer cleanup()

	report, err := verifier.VerifyLedger(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "verify-ledger: %v\n", err)
		return 1
	}
	return writeReport(outPath, report)
}

func runVerifyArtifact(args []string) int {
	fs := flag.NewFlagSet("verify-artifact", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var artifactID string
	var outPath string
	fs.StringVar(&artifactID, "id", "", "artifact ID to verify")
	fs.StringVar(&outPath, "out", "", "output JSON path (default stdout)")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if artifactID == "" {
		fmt.Fprintln(os.Stderr, "verify-artifact requires --id")
		return 1
	}

	verifier, cleanup, err := buildVerifier()
	if err != nil {
		fmt.Fprintf(os.Stderr, "verify-artifact: %v\n", err)
		return 1
	}
	defer cleanup()

	report, err := verifier.VerifyArtifact(context.Background(), artifactID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "verify-artifact: %v\n", err)
		return 1
	}
	return writeReport(outPath, report)
}

func buildVerifier() (*usecase.Verifier, func(), error) {
	cfg := config.FromEnv()
	if cfg.PostgresDSN == "" {
		return nil, nil, fmt.Errorf("POSTGRES_DSN is required for offline verification")
	}
	store, err := db.Open(cfg.PostgresDSN)
	if err != nil {
		return nil, nil, err
	}
	blobs, err := blobfs.New(cfg.BlobDir)
	if err != nil {
		return nil, nil, err
	}
	hasher := crypto.NewHasher(cfg.MaxContentBytes)
	return usecase.NewVerifier(store, blobs, hasher, nil), func() {}, nil
}

func writeReport(path string, report any) int {
	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal report: %v\n", err)
		return 1
	}
	if err := writeOutput(path, payload); err != nil {
		fmt.Fprintf(os.Stderr, "write report: %v\n", err)
		return 1
	}
	return 0
}
