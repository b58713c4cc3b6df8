package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"custodia/internal/config"
	"custodia/internal/domain"
	httpapi "custodia/internal/http"
	"custodia/internal/infra/auth"
	"custodia/internal/infra/blobfs"
	"custodia/internal/infra/crypto"
	"custodia/internal/infra/custmem"
	"custodia/internal/infra/db"
	"custodia/internal/infra/policy"
	"custodia/internal/infra/ratelimit"
	"custodia/internal/usecase"
)

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var migrate bool
	fs.BoolVar(&migrate, "migrate", false, "run database migrations before serving")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	cfg := config.FromEnv()
	if cfg.JWTSecret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET is required")
		return 1
	}

	var store usecase.CustodyStore
	if cfg.PostgresDSN != "" {
		pgStore, err := db.Open(cfg.PostgresDSN)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open postgres: %v\n", err)
			return 1
		}
		if migrate {
			if err := pgStore.Migrate(); err != nil {
				fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
				return 1
			}
		}
		store = pgStore
	} else {
		log.Printf("POSTGRES_DSN not set, using in-memory custody store")
		store = custmem.New()
	}

	blobs, err := blobfs.New(cfg.BlobDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open blob store: %v\n", err)
		return 1
	}

	var limiter domain.RateLimiter
	if cfg.RedisAddr != "" {
		limiter, err = ratelimit.NewRedisLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "redis rate limiter: %v\n", err)
			return 1
		}
	} else {
		limiter = ratelimit.NewMemoryLimiter(ratelimit.MemoryConfig{})
	}

	engine, err := policy.NewEngine(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "policy engine: %v\n", err)
		return 1
	}

	hasher := crypto.NewHasher(cfg.MaxContentBytes)
	ledger := usecase.NewLedger(store, nil)
	tracker := usecase.NewCustodyTracker(ledger, store, blobs, hasher, nil)
	verifier := usecase.NewVerifier(store, blobs, hasher, nil)

	srv := httpapi.NewServer(cfg, httpapi.ServerDeps{
		Tracker:       tracker,
		Ledger:        ledger,
		Verifier:      verifier,
		Blobs:         blobs,
		Authenticator: auth.NewJWTAuthenticator(cfg.JWTSecret),
		Authorizer:    engine,
		Limiter:       limiter,
	})
	if err := srv.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "server exited: %v\n", err)
		return 1
	}
	return 0
}
