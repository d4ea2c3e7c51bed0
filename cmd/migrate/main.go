// Command migrate applies or inspects the schema migrations embedded in the
// binary.
//
// Usage:
//
//	migrate [up|down|status]
//
// Reads the same configuration as the server (CONFIG_PATH, DATABASE_DSN).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/heartmarshall/genomic-reports/internal/adapter/postgres"
	"github.com/heartmarshall/genomic-reports/internal/app"
	"github.com/heartmarshall/genomic-reports/internal/config"
)

func main() {
	flag.Parse()
	cmd := flag.Arg(0)
	if cmd == "" {
		cmd = "up"
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("connect to database: %v", err)
	}
	defer pool.Close()

	provider, closeDB, err := app.NewMigrator(pool)
	if err != nil {
		log.Fatalf("migrator: %v", err)
	}
	defer closeDB() //nolint:errcheck

	switch cmd {
	case "up":
		results, err := provider.Up(ctx)
		if err != nil {
			log.Fatalf("up: %v", err)
		}
		for _, r := range results {
			fmt.Printf("applied %d %s (%s)\n", r.Source.Version, r.Source.Path, r.Duration)
		}
	case "down":
		r, err := provider.Down(ctx)
		if err != nil {
			log.Fatalf("down: %v", err)
		}
		fmt.Printf("rolled back %d %s\n", r.Source.Version, r.Source.Path)
	case "status":
		statuses, err := provider.Status(ctx)
		if err != nil {
			log.Fatalf("status: %v", err)
		}
		for _, s := range statuses {
			fmt.Printf("%-8s %d %s\n", s.State, s.Source.Version, s.Source.Path)
		}
	default:
		fmt.Fprintln(os.Stderr, "Usage: migrate [up|down|status]")
		os.Exit(1)
	}
}
