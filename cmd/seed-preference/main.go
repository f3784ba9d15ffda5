// seed-preference writes the singleton preference row.
//
// Usage:
//
//	go run ./cmd/seed-preference -grace-days 30 -company "Toko Maju"
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"bitbucket.org/mmdatafocus/pos_backend/config"
	"bitbucket.org/mmdatafocus/pos_backend/models"
	"bitbucket.org/mmdatafocus/pos_backend/store"
)

func main() {
	graceDays := flag.Int("grace-days", 30, "days after creation within which a payoff counts as early")
	company := flag.String("company", "", "company name printed on receipts")
	address := flag.String("address", "", "company address")
	language := flag.String("language", "id", "UI language")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.LogLevel)
	ctx := context.Background()

	db, err := config.ConnectDatabaseWithRetry(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect database: %v\n", err)
		os.Exit(1)
	}
	if err := models.MigrateTable(db); err != nil {
		fmt.Fprintf(os.Stderr, "failed to migrate: %v\n", err)
		os.Exit(1)
	}
	rdb, _, err := config.ConnectRedisWithRetry(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect redis: %v\n", err)
		os.Exit(1)
	}

	input := models.NewPreference{
		MaxPelunasanHari: graceDays,
		Language:         *language,
		CompanyName:      *company,
		CompanyAddress:   *address,
	}
	if err := input.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// rdb is passed so the cached preference is invalidated for running servers
	pref, err := store.NewPreferenceStore(db, rdb, cfg.Redis.CacheTTL, logger).Upsert(ctx, input.ToPreference())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to save preference: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Preference saved: max_pelunasan_hari=%d company=%q\n", pref.MaxPelunasanHari, pref.CompanyName)
}
