// cmd/seed loads the reference traceability scenario into DATABASE_URL.
// Usage: go run ./cmd/seed
package main

import (
	"context"
	"os"
	"time"

	"haccptrace/internal/config"
	"haccptrace/internal/infra"
	"haccptrace/internal/seed"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// The seed always migrates: it is run against fresh databases.
	db, err := infra.NewDatabase(cfg.DatabaseURL, true)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	f, err := seed.Scenario(ctx, db)
	if err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
	log.Info().
		Str("incoming_lot_L1", f.L1.String()).
		Str("customer_deli_co", f.DeliCo.String()).
		Str("barcode", f.Barcode).
		Msg("try GET /v1/trace/chain/" + f.L1.String())
}
