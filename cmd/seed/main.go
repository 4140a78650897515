package main

import (
	"context"
	"os"

	"bookcatalog/internal/book"
	"bookcatalog/internal/config"
	"bookcatalog/internal/store"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Seeds a handful of books through the configured store backend.
func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("loading configuration")
	}

	ctx := context.Background()

	var bookStore book.Store
	switch cfg.StoreBackend {
	case config.BackendFile:
		bookStore, err = store.NewFile(cfg.DataFile, log)
	case config.BackendPostgres:
		var pool *pgxpool.Pool
		pool, err = pgxpool.New(ctx, cfg.DatabaseDSN)
		if err == nil {
			defer pool.Close()
			bookStore = store.NewBookPG(pool)
		}
	case config.BackendRedis:
		bookStore, err = store.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	default:
		log.Fatal().Str("backend", cfg.StoreBackend).Msg("seeding requires a durable backend")
	}
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("opening store")
	}

	samples := []book.Book{
		{Title: "Dune", Description: "Desert planet epic", Pages: 412},
		{Title: "The Go Programming Language", Description: "The definitive Go reference", Pages: 380},
		{Title: "A Wizard of Earthsea", Description: "A young mage learns the cost of power", Pages: 183},
		{Title: "The Pragmatic Programmer", Description: "From journeyman to master", Pages: 352},
		{Title: "Neuromancer", Description: "Console cowboys in cyberspace", Pages: 271},
	}

	for _, b := range samples {
		created, err := bookStore.Create(ctx, b)
		if err != nil {
			log.Fatal().Err(err).Str("title", b.Title).Msg("seeding book")
		}
		log.Info().Str("id", created.ID).Str("title", created.Title).Msg("seeded")
	}
	log.Info().Int("count", len(samples)).Msg("seed complete")
}
