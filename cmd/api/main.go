package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"bookcatalog/internal/book"
	"bookcatalog/internal/config"
	apphttp "bookcatalog/internal/http"
	"bookcatalog/internal/store"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("loading configuration")
	}

	bookStore, closeStore, err := openStore(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("opening store")
	}
	defer closeStore()

	router := apphttp.NewRouter(cfg, bookStore, log)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info().Str("addr", cfg.Addr).Str("backend", cfg.StoreBackend).Msg("starting server")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server error")
	}
}

func openStore(cfg config.Config, log zerolog.Logger) (book.Store, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		return store.NewMemory(), func() {}, nil

	case config.BackendFile:
		s, err := store.NewFile(cfg.DataFile, log)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil

	case config.BackendPostgres:
		pool, err := openDB(cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("dsn", redactDSN(cfg.DatabaseDSN)).Msg("database connection OK")
		return store.NewBookPG(pool), pool.Close, nil

	case config.BackendRedis:
		s, err := store.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	}
	// config.Load already rejected unknown backends
	return nil, nil, fmt.Errorf("unknown store backend: %s", cfg.StoreBackend)
}

func openDB(dsn string) (*pgxpool.Pool, error) {
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func redactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}
