package main

import (
	"context"
	"fmt"
	"os"

	"github.com/tuanvumaihuynh/crm-backend/internal/config"
	"github.com/tuanvumaihuynh/crm-backend/internal/log"
	"github.com/tuanvumaihuynh/crm-backend/internal/storage/db"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running migrate application: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	type Config struct {
		Log      config.Log
		Postgres config.Postgres
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log)

	pgxPool, err := db.NewPgxPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("error creating pgx pool: %w", err)
	}
	defer pgxPool.Close()

	if err := db.Migrate(pgxPool); err != nil {
		return fmt.Errorf("error running migrations: %w", err)
	}

	logger.InfoContext(ctx, "migrations applied")

	return nil
}
