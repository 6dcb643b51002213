package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/tuanvumaihuynh/crm-backend/internal/apperr"
	"github.com/tuanvumaihuynh/crm-backend/internal/config"
	"github.com/tuanvumaihuynh/crm-backend/internal/log"
	"github.com/tuanvumaihuynh/crm-backend/internal/repository"
	"github.com/tuanvumaihuynh/crm-backend/internal/service"
	"github.com/tuanvumaihuynh/crm-backend/internal/storage/db"
	"github.com/tuanvumaihuynh/crm-backend/pkg/ptr"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running seed application: %v\n", err)
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

	dbClient := db.NewClient(pgxPool)

	customerRepository := repository.NewCustomerRepository(dbClient)
	productRepository := repository.NewProductRepository(dbClient)
	outboxMsgRepository := repository.NewOutboxMsgRepository(dbClient)

	customerService := service.NewCustomerService(dbClient, customerRepository, outboxMsgRepository)
	productService := service.NewProductService(dbClient, productRepository)

	customers := []service.CreateCustomerParams{
		{Name: "Alice", Email: "alice@example.com", Phone: ptr.New("+1234567890")},
		{Name: "Bob", Email: "bob@example.com", Phone: ptr.New("123-456-7890")},
		{Name: "Carol", Email: "carol@example.com"},
	}
	for _, params := range customers {
		if _, err := customerService.CreateCustomer(ctx, params); err != nil {
			if apperr.IsExpected(err) {
				logger.InfoContext(ctx, "skipping customer", slog.String("email", params.Email), slog.String("reason", apperr.Message(err)))
				continue
			}
			return fmt.Errorf("error seeding customer %s: %w", params.Email, err)
		}
		logger.InfoContext(ctx, "seeded customer", slog.String("email", params.Email))
	}

	products := []service.CreateProductParams{
		{Name: "Laptop", Price: 999.99, Stock: 10},
		{Name: "Mouse", Price: 19.99, Stock: 100},
		{Name: "Keyboard", Price: 49.99, Stock: 50},
	}
	for _, params := range products {
		if _, err := productService.CreateProduct(ctx, params); err != nil {
			if apperr.IsExpected(err) {
				logger.InfoContext(ctx, "skipping product", slog.String("name", params.Name), slog.String("reason", apperr.Message(err)))
				continue
			}
			return fmt.Errorf("error seeding product %s: %w", params.Name, err)
		}
		logger.InfoContext(ctx, "seeded product", slog.String("name", params.Name))
	}

	logger.InfoContext(ctx, "seeding complete")

	return nil
}
