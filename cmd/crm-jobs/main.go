package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/tuanvumaihuynh/crm-backend/internal/config"
	"github.com/tuanvumaihuynh/crm-backend/internal/jobs"
	"github.com/tuanvumaihuynh/crm-backend/internal/log"
	"github.com/tuanvumaihuynh/crm-backend/internal/repository"
	"github.com/tuanvumaihuynh/crm-backend/internal/service"
	"github.com/tuanvumaihuynh/crm-backend/internal/storage/db"
	"github.com/tuanvumaihuynh/crm-backend/internal/telemetry"
	"github.com/tuanvumaihuynh/crm-backend/pkg/cmdutil"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running jobs application: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log      config.Log
		Postgres config.Postgres
		Jobs     config.Jobs
		Otel     config.Otel
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log)

	cleanupTracer, err := telemetry.InitTracer(ctx, cfg.Otel)
	if err != nil {
		return fmt.Errorf("error initializing tracer: %w", err)
	}
	defer func() {
		if err := cleanupTracer(ctx); err != nil {
			logger.ErrorContext(ctx, "error cleaning up tracer", slog.Any("error", err))
		}
	}()

	pgxPool, err := db.NewPgxPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("error creating pgx pool: %w", err)
	}
	defer pgxPool.Close()

	dbClient := db.NewClient(pgxPool)

	customerRepository := repository.NewCustomerRepository(dbClient)
	productRepository := repository.NewProductRepository(dbClient)
	orderRepository := repository.NewOrderRepository(dbClient)
	outboxMsgRepository := repository.NewOutboxMsgRepository(dbClient)

	customerService := service.NewCustomerService(dbClient, customerRepository, outboxMsgRepository)
	productService := service.NewProductService(dbClient, productRepository)
	orderService := service.NewOrderService(dbClient, customerRepository, productRepository, orderRepository, outboxMsgRepository)
	reportService := service.NewReportService(dbClient, customerRepository, orderRepository)

	svc := jobs.NewService(cfg.Jobs, logger, dbClient, productService, reportService, orderService, customerService)
	cleanup := svc.Run(ctx)
	logger.InfoContext(ctx, "jobs service started")

	<-cmdutil.InterruptChan()

	logger.InfoContext(ctx, "jobs service is shutting down")
	cleanup()

	logger.InfoContext(ctx, "jobs service is stopped")

	return nil
}
