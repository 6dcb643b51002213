package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tuanvumaihuynh/crm-backend/internal/config"
	"github.com/tuanvumaihuynh/crm-backend/internal/service"
	"github.com/tuanvumaihuynh/crm-backend/internal/storage/db"
)

// Service runs the periodic maintenance jobs: heartbeat, low stock
// restocking, revenue reporting and order reminders. Each job appends
// its outcome to its own audit log so operators can inspect runs
// without querying the database.
type Service struct {
	cfg         config.Jobs
	logger      *slog.Logger
	health      db.HealthChecker
	productSvc  service.ProductService
	reportSvc   service.ReportService
	orderSvc    service.OrderService
	customerSvc service.CustomerService

	heartbeatAudit *AuditLog
	restockAudit   *AuditLog
	reportAudit    *AuditLog
	remindersAudit *AuditLog

	now func() time.Time

	stopChan chan struct{}
}

func NewService(
	cfg config.Jobs,
	logger *slog.Logger,
	health db.HealthChecker,
	productSvc service.ProductService,
	reportSvc service.ReportService,
	orderSvc service.OrderService,
	customerSvc service.CustomerService,
) *Service {
	return &Service{
		cfg:            cfg,
		logger:         logger.With(slog.String("service", "jobs")),
		health:         health,
		productSvc:     productSvc,
		reportSvc:      reportSvc,
		orderSvc:       orderSvc,
		customerSvc:    customerSvc,
		heartbeatAudit: NewAuditLog(cfg.HeartbeatLogPath),
		restockAudit:   NewAuditLog(cfg.RestockLogPath),
		reportAudit:    NewAuditLog(cfg.ReportLogPath),
		remindersAudit: NewAuditLog(cfg.RemindersLogPath),
		now:            time.Now,
		stopChan:       make(chan struct{}),
	}
}

type CleanupFunc func()

func (s *Service) Run(ctx context.Context) CleanupFunc {
	ctx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup
	stoppedChan := make(chan struct{})

	wg.Go(func() { s.loop(ctx, "heartbeat", s.cfg.HeartbeatInterval, s.heartbeat) })
	wg.Go(func() { s.loop(ctx, "restock", s.cfg.RestockInterval, s.restock) })
	wg.Go(func() { s.loop(ctx, "report", s.cfg.ReportInterval, s.report) })
	wg.Go(func() { s.loop(ctx, "reminders", s.cfg.RemindersInterval, s.reminders) })

	go func() {
		wg.Wait()
		close(stoppedChan)
	}()

	return func() {
		close(s.stopChan)
		select {
		case <-stoppedChan:
		case <-time.After(5 * time.Second):
			cancel()
		}
	}
}

func (s *Service) loop(ctx context.Context, name string, interval time.Duration, job func(ctx context.Context) error) {
	logger := s.logger.With(slog.String("job", name))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-ticker.C:
			if err := job(ctx); err != nil {
				logger.ErrorContext(ctx, "error running job", slog.Any("error", err))
			}
		}
	}
}
