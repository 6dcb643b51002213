package service

import (
	"context"
	"fmt"

	"github.com/tuanvumaihuynh/crm-backend/internal/model"
	"github.com/tuanvumaihuynh/crm-backend/internal/repository"
	"github.com/tuanvumaihuynh/crm-backend/internal/storage/db"
)

type ReportService interface {
	GenerateReport(ctx context.Context) (model.Report, error)
}

type reportService struct {
	db           db.DB
	customerRepo repository.CustomerRepository
	orderRepo    repository.OrderRepository
}

func NewReportService(
	db db.DB,
	customerRepo repository.CustomerRepository,
	orderRepo repository.OrderRepository,
) ReportService {
	return &reportService{
		db:           db,
		customerRepo: customerRepo,
		orderRepo:    orderRepo,
	}
}

// GenerateReport computes the summary counts and the revenue sum against one
// transaction so the order count and the revenue never skew apart.
func (s *reportService) GenerateReport(ctx context.Context) (model.Report, error) {
	var report model.Report

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		totalCustomers, err := s.customerRepo.WithDB(db).CountCustomers(ctx)
		if err != nil {
			return fmt.Errorf("customer repository count customers: %w", err)
		}

		stats, err := s.orderRepo.WithDB(db).GetOrderStats(ctx)
		if err != nil {
			return fmt.Errorf("order repository get order stats: %w", err)
		}

		report = model.Report{
			TotalCustomers: totalCustomers,
			TotalOrders:    stats.TotalOrders,
			TotalRevenue:   stats.TotalRevenue,
		}

		return nil
	}); err != nil {
		return model.Report{}, fmt.Errorf("db with tx: %w", err)
	}

	return report, nil
}
