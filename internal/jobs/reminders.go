package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tuanvumaihuynh/crm-backend/internal/repository"
)

func (s *Service) reminders(ctx context.Context) error {
	now := s.now()
	since := now.Add(-s.cfg.ReminderWindow)

	orders, err := s.orderSvc.ListOrders(ctx, repository.ListOrdersParams{
		Filter: repository.OrderFilter{OrderDateGte: &since},
	})
	if err != nil {
		return fmt.Errorf("list recent orders: %w", err)
	}

	ts := timestamp(now)
	lines := make([]string, 0, len(orders))
	for _, order := range orders {
		customer, err := s.customerSvc.GetCustomer(ctx, order.CustomerID)
		if err != nil {
			s.logger.ErrorContext(ctx, "error resolving order customer",
				slog.String("order_id", order.ID.String()),
				slog.Any("error", err),
			)
			continue
		}
		lines = append(lines, fmt.Sprintf("%s - Order ID %s, Customer %s", ts, order.ID, customer.Email))
	}

	if err := s.remindersAudit.Append(lines...); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "order reminders processed", slog.Int("count", len(lines)))
	return nil
}
