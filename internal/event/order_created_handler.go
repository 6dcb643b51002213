package event

import (
	"context"
	"log/slog"
)

const TopicOrderCreated = "order.created"

type OrderCreatedEvent struct {
	OrderID       string   `json:"order_id"`
	CustomerID    string   `json:"customer_id"`
	CustomerEmail string   `json:"customer_email"`
	ProductIDs    []string `json:"product_ids"`
	TotalAmount   float64  `json:"total_amount"`
}

func (s *Service) handleOrderCreatedEvent(ctx context.Context, ev OrderCreatedEvent) error {
	s.logger.InfoContext(ctx, "handling order created event", slog.Any("event", ev))
	return nil
}
