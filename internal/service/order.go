package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/crm-backend/internal/apperr"
	"github.com/tuanvumaihuynh/crm-backend/internal/event"
	"github.com/tuanvumaihuynh/crm-backend/internal/model"
	"github.com/tuanvumaihuynh/crm-backend/internal/repository"
	"github.com/tuanvumaihuynh/crm-backend/internal/storage/db"
	"github.com/tuanvumaihuynh/crm-backend/pkg/outbox"
	"github.com/tuanvumaihuynh/crm-backend/pkg/ptr"
)

type CreateOrderParams struct {
	CustomerID uuid.UUID
	ProductIDs []uuid.UUID
}

type OrderService interface {
	CreateOrder(ctx context.Context, params CreateOrderParams) (model.Order, error)
	ListOrders(ctx context.Context, params repository.ListOrdersParams) ([]model.Order, error)
}

type orderService struct {
	db            db.DB
	customerRepo  repository.CustomerRepository
	productRepo   repository.ProductRepository
	orderRepo     repository.OrderRepository
	outboxMsgRepo repository.OutboxMsgRepository
}

func NewOrderService(
	db db.DB,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
) OrderService {
	return &orderService{
		db:            db,
		customerRepo:  customerRepo,
		productRepo:   productRepo,
		orderRepo:     orderRepo,
		outboxMsgRepo: outboxMsgRepo,
	}
}

// CreateOrder resolves the customer and every product, freezes the total as
// the sum of the resolved products' prices and persists the order with its
// full product set in one transaction. An unresolved product ID fails the
// whole operation; no partial order is ever written.
func (s *orderService) CreateOrder(ctx context.Context, params CreateOrderParams) (model.Order, error) {
	var order model.Order

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		customer, err := s.customerRepo.WithDB(db).GetCustomerByID(ctx, params.CustomerID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperr.CustomerNotFoundErr
			}
			return fmt.Errorf("customer repository get customer by id: %w", err)
		}

		productIDs := dedupeIDs(params.ProductIDs)
		if len(productIDs) == 0 {
			return apperr.OrderNoProductsErr
		}

		products, err := s.productRepo.WithDB(db).ListProductsByIDs(ctx, productIDs)
		if err != nil {
			return fmt.Errorf("product repository list products by ids: %w", err)
		}

		productsByID := make(map[uuid.UUID]model.Product, len(products))
		for _, product := range products {
			productsByID[product.ID] = product
		}

		resolved := make([]model.Product, 0, len(productIDs))
		var totalAmount float64
		for _, id := range productIDs {
			product, ok := productsByID[id]
			if !ok {
				return apperr.OrderInvalidProductErr(id)
			}
			resolved = append(resolved, product)
			totalAmount += product.Price
		}

		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("generate uuid v7: %w", err)
		}

		order = model.Order{
			ID:          id,
			CustomerID:  customer.ID,
			Products:    resolved,
			TotalAmount: totalAmount,
			OrderDate:   time.Now(),
		}

		if err := s.orderRepo.WithDB(db).CreateOrder(ctx, order); err != nil {
			return fmt.Errorf("order repository create order: %w", err)
		}

		evProductIDs := make([]string, 0, len(resolved))
		for _, product := range resolved {
			evProductIDs = append(evProductIDs, product.ID.String())
		}
		ev := event.OrderCreatedEvent{
			OrderID:       order.ID.String(),
			CustomerID:    customer.ID.String(),
			CustomerEmail: customer.Email,
			ProductIDs:    evProductIDs,
			TotalAmount:   order.TotalAmount,
		}
		evBytes, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("marshal event: %w", err)
		}

		if err := s.outboxMsgRepo.
			WithDB(db).
			CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
				Topic:        event.TopicOrderCreated,
				Headers:      outbox.BuildHeaders(ctx),
				Payload:      evBytes,
				PartitionKey: ptr.New(order.ID.String()),
			}); err != nil {
			return fmt.Errorf("outbox msg repository create outbox msg: %w", err)
		}

		return nil
	}); err != nil {
		if apperr.IsExpected(err) {
			return model.Order{}, err
		}
		return model.Order{}, fmt.Errorf("db with tx: %w", err)
	}

	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, params repository.ListOrdersParams) ([]model.Order, error) {
	orders, err := s.orderRepo.ListOrders(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("order repository list orders: %w", err)
	}

	return orders, nil
}

// dedupeIDs drops repeated IDs, preserving first-occurrence order. An order
// references a set of products, so a repeated ID contributes once.
func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
