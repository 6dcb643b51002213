package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/crm-backend/internal/apperr"
	"github.com/tuanvumaihuynh/crm-backend/internal/event"
	"github.com/tuanvumaihuynh/crm-backend/internal/model"
	"github.com/tuanvumaihuynh/crm-backend/internal/service"
)

type orderTestEnv struct {
	customerRepo  *fakeCustomerRepo
	productRepo   *fakeProductRepo
	orderRepo     *fakeOrderRepo
	outboxMsgRepo *fakeOutboxMsgRepo
	svc           service.OrderService

	customer model.Customer
	laptop   model.Product
	mouse    model.Product
}

func newOrderTestEnv(t *testing.T) *orderTestEnv {
	t.Helper()

	env := &orderTestEnv{
		customerRepo:  newFakeCustomerRepo(),
		productRepo:   newFakeProductRepo(),
		orderRepo:     newFakeOrderRepo(),
		outboxMsgRepo: newFakeOutboxMsgRepo(),
	}
	env.svc = service.NewOrderService(&fakeDB{}, env.customerRepo, env.productRepo, env.orderRepo, env.outboxMsgRepo)

	ctx := context.Background()

	customerSvc := service.NewCustomerService(&fakeDB{}, env.customerRepo, newFakeOutboxMsgRepo())
	created, err := customerSvc.CreateCustomer(ctx, service.CreateCustomerParams{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)
	env.customer = created.Customer

	productSvc := service.NewProductService(&fakeDB{}, env.productRepo)
	env.laptop, err = productSvc.CreateProduct(ctx, service.CreateProductParams{Name: "Laptop", Price: 10.00, Stock: 5})
	require.NoError(t, err)
	env.mouse, err = productSvc.CreateProduct(ctx, service.CreateProductParams{Name: "Mouse", Price: 5.00, Stock: 5})
	require.NoError(t, err)

	return env
}

func TestCreateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("Should freeze total as the sum of product prices", func(t *testing.T) {
		env := newOrderTestEnv(t)

		order, err := env.svc.CreateOrder(ctx, service.CreateOrderParams{
			CustomerID: env.customer.ID,
			ProductIDs: []uuid.UUID{env.laptop.ID, env.mouse.ID},
		})

		require.NoError(t, err)
		assert.Equal(t, 15.00, order.TotalAmount)
		assert.Equal(t, env.customer.ID, order.CustomerID)
		require.Len(t, order.Products, 2)
		assert.Equal(t, env.laptop.ID, order.Products[0].ID)
		assert.Equal(t, env.mouse.ID, order.Products[1].ID)
		assert.False(t, order.OrderDate.IsZero())

		assert.Len(t, env.orderRepo.orders, 1)
		assert.Equal(t, []string{event.TopicOrderCreated}, env.outboxMsgRepo.topics())
	})

	t.Run("Should count a repeated product once", func(t *testing.T) {
		env := newOrderTestEnv(t)

		order, err := env.svc.CreateOrder(ctx, service.CreateOrderParams{
			CustomerID: env.customer.ID,
			ProductIDs: []uuid.UUID{env.laptop.ID, env.laptop.ID, env.mouse.ID},
		})

		require.NoError(t, err)
		assert.Equal(t, 15.00, order.TotalAmount)
		assert.Len(t, order.Products, 2)
	})

	t.Run("Should reject unknown customer", func(t *testing.T) {
		env := newOrderTestEnv(t)

		_, err := env.svc.CreateOrder(ctx, service.CreateOrderParams{
			CustomerID: uuid.New(),
			ProductIDs: []uuid.UUID{env.laptop.ID},
		})

		require.Error(t, err)
		assert.Equal(t, "Invalid customer ID", apperr.Message(err))
		assert.Empty(t, env.orderRepo.orders)
	})

	t.Run("Should reject empty product list", func(t *testing.T) {
		env := newOrderTestEnv(t)

		_, err := env.svc.CreateOrder(ctx, service.CreateOrderParams{
			CustomerID: env.customer.ID,
			ProductIDs: []uuid.UUID{},
		})

		require.Error(t, err)
		assert.Equal(t, "At least one product is required", apperr.Message(err))
		assert.Empty(t, env.orderRepo.orders)
	})

	t.Run("Should create nothing when any product is unresolved", func(t *testing.T) {
		env := newOrderTestEnv(t)
		unknownID := uuid.New()

		_, err := env.svc.CreateOrder(ctx, service.CreateOrderParams{
			CustomerID: env.customer.ID,
			ProductIDs: []uuid.UUID{env.laptop.ID, unknownID},
		})

		require.Error(t, err)
		assert.Equal(t, fmt.Sprintf("Invalid product ID: %s", unknownID), apperr.Message(err))
		assert.Empty(t, env.orderRepo.orders)
		assert.Empty(t, env.outboxMsgRepo.msgs)
	})

	t.Run("Should not recompute total when a product is repriced", func(t *testing.T) {
		env := newOrderTestEnv(t)

		order, err := env.svc.CreateOrder(ctx, service.CreateOrderParams{
			CustomerID: env.customer.ID,
			ProductIDs: []uuid.UUID{env.laptop.ID},
		})
		require.NoError(t, err)

		repriced := env.productRepo.products[env.laptop.ID]
		repriced.Price = 99.99
		env.productRepo.products[env.laptop.ID] = repriced

		stored, err := env.orderRepo.GetOrderByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, 10.00, stored.TotalAmount)
	})
}
