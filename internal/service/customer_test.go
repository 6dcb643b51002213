package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/crm-backend/internal/apperr"
	"github.com/tuanvumaihuynh/crm-backend/internal/event"
	"github.com/tuanvumaihuynh/crm-backend/internal/service"
	"github.com/tuanvumaihuynh/crm-backend/pkg/ptr"
)

func newCustomerServiceForTest() (service.CustomerService, *fakeCustomerRepo, *fakeOutboxMsgRepo) {
	customerRepo := newFakeCustomerRepo()
	outboxMsgRepo := newFakeOutboxMsgRepo()
	svc := service.NewCustomerService(&fakeDB{}, customerRepo, outboxMsgRepo)
	return svc, customerRepo, outboxMsgRepo
}

func TestCreateCustomer(t *testing.T) {
	ctx := context.Background()

	t.Run("Should create customer and enqueue event", func(t *testing.T) {
		svc, customerRepo, outboxMsgRepo := newCustomerServiceForTest()

		result, err := svc.CreateCustomer(ctx, service.CreateCustomerParams{
			Name:  "Alice",
			Email: "alice@example.com",
			Phone: ptr.New("+1234567890"),
		})

		require.NoError(t, err)
		assert.Equal(t, "Customer created successfully", result.Message)
		assert.Equal(t, "Alice", result.Customer.Name)
		assert.NotZero(t, result.Customer.ID)
		assert.False(t, result.Customer.CreatedAt.IsZero())

		stored, ok := customerRepo.byEmail("alice@example.com")
		require.True(t, ok)
		assert.Equal(t, result.Customer.ID, stored.ID)

		assert.Equal(t, []string{event.TopicCustomerCreated}, outboxMsgRepo.topics())
	})

	t.Run("Should reject malformed email", func(t *testing.T) {
		svc, customerRepo, _ := newCustomerServiceForTest()

		_, err := svc.CreateCustomer(ctx, service.CreateCustomerParams{
			Name:  "Bob",
			Email: "bad-email",
		})

		require.Error(t, err)
		assert.Equal(t, "Invalid email format", apperr.Message(err))
		assert.Empty(t, customerRepo.customers)
	})

	t.Run("Should reject malformed phone", func(t *testing.T) {
		svc, customerRepo, _ := newCustomerServiceForTest()

		_, err := svc.CreateCustomer(ctx, service.CreateCustomerParams{
			Name:  "Bob",
			Email: "bob@example.com",
			Phone: ptr.New("12345"),
		})

		require.Error(t, err)
		assert.Equal(t, "Invalid phone number format", apperr.Message(err))
		assert.Empty(t, customerRepo.customers)
	})

	t.Run("Should accept missing phone", func(t *testing.T) {
		svc, _, _ := newCustomerServiceForTest()

		result, err := svc.CreateCustomer(ctx, service.CreateCustomerParams{
			Name:  "Carol",
			Email: "carol@example.com",
		})

		require.NoError(t, err)
		assert.Nil(t, result.Customer.Phone)
	})

	t.Run("Should reject duplicate email without creating a row", func(t *testing.T) {
		svc, customerRepo, _ := newCustomerServiceForTest()

		_, err := svc.CreateCustomer(ctx, service.CreateCustomerParams{Name: "Alice", Email: "alice@example.com"})
		require.NoError(t, err)

		_, err = svc.CreateCustomer(ctx, service.CreateCustomerParams{Name: "Impostor", Email: "alice@example.com"})

		require.Error(t, err)
		assert.Equal(t, "Email already exists", apperr.Message(err))
		assert.Len(t, customerRepo.customers, 1)
	})

	t.Run("Should propagate store failure", func(t *testing.T) {
		customerRepo := newFakeCustomerRepo()
		customerRepo.createErr = errors.New("connection reset")
		svc := service.NewCustomerService(&fakeDB{}, customerRepo, newFakeOutboxMsgRepo())

		_, err := svc.CreateCustomer(ctx, service.CreateCustomerParams{Name: "Alice", Email: "alice@example.com"})

		require.Error(t, err)
		assert.False(t, apperr.IsExpected(err))
	})
}

func TestBulkCreateCustomers(t *testing.T) {
	ctx := context.Background()

	t.Run("Should isolate per-entry failures and tag them by index", func(t *testing.T) {
		svc, customerRepo, _ := newCustomerServiceForTest()

		result, err := svc.BulkCreateCustomers(ctx, []service.CreateCustomerParams{
			{Name: "A", Email: "a@x.com"},
			{Name: "B", Email: "bad-email"},
			{Name: "C", Email: "a@x.com"},
		})

		require.NoError(t, err)
		require.Len(t, result.Customers, 1)
		assert.Equal(t, "A", result.Customers[0].Name)
		assert.Equal(t, []string{
			"[1] Invalid email format",
			"[2] Email already exists",
		}, result.Errors)
		assert.Len(t, customerRepo.customers, 1)
	})

	t.Run("Should process entries in input order", func(t *testing.T) {
		svc, _, outboxMsgRepo := newCustomerServiceForTest()

		result, err := svc.BulkCreateCustomers(ctx, []service.CreateCustomerParams{
			{Name: "Alice", Email: "alice@example.com", Phone: ptr.New("+1234567890")},
			{Name: "Bob", Email: "bob@example.com", Phone: ptr.New("123-456-7890")},
			{Name: "Carol", Email: "carol@example.com"},
		})

		require.NoError(t, err)
		require.Len(t, result.Customers, 3)
		assert.Empty(t, result.Errors)
		assert.Equal(t, "Alice", result.Customers[0].Name)
		assert.Equal(t, "Bob", result.Customers[1].Name)
		assert.Equal(t, "Carol", result.Customers[2].Name)
		assert.Len(t, outboxMsgRepo.msgs, 3)
	})

	t.Run("Should reject entries conflicting with committed customers", func(t *testing.T) {
		svc, _, _ := newCustomerServiceForTest()

		_, err := svc.CreateCustomer(ctx, service.CreateCustomerParams{Name: "Alice", Email: "alice@example.com"})
		require.NoError(t, err)

		result, err := svc.BulkCreateCustomers(ctx, []service.CreateCustomerParams{
			{Name: "Impostor", Email: "alice@example.com"},
			{Name: "Dave", Email: "dave@example.com"},
		})

		require.NoError(t, err)
		require.Len(t, result.Customers, 1)
		assert.Equal(t, "Dave", result.Customers[0].Name)
		assert.Equal(t, []string{"[0] Email already exists"}, result.Errors)
	})

	t.Run("Should abort the whole batch on store failure", func(t *testing.T) {
		customerRepo := newFakeCustomerRepo()
		customerRepo.createErr = errors.New("transaction aborted")
		svc := service.NewCustomerService(&fakeDB{}, customerRepo, newFakeOutboxMsgRepo())

		_, err := svc.BulkCreateCustomers(ctx, []service.CreateCustomerParams{
			{Name: "A", Email: "a@x.com"},
			{Name: "B", Email: "b@x.com"},
		})

		require.Error(t, err)
		assert.False(t, apperr.IsExpected(err))
	})
}
