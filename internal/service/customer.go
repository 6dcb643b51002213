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
	"github.com/tuanvumaihuynh/crm-backend/internal/validation"
	"github.com/tuanvumaihuynh/crm-backend/pkg/outbox"
	"github.com/tuanvumaihuynh/crm-backend/pkg/ptr"
)

const customerCreatedMessage = "Customer created successfully"

type CreateCustomerParams struct {
	Name  string
	Email string
	Phone *string
}

type CreateCustomerResult struct {
	Customer model.Customer
	Message  string
}

// BulkCreateCustomersResult carries the customers that were created plus one
// error string per rejected entry, tagged with the entry's input index.
type BulkCreateCustomersResult struct {
	Customers []model.Customer
	Errors    []string
}

type CustomerService interface {
	CreateCustomer(ctx context.Context, params CreateCustomerParams) (CreateCustomerResult, error)
	BulkCreateCustomers(ctx context.Context, params []CreateCustomerParams) (BulkCreateCustomersResult, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (model.Customer, error)
	ListCustomers(ctx context.Context, params repository.ListCustomersParams) ([]model.Customer, error)
}

type customerService struct {
	db            db.DB
	customerRepo  repository.CustomerRepository
	outboxMsgRepo repository.OutboxMsgRepository
}

func NewCustomerService(
	db db.DB,
	customerRepo repository.CustomerRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
) CustomerService {
	return &customerService{
		db:            db,
		customerRepo:  customerRepo,
		outboxMsgRepo: outboxMsgRepo,
	}
}

func (s *customerService) CreateCustomer(ctx context.Context, params CreateCustomerParams) (CreateCustomerResult, error) {
	if err := validateContact(params); err != nil {
		return CreateCustomerResult{}, err
	}

	var customer model.Customer
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		created, err := s.createOne(ctx, db, params)
		if err != nil {
			return err
		}

		customer = created
		return nil
	}); err != nil {
		if apperr.IsExpected(err) {
			return CreateCustomerResult{}, err
		}
		return CreateCustomerResult{}, fmt.Errorf("db with tx: %w", err)
	}

	return CreateCustomerResult{
		Customer: customer,
		Message:  customerCreatedMessage,
	}, nil
}

// BulkCreateCustomers processes entries in input order. Entries failing
// validation or uniqueness are recorded as "[i] <reason>" and skipped; the
// remaining creations commit together. A store failure aborts the whole
// batch.
func (s *customerService) BulkCreateCustomers(ctx context.Context, params []CreateCustomerParams) (BulkCreateCustomersResult, error) {
	result := BulkCreateCustomersResult{
		Customers: make([]model.Customer, 0, len(params)),
		Errors:    make([]string, 0),
	}

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		seenEmails := make(map[string]struct{}, len(params))

		for i, entry := range params {
			if err := validateContact(entry); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("[%d] %s", i, apperr.Message(err)))
				continue
			}

			// Duplicates within the batch are rejected on the second
			// occurrence, same as an already-committed email.
			if _, dup := seenEmails[entry.Email]; dup {
				result.Errors = append(result.Errors, fmt.Sprintf("[%d] %s", i, apperr.CustomerEmailExistsErr.Msg()))
				continue
			}

			customer, err := s.createOne(ctx, db, entry)
			if err != nil {
				if apperr.IsExpected(err) {
					result.Errors = append(result.Errors, fmt.Sprintf("[%d] %s", i, apperr.Message(err)))
					continue
				}
				return err
			}

			seenEmails[entry.Email] = struct{}{}
			result.Customers = append(result.Customers, customer)
		}

		return nil
	}); err != nil {
		return BulkCreateCustomersResult{}, fmt.Errorf("db with tx: %w", err)
	}

	return result, nil
}

// createOne validates uniqueness, persists the customer and enqueues the
// customer created event on the given transactional handle.
func (s *customerService) createOne(ctx context.Context, db db.DB, params CreateCustomerParams) (model.Customer, error) {
	customerRepo := s.customerRepo.WithDB(db)

	exists, err := customerRepo.EmailExists(ctx, params.Email)
	if err != nil {
		return model.Customer{}, fmt.Errorf("customer repository email exists: %w", err)
	}
	if exists {
		return model.Customer{}, apperr.CustomerEmailExistsErr
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.Customer{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	phone := params.Phone
	if phone != nil && *phone == "" {
		phone = nil
	}

	customer := model.Customer{
		ID:        id,
		Name:      params.Name,
		Email:     params.Email,
		Phone:     phone,
		CreatedAt: time.Now(),
	}

	if err := customerRepo.CreateCustomer(ctx, customer); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.Customer{}, apperr.CustomerEmailExistsErr
		}
		return model.Customer{}, fmt.Errorf("customer repository create customer: %w", err)
	}

	ev := event.CustomerCreatedEvent{
		CustomerID: customer.ID.String(),
		Name:       customer.Name,
		Email:      customer.Email,
		Phone:      customer.Phone,
	}
	evBytes, err := json.Marshal(ev)
	if err != nil {
		return model.Customer{}, fmt.Errorf("marshal event: %w", err)
	}

	if err := s.outboxMsgRepo.
		WithDB(db).
		CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
			Topic:        event.TopicCustomerCreated,
			Headers:      outbox.BuildHeaders(ctx),
			Payload:      evBytes,
			PartitionKey: ptr.New(customer.ID.String()),
		}); err != nil {
		return model.Customer{}, fmt.Errorf("outbox msg repository create outbox msg: %w", err)
	}

	return customer, nil
}

func (s *customerService) GetCustomer(ctx context.Context, id uuid.UUID) (model.Customer, error) {
	customer, err := s.customerRepo.GetCustomerByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Customer{}, apperr.CustomerNotFoundErr
		}
		return model.Customer{}, fmt.Errorf("customer repository get customer by id: %w", err)
	}

	return customer, nil
}

func (s *customerService) ListCustomers(ctx context.Context, params repository.ListCustomersParams) ([]model.Customer, error) {
	customers, err := s.customerRepo.ListCustomers(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("customer repository list customers: %w", err)
	}

	return customers, nil
}

func validateContact(params CreateCustomerParams) error {
	if err := validation.Contact(params.Email, params.Phone); err != nil {
		switch {
		case errors.Is(err, validation.ErrInvalidEmail):
			return apperr.CustomerInvalidEmailErr
		case errors.Is(err, validation.ErrInvalidPhone):
			return apperr.CustomerInvalidPhoneErr
		default:
			return err
		}
	}
	return nil
}
