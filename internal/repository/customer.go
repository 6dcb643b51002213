package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tuanvumaihuynh/crm-backend/internal/model"
	"github.com/tuanvumaihuynh/crm-backend/internal/storage/db"
)

var (
	// ErrNotFound is returned by Get operations when no row matches.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmail is returned when a customer insert trips the email
	// unique constraint.
	ErrDuplicateEmail = errors.New("duplicate email")
)

// CustomerFilter composes optional predicates, ANDed together. Unset fields
// impose no constraint.
type CustomerFilter struct {
	NameContains   *string
	EmailContains  *string
	CreatedAtGte   *time.Time
	CreatedAtLte   *time.Time
	PhoneHasPrefix *string
}

type ListCustomersParams struct {
	Filter  CustomerFilter
	OrderBy string // name, email or created_at
	Order   SortOrder
}

type CustomerRepository interface {
	WithDB(db db.DB) CustomerRepository
	CreateCustomer(ctx context.Context, customer model.Customer) error
	GetCustomerByID(ctx context.Context, id uuid.UUID) (model.Customer, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	ListCustomers(ctx context.Context, params ListCustomersParams) ([]model.Customer, error)
	CountCustomers(ctx context.Context) (int64, error)
}

type customerRepository struct {
	db db.DB
}

func NewCustomerRepository(db db.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r customerRepository) WithDB(db db.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r customerRepository) CreateCustomer(ctx context.Context, customer model.Customer) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO customers (id, name, email, phone, created_at)
		VALUES (@id, @name, @email, @phone, @created_at)
	`, pgx.NamedArgs{
		"id":         customer.ID,
		"name":       customer.Name,
		"email":      customer.Email,
		"phone":      customer.Phone,
		"created_at": customer.CreatedAt,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505 is the postgres unique_violation code.
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("create customer: %w", err)
	}

	return nil
}

func (r customerRepository) GetCustomerByID(ctx context.Context, id uuid.UUID) (model.Customer, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, email, phone, created_at
		FROM customers
		WHERE id = @id
	`, pgx.NamedArgs{"id": id})

	customer, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Customer{}, ErrNotFound
		}
		return model.Customer{}, fmt.Errorf("get customer by id: %w", err)
	}

	return customer, nil
}

func (r customerRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM customers WHERE email = @email)
	`, pgx.NamedArgs{"email": email}).Scan(&exists); err != nil {
		return false, fmt.Errorf("email exists: %w", err)
	}

	return exists, nil
}

func (r customerRepository) ListCustomers(ctx context.Context, params ListCustomersParams) ([]model.Customer, error) {
	query, args, err := buildListCustomersQuery(params)
	if err != nil {
		return nil, fmt.Errorf("build list customers query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	customers := make([]model.Customer, 0)
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, customer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customers: %w", err)
	}

	return customers, nil
}

func (r customerRepository) CountCustomers(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM customers`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count customers: %w", err)
	}

	return count, nil
}

var customerOrderColumns = map[string]string{
	"name":       "name",
	"email":      "email",
	"created_at": "created_at",
}

func buildListCustomersQuery(params ListCustomersParams) (string, pgx.NamedArgs, error) {
	where := make([]string, 0, 5)
	args := pgx.NamedArgs{}

	f := params.Filter
	if f.NameContains != nil {
		where = append(where, "name ILIKE '%' || @name_contains || '%'")
		args["name_contains"] = *f.NameContains
	}
	if f.EmailContains != nil {
		where = append(where, "email ILIKE '%' || @email_contains || '%'")
		args["email_contains"] = *f.EmailContains
	}
	if f.CreatedAtGte != nil {
		where = append(where, "created_at >= @created_at_gte")
		args["created_at_gte"] = *f.CreatedAtGte
	}
	if f.CreatedAtLte != nil {
		where = append(where, "created_at <= @created_at_lte")
		args["created_at_lte"] = *f.CreatedAtLte
	}
	if f.PhoneHasPrefix != nil {
		where = append(where, "phone LIKE @phone_prefix || '%'")
		args["phone_prefix"] = *f.PhoneHasPrefix
	}

	column, err := orderByColumn(customerOrderColumns, params.OrderBy, "created_at")
	if err != nil {
		return "", nil, err
	}
	direction, err := params.Order.direction()
	if err != nil {
		return "", nil, err
	}

	var sb strings.Builder
	sb.WriteString("SELECT id, name, email, phone, created_at FROM customers")
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}
	sb.WriteString(" ORDER BY ")
	sb.WriteString(column)
	sb.WriteString(" ")
	sb.WriteString(direction)

	return sb.String(), args, nil
}

func scanCustomer(row pgx.Row) (model.Customer, error) {
	var customer model.Customer
	if err := row.Scan(
		&customer.ID,
		&customer.Name,
		&customer.Email,
		&customer.Phone,
		&customer.CreatedAt,
	); err != nil {
		return model.Customer{}, err
	}

	return customer, nil
}
