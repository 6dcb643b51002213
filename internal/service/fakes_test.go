package service_test

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tuanvumaihuynh/crm-backend/internal/model"
	"github.com/tuanvumaihuynh/crm-backend/internal/repository"
	"github.com/tuanvumaihuynh/crm-backend/internal/storage/db"
)

// fakeDB satisfies db.DB for service tests. The repositories are faked too,
// so only WithTx is ever exercised; it hands the same handle back to the
// callback and can be told to fail like an aborted transaction.
type fakeDB struct {
	beginErr  error
	commitErr error
}

var _ db.DB = (*fakeDB)(nil)

func (f *fakeDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	panic("not implemented")
}

func (f *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	panic("not implemented")
}

func (f *fakeDB) QueryRow(context.Context, string, ...any) pgx.Row {
	panic("not implemented")
}

func (f *fakeDB) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults {
	panic("not implemented")
}

func (f *fakeDB) WithTx(ctx context.Context, txFunc func(db.DB) error) error {
	if f.beginErr != nil {
		return f.beginErr
	}
	if err := txFunc(f); err != nil {
		return err
	}
	return f.commitErr
}

type fakeCustomerRepo struct {
	customers map[uuid.UUID]model.Customer
	createErr error
}

var _ repository.CustomerRepository = (*fakeCustomerRepo)(nil)

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{customers: make(map[uuid.UUID]model.Customer)}
}

func (r *fakeCustomerRepo) WithDB(db.DB) repository.CustomerRepository { return r }

func (r *fakeCustomerRepo) CreateCustomer(_ context.Context, customer model.Customer) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.customers {
		if existing.Email == customer.Email {
			return repository.ErrDuplicateEmail
		}
	}
	r.customers[customer.ID] = customer
	return nil
}

func (r *fakeCustomerRepo) GetCustomerByID(_ context.Context, id uuid.UUID) (model.Customer, error) {
	customer, ok := r.customers[id]
	if !ok {
		return model.Customer{}, repository.ErrNotFound
	}
	return customer, nil
}

func (r *fakeCustomerRepo) EmailExists(_ context.Context, email string) (bool, error) {
	for _, customer := range r.customers {
		if customer.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeCustomerRepo) ListCustomers(context.Context, repository.ListCustomersParams) ([]model.Customer, error) {
	customers := make([]model.Customer, 0, len(r.customers))
	for _, customer := range r.customers {
		customers = append(customers, customer)
	}
	sort.Slice(customers, func(i, j int) bool { return customers[i].Email < customers[j].Email })
	return customers, nil
}

func (r *fakeCustomerRepo) CountCustomers(context.Context) (int64, error) {
	return int64(len(r.customers)), nil
}

func (r *fakeCustomerRepo) byEmail(email string) (model.Customer, bool) {
	for _, customer := range r.customers {
		if customer.Email == email {
			return customer, true
		}
	}
	return model.Customer{}, false
}

type fakeProductRepo struct {
	products  map[uuid.UUID]model.Product
	createErr error
}

var _ repository.ProductRepository = (*fakeProductRepo)(nil)

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uuid.UUID]model.Product)}
}

func (r *fakeProductRepo) WithDB(db.DB) repository.ProductRepository { return r }

func (r *fakeProductRepo) CreateProduct(_ context.Context, product model.Product) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.products[product.ID] = product
	return nil
}

func (r *fakeProductRepo) GetProductByID(_ context.Context, id uuid.UUID) (model.Product, error) {
	product, ok := r.products[id]
	if !ok {
		return model.Product{}, repository.ErrNotFound
	}
	return product, nil
}

func (r *fakeProductRepo) ListProducts(context.Context, repository.ListProductsParams) ([]model.Product, error) {
	return r.sortedByName(), nil
}

func (r *fakeProductRepo) ListProductsByIDs(_ context.Context, ids []uuid.UUID) ([]model.Product, error) {
	products := make([]model.Product, 0, len(ids))
	for _, id := range ids {
		if product, ok := r.products[id]; ok {
			products = append(products, product)
		}
	}
	return products, nil
}

func (r *fakeProductRepo) ListLowStockProducts(_ context.Context, threshold int) ([]model.Product, error) {
	lowStock := make([]model.Product, 0)
	for _, product := range r.sortedByName() {
		if product.Stock < threshold {
			lowStock = append(lowStock, product)
		}
	}
	return lowStock, nil
}

func (r *fakeProductRepo) AdjustProductStock(_ context.Context, id uuid.UUID, delta int) (model.Product, error) {
	product, ok := r.products[id]
	if !ok {
		return model.Product{}, repository.ErrNotFound
	}
	product.Stock += delta
	r.products[id] = product
	return product, nil
}

func (r *fakeProductRepo) sortedByName() []model.Product {
	products := make([]model.Product, 0, len(r.products))
	for _, product := range r.products {
		products = append(products, product)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	return products
}

type fakeOrderRepo struct {
	orders    []model.Order
	createErr error
}

var _ repository.OrderRepository = (*fakeOrderRepo)(nil)

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make([]model.Order, 0)}
}

func (r *fakeOrderRepo) WithDB(db.DB) repository.OrderRepository { return r }

func (r *fakeOrderRepo) CreateOrder(_ context.Context, order model.Order) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.orders = append(r.orders, order)
	return nil
}

func (r *fakeOrderRepo) GetOrderByID(_ context.Context, id uuid.UUID) (model.Order, error) {
	for _, order := range r.orders {
		if order.ID == id {
			return order, nil
		}
	}
	return model.Order{}, repository.ErrNotFound
}

func (r *fakeOrderRepo) ListOrders(_ context.Context, params repository.ListOrdersParams) ([]model.Order, error) {
	orders := make([]model.Order, 0, len(r.orders))
	for _, order := range r.orders {
		if params.Filter.OrderDateGte != nil && order.OrderDate.Before(*params.Filter.OrderDateGte) {
			continue
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (r *fakeOrderRepo) GetOrderStats(context.Context) (repository.OrderStats, error) {
	stats := repository.OrderStats{TotalOrders: int64(len(r.orders))}
	for _, order := range r.orders {
		stats.TotalRevenue += order.TotalAmount
	}
	return stats, nil
}

type fakeOutboxMsgRepo struct {
	msgs []repository.CreateOutboxMsgParams
}

var _ repository.OutboxMsgRepository = (*fakeOutboxMsgRepo)(nil)

func newFakeOutboxMsgRepo() *fakeOutboxMsgRepo {
	return &fakeOutboxMsgRepo{msgs: make([]repository.CreateOutboxMsgParams, 0)}
}

func (r *fakeOutboxMsgRepo) WithDB(db.DB) repository.OutboxMsgRepository { return r }

func (r *fakeOutboxMsgRepo) CreateOutboxMsg(_ context.Context, params repository.CreateOutboxMsgParams) error {
	r.msgs = append(r.msgs, params)
	return nil
}

func (r *fakeOutboxMsgRepo) ListUnprocessedOutboxMsgs(context.Context, repository.ListUnprocessedOutboxMsgsParams) ([]repository.ListUnprocessedOutboxMsgsResult, error) {
	return nil, nil
}

func (r *fakeOutboxMsgRepo) BulkUpdateOutboxMsgs(context.Context, repository.BulkUpdateOutboxMsgsParams) error {
	return nil
}

func (r *fakeOutboxMsgRepo) topics() []string {
	topics := make([]string, 0, len(r.msgs))
	for _, msg := range r.msgs {
		topics = append(topics, msg.Topic)
	}
	return topics
}
