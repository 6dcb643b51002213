package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/tuanvumaihuynh/crm-backend/internal/model"
	"github.com/tuanvumaihuynh/crm-backend/internal/storage/db"
)

// OrderFilter composes optional predicates, ANDed together. Related-entity
// predicates match through the customer row and the order_products join:
// a product predicate matches when any referenced product matches.
type OrderFilter struct {
	TotalAmountGte       *float64
	TotalAmountLte       *float64
	OrderDateGte         *time.Time
	OrderDateLte         *time.Time
	CustomerNameContains *string
	ProductNameContains  *string
	ProductID            *uuid.UUID
}

type ListOrdersParams struct {
	Filter  OrderFilter
	OrderBy string // total_amount or order_date
	Order   SortOrder
}

// OrderStats is a consistent count/sum pair read in a single query.
type OrderStats struct {
	TotalOrders  int64
	TotalRevenue float64
}

type OrderRepository interface {
	WithDB(db db.DB) OrderRepository
	CreateOrder(ctx context.Context, order model.Order) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (model.Order, error)
	ListOrders(ctx context.Context, params ListOrdersParams) ([]model.Order, error)
	GetOrderStats(ctx context.Context) (OrderStats, error)
}

type orderRepository struct {
	db db.DB
}

func NewOrderRepository(db db.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r orderRepository) WithDB(db db.DB) OrderRepository {
	return &orderRepository{db: db}
}

// CreateOrder persists the order row and its product references. The caller
// is expected to run it inside a transaction so the order never becomes
// visible without its product set.
func (r orderRepository) CreateOrder(ctx context.Context, order model.Order) error {
	totalAmount, err := numericFromFloat(order.TotalAmount)
	if err != nil {
		return fmt.Errorf("convert total amount: %w", err)
	}

	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO orders (id, customer_id, total_amount, order_date)
		VALUES (@id, @customer_id, @total_amount, @order_date)
	`, pgx.NamedArgs{
		"id":           order.ID,
		"customer_id":  order.CustomerID,
		"total_amount": totalAmount,
		"order_date":   order.OrderDate,
	})
	for _, product := range order.Products {
		batch.Queue(`
			INSERT INTO order_products (order_id, product_id)
			VALUES (@order_id, @product_id)
		`, pgx.NamedArgs{
			"order_id":   order.ID,
			"product_id": product.ID,
		})
	}

	results := r.db.SendBatch(ctx, batch)
	defer func() {
		//nolint:errcheck
		results.Close()
	}()

	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("create order batch: %w", err)
		}
	}

	return nil
}

func (r orderRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (model.Order, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, customer_id, total_amount, order_date
		FROM orders
		WHERE id = @id
	`, pgx.NamedArgs{"id": id})

	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Order{}, ErrNotFound
		}
		return model.Order{}, fmt.Errorf("get order by id: %w", err)
	}

	orders := []model.Order{order}
	if err := r.attachProducts(ctx, orders); err != nil {
		return model.Order{}, err
	}

	return orders[0], nil
}

func (r orderRepository) ListOrders(ctx context.Context, params ListOrdersParams) ([]model.Order, error) {
	query, args, err := buildListOrdersQuery(params)
	if err != nil {
		return nil, fmt.Errorf("build list orders query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]model.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	if err := r.attachProducts(ctx, orders); err != nil {
		return nil, err
	}

	return orders, nil
}

func (r orderRepository) GetOrderStats(ctx context.Context) (OrderStats, error) {
	var (
		stats   OrderStats
		revenue pgtype.Numeric
	)
	if err := r.db.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(total_amount), 0)
		FROM orders
	`).Scan(&stats.TotalOrders, &revenue); err != nil {
		return OrderStats{}, fmt.Errorf("get order stats: %w", err)
	}

	revenueValue, err := revenue.Float64Value()
	if err != nil {
		return OrderStats{}, fmt.Errorf("convert revenue to float64: %w", err)
	}
	stats.TotalRevenue = revenueValue.Float64

	return stats, nil
}

// attachProducts loads the referenced products for the given orders in one
// query and fills each order's product set in place.
func (r orderRepository) attachProducts(ctx context.Context, orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(orders))
	for _, order := range orders {
		ids = append(ids, order.ID)
	}

	rows, err := r.db.Query(ctx, `
		SELECT op.order_id, p.id, p.name, p.price, p.stock, p.created_at, p.updated_at
		FROM order_products op
		JOIN products p ON p.id = op.product_id
		WHERE op.order_id = ANY(@order_ids)
		ORDER BY p.name ASC
	`, pgx.NamedArgs{"order_ids": ids})
	if err != nil {
		return fmt.Errorf("list order products: %w", err)
	}
	defer rows.Close()

	productsByOrder := make(map[uuid.UUID][]model.Product, len(orders))
	for rows.Next() {
		var (
			orderID uuid.UUID
			product model.Product
			price   pgtype.Numeric
		)
		if err := rows.Scan(
			&orderID,
			&product.ID,
			&product.Name,
			&price,
			&product.Stock,
			&product.CreatedAt,
			&product.UpdatedAt,
		); err != nil {
			return fmt.Errorf("scan order product: %w", err)
		}

		priceValue, err := price.Float64Value()
		if err != nil {
			return fmt.Errorf("convert price to float64: %w", err)
		}
		product.Price = priceValue.Float64

		productsByOrder[orderID] = append(productsByOrder[orderID], product)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate order products: %w", err)
	}

	for i := range orders {
		orders[i].Products = productsByOrder[orders[i].ID]
	}

	return nil
}

var orderOrderColumns = map[string]string{
	"total_amount": "o.total_amount",
	"order_date":   "o.order_date",
}

func buildListOrdersQuery(params ListOrdersParams) (string, pgx.NamedArgs, error) {
	where := make([]string, 0, 7)
	args := pgx.NamedArgs{}

	f := params.Filter
	if f.TotalAmountGte != nil {
		where = append(where, "o.total_amount >= @total_amount_gte")
		args["total_amount_gte"] = *f.TotalAmountGte
	}
	if f.TotalAmountLte != nil {
		where = append(where, "o.total_amount <= @total_amount_lte")
		args["total_amount_lte"] = *f.TotalAmountLte
	}
	if f.OrderDateGte != nil {
		where = append(where, "o.order_date >= @order_date_gte")
		args["order_date_gte"] = *f.OrderDateGte
	}
	if f.OrderDateLte != nil {
		where = append(where, "o.order_date <= @order_date_lte")
		args["order_date_lte"] = *f.OrderDateLte
	}
	if f.CustomerNameContains != nil {
		where = append(where, "c.name ILIKE '%' || @customer_name_contains || '%'")
		args["customer_name_contains"] = *f.CustomerNameContains
	}
	if f.ProductNameContains != nil {
		where = append(where, `EXISTS (
			SELECT 1 FROM order_products op
			JOIN products p ON p.id = op.product_id
			WHERE op.order_id = o.id AND p.name ILIKE '%' || @product_name_contains || '%'
		)`)
		args["product_name_contains"] = *f.ProductNameContains
	}
	if f.ProductID != nil {
		where = append(where, `EXISTS (
			SELECT 1 FROM order_products op
			WHERE op.order_id = o.id AND op.product_id = @product_id
		)`)
		args["product_id"] = *f.ProductID
	}

	column, err := orderByColumn(orderOrderColumns, params.OrderBy, "o.order_date")
	if err != nil {
		return "", nil, err
	}
	direction, err := params.Order.direction()
	if err != nil {
		return "", nil, err
	}

	var sb strings.Builder
	sb.WriteString("SELECT o.id, o.customer_id, o.total_amount, o.order_date FROM orders o")
	sb.WriteString(" JOIN customers c ON c.id = o.customer_id")
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

func scanOrder(row pgx.Row) (model.Order, error) {
	var (
		order       model.Order
		totalAmount pgtype.Numeric
	)
	if err := row.Scan(
		&order.ID,
		&order.CustomerID,
		&totalAmount,
		&order.OrderDate,
	); err != nil {
		return model.Order{}, err
	}

	totalValue, err := totalAmount.Float64Value()
	if err != nil {
		return model.Order{}, fmt.Errorf("convert total amount to float64: %w", err)
	}
	order.TotalAmount = totalValue.Float64

	return order, nil
}
