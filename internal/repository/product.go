package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/tuanvumaihuynh/crm-backend/internal/model"
	"github.com/tuanvumaihuynh/crm-backend/internal/storage/db"
)

// ProductFilter composes optional predicates, ANDed together.
type ProductFilter struct {
	NameContains *string
	PriceGte     *float64
	PriceLte     *float64
	StockGte     *int
	StockLte     *int
}

type ListProductsParams struct {
	Filter  ProductFilter
	OrderBy string // name, price or stock
	Order   SortOrder
}

type ProductRepository interface {
	WithDB(db db.DB) ProductRepository
	CreateProduct(ctx context.Context, product model.Product) error
	GetProductByID(ctx context.Context, id uuid.UUID) (model.Product, error)
	ListProducts(ctx context.Context, params ListProductsParams) ([]model.Product, error)
	ListProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)
	ListLowStockProducts(ctx context.Context, threshold int) ([]model.Product, error)
	AdjustProductStock(ctx context.Context, id uuid.UUID, delta int) (model.Product, error)
}

type productRepository struct {
	db db.DB
}

func NewProductRepository(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r productRepository) WithDB(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r productRepository) CreateProduct(ctx context.Context, product model.Product) error {
	price, err := numericFromFloat(product.Price)
	if err != nil {
		return fmt.Errorf("convert price: %w", err)
	}

	if _, err := r.db.Exec(ctx, `
		INSERT INTO products (id, name, price, stock, created_at, updated_at)
		VALUES (@id, @name, @price, @stock, @created_at, @updated_at)
	`, pgx.NamedArgs{
		"id":         product.ID,
		"name":       product.Name,
		"price":      price,
		"stock":      product.Stock,
		"created_at": product.CreatedAt,
		"updated_at": product.UpdatedAt,
	}); err != nil {
		return fmt.Errorf("create product: %w", err)
	}

	return nil
}

func (r productRepository) GetProductByID(ctx context.Context, id uuid.UUID) (model.Product, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, price, stock, created_at, updated_at
		FROM products
		WHERE id = @id
	`, pgx.NamedArgs{"id": id})

	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Product{}, ErrNotFound
		}
		return model.Product{}, fmt.Errorf("get product by id: %w", err)
	}

	return product, nil
}

func (r productRepository) ListProducts(ctx context.Context, params ListProductsParams) ([]model.Product, error) {
	query, args, err := buildListProductsQuery(params)
	if err != nil {
		return nil, fmt.Errorf("build list products query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

func (r productRepository) ListProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, name, price, stock, created_at, updated_at
		FROM products
		WHERE id = ANY(@ids)
	`, pgx.NamedArgs{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("list products by ids: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

func (r productRepository) ListLowStockProducts(ctx context.Context, threshold int) ([]model.Product, error) {
	// Locks the selected rows so the sweep's read-adjust cycle is serialized
	// against concurrent sweeps by the store.
	rows, err := r.db.Query(ctx, `
		SELECT id, name, price, stock, created_at, updated_at
		FROM products
		WHERE stock < @threshold
		ORDER BY name ASC
		FOR UPDATE
	`, pgx.NamedArgs{"threshold": threshold})
	if err != nil {
		return nil, fmt.Errorf("list low stock products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

func (r productRepository) AdjustProductStock(ctx context.Context, id uuid.UUID, delta int) (model.Product, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE products
		SET stock      = stock + @delta,
		    updated_at = NOW()
		WHERE id = @id
		RETURNING id, name, price, stock, created_at, updated_at
	`, pgx.NamedArgs{"id": id, "delta": delta})

	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Product{}, ErrNotFound
		}
		return model.Product{}, fmt.Errorf("adjust product stock: %w", err)
	}

	return product, nil
}

var productOrderColumns = map[string]string{
	"name":  "name",
	"price": "price",
	"stock": "stock",
}

func buildListProductsQuery(params ListProductsParams) (string, pgx.NamedArgs, error) {
	where := make([]string, 0, 5)
	args := pgx.NamedArgs{}

	f := params.Filter
	if f.NameContains != nil {
		where = append(where, "name ILIKE '%' || @name_contains || '%'")
		args["name_contains"] = *f.NameContains
	}
	if f.PriceGte != nil {
		where = append(where, "price >= @price_gte")
		args["price_gte"] = *f.PriceGte
	}
	if f.PriceLte != nil {
		where = append(where, "price <= @price_lte")
		args["price_lte"] = *f.PriceLte
	}
	if f.StockGte != nil {
		where = append(where, "stock >= @stock_gte")
		args["stock_gte"] = *f.StockGte
	}
	if f.StockLte != nil {
		where = append(where, "stock <= @stock_lte")
		args["stock_lte"] = *f.StockLte
	}

	column, err := orderByColumn(productOrderColumns, params.OrderBy, "name")
	if err != nil {
		return "", nil, err
	}
	direction, err := params.Order.direction()
	if err != nil {
		return "", nil, err
	}

	var sb strings.Builder
	sb.WriteString("SELECT id, name, price, stock, created_at, updated_at FROM products")
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

func collectProducts(rows pgx.Rows) ([]model.Product, error) {
	products := make([]model.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

func scanProduct(row pgx.Row) (model.Product, error) {
	var (
		product model.Product
		price   pgtype.Numeric
	)
	if err := row.Scan(
		&product.ID,
		&product.Name,
		&price,
		&product.Stock,
		&product.CreatedAt,
		&product.UpdatedAt,
	); err != nil {
		return model.Product{}, err
	}

	priceValue, err := price.Float64Value()
	if err != nil {
		return model.Product{}, fmt.Errorf("convert price to float64: %w", err)
	}
	product.Price = priceValue.Float64

	return product, nil
}

// numericFromFloat rounds to two decimals to match the NUMERIC(12,2)
// columns, so 19.999 is stored as 20.00.
func numericFromFloat(value float64) (pgtype.Numeric, error) {
	var numeric pgtype.Numeric
	if err := numeric.Scan(fmt.Sprintf("%.2f", value)); err != nil {
		return pgtype.Numeric{}, fmt.Errorf("scan numeric: %w", err)
	}

	return numeric, nil
}
