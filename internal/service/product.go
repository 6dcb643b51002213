package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/crm-backend/internal/apperr"
	"github.com/tuanvumaihuynh/crm-backend/internal/model"
	"github.com/tuanvumaihuynh/crm-backend/internal/repository"
	"github.com/tuanvumaihuynh/crm-backend/internal/storage/db"
)

const (
	// Products with stock below lowStockThreshold are picked up by the
	// restock sweep and topped up by restockAmount.
	lowStockThreshold = 10
	restockAmount     = 10
)

type CreateProductParams struct {
	Name  string
	Price float64
	Stock int
}

// RestockResult lists the products the sweep updated plus a summary message.
type RestockResult struct {
	Products []model.Product
	Message  string
}

type ProductService interface {
	CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error)
	ListProducts(ctx context.Context, params repository.ListProductsParams) ([]model.Product, error)
	UpdateLowStockProducts(ctx context.Context) (RestockResult, error)
}

type productService struct {
	db          db.DB
	productRepo repository.ProductRepository
}

func NewProductService(
	db db.DB,
	productRepo repository.ProductRepository,
) ProductService {
	return &productService{
		db:          db,
		productRepo: productRepo,
	}
}

func (s *productService) CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error) {
	if params.Price <= 0 {
		return model.Product{}, apperr.ProductInvalidPriceErr
	}
	if params.Stock < 0 {
		return model.Product{}, apperr.ProductInvalidStockErr
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.Product{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	now := time.Now()
	product := model.Product{
		ID:        id,
		Name:      params.Name,
		Price:     params.Price,
		Stock:     params.Stock,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.productRepo.CreateProduct(ctx, product); err != nil {
		return model.Product{}, fmt.Errorf("product repository create product: %w", err)
	}

	return product, nil
}

func (s *productService) GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error) {
	product, err := s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Product{}, apperr.ProductNotFoundErr
		}
		return model.Product{}, fmt.Errorf("product repository get product by id: %w", err)
	}

	return product, nil
}

func (s *productService) ListProducts(ctx context.Context, params repository.ListProductsParams) ([]model.Product, error) {
	products, err := s.productRepo.ListProducts(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("product repository list products: %w", err)
	}

	return products, nil
}

// UpdateLowStockProducts tops up every product below the low stock threshold.
// The select-and-adjust cycle runs in one transaction; products already at or
// above the threshold are excluded, so a repeated run is a no-op.
func (s *productService) UpdateLowStockProducts(ctx context.Context) (RestockResult, error) {
	updated := make([]model.Product, 0)

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		productRepo := s.productRepo.WithDB(db)

		lowStock, err := productRepo.ListLowStockProducts(ctx, lowStockThreshold)
		if err != nil {
			return fmt.Errorf("product repository list low stock products: %w", err)
		}

		for _, product := range lowStock {
			restocked, err := productRepo.AdjustProductStock(ctx, product.ID, restockAmount)
			if err != nil {
				return fmt.Errorf("product repository adjust product stock: %w", err)
			}
			updated = append(updated, restocked)
		}

		return nil
	}); err != nil {
		return RestockResult{}, fmt.Errorf("db with tx: %w", err)
	}

	return RestockResult{
		Products: updated,
		Message:  fmt.Sprintf("%d products restocked successfully", len(updated)),
	}, nil
}
