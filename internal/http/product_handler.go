package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/crm-backend/internal/model"
	"github.com/tuanvumaihuynh/crm-backend/internal/repository"
	"github.com/tuanvumaihuynh/crm-backend/internal/service"
	"github.com/tuanvumaihuynh/crm-backend/pkg/validator"
)

type productHandler struct {
	productSvc service.ProductService
	validator  validator.Validator
	*responder
}

func newProductHandler(productSvc service.ProductService, v validator.Validator, rsp *responder) *productHandler {
	return &productHandler{
		productSvc: productSvc,
		validator:  v,
		responder:  rsp,
	}
}

type createProductRequest struct {
	Name  string  `json:"name" validate:"required,max=100"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}

type productResponse struct {
	Id        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Stock     int       `json:"stock"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type restockProductsResponse struct {
	Products []productResponse `json:"products"`
	Message  string            `json:"message"`
}

func (h *productHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := decodeAndValidate(r, h.validator, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	product, err := h.productSvc.CreateProduct(r.Context(), service.CreateProductParams{
		Name:  req.Name,
		Price: req.Price,
		Stock: req.Stock,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusCreated, toProductResponse(product))
}

func (h *productHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(chi.URLParam(r, "productId"), "product id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	product, err := h.productSvc.GetProduct(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, toProductResponse(product))
}

type listProductsQuery struct {
	OrderBy string `validate:"omitempty,oneof=name price stock"`
	Order   string `validate:"omitempty,oneof=asc desc"`
}

func (h *productHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := listProductsQuery{
		OrderBy: r.URL.Query().Get("orderBy"),
		Order:   r.URL.Query().Get("order"),
	}
	if err := h.validator.Validate(q); err != nil {
		h.writeError(w, r, err)
		return
	}

	priceGte, err := queryFloat(r, "priceGte")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	priceLte, err := queryFloat(r, "priceLte")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	stockGte, err := queryInt(r, "stockGte")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	stockLte, err := queryInt(r, "stockLte")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	products, err := h.productSvc.ListProducts(r.Context(), repository.ListProductsParams{
		Filter: repository.ProductFilter{
			NameContains: queryString(r, "name"),
			PriceGte:     priceGte,
			PriceLte:     priceLte,
			StockGte:     stockGte,
			StockLte:     stockLte,
		},
		OrderBy: q.OrderBy,
		Order:   repository.SortOrder(q.Order),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	items := make([]productResponse, 0, len(products))
	for _, product := range products {
		items = append(items, toProductResponse(product))
	}

	h.writeJSON(w, r, http.StatusOK, items)
}

func (h *productHandler) RestockProducts(w http.ResponseWriter, r *http.Request) {
	result, err := h.productSvc.UpdateLowStockProducts(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	res := restockProductsResponse{
		Products: make([]productResponse, 0, len(result.Products)),
		Message:  result.Message,
	}
	for _, product := range result.Products {
		res.Products = append(res.Products, toProductResponse(product))
	}

	h.writeJSON(w, r, http.StatusOK, res)
}

func toProductResponse(product model.Product) productResponse {
	return productResponse{
		Id:        product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Stock:     product.Stock,
		CreatedAt: product.CreatedAt,
		UpdatedAt: product.UpdatedAt,
	}
}
